package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements the Storage interface using Redis for save games
// and the filesystem for static content (crew, tools, heists, arcs).
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisAddr, redisPass, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Save-game operations (Redis-backed). Saves carry no TTL; a campaign lives
// until it is deleted.

func saveKey(id uuid.UUID) string {
	return "save:" + id.String()
}

func (r *RedisStorage) SaveGame(ctx context.Context, id uuid.UUID, sg *SaveGame) error {
	sg.UpdatedAt = time.Now()
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = sg.UpdatedAt
	}

	data, err := json.Marshal(sg)
	if err != nil {
		r.logger.Error("Failed to marshal save game", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal save game: %w", err)
	}

	if err := r.client.Set(ctx, saveKey(id), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game", "uuid", id, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*SaveGame, error) {
	cmd := r.client.Get(ctx, saveKey(id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Save game not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load save game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load save game: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("Save game not found", "uuid", id)
		return nil, nil
	}

	var sg SaveGame
	if err := json.Unmarshal([]byte(data), &sg); err != nil {
		r.logger.Error("Failed to unmarshal save game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save game: %w", err)
	}
	sg.Normalize()

	return &sg, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, saveKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete save game", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete save game: %w", err)
	}
	return nil
}
