package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/heist-engine/internal/queue"
)

const (
	dequeueTimeout = 5 * time.Second
)

// Worker processes queued heist runs
type Worker struct {
	id          string
	queue       *queue.RunQueue
	processor   *RunProcessor
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(runQueue *queue.RunQueue, processor *RunProcessor, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       runQueue,
		processor:   processor,
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	// Block waiting for next request (timeout to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, dequeueTimeout+time.Second)
	defer cancel()

	req, err := w.queue.BlockingDequeue(ctx, int(dequeueTimeout.Seconds()))
	if err != nil {
		// Timeouts and shutdown cancellations are normal
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}

	if req == nil {
		return nil
	}

	w.log.Info("Received run request from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"heist_id", req.HeistID,
		"save_id", req.SaveID.String(),
	)

	// One run at a time per campaign: the world is single-owner state.
	locked, err := w.acquireSaveLock(req.SaveID)
	if err != nil {
		return fmt.Errorf("failed to acquire save lock: %w", err)
	}
	if !locked {
		// Another worker owns this campaign. Re-queue and move on.
		w.log.Info("Save already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"save_id", req.SaveID.String(),
		)
		if err := w.queue.Enqueue(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}
	defer w.releaseSaveLock(req.SaveID)

	start := time.Now()
	report, err := w.processor.Process(w.ctx, req)
	if err != nil {
		w.log.Error("Run failed",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"error", err,
		)
		return err
	}

	if err := w.queue.SaveReport(w.ctx, req.RequestID, report); err != nil {
		return fmt.Errorf("failed to store run report: %w", err)
	}

	w.log.Info("Run processed successfully",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"heist_id", req.HeistID,
		"success", report.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// acquireSaveLock attempts to acquire a lock for a campaign
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireSaveLock(saveID uuid.UUID) (bool, error) {
	lockKey := fmt.Sprintf("save-lock:%s", saveID.String())

	result, err := w.redisClient.SetNX(w.ctx, lockKey, w.id, 30*time.Second).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

// releaseSaveLock releases the lock for a campaign
func (w *Worker) releaseSaveLock(saveID uuid.UUID) {
	lockKey := fmt.Sprintf("save-lock:%s", saveID.String())

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(w.ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release save lock", "error", err, "save_id", saveID.String())
	}
}
