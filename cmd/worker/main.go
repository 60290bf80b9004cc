package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/heist-engine/internal/config"
	"github.com/jwebster45206/heist-engine/internal/logger"
	"github.com/jwebster45206/heist-engine/internal/queue"
	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/internal/worker"
	"github.com/jwebster45206/heist-engine/pkg/dice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Heist Engine Worker",
		"environment", cfg.Environment,
		"redis_addr", cfg.RedisAddr)

	// Initialize queue service
	queueClient, err := queue.NewClient(cfg.RedisAddr, cfg.RedisPass, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	runQueue := queue.NewRunQueue(queueClient, log)
	log.Info("Queue service initialized successfully")

	// Initialize storage service
	store := storage.NewRedisStorage(cfg.RedisAddr, cfg.RedisPass, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	content, err := store.LoadContent(storageCtx)
	if err != nil {
		log.Error("Failed to load content pack", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("Content pack loaded",
		"heists", len(content.Heists),
		"crew", len(content.Crew))

	roller := dice.NewRandom()
	if cfg.DieSeed != 0 {
		roller = dice.New(cfg.DieSeed)
	}

	processor, err := worker.NewRunProcessor(store, content, roller, log)
	if err != nil {
		log.Error("Failed to build run processor", "error", err)
		os.Exit(1)
	}
	log.Info("Run processor initialized successfully")

	// Separate Redis client for save locking, apart from the queue
	// client connection pool.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	w := worker.New(runQueue, processor, redisClient, log, os.Getenv("WORKER_ID"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for run requests...")

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give the worker time to finish the current run
	time.Sleep(2 * time.Second)

	log.Info("Worker exited")
}
