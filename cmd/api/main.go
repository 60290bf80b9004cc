package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/heist-engine/internal/config"
	"github.com/jwebster45206/heist-engine/internal/handlers"
	"github.com/jwebster45206/heist-engine/internal/logger"
	"github.com/jwebster45206/heist-engine/internal/middleware"
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

	log.Info("Starting Heist Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	store := storage.NewRedisStorage(cfg.RedisAddr, cfg.RedisPass, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	content, err := store.LoadContent(storageCtx)
	if err != nil {
		log.Error("Failed to load content pack", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("Content pack loaded",
		"heists", len(content.Heists),
		"crew", len(content.Crew),
		"tools", len(content.Tools))

	roller := dice.NewRandom()
	if cfg.DieSeed != 0 {
		roller = dice.New(cfg.DieSeed)
	}

	processor, err := worker.NewRunProcessor(store, content, roller, log)
	if err != nil {
		log.Error("Failed to build run processor", "error", err)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisAddr, cfg.RedisPass, log)
	if err != nil {
		log.Error("Failed to connect to run queue", "error", err)
		os.Exit(1)
	}
	runQueue := queue.NewRunQueue(queueClient, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	gameHandler := handlers.NewGameHandler(log, store)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	heistHandler := handlers.NewHeistHandler(log, store)
	mux.Handle("/v1/heists", heistHandler)
	mux.Handle("/v1/heists/", heistHandler)

	runHandler := handlers.NewRunHandler(log, processor)
	mux.Handle("/v1/run", runHandler)

	asyncHandler := handlers.NewAsyncRunHandler(log, runQueue)
	mux.Handle("/v1/runs", asyncHandler)
	mux.Handle("/v1/runs/", asyncHandler)

	marketHandler := handlers.NewMarketHandler(log, store)
	mux.Handle("/v1/market/", marketHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
