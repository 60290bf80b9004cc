package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	queueSvc "github.com/jwebster45206/heist-engine/internal/queue"
	"github.com/jwebster45206/heist-engine/pkg/queue"
)

// Dev helper: pushes a run request onto the queue so a local worker has
// something to chew on.
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	saveID := flag.String("save", "", "Campaign save ID (required)")
	heistID := flag.String("heist", "", "Heist ID (required)")
	participants := flag.String("crew", "", "Comma-separated operative IDs (required)")
	flag.Parse()

	if *saveID == "" || *heistID == "" || *participants == "" {
		flag.Usage()
		os.Exit(1)
	}

	id, err := uuid.Parse(*saveID)
	if err != nil {
		log.Fatal("Invalid save ID:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	client, err := queueSvc.NewClient(*redisAddr, "", logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Println("Connected to Redis successfully!")

	runQueue := queueSvc.NewRunQueue(client, logger)
	ctx := context.Background()

	req := queue.NewRequest(id, *heistID, strings.Split(*participants, ","), nil)
	if err := runQueue.Enqueue(ctx, req); err != nil {
		log.Fatal("Failed to enqueue request:", err)
	}

	fmt.Printf("Enqueued run request: %s\n", req.RequestID)

	depth, err := runQueue.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("Queue depth: %d requests\n", depth)
	fmt.Println("Now start the worker to see it process the run!")
	fmt.Println("   Run: go run cmd/worker/main.go")
}
