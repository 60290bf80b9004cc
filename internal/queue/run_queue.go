package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/heist-engine/pkg/heist"
	"github.com/jwebster45206/heist-engine/pkg/queue"
)

const runsKey = "runs"

// reportTTL bounds how long finished run reports stay retrievable.
const reportTTL = 24 * time.Hour

// RunQueue manages the pending-run queue and finished-run reports.
type RunQueue struct {
	client *Client
	logger *slog.Logger
}

func NewRunQueue(client *Client, logger *slog.Logger) *RunQueue {
	return &RunQueue{
		client: client,
		logger: logger,
	}
}

// Enqueue adds a run request to the end of the global queue.
func (q *RunQueue) Enqueue(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize run request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, runsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue run request: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next run request.
// Returns nil if the queue is empty.
func (q *RunQueue) Dequeue(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, runsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue run request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse run request: %w", err)
	}
	return req, nil
}

// BlockingDequeue blocks until a run request is available, then returns it.
// timeout is in seconds, 0 means wait forever.
func (q *RunQueue) BlockingDequeue(ctx context.Context, timeout int) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, time.Duration(timeout)*time.Second, runsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Timed out with nothing queued
		}
		return nil, fmt.Errorf("failed to dequeue run request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse run request: %w", err)
	}
	return req, nil
}

// Depth returns the number of pending run requests.
func (q *RunQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, runsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get run queue depth: %w", err)
	}
	return int(count), nil
}

func reportKey(requestID string) string {
	return "report:" + requestID
}

// SaveReport stores a finished run's report for retrieval by request id.
func (q *RunQueue) SaveReport(ctx context.Context, requestID string, report *heist.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := q.client.rdb.Set(ctx, reportKey(requestID), data, reportTTL).Err(); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	return nil
}

// LoadReport fetches a finished run's report.
// Returns nil when the run has not finished (or the report expired).
func (q *RunQueue) LoadReport(ctx context.Context, requestID string) (*heist.Report, error) {
	result, err := q.client.rdb.Get(ctx, reportKey(requestID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load run report: %w", err)
	}

	var report heist.Report
	if err := json.Unmarshal([]byte(result), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}
