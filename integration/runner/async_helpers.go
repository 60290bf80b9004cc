package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/handlers"
	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

// PostRunAsync enqueues a heist run via POST /v1/runs and returns the
// request id to poll on
func PostRunAsync(ctx context.Context, client *http.Client, baseURL string, saveID uuid.UUID, step TestStep) (string, error) {
	body, err := json.Marshal(handlers.RunRequest{
		SaveID:          saveID,
		HeistID:         step.HeistID,
		Participants:    step.Participants,
		ToolAssignments: step.Tools,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/v1/runs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue run: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("enqueue run returned %d: %s", resp.StatusCode, string(respBody))
	}

	var enqueued handlers.EnqueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&enqueued); err != nil {
		return "", fmt.Errorf("failed to decode enqueue response: %w", err)
	}
	if enqueued.RequestID == "" {
		return "", fmt.Errorf("enqueue response missing request_id")
	}
	return enqueued.RequestID, nil
}

// PollForReport polls GET /v1/runs/{id} until the worker publishes the run
// report or the timeout elapses. A 202 means the run is still pending.
func PollForReport(ctx context.Context, client *http.Client, baseURL string, requestID string, timeout time.Duration) (*heist.Report, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		report, done, err := getReport(ctx, client, baseURL, requestID)
		if err != nil {
			return nil, err
		}
		if done {
			return report, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for run report %s", requestID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func getReport(ctx context.Context, client *http.Client, baseURL string, requestID string) (*heist.Report, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/v1/runs/"+requestID, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create GET request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get run report: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return nil, false, nil
	case http.StatusOK:
		var report heist.Report
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			return nil, false, fmt.Errorf("failed to decode run report: %w", err)
		}
		return &report, true, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("get run report returned %d: %s", resp.StatusCode, string(body))
	}
}

// GetSaveGame retrieves a save game via GET /v1/games/{id}
func GetSaveGame(ctx context.Context, client *http.Client, baseURL string, saveID uuid.UUID) (*storage.SaveGame, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/v1/games/"+saveID.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get save game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get save game returned %d: %s", resp.StatusCode, string(body))
	}

	var sg storage.SaveGame
	if err := json.NewDecoder(resp.Body).Decode(&sg); err != nil {
		return nil, fmt.Errorf("failed to decode save game: %w", err)
	}
	return &sg, nil
}
