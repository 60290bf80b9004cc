package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/handlers"
	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func createSave(client *http.Client, baseURL string) (*storage.SaveGame, error) {
	resp, err := client.Post(baseURL+"/v1/games", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body, "failed to create campaign")
	}

	var sg storage.SaveGame
	if err := json.Unmarshal(body, &sg); err != nil {
		return nil, fmt.Errorf("failed to parse save response: %w", err)
	}
	return &sg, nil
}

func getSave(client *http.Client, baseURL string, saveID uuid.UUID) (*storage.SaveGame, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, saveID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get campaign")
	}

	var sg storage.SaveGame
	if err := json.Unmarshal(body, &sg); err != nil {
		return nil, fmt.Errorf("failed to parse save response: %w", err)
	}
	return &sg, nil
}

func listHeists(client *http.Client, baseURL string) ([]handlers.HeistSummary, error) {
	resp, err := client.Get(baseURL + "/v1/heists")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to list heists")
	}

	var summaries []handlers.HeistSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("failed to parse heist list: %w", err)
	}
	return summaries, nil
}

func runHeist(client *http.Client, baseURL string, req handlers.RunRequest) (*heist.Report, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/run", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "run rejected")
	}

	var report heist.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

func marketAction(client *http.Client, baseURL, action string, req handlers.MarketRequest) (*handlers.MarketResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/market/"+action, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "market action rejected")
	}

	var mr handlers.MarketResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, fmt.Errorf("failed to parse market response: %w", err)
	}
	return &mr, nil
}

func apiError(status int, body []byte, prefix string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", prefix, errorResp.Error)
}
