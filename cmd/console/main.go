package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/storage"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	// Resume an existing campaign with SAVE_ID, otherwise start fresh.
	var sg *storage.SaveGame
	var err error
	if idStr := os.Getenv("SAVE_ID"); idStr != "" {
		saveID, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Invalid SAVE_ID: %v\n", parseErr)
			os.Exit(1)
		}
		sg, err = getSave(client, cfg.APIBaseURL, saveID)
	} else {
		sg, err = createSave(client, cfg.APIBaseURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open campaign: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, sg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
