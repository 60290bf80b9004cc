package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

// HeistSummary is the list-view projection of a heist.
type HeistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Difficulty  int    `json:"difficulty,omitempty"`
	Events      int    `json:"events"`
}

type HeistHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewHeistHandler(logger *slog.Logger, storage storage.Storage) *HeistHandler {
	return &HeistHandler{
		logger:  logger,
		storage: storage,
	}
}

// ServeHTTP handles read-only heist catalog requests
// Routes:
// GET /v1/heists      - List heist summaries
// GET /v1/heists/{id} - Read a single heist definition
func (h *HeistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for heists endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: GET",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	content, err := h.storage.LoadContent(r.Context())
	if err != nil {
		h.logger.Error("Failed to load content pack", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load content pack",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	heistID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/heists"), "/")
	if heistID == "" {
		h.handleList(w, content.Heists)
		return
	}
	h.handleRead(w, content.Heists, heistID)
}

func (h *HeistHandler) handleList(w http.ResponseWriter, heists []heist.Heist) {
	summaries := make([]HeistSummary, 0, len(heists))
	for _, hst := range heists {
		summaries = append(summaries, HeistSummary{
			ID:          hst.ID,
			Name:        hst.Name,
			Description: hst.Description,
			Difficulty:  hst.Difficulty,
			Events:      len(hst.Events),
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		h.logger.Error("Failed to encode heist list response", "error", err)
	}
}

func (h *HeistHandler) handleRead(w http.ResponseWriter, heists []heist.Heist, heistID string) {
	for _, hst := range heists {
		if hst.ID == heistID {
			w.WriteHeader(http.StatusOK)
			if err := json.NewEncoder(w).Encode(hst); err != nil {
				h.logger.Error("Failed to encode heist response", "error", err)
			}
			return
		}
	}

	h.logger.Warn("Heist not found", "id", heistID)
	w.WriteHeader(http.StatusNotFound)
	response := ErrorResponse{
		Error: "Heist not found",
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
