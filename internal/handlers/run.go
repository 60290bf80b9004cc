package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/pkg/heist"
	queuePkg "github.com/jwebster45206/heist-engine/pkg/queue"
)

// RunRequest is the request body for launching a heist run.
type RunRequest struct {
	SaveID          uuid.UUID         `json:"save_id"`
	HeistID         string            `json:"heist_id"`
	Participants    []string          `json:"participants"`
	ToolAssignments map[string]string `json:"tool_assignments,omitempty"`
}

// Processor resolves a queued run request into a report.
type Processor interface {
	Process(ctx context.Context, req *queuePkg.Request) (*heist.Report, error)
}

type RunHandler struct {
	processor Processor
	logger    *slog.Logger
}

func NewRunHandler(logger *slog.Logger, processor Processor) *RunHandler {
	return &RunHandler{
		logger:    logger,
		processor: processor,
	}
}

// ServeHTTP resolves a heist run synchronously and returns the report.
// Routes:
// POST /v1/run - Run a heist against a campaign save
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for run endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: POST",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "Invalid JSON in request body",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if req.SaveID == uuid.Nil || req.HeistID == "" {
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "save_id and heist_id fields are required",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	runReq := queuePkg.NewRequest(req.SaveID, req.HeistID, req.Participants, req.ToolAssignments)
	report, err := h.processor.Process(r.Context(), runReq)
	if err != nil {
		h.logger.Warn("Run rejected", "error", err, "save_id", req.SaveID.String(), "heist_id", req.HeistID)
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "Run failed: " + err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Info("Run resolved", "save_id", req.SaveID.String(), "heist_id", req.HeistID, "success", report.Success)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("Failed to encode report response", "error", err)
	}
}
