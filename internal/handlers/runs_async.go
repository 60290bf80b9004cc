package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/queue"
	queuePkg "github.com/jwebster45206/heist-engine/pkg/queue"
)

// EnqueueResponse acknowledges a queued run.
type EnqueueResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type AsyncRunHandler struct {
	runQueue *queue.RunQueue
	logger   *slog.Logger
}

func NewAsyncRunHandler(logger *slog.Logger, runQueue *queue.RunQueue) *AsyncRunHandler {
	return &AsyncRunHandler{
		logger:   logger,
		runQueue: runQueue,
	}
}

// ServeHTTP handles queued heist runs resolved by a worker.
// Routes:
// POST /v1/runs      - Enqueue a heist run
// GET /v1/runs/{id}  - Fetch the report for a queued run
func (h *AsyncRunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	requestID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/runs"), "/")

	switch r.Method {
	case http.MethodPost:
		h.handleEnqueue(w, r)

	case http.MethodGet:
		if requestID == "" {
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error: "Request ID is required for GET requests",
			}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		h.handleReport(w, r, requestID)

	default:
		h.logger.Warn("Method not allowed for runs endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: POST, GET",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
	}
}

func (h *AsyncRunHandler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
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
	if err := h.runQueue.Enqueue(r.Context(), runReq); err != nil {
		h.logger.Error("Failed to enqueue run", "error", err, "save_id", req.SaveID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to enqueue run",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Info("Run enqueued", "request_id", runReq.RequestID, "save_id", req.SaveID.String(), "heist_id", req.HeistID)
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(EnqueueResponse{
		RequestID: runReq.RequestID,
		Status:    "queued",
	}); err != nil {
		h.logger.Error("Failed to encode enqueue response", "error", err)
	}
}

func (h *AsyncRunHandler) handleReport(w http.ResponseWriter, r *http.Request, requestID string) {
	report, err := h.runQueue.LoadReport(r.Context(), requestID)
	if err != nil {
		h.logger.Error("Failed to load report", "error", err, "request_id", requestID)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load report",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if report == nil {
		// Still queued or unknown. The caller polls until a report lands.
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(EnqueueResponse{
			RequestID: requestID,
			Status:    "pending",
		}); err != nil {
			h.logger.Error("Failed to encode pending response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("Failed to encode report response", "error", err)
	}
}
