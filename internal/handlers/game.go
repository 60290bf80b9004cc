package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type GameHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewGameHandler(logger *slog.Logger, storage storage.Storage) *GameHandler {
	return &GameHandler{
		logger:  logger,
		storage: storage,
	}
}

// ServeHTTP handles HTTP requests for campaign save operations
// Routes:
// POST /v1/games        - Create a new campaign from the content pack
// GET /v1/games/{id}    - Read a campaign save by ID
// DELETE /v1/games/{id} - Delete a campaign save by ID
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/games")
	var saveID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		saveID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid save ID", "id", idStr, "error", err)
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error: "Invalid save ID format",
			}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if saveID == uuid.Nil {
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error: "Save ID is required for GET requests",
			}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		h.handleRead(w, r, saveID)

	case http.MethodDelete:
		if saveID == uuid.Nil {
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error: "Save ID is required for DELETE requests",
			}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		h.handleDelete(w, r, saveID)

	default:
		h.logger.Warn("Method not allowed for games endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: POST, GET, DELETE",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new campaign save")

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

	sg := content.NewSave()
	if err := h.storage.SaveGame(r.Context(), sg.ID, sg); err != nil {
		h.logger.Error("Failed to save new campaign", "error", err, "id", sg.ID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to create campaign save",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Debug("Campaign save created", "id", sg.ID.String())
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(sg); err != nil {
		h.logger.Error("Failed to encode save response", "error", err)
	}
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, saveID uuid.UUID) {
	sg, err := h.storage.LoadGame(r.Context(), saveID)
	if err != nil {
		h.logger.Error("Failed to load campaign save", "error", err, "id", saveID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load campaign save",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if sg == nil {
		h.logger.Warn("Campaign save not found", "id", saveID.String())
		w.WriteHeader(http.StatusNotFound)
		response := ErrorResponse{
			Error: "Campaign save not found",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(sg); err != nil {
		h.logger.Error("Failed to encode save response", "error", err)
	}
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, saveID uuid.UUID) {
	if err := h.storage.DeleteGame(r.Context(), saveID); err != nil {
		h.logger.Error("Failed to delete campaign save", "error", err, "id", saveID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to delete campaign save",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	h.logger.Debug("Campaign save deleted", "id", saveID.String())
	w.WriteHeader(http.StatusNoContent)
}
