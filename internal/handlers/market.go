package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/market"
)

// MarketRequest is the request body for downtime market actions.
type MarketRequest struct {
	SaveID      uuid.UUID `json:"save_id"`
	FactionID   string    `json:"faction_id,omitempty"`
	LootIndex   *int      `json:"loot_index,omitempty"`
	OperativeID string    `json:"operative_id,omitempty"`
	ToolID      string    `json:"tool_id,omitempty"`
}

// MarketResponse reports the outcome of a market action along with
// the funds left afterward.
type MarketResponse struct {
	Action   string `json:"action"`
	Proceeds int    `json:"proceeds,omitempty"`
	Freed    string `json:"freed,omitempty"`
	Treasury int    `json:"treasury"`
}

type MarketHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewMarketHandler(logger *slog.Logger, storage storage.Storage) *MarketHandler {
	return &MarketHandler{
		logger:  logger,
		storage: storage,
	}
}

// ServeHTTP handles downtime actions between heists.
// Routes:
// POST /v1/market/fence - Sell loot to a faction fence
// POST /v1/market/heal  - Pay to heal an injured operative
// POST /v1/market/buy   - Buy a tool for the crew stash
// POST /v1/market/bribe - Bribe the watch to free an arrested operative
func (h *MarketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for market endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: POST",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/market"), "/")

	var req MarketRequest
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

	if req.SaveID == uuid.Nil {
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "save_id field is required",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	sg, err := h.storage.LoadGame(r.Context(), req.SaveID)
	if err != nil {
		h.logger.Error("Failed to load campaign save", "error", err, "id", req.SaveID.String())
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
		w.WriteHeader(http.StatusNotFound)
		response := ErrorResponse{
			Error: "Campaign save not found",
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

	tools := gear.NewCatalog(content.Tools)

	roster, err := sg.Roster()
	if err != nil {
		h.logger.Error("Failed to build roster from save", "error", err, "id", req.SaveID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to build roster from save",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	m := market.New(sg.World, roster, tools, market.Config{}, h.logger)
	resp := MarketResponse{Action: action}

	switch action {
	case "fence":
		if req.LootIndex != nil {
			resp.Proceeds, err = m.Fence(*req.LootIndex, req.FactionID)
		} else {
			resp.Proceeds, err = m.FenceAll(req.FactionID)
		}
	case "heal":
		err = m.Heal(req.OperativeID)
	case "buy":
		err = m.BuyTool(req.ToolID)
	case "bribe":
		resp.Freed, err = m.Bribe()
	default:
		w.WriteHeader(http.StatusNotFound)
		response := ErrorResponse{
			Error: "Unknown market action: " + action,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err != nil {
		h.logger.Warn("Market action rejected", "action", action, "error", err, "id", req.SaveID.String())
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	sg.Crew = roster.Specs()
	if err := h.storage.SaveGame(r.Context(), sg.ID, sg); err != nil {
		h.logger.Error("Failed to persist campaign save", "error", err, "id", sg.ID.String())
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to persist campaign save",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	resp.Treasury = sg.World.Treasury
	h.logger.Info("Market action applied", "action", action, "id", sg.ID.String(), "treasury", resp.Treasury)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode market response", "error", err)
	}
}
