// Package queue defines the wire model for queued heist runs.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request is one queued heist run against a save game.
type Request struct {
	RequestID       string            `json:"request_id"`
	SaveID          uuid.UUID         `json:"save_id"`
	HeistID         string            `json:"heist_id"`
	Participants    []string          `json:"participants"`
	ToolAssignments map[string]string `json:"tool_assignments,omitempty"`
	EnqueuedAt      time.Time         `json:"enqueued_at"`
}

// NewRequest builds a run request with a fresh request id.
func NewRequest(saveID uuid.UUID, heistID string, participants []string, tools map[string]string) *Request {
	return &Request{
		RequestID:       uuid.New().String(),
		SaveID:          saveID,
		HeistID:         heistID,
		Participants:    participants,
		ToolAssignments: tools,
		EnqueuedAt:      time.Now(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
