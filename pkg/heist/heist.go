// Package heist defines scenario content and the run orchestrator: the
// event loop that sequences skill checks, ability windows, tool usage and
// random-event injection, and applies outcome effects to world state.
package heist

import (
	"github.com/jwebster45206/heist-engine/pkg/effect"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// Outcome is one branch of an event: narrative text plus the ordered effect
// list applied when the branch is taken.
type Outcome struct {
	Text    string          `json:"text"`
	Effects []effect.Effect `json:"effects,omitempty"`
}

// EventScaling raises an event's difficulty once notoriety crosses a
// threshold.
type EventScaling struct {
	NotorietyThreshold int `json:"notoriety_threshold"`
	DifficultyIncrease int `json:"difficulty_increase,omitempty"`
}

// Event is one skill-check unit within a heist.
type Event struct {
	ID             string         `json:"id,omitempty"`
	Description    string         `json:"description"`
	Check          string         `json:"check"`
	Difficulty     int            `json:"difficulty"`
	Requirements   map[string]int `json:"requirements,omitempty"` // minimum base ratings
	Scaling        *EventScaling  `json:"scaling,omitempty"`
	Success        *Outcome       `json:"success,omitempty"`
	PartialSuccess *Outcome       `json:"partial_success,omitempty"`
	Failure        *Outcome       `json:"failure,omitempty"`
}

// SpecialEvent is an event that can also unlock a heist when fired from a
// narrative arc stage.
type SpecialEvent struct {
	Event
	UnlockHeist string `json:"unlock_heist,omitempty"`
}

// Getaway is the optional final escape check of a heist.
type Getaway struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Check          string   `json:"check"`
	Difficulty     int      `json:"difficulty"`
	Success        *Outcome `json:"success,omitempty"`
	PartialSuccess *Outcome `json:"partial_success,omitempty"`
	Failure        *Outcome `json:"failure,omitempty"`
}

// HeistScaling appends a bonus event once notoriety crosses a threshold.
type HeistScaling struct {
	NotorietyThreshold int    `json:"notoriety_threshold"`
	ExtraEvent         string `json:"extra_event,omitempty"` // special event id
}

// Heist is one scenario definition.
type Heist struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Difficulty    int              `json:"difficulty,omitempty"` // display only
	Events        []Event          `json:"events"`
	Getaway       *Getaway         `json:"getaway,omitempty"`
	PotentialLoot []world.LootItem `json:"potential_loot,omitempty"`
	XPSuccess     int              `json:"xp_success,omitempty"`
	XPFail        int              `json:"xp_fail,omitempty"`
	Scaling       *HeistScaling    `json:"scaling,omitempty"`
	MaxPartySize  int              `json:"max_party_size,omitempty"`
	RequiredRoles []string         `json:"required_roles,omitempty"`
}

// MaxParty returns the party-size limit, defaulting to 3.
func (h *Heist) MaxParty() int {
	if h.MaxPartySize <= 0 {
		return 3
	}
	return h.MaxPartySize
}

// SuccessXP returns the completion award, defaulting to 8.
func (h *Heist) SuccessXP() int {
	if h.XPSuccess <= 0 {
		return 8
	}
	return h.XPSuccess
}

// FailXP returns the consolation award, defaulting to 1.
func (h *Heist) FailXP() int {
	if h.XPFail <= 0 {
		return 1
	}
	return h.XPFail
}
