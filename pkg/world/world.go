// Package world holds the persistent city state mutated by heist runs:
// notoriety, reputation, faction standings, the loot ledger and the treasury.
// All mutation goes through methods on State; a State is owned by exactly one
// run at a time (enforced by the embedding application, not here).
package world

import (
	"log/slog"
	"sort"
)

// RescueHeistID is unlocked whenever an operative is arrested.
const RescueHeistID = "rescue_heist"

// HostileStanding is the floor a faction standing is set to by the
// set_faction_hostile effect. Effectively locks the faction negative.
const HostileStanding = -999

// Reputation tracks the two independent reputation axes.
type Reputation struct {
	Fear    int `json:"fear"`
	Respect int `json:"respect"`
}

// Faction is the runtime relationship with one city faction.
type Faction struct {
	Name     string `json:"name"`
	Standing int    `json:"standing"`
}

// LootItem is one acquired treasure. Ledger order is acquisition order.
type LootItem struct {
	Item  string `json:"item"`
	Value int    `json:"value"`
}

// State is the persistent world state for one campaign.
type State struct {
	Notoriety         int                `json:"notoriety"`
	Reputation        Reputation         `json:"reputation"`
	Factions          map[string]Faction `json:"factions,omitempty"`
	Loot              []LootItem         `json:"loot,omitempty"`
	Treasury          int                `json:"treasury"`
	UnlockedHeists    map[string]bool    `json:"unlocked_heists,omitempty"`
	ToolInventory     map[string]int     `json:"tool_inventory,omitempty"`
	HeistsCompleted   int                `json:"heists_completed"`
	CompletedTriggers map[string]bool    `json:"completed_triggers,omitempty"`

	logger *slog.Logger
}

// New creates an empty State with initialized maps.
func New() *State {
	return &State{
		Factions:          make(map[string]Faction),
		UnlockedHeists:    make(map[string]bool),
		ToolInventory:     make(map[string]int),
		CompletedTriggers: make(map[string]bool),
	}
}

// WithLogger attaches a logger for mutation diagnostics.
// Returns the State for chaining.
func (s *State) WithLogger(logger *slog.Logger) *State {
	s.logger = logger
	return s
}

// Init ensures maps are non-nil after JSON decoding.
func (s *State) Init() {
	if s.Factions == nil {
		s.Factions = make(map[string]Faction)
	}
	if s.UnlockedHeists == nil {
		s.UnlockedHeists = make(map[string]bool)
	}
	if s.ToolInventory == nil {
		s.ToolInventory = make(map[string]int)
	}
	if s.CompletedTriggers == nil {
		s.CompletedTriggers = make(map[string]bool)
	}
}

// AddNotoriety raises notoriety by amount. Notoriety never goes below zero.
func (s *State) AddNotoriety(amount int) {
	s.Notoriety += amount
	if s.Notoriety < 0 {
		s.Notoriety = 0
	}
	if s.logger != nil {
		s.logger.Debug("Notoriety changed", "amount", amount, "notoriety", s.Notoriety)
	}
}

// AdjustReputation shifts fear or respect by delta. Unknown axes are a no-op.
func (s *State) AdjustReputation(axis string, delta int) {
	switch axis {
	case "fear":
		s.Reputation.Fear += delta
	case "respect":
		s.Reputation.Respect += delta
	default:
		if s.logger != nil {
			s.logger.Warn("Unknown reputation axis", "axis", axis)
		}
	}
}

// FactionIDs returns the known faction ids in stable sorted order.
func (s *State) FactionIDs() []string {
	ids := make([]string, 0, len(s.Factions))
	for id := range s.Factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetFactionHostile locks the faction's standing at the hostile floor.
// Unknown faction ids are a no-op.
func (s *State) SetFactionHostile(id string) bool {
	f, ok := s.Factions[id]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("Unknown faction", "faction", id)
		}
		return false
	}
	f.Standing = HostileStanding
	s.Factions[id] = f
	return true
}

// AdjustFactionStanding shifts a faction's standing by delta.
// Unknown faction ids are a no-op.
func (s *State) AdjustFactionStanding(id string, delta int) bool {
	f, ok := s.Factions[id]
	if !ok {
		return false
	}
	f.Standing += delta
	s.Factions[id] = f
	return true
}

// AllFactionsHostile reports whether every known faction has negative
// standing. False when no factions are known.
func (s *State) AllFactionsHostile() bool {
	if len(s.Factions) == 0 {
		return false
	}
	for _, f := range s.Factions {
		if f.Standing >= 0 {
			return false
		}
	}
	return true
}

// AddLoot appends an item to the ledger, preserving acquisition order.
func (s *State) AddLoot(item LootItem) {
	s.Loot = append(s.Loot, item)
	if s.logger != nil {
		s.logger.Debug("Loot acquired", "item", item.Item, "value", item.Value)
	}
}

// RemoveLootAt removes the ledger entry at index i, preserving order.
func (s *State) RemoveLootAt(i int) (LootItem, bool) {
	if i < 0 || i >= len(s.Loot) {
		return LootItem{}, false
	}
	item := s.Loot[i]
	s.Loot = append(s.Loot[:i], s.Loot[i+1:]...)
	return item, true
}

// ClearLoot empties the ledger.
func (s *State) ClearLoot() {
	s.Loot = nil
}

// AddTreasury credits the treasury.
func (s *State) AddTreasury(amount int) {
	s.Treasury += amount
}

// Spend debits the treasury, refusing to overdraw.
func (s *State) Spend(amount int) bool {
	if s.Treasury < amount {
		return false
	}
	s.Treasury -= amount
	return true
}

// UnlockHeist adds a heist to the unlocked set. Returns true only when the
// heist was not already unlocked, so callers can report new unlocks.
func (s *State) UnlockHeist(id string) bool {
	if s.UnlockedHeists[id] {
		return false
	}
	s.UnlockedHeists[id] = true
	if s.logger != nil {
		s.logger.Info("Heist unlocked", "heist", id)
	}
	return true
}

// IsUnlocked reports whether a heist is available.
func (s *State) IsUnlocked(id string) bool {
	return s.UnlockedHeists[id]
}

// AddTool adds one owned copy of a tool to the inventory.
func (s *State) AddTool(id string) {
	s.ToolInventory[id]++
}

// MarkTriggerCompleted records a fired narrative trigger. Returns false when
// the trigger had already fired.
func (s *State) MarkTriggerCompleted(key string) bool {
	if s.CompletedTriggers[key] {
		return false
	}
	s.CompletedTriggers[key] = true
	return true
}
