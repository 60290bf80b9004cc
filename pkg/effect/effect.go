// Package effect defines the structured effect vocabulary attached to event
// outcomes and narrative choices, and the engine that applies effects to
// world and roster state. The vocabulary is closed: unknown tags are a
// deliberate no-op so badly authored content never crashes a running
// scenario.
package effect

import "github.com/jwebster45206/heist-engine/pkg/world"

// Effect tags.
const (
	TagAddNotoriety      = "add_notoriety"
	TagUpdateReputation  = "update_reputation"
	TagSetStatus         = "set_status"
	TagLoseLoot          = "lose_loot"
	TagSetFactionHostile = "set_faction_hostile"
	TagModifyXP          = "modify_xp"
	TagTempDebuff        = "temp_debuff"
)

// Target selectors for the who field.
const (
	WhoActiveMember = "active_member"
	WhoRandomMember = "random_member"
	WhoAllMembers   = "all_members"
)

// FactionRandom in a set_faction_hostile effect picks a uniformly random
// known faction.
const FactionRandom = "random"

// Loot scopes for lose_loot.
const (
	ScopeHalf    = "half"
	ScopePrimary = "primary"
)

// Effect is one declarative state mutation. Type selects the meaningful
// fields; everything else is ignored for that tag.
type Effect struct {
	Type    string `json:"type"`
	Value   int    `json:"value,omitempty"`
	RepType string `json:"rep_type,omitempty"` // update_reputation: "fear" or "respect"
	Who     string `json:"who,omitempty"`      // set_status / modify_xp / temp_debuff target selector
	Status  string `json:"status,omitempty"`   // set_status: new status
	Scope   string `json:"scope,omitempty"`    // lose_loot: "half", "primary" or empty
	Amount  int    `json:"amount,omitempty"`   // lose_loot: count removed from the end
	Faction string `json:"faction,omitempty"`  // set_faction_hostile: faction id or "random"
	Skill   string `json:"skill,omitempty"`    // temp_debuff: affected skill
	Role    string `json:"role,omitempty"`     // temp_debuff: role-targeted selector
}

// Accumulator is the loot gathered during one run, applied to the world
// ledger only at resolution. Order is acquisition order; lose_loot effects
// operate on this, not on the world ledger.
type Accumulator struct {
	Items []world.LootItem
}

// Add appends an item.
func (a *Accumulator) Add(item world.LootItem) {
	a.Items = append(a.Items, item)
}

// Len returns the current item count.
func (a *Accumulator) Len() int { return len(a.Items) }

// RemoveFront drops up to n items from the front (the earliest acquired).
// Returns how many were removed.
func (a *Accumulator) RemoveFront(n int) int {
	if n > len(a.Items) {
		n = len(a.Items)
	}
	if n <= 0 {
		return 0
	}
	a.Items = a.Items[n:]
	return n
}

// RemoveBack drops up to n items from the end. Returns how many were removed.
func (a *Accumulator) RemoveBack(n int) int {
	if n > len(a.Items) {
		n = len(a.Items)
	}
	if n <= 0 {
		return 0
	}
	a.Items = a.Items[:len(a.Items)-n]
	return n
}
