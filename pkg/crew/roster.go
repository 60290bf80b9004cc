package crew

import (
	"fmt"
	"log/slog"
)

// Roster owns the operative records for a campaign. Lookup is by id;
// iteration order is the order operatives were registered.
type Roster struct {
	operatives map[string]*Operative
	order      []string
	logger     *slog.Logger
}

// NewRoster builds a roster from operative specs. Duplicate ids are rejected.
func NewRoster(specs []OperativeSpec) (*Roster, error) {
	r := &Roster{operatives: make(map[string]*Operative, len(specs))}
	for i := range specs {
		spec := specs[i]
		if _, exists := r.operatives[spec.ID]; exists {
			return nil, fmt.Errorf("duplicate operative id %q", spec.ID)
		}
		op, err := NewOperativeFromSpec(&spec)
		if err != nil {
			return nil, err
		}
		r.operatives[spec.ID] = op
		r.order = append(r.order, spec.ID)
	}
	return r, nil
}

// WithLogger attaches a logger for skill-check diagnostics.
// Returns the Roster for chaining.
func (r *Roster) WithLogger(logger *slog.Logger) *Roster {
	r.logger = logger
	return r
}

// Get returns the operative with the given id, or nil.
func (r *Roster) Get(id string) *Operative {
	return r.operatives[id]
}

// IDs returns all operative ids in registration order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns all operative specs in registration order, for persistence.
func (r *Roster) Specs() []OperativeSpec {
	out := make([]OperativeSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.operatives[id].Spec)
	}
	return out
}

// ActiveIDs returns ids of operatives able to join a run.
func (r *Roster) ActiveIDs() []string {
	var out []string
	for _, id := range r.order {
		if r.operatives[id].IsActive() {
			out = append(out, id)
		}
	}
	return out
}

// FirstArrested returns the first arrested operative in registration order,
// or nil when nobody is under arrest.
func (r *Roster) FirstArrested() *Operative {
	for _, id := range r.order {
		if r.operatives[id].Spec.Status == StatusArrested {
			return r.operatives[id]
		}
	}
	return nil
}

// SetStatus updates an operative's status. Unknown ids are a no-op.
func (r *Roster) SetStatus(id, status string) bool {
	op := r.operatives[id]
	if op == nil {
		return false
	}
	op.Spec.Status = status
	return true
}

// GrantXP adds raw XP without scanning level thresholds. Narrative XP
// modifiers are raw grants; only heist-completion awards trigger the
// level-up scan (see AddXP).
func (r *Roster) GrantXP(id string, amount int) bool {
	op := r.operatives[id]
	if op == nil {
		return false
	}
	op.Spec.XP += amount
	return true
}
