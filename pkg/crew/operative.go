// Package crew holds the operative roster: serializable operative specs,
// their runtime d20 actors, skill-check resolution and level progression.
package crew

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/d20"
)

// Operative status values.
const (
	StatusActive   = "active"
	StatusInjured  = "injured"
	StatusArrested = "arrested"
)

// OperativeSpec is the serializable specification for one crew member.
type OperativeSpec struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Skills   map[string]int `json:"skills,omitempty"`
	XP       int            `json:"xp"`
	Level    int            `json:"level"`
	Status   string         `json:"status,omitempty"`
	Upgrades []string       `json:"upgrades,omitempty"`
}

// Operative is the runtime representation of a crew member. The d20 Actor is
// built from the spec's skills and rebuilt whenever a skill changes.
type Operative struct {
	Spec  *OperativeSpec
	Actor *d20.Actor
}

// NewOperativeFromSpec builds an Operative and its d20 actor from a spec.
func NewOperativeFromSpec(spec *OperativeSpec) (*Operative, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.Status == "" {
		spec.Status = StatusActive
	}
	op := &Operative{Spec: spec}
	if err := op.rebuildActor(); err != nil {
		return nil, err
	}
	return op, nil
}

// rebuildActor rebuilds the d20 actor from the spec's current skills.
func (o *Operative) rebuildActor() error {
	attrs := make(map[string]int, len(o.Spec.Skills))
	for k, v := range o.Spec.Skills {
		attrs[strings.ToLower(k)] = v
	}
	actor, err := d20.NewActor(o.Spec.ID).
		WithHP(o.maxHP()).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build actor for %q: %w", o.Spec.ID, err)
	}
	o.Actor = actor
	return nil
}

// maxHP derives the actor's hit points from level. The engine does not
// track combat damage, but the actor builder requires a positive maximum.
func (o *Operative) maxHP() int {
	return 10 + 2*o.Spec.Level
}

// BaseSkill returns the operative's unmodified rating for a skill.
// Unknown skills rate zero.
func (o *Operative) BaseSkill(skill string) int {
	if o.Actor != nil {
		if v, ok := o.Actor.Attribute(strings.ToLower(skill)); ok {
			return v
		}
	}
	return o.Spec.Skills[skill]
}

// BoostSkill permanently raises a skill rating and rebuilds the actor.
func (o *Operative) BoostSkill(skill string, value int) error {
	if o.Spec.Skills == nil {
		o.Spec.Skills = make(map[string]int)
	}
	o.Spec.Skills[skill] += value
	return o.rebuildActor()
}

// HasUpgrade reports whether the operative has learned an upgrade.
func (o *Operative) HasUpgrade(id string) bool {
	return slices.Contains(o.Spec.Upgrades, id)
}

// IsActive reports whether the operative can join a run.
func (o *Operative) IsActive() bool {
	return o.Spec.Status == StatusActive
}

// MarshalJSON serializes the operative as its spec.
func (o *Operative) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Spec)
}

// UnmarshalJSON reconstructs the operative and rebuilds its actor.
func (o *Operative) UnmarshalJSON(data []byte) error {
	var spec OperativeSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal operative spec: %w", err)
	}
	if spec.Status == "" {
		spec.Status = StatusActive
	}
	o.Spec = &spec
	return o.rebuildActor()
}
