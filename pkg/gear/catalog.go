// Package gear holds the immutable tool catalog and resolves tool effects
// for a (tool, role) pair. Per-run consumption is tracked by the run, not
// here; catalog entries never change during play.
package gear

import "slices"

// Tool effect tags.
const (
	EffectBonus               = "bonus"
	EffectDifficultyReduction = "difficulty_reduction"
	EffectBypass              = "bypass"
	EffectSpecial             = "special"
)

// SkillAny in a bonus effect matches every check.
const SkillAny = "any"

// ToolEffect is the tagged payload of a tool. Type selects which fields are
// meaningful; unknown tags resolve to nothing at use time.
type ToolEffect struct {
	Type      string `json:"type"`
	Skill     string `json:"skill,omitempty"`     // bonus: which check it boosts, or "any"
	Value     int    `json:"value,omitempty"`     // bonus / difficulty_reduction magnitude
	Condition string `json:"condition,omitempty"` // difficulty_reduction: description substring
	Check     string `json:"check,omitempty"`     // bypass: which check it skips
	Notoriety int    `json:"notoriety,omitempty"` // bypass: notoriety cost
	ID        string `json:"id,omitempty"`        // special: behavior id
}

// Tool is one catalog entry.
type Tool struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	UsableBy     []string   `json:"usable_by,omitempty"`
	Effect       ToolEffect `json:"effect"`
	UsesPerHeist int        `json:"uses_per_heist,omitempty"`
	Cost         int        `json:"cost,omitempty"`
}

// Price returns the purchase cost, defaulting to 25.
func (t *Tool) Price() int {
	if t.Cost <= 0 {
		return 25
	}
	return t.Cost
}

// Uses returns the per-heist use budget, defaulting to 1.
func (t *Tool) Uses() int {
	if t.UsesPerHeist <= 0 {
		return 1
	}
	return t.UsesPerHeist
}

// Catalog is an immutable lookup of tools by id.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// NewCatalog builds a catalog from tool definitions. Later duplicates
// replace earlier ones.
func NewCatalog(tools []Tool) *Catalog {
	c := &Catalog{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := c.tools[t.ID]; !exists {
			c.order = append(c.order, t.ID)
		}
		c.tools[t.ID] = t
	}
	return c
}

// Get returns a tool by id.
func (c *Catalog) Get(id string) (Tool, bool) {
	t, ok := c.tools[id]
	return t, ok
}

// IDs returns tool ids in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Effect resolves the effect of a tool for an operative role. Returns false
// unless the tool exists and the role may use it.
func (c *Catalog) Effect(toolID, role string) (ToolEffect, bool) {
	t, ok := c.tools[toolID]
	if !ok || !slices.Contains(t.UsableBy, role) {
		return ToolEffect{}, false
	}
	return t.Effect, true
}

// Validate reports whether a role may use a tool. Same membership test as
// Effect, without the payload.
func (c *Catalog) Validate(toolID, role string) bool {
	_, ok := c.Effect(toolID, role)
	return ok
}
