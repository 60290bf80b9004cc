package heist

import (
	"fmt"

	"github.com/jwebster45206/heist-engine/pkg/world"
)

// Report is the structured result of one heist run. Lines carries the
// narrative transcript in resolution order.
type Report struct {
	HeistID   string           `json:"heist_id"`
	HeistName string           `json:"heist_name"`
	Lines     []string         `json:"lines"`
	Success   bool             `json:"success"`
	Failures  int              `json:"failures"`
	Partials  int              `json:"partials"`
	Events    int              `json:"events"`
	Loot      []world.LootItem `json:"loot,omitempty"`
	XPAwarded int              `json:"xp_awarded"`
	LeveledUp []string         `json:"leveled_up,omitempty"`
}

func (r *Report) addLine(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// addText appends prewritten narrative verbatim. Content-pack text may
// contain percent signs and must never pass through Sprintf.
func (r *Report) addText(line string) {
	r.Lines = append(r.Lines, line)
}
