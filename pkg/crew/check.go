package crew

import (
	"github.com/jwebster45206/heist-engine/pkg/dice"
)

// CheckResult is the tri-state outcome of a skill check.
type CheckResult string

const (
	Success CheckResult = "success"
	Partial CheckResult = "partial"
	Failure CheckResult = "failure"
)

// TempModifiers maps operative id -> skill -> signed delta. Modifiers live
// for a single event resolution and are cleared by the run orchestrator.
type TempModifiers map[string]map[string]int

// Add accumulates a delta for an operative's skill. Deltas stack additively.
func (m TempModifiers) Add(opID, skill string, delta int) {
	if m[opID] == nil {
		m[opID] = make(map[string]int)
	}
	m[opID][skill] += delta
}

// Get returns the accumulated delta for an operative's skill.
func (m TempModifiers) Get(opID, skill string) int {
	return m[opID][skill]
}

// Clear drops all pending modifiers.
func (m TempModifiers) Clear() {
	for k := range m {
		delete(m, k)
	}
}

// CheckRequest configures one skill check.
type CheckRequest struct {
	Skill         string
	Difficulty    int
	PartialMargin int  // 0 means the default margin of 1
	ToolBonus     int  // tool and ability bonuses, already summed
	Roll          *int // fixed die value; nil draws from the roller
	Mods          TempModifiers
}

// SkillCheck resolves a check for one operative:
//
//	total = base skill + temp modifier + tool bonus + 1d10
//
// total >= difficulty is a success; within the partial margin below
// difficulty is a partial; anything lower fails. An unknown operative id
// resolves to a failure with a warning, never a panic.
func (r *Roster) SkillCheck(opID string, req CheckRequest, roller *dice.Roller) CheckResult {
	op := r.Get(opID)
	if op == nil {
		if r.logger != nil {
			r.logger.Warn("Skill check for unknown operative", "operative", opID, "skill", req.Skill)
		}
		return Failure
	}

	margin := req.PartialMargin
	if margin == 0 {
		margin = 1
	}

	effective := op.BaseSkill(req.Skill) + req.Mods.Get(opID, req.Skill)

	roll := 0
	if req.Roll != nil {
		roll = *req.Roll
	} else {
		roll = roller.Roll(dice.CheckDie)
	}

	total := effective + req.ToolBonus + roll
	if r.logger != nil {
		r.logger.Debug("Skill check",
			"operative", opID,
			"skill", req.Skill,
			"difficulty", req.Difficulty,
			"effective_skill", effective,
			"bonus", req.ToolBonus,
			"roll", roll,
			"total", total)
	}

	switch {
	case total >= req.Difficulty:
		return Success
	case total >= req.Difficulty-margin:
		return Partial
	default:
		return Failure
	}
}
