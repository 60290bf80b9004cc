package crew

import (
	"log/slog"
	"strings"
)

// UpgradeEffect is a structured payload applied when an upgrade is learned.
// Only stat_boost carries mechanics; other upgrade ids grant abilities that
// the run orchestrator recognizes by id.
type UpgradeEffect struct {
	Type  string `json:"type"`
	Skill string `json:"skill,omitempty"`
	Value int    `json:"value,omitempty"`
}

// UpgradeOption is one learnable upgrade.
type UpgradeOption struct {
	ID      string          `json:"id"`
	Text    string          `json:"text"`
	Effects []UpgradeEffect `json:"effects,omitempty"`
}

// Progression holds the XP thresholds, level cap and upgrade pools.
// UpgradeOptions is keyed by lowercase role name, with a "general" pool
// available to everyone.
type Progression struct {
	XPThresholds   []int                      `json:"xp_thresholds"`
	LevelCap       int                        `json:"level_cap"`
	UpgradeOptions map[string][]UpgradeOption `json:"upgrade_options,omitempty"`
}

// ThresholdFor returns the XP needed to leave the given level, or -1 when
// the level is at or past the cap.
func (p *Progression) ThresholdFor(level int) int {
	if level >= p.LevelCap || level >= len(p.XPThresholds) {
		return -1
	}
	return p.XPThresholds[level]
}

// AddXP awards XP to an operative and scans for level-ups. The scan loops:
// a single large award can cross several thresholds, but the level never
// exceeds the cap. Returns true when at least one level was gained.
func (r *Roster) AddXP(id string, amount int, prog *Progression, logger *slog.Logger) bool {
	op := r.Get(id)
	if op == nil {
		return false
	}

	op.Spec.XP += amount
	leveled := false
	for {
		threshold := prog.ThresholdFor(op.Spec.Level)
		if threshold < 0 || op.Spec.XP < threshold {
			break
		}
		op.Spec.Level++
		leveled = true
		if logger != nil {
			logger.Info("Operative leveled up", "operative", op.Spec.Name, "level", op.Spec.Level)
		}
	}
	return leveled
}

// AvailableUpgrades lists upgrades an operative can still learn: the general
// pool plus the role pool, minus anything already learned.
func (r *Roster) AvailableUpgrades(id string, prog *Progression) []UpgradeOption {
	op := r.Get(id)
	if op == nil || prog.UpgradeOptions == nil {
		return nil
	}

	pool := append([]UpgradeOption{}, prog.UpgradeOptions["general"]...)
	pool = append(pool, prog.UpgradeOptions[strings.ToLower(op.Spec.Role)]...)

	var out []UpgradeOption
	for _, u := range pool {
		if !op.HasUpgrade(u.ID) {
			out = append(out, u)
		}
	}
	return out
}

// LearnUpgrade records an upgrade on an operative and applies its stat
// boosts. Learning an already-known upgrade is a no-op.
func (r *Roster) LearnUpgrade(id string, option UpgradeOption) error {
	op := r.Get(id)
	if op == nil || op.HasUpgrade(option.ID) {
		return nil
	}

	op.Spec.Upgrades = append(op.Spec.Upgrades, option.ID)
	for _, eff := range option.Effects {
		if eff.Type == "stat_boost" {
			if err := op.BoostSkill(eff.Skill, eff.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
