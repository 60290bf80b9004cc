package effect

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// Context carries the run-scoped targets an effect list applies against.
type Context struct {
	Participants []string           // operative ids on the run, iteration order
	Acting       string             // operative who triggered the outcome
	Loot         *Accumulator       // the run's loot accumulator
	Mods         crew.TempModifiers // the run's temporary modifier map
}

// Engine interprets effect lists against world and roster state. Effects
// apply in list order; later effects see earlier mutations. Content errors
// (unknown ids, axes, factions) are skipped with a warning, never fatal.
type Engine struct {
	world  *world.State
	roster *crew.Roster
	roller *dice.Roller
	logger *slog.Logger
}

// NewEngine creates an effect engine bound to one world and roster.
func NewEngine(w *world.State, r *crew.Roster, roller *dice.Roller, logger *slog.Logger) *Engine {
	return &Engine{world: w, roster: r, roller: roller, logger: logger}
}

// Apply runs an ordered effect list. Returns narrative report lines for the
// caller to surface. A nil or empty list is a no-op.
func (e *Engine) Apply(effects []Effect, ctx Context) []string {
	var lines []string

	for _, eff := range effects {
		switch eff.Type {
		case TagAddNotoriety:
			value := eff.Value
			if value <= 0 {
				value = 1
			}
			e.world.AddNotoriety(value)
			lines = append(lines, fmt.Sprintf("Notoriety rises to %d.", e.world.Notoriety))

		case TagUpdateReputation:
			e.world.AdjustReputation(eff.RepType, eff.Value)

		case TagSetStatus:
			target := e.resolveSingleTarget(eff.Who, ctx)
			op := e.roster.Get(target)
			if op == nil {
				e.warn("set_status target not found", "target", target)
				continue
			}
			op.Spec.Status = eff.Status
			lines = append(lines, fmt.Sprintf("%s is now %s!", op.Spec.Name, eff.Status))
			if eff.Status == crew.StatusArrested {
				if e.world.UnlockHeist(world.RescueHeistID) {
					lines = append(lines, "The rescue heist is now available to free your crew!")
				}
			}

		case TagLoseLoot:
			if ctx.Loot == nil {
				continue
			}
			switch eff.Scope {
			case ScopeHalf:
				if n := ctx.Loot.RemoveFront(ctx.Loot.Len() / 2); n > 0 {
					lines = append(lines, fmt.Sprintf("Half the haul is lost (%d items).", n))
				}
			case ScopePrimary:
				if ctx.Loot.RemoveFront(1) > 0 {
					lines = append(lines, "The primary objective is lost!")
				}
			default:
				amount := eff.Amount
				if amount <= 0 {
					amount = eff.Value
				}
				if amount <= 0 {
					amount = 1
				}
				ctx.Loot.RemoveBack(amount)
			}

		case TagSetFactionHostile:
			faction := eff.Faction
			if faction == FactionRandom {
				ids := e.world.FactionIDs()
				if len(ids) == 0 {
					continue
				}
				faction = ids[e.roller.Pick(len(ids))]
			}
			if e.world.SetFactionHostile(faction) {
				lines = append(lines, fmt.Sprintf("%s is now hostile!", e.world.Factions[faction].Name))
			}

		case TagModifyXP:
			target := e.resolveSingleTarget(eff.Who, ctx)
			op := e.roster.Get(target)
			if op == nil {
				e.warn("modify_xp target not found", "target", target)
				continue
			}
			// Raw grant: level thresholds are scanned only by the
			// completion XP award, not here.
			e.roster.GrantXP(target, eff.Value)
			lines = append(lines, fmt.Sprintf("%s's XP is modified by %d.", op.Spec.Name, eff.Value))

		case TagTempDebuff:
			for _, target := range e.resolveDebuffTargets(eff, ctx) {
				op := e.roster.Get(target)
				if op == nil {
					continue
				}
				ctx.Mods.Add(target, eff.Skill, eff.Value)
				lines = append(lines, fmt.Sprintf("%s's %s is temporarily modified by %d.", op.Spec.Name, eff.Skill, eff.Value))
			}

		default:
			// Unknown tags are skipped by design: content robustness
			// beats strictness here.
			e.warn("unknown effect tag skipped", "type", eff.Type)
		}
	}

	return lines
}

// resolveSingleTarget picks the operative a single-target effect applies to:
// the acting operative, or a uniformly random participant.
func (e *Engine) resolveSingleTarget(who string, ctx Context) string {
	if who == WhoActiveMember {
		return ctx.Acting
	}
	if len(ctx.Participants) == 0 {
		return ctx.Acting
	}
	return ctx.Participants[e.roller.Pick(len(ctx.Participants))]
}

// resolveDebuffTargets expands a temp_debuff selector to operative ids.
func (e *Engine) resolveDebuffTargets(eff Effect, ctx Context) []string {
	switch {
	case eff.Who == WhoAllMembers:
		return ctx.Participants
	case eff.Who == WhoActiveMember:
		return []string{ctx.Acting}
	case eff.Who == WhoRandomMember:
		if len(ctx.Participants) == 0 {
			return nil
		}
		return []string{ctx.Participants[e.roller.Pick(len(ctx.Participants))]}
	case eff.Role != "":
		var out []string
		for _, id := range ctx.Participants {
			op := e.roster.Get(id)
			if op != nil && strings.EqualFold(op.Spec.Role, eff.Role) {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
