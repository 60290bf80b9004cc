// Package narrative drives campaign arcs: stages watch world state through
// structured triggers and fire at most once, presenting story events whose
// choices feed the same effect engine heist outcomes use.
package narrative

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/effect"
	"github.com/jwebster45206/heist-engine/pkg/heist"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// Trigger types.
const (
	TriggerNotoriety      = "notoriety"
	TriggerFactionHostile = "faction_hostile_all"
	TriggerOperativeLevel = "operative_level"
)

// Trigger is a structured condition on world or roster state. Mechanics are
// never derived from narrative text.
type Trigger struct {
	Type        string `json:"type"`
	Threshold   int    `json:"threshold,omitempty"`
	OperativeID string `json:"operative_id,omitempty"` // operative_level: empty matches anyone
}

// Choice is one player option in a story event.
type Choice struct {
	Text        string          `json:"text"`
	Effects     []effect.Effect `json:"effects,omitempty"`
	UnlockHeist string          `json:"unlock_heist,omitempty"`
}

// StoryEvent is the narrative payload of a fired stage.
type StoryEvent struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// Stage is one step of an arc. Each stage fires at most once per save; the
// completed-trigger key is persisted in world state.
type Stage struct {
	ID          string     `json:"id"`
	Trigger     Trigger    `json:"trigger"`
	Event       StoryEvent `json:"event"`
	UnlockHeist string     `json:"unlock_heist,omitempty"`
}

// Arc is an ordered campaign thread.
type Arc struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

// Fired records one stage that fired during a scan.
type Fired struct {
	ArcID   string   `json:"arc_id"`
	StageID string   `json:"stage_id"`
	Title   string   `json:"title"`
	Lines   []string `json:"lines"`
}

// Scanner polls world and roster state against arc triggers.
type Scanner struct {
	arcs    []Arc
	world   *world.State
	roster  *crew.Roster
	engine  *effect.Engine
	decider heist.Decider
	logger  *slog.Logger
}

// NewScanner wires an arc scanner over shared state. The decider resolves
// story-event choices.
func NewScanner(arcs []Arc, w *world.State, r *crew.Roster, engine *effect.Engine, decider heist.Decider, logger *slog.Logger) *Scanner {
	return &Scanner{arcs: arcs, world: w, roster: r, engine: engine, decider: decider, logger: logger}
}

func stageKey(arcID, stageID string) string {
	return arcID + ":" + stageID
}

// Scan fires every not-yet-completed stage whose trigger currently holds and
// returns them in arc order. Stages later in an arc can fire in the same
// scan when their triggers already hold.
func (s *Scanner) Scan() []Fired {
	var fired []Fired
	for _, arc := range s.arcs {
		for _, stage := range arc.Stages {
			key := stageKey(arc.ID, stage.ID)
			if s.world.CompletedTriggers[key] {
				continue
			}
			if !s.triggered(stage.Trigger) {
				continue
			}
			s.world.MarkTriggerCompleted(key)
			fired = append(fired, s.fire(arc, stage))
		}
	}
	return fired
}

func (s *Scanner) triggered(tr Trigger) bool {
	switch tr.Type {
	case TriggerNotoriety:
		return s.world.Notoriety >= tr.Threshold
	case TriggerFactionHostile:
		return s.world.AllFactionsHostile()
	case TriggerOperativeLevel:
		if tr.OperativeID != "" {
			op := s.roster.Get(tr.OperativeID)
			return op != nil && op.Spec.Level >= tr.Threshold
		}
		for _, id := range s.roster.IDs() {
			if op := s.roster.Get(id); op != nil && op.Spec.Level >= tr.Threshold {
				return true
			}
		}
		return false
	default:
		if s.logger != nil {
			s.logger.Warn("Unknown arc trigger type", "type", tr.Type)
		}
		return false
	}
}

// fire presents the stage's event, resolves a choice if any, and applies its
// consequences. Loot effects operate on the world ledger.
func (s *Scanner) fire(arc Arc, stage Stage) Fired {
	out := Fired{ArcID: arc.ID, StageID: stage.ID, Title: stage.Event.Title}
	if stage.Event.Text != "" {
		out.Lines = append(out.Lines, stage.Event.Text)
	}

	if stage.UnlockHeist != "" && s.world.UnlockHeist(stage.UnlockHeist) {
		out.Lines = append(out.Lines, fmt.Sprintf("A new job is within reach: %s.", pretty(stage.UnlockHeist)))
	}

	if len(stage.Event.Choices) == 0 {
		return out
	}

	options := make([]string, len(stage.Event.Choices))
	for i, c := range stage.Event.Choices {
		options[i] = c.Text
	}
	idx := s.decider.Choose(stage.Event.Title, options)
	if idx < 0 || idx >= len(stage.Event.Choices) {
		idx = 0
	}
	choice := stage.Event.Choices[idx]
	out.Lines = append(out.Lines, choice.Text)

	if len(choice.Effects) > 0 {
		acc := effect.Accumulator{Items: append([]world.LootItem{}, s.world.Loot...)}
		lines := s.engine.Apply(choice.Effects, effect.Context{
			Participants: s.roster.ActiveIDs(),
			Loot:         &acc,
			Mods:         make(crew.TempModifiers),
		})
		s.world.ClearLoot()
		for _, item := range acc.Items {
			s.world.AddLoot(item)
		}
		out.Lines = append(out.Lines, lines...)
	}

	if choice.UnlockHeist != "" && s.world.UnlockHeist(choice.UnlockHeist) {
		out.Lines = append(out.Lines, fmt.Sprintf("A new job is within reach: %s.", pretty(choice.UnlockHeist)))
	}

	return out
}

func pretty(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
