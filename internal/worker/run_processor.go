package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/effect"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/heist"
	"github.com/jwebster45206/heist-engine/pkg/narrative"
	queuePkg "github.com/jwebster45206/heist-engine/pkg/queue"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// RunProcessor executes queued heist runs against saved campaigns. Queued
// runs are headless, so every optional gate uses the auto decider.
type RunProcessor struct {
	storage storage.Storage
	content *storage.ContentPack
	catalog *heist.Catalog
	gear    *gear.Catalog
	roller  *dice.Roller
	log     *slog.Logger
}

// NewRunProcessor builds a processor over loaded content.
func NewRunProcessor(store storage.Storage, content *storage.ContentPack, roller *dice.Roller, log *slog.Logger) (*RunProcessor, error) {
	catalog, err := content.HeistCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build heist catalog: %w", err)
	}
	return &RunProcessor{
		storage: store,
		content: content,
		catalog: catalog,
		gear:    gear.NewCatalog(content.Tools),
		roller:  roller,
		log:     log,
	}, nil
}

// Process loads the save, executes the run, applies the rescue flow and arc
// scan, and persists the mutated campaign. The returned report is stored by
// the caller for retrieval.
func (p *RunProcessor) Process(ctx context.Context, req *queuePkg.Request) (*heist.Report, error) {
	sg, err := p.storage.LoadGame(ctx, req.SaveID)
	if err != nil {
		return nil, fmt.Errorf("failed to load save game: %w", err)
	}
	if sg == nil {
		return nil, fmt.Errorf("save game %s not found", req.SaveID)
	}

	roster, err := sg.Roster()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild roster: %w", err)
	}
	roster = roster.WithLogger(p.log)
	sg.World.WithLogger(p.log)

	if !sg.World.IsUnlocked(req.HeistID) {
		return nil, fmt.Errorf("heist %q is not unlocked in this campaign", req.HeistID)
	}

	runner := heist.NewRunner(p.catalog, p.gear, sg.World, roster, &p.content.Progression, p.roller, heist.AutoDecider{}, p.log)
	report, err := runner.Run(req.HeistID, req.Participants, req.ToolAssignments)
	if err != nil {
		return nil, fmt.Errorf("run failed: %w", err)
	}

	// A successful rescue frees the longest-held prisoner.
	if report.Success && req.HeistID == world.RescueHeistID {
		if op := roster.FirstArrested(); op != nil {
			roster.SetStatus(op.Spec.ID, crew.StatusActive)
			report.Lines = append(report.Lines, fmt.Sprintf("%s walks free of the Watch cells.", op.Spec.Name))
		}
	}

	engine := effect.NewEngine(sg.World, roster, p.roller, p.log)
	scanner := narrative.NewScanner(p.content.Arcs, sg.World, roster, engine, heist.AutoDecider{}, p.log)
	for _, fired := range scanner.Scan() {
		report.Lines = append(report.Lines, fired.Lines...)
	}

	sg.Crew = roster.Specs()
	if err := p.storage.SaveGame(ctx, sg.ID, sg); err != nil {
		return nil, fmt.Errorf("failed to persist campaign after run: %w", err)
	}

	return report, nil
}
