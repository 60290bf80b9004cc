package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/heist"
	"github.com/jwebster45206/heist-engine/pkg/narrative"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// StartingState seeds a new campaign from player.json.
type StartingState struct {
	Treasury       int      `json:"treasury"`
	UnlockedHeists []string `json:"unlocked_heists"`
}

// ContentPack is the full static content set loaded from the data dir.
type ContentPack struct {
	Crew          []crew.OperativeSpec     `json:"crew"`
	Tools         []gear.Tool              `json:"tools"`
	Heists        []heist.Heist            `json:"heists"`
	RandomEvents  []heist.Event            `json:"random_events"`
	SpecialEvents []heist.SpecialEvent     `json:"special_events"`
	Factions      map[string]world.Faction `json:"factions"`
	Arcs          []narrative.Arc          `json:"arcs"`
	Progression   crew.Progression         `json:"progression"`
	Starting      StartingState            `json:"starting"`
}

// NewSave builds a fresh campaign save from the pack's starting state.
func (cp *ContentPack) NewSave() *SaveGame {
	w := world.New()
	for id, f := range cp.Factions {
		w.Factions[id] = f
	}
	w.Treasury = cp.Starting.Treasury
	for _, id := range cp.Starting.UnlockedHeists {
		w.UnlockHeist(id)
	}

	now := time.Now()
	return &SaveGame{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		World:     w,
		Crew:      append([]crew.OperativeSpec{}, cp.Crew...),
	}
}

// HeistCatalog builds the run catalog from the pack's heists and event pools.
func (cp *ContentPack) HeistCatalog() (*heist.Catalog, error) {
	return heist.NewCatalog(cp.Heists, cp.RandomEvents, cp.SpecialEvents)
}

// LoadContent reads the content pack from the data dir. Heists live one per
// file under heists/; everything else is a single JSON document.
func (r *RedisStorage) LoadContent(ctx context.Context) (*ContentPack, error) {
	return LoadContentPack(r.dataDir, r.logger)
}

// LoadContentPack reads a content pack from disk without any backing store.
func LoadContentPack(dataDir string, logger *slog.Logger) (*ContentPack, error) {
	cp := &ContentPack{}

	if err := readJSON(filepath.Join(dataDir, "crew.json"), &cp.Crew); err != nil {
		return nil, fmt.Errorf("failed to load crew: %w", err)
	}
	if err := readJSON(filepath.Join(dataDir, "tools.json"), &cp.Tools); err != nil {
		return nil, fmt.Errorf("failed to load tools: %w", err)
	}
	if err := readJSON(filepath.Join(dataDir, "factions.json"), &cp.Factions); err != nil {
		return nil, fmt.Errorf("failed to load factions: %w", err)
	}
	if err := readJSON(filepath.Join(dataDir, "progression.json"), &cp.Progression); err != nil {
		return nil, fmt.Errorf("failed to load progression: %w", err)
	}
	if err := readJSON(filepath.Join(dataDir, "player.json"), &cp.Starting); err != nil {
		return nil, fmt.Errorf("failed to load starting state: %w", err)
	}

	// Optional pools: missing files mean empty pools.
	if err := readOptionalJSON(filepath.Join(dataDir, "random_events.json"), &cp.RandomEvents); err != nil {
		return nil, fmt.Errorf("failed to load random events: %w", err)
	}
	if err := readOptionalJSON(filepath.Join(dataDir, "special_events.json"), &cp.SpecialEvents); err != nil {
		return nil, fmt.Errorf("failed to load special events: %w", err)
	}
	if err := readOptionalJSON(filepath.Join(dataDir, "arcs.json"), &cp.Arcs); err != nil {
		return nil, fmt.Errorf("failed to load arcs: %w", err)
	}

	heistsDir := filepath.Join(dataDir, "heists")
	err := filepath.WalkDir(heistsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		var h heist.Heist
		if err := readJSON(path, &h); err != nil {
			logger.Warn("Failed to read heist file", "path", path, "error", err)
			return nil
		}
		cp.Heists = append(cp.Heists, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk heists directory: %w", err)
	}

	return cp, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readOptionalJSON(path string, out any) error {
	err := readJSON(path, out)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
