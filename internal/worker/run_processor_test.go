package worker

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/heist"
	queuePkg "github.com/jwebster45206/heist-engine/pkg/queue"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

func testContent() *storage.ContentPack {
	return &storage.ContentPack{
		Crew: []crew.OperativeSpec{
			{ID: "silas", Name: "Silas", Role: "rogue", Level: 1, Skills: map[string]int{"stealth": 5}},
			{ID: "lyra", Name: "Lyra", Role: "mage", Level: 1, Skills: map[string]int{"magic": 5}},
		},
		Heists: []heist.Heist{
			{
				// Difficulties are low enough that any die roll succeeds.
				ID:   "counting_house",
				Name: "The Counting House",
				Events: []heist.Event{
					{Description: "Slip past the night clerk", Check: "stealth", Difficulty: 3,
						Success: &heist.Outcome{Text: "In."}, Failure: &heist.Outcome{Text: "Spotted."}},
				},
				PotentialLoot: []world.LootItem{{Item: "Guild ledger", Value: 120}},
				XPSuccess:     8,
				XPFail:        1,
			},
			{
				ID:   world.RescueHeistID,
				Name: "The Watch Cells",
				Events: []heist.Event{
					{Description: "Slip into the cell block", Check: "magic", Difficulty: 3,
						Success: &heist.Outcome{Text: "In."}, Failure: &heist.Outcome{Text: "Seen."}},
				},
			},
		},
		Progression: crew.Progression{XPThresholds: []int{0, 10, 25, 50}, LevelCap: 4},
		Starting:    storage.StartingState{Treasury: 50, UnlockedHeists: []string{"counting_house"}},
	}
}

func setupProcessor(t *testing.T) (*RunProcessor, *storage.MockStorage, *storage.SaveGame) {
	t.Helper()

	store := storage.NewMockStorage()
	content := testContent()
	store.SetContent(content)

	sg := content.NewSave()
	if err := store.SaveGame(context.Background(), sg.ID, sg); err != nil {
		t.Fatalf("Failed to seed save: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p, err := NewRunProcessor(store, content, dice.New(11), log)
	if err != nil {
		t.Fatalf("Failed to build processor: %v", err)
	}
	return p, store, sg
}

func TestProcess_RunAndPersist(t *testing.T) {
	p, store, sg := setupProcessor(t)
	ctx := context.Background()

	req := queuePkg.NewRequest(sg.ID, "counting_house", []string{"silas", "lyra"}, nil)
	report, err := p.Process(ctx, req)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("Expected a guaranteed success, got failure: %v", report.Lines)
	}

	// The mutated campaign must be persisted.
	loaded, err := store.LoadGame(ctx, sg.ID)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if len(loaded.World.Loot) != 1 {
		t.Errorf("Expected the loot persisted, got %d items", len(loaded.World.Loot))
	}
	for _, spec := range loaded.Crew {
		if spec.XP != 8 {
			t.Errorf("Operative %s: expected persisted XP 8, got %d", spec.ID, spec.XP)
		}
	}
}

func TestProcess_RescueFreesArrested(t *testing.T) {
	p, store, sg := setupProcessor(t)
	ctx := context.Background()

	sg.Crew[0].Status = crew.StatusArrested
	sg.World.UnlockHeist(world.RescueHeistID)
	if err := store.SaveGame(ctx, sg.ID, sg); err != nil {
		t.Fatalf("Failed to update save: %v", err)
	}

	req := queuePkg.NewRequest(sg.ID, world.RescueHeistID, []string{"lyra"}, nil)
	report, err := p.Process(ctx, req)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("Expected the rescue to succeed: %v", report.Lines)
	}

	loaded, _ := store.LoadGame(ctx, sg.ID)
	for _, spec := range loaded.Crew {
		if spec.ID == "silas" && spec.Status != crew.StatusActive {
			t.Errorf("Expected silas freed after the rescue, status = %s", spec.Status)
		}
	}
}

func TestProcess_Preconditions(t *testing.T) {
	p, _, sg := setupProcessor(t)
	ctx := context.Background()

	if _, err := p.Process(ctx, queuePkg.NewRequest(uuid.New(), "counting_house", []string{"silas"}, nil)); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a missing-save error, got %v", err)
	}

	if _, err := p.Process(ctx, queuePkg.NewRequest(sg.ID, world.RescueHeistID, []string{"silas"}, nil)); err == nil || !strings.Contains(err.Error(), "not unlocked") {
		t.Errorf("Expected a locked-heist error, got %v", err)
	}
}
