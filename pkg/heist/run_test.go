package heist

import (
	"strings"
	"testing"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/effect"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

type runFixture struct {
	world  *world.State
	roster *crew.Roster
	runner *Runner
}

func newRunFixture(t *testing.T, heists []Heist, specials []SpecialEvent, tools []gear.Tool, decider Decider, extra ...crew.OperativeSpec) *runFixture {
	t.Helper()

	specs := []crew.OperativeSpec{
		{ID: "silas", Name: "Silas", Role: "rogue", Level: 1, Skills: map[string]int{"stealth": 5, "lockpicking": 4, "combat": 2}},
		{ID: "lyra", Name: "Lyra", Role: "mage", Level: 1, Skills: map[string]int{"magic": 5, "lore": 3}},
	}
	specs = append(specs, extra...)

	roster, err := crew.NewRoster(specs)
	if err != nil {
		t.Fatalf("failed to build roster: %v", err)
	}

	catalog, err := NewCatalog(heists, nil, specials)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	w := world.New()
	w.Init()

	prog := &crew.Progression{
		XPThresholds: []int{0, 10, 25, 50},
		LevelCap:     4,
	}

	return &runFixture{
		world:  w,
		roster: roster,
		runner: NewRunner(catalog, gear.NewCatalog(tools), w, roster, prog, dice.New(7), decider, nil),
	}
}

func twoEventHeist() Heist {
	return Heist{
		ID:   "counting_house",
		Name: "The Counting House",
		Events: []Event{
			{
				Description: "Slip past the night clerk",
				Check:       "stealth",
				Difficulty:  3,
				Success:     &Outcome{Text: "Silas ghosts through the side door."},
				Failure:     &Outcome{Text: "A lantern swings toward the crew."},
			},
			{
				Description: "Unweave the vault ward",
				Check:       "magic",
				Difficulty:  4,
				Success:     &Outcome{Text: "The ward dims and dies."},
				Failure:     &Outcome{Text: "The ward flares an alarm."},
			},
		},
		PotentialLoot: []world.LootItem{{Item: "Guild ledger", Value: 120}},
		XPSuccess:     8,
		XPFail:        1,
	}
}

func TestRun_TwoEventSuccess(t *testing.T) {
	f := newRunFixture(t, []Heist{twoEventHeist()}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Errorf("expected run success, got failure: %v", report.Lines)
	}
	if report.Failures != 0 {
		t.Errorf("expected 0 failures, got %d", report.Failures)
	}
	if len(f.world.Loot) != 1 {
		t.Fatalf("expected loot banked exactly once, got %d items", len(f.world.Loot))
	}
	if f.world.Loot[0].Value != 120 {
		t.Errorf("expected undoubled loot value 120, got %d", f.world.Loot[0].Value)
	}
	for _, id := range []string{"silas", "lyra"} {
		if got := f.roster.Get(id).Spec.XP; got != 8 {
			t.Errorf("operative %s: expected 8 XP, got %d", id, got)
		}
	}
	if len(report.LeveledUp) != 0 {
		t.Errorf("expected no level-ups at 8 XP, got %v", report.LeveledUp)
	}
}

func TestRun_RollArithmeticUsesAddition(t *testing.T) {
	f := newRunFixture(t, []Heist{twoEventHeist()}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 2)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 skill + 2 roll = 7 >= 4.
	if !report.Success {
		t.Errorf("expected success with total 7 vs difficulty 4, got failure")
	}
}

func TestRun_GuaranteedFailure(t *testing.T) {
	h := twoEventHeist()
	h.Events[1].Difficulty = 9

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 2)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("expected run failure with total 7 vs difficulty 9")
	}
	if len(f.world.Loot) != 0 {
		t.Errorf("expected no loot on failed run, got %d items", len(f.world.Loot))
	}
	for _, id := range []string{"silas", "lyra"} {
		if got := f.roster.Get(id).Spec.XP; got != 1 {
			t.Errorf("operative %s: expected failure XP 1, got %d", id, got)
		}
	}
}

func TestRun_EarlyFailureFailsWholeRun(t *testing.T) {
	h := twoEventHeist()
	h.Events[0].Difficulty = 20

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("one failure must fail the run even when later events succeed")
	}
	if report.Failures != 1 {
		t.Errorf("expected exactly 1 failure, got %d", report.Failures)
	}
}

func TestRun_PartialDoesNotFailRun(t *testing.T) {
	h := twoEventHeist()
	h.Events[0].Difficulty = 11 // total 10 lands in the partial margin

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Error("partials must not fail the run")
	}
	if report.Partials != 1 {
		t.Errorf("expected 1 partial, got %d", report.Partials)
	}
	found := false
	for _, line := range report.Lines {
		if strings.Contains(line, "Complications follow") {
			found = true
		}
	}
	if !found {
		t.Error("expected the generic complication text when no partial block is authored")
	}
}

func TestRun_TempDebuffClearedAfterEvent(t *testing.T) {
	h := twoEventHeist()
	h.Events[0].Difficulty = 20
	h.Events[0].Failure = &Outcome{
		Text: "The clerk shouts. Nerves fray.",
		Effects: []effect.Effect{
			{Type: effect.TagTempDebuff, Who: effect.WhoAllMembers, Skill: "magic", Value: -5},
		},
	}
	h.Events[1].Difficulty = 8 // passes only if the debuff was cleared

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the first event fails. The second check must see Lyra's clean
	// magic rating of 5, totaling 10 vs difficulty 8.
	if report.Failures != 1 {
		t.Errorf("expected the debuff cleared before the second event, failures = %d", report.Failures)
	}
}

func TestRun_PreconditionErrors(t *testing.T) {
	h := twoEventHeist()
	h.MaxPartySize = 2
	h.RequiredRoles = []string{"rogue"}

	tests := []struct {
		name         string
		heistID      string
		participants []string
		tools        map[string]string
		wantErr      string
	}{
		{
			name:         "unknown heist",
			heistID:      "gilded_spire",
			participants: []string{"silas"},
			wantErr:      "unknown heist",
		},
		{
			name:         "unknown operative",
			heistID:      "counting_house",
			participants: []string{"silas", "marten"},
			wantErr:      "unknown operative",
		},
		{
			name:         "no participants",
			heistID:      "counting_house",
			participants: nil,
			wantErr:      "no participants",
		},
		{
			name:         "party too large",
			heistID:      "counting_house",
			participants: []string{"silas", "lyra", "brick"},
			wantErr:      "exceeds limit",
		},
		{
			name:         "unknown tool",
			heistID:      "counting_house",
			participants: []string{"silas"},
			tools:        map[string]string{"silas": "ghost_key"},
			wantErr:      "unknown tool",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{},
				crew.OperativeSpec{ID: "brick", Name: "Brick", Role: "bruiser", Level: 1, Skills: map[string]int{"combat": 4}})
			_, err := f.runner.Run(tc.heistID, tc.participants, tc.tools)
			if err == nil {
				t.Fatal("expected a precondition error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestRun_RequiredRoleMissing(t *testing.T) {
	h := twoEventHeist()
	h.RequiredRoles = []string{"alchemist"}

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	_, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err == nil || !strings.Contains(err.Error(), "requires a alchemist") {
		t.Errorf("expected a required-role error, got %v", err)
	}
}

func TestRun_NotorietyScalingAppendsEvent(t *testing.T) {
	h := twoEventHeist()
	h.Scaling = &HeistScaling{NotorietyThreshold: 3, ExtraEvent: "watch_sweep"}
	specials := []SpecialEvent{{
		Event: Event{
			ID:          "watch_sweep",
			Description: "A Watch sweep closes the street",
			Check:       "stealth",
			Difficulty:  2,
			Success:     &Outcome{Text: "The crew waits it out."},
			Failure:     &Outcome{Text: "Caught in the sweep."},
		},
	}}

	f := newRunFixture(t, []Heist{h}, specials, nil, DeclineDecider{})
	f.world.AddNotoriety(5)
	f.runner.WithRolls(5, 5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Events != 3 {
		t.Errorf("expected the scaling event appended (3 events), got %d", report.Events)
	}
	if !report.Success {
		t.Errorf("expected success across all three events: %v", report.Lines)
	}
}

func TestRun_GhostInGearsBypassOncePerRun(t *testing.T) {
	h := Heist{
		ID:   "impossible_vault",
		Name: "The Impossible Vault",
		Events: []Event{
			{Description: "A door no one opens", Check: "lockpicking", Difficulty: 50,
				Success: &Outcome{Text: "Open."}, Failure: &Outcome{Text: "Shut."}},
			{Description: "Another door no one opens", Check: "lockpicking", Difficulty: 50,
				Success: &Outcome{Text: "Open."}, Failure: &Outcome{Text: "Shut."}},
		},
	}

	f := newRunFixture(t, []Heist{h}, nil, nil, AutoDecider{},
		crew.OperativeSpec{ID: "vex", Name: "Vex", Role: "rogue", Level: 2, Skills: map[string]int{"lockpicking": 3},
			Upgrades: []string{UpgradeGhostInGears}})
	f.runner.WithRolls(1)

	report, err := f.runner.Run("impossible_vault", []string{"vex"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First event bypassed, second rolled and failed.
	if report.Failures != 1 {
		t.Errorf("expected the bypass consumed after one use, failures = %d", report.Failures)
	}
}

func TestRun_GamblerDoubleLoot(t *testing.T) {
	h := Heist{
		ID:   "dice_hall",
		Name: "The Dice Hall",
		Events: []Event{
			{Description: "Palm the house die", Check: "stealth", Difficulty: 13,
				Success: &Outcome{Text: "Swapped."}, Failure: &Outcome{Text: "Caught."}},
		},
		PotentialLoot: []world.LootItem{{Item: "House strongbox", Value: 120}},
	}

	f := newRunFixture(t, []Heist{h}, nil, nil, AutoDecider{},
		crew.OperativeSpec{ID: "dax", Name: "Dax", Role: "gambler", Level: 1, Skills: map[string]int{"luck": 3}})
	f.runner.WithRolls(2, 8) // 5+2=7 fails, reroll 5+8=13 succeeds

	report, err := f.runner.Run("dice_hall", []string{"silas", "lyra", "dax"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected the reroll to rescue the run: %v", report.Lines)
	}
	// The winning gamble banks every item twice at its face value.
	if len(f.world.Loot) != 2 {
		t.Fatalf("expected the strongbox banked twice, got %+v", f.world.Loot)
	}
	for _, item := range f.world.Loot {
		if item.Item != "House strongbox" || item.Value != 120 {
			t.Errorf("unexpected loot entry %+v", item)
		}
	}
	if len(report.Loot) != 2 {
		t.Errorf("report loot count = %d, want 2", len(report.Loot))
	}
}

func TestRun_GamblerFailedRerollAddsNotoriety(t *testing.T) {
	h := Heist{
		ID:   "dice_hall",
		Name: "The Dice Hall",
		Events: []Event{
			{Description: "Palm the house die", Check: "stealth", Difficulty: 13,
				Success: &Outcome{Text: "Swapped."}, Failure: &Outcome{Text: "Caught."}},
		},
	}

	f := newRunFixture(t, []Heist{h}, nil, nil, AutoDecider{},
		crew.OperativeSpec{ID: "dax", Name: "Dax", Role: "gambler", Level: 1, Skills: map[string]int{"luck": 3}})
	f.runner.WithRolls(2, 2)

	report, err := f.runner.Run("dice_hall", []string{"silas", "lyra", "dax"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("expected the run to fail after a failed reroll")
	}
	if f.world.Notoriety != 2 {
		t.Errorf("expected notoriety 2 after the failed gamble, got %d", f.world.Notoriety)
	}
}

func TestRun_ToolBonusEnablesSuccess(t *testing.T) {
	h := Heist{
		ID:   "strongroom",
		Name: "The Strongroom",
		Events: []Event{
			{Description: "Pick the triple lock", Check: "lockpicking", Difficulty: 11,
				Success: &Outcome{Text: "Click."}, Failure: &Outcome{Text: "Jammed."}},
		},
	}
	tools := []gear.Tool{{
		ID:       "masterwork_picks",
		Name:     "Masterwork Picks",
		UsableBy: []string{"rogue"},
		Effect:   gear.ToolEffect{Type: gear.EffectBonus, Skill: "lockpicking", Value: 2},
	}}

	f := newRunFixture(t, []Heist{h}, nil, tools, AutoDecider{})
	f.runner.WithRolls(5) // 4 skill + 2 tool + 5 roll = 11

	report, err := f.runner.Run("strongroom", []string{"silas"}, map[string]string{"silas": "masterwork_picks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Errorf("expected the tool bonus to carry the check: %v", report.Lines)
	}
}

func TestRun_ToolUsesExhaust(t *testing.T) {
	h := Heist{
		ID:   "double_gate",
		Name: "The Double Gate",
		Events: []Event{
			{Description: "Pick the outer gate lock", Check: "lockpicking", Difficulty: 11,
				Success: &Outcome{Text: "Open."}, Failure: &Outcome{Text: "Stuck."}},
			{Description: "Pick the inner gate lock", Check: "lockpicking", Difficulty: 11,
				Success: &Outcome{Text: "Open."}, Failure: &Outcome{Text: "Stuck."}},
		},
	}
	tools := []gear.Tool{{
		ID:           "masterwork_picks",
		Name:         "Masterwork Picks",
		UsableBy:     []string{"rogue"},
		Effect:       gear.ToolEffect{Type: gear.EffectBonus, Skill: "lockpicking", Value: 2},
		UsesPerHeist: 1,
	}}

	f := newRunFixture(t, []Heist{h}, nil, tools, AutoDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("double_gate", []string{"silas"}, map[string]string{"silas": "masterwork_picks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First lock: 4+2+5=11 succeeds. Second: the picks are spent, 4+5=9 fails.
	if report.Failures != 1 {
		t.Errorf("expected the spent tool to contribute nothing, failures = %d", report.Failures)
	}
}

func TestRun_BaseSkillRequirement(t *testing.T) {
	h := Heist{
		ID:   "ward_door",
		Name: "The Warded Door",
		Events: []Event{
			{Description: "Force the warded mechanism", Check: "lockpicking", Difficulty: 2,
				Requirements: map[string]int{"lockpicking": 6},
				Success:      &Outcome{Text: "Open."}, Failure: &Outcome{Text: "Sealed."}},
		},
	}

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})

	report, err := f.runner.Run("ward_door", []string{"silas"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("expected automatic failure below the base-skill requirement")
	}
}

func TestRun_GetawayFailureFailsRun(t *testing.T) {
	h := Heist{
		ID:   "rooftop_job",
		Name: "The Rooftop Job",
		Events: []Event{
			{Description: "Lift the strongbox", Check: "stealth", Difficulty: 1,
				Success: &Outcome{Text: "Lifted."}, Failure: &Outcome{Text: "Dropped."}},
		},
		Getaway: &Getaway{
			Name:       "Over the rooftops",
			Check:      "athletics",
			Difficulty: 20,
			Failure:    &Outcome{Text: "Cornered on the tiles."},
		},
		PotentialLoot: []world.LootItem{{Item: "Strongbox", Value: 80}},
	}

	f := newRunFixture(t, []Heist{h}, nil, nil, DeclineDecider{})
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("rooftop_job", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("a failed getaway must fail the run")
	}
	if len(f.world.Loot) != 0 {
		t.Errorf("expected no loot after a failed getaway, got %+v", f.world.Loot)
	}
}

func TestRun_LevelUpAtResolution(t *testing.T) {
	f := newRunFixture(t, []Heist{twoEventHeist()}, nil, nil, DeclineDecider{})
	f.roster.Get("silas").Spec.XP = 4 // 4 + 8 = 12 crosses the level-2 threshold of 10
	f.runner.WithRolls(5, 5)

	report, err := f.runner.Run("counting_house", []string{"silas", "lyra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.LeveledUp) != 1 || report.LeveledUp[0] != "silas" {
		t.Fatalf("expected silas to level up, got %v", report.LeveledUp)
	}
	if got := f.roster.Get("silas").Spec.Level; got != 2 {
		t.Errorf("expected level 2, got %d", got)
	}
}
