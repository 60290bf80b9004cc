package crew

import "testing"

func testProgression() *Progression {
	return &Progression{
		XPThresholds: []int{0, 10, 25, 50},
		LevelCap:     4,
		UpgradeOptions: map[string][]UpgradeOption{
			"general": {
				{ID: "gen_toughness", Text: "Toughness"},
			},
			"rogue": {
				{ID: "rogue_shadowstep", Text: "Shadowstep"},
				{ID: "rogue_nimble", Text: "Nimble Fingers", Effects: []UpgradeEffect{
					{Type: "stat_boost", Skill: "lockpicking", Value: 1},
				}},
			},
		},
	}
}

func TestAddXP_SingleLevel(t *testing.T) {
	roster := testRoster(t)
	prog := testProgression()

	if !roster.AddXP("rogue_1", 10, prog, nil) {
		t.Error("10 XP at level 1 should level up")
	}
	if got := roster.Get("rogue_1").Spec.Level; got != 2 {
		t.Errorf("level = %d, want 2", got)
	}
}

func TestAddXP_MultipleThresholds(t *testing.T) {
	roster := testRoster(t)
	prog := testProgression()

	// One large award crosses levels 1->2 (10), 2->3 (25) and 3->4 (50).
	if !roster.AddXP("rogue_1", 60, prog, nil) {
		t.Error("large award should level up")
	}
	if got := roster.Get("rogue_1").Spec.Level; got != 4 {
		t.Errorf("level = %d, want 4 (cap)", got)
	}

	// Further awards never exceed the cap.
	roster.AddXP("rogue_1", 1000, prog, nil)
	if got := roster.Get("rogue_1").Spec.Level; got != 4 {
		t.Errorf("level = %d, want 4 after capped award", got)
	}
}

func TestAddXP_ExactThresholdBoundary(t *testing.T) {
	roster := testRoster(t)
	prog := testProgression()

	roster.Get("rogue_1").Spec.XP = 9
	if roster.AddXP("rogue_1", 0, prog, nil) {
		t.Error("below threshold should not level")
	}
	if !roster.AddXP("rogue_1", 1, prog, nil) {
		t.Error("exactly at threshold should level once")
	}
	if got := roster.Get("rogue_1").Spec.Level; got != 2 {
		t.Errorf("level = %d, want 2", got)
	}
}

func TestAddXP_UnknownOperative(t *testing.T) {
	roster := testRoster(t)
	if roster.AddXP("nobody", 100, testProgression(), nil) {
		t.Error("unknown operative should report false")
	}
}

func TestGrantXP_NoLevelScan(t *testing.T) {
	roster := testRoster(t)

	// Narrative XP grants are raw: no threshold scan at apply time.
	roster.GrantXP("rogue_1", 500)
	if got := roster.Get("rogue_1").Spec.Level; got != 1 {
		t.Errorf("level = %d, want 1 (no scan on raw grant)", got)
	}
	if got := roster.Get("rogue_1").Spec.XP; got != 500 {
		t.Errorf("xp = %d, want 500", got)
	}

	// The next completion award picks up the banked XP.
	roster.AddXP("rogue_1", 0, testProgression(), nil)
	if got := roster.Get("rogue_1").Spec.Level; got != 4 {
		t.Errorf("level = %d, want 4 after scan", got)
	}
}

func TestAvailableUpgrades(t *testing.T) {
	roster := testRoster(t)
	prog := testProgression()

	got := roster.AvailableUpgrades("rogue_1", prog)
	if len(got) != 3 {
		t.Fatalf("available = %d, want 3 (general + role)", len(got))
	}

	if err := roster.LearnUpgrade("rogue_1", got[1]); err != nil {
		t.Fatalf("LearnUpgrade: %v", err)
	}
	got = roster.AvailableUpgrades("rogue_1", prog)
	if len(got) != 2 {
		t.Errorf("available after learning = %d, want 2", len(got))
	}
}

func TestLearnUpgrade_StatBoost(t *testing.T) {
	roster := testRoster(t)

	boost := UpgradeOption{ID: "rogue_nimble", Text: "Nimble Fingers", Effects: []UpgradeEffect{
		{Type: "stat_boost", Skill: "lockpicking", Value: 1},
	}}
	if err := roster.LearnUpgrade("rogue_1", boost); err != nil {
		t.Fatalf("LearnUpgrade: %v", err)
	}

	op := roster.Get("rogue_1")
	if got := op.BaseSkill("lockpicking"); got != 5 {
		t.Errorf("lockpicking after boost = %d, want 5", got)
	}
	if !op.HasUpgrade("rogue_nimble") {
		t.Error("upgrade should be recorded")
	}

	// Learning twice does not double the boost.
	if err := roster.LearnUpgrade("rogue_1", boost); err != nil {
		t.Fatalf("LearnUpgrade repeat: %v", err)
	}
	if got := op.BaseSkill("lockpicking"); got != 5 {
		t.Errorf("lockpicking after repeat = %d, want 5", got)
	}
}
