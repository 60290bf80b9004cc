package effect

import (
	"testing"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/dice"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

func testEngine(t *testing.T) (*Engine, *world.State, *crew.Roster) {
	t.Helper()
	w := world.New()
	w.Factions["guilds"] = world.Faction{Name: "The Guilds", Standing: 1}
	w.Factions["nobles"] = world.Faction{Name: "The Nobles", Standing: 0}

	r, err := crew.NewRoster([]crew.OperativeSpec{
		{ID: "rogue_1", Name: "Silas", Role: "Rogue", Skills: map[string]int{"stealth": 5}, Level: 1},
		{ID: "mage_1", Name: "Lyra", Role: "Mage", Skills: map[string]int{"magic": 5}, Level: 1},
	})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return NewEngine(w, r, dice.New(7), nil), w, r
}

func runCtx() Context {
	return Context{
		Participants: []string{"rogue_1", "mage_1"},
		Acting:       "rogue_1",
		Loot:         &Accumulator{},
		Mods:         crew.TempModifiers{},
	}
}

func TestApply_EmptyList(t *testing.T) {
	e, w, _ := testEngine(t)
	if lines := e.Apply(nil, runCtx()); lines != nil {
		t.Errorf("nil effects should produce no lines, got %v", lines)
	}
	if w.Notoriety != 0 {
		t.Error("nil effects should not mutate world")
	}
}

func TestApply_AddNotoriety(t *testing.T) {
	e, w, _ := testEngine(t)
	e.Apply([]Effect{
		{Type: TagAddNotoriety, Value: 2},
		{Type: TagAddNotoriety}, // defaults to 1
	}, runCtx())
	if w.Notoriety != 3 {
		t.Errorf("notoriety = %d, want 3", w.Notoriety)
	}
}

func TestApply_UpdateReputation(t *testing.T) {
	e, w, _ := testEngine(t)
	e.Apply([]Effect{
		{Type: TagUpdateReputation, RepType: "fear", Value: 2},
		{Type: TagUpdateReputation, RepType: "unknown", Value: 9},
	}, runCtx())
	if w.Reputation.Fear != 2 {
		t.Errorf("fear = %d, want 2", w.Reputation.Fear)
	}
}

func TestApply_SetStatusArrested_UnlocksRescue(t *testing.T) {
	e, w, r := testEngine(t)
	ctx := runCtx()

	e.Apply([]Effect{{Type: TagSetStatus, Who: WhoActiveMember, Status: crew.StatusArrested}}, ctx)
	if got := r.Get("rogue_1").Spec.Status; got != crew.StatusArrested {
		t.Errorf("status = %q, want arrested", got)
	}
	if !w.IsUnlocked(world.RescueHeistID) {
		t.Error("rescue heist should unlock on arrest")
	}

	// Second arrest does not re-announce the unlock.
	lines := e.Apply([]Effect{{Type: TagSetStatus, Who: WhoActiveMember, Status: crew.StatusArrested}}, ctx)
	for _, l := range lines {
		if l == "The rescue heist is now available to free your crew!" {
			t.Error("unlock should be idempotent")
		}
	}
}

func TestApply_LoseLoot(t *testing.T) {
	items := func(names ...string) []world.LootItem {
		out := make([]world.LootItem, len(names))
		for i, n := range names {
			out[i] = world.LootItem{Item: n, Value: 10}
		}
		return out
	}

	tests := []struct {
		name   string
		eff    Effect
		start  []world.LootItem
		want   []string
	}{
		{
			name:  "primary removes index zero",
			eff:   Effect{Type: TagLoseLoot, Scope: ScopePrimary},
			start: items("a", "b", "c"),
			want:  []string{"b", "c"},
		},
		{
			name:  "half removes floor(n/2) from the front",
			eff:   Effect{Type: TagLoseLoot, Scope: ScopeHalf},
			start: items("a", "b", "c", "d", "e"),
			want:  []string{"c", "d", "e"},
		},
		{
			name:  "default removes from the end",
			eff:   Effect{Type: TagLoseLoot, Amount: 2},
			start: items("a", "b", "c"),
			want:  []string{"a"},
		},
		{
			name:  "over-removal clamps",
			eff:   Effect{Type: TagLoseLoot, Amount: 10},
			start: items("a", "b"),
			want:  []string{},
		},
		{
			name:  "missing amount falls back to value then one",
			eff:   Effect{Type: TagLoseLoot},
			start: items("a", "b"),
			want:  []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := testEngine(t)
			ctx := runCtx()
			ctx.Loot.Items = tt.start

			e.Apply([]Effect{tt.eff}, ctx)

			if len(ctx.Loot.Items) != len(tt.want) {
				t.Fatalf("loot = %+v, want %v", ctx.Loot.Items, tt.want)
			}
			for i, w := range tt.want {
				if ctx.Loot.Items[i].Item != w {
					t.Errorf("loot[%d] = %q, want %q", i, ctx.Loot.Items[i].Item, w)
				}
			}
		})
	}
}

func TestApply_SetFactionHostile(t *testing.T) {
	e, w, _ := testEngine(t)
	e.Apply([]Effect{{Type: TagSetFactionHostile, Faction: "guilds"}}, runCtx())
	if got := w.Factions["guilds"].Standing; got != world.HostileStanding {
		t.Errorf("standing = %d, want %d", got, world.HostileStanding)
	}

	// Random resolves to some known faction.
	e.Apply([]Effect{{Type: TagSetFactionHostile, Faction: FactionRandom}}, runCtx())
	hostile := 0
	for _, f := range w.Factions {
		if f.Standing == world.HostileStanding {
			hostile++
		}
	}
	if hostile < 1 {
		t.Error("random faction hostility should hit a known faction")
	}

	// Unknown faction id is a silent skip.
	e.Apply([]Effect{{Type: TagSetFactionHostile, Faction: "ghost_guild"}}, runCtx())
}

func TestApply_ModifyXP_NoLevelScan(t *testing.T) {
	e, _, r := testEngine(t)
	e.Apply([]Effect{{Type: TagModifyXP, Who: WhoActiveMember, Value: 100}}, runCtx())
	op := r.Get("rogue_1")
	if op.Spec.XP != 100 {
		t.Errorf("xp = %d, want 100", op.Spec.XP)
	}
	if op.Spec.Level != 1 {
		t.Errorf("level = %d, want 1 (no scan at apply time)", op.Spec.Level)
	}
}

func TestApply_TempDebuff_Targets(t *testing.T) {
	tests := []struct {
		name string
		eff  Effect
		want map[string]int // operative -> expected stealth delta
	}{
		{
			name: "all members",
			eff:  Effect{Type: TagTempDebuff, Who: WhoAllMembers, Skill: "stealth", Value: -2},
			want: map[string]int{"rogue_1": -2, "mage_1": -2},
		},
		{
			name: "active member",
			eff:  Effect{Type: TagTempDebuff, Who: WhoActiveMember, Skill: "stealth", Value: -1},
			want: map[string]int{"rogue_1": -1, "mage_1": 0},
		},
		{
			name: "by role, case-insensitive",
			eff:  Effect{Type: TagTempDebuff, Role: "mage", Skill: "stealth", Value: -3},
			want: map[string]int{"rogue_1": 0, "mage_1": -3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := testEngine(t)
			ctx := runCtx()
			e.Apply([]Effect{tt.eff}, ctx)
			for id, want := range tt.want {
				if got := ctx.Mods.Get(id, "stealth"); got != want {
					t.Errorf("mods[%s] = %d, want %d", id, got, want)
				}
			}
		})
	}
}

func TestApply_TempDebuff_Accumulates(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := runCtx()
	e.Apply([]Effect{
		{Type: TagTempDebuff, Who: WhoActiveMember, Skill: "stealth", Value: -1},
		{Type: TagTempDebuff, Who: WhoActiveMember, Skill: "stealth", Value: -2},
	}, ctx)
	if got := ctx.Mods.Get("rogue_1", "stealth"); got != -3 {
		t.Errorf("accumulated delta = %d, want -3", got)
	}
}

func TestApply_UnknownTag(t *testing.T) {
	e, w, _ := testEngine(t)
	e.Apply([]Effect{{Type: "summon_dragon", Value: 9}}, runCtx())
	if w.Notoriety != 0 {
		t.Error("unknown tag should be a no-op")
	}
}

func TestApply_OrderedApplication(t *testing.T) {
	e, w, _ := testEngine(t)
	// Later effects see earlier mutations: two +2 notoriety effects land
	// sequentially.
	e.Apply([]Effect{
		{Type: TagAddNotoriety, Value: 2},
		{Type: TagAddNotoriety, Value: 2},
	}, runCtx())
	if w.Notoriety != 4 {
		t.Errorf("notoriety = %d, want 4", w.Notoriety)
	}
}
