package gear

import "testing"

func testCatalog() *Catalog {
	return NewCatalog([]Tool{
		{
			ID: "tool_lockpick", Name: "Lockpicks",
			UsableBy: []string{"Rogue"},
			Effect:   ToolEffect{Type: EffectBonus, Skill: "lockpicking", Value: 2},
		},
		{
			ID: "tool_smoke_bomb", Name: "Smoke Bomb",
			UsableBy: []string{"Rogue", "Artificer"},
			Effect:   ToolEffect{Type: EffectBonus, Skill: "stealth", Value: 2},
		},
		{
			ID: "tool_blast_charge", Name: "Blast Charge",
			UsableBy:     []string{"Artificer"},
			Effect:       ToolEffect{Type: EffectBypass, Check: "lockpicking", Notoriety: 2},
			UsesPerHeist: 1,
		},
	})
}

func TestCatalog_Effect(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name   string
		toolID string
		role   string
		wantOK bool
		want   ToolEffect
	}{
		{
			name: "rogue can use lockpicks", toolID: "tool_lockpick", role: "Rogue",
			wantOK: true,
			want:   ToolEffect{Type: EffectBonus, Skill: "lockpicking", Value: 2},
		},
		{
			name: "mage cannot use lockpicks", toolID: "tool_lockpick", role: "Mage",
			wantOK: false,
		},
		{
			name: "unknown tool", toolID: "tool_ghost", role: "Rogue",
			wantOK: false,
		},
		{
			name: "bypass payload", toolID: "tool_blast_charge", role: "Artificer",
			wantOK: true,
			want:   ToolEffect{Type: EffectBypass, Check: "lockpicking", Notoriety: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Effect(tt.toolID, tt.role)
			if ok != tt.wantOK {
				t.Fatalf("Effect() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Effect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCatalog_Validate(t *testing.T) {
	c := testCatalog()
	if !c.Validate("tool_smoke_bomb", "Rogue") {
		t.Error("rogue should validate for smoke bomb")
	}
	if !c.Validate("tool_smoke_bomb", "Artificer") {
		t.Error("artificer should validate for smoke bomb")
	}
	if c.Validate("tool_smoke_bomb", "Mage") {
		t.Error("mage should not validate for smoke bomb")
	}
	if c.Validate("missing", "Rogue") {
		t.Error("unknown tool should not validate")
	}
}

func TestTool_UsesDefault(t *testing.T) {
	tool := Tool{ID: "x"}
	if got := tool.Uses(); got != 1 {
		t.Errorf("Uses() = %d, want default 1", got)
	}
	tool.UsesPerHeist = 3
	if got := tool.Uses(); got != 3 {
		t.Errorf("Uses() = %d, want 3", got)
	}
}
