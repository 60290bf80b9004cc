package heist

import (
	"strings"
	"testing"
)

func validHeist(id string) Heist {
	return Heist{
		ID:   id,
		Name: "Test Job",
		Events: []Event{
			{Description: "An event", Check: "stealth", Difficulty: 3,
				Success: &Outcome{Text: "ok"}},
		},
	}
}

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name     string
		heists   []Heist
		specials []SpecialEvent
		wantErr  string
	}{
		{
			name:   "valid",
			heists: []Heist{validHeist("a"), validHeist("b")},
		},
		{
			name:    "duplicate heist id",
			heists:  []Heist{validHeist("a"), validHeist("a")},
			wantErr: "duplicate heist id",
		},
		{
			name:    "missing heist id",
			heists:  []Heist{validHeist("")},
			wantErr: "missing id",
		},
		{
			name:   "duplicate special id",
			heists: []Heist{validHeist("a")},
			specials: []SpecialEvent{
				{Event: Event{ID: "s"}},
				{Event: Event{ID: "s"}},
			},
			wantErr: "duplicate special event id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCatalog(tc.heists, nil, tc.specials)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := c.IDs(); len(got) != len(tc.heists) {
					t.Errorf("expected %d heists, got %d", len(tc.heists), len(got))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCatalogValidate(t *testing.T) {
	missingCheck := validHeist("a")
	missingCheck.Events[0].Check = ""

	missingSuccess := validHeist("a")
	missingSuccess.Events[0].Success = nil

	danglingSpecial := validHeist("a")
	danglingSpecial.Scaling = &HeistScaling{NotorietyThreshold: 3, ExtraEvent: "nope"}

	noEvents := validHeist("a")
	noEvents.Events = nil

	tests := []struct {
		name    string
		heist   Heist
		random  []Event
		wantErr string
	}{
		{name: "valid", heist: validHeist("a")},
		{name: "missing check skill", heist: missingCheck, wantErr: "missing check skill"},
		{name: "missing success branch", heist: missingSuccess, wantErr: "missing success branch"},
		{name: "dangling scaling special", heist: danglingSpecial, wantErr: "unknown special event"},
		{name: "no events", heist: noEvents, wantErr: "no events"},
		{
			name:    "bad random event",
			heist:   validHeist("a"),
			random:  []Event{{Description: "no check"}},
			wantErr: "random event 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCatalog([]Heist{tc.heist}, tc.random, nil)
			if err != nil {
				t.Fatalf("unexpected catalog error: %v", err)
			}
			err = c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected validate error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
