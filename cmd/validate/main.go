package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	validator := &ContentValidator{}
	if err := validator.validateDir(dataDir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content pack is valid!")
}

type ContentValidator struct {
	errors []string
}

func (v *ContentValidator) validateDir(dataDir string, logger *slog.Logger) error {
	fmt.Printf("Validating %s...\n", dataDir)

	cp, err := storage.LoadContentPack(dataDir, logger)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validatePack(cp)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dataDir, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ContentValidator) validatePack(cp *storage.ContentPack) {
	tools := gear.NewCatalog(cp.Tools)
	for _, id := range tools.IDs() {
		t, _ := tools.Get(id)
		if len(t.UsableBy) == 0 {
			v.addError(fmt.Sprintf("tool '%s' is usable by nobody", id))
		}
		switch t.Effect.Type {
		case gear.EffectBonus, gear.EffectDifficultyReduction, gear.EffectBypass, gear.EffectSpecial:
		default:
			v.addError(fmt.Sprintf("tool '%s' has unknown effect type '%s'", id, t.Effect.Type))
		}
	}

	catalog, err := cp.HeistCatalog()
	if err != nil {
		v.addError(err.Error())
		return
	}
	if err := catalog.Validate(); err != nil {
		v.addError(err.Error())
	}

	roles := make(map[string]bool)
	for _, spec := range cp.Crew {
		v.validateIDFormat("operative ID", spec.ID)
		if spec.Name == "" {
			v.addError(fmt.Sprintf("operative '%s' has no name", spec.ID))
		}
		if len(spec.Skills) == 0 {
			v.addError(fmt.Sprintf("operative '%s' has no skills", spec.ID))
		}
		roles[strings.ToLower(spec.Role)] = true
	}

	for _, h := range cp.Heists {
		v.validateIDFormat("heist ID", h.ID)
		for _, role := range h.RequiredRoles {
			if !roles[strings.ToLower(role)] {
				v.addError(fmt.Sprintf("heist '%s' requires role '%s' but no operative has it", h.ID, role))
			}
		}
	}

	heistIDs := make(map[string]bool)
	for _, id := range catalog.IDs() {
		heistIDs[id] = true
	}

	for _, id := range cp.Starting.UnlockedHeists {
		if !heistIDs[id] {
			v.addError(fmt.Sprintf("starting state unlocks unknown heist '%s'", id))
		}
	}

	for _, arc := range cp.Arcs {
		v.validateIDFormat("arc ID", arc.ID)
		for _, stage := range arc.Stages {
			v.validateIDFormat("stage ID", stage.ID)
			if stage.UnlockHeist != "" && !heistIDs[stage.UnlockHeist] {
				v.addError(fmt.Sprintf("arc '%s' stage '%s' unlocks unknown heist '%s'", arc.ID, stage.ID, stage.UnlockHeist))
			}
			if stage.Trigger.Type == "" {
				v.addError(fmt.Sprintf("arc '%s' stage '%s' has no trigger type", arc.ID, stage.ID))
			}
		}
	}

	for id := range cp.Factions {
		v.validateIDFormat("faction ID", id)
	}

	if len(cp.Progression.XPThresholds) == 0 {
		v.addError("progression has no XP thresholds")
	}

	// Every rescue target needs somewhere to be rescued from.
	if !heistIDs[world.RescueHeistID] {
		v.addError(fmt.Sprintf("content pack has no '%s' heist", world.RescueHeistID))
	}
}

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !validIDRegex.MatchString(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
