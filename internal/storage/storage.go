package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// SaveGame is one persisted campaign: the world snapshot plus the crew
// specs. Runtime actors are rebuilt from the specs on load.
type SaveGame struct {
	ID        uuid.UUID            `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	World     *world.State         `json:"world"`
	Crew      []crew.OperativeSpec `json:"crew"`
}

// Roster rebuilds the runtime roster from the saved crew specs.
func (sg *SaveGame) Roster() (*crew.Roster, error) {
	return crew.NewRoster(sg.Crew)
}

// Normalize repairs a freshly decoded save: map fields are re-initialized
// and the rescue heist is unlocked whenever anyone sits under arrest.
func (sg *SaveGame) Normalize() {
	if sg.World == nil {
		sg.World = world.New()
	}
	sg.World.Init()
	for _, spec := range sg.Crew {
		if spec.Status == crew.StatusArrested {
			sg.World.UnlockHeist(world.RescueHeistID)
			break
		}
	}
}

// Storage combines save-game persistence (Redis) with content-pack loading
// (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Save-game operations (Redis-backed)
	SaveGame(ctx context.Context, id uuid.UUID, sg *SaveGame) error
	LoadGame(ctx context.Context, id uuid.UUID) (*SaveGame, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error

	// Content-pack operations (filesystem-backed)
	LoadContent(ctx context.Context) (*ContentPack, error)
}
