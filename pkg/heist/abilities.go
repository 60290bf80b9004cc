package heist

import (
	"strings"

	"github.com/jwebster45206/heist-engine/pkg/crew"
)

// Crew abilities are keyed by upgrade id or by role. Upgrade abilities are
// available to any active participant who has learned the upgrade; role
// abilities come with the role itself.
const (
	UpgradeEagleOfBrasshaven = "scout_eagle_of_brasshaven"
	UpgradeClockworkLegion   = "artificer_clockwork_legion"
	UpgradeTinkersEdge       = "artificer_tinkers_edge"
	UpgradeGhostInGears      = "rogue_ghost_in_gears"
	UpgradeShadowstep        = "rogue_shadowstep"
	UpgradeArcaneReservoir   = "mage_arcane_reservoir"
	UpgradeChronoward        = "mage_chronoward"
)

const (
	RoleScout     = "scout"
	RoleAlchemist = "alchemist"
	RoleGambler   = "gambler"
)

// SpecialAlchemyCraft is the tool special handled by the run loop: brew a
// concoction mid-heist with a 1-in-6 backfire chance.
const SpecialAlchemyCraft = "alchemy_craft"

// upgradeHolder returns the first active participant who has learned the
// upgrade, or nil.
func upgradeHolder(roster *crew.Roster, participants []string, upgradeID string) *crew.Operative {
	for _, id := range participants {
		op := roster.Get(id)
		if op == nil || !op.IsActive() {
			continue
		}
		if op.HasUpgrade(upgradeID) {
			return op
		}
	}
	return nil
}

// roleHolder returns the first active participant with the given role, or
// nil. Role comparison is case-insensitive.
func roleHolder(roster *crew.Roster, participants []string, role string) *crew.Operative {
	for _, id := range participants {
		op := roster.Get(id)
		if op == nil || !op.IsActive() {
			continue
		}
		if strings.EqualFold(op.Spec.Role, role) {
			return op
		}
	}
	return nil
}
