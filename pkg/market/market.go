// Package market handles the between-heist economy: fencing loot through
// faction contacts, healing injured operatives, buying tools and bribing the
// Watch to release arrested crew.
package market

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/heist-engine/pkg/crew"
	"github.com/jwebster45206/heist-engine/pkg/gear"
	"github.com/jwebster45206/heist-engine/pkg/world"
)

// Faction-standing tiers for fencing rates.
const (
	StandingAllied  = 3
	StandingHostile = -3
)

// Config carries the fixed market prices.
type Config struct {
	HealCost          int
	BribeBase         int
	BribePerNotoriety int
}

// DefaultConfig returns the standard city prices.
func DefaultConfig() Config {
	return Config{
		HealCost:          50,
		BribeBase:         100,
		BribePerNotoriety: 5,
	}
}

// Market mediates treasury transactions against the world and roster.
type Market struct {
	world  *world.State
	roster *crew.Roster
	gear   *gear.Catalog
	cfg    Config
	logger *slog.Logger
}

// New wires a market over shared world and roster state.
func New(w *world.State, r *crew.Roster, g *gear.Catalog, cfg Config, logger *slog.Logger) *Market {
	if cfg.HealCost <= 0 {
		cfg.HealCost = DefaultConfig().HealCost
	}
	if cfg.BribeBase <= 0 {
		cfg.BribeBase = DefaultConfig().BribeBase
	}
	if cfg.BribePerNotoriety <= 0 {
		cfg.BribePerNotoriety = DefaultConfig().BribePerNotoriety
	}
	return &Market{world: w, roster: r, gear: g, cfg: cfg, logger: logger}
}

// rate returns the payout percentage for a faction contact. Allied contacts
// pay a premium, hostile ones refuse to deal.
func rate(standing int) (int, bool) {
	switch {
	case standing <= StandingHostile:
		return 0, false
	case standing >= StandingAllied:
		return 125, true
	case standing > 0:
		return 100, true
	default:
		return 75, true
	}
}

// Fence sells the loot item at index i through a faction contact and banks
// the payout. The item leaves the ledger even at a poor rate; a hostile
// faction refuses and the item stays.
func (m *Market) Fence(i int, factionID string) (int, error) {
	f, ok := m.world.Factions[factionID]
	if !ok {
		return 0, fmt.Errorf("unknown faction %q", factionID)
	}
	pct, deals := rate(f.Standing)
	if !deals {
		return 0, fmt.Errorf("%s refuses to deal with the crew", f.Name)
	}

	item, ok := m.world.RemoveLootAt(i)
	if !ok {
		return 0, fmt.Errorf("no loot at index %d", i)
	}
	payout := item.Value * pct / 100
	m.world.AddTreasury(payout)
	if m.logger != nil {
		m.logger.Info("Fenced loot", "item", item.Item, "faction", factionID, "payout", payout)
	}
	return payout, nil
}

// FenceAll fences the whole ledger through one contact, front to back.
func (m *Market) FenceAll(factionID string) (int, error) {
	f, ok := m.world.Factions[factionID]
	if !ok {
		return 0, fmt.Errorf("unknown faction %q", factionID)
	}
	pct, deals := rate(f.Standing)
	if !deals {
		return 0, fmt.Errorf("%s refuses to deal with the crew", f.Name)
	}

	total := 0
	for {
		item, ok := m.world.RemoveLootAt(0)
		if !ok {
			break
		}
		total += item.Value * pct / 100
	}
	m.world.AddTreasury(total)
	return total, nil
}

// Heal pays the surgeon to return an injured operative to active status.
func (m *Market) Heal(opID string) error {
	op := m.roster.Get(opID)
	if op == nil {
		return fmt.Errorf("unknown operative %q", opID)
	}
	if op.Spec.Status != crew.StatusInjured {
		return fmt.Errorf("%s is not injured", op.Spec.Name)
	}
	if !m.world.Spend(m.cfg.HealCost) {
		return fmt.Errorf("treasury cannot cover the %d heal cost", m.cfg.HealCost)
	}
	m.roster.SetStatus(opID, crew.StatusActive)
	return nil
}

// BuyTool purchases a catalog tool into the crew's inventory.
func (m *Market) BuyTool(toolID string) error {
	tool, ok := m.gear.Get(toolID)
	if !ok {
		return fmt.Errorf("unknown tool %q", toolID)
	}
	if !m.world.Spend(tool.Price()) {
		return fmt.Errorf("treasury cannot cover %d for %s", tool.Price(), tool.Name)
	}
	m.world.AddTool(toolID)
	return nil
}

// BribeCost is the Watch's current price for releasing a prisoner. It climbs
// with notoriety.
func (m *Market) BribeCost() int {
	return m.cfg.BribeBase + m.cfg.BribePerNotoriety*m.world.Notoriety
}

// Bribe pays the Watch to release the longest-held arrested operative.
// Returns the freed operative's id.
func (m *Market) Bribe() (string, error) {
	op := m.roster.FirstArrested()
	if op == nil {
		return "", fmt.Errorf("no operative is under arrest")
	}
	cost := m.BribeCost()
	if !m.world.Spend(cost) {
		return "", fmt.Errorf("treasury cannot cover the %d bribe", cost)
	}
	m.roster.SetStatus(op.Spec.ID, crew.StatusActive)
	if m.logger != nil {
		m.logger.Info("Bribed the Watch", "operative", op.Spec.ID, "cost", cost)
	}
	return op.Spec.ID, nil
}
