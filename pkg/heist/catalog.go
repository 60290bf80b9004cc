package heist

import "fmt"

// Catalog holds heist definitions plus the random and special event pools,
// in their declared order.
type Catalog struct {
	heists   map[string]*Heist
	order    []string
	random   []Event
	specials map[string]*SpecialEvent
}

// NewCatalog builds a catalog from declared content. Heist and special event
// ids must be unique.
func NewCatalog(heists []Heist, random []Event, specials []SpecialEvent) (*Catalog, error) {
	c := &Catalog{
		heists:   make(map[string]*Heist, len(heists)),
		random:   random,
		specials: make(map[string]*SpecialEvent, len(specials)),
	}
	for i := range heists {
		h := &heists[i]
		if h.ID == "" {
			return nil, fmt.Errorf("heist %d: missing id", i)
		}
		if _, ok := c.heists[h.ID]; ok {
			return nil, fmt.Errorf("duplicate heist id %q", h.ID)
		}
		c.heists[h.ID] = h
		c.order = append(c.order, h.ID)
	}
	for i := range specials {
		s := &specials[i]
		if s.ID == "" {
			return nil, fmt.Errorf("special event %d: missing id", i)
		}
		if _, ok := c.specials[s.ID]; ok {
			return nil, fmt.Errorf("duplicate special event id %q", s.ID)
		}
		c.specials[s.ID] = s
	}
	return c, nil
}

// Get returns a heist by id.
func (c *Catalog) Get(id string) (*Heist, bool) {
	h, ok := c.heists[id]
	return h, ok
}

// IDs returns heist ids in declared order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// RandomEvents returns the random event pool.
func (c *Catalog) RandomEvents() []Event {
	return c.random
}

// Special returns a special event by id.
func (c *Catalog) Special(id string) (*SpecialEvent, bool) {
	s, ok := c.specials[id]
	return s, ok
}

// Validate checks cross-references: heist scaling extra events must name a
// declared special event, and every event needs a check skill and at least a
// success branch.
func (c *Catalog) Validate() error {
	for _, id := range c.order {
		h := c.heists[id]
		if len(h.Events) == 0 {
			return fmt.Errorf("heist %q: no events", id)
		}
		for i, ev := range h.Events {
			if err := validateEvent(&ev); err != nil {
				return fmt.Errorf("heist %q event %d: %w", id, i, err)
			}
		}
		if h.Getaway != nil && h.Getaway.Check == "" {
			return fmt.Errorf("heist %q: getaway missing check skill", id)
		}
		if h.Scaling != nil && h.Scaling.ExtraEvent != "" {
			if _, ok := c.specials[h.Scaling.ExtraEvent]; !ok {
				return fmt.Errorf("heist %q: scaling references unknown special event %q", id, h.Scaling.ExtraEvent)
			}
		}
	}
	for i, ev := range c.random {
		if err := validateEvent(&ev); err != nil {
			return fmt.Errorf("random event %d: %w", i, err)
		}
	}
	return nil
}

func validateEvent(ev *Event) error {
	if ev.Check == "" {
		return fmt.Errorf("missing check skill")
	}
	if ev.Success == nil {
		return fmt.Errorf("missing success branch")
	}
	return nil
}
