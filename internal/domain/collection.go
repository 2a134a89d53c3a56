package domain

import "fmt"

// Collection is a complete snapshot of the learner's data. It is the unit
// persisted by exports and imports and is stored verbatim.
type Collection struct {
	Cards   []Card  `json:"cards"`
	Rules   []Rule  `json:"rules"`
	Profile Profile `json:"profile"`
}

// Validate checks every item and the profile, and rejects duplicate IDs.
func (c *Collection) Validate() error {
	seen := make(map[string]struct{}, len(c.Cards)+len(c.Rules))

	for i := range c.Cards {
		card := &c.Cards[i]
		if err := card.Validate(); err != nil {
			return fmt.Errorf("card %q: %w", card.ID, err)
		}
		if _, dup := seen[card.ID]; dup {
			return fmt.Errorf("%w: duplicate item ID %q", ErrInvalidID, card.ID)
		}
		seen[card.ID] = struct{}{}
	}

	for i := range c.Rules {
		rule := &c.Rules[i]
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("rule %q: %w", rule.ID, err)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("%w: duplicate item ID %q", ErrInvalidID, rule.ID)
		}
		seen[rule.ID] = struct{}{}
	}

	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	return nil
}

// Reviewables returns every card and rule as a Reviewable, cards first.
func (c *Collection) Reviewables() []Reviewable {
	items := make([]Reviewable, 0, len(c.Cards)+len(c.Rules))
	for _, card := range c.Cards {
		items = append(items, card)
	}
	for _, rule := range c.Rules {
		items = append(items, rule)
	}
	return items
}
