package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only table of card definitions, keyed by id.
type Catalog struct {
	cards  map[string]*Card
	byName map[string]*Card
	order  []string
}

type catalogFile struct {
	Cards []*Card `yaml:"cards"`
}

// NewCatalog indexes cards and checks their integrity: unique ids, positive
// HP for Pokémon and evolution lines that name a known card.
func NewCatalog(cards []*Card) (*Catalog, error) {
	c := &Catalog{
		cards:  make(map[string]*Card, len(cards)),
		byName: make(map[string]*Card, len(cards)),
	}
	for _, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card %q has no id", card.Name)
		}
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", card.ID)
		}
		if card.IsPokemon() && card.HP <= 0 {
			return nil, fmt.Errorf("card %q: Pokémon needs positive hp", card.ID)
		}
		for _, a := range card.Attacks {
			if a.Effect.NeedsValue() && a.Value <= 0 {
				return nil, fmt.Errorf("card %q: attack %q: %s needs a positive value", card.ID, a.Name, a.Effect)
			}
		}
		if card.Name == "" {
			card.Name = card.ID
		}
		c.cards[card.ID] = card
		if _, ok := c.byName[card.Name]; !ok {
			c.byName[card.Name] = card
		}
		c.order = append(c.order, card.ID)
	}
	for _, id := range c.order {
		card := c.cards[id]
		if !card.IsPokemon() {
			continue
		}
		switch {
		case card.Stage == StageBasic && card.EvolvesFrom != "":
			return nil, fmt.Errorf("card %q: Basic Pokémon cannot evolve from %q", id, card.EvolvesFrom)
		case card.Stage != StageBasic && card.EvolvesFrom == "":
			return nil, fmt.Errorf("card %q: %s needs evolves_from", id, card.Stage)
		case card.EvolvesFrom != "":
			if _, ok := c.byName[card.EvolvesFrom]; !ok {
				return nil, fmt.Errorf("card %q evolves from unknown card %q", id, card.EvolvesFrom)
			}
		}
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return NewCatalog(f.Cards)
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Lookup returns the definition with the given id.
func (c *Catalog) Lookup(id string) (*Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// MustLookup returns the definition with the given id.
// Panics if the card is not found: a missing id means a corrupted catalog.
func (c *Catalog) MustLookup(id string) *Card {
	card, ok := c.cards[id]
	if !ok {
		panic(fmt.Sprintf("card not found in catalog: %q", id))
	}
	return card
}

// NewCard returns a fresh copy of the definition with the given id, so each
// physical card in a deck has its own identity.
func (c *Catalog) NewCard(id string) (*Card, error) {
	def, ok := c.cards[id]
	if !ok {
		return nil, fmt.Errorf("card not found in catalog: %q", id)
	}
	cp := *def
	return &cp, nil
}

// ByName returns the first definition with the given name.
func (c *Catalog) ByName(name string) (*Card, bool) {
	card, ok := c.byName[name]
	return card, ok
}

// Cards returns every definition in file order.
func (c *Catalog) Cards() []*Card {
	out := make([]*Card, len(c.order))
	for i, id := range c.order {
		out[i] = c.cards[id]
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}
