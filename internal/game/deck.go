package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card id and its count in a deck.
type CardEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// ReadDeckFile reads and decodes a deck list file.
func ReadDeckFile(path string) (*DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	return &df, nil
}

// BuildDeck expands a deck entry into one card per copy. An id missing from
// the catalog is an integrity fault.
func BuildDeck(entry DeckEntry, catalog *Catalog) ([]*Card, error) {
	var cards []*Card
	for _, ce := range entry.Cards {
		if ce.Count <= 0 {
			return nil, fmt.Errorf("deck %q: card %q has count %d", entry.Name, ce.ID, ce.Count)
		}
		for i := 0; i < ce.Count; i++ {
			card, err := catalog.NewCard(ce.ID)
			if err != nil {
				return nil, fmt.Errorf("deck %q: %w", entry.Name, err)
			}
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// ParseDeckFile parses a YAML deck file and returns a map of deck name → card slice.
func ParseDeckFile(path string, catalog *Catalog) (map[string][]*Card, error) {
	df, err := ReadDeckFile(path)
	if err != nil {
		return nil, err
	}
	decks := make(map[string][]*Card, len(df.Decks))
	for _, deck := range df.Decks {
		cards, err := BuildDeck(deck, catalog)
		if err != nil {
			return nil, err
		}
		decks[deck.Name] = cards
	}
	return decks, nil
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck file.
func DeckByNumber(path string, catalog *Catalog, n int) (string, []*Card, error) {
	df, err := ReadDeckFile(path)
	if err != nil {
		return "", nil, err
	}
	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	deck := df.Decks[n-1]
	cards, err := BuildDeck(deck, catalog)
	if err != nil {
		return "", nil, err
	}
	return deck.Name, cards, nil
}
