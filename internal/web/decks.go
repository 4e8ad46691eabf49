package web

import (
	"github.com/peterkuimelis/pokeduel/internal/game"
)

// DeckCard is one line of a deck list.
type DeckCard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int        `json:"number"`
	Name   string     `json:"name"`
	Size   int        `json:"size"`
	Cards  []DeckCard `json:"cards"`
	Error  string     `json:"error,omitempty"` // set when the deck cannot be built
}

// loadDeckInfos lists every deck in path, resolving card names through catalog.
// A deck that names an unknown card is still listed, with Error set.
func loadDeckInfos(path string, catalog *game.Catalog) ([]DeckInfo, error) {
	df, err := game.ReadDeckFile(path)
	if err != nil {
		return nil, err
	}

	decks := make([]DeckInfo, 0, len(df.Decks))
	for i, d := range df.Decks {
		di := DeckInfo{Number: i + 1, Name: d.Name}
		for _, ce := range d.Cards {
			name := ce.ID
			if c, ok := catalog.Lookup(ce.ID); ok {
				name = c.Name
			}
			di.Cards = append(di.Cards, DeckCard{ID: ce.ID, Name: name, Count: ce.Count})
		}
		cards, err := game.BuildDeck(d, catalog)
		if err != nil {
			di.Error = err.Error()
		}
		di.Size = len(cards)
		decks = append(decks, di)
	}
	return decks, nil
}
