package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
cards:
  - id: sv1-pikachu
    name: Pikachu
    kind: pokemon
    stage: basic
    type: lightning
    hp: 60
    retreat_cost: 1
    weakness: fighting
    attacks:
      - name: Thunder Shock
        cost: 2
        typed_cost: [lightning]
        damage: 30
        effect: flip_paralyze
  - id: sv1-raichu
    name: Raichu
    kind: pokemon
    stage: stage1
    evolves_from: Pikachu
    type: Lightning
    hp: 120
    ex: true
  - id: sv1-bibarel
    kind: pokemon
    stage: basic
    type: colorless
    hp: 120
    abilities:
      - id: refill_hand
        name: Industrious Incisors
        once_per_turn: true
  - id: sv1-potion
    name: Potion
    kind: trainer
    trainer_type: item
    effect: potion
  - id: sv1-band
    name: Vitality Band
    kind: trainer
    trainer_type: tool
    effect: hp_bonus
    value: 10
  - id: sve-lightning
    name: Lightning Energy
    kind: energy
    basic: true
    provides: lightning
  - id: legacy
    name: Legacy Energy
    kind: energy
    special: true
    provides: colorless
    energy_effect: double_when_behind
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())

	pikachu := c.MustLookup("sv1-pikachu")
	assert.Equal(t, KindPokemon, pikachu.Kind)
	assert.Equal(t, TypeLightning, pikachu.Type)
	assert.Equal(t, TypeFighting, pikachu.Weakness)
	require.Len(t, pikachu.Attacks, 1)
	assert.Equal(t, []EnergyType{TypeLightning}, pikachu.Attacks[0].TypedCost)
	assert.Equal(t, AttackFlipParalyze, pikachu.Attacks[0].Effect)

	raichu := c.MustLookup("sv1-raichu")
	assert.Equal(t, Stage1, raichu.Stage)
	assert.Equal(t, TypeLightning, raichu.Type, "enum keys are case-insensitive")
	assert.Equal(t, 2, raichu.PrizeValue())

	bibarel := c.MustLookup("sv1-bibarel")
	assert.Equal(t, "sv1-bibarel", bibarel.Name, "name defaults to the id")
	assert.True(t, bibarel.HasAbility(AbilityRefillHand))

	band := c.MustLookup("sv1-band")
	assert.True(t, band.IsTrainer(TrainerTool))
	assert.Equal(t, TrainerHPBonus, band.Effect)
	assert.Equal(t, 10, band.Value)

	assert.True(t, c.MustLookup("sve-lightning").IsBasicEnergy())
	assert.Equal(t, EnergyDoubleWhenBehind, c.MustLookup("legacy").EnergyEffect)

	byName, ok := c.ByName("Raichu")
	require.True(t, ok)
	assert.Same(t, raichu, byName)

	ids := make([]string, 0, c.Len())
	for _, card := range c.Cards() {
		ids = append(ids, card.ID)
	}
	assert.Equal(t, []string{"sv1-pikachu", "sv1-raichu", "sv1-bibarel", "sv1-potion", "sv1-band", "sve-lightning", "legacy"}, ids)
}

func TestCatalogIntegrityErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate id",
			yaml: "cards:\n  - {id: a, kind: energy}\n  - {id: a, kind: energy}\n",
			want: `duplicate card id "a"`,
		},
		{
			name: "missing id",
			yaml: "cards:\n  - {name: Nameless, kind: energy}\n",
			want: "has no id",
		},
		{
			name: "zero hp",
			yaml: "cards:\n  - {id: a, kind: pokemon, stage: basic}\n",
			want: "positive hp",
		},
		{
			name: "unknown evolves_from",
			yaml: "cards:\n  - {id: a, kind: pokemon, stage: stage1, evolves_from: Ghost, hp: 90}\n",
			want: `unknown card "Ghost"`,
		},
		{
			name: "evolution without base",
			yaml: "cards:\n  - {id: a, kind: pokemon, stage: stage2, hp: 90}\n",
			want: "needs evolves_from",
		},
		{
			name: "basic with base",
			yaml: "cards:\n  - {id: a, kind: pokemon, stage: basic, evolves_from: a, hp: 90}\n",
			want: "cannot evolve from",
		},
		{
			name: "unknown enum",
			yaml: "cards:\n  - {id: a, kind: pokemon, type: plasma, hp: 90}\n",
			want: `unknown energy type "plasma"`,
		},
		{
			name: "unknown effect",
			yaml: "cards:\n  - {id: a, kind: trainer, trainer_type: item, effect: time_travel}\n",
			want: `unknown trainer effect "time_travel"`,
		},
		{
			name: "attack effect without value",
			yaml: "cards:\n  - {id: a, kind: pokemon, stage: basic, hp: 90, attacks: [{name: Wing, cost: 1, effect: bench_snipe}]}\n",
			want: `attack "Wing": bench_snipe needs a positive value`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	_, ok := c.Lookup("missing")
	assert.False(t, ok)
	assert.PanicsWithValue(t, `card not found in catalog: "missing"`, func() { c.MustLookup("missing") })

	a, err := c.NewCard("sv1-potion")
	require.NoError(t, err)
	b, err := c.NewCard("sv1-potion")
	require.NoError(t, err)
	assert.NotSame(t, a, b, "every copy is a distinct card")
	assert.Equal(t, *a, *b)
	assert.NotSame(t, c.MustLookup("sv1-potion"), a)

	_, err = c.NewCard("missing")
	assert.Error(t, err)
}

func TestLoadCatalogWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cards: [ {id: a, kind: pokemon, stage: basic} ]"), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

const testDeckYAML = `
decks:
  - name: Sparks
    cards:
      - {id: sv1-pikachu, count: 4}
      - {id: sve-lightning, count: 6}
  - name: Potions
    cards:
      - {id: sv1-potion, count: 2}
`

func writeDeckFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDeckByNumber(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)
	path := writeDeckFile(t, testDeckYAML)

	name, cards, err := DeckByNumber(path, c, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sparks", name)
	require.Len(t, cards, 10)
	assert.Equal(t, "Pikachu", cards[0].Name)
	assert.NotSame(t, cards[0], cards[1])

	_, _, err = DeckByNumber(path, c, 3)
	assert.ErrorContains(t, err, "deck 3 not found")

	decks, err := ParseDeckFile(path, c)
	require.NoError(t, err)
	assert.Len(t, decks, 2)
	assert.Len(t, decks["Potions"], 2)
}

func TestBuildDeckErrors(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	_, err = BuildDeck(DeckEntry{Name: "bad", Cards: []CardEntry{{ID: "ghost", Count: 1}}}, c)
	assert.ErrorContains(t, err, `card not found in catalog: "ghost"`)

	_, err = BuildDeck(DeckEntry{Name: "bad", Cards: []CardEntry{{ID: "sv1-potion", Count: 0}}}, c)
	assert.ErrorContains(t, err, "count 0")
}

func TestShippedDataIsConsistent(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "data", "cards.yaml"))
	require.NoError(t, err)

	path := filepath.Join("..", "..", "data", "decks.yaml")
	df, err := ReadDeckFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, df.Decks)
	for i, entry := range df.Decks {
		_, cards, err := DeckByNumber(path, c, i+1)
		require.NoError(t, err, entry.Name)
		assert.Len(t, cards, 60, entry.Name)
	}
}
