package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

func TestBasicCannotEvolveTheTurnItEntersPlay(t *testing.T) {
	charmander := basicPokemon("Charmander", TypeFire, 70)
	charmeleon := evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)
	d, _, _ := newTestDuel(t, []*Card{charmander, charmeleon}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	p := d.State.Players[0]

	assert.ErrorIs(t, d.Evolve(0, p.Active, charmeleon), ErrEvolveSameTurn)

	passTurns(t, d, 2)
	require.NoError(t, d.Evolve(0, p.Active, charmeleon))
	assert.Equal(t, "Charmeleon", p.Active.Card.Name)
}

func TestEvolveCarriesStateOver(t *testing.T) {
	charmander := basicPokemon("Charmander", TypeFire, 70)
	charmeleon := evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)
	d, _, _ := newTestDuel(t, []*Card{charmander, charmeleon}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	passTurns(t, d, 2)

	p := d.State.Players[0]
	old := p.Active
	fire := energy(TypeFire)
	tool := trainer("Vitality Band", TrainerTool, TrainerHPBonus)
	old.Damage = 40
	attach(old, fire)
	old.Tool = tool
	old.SetStatus(StatusPoison)

	require.NoError(t, d.Evolve(0, old, charmeleon))

	evolved := p.Active
	assert.NotSame(t, old, evolved)
	assert.Equal(t, 40, evolved.Damage)
	assert.Equal(t, []*Card{fire}, evolved.Energies)
	assert.Same(t, tool, evolved.Tool)
	assert.Equal(t, old.TurnsInPlay, evolved.TurnsInPlay)
	assert.False(t, evolved.PlayedThisTurn)
	assert.Equal(t, StatusNone, evolved.Status)
	assert.Equal(t, []*Card{charmander}, evolved.Stack)
	assert.Equal(t, -1, p.HandIndex(charmeleon))
	assert.Len(t, memoryLog(d).EventsOfType(log.EventEvolve), 1)
}

func TestEvolveBenchedCreature(t *testing.T) {
	d, _, _ := newTestDuel(t, []*Card{basicPokemon("Pikachu", TypeLightning, 60)}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	p := d.State.Players[0]
	b := bench(d, 0, basicPokemon("Charmander", TypeFire, 70))
	charmeleon := evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)
	p.Hand = append(p.Hand, charmeleon)

	require.NoError(t, d.Evolve(0, b, charmeleon))
	require.Len(t, p.Bench, 1)
	assert.Equal(t, "Charmeleon", p.Bench[0].Card.Name)
	assert.Equal(t, "Pikachu", p.Active.Card.Name)
}

func TestCanEvolve(t *testing.T) {
	gs := NewGameState()
	charmander := newCreature(gs, basicPokemon("Charmander", TypeFire, 70), 0)
	charmander.TurnsInPlay = 1

	assert.NoError(t, CanEvolve(charmander, evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)))
	assert.ErrorIs(t, CanEvolve(charmander, evolution("Wartortle", "Squirtle", Stage1, TypeWater, 100)), ErrCannotEvolve)
	assert.ErrorIs(t, CanEvolve(charmander, basicPokemon("Vulpix", TypeFire, 60)), ErrCannotEvolve)
	assert.ErrorIs(t, CanEvolve(charmander, energy(TypeFire)), ErrCannotEvolve)
	assert.ErrorIs(t, CanEvolve(nil, evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)), ErrNoTarget)

	charmander.TurnsInPlay = 0
	assert.ErrorIs(t, CanEvolve(charmander, evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)), ErrEvolveSameTurn)
}

func TestEvolveRequiresCardInHand(t *testing.T) {
	d, _, _ := newTestDuel(t, []*Card{basicPokemon("Charmander", TypeFire, 70)}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	passTurns(t, d, 2)
	charmeleon := evolution("Charmeleon", "Charmander", Stage1, TypeFire, 100)

	assert.ErrorIs(t, d.Evolve(0, d.State.Players[0].Active, charmeleon), ErrNotInHand)
	assert.ErrorIs(t, d.Evolve(0, d.State.Players[1].Active, charmeleon), ErrNotInPlay)
}

func TestRareCandyFastTracksToStage2(t *testing.T) {
	bulbasaur := basicPokemon("Bulbasaur", TypeGrass, 70)
	ivysaur := evolution("Ivysaur", "Bulbasaur", Stage1, TypeGrass, 100)
	venusaur := evolution("Venusaur", "Ivysaur", Stage2, TypeGrass, 160)
	candy := trainer("Rare Candy", TrainerItem, TrainerRareCandy)

	d, _, _ := newTestDuel(t, []*Card{bulbasaur, venusaur, candy}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	catalog, err := NewCatalog([]*Card{bulbasaur, ivysaur, venusaur})
	require.NoError(t, err)
	d.Catalog = catalog
	passTurns(t, d, 2)

	p := d.State.Players[0]
	require.NoError(t, d.PlayTrainer(0, candy))

	assert.Equal(t, "Venusaur", p.Active.Card.Name)
	assert.Equal(t, []*Card{bulbasaur}, p.Active.Stack)
	assert.Contains(t, p.Discard, candy)
	assert.Equal(t, -1, p.HandIndex(venusaur))
}

func TestRareCandyRejections(t *testing.T) {
	oddish := basicPokemon("Oddish", TypeGrass, 60)
	bulbasaur := basicPokemon("Bulbasaur", TypeGrass, 70)
	ivysaur := evolution("Ivysaur", "Oddish", Stage1, TypeGrass, 100)
	venusaur := evolution("Venusaur", "Ivysaur", Stage2, TypeGrass, 160)
	candy := trainer("Rare Candy", TrainerItem, TrainerRareCandy)

	d, _, _ := newTestDuel(t, []*Card{bulbasaur, venusaur, candy}, []*Card{basicPokemon("Squirtle", TypeWater, 70)})
	catalog, err := NewCatalog([]*Card{oddish, bulbasaur, ivysaur, venusaur})
	require.NoError(t, err)
	d.Catalog = catalog

	assert.ErrorIs(t, d.PlayTrainer(0, candy), ErrCannotEvolve, "Venusaur's line does not reach Bulbasaur")

	d.Catalog = nil
	p := d.State.Players[0]
	p.Active.PlayedThisTurn = true
	assert.ErrorIs(t, d.CanPlayTrainer(0, candy), ErrCannotEvolve, "a Basic played this turn cannot be fast-tracked")
}
