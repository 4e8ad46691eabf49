package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of actions.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	t       *testing.T
	name    string
	actions []ScriptedAction
	pos     int

	// For ChooseOptions prompts
	choices []ScriptedChoice
	choice  int

	// Requests records every selection the engine asked for.
	Requests []SelectionRequest
}

type ScriptedAction struct {
	// Match by ActionType: picks the first action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
	// Optional: match by target creature name
	TargetName string
}

type ScriptedChoice struct {
	// Choose options by card or creature name, in order
	Names  []string
	Cancel bool
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddAction(actionType ActionType, cardName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: actionType, CardName: cardName})
	return sc
}

func (sc *ScriptedController) AddTargeted(actionType ActionType, cardName, targetName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: actionType, CardName: cardName, TargetName: targetName})
	return sc
}

func (sc *ScriptedController) AddAttack() *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionAttack})
	return sc
}

func (sc *ScriptedController) AddChoice(names ...string) *ScriptedController {
	sc.choices = append(sc.choices, ScriptedChoice{Names: names})
	return sc
}

func (sc *ScriptedController) AddCancel() *ScriptedController {
	sc.choices = append(sc.choices, ScriptedChoice{Cancel: true})
	return sc
}

func (sc *ScriptedController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if sc.pos < len(sc.actions) {
		// Peek at next scripted action; only consume it if it matches an available action.
		// This allows scripts to span multiple turns without needing to explicitly script "EndTurn".
		scripted := sc.actions[sc.pos]
		for _, a := range actions {
			if a.Type != scripted.Type {
				continue
			}
			if scripted.CardName != "" && (a.Card == nil || a.Card.Name != scripted.CardName) {
				continue
			}
			if scripted.TargetName != "" && (a.Target == nil || a.Target.Card.Name != scripted.TargetName) {
				continue
			}
			sc.pos++
			return a, nil
		}
	}
	for _, a := range actions {
		if a.Type == ActionEndTurn {
			return a, nil
		}
	}
	return actions[len(actions)-1], nil
}

func optionName(o Option) string {
	switch {
	case o.Card != nil:
		return o.Card.Name
	case o.Creature != nil:
		return o.Creature.Card.Name
	default:
		return o.Label
	}
}

func (sc *ScriptedController) ChooseOptions(ctx context.Context, state *GameState, req SelectionRequest) ([]int, error) {
	sc.Requests = append(sc.Requests, req)
	if sc.choice >= len(sc.choices) {
		return req.FirstPicks(), nil
	}
	choice := sc.choices[sc.choice]
	sc.choice++
	if choice.Cancel {
		return nil, ErrDecisionCancelled
	}

	var picks []int
	used := make(map[int]bool)
	for _, name := range choice.Names {
		for i, o := range req.Options {
			if !used[i] && optionName(o) == name {
				picks = append(picks, i)
				used[i] = true
				break
			}
		}
	}
	if len(picks) < req.Min {
		return nil, fmt.Errorf("[%s] choice: wanted %v but only found %d in options", sc.name, choice.Names, len(picks))
	}
	return picks, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// --- Test card helpers ---

func atk(name string, cost, damage int, typed ...EnergyType) Attack {
	return Attack{Name: name, Cost: cost, Damage: damage, TypedCost: typed}
}

func basicPokemon(name string, t EnergyType, hp int, attacks ...Attack) *Card {
	return &Card{
		ID:          name,
		Name:        name,
		Kind:        KindPokemon,
		Stage:       StageBasic,
		Type:        t,
		HP:          hp,
		RetreatCost: 1,
		Attacks:     attacks,
	}
}

func evolution(name, from string, stage Stage, t EnergyType, hp int, attacks ...Attack) *Card {
	c := basicPokemon(name, t, hp, attacks...)
	c.Stage = stage
	c.EvolvesFrom = from
	return c
}

func energy(t EnergyType) *Card {
	name := t.String() + " Energy"
	return &Card{ID: name, Name: name, Kind: KindEnergy, IsBasic: true, Provides: t}
}

func trainer(name string, tt TrainerType, effect TrainerEffect) *Card {
	return &Card{ID: name, Name: name, Kind: KindTrainer, TrainerType: tt, Effect: effect}
}

func withAbility(c *Card, id AbilityID, oncePerTurn bool) *Card {
	c.Abilities = append(c.Abilities, Ability{ID: id, Name: id.String(), OncePerTurn: oncePerTurn})
	return c
}

// filler is an unplayable card used to pad decks.
func filler() *Card {
	return trainer("Filler Token", TrainerItem, TrainerNoEffect)
}

func makeDeck(cards ...*Card) []*Card {
	deck := make([]*Card, 0, len(cards))
	deck = append(deck, cards...)
	return deck
}

// makePaddedDeck creates a deck with specified cards on top (drawn first) and filler to reach a minimum size.
// topCards are ordered so that index 0 is drawn first: the first 7 form the
// opening hand and the next 6 become prizes.
func makePaddedDeck(topCards []*Card, minSize int) []*Card {
	deck := make([]*Card, 0, minSize)

	// Filler goes at bottom (drawn last)
	for i := 0; i < minSize-len(topCards); i++ {
		deck = append(deck, filler())
	}

	// Top cards go at end of slice (drawn first), reversed so index 0 is drawn first
	for i := len(topCards) - 1; i >= 0; i-- {
		deck = append(deck, topCards[i])
	}

	return deck
}

// openingDeck pads hand to 7 cards, then 6 filler prizes, then draws.
func openingDeck(hand []*Card, draws ...*Card) []*Card {
	top := append([]*Card(nil), hand...)
	for len(top) < HandSize {
		top = append(top, filler())
	}
	for i := 0; i < PrizeCount; i++ {
		top = append(top, filler())
	}
	top = append(top, draws...)
	return makePaddedDeck(top, 40)
}

// testConfig is a deterministic config: no shuffles, P1 first, heads on every flip.
func testConfig(t *testing.T, deck0, deck1 []*Card) DuelConfig {
	return DuelConfig{
		Deck0:       deck0,
		Deck1:       deck1,
		Logger:      log.NewMemoryLogger(),
		Zap:         zaptest.NewLogger(t),
		Seed:        1,
		NoShuffle:   true,
		FirstPlayer: 1,
		Coin:        func() bool { return true },
	}
}

// startDuel runs setup and leaves the duel in P1's first main phase.
func startDuel(t *testing.T, cfg DuelConfig, p0, p1 PlayerController) *Duel {
	t.Helper()
	d := NewDuel(cfg, p0, p1)
	require.NoError(t, d.StartGame(cfg.Deck0, cfg.Deck1))
	return d
}

// newTestDuel starts a duel whose opening hands are hand0 and hand1.
func newTestDuel(t *testing.T, hand0, hand1 []*Card) (*Duel, *ScriptedController, *ScriptedController) {
	t.Helper()
	p0 := NewScriptedController(t, "P1")
	p1 := NewScriptedController(t, "P2")
	d := startDuel(t, testConfig(t, openingDeck(hand0), openingDeck(hand1)), p0, p1)
	return d, p0, p1
}

// passTurns ends n turns.
func passTurns(t *testing.T, d *Duel, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, d.EndTurn())
	}
}

// bench puts card straight onto player's bench, as if played last turn.
func bench(d *Duel, player int, card *Card) *Creature {
	c := newCreature(d.State, card, player)
	c.PlayedThisTurn = false
	c.TurnsInPlay = 1
	d.State.Players[player].Bench = append(d.State.Players[player].Bench, c)
	return c
}

// attach puts energy cards straight onto c.
func attach(c *Creature, cards ...*Card) {
	c.Energies = append(c.Energies, cards...)
}

func memoryLog(d *Duel) *log.MemoryLogger {
	return d.Logger.(*log.MemoryLogger)
}

// runDuelToCompletion runs a duel and returns the logger for inspection.
func runDuelToCompletion(t *testing.T, cfg DuelConfig, p0, p1 PlayerController) (*Duel, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	cfg.NoShuffle = true // deterministic tests
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 30
	}
	if cfg.Zap == nil {
		cfg.Zap = zaptest.NewLogger(t)
	}

	duel := NewDuel(cfg, p0, p1)

	winner, err := duel.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Duel error: %v", err)
	}

	t.Logf("Duel result: winner=%d (%s)", winner, duel.State.Result)
	return duel, logger
}

// setActive replaces player's Active Pokémon with a fresh creature, as if it
// had been in play since last turn.
func setActive(d *Duel, player int, card *Card) *Creature {
	c := newCreature(d.State, card, player)
	c.PlayedThisTurn = false
	c.TurnsInPlay = 1
	d.State.Players[player].Active = c
	return c
}
