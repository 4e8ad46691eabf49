// Package ai plays a turn with a fixed script of steps. Every step goes
// through the engine's public operations and re-checks its own legality, so
// the sequencer can never put the game into a state a human could not.
package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
)

// maxRepeats bounds steps that run until their precondition fails.
const maxRepeats = 20

// Sequencer is the automated player. It implements game.PlayerController
// and game.TurnTaker.
type Sequencer struct {
	// EvolutionPriority lists evolution card names in the order they are
	// tried. Evolution cards not listed are tried afterwards in hand order.
	EvolutionPriority []string

	zap *zap.Logger
}

// New creates a sequencer. A nil logger discards diagnostics.
func New(logger *zap.Logger, evolutionPriority []string) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		EvolutionPriority: evolutionPriority,
		zap:               logger.Named("ai"),
	}
}

// Step is one entry of the turn script.
type Step struct {
	Name string
	run  func(s *Sequencer, d *game.Duel, player int) error
}

// Steps returns the turn script in execution order.
func Steps() []Step {
	return []Step{
		{"promote", (*Sequencer).promote},
		{"refill_hand", abilityStep(game.AbilityRefillHand)},
		{"item_search", abilityStep(game.AbilityItemSearch)},
		{"bench_basics", (*Sequencer).benchBasics},
		{"evolve", (*Sequencer).evolve},
		{"trash_draw", abilityStep(game.AbilityTrashDraw)},
		{"attach_energy", (*Sequencer).attachEnergy},
		{"energy_acceleration", (*Sequencer).accelerate},
		{"move_damage", abilityStep(game.AbilityAdrenaBrain)},
		{"attack", (*Sequencer).attack},
		{"end_turn", (*Sequencer).endTurn},
	}
}

// Turn runs the script one step per call to Next, for callers that want to
// animate between steps. A Turn cannot be restarted; begin a new one on the
// next turn.
type Turn struct {
	s      *Sequencer
	d      *game.Duel
	player int
	steps  []Step
	pos    int
	step   string
	err    error
}

// Begin starts a scripted turn for player.
func (s *Sequencer) Begin(d *game.Duel, player int) *Turn {
	return &Turn{s: s, d: d, player: player, steps: Steps()}
}

// Next runs the next step. It returns false once the script is exhausted,
// the game is over, control has passed to the opponent or a step failed.
func (t *Turn) Next() bool {
	if t.err != nil || t.pos >= len(t.steps) {
		return false
	}
	gs := t.d.State
	if gs.Over || gs.TurnPlayer != t.player {
		return false
	}
	st := t.steps[t.pos]
	t.pos++
	t.step = st.Name
	if err := st.run(t.s, t.d, t.player); err != nil {
		t.err = err
		return false
	}
	return true
}

// Step is the name of the step the last call to Next ran.
func (t *Turn) Step() string {
	return t.step
}

// Err returns the first error that stopped the turn.
func (t *Turn) Err() error {
	return t.err
}

// TakeTurn implements game.TurnTaker by running the whole script.
func (s *Sequencer) TakeTurn(ctx context.Context, d *game.Duel, player int) error {
	t := s.Begin(d, player)
	for t.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return t.Err()
}

// try runs an operation. Illegal actions and cancellations skip the step;
// anything else stops the turn.
func (s *Sequencer) try(step string, player int, err error) error {
	if err == nil {
		s.zap.Debug("step done", zap.String("step", step), zap.Int("player", player))
		return nil
	}
	if game.IsIllegal(err) || errors.Is(err, game.ErrDecisionCancelled) {
		s.zap.Debug("step skipped", zap.String("step", step), zap.Int("player", player), zap.Error(err))
		return nil
	}
	return err
}

// --- steps ---

func (s *Sequencer) promote(d *game.Duel, player int) error {
	p := d.State.Players[player]
	if p.Active != nil || len(p.Bench) == 0 {
		return nil
	}
	return s.try("promote", player, d.PromoteToActive(player, 0))
}

// abilityStep uses every in-play copy of ability id whose check passes.
func abilityStep(id game.AbilityID) func(s *Sequencer, d *game.Duel, player int) error {
	return func(s *Sequencer, d *game.Duel, player int) error {
		for _, c := range d.State.Players[player].InPlay() {
			i := c.AbilityIndex(id)
			if i < 0 || d.CanUseAbility(player, c, i) != nil {
				continue
			}
			if err := s.try(id.String(), player, d.UseAbility(player, c, i)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *Sequencer) benchBasics(d *game.Duel, player int) error {
	p := d.State.Players[player]
	for _, card := range append([]*game.Card(nil), p.Hand...) {
		if !card.IsBasicPokemon() || !p.HasRoom() {
			continue
		}
		if err := s.try("bench_basics", player, d.PlayBasic(player, card)); err != nil {
			return err
		}
	}
	return nil
}

// evolutionOrder returns the evolution cards in hand, priority names first.
func (s *Sequencer) evolutionOrder(hand []*game.Card) []*game.Card {
	var ordered []*game.Card
	used := make(map[*game.Card]bool)
	for _, name := range s.EvolutionPriority {
		for _, c := range hand {
			if !used[c] && c.Name == name && c.IsPokemon() && !c.IsBasicPokemon() {
				ordered = append(ordered, c)
				used[c] = true
			}
		}
	}
	for _, c := range hand {
		if !used[c] && c.IsPokemon() && !c.IsBasicPokemon() {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

func (s *Sequencer) evolve(d *game.Duel, player int) error {
	p := d.State.Players[player]
	for _, card := range s.evolutionOrder(p.Hand) {
		for _, c := range p.InPlay() {
			if game.CanEvolve(c, card) != nil {
				continue
			}
			if err := s.try("evolve", player, d.Evolve(player, c, card)); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// energyTarget prefers the first Pokémon, active first, that cannot yet pay
// for its most expensive attack.
func energyTarget(gs *game.GameState, p *game.Player) *game.Creature {
	for _, c := range p.InPlay() {
		if len(c.Card.Attacks) == 0 {
			continue
		}
		top := &c.Card.Attacks[0]
		for i := range c.Card.Attacks {
			if c.Card.Attacks[i].Cost > top.Cost {
				top = &c.Card.Attacks[i]
			}
		}
		if gs.HasEnergyFor(c, top) != nil {
			return c
		}
	}
	return p.Active
}

// energyFor picks the energy card in hand that best suits target.
func energyFor(hand []*game.Card, target *game.Creature) *game.Card {
	var fallback *game.Card
	for _, c := range hand {
		if !c.IsEnergy() {
			continue
		}
		if c.Provides == target.Card.Type {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}

func (s *Sequencer) attachEnergy(d *game.Duel, player int) error {
	gs := d.State
	p := gs.Players[player]
	if p.EnergyAttachedThisTurn {
		return nil
	}
	target := energyTarget(gs, p)
	if target == nil {
		return nil
	}
	card := energyFor(p.Hand, target)
	if card == nil {
		return nil
	}
	return s.try("attach_energy", player, d.AttachEnergy(player, card, target))
}

// accelerate repeats energy-acceleration abilities until they stop being legal.
func (s *Sequencer) accelerate(d *game.Duel, player int) error {
	for i := 0; i < maxRepeats; i++ {
		used := false
		for _, c := range d.State.Players[player].InPlay() {
			idx := c.AbilityIndex(game.AbilityPsychicEmbrace)
			if idx < 0 || d.CanUseAbility(player, c, idx) != nil {
				continue
			}
			err := d.UseAbility(player, c, idx)
			if err == nil {
				used = true
				break
			}
			if err := s.try("energy_acceleration", player, err); err != nil {
				return err
			}
		}
		if !used || d.State.Over {
			return nil
		}
	}
	return nil
}

// attack uses the legal attack with the highest listed damage.
func (s *Sequencer) attack(d *game.Duel, player int) error {
	p := d.State.Players[player]
	if p.Active == nil {
		return nil
	}
	best := -1
	for i, atk := range p.Active.Card.Attacks {
		if d.CanUseAttack(player, i) != nil {
			continue
		}
		if best < 0 || atk.Damage > p.Active.Card.Attacks[best].Damage {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return s.try("attack", player, d.Attack(player, best))
}

func (s *Sequencer) endTurn(d *game.Duel, player int) error {
	gs := d.State
	if gs.Over || gs.TurnPlayer != player {
		return nil
	}
	return s.try("end_turn", player, d.EndTurn())
}

// --- game.PlayerController ---

// ChooseAction is used only by loops that step through actions one at a
// time: attack when possible, else end the turn.
func (s *Sequencer) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	if len(actions) == 0 {
		return game.Action{}, game.ErrNoLegalActions
	}
	for _, a := range actions {
		if a.Type == game.ActionAttack {
			return a, nil
		}
	}
	return actions[len(actions)-1], nil
}

// ChooseOptions answers immediately and deterministically.
func (s *Sequencer) ChooseOptions(ctx context.Context, state *game.GameState, req game.SelectionRequest) ([]int, error) {
	picks := req.FirstPicks()
	s.zap.Debug("decision", zap.String("effect", req.Effect), zap.String("prompt", req.Prompt), zap.Ints("picks", picks))
	return picks, nil
}

// Notify implements game.PlayerController.
func (s *Sequencer) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
