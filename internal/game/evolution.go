package game

import (
	"github.com/peterkuimelis/pokeduel/internal/log"
)

// CanEvolve checks the normal evolution path: a Stage 1 or Stage 2 card whose
// evolvesFrom names the target, onto a creature that has been in play since
// before this turn.
func CanEvolve(target *Creature, evolution *Card) error {
	if target == nil {
		return ErrNoTarget
	}
	if evolution == nil || !evolution.IsPokemon() || evolution.Stage == StageBasic {
		return ErrCannotEvolve
	}
	if evolution.EvolvesFrom != target.Card.Name {
		return ErrCannotEvolve
	}
	if target.TurnsInPlay == 0 {
		return ErrEvolveSameTurn
	}
	return nil
}

// canFastTrack checks the Rare Candy path: a Basic not played this turn,
// straight to a Stage 2 whose line reaches back to it.
func (d *Duel) canFastTrack(target *Creature, evolution *Card) error {
	if target == nil {
		return ErrNoTarget
	}
	if target.Card.Stage != StageBasic || evolution == nil || !evolution.IsPokemon() || evolution.Stage != Stage2 {
		return ErrCannotEvolve
	}
	if evolution.EvolvesFrom == "" {
		return ErrCannotEvolve
	}
	if target.PlayedThisTurn {
		return ErrEvolveSameTurn
	}
	if d.Catalog != nil {
		mid, ok := d.Catalog.ByName(evolution.EvolvesFrom)
		if !ok || mid.EvolvesFrom != target.Card.Name {
			return ErrCannotEvolve
		}
	}
	return nil
}

// Evolve plays evolution from hand onto target.
func (d *Duel) Evolve(player int, target *Creature, evolution *Card) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	p := d.State.Players[player]
	if !p.Owns(target) {
		return ErrNotInPlay
	}
	if p.HandIndex(evolution) < 0 {
		return ErrNotInHand
	}
	if err := CanEvolve(target, evolution); err != nil {
		return err
	}
	p.RemoveFromHand(evolution)
	d.evolve(player, target, evolution)
	return nil
}

// evolve replaces target with a new creature built from evolution, carrying
// over damage, attachments and time in play. Special conditions are cleared.
func (d *Duel) evolve(player int, target *Creature, evolution *Card) *Creature {
	gs := d.State
	evolved := &Creature{
		Card:        evolution,
		ID:          gs.NextID(),
		Owner:       target.Owner,
		Damage:      target.Damage,
		TurnsInPlay: target.TurnsInPlay,
		Energies:    target.Energies,
		Tool:        target.Tool,
		Stack:       append(append([]*Card(nil), target.Stack...), target.Card),
	}
	gs.Players[player].replaceCreature(target, evolved)
	d.log(log.NewEvolveEvent(gs.Turn, d.phase(), player, target.Card.Name, evolution.Name))
	return evolved
}
