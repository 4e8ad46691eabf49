package game

import (
	"github.com/peterkuimelis/pokeduel/internal/log"
)

// energyValue is how many energy a single attached card counts as.
func (gs *GameState) energyValue(c *Creature, e *Card) int {
	if e.EnergyEffect == EnergyDoubleWhenBehind && gs.IsBehind(c.Owner) {
		return 2
	}
	return 1
}

// CountEnergy sums the attached energy providing type t.
func (gs *GameState) CountEnergy(c *Creature, t EnergyType) int {
	n := 0
	for _, e := range c.Energies {
		if e.Provides == t {
			n += gs.energyValue(c, e)
		}
	}
	return n
}

// CountTotalEnergy sums all attached energy.
func (gs *GameState) CountTotalEnergy(c *Creature) int {
	n := 0
	for _, e := range c.Energies {
		n += gs.energyValue(c, e)
	}
	return n
}

// HasEnergyFor checks an attack's cost: total first, then each typed requirement.
func (gs *GameState) HasEnergyFor(c *Creature, atk *Attack) error {
	if gs.CountTotalEnergy(c) < atk.Cost {
		return ErrInsufficientEnergy
	}
	need := make(map[EnergyType]int)
	for _, t := range atk.TypedCost {
		need[t]++
	}
	for t, n := range need {
		if t == TypeColorless {
			continue
		}
		if gs.CountEnergy(c, t) < n {
			return ErrMissingEnergyType
		}
	}
	return nil
}

// RetreatCost is the card's retreat cost minus stadium reductions for
// Basic Pokémon, floored at 0.
func (gs *GameState) RetreatCost(c *Creature) int {
	cost := c.Card.RetreatCost
	if effect, value, ok := gs.StadiumEffect(); ok && effect == TrainerBasicRetreatReduction && c.Card.Stage == StageBasic {
		cost -= value
	}
	if cost < 0 {
		return 0
	}
	return cost
}

// AttachEnergyFromHand attaches the first energy card in hand to target.
func (d *Duel) AttachEnergyFromHand(player int, target *Creature) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	p := d.State.Players[player]
	if p.EnergyAttachedThisTurn {
		return ErrAlreadyAttached
	}
	if target == nil {
		return ErrNoTarget
	}
	for _, c := range p.Hand {
		if c.IsEnergy() {
			return d.AttachEnergy(player, c, target)
		}
	}
	return ErrNoEnergyInHand
}

// AttachEnergy attaches a specific energy card from hand to target. Only one
// attachment from hand is allowed per turn.
func (d *Duel) AttachEnergy(player int, energy *Card, target *Creature) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if p.EnergyAttachedThisTurn {
		return ErrAlreadyAttached
	}
	if target == nil {
		return ErrNoTarget
	}
	if !p.Owns(target) {
		return ErrNotInPlay
	}
	if energy == nil || !energy.IsEnergy() {
		return ErrNotEnergy
	}
	if !p.RemoveFromHand(energy) {
		return ErrNotInHand
	}
	target.Energies = append(target.Energies, energy)
	p.EnergyAttachedThisTurn = true
	d.log(log.NewAttachEnergyEvent(gs.Turn, d.phase(), player, energy.Name, target.Card.Name))
	return nil
}

// CanRetreat reports whether player's Active Pokémon can retreat now.
func (d *Duel) CanRetreat(player int) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if p.Active == nil {
		return ErrNoActive
	}
	if len(p.Bench) == 0 {
		return ErrBenchEmpty
	}
	if p.RetreatedThisTurn {
		return ErrAlreadyRetreated
	}
	if p.Active.Status.PreventsAttack() {
		return ErrStatusPrevents
	}
	if gs.CountTotalEnergy(p.Active) < gs.RetreatCost(p.Active) {
		return ErrInsufficientEnergy
	}
	return nil
}

// PayRetreatCost discards attached energy from player's creature c worth its
// retreat cost, most recently attached first.
func (d *Duel) PayRetreatCost(player int, c *Creature) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if c == nil {
		return ErrNoTarget
	}
	if !p.Owns(c) {
		return ErrNotInPlay
	}
	cost := gs.RetreatCost(c)
	if gs.CountTotalEnergy(c) < cost {
		return ErrInsufficientEnergy
	}
	paid := 0
	for paid < cost {
		value := gs.energyValue(c, c.Energies[len(c.Energies)-1])
		e := c.removeEnergy(len(c.Energies) - 1)
		p.Discard = append(p.Discard, e)
		paid += value
		d.log(log.NewDiscardEvent(gs.Turn, d.phase(), player, e.Name, "retreat cost"))
	}
	return nil
}

// Retreat pays the retreat cost and swaps the Active Pokémon with the benched
// one at benchIndex. The retreating Pokémon's special condition is cleared.
func (d *Duel) Retreat(player, benchIndex int) error {
	if err := d.CanRetreat(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if benchIndex < 0 || benchIndex >= len(p.Bench) {
		return ErrNoTarget
	}
	cost := gs.RetreatCost(p.Active)
	if err := d.PayRetreatCost(player, p.Active); err != nil {
		return err
	}
	out, in := p.swapActive(benchIndex)
	p.RetreatedThisTurn = true
	d.log(log.NewRetreatEvent(gs.Turn, d.phase(), player, out.Card.Name, in.Card.Name, cost))
	return nil
}
