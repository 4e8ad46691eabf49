package game

import "fmt"

// PlayBasic puts a Basic Pokémon from hand into the active slot if it is
// empty, else onto the bench.
func (d *Duel) PlayBasic(player int, card *Card) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	p := d.State.Players[player]
	if card == nil || !card.IsBasicPokemon() {
		return ErrNotBasic
	}
	if !p.HasRoom() {
		return ErrBenchFull
	}
	if !p.RemoveFromHand(card) {
		return ErrNotInHand
	}
	d.putIntoPlay(player, card)
	return nil
}

// LegalActions enumerates every main-phase action player can take now.
// End Turn is always last.
func (d *Duel) LegalActions(player int) []Action {
	gs := d.State
	if d.checkTurn(player) != nil {
		return nil
	}
	p := gs.Players[player]
	var actions []Action
	seen := make(map[*Card]bool)

	for _, card := range p.Hand {
		if seen[card] {
			continue
		}
		seen[card] = true

		switch {
		case card.IsBasicPokemon():
			if p.HasRoom() {
				actions = append(actions, Action{
					Type: ActionPlayBasic, Player: player, Card: card,
					Desc: fmt.Sprintf("Play %s (HP %d)", card.Name, card.HP),
				})
			}
		case card.IsPokemon():
			for _, c := range p.InPlay() {
				if CanEvolve(c, card) == nil {
					actions = append(actions, Action{
						Type: ActionEvolve, Player: player, Card: card, Target: c,
						Desc: fmt.Sprintf("Evolve %s into %s", c.Card.Name, card.Name),
					})
				}
			}
		case card.IsEnergy():
			if p.EnergyAttachedThisTurn {
				continue
			}
			for _, c := range p.InPlay() {
				actions = append(actions, Action{
					Type: ActionAttachEnergy, Player: player, Card: card, Target: c,
					Desc: fmt.Sprintf("Attach %s to %s", card.Name, c.Card.Name),
				})
			}
		case card.IsTrainer(TrainerTool):
			for _, c := range p.InPlay() {
				if c.Tool == nil {
					actions = append(actions, Action{
						Type: ActionAttachTool, Player: player, Card: card, Target: c,
						Desc: fmt.Sprintf("Attach %s to %s", card.Name, c.Card.Name),
					})
				}
			}
		case card.Kind == KindTrainer:
			if d.CanPlayTrainer(player, card) == nil {
				actions = append(actions, Action{
					Type: ActionPlayTrainer, Player: player, Card: card,
					Desc: fmt.Sprintf("Play %s (%s)", card.Name, card.TrainerType),
				})
			}
		}
	}

	for _, c := range p.InPlay() {
		for i, ab := range c.Card.Abilities {
			if d.CanUseAbility(player, c, i) == nil {
				actions = append(actions, Action{
					Type: ActionUseAbility, Player: player, Target: c, Index: i,
					Desc: fmt.Sprintf("Use %s's %s", c.Card.Name, ab.Name),
				})
			}
		}
	}

	if d.CanRetreat(player) == nil {
		for i, b := range p.Bench {
			actions = append(actions, Action{
				Type: ActionRetreat, Player: player, Target: p.Active, Index: i,
				Desc: fmt.Sprintf("Retreat %s for %s (cost %d)", p.Active.Card.Name, b.Card.Name, gs.RetreatCost(p.Active)),
			})
		}
	}

	if p.Active != nil {
		for i, atk := range p.Active.Card.Attacks {
			if d.CanUseAttack(player, i) == nil {
				actions = append(actions, Action{
					Type: ActionAttack, Player: player, Target: p.Active, Index: i,
					Desc: fmt.Sprintf("Attack with %s: %s (%d)", p.Active.Card.Name, atk.Name, atk.Damage),
				})
			}
		}
	}

	actions = append(actions, Action{Type: ActionEndTurn, Player: player, Desc: "End Turn"})
	return actions
}

// Execute performs a main-phase action through the matching operation.
func (d *Duel) Execute(a Action) error {
	switch a.Type {
	case ActionPlayBasic:
		return d.PlayBasic(a.Player, a.Card)
	case ActionAttachEnergy:
		return d.AttachEnergy(a.Player, a.Card, a.Target)
	case ActionAttachTool:
		return d.AttachTool(a.Player, a.Card, a.Target)
	case ActionEvolve:
		return d.Evolve(a.Player, a.Target, a.Card)
	case ActionPlayTrainer:
		return d.PlayTrainer(a.Player, a.Card)
	case ActionUseAbility:
		return d.UseAbility(a.Player, a.Target, a.Index)
	case ActionRetreat:
		return d.Retreat(a.Player, a.Index)
	case ActionAttack:
		return d.Attack(a.Player, a.Index)
	case ActionEndTurn:
		if a.Player != d.State.TurnPlayer {
			return ErrNotYourTurn
		}
		return d.EndTurn()
	default:
		return illegal(fmt.Sprintf("unknown action %v", a.Type))
	}
}
