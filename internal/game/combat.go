package game

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// attackEffectHandler overrides the base damage of an attack and/or adds a
// side effect after damage is dealt. Any hook may be nil. prepare collects
// the effect's decisions before the attack is marked and returns the work to
// run after damage.
type attackEffectHandler struct {
	damage  func(d *Duel, attacker, defender *Creature, atk *Attack) int
	prepare func(d *Duel, attacker, defender *Creature, atk *Attack) (effectPlan, error)
	after   func(d *Duel, attacker, defender *Creature, atk *Attack)
}

var attackEffects = map[AttackEffect]attackEffectHandler{
	AttackDamageCounterScaling: {
		damage: func(d *Duel, attacker, defender *Creature, atk *Attack) int {
			return 30 * attacker.DamageCounters()
		},
	},
	AttackBenchScaling: {
		damage: func(d *Duel, attacker, defender *Creature, atk *Attack) int {
			benched := len(d.State.Players[0].Bench) + len(d.State.Players[1].Bench)
			return 20 + 20*benched
		},
	},
	AttackDiscardEnergy: {
		after: func(d *Duel, attacker, defender *Creature, atk *Attack) {
			if len(attacker.Energies) == 0 {
				return
			}
			e := attacker.removeEnergy(len(attacker.Energies) - 1)
			p := d.State.Players[attacker.Owner]
			p.Discard = append(p.Discard, e)
			d.log(log.NewDiscardEvent(d.State.Turn, d.phase(), attacker.Owner, e.Name, atk.Name))
		},
	},
	AttackFlipParalyze: {
		after: func(d *Duel, attacker, defender *Creature, atk *Attack) {
			if defender.IsKnockedOut() {
				return
			}
			if d.flipCoin(attacker.Owner, atk.Name) {
				d.inflict(defender, StatusParalysis)
			}
		},
	},
	// Snipe damage ignores weakness and resistance.
	AttackBenchSnipe: {
		prepare: func(d *Duel, attacker, defender *Creature, atk *Attack) (effectPlan, error) {
			bench := d.State.Players[defender.Owner].Bench
			opt, err := d.requestOne(attacker.Owner, fmt.Sprintf("Choose a Benched Pokémon to take %d damage", atk.Value), creatureOptions(bench))
			if errors.Is(err, ErrNoTarget) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return func() {
				d.applyDamage(opt.Creature, atk.Value, atk.Name)
			}, nil
		},
	},
	AttackSelfHeal: {
		after: func(d *Duel, attacker, defender *Creature, atk *Attack) {
			if healed := attacker.heal(atk.Value); healed > 0 {
				d.log(log.NewHealEvent(d.State.Turn, d.phase(), attacker.Owner, attacker.Card.Name, healed))
			}
		},
	},
	AttackDrawCards: {
		after: func(d *Duel, attacker, defender *Creature, atk *Attack) {
			d.Draw(attacker.Owner, atk.Value)
		},
	},
}

// Weakness returns the weakness type and multiplier that apply to defender,
// taking board-wide overrides into account.
func (gs *GameState) Weakness(defender *Creature) (EnergyType, int) {
	if defender.Card.Type == TypeDragon && gs.HasAbilityInPlay(gs.Opponent(defender.Owner), AbilityFairyZone) {
		return TypePsychic, 2
	}
	return defender.Card.Weakness, defender.Card.WeaknessFactor()
}

// ApplyWeaknessResistance runs the weakness then resistance steps of the
// damage pipeline. The result is never negative.
func (gs *GameState) ApplyWeaknessResistance(attacker, defender *Creature, base int) int {
	dmg := base
	if wt, mult := gs.Weakness(defender); wt != TypeNone && wt == attacker.Card.Type {
		dmg *= mult
	}
	if rt := defender.Card.Resistance; rt != TypeNone && rt == attacker.Card.Type {
		dmg -= defender.Card.ResistanceValue
	}
	if dmg < 0 {
		return 0
	}
	return dmg
}

// CalculateDamage runs base, effect override, weakness and resistance in that order.
func (d *Duel) CalculateDamage(attacker, defender *Creature, atk *Attack) int {
	base := atk.Damage
	if h, ok := attackEffects[atk.Effect]; ok && h.damage != nil {
		base = h.damage(d, attacker, defender, atk)
	}
	return d.State.ApplyWeaknessResistance(attacker, defender, base)
}

// CanAttack reports whether player's Active Pokémon can use its first attack.
func (d *Duel) CanAttack(player int) error {
	return d.CanUseAttack(player, 0)
}

// CanUseAttack reports whether player's Active Pokémon can use attack index.
func (d *Duel) CanUseAttack(player, index int) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if p.Active == nil {
		return ErrNoActive
	}
	if p.AttackedThisTurn {
		return ErrAlreadyAttacked
	}
	if gs.IsFirstTurn() {
		return ErrFirstTurn
	}
	if p.Active.Status.PreventsAttack() {
		return ErrStatusPrevents
	}
	if index < 0 || index >= len(p.Active.Card.Attacks) {
		return ErrNoAttack
	}
	if gs.Players[gs.Opponent(player)].Active == nil {
		return ErrNoTarget
	}
	return gs.HasEnergyFor(p.Active, &p.Active.Card.Attacks[index])
}

// Attack uses attack index of player's Active Pokémon against the opponent's
// Active Pokémon.
func (d *Duel) Attack(player, index int) error {
	if err := d.CanUseAttack(player, index); err != nil {
		return err
	}
	gs := d.State
	return d.PerformAttack(gs.Players[player].Active, gs.Players[gs.Opponent(player)].Active, index)
}

// PerformAttack resolves an attack whose legality has already been checked.
// Copy and effect choices are collected before anything changes, so
// cancelling them leaves the turn untouched.
func (d *Duel) PerformAttack(attacker, defender *Creature, index int) error {
	gs := d.State
	player := attacker.Owner
	atk := &attacker.Card.Attacks[index]
	h := attackEffects[atk.Effect]

	var copied *Attack
	var plan effectPlan
	if atk.Effect.IsCopy() || h.prepare != nil {
		err := d.runEffect(atk.Name, func() error {
			var err error
			if atk.Effect.IsCopy() {
				copied, err = d.chooseCopiedAttack(player, atk, defender)
			} else {
				plan, err = h.prepare(d, attacker, defender, atk)
			}
			return err
		})
		if err != nil {
			if errors.Is(err, ErrDecisionCancelled) {
				d.log(log.NewCancelledEvent(gs.Turn, d.phase(), player, atk.Name))
			}
			return err
		}
	}

	gs.Players[player].AttackedThisTurn = true
	d.log(log.NewAttackEvent(gs.Turn, player, attacker.Card.Name, atk.Name, defender.Card.Name))

	if attacker.Status == StatusConfusion && !d.flipCoin(player, "confusion") {
		d.applyDamage(attacker, ConfusionSelf, "confusion")
		d.resolveKnockouts()
		return nil
	}

	if atk.Effect.IsCopy() {
		if copied != nil {
			d.applyDamage(defender, d.CalculateDamage(attacker, defender, copied), copied.Name)
			d.resolveKnockouts()
		}
		return nil
	}

	if atk.ClearsStatus && attacker.Status != StatusNone {
		attacker.ClearStatus()
		d.log(log.NewStatusEvent(gs.Turn, d.phase(), player, attacker.Card.Name, StatusNone.String()))
	}

	d.applyDamage(defender, d.CalculateDamage(attacker, defender, atk), atk.Name)
	if atk.Inflicts != StatusNone && !defender.IsKnockedOut() {
		d.inflict(defender, atk.Inflicts)
	}
	if h.after != nil {
		h.after(d, attacker, defender, atk)
	}
	if plan != nil {
		plan()
	}
	d.resolveKnockouts()
	return nil
}

// chooseCopiedAttack picks one of defender's attacks for a copy effect.
// Copy effects on the copied attack itself are not followed.
func (d *Duel) chooseCopiedAttack(player int, atk *Attack, defender *Creature) (*Attack, error) {
	attacks := defender.Card.Attacks
	if len(attacks) == 0 {
		return nil, nil
	}
	if atk.Effect == AttackCopyRandom {
		return &attacks[d.rng.Intn(len(attacks))], nil
	}
	opts := make([]Option, len(attacks))
	for i, a := range attacks {
		opts[i] = Option{Label: fmt.Sprintf("%s (%d)", a.Name, a.Damage), Index: i}
	}
	opt, err := d.requestOne(player, fmt.Sprintf("Choose one of %s's attacks", defender.Card.Name), opts)
	if err != nil {
		return nil, err
	}
	return &attacks[opt.Index], nil
}

// inflict applies a special condition and reports it.
func (d *Duel) inflict(c *Creature, s Status) {
	c.SetStatus(s)
	d.log(log.NewStatusEvent(d.State.Turn, d.phase(), c.Owner, c.Card.Name, s.String()))
}
