package game

import "gopkg.in/yaml.v3"

// Effect identifiers are closed enums. Each family has its own dispatch table
// (attackEffects, abilityHandlers, trainerHandlers) so adding an id only
// touches its own entry.

// AttackEffect selects the damage override / side effect of an attack.
type AttackEffect int

const (
	AttackPlain AttackEffect = iota
	AttackCopyRandom
	AttackCopyChosen
	AttackDamageCounterScaling
	AttackBenchScaling
	AttackDiscardEnergy
	AttackFlipParalyze
	AttackBenchSnipe
	AttackSelfHeal
	AttackDrawCards
)

var attackEffectKeys = []string{
	"none", "copy_random", "copy_chosen", "damage_counter_scaling", "bench_scaling",
	"discard_energy", "flip_paralyze", "bench_snipe", "self_heal", "draw_cards",
}

func (e AttackEffect) String() string { return keyOf(attackEffectKeys, int(e)) }

// NeedsValue reports whether the effect reads the attack's Value.
func (e AttackEffect) NeedsValue() bool {
	return e == AttackBenchSnipe || e == AttackSelfHeal || e == AttackDrawCards
}

// IsCopy reports whether the attack resolves one of the defender's attacks instead.
func (e AttackEffect) IsCopy() bool {
	return e == AttackCopyRandom || e == AttackCopyChosen
}

// AbilityID names an ability's resolution routine.
type AbilityID int

const (
	AbilityNone AbilityID = iota
	AbilityRefillHand
	AbilityItemSearch
	AbilityTrashDraw
	AbilityPsychicEmbrace
	AbilityAdrenaBrain
	AbilityFairyZone
)

var abilityKeys = []string{"none", "refill_hand", "item_search", "trash_draw", "psychic_embrace", "adrena_brain", "fairy_zone"}

func (a AbilityID) String() string { return keyOf(abilityKeys, int(a)) }

// TrainerEffect names a trainer card's resolution routine.
type TrainerEffect int

const (
	TrainerNoEffect TrainerEffect = iota
	TrainerProfessorsResearch
	TrainerHandReset
	TrainerArven
	TrainerBossOrders
	TrainerNestBall
	TrainerUltraBall
	TrainerRareCandy
	TrainerSwitch
	TrainerPotion
	TrainerNightStretcher
	TrainerCounterCatcher
	TrainerHPBonus
	TrainerBasicRetreatReduction
)

var trainerEffectKeys = []string{
	"no_effect", "professors_research", "hand_reset", "arven", "boss_orders",
	"nest_ball", "ultra_ball", "rare_candy", "switch", "potion",
	"night_stretcher", "counter_catcher", "hp_bonus", "basic_retreat_reduction",
}

func (e TrainerEffect) String() string { return keyOf(trainerEffectKeys, int(e)) }

// EnergyEffect is the counting rule of a special energy.
type EnergyEffect int

const (
	EnergyPlain EnergyEffect = iota
	EnergyDoubleWhenBehind
)

var energyEffectKeys = []string{"none", "double_when_behind"}

func (e EnergyEffect) String() string { return keyOf(energyEffectKeys, int(e)) }

func (e *AttackEffect) UnmarshalYAML(n *yaml.Node) (err error) {
	*e, err = decodeEnum[AttackEffect](n, attackEffectKeys, "attack effect")
	return err
}

func (a *AbilityID) UnmarshalYAML(n *yaml.Node) (err error) {
	*a, err = decodeEnum[AbilityID](n, abilityKeys, "ability")
	return err
}

func (e *TrainerEffect) UnmarshalYAML(n *yaml.Node) (err error) {
	*e, err = decodeEnum[TrainerEffect](n, trainerEffectKeys, "trainer effect")
	return err
}

func (e *EnergyEffect) UnmarshalYAML(n *yaml.Node) (err error) {
	*e, err = decodeEnum[EnergyEffect](n, energyEffectKeys, "energy effect")
	return err
}

func keyOf(keys []string, i int) string {
	if i < 0 || i >= len(keys) {
		return "unknown"
	}
	return keys[i]
}
