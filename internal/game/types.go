package game

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Enums ---

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseDraw
	PhaseMain
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseDraw:
		return "Draw"
	case PhaseMain:
		return "Main"
	case PhaseEnd:
		return "End"
	default:
		return "None"
	}
}

type CardKind int

const (
	KindPokemon CardKind = iota
	KindTrainer
	KindEnergy
)

var cardKindKeys = []string{"pokemon", "trainer", "energy"}

func (k CardKind) String() string {
	switch k {
	case KindPokemon:
		return "Pokémon"
	case KindTrainer:
		return "Trainer"
	case KindEnergy:
		return "Energy"
	default:
		return "Unknown"
	}
}

type Stage int

const (
	StageBasic Stage = iota
	Stage1
	Stage2
)

var stageKeys = []string{"basic", "stage1", "stage2"}

func (s Stage) String() string {
	switch s {
	case StageBasic:
		return "Basic"
	case Stage1:
		return "Stage 1"
	case Stage2:
		return "Stage 2"
	default:
		return "Unknown"
	}
}

// EnergyType is both a Pokémon's type and the type an energy card provides.
type EnergyType int

const (
	TypeNone EnergyType = iota
	TypeGrass
	TypeFire
	TypeWater
	TypeLightning
	TypePsychic
	TypeFighting
	TypeDarkness
	TypeMetal
	TypeDragon
	TypeColorless
)

var energyTypeKeys = []string{"none", "grass", "fire", "water", "lightning", "psychic", "fighting", "darkness", "metal", "dragon", "colorless"}

func (t EnergyType) String() string {
	if t <= TypeNone || int(t) >= len(energyTypeKeys) {
		return ""
	}
	k := energyTypeKeys[t]
	return strings.ToUpper(k[:1]) + k[1:]
}

type TrainerType int

const (
	TrainerSupporter TrainerType = iota
	TrainerItem
	TrainerTool
	TrainerStadium
)

var trainerTypeKeys = []string{"supporter", "item", "tool", "stadium"}

func (t TrainerType) String() string {
	switch t {
	case TrainerSupporter:
		return "Supporter"
	case TrainerItem:
		return "Item"
	case TrainerTool:
		return "Pokémon Tool"
	case TrainerStadium:
		return "Stadium"
	default:
		return "Unknown"
	}
}

// Status is the single special condition a creature can carry.
type Status int

const (
	StatusNone Status = iota
	StatusSleep
	StatusParalysis
	StatusConfusion
	StatusPoison
	StatusBurn
)

var statusKeys = []string{"none", "sleep", "paralysis", "confusion", "poison", "burn"}

func (s Status) String() string {
	switch s {
	case StatusSleep:
		return "Asleep"
	case StatusParalysis:
		return "Paralyzed"
	case StatusConfusion:
		return "Confused"
	case StatusPoison:
		return "Poisoned"
	case StatusBurn:
		return "Burned"
	default:
		return "healthy"
	}
}

// PreventsAttack reports whether the condition stops its holder from attacking or retreating.
func (s Status) PreventsAttack() bool {
	return s == StatusSleep || s == StatusParalysis
}

func (k *CardKind) UnmarshalYAML(n *yaml.Node) (err error) {
	*k, err = decodeEnum[CardKind](n, cardKindKeys, "card kind")
	return err
}

func (s *Stage) UnmarshalYAML(n *yaml.Node) (err error) {
	*s, err = decodeEnum[Stage](n, stageKeys, "stage")
	return err
}

func (t *EnergyType) UnmarshalYAML(n *yaml.Node) (err error) {
	*t, err = decodeEnum[EnergyType](n, energyTypeKeys, "energy type")
	return err
}

func (t *TrainerType) UnmarshalYAML(n *yaml.Node) (err error) {
	*t, err = decodeEnum[TrainerType](n, trainerTypeKeys, "trainer type")
	return err
}

func (s *Status) UnmarshalYAML(n *yaml.Node) (err error) {
	*s, err = decodeEnum[Status](n, statusKeys, "status")
	return err
}

// decodeEnum maps a scalar YAML value onto the index of its key.
func decodeEnum[T ~int](n *yaml.Node, keys []string, what string) (T, error) {
	var s string
	if err := n.Decode(&s); err != nil {
		return 0, err
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for i, k := range keys {
		if k == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q", n.Line, what, s)
}

// --- Card definition (immutable, shared by every copy in every zone) ---

type Attack struct {
	Name         string       `yaml:"name"`
	Cost         int          `yaml:"cost"`       // total energy required
	TypedCost    []EnergyType `yaml:"typed_cost"` // specific types that must be part of Cost
	Damage       int          `yaml:"damage"`
	Effect       AttackEffect `yaml:"effect"`
	ClearsStatus bool         `yaml:"clears_status"`
	Inflicts     Status       `yaml:"inflicts"`
	Value        int          `yaml:"value"` // snipe damage, HP healed or cards drawn
}

type Ability struct {
	ID          AbilityID `yaml:"id"`
	Name        string    `yaml:"name"`
	OncePerTurn bool      `yaml:"once_per_turn"`
}

type Card struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Kind        CardKind `yaml:"kind"`
	Description string   `yaml:"description"`

	// Pokémon
	Stage              Stage      `yaml:"stage"`
	EvolvesFrom        string     `yaml:"evolves_from"`
	Type               EnergyType `yaml:"type"`
	HP                 int        `yaml:"hp"`
	RetreatCost        int        `yaml:"retreat_cost"`
	IsEX               bool       `yaml:"ex"`
	Weakness           EnergyType `yaml:"weakness"`
	WeaknessMultiplier int        `yaml:"weakness_multiplier"` // 0 means the default ×2
	Resistance         EnergyType `yaml:"resistance"`
	ResistanceValue    int        `yaml:"resistance_value"`
	Attacks            []Attack   `yaml:"attacks"`
	Abilities          []Ability  `yaml:"abilities"`

	// Trainer
	TrainerType TrainerType   `yaml:"trainer_type"`
	Effect      TrainerEffect `yaml:"effect"`
	Value       int           `yaml:"value"` // effect magnitude (tool HP, stadium reduction)

	// Energy
	IsBasic      bool         `yaml:"basic"`
	Provides     EnergyType   `yaml:"provides"`
	IsSpecial    bool         `yaml:"special"`
	EnergyEffect EnergyEffect `yaml:"energy_effect"`
}

func (c *Card) String() string {
	return c.Name
}

func (c *Card) IsPokemon() bool { return c.Kind == KindPokemon }

func (c *Card) IsBasicPokemon() bool { return c.Kind == KindPokemon && c.Stage == StageBasic }

func (c *Card) IsEnergy() bool { return c.Kind == KindEnergy }

func (c *Card) IsBasicEnergy() bool { return c.Kind == KindEnergy && c.IsBasic }

func (c *Card) IsTrainer(t TrainerType) bool {
	return c.Kind == KindTrainer && c.TrainerType == t
}

// PrizeValue is the number of prizes the opponent takes when this card is knocked out.
func (c *Card) PrizeValue() int {
	if c.IsEX {
		return 2
	}
	return 1
}

// WeaknessFactor returns the weakness multiplier, defaulting to ×2.
func (c *Card) WeaknessFactor() int {
	if c.WeaknessMultiplier <= 0 {
		return 2
	}
	return c.WeaknessMultiplier
}

// HasAbility reports whether the card carries the given ability.
func (c *Card) HasAbility(id AbilityID) bool {
	for _, a := range c.Abilities {
		if a.ID == id {
			return true
		}
	}
	return false
}

// --- Action types ---

type ActionType int

const (
	ActionPlayBasic ActionType = iota
	ActionAttachEnergy
	ActionAttachTool
	ActionEvolve
	ActionPlayTrainer
	ActionUseAbility
	ActionRetreat
	ActionAttack
	ActionEndTurn
)

func (a ActionType) String() string {
	switch a {
	case ActionPlayBasic:
		return "Play Basic"
	case ActionAttachEnergy:
		return "Attach Energy"
	case ActionAttachTool:
		return "Attach Tool"
	case ActionEvolve:
		return "Evolve"
	case ActionPlayTrainer:
		return "Play Trainer"
	case ActionUseAbility:
		return "Use Ability"
	case ActionRetreat:
		return "Retreat"
	case ActionAttack:
		return "Attack"
	case ActionEndTurn:
		return "End Turn"
	default:
		return "Unknown"
	}
}

// Action represents a player action with all necessary details.
type Action struct {
	Type   ActionType
	Player int
	Card   *Card     // card from hand being played/attached
	Target *Creature // creature the action applies to
	Index  int       // attack index, ability index or bench index
	Desc   string    // human-readable description
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}
