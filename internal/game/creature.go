package game

import (
	"fmt"
	"strings"
)

// Creature is a Pokémon card in play bound to its runtime state.
type Creature struct {
	Card  *Card
	ID    int
	Owner int

	Damage         int // always a non-negative multiple of DamageCounter
	TurnsInPlay    int // own turns completed since entering play
	PlayedThisTurn bool

	Energies []*Card
	Tool     *Card
	Stack    []*Card // pre-evolution cards under this one, lowest stage first

	Status         Status
	paralysisTurns int

	// abilityUsed is indexed by position in Card.Abilities.
	abilityUsed uint8
}

func newCreature(gs *GameState, card *Card, owner int) *Creature {
	return &Creature{
		Card:           card,
		ID:             gs.NextID(),
		Owner:          owner,
		PlayedThisTurn: true,
	}
}

func (c *Creature) String() string {
	return c.Card.Name
}

// MaxHP is the card's HP plus tool modifiers.
func (c *Creature) MaxHP() int {
	hp := c.Card.HP
	if c.Tool != nil && c.Tool.Effect == TrainerHPBonus {
		hp += c.Tool.Value
	}
	return hp
}

// RemainingHP returns MaxHP minus damage, floored at 0.
func (c *Creature) RemainingHP() int {
	if r := c.MaxHP() - c.Damage; r > 0 {
		return r
	}
	return 0
}

// IsKnockedOut reports whether damage has reached max HP.
func (c *Creature) IsKnockedOut() bool {
	return c.Damage >= c.MaxHP()
}

// DamageCounters returns the number of damage counters on the creature.
func (c *Creature) DamageCounters() int {
	return c.Damage / DamageCounter
}

func (c *Creature) addDamage(amount int) {
	if amount <= 0 {
		return
	}
	c.Damage += amount
}

// heal removes up to amount damage and returns how much was removed.
func (c *Creature) heal(amount int) int {
	if amount > c.Damage {
		amount = c.Damage
	}
	c.Damage -= amount
	return amount
}

// SetStatus replaces the current special condition.
func (c *Creature) SetStatus(s Status) {
	c.Status = s
	c.paralysisTurns = 0
	if s == StatusParalysis {
		c.paralysisTurns = 1
	}
}

// ClearStatus removes any special condition.
func (c *Creature) ClearStatus() {
	c.SetStatus(StatusNone)
}

// AbilityUsed reports whether the ability at index i was used this turn.
func (c *Creature) AbilityUsed(i int) bool {
	return c.abilityUsed&(1<<uint(i)) != 0
}

func (c *Creature) markAbilityUsed(i int) {
	c.abilityUsed |= 1 << uint(i)
}

func (c *Creature) resetAbilities() {
	c.abilityUsed = 0
}

// AbilityIndex returns the index of ability id on the creature's card, or -1.
func (c *Creature) AbilityIndex(id AbilityID) int {
	for i, a := range c.Card.Abilities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// cards returns the creature's card plus everything attached or stacked under it.
func (c *Creature) cards() []*Card {
	all := make([]*Card, 0, 2+len(c.Stack)+len(c.Energies))
	all = append(all, c.Stack...)
	all = append(all, c.Card)
	all = append(all, c.Energies...)
	if c.Tool != nil {
		all = append(all, c.Tool)
	}
	return all
}

// removeEnergy detaches the energy at index i.
func (c *Creature) removeEnergy(i int) *Card {
	e := c.Energies[i]
	c.Energies = append(c.Energies[:i], c.Energies[i+1:]...)
	return e
}

// DisplayString returns a compact one-line description of the creature.
func (c *Creature) DisplayString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d", c.Card.Name, c.RemainingHP(), c.MaxHP())
	if len(c.Energies) > 0 {
		names := make([]string, len(c.Energies))
		for i, e := range c.Energies {
			names[i] = e.Name
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(names, ", "))
	}
	if c.Tool != nil {
		fmt.Fprintf(&b, " +%s", c.Tool.Name)
	}
	if c.Status != StatusNone {
		fmt.Fprintf(&b, " (%s)", c.Status)
	}
	return b.String()
}
