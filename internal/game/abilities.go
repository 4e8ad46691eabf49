package game

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// effectPlan commits an effect once all of its decisions have resolved.
type effectPlan func()

// abilityHandler validates and resolves one ability id. prepare gathers every
// decision the ability needs and must not mutate state except to roll back a
// search (reshuffle) on cancellation.
type abilityHandler struct {
	passive bool
	check   func(d *Duel, player int, src *Creature) error
	prepare func(d *Duel, player int, src *Creature) (effectPlan, error)
}

var abilityHandlers = map[AbilityID]abilityHandler{
	AbilityRefillHand:     {check: checkRefillHand, prepare: prepareRefillHand},
	AbilityItemSearch:     {check: checkDeckNotEmpty, prepare: prepareItemSearch},
	AbilityTrashDraw:      {check: checkTrashDraw, prepare: prepareTrashDraw},
	AbilityPsychicEmbrace: {check: checkPsychicEmbrace, prepare: preparePsychicEmbrace},
	AbilityAdrenaBrain:    {check: checkAdrenaBrain, prepare: prepareAdrenaBrain},
	AbilityFairyZone:      {passive: true},
}

const (
	refillHandTarget   = 5
	itemSearchDepth    = 6
	trashDrawCount     = 2
	embraceDamage      = 20
	adrenaBrainCounter = 3
)

// CanUseAbility reports whether the ability at index on src can be used now.
func (d *Duel) CanUseAbility(player int, src *Creature, index int) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	if !d.State.Players[player].Owns(src) {
		return ErrNotInPlay
	}
	if index < 0 || index >= len(src.Card.Abilities) {
		return ErrNoSuchAbility
	}
	ab := src.Card.Abilities[index]
	h, ok := abilityHandlers[ab.ID]
	if !ok {
		return ErrNoSuchAbility
	}
	if h.passive {
		return ErrAbilityPassive
	}
	if ab.OncePerTurn && src.AbilityUsed(index) {
		return ErrAbilityUsed
	}
	if h.check != nil {
		return h.check(d, player, src)
	}
	return nil
}

// UseAbility activates the ability at index on src.
func (d *Duel) UseAbility(player int, src *Creature, index int) error {
	if err := d.CanUseAbility(player, src, index); err != nil {
		return err
	}
	gs := d.State
	ab := src.Card.Abilities[index]
	h := abilityHandlers[ab.ID]

	return d.runEffect(ab.Name, func() error {
		plan, err := h.prepare(d, player, src)
		if err != nil {
			if errors.Is(err, ErrDecisionCancelled) {
				d.log(log.NewCancelledEvent(gs.Turn, d.phase(), player, ab.Name))
			}
			return err
		}
		src.markAbilityUsed(index)
		d.log(log.NewAbilityEvent(gs.Turn, d.phase(), player, src.Card.Name, ab.Name))
		plan()
		d.resolveKnockouts()
		return nil
	})
}

// --- refill_hand ---

func checkRefillHand(d *Duel, player int, src *Creature) error {
	p := d.State.Players[player]
	if len(p.Hand) >= refillHandTarget || len(p.Deck) == 0 {
		return ErrConditionNotMet
	}
	return nil
}

func prepareRefillHand(d *Duel, player int, src *Creature) (effectPlan, error) {
	return func() {
		d.Draw(player, refillHandTarget-len(d.State.Players[player].Hand))
	}, nil
}

// --- item_search ---

func checkDeckNotEmpty(d *Duel, player int, src *Creature) error {
	if len(d.State.Players[player].Deck) == 0 {
		return ErrConditionNotMet
	}
	return nil
}

func prepareItemSearch(d *Duel, player int, src *Creature) (effectPlan, error) {
	opts := deckOptions(d.State.Players[player], itemSearchDepth, func(c *Card) bool {
		return c.IsTrainer(TrainerItem)
	})
	chosen, err := d.requestSelection(player, "Choose an Item card to put into your hand", opts, 0, 1)
	if err != nil {
		d.shuffleDeck(player)
		return nil, err
	}
	return func() {
		d.takeFromDeck(player, chosen, "item search")
		d.shuffleDeck(player)
	}, nil
}

// --- trash_draw ---

func checkTrashDraw(d *Duel, player int, src *Creature) error {
	p := d.State.Players[player]
	if len(p.Hand) == 0 || len(p.Deck) == 0 {
		return ErrConditionNotMet
	}
	return nil
}

func prepareTrashDraw(d *Duel, player int, src *Creature) (effectPlan, error) {
	p := d.State.Players[player]
	opt, err := d.requestOne(player, "Choose a card to discard", cardOptions(p.Hand))
	if err != nil {
		return nil, err
	}
	return func() {
		d.discardFromHand(player, opt.Card, src.Card.Name)
		d.Draw(player, trashDrawCount)
	}, nil
}

// --- psychic_embrace ---

func isBasicPsychicEnergy(c *Card) bool {
	return c.IsBasicEnergy() && c.Provides == TypePsychic
}

func embraceTargets(d *Duel, player int) []*Creature {
	var targets []*Creature
	for _, c := range d.State.Players[player].InPlay() {
		if c.Card.Type == TypePsychic && c.RemainingHP() > embraceDamage {
			targets = append(targets, c)
		}
	}
	return targets
}

func checkPsychicEmbrace(d *Duel, player int, src *Creature) error {
	if findCard(d.State.Players[player].Discard, isBasicPsychicEnergy) == nil {
		return ErrConditionNotMet
	}
	if len(embraceTargets(d, player)) == 0 {
		return ErrWouldKnockOut
	}
	return nil
}

func preparePsychicEmbrace(d *Duel, player int, src *Creature) (effectPlan, error) {
	p := d.State.Players[player]
	opt, err := d.requestOne(player, "Choose a Psychic Pokémon to attach energy to", creatureOptions(embraceTargets(d, player)))
	if err != nil {
		return nil, err
	}
	return func() {
		energy := findCard(p.Discard, isBasicPsychicEnergy)
		p.removeFromDiscard(energy)
		target := opt.Creature
		target.Energies = append(target.Energies, energy)
		d.log(log.NewAttachEnergyEvent(d.State.Turn, d.phase(), player, energy.Name, target.Card.Name))
		d.applyDamage(target, embraceDamage, src.Card.Name)
	}, nil
}

// --- adrena_brain ---

func damagedCreatures(p *Player) []*Creature {
	var result []*Creature
	for _, c := range p.InPlay() {
		if c.Damage > 0 {
			result = append(result, c)
		}
	}
	return result
}

func checkAdrenaBrain(d *Duel, player int, src *Creature) error {
	gs := d.State
	if gs.CountEnergy(src, TypeDarkness) == 0 {
		return ErrConditionNotMet
	}
	if len(damagedCreatures(gs.Players[player])) == 0 {
		return ErrConditionNotMet
	}
	if len(gs.Players[gs.Opponent(player)].InPlay()) == 0 {
		return ErrNoTarget
	}
	return nil
}

func prepareAdrenaBrain(d *Duel, player int, src *Creature) (effectPlan, error) {
	gs := d.State
	from, err := d.requestOne(player, "Move damage counters from which Pokémon?", creatureOptions(damagedCreatures(gs.Players[player])))
	if err != nil {
		return nil, err
	}
	to, err := d.requestOne(player, "Move them to which of your opponent's Pokémon?", creatureOptions(gs.Players[gs.Opponent(player)].InPlay()))
	if err != nil {
		return nil, err
	}
	most := from.Creature.DamageCounters()
	if most > adrenaBrainCounter {
		most = adrenaBrainCounter
	}
	counts := make([]Option, 0, most)
	for n := most; n >= 1; n-- {
		counts = append(counts, Option{Label: fmt.Sprintf("%d damage counter(s)", n), Index: n})
	}
	count, err := d.requestOne(player, "How many damage counters?", counts)
	if err != nil {
		return nil, err
	}
	return func() {
		moved := from.Creature.heal(count.Index * DamageCounter)
		d.log(log.NewHealEvent(gs.Turn, d.phase(), player, from.Creature.Card.Name, moved))
		d.applyDamage(to.Creature, moved, src.Card.Name)
	}, nil
}

// --- shared zone helpers ---

// deckOptions lists the cards among the top depth of the deck (all of it when
// depth <= 0) that match keep. Option.Index is the deck position.
func deckOptions(p *Player, depth int, keep func(*Card) bool) []Option {
	n := len(p.Deck)
	if depth > 0 && depth < n {
		n = depth
	}
	var opts []Option
	for i := 0; i < n; i++ {
		pos := len(p.Deck) - 1 - i
		c := p.Deck[pos]
		if keep(c) {
			opts = append(opts, Option{Label: c.Name, Card: c, Index: pos})
		}
	}
	return opts
}

// takeFromDeck moves the chosen deck positions into the hand.
func (d *Duel) takeFromDeck(player int, chosen []Option, reason string) {
	p := d.State.Players[player]
	// Highest position first keeps the remaining positions valid.
	for len(chosen) > 0 {
		hi := 0
		for i, o := range chosen {
			if o.Index > chosen[hi].Index {
				hi = i
			}
		}
		card := p.removeFromDeck(chosen[hi].Index)
		p.Hand = append(p.Hand, card)
		d.log(log.NewAddToHandEvent(d.State.Turn, d.phase(), player, card.Name, reason))
		chosen = append(chosen[:hi:hi], chosen[hi+1:]...)
	}
}

// discardFromHand moves one copy of card from the hand to the discard pile.
func (d *Duel) discardFromHand(player int, card *Card, reason string) {
	p := d.State.Players[player]
	if !p.RemoveFromHand(card) {
		return
	}
	p.Discard = append(p.Discard, card)
	d.log(log.NewDiscardEvent(d.State.Turn, d.phase(), player, card.Name, reason))
}

func findCard(cards []*Card, match func(*Card) bool) *Card {
	for _, c := range cards {
		if match(c) {
			return c
		}
	}
	return nil
}
