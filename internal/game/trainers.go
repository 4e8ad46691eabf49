package game

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// trainerHandler validates and resolves one trainer effect. The played card
// is still in hand while prepare runs, so hand-based options must skip it.
type trainerHandler struct {
	check   func(d *Duel, player int, card *Card) error
	prepare func(d *Duel, player int, card *Card) (effectPlan, error)
}

var trainerHandlers = map[TrainerEffect]trainerHandler{
	TrainerProfessorsResearch: {prepare: prepareProfessorsResearch},
	TrainerHandReset:          {prepare: prepareHandReset},
	TrainerArven:              {check: checkDeckSearch, prepare: prepareArven},
	TrainerBossOrders:         {check: checkGust, prepare: prepareGust},
	TrainerNestBall:           {check: checkNestBall, prepare: prepareNestBall},
	TrainerUltraBall:          {check: checkUltraBall, prepare: prepareUltraBall},
	TrainerRareCandy:          {check: checkRareCandy, prepare: prepareRareCandy},
	TrainerSwitch:             {check: checkSwitch, prepare: prepareSwitch},
	TrainerPotion:             {check: checkPotion, prepare: preparePotion},
	TrainerNightStretcher:     {check: checkNightStretcher, prepare: prepareNightStretcher},
	TrainerCounterCatcher:     {check: checkCounterCatcher, prepare: prepareGust},
}

const (
	researchDraw     = 7
	potionHeal       = 30
	ultraBallDiscard = 2
)

// CanPlayTrainer reports whether card can be played from hand now. Tools are
// attached with AttachTool instead.
func (d *Duel) CanPlayTrainer(player int, card *Card) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if card == nil || card.Kind != KindTrainer || card.TrainerType == TrainerTool {
		return ErrNotTrainer
	}
	if p.HandIndex(card) < 0 {
		return ErrNotInHand
	}
	switch card.TrainerType {
	case TrainerSupporter:
		if p.SupporterUsedThisTurn {
			return ErrSupporterUsed
		}
		if gs.IsFirstTurn() {
			return ErrFirstTurn
		}
	case TrainerStadium:
		if gs.Stadium != nil && gs.Stadium.Card.Name == card.Name {
			return ErrStadiumInPlay
		}
		return nil
	}
	h, ok := trainerHandlers[card.Effect]
	if !ok {
		return ErrNotTrainer
	}
	if h.check != nil {
		return h.check(d, player, card)
	}
	return nil
}

// PlayTrainer plays a Supporter, Item or Stadium from hand. Supporters and
// Items go to the discard pile once resolved.
func (d *Duel) PlayTrainer(player int, card *Card) error {
	if err := d.CanPlayTrainer(player, card); err != nil {
		return err
	}
	if card.TrainerType == TrainerStadium {
		d.playStadium(player, card)
		return nil
	}

	gs := d.State
	p := gs.Players[player]
	h := trainerHandlers[card.Effect]
	return d.runEffect(card.Name, func() error {
		plan, err := h.prepare(d, player, card)
		if err != nil {
			if errors.Is(err, ErrDecisionCancelled) {
				d.log(log.NewCancelledEvent(gs.Turn, d.phase(), player, card.Name))
			}
			return err
		}
		p.RemoveFromHand(card)
		if card.TrainerType == TrainerSupporter {
			p.SupporterUsedThisTurn = true
		}
		d.log(log.NewTrainerEvent(gs.Turn, d.phase(), player, card.Name))
		plan()
		p.Discard = append(p.Discard, card)
		d.resolveKnockouts()
		return nil
	})
}

// playStadium puts card into play, discarding any stadium it replaces to
// that stadium's owner.
func (d *Duel) playStadium(player int, card *Card) {
	gs := d.State
	gs.Players[player].RemoveFromHand(card)
	replaced := ""
	if old := gs.Stadium; old != nil {
		owner := gs.Players[old.Owner]
		owner.Discard = append(owner.Discard, old.Card)
		replaced = old.Card.Name
	}
	gs.Stadium = &StadiumInPlay{Card: card, Owner: player}
	d.log(log.NewStadiumEvent(gs.Turn, d.phase(), player, card.Name, replaced))
}

// AttachTool attaches a Pokémon Tool from hand. A Pokémon holds one tool.
func (d *Duel) AttachTool(player int, tool *Card, target *Creature) error {
	if err := d.checkTurn(player); err != nil {
		return err
	}
	gs := d.State
	p := gs.Players[player]
	if tool == nil || !tool.IsTrainer(TrainerTool) {
		return ErrNotTool
	}
	if target == nil {
		return ErrNoTarget
	}
	if !p.Owns(target) {
		return ErrNotInPlay
	}
	if target.Tool != nil {
		return ErrToolAttached
	}
	if !p.RemoveFromHand(tool) {
		return ErrNotInHand
	}
	target.Tool = tool
	d.log(log.NewAttachToolEvent(gs.Turn, d.phase(), player, tool.Name, target.Card.Name))
	return nil
}

// --- Supporters ---

func prepareProfessorsResearch(d *Duel, player int, card *Card) (effectPlan, error) {
	if rest := len(d.State.Players[player].Hand) - 1; rest > 0 {
		ok, err := d.requestConfirmation(player, card.Name, fmt.Sprintf("Discard %d card(s) and draw %d?", rest, researchDraw))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDecisionCancelled
		}
	}
	return func() {
		p := d.State.Players[player]
		for len(p.Hand) > 0 {
			d.discardFromHand(player, p.Hand[0], card.Name)
		}
		d.Draw(player, researchDraw)
	}, nil
}

func prepareHandReset(d *Duel, player int, card *Card) (effectPlan, error) {
	return func() {
		gs := d.State
		for _, i := range []int{player, gs.Opponent(player)} {
			p := gs.Players[i]
			p.Deck = append(p.Deck, p.Hand...)
			p.Hand = nil
			d.shuffleDeck(i)
		}
		for _, i := range []int{player, gs.Opponent(player)} {
			d.Draw(i, gs.Players[i].PrizesRemaining())
		}
	}, nil
}

func checkDeckSearch(d *Duel, player int, card *Card) error {
	return checkDeckNotEmpty(d, player, nil)
}

func prepareArven(d *Duel, player int, card *Card) (effectPlan, error) {
	p := d.State.Players[player]
	items, err := d.requestSelection(player, "Choose up to 1 Item card",
		deckOptions(p, 0, func(c *Card) bool { return c.IsTrainer(TrainerItem) }), 0, 1)
	if err != nil {
		d.shuffleDeck(player)
		return nil, err
	}
	tools, err := d.requestSelection(player, "Choose up to 1 Pokémon Tool card",
		deckOptions(p, 0, func(c *Card) bool { return c.IsTrainer(TrainerTool) }), 0, 1)
	if err != nil {
		d.shuffleDeck(player)
		return nil, err
	}
	return func() {
		d.takeFromDeck(player, append(items, tools...), card.Name)
		d.shuffleDeck(player)
	}, nil
}

// checkGust requires a benched opponent to drag into the active slot.
func checkGust(d *Duel, player int, card *Card) error {
	gs := d.State
	if len(gs.Players[gs.Opponent(player)].Bench) == 0 {
		return ErrNoTarget
	}
	return nil
}

func prepareGust(d *Duel, player int, card *Card) (effectPlan, error) {
	gs := d.State
	opp := gs.Opponent(player)
	opt, err := d.requestOne(player, "Choose one of your opponent's Benched Pokémon", creatureOptions(gs.Players[opp].Bench))
	if err != nil {
		return nil, err
	}
	return func() {
		d.switchActive(opp, opt.Creature)
	}, nil
}

// --- Items ---

func checkNestBall(d *Duel, player int, card *Card) error {
	p := d.State.Players[player]
	if p.BenchFull() {
		return ErrBenchFull
	}
	return checkDeckNotEmpty(d, player, nil)
}

func prepareNestBall(d *Duel, player int, card *Card) (effectPlan, error) {
	p := d.State.Players[player]
	chosen, err := d.requestSelection(player, "Choose a Basic Pokémon to put onto your Bench",
		deckOptions(p, 0, (*Card).IsBasicPokemon), 0, 1)
	if err != nil {
		d.shuffleDeck(player)
		return nil, err
	}
	return func() {
		for _, o := range chosen {
			basic := p.removeFromDeck(o.Index)
			d.putIntoPlay(player, basic)
		}
		d.shuffleDeck(player)
	}, nil
}

func checkUltraBall(d *Duel, player int, card *Card) error {
	p := d.State.Players[player]
	if len(handWithout(p.Hand, card)) < ultraBallDiscard {
		return ErrConditionNotMet
	}
	return nil
}

func prepareUltraBall(d *Duel, player int, card *Card) (effectPlan, error) {
	p := d.State.Players[player]
	discards, err := d.requestSelection(player, "Choose 2 cards to discard",
		cardOptions(handWithout(p.Hand, card)), ultraBallDiscard, ultraBallDiscard)
	if err != nil {
		return nil, err
	}
	found, err := d.requestSelection(player, "Choose a Pokémon to put into your hand",
		deckOptions(p, 0, (*Card).IsPokemon), 0, 1)
	if err != nil {
		d.shuffleDeck(player)
		return nil, err
	}
	return func() {
		for _, o := range discards {
			d.discardFromHand(player, o.Card, card.Name)
		}
		d.takeFromDeck(player, found, card.Name)
		d.shuffleDeck(player)
	}, nil
}

// candyPairs lists, for each Basic in play, the Stage 2 cards in hand it can
// fast-track into.
func (d *Duel) candyPairs(player int) map[*Creature][]*Card {
	p := d.State.Players[player]
	pairs := make(map[*Creature][]*Card)
	for _, c := range p.InPlay() {
		for _, h := range p.Hand {
			if d.canFastTrack(c, h) == nil {
				pairs[c] = append(pairs[c], h)
			}
		}
	}
	return pairs
}

func checkRareCandy(d *Duel, player int, card *Card) error {
	if len(d.candyPairs(player)) == 0 {
		return ErrCannotEvolve
	}
	return nil
}

func prepareRareCandy(d *Duel, player int, card *Card) (effectPlan, error) {
	pairs := d.candyPairs(player)
	var targets []*Creature
	for _, c := range d.State.Players[player].InPlay() {
		if len(pairs[c]) > 0 {
			targets = append(targets, c)
		}
	}
	target, err := d.requestOne(player, "Choose a Basic Pokémon to evolve", creatureOptions(targets))
	if err != nil {
		return nil, err
	}
	evo, err := d.requestOne(player, "Choose a Stage 2 card", cardOptions(pairs[target.Creature]))
	if err != nil {
		return nil, err
	}
	return func() {
		d.State.Players[player].RemoveFromHand(evo.Card)
		d.evolve(player, target.Creature, evo.Card)
	}, nil
}

func checkSwitch(d *Duel, player int, card *Card) error {
	p := d.State.Players[player]
	if p.Active == nil {
		return ErrNoActive
	}
	if len(p.Bench) == 0 {
		return ErrBenchEmpty
	}
	return nil
}

func prepareSwitch(d *Duel, player int, card *Card) (effectPlan, error) {
	p := d.State.Players[player]
	opt, err := d.requestOne(player, "Choose a Benched Pokémon to switch in", creatureOptions(p.Bench))
	if err != nil {
		return nil, err
	}
	return func() {
		d.switchActive(player, opt.Creature)
	}, nil
}

func checkPotion(d *Duel, player int, card *Card) error {
	if len(damagedCreatures(d.State.Players[player])) == 0 {
		return ErrNoTarget
	}
	return nil
}

func preparePotion(d *Duel, player int, card *Card) (effectPlan, error) {
	opt, err := d.requestOne(player, "Choose a Pokémon to heal", creatureOptions(damagedCreatures(d.State.Players[player])))
	if err != nil {
		return nil, err
	}
	return func() {
		healed := opt.Creature.heal(potionHeal)
		d.log(log.NewHealEvent(d.State.Turn, d.phase(), player, opt.Creature.Card.Name, healed))
	}, nil
}

func isRecoverable(c *Card) bool {
	return c.IsPokemon() || c.IsBasicEnergy()
}

func checkNightStretcher(d *Duel, player int, card *Card) error {
	if findCard(d.State.Players[player].Discard, isRecoverable) == nil {
		return ErrConditionNotMet
	}
	return nil
}

func prepareNightStretcher(d *Duel, player int, card *Card) (effectPlan, error) {
	p := d.State.Players[player]
	var cards []*Card
	for _, c := range p.Discard {
		if isRecoverable(c) {
			cards = append(cards, c)
		}
	}
	opt, err := d.requestOne(player, "Choose a Pokémon or basic Energy to put into your hand", cardOptions(cards))
	if err != nil {
		return nil, err
	}
	return func() {
		p.removeFromDiscard(opt.Card)
		p.Hand = append(p.Hand, opt.Card)
		d.log(log.NewAddToHandEvent(d.State.Turn, d.phase(), player, opt.Card.Name, card.Name))
	}, nil
}

func checkCounterCatcher(d *Duel, player int, card *Card) error {
	if !d.State.IsBehind(player) {
		return ErrConditionNotMet
	}
	return checkGust(d, player, card)
}

// --- shared helpers ---

// switchActive brings the benched creature in to player's active slot.
func (d *Duel) switchActive(player int, in *Creature) {
	p := d.State.Players[player]
	i := p.BenchIndex(in)
	if i < 0 {
		return
	}
	out, _ := p.swapActive(i)
	outName := ""
	if out != nil {
		outName = out.Card.Name
	}
	d.log(log.NewSwitchEvent(d.State.Turn, d.phase(), player, outName, in.Card.Name))
}

// putIntoPlay creates a creature from a Basic card and places it.
func (d *Duel) putIntoPlay(player int, card *Card) *Creature {
	gs := d.State
	p := gs.Players[player]
	slot := "Bench"
	if p.Active == nil {
		slot = "Active"
	}
	c := newCreature(gs, card, player)
	p.place(c)
	d.log(log.NewPlayBasicEvent(gs.Turn, d.phase(), player, card.Name, slot))
	return c
}

// handWithout returns the hand minus one copy of card.
func handWithout(hand []*Card, card *Card) []*Card {
	out := make([]*Card, 0, len(hand))
	skipped := false
	for _, c := range hand {
		if c == card && !skipped {
			skipped = true
			continue
		}
		out = append(out, c)
	}
	return out
}
