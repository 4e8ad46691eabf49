package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// Win reasons recorded in GameState.WinReason.
const (
	ReasonPrizeZero     = "prize-zero"
	ReasonNoCreatures   = "no creatures in play"
	ReasonDeckOut       = "deck out"
	ReasonMulliganLimit = "mulligan limit"
	ReasonTurnLimit     = "turn limit"
)

// StartGame shuffles both decks, deals opening hands, resolves mulligans,
// places each player's starting Active Pokémon, sets prizes, picks the first
// player and starts turn 1.
func (d *Duel) StartGame(deck0, deck1 []*Card) error {
	gs := d.State
	gs.Phase = PhaseSetup
	d.log(log.NewPhaseChangeEvent(gs.Turn, d.phase()))

	decks := [2][]*Card{deck0, deck1}
	need := HandSize + d.cfg.PrizeCount
	for p := 0; p < 2; p++ {
		if len(decks[p]) < need {
			return fmt.Errorf("player %d deck has %d cards, need at least %d", p, len(decks[p]), need)
		}
		gs.Players[p].Deck = append([]*Card(nil), decks[p]...)
		d.shuffleDeck(p)
		d.drawInto(p, HandSize)
	}

	for p := 0; p < 2; p++ {
		if err := d.resolveMulligans(p); err != nil {
			return err
		}
	}

	// Each mulligan grants the opponent up to one bonus draw. The prize cards
	// always stay in the deck.
	for p := 0; p < 2; p++ {
		bonus := min(gs.Players[gs.Opponent(p)].MulligansGiven, len(gs.Players[p].Deck)-d.cfg.PrizeCount)
		if bonus > 0 {
			drawn := d.drawInto(p, bonus)
			d.log(log.NewSetupEvent(p, fmt.Sprintf("P%d draws %d bonus card(s)", p+1, drawn)))
		}
	}

	for p := 0; p < 2; p++ {
		d.placeStartingActive(p)
	}

	for p := 0; p < 2; p++ {
		pl := gs.Players[p]
		for i := 0; i < d.cfg.PrizeCount; i++ {
			card := pl.Deck[len(pl.Deck)-1]
			pl.Deck = pl.Deck[:len(pl.Deck)-1]
			pl.Prizes = append(pl.Prizes, card)
		}
		d.log(log.NewSetupEvent(p, fmt.Sprintf("P%d sets aside %d prize cards", p+1, len(pl.Prizes))))
	}

	switch d.cfg.FirstPlayer {
	case 1:
		gs.FirstPlayer = 0
	case 2:
		gs.FirstPlayer = 1
	default:
		gs.FirstPlayer = d.rng.Intn(2)
	}
	gs.TurnPlayer = gs.FirstPlayer
	gs.Turn = 1
	d.log(log.NewSetupEvent(gs.FirstPlayer, fmt.Sprintf("P%d goes first", gs.FirstPlayer+1)))

	d.StartTurn()
	return nil
}

// resolveMulligans redraws player's hand until it holds a Basic Pokémon.
func (d *Duel) resolveMulligans(player int) error {
	p := d.State.Players[player]
	for !p.HasBasicInHand() {
		if p.MulligansGiven >= d.cfg.MulliganLimit {
			d.SetWinner(-1, ReasonMulliganLimit)
			return fmt.Errorf("player %d: %w", player, ErrMulliganLimit)
		}
		// The hand goes under the deck so an unshuffled deck still advances.
		p.Deck = append(append([]*Card(nil), p.Hand...), p.Deck...)
		p.Hand = nil
		p.MulligansGiven++
		d.log(log.NewMulliganEvent(player, p.MulligansGiven))
		d.shuffleDeck(player)
		d.drawInto(player, HandSize)
	}
	return nil
}

// placeStartingActive moves one Basic from hand into the active slot,
// preferring the configured priority list.
func (d *Duel) placeStartingActive(player int) {
	gs := d.State
	p := gs.Players[player]
	var pick *Card
	for _, id := range d.cfg.ActivePriority {
		for _, c := range p.Hand {
			if c.IsBasicPokemon() && c.ID == id {
				pick = c
				break
			}
		}
		if pick != nil {
			break
		}
	}
	if pick == nil {
		for _, c := range p.Hand {
			if c.IsBasicPokemon() {
				pick = c
				break
			}
		}
	}
	p.RemoveFromHand(pick)
	cr := newCreature(gs, pick, player)
	cr.PlayedThisTurn = false
	p.Active = cr
	d.log(log.NewPlayBasicEvent(gs.Turn, d.phase(), player, pick.Name, "Active"))
}

// StartTurn resets the turn player's per-turn flags, draws (except on the
// first player's first turn) and opens the main phase.
func (d *Duel) StartTurn() {
	gs := d.State
	p := gs.CurrentPlayer()
	p.resetTurnFlags()
	for _, c := range p.InPlay() {
		c.resetAbilities()
		c.PlayedThisTurn = false
	}

	gs.Phase = PhaseDraw
	d.log(log.NewTurnEvent(gs.Turn, gs.TurnPlayer))
	if !gs.IsFirstTurn() {
		d.Draw(gs.TurnPlayer, 1)
		if gs.Over {
			return
		}
	}

	gs.Phase = PhaseMain
	d.log(log.NewPhaseChangeEvent(gs.Turn, d.phase()))
}

// EndTurn applies between-turn special conditions to the ending player's
// Active Pokémon, processes knockouts and passes the turn.
func (d *Duel) EndTurn() error {
	if err := d.checkIdle(); err != nil {
		return err
	}
	gs := d.State
	if gs.Over {
		return ErrGameOver
	}
	tp := gs.TurnPlayer
	gs.Phase = PhaseEnd
	d.log(log.NewPhaseChangeEvent(gs.Turn, d.phase()))

	p := gs.Players[tp]
	for _, c := range p.InPlay() {
		c.TurnsInPlay++
		c.PlayedThisTurn = false
	}
	if p.Active != nil {
		d.applyBetweenTurns(p.Active)
	}
	d.resolveKnockouts()
	if gs.Over {
		return nil
	}

	gs.TurnPlayer = gs.Opponent(tp)
	if gs.TurnPlayer == gs.FirstPlayer {
		gs.Turn++
	}
	if gs.Turn > d.cfg.MaxTurns {
		d.SetWinner(-1, ReasonTurnLimit)
		return nil
	}
	d.StartTurn()
	return nil
}

// applyBetweenTurns resolves poison, burn, sleep and paralysis in that order.
func (d *Duel) applyBetweenTurns(c *Creature) {
	gs := d.State
	switch c.Status {
	case StatusPoison:
		d.applyDamage(c, PoisonDamage, "poison")
	case StatusBurn:
		if d.flipCoin(c.Owner, "burn") {
			d.applyDamage(c, BurnDamage, "burn")
		}
	case StatusSleep:
		if d.flipCoin(c.Owner, "sleep") {
			c.ClearStatus()
			d.log(log.NewStatusEvent(gs.Turn, d.phase(), c.Owner, c.Card.Name, "awake"))
		}
	case StatusParalysis:
		c.paralysisTurns--
		if c.paralysisTurns <= 0 {
			c.ClearStatus()
			d.log(log.NewStatusEvent(gs.Turn, d.phase(), c.Owner, c.Card.Name, StatusNone.String()))
		}
	}
}

// Draw draws n cards for player, one at a time. The first draw from an empty
// deck ends the game in the opponent's favour; cards already drawn stay in
// hand. Returns the number drawn.
func (d *Duel) Draw(player, n int) int {
	gs := d.State
	p := gs.Players[player]
	drawn := 0
	for ; drawn < n && !gs.Over; drawn++ {
		if len(p.Deck) == 0 {
			d.SetWinner(gs.Opponent(player), ReasonDeckOut)
			break
		}
		d.drawInto(player, 1)
	}
	return drawn
}

// drawInto draws up to n cards without deck-out checks.
func (d *Duel) drawInto(player, n int) int {
	gs := d.State
	p := gs.Players[player]
	drawn := 0
	for ; drawn < n; drawn++ {
		card := p.drawCard()
		if card == nil {
			break
		}
		d.log(log.NewDrawEvent(gs.Turn, d.phase(), player, card.Name))
	}
	return drawn
}

// applyDamage places damage on c without resolving knockouts.
func (d *Duel) applyDamage(c *Creature, amount int, reason string) {
	if amount <= 0 {
		return
	}
	c.addDamage(amount)
	d.log(log.NewDamageEvent(d.State.Turn, d.phase(), c.Owner, c.Card.Name, amount, c.RemainingHP(), reason))
}

// resolveKnockouts removes every knocked-out creature, the non-turn
// player's first.
func (d *Duel) resolveKnockouts() {
	gs := d.State
	for _, owner := range []int{gs.Opponent(gs.TurnPlayer), gs.TurnPlayer} {
		for _, c := range gs.Players[owner].InPlay() {
			if gs.Over {
				return
			}
			if c.IsKnockedOut() {
				d.KnockoutCreature(owner, c)
			}
		}
	}
}

// KnockoutCreature discards c with everything attached, awards prizes to the
// opponent and checks the win conditions in order: prize-zero, then an
// empty board. A knocked-out Active Pokémon is replaced from the bench.
func (d *Duel) KnockoutCreature(owner int, c *Creature) {
	gs := d.State
	p := gs.Players[owner]
	if gs.Over || !p.Owns(c) {
		return
	}

	wasActive := p.removeCreature(c)
	p.Discard = append(p.Discard, c.cards()...)
	d.log(log.NewKnockoutEvent(gs.Turn, d.phase(), owner, c.Card.Name))

	taker := gs.Opponent(owner)
	tp := gs.Players[taker]
	n := c.Card.PrizeValue()
	if n > len(tp.Prizes) {
		n = len(tp.Prizes)
	}
	for i := 0; i < n; i++ {
		prize := tp.Prizes[len(tp.Prizes)-1]
		tp.Prizes = tp.Prizes[:len(tp.Prizes)-1]
		tp.Hand = append(tp.Hand, prize)
	}
	if n > 0 {
		d.log(log.NewPrizeEvent(gs.Turn, d.phase(), taker, n, len(tp.Prizes)))
	}

	if len(tp.Prizes) == 0 {
		d.SetWinner(taker, ReasonPrizeZero)
		return
	}
	if wasActive && len(p.Bench) == 0 {
		d.SetWinner(taker, ReasonNoCreatures)
		return
	}
	if wasActive {
		d.promote(owner)
	}
}

// promote forces owner to fill the empty active slot from the bench.
func (d *Duel) promote(owner int) {
	p := d.State.Players[owner]
	idx := 0
	if len(p.Bench) > 1 {
		opt, err := d.requestOne(owner, "Choose your new Active Pokémon", creatureOptions(p.Bench))
		if err != nil {
			d.zap.Warn("promotion decision failed, promoting first benched Pokémon",
				zap.Int("player", owner), zap.Error(err))
		} else {
			idx = opt.Index
		}
	}
	d.promoteBench(owner, idx)
}

func (d *Duel) promoteBench(player, benchIndex int) {
	p := d.State.Players[player]
	c := p.Bench[benchIndex]
	p.Bench = append(p.Bench[:benchIndex], p.Bench[benchIndex+1:]...)
	p.Active = c
	d.log(log.NewPromoteEvent(d.State.Turn, d.phase(), player, c.Card.Name))
}

// PromoteToActive moves a benched creature into an empty active slot.
func (d *Duel) PromoteToActive(player, benchIndex int) error {
	if err := d.checkIdle(); err != nil {
		return err
	}
	gs := d.State
	if gs.Over {
		return ErrGameOver
	}
	p := gs.Players[player]
	if p.Active != nil {
		return ErrActiveOccupied
	}
	if len(p.Bench) == 0 {
		return ErrBenchEmpty
	}
	if benchIndex < 0 || benchIndex >= len(p.Bench) {
		return ErrNoTarget
	}
	d.promoteBench(player, benchIndex)
	return nil
}

// SetWinner ends the game. A negative winner records a draw.
func (d *Duel) SetWinner(winner int, reason string) {
	gs := d.State
	if gs.Over {
		return
	}
	gs.finish(winner, reason)
	if winner < 0 {
		d.log(log.NewTieEvent(gs.Turn, d.phase(), reason))
	} else {
		d.log(log.NewWinEvent(gs.Turn, d.phase(), winner, reason))
	}
	d.zap.Info("game over", zap.Int("winner", winner), zap.String("reason", reason), zap.Int("turn", gs.Turn))
}
