package game

import (
	"fmt"
	"math/rand"
)

const (
	HandSize       = 7
	PrizeCount     = 6
	BenchSize      = 5
	DamageCounter  = 10
	MulliganLimit  = 10
	ConfusionSelf  = 30
	PoisonDamage   = 10
	BurnDamage     = 20
	defaultMaxTurn = 100
)

// Player represents one player's entire state.
type Player struct {
	Index    int
	Deck     []*Card // top of deck is last element (pop from end)
	Hand     []*Card
	Discard  []*Card
	LostZone []*Card
	Prizes   []*Card // top of the prize stack is last element

	Active *Creature
	Bench  []*Creature

	// Per-turn flags, reset at the start of the owner's turn.
	EnergyAttachedThisTurn bool
	SupporterUsedThisTurn  bool
	AttackedThisTurn       bool
	RetreatedThisTurn      bool

	MulligansGiven int
}

// DeckCount returns the number of cards remaining in the deck.
func (p *Player) DeckCount() int {
	return len(p.Deck)
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// PrizesRemaining returns the number of prize cards not yet taken.
func (p *Player) PrizesRemaining() int {
	return len(p.Prizes)
}

// drawCard removes the top card from the deck and adds it to the hand.
// Returns nil if the deck is empty.
func (p *Player) drawCard() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	p.Hand = append(p.Hand, card)
	return card
}

// HandIndex returns the position of the first copy of card in hand, or -1.
func (p *Player) HandIndex(card *Card) int {
	for i, c := range p.Hand {
		if c == card {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes one copy of card from the hand.
func (p *Player) RemoveFromHand(card *Card) bool {
	i := p.HandIndex(card)
	if i < 0 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return true
}

// removeFromDeck removes the card at deck position i.
func (p *Player) removeFromDeck(i int) *Card {
	card := p.Deck[i]
	p.Deck = append(p.Deck[:i], p.Deck[i+1:]...)
	return card
}

// removeFromDiscard removes one copy of card from the discard pile.
func (p *Player) removeFromDiscard(card *Card) bool {
	for i, c := range p.Discard {
		if c == card {
			p.Discard = append(p.Discard[:i], p.Discard[i+1:]...)
			return true
		}
	}
	return false
}

// HasBasicInHand reports whether the hand holds a Basic Pokémon.
func (p *Player) HasBasicInHand() bool {
	for _, c := range p.Hand {
		if c.IsBasicPokemon() {
			return true
		}
	}
	return false
}

// InPlay returns every creature the player has in play, active first.
func (p *Player) InPlay() []*Creature {
	result := make([]*Creature, 0, 1+len(p.Bench))
	if p.Active != nil {
		result = append(result, p.Active)
	}
	return append(result, p.Bench...)
}

// BenchIndex returns the bench position of c, or -1.
func (p *Player) BenchIndex(c *Creature) int {
	for i, b := range p.Bench {
		if b == c {
			return i
		}
	}
	return -1
}

// Owns reports whether c is one of the player's creatures in play.
func (p *Player) Owns(c *Creature) bool {
	return c != nil && (p.Active == c || p.BenchIndex(c) >= 0)
}

// BenchFull reports whether the bench has no free slot.
func (p *Player) BenchFull() bool {
	return len(p.Bench) >= BenchSize
}

// HasRoom reports whether a new Basic can be put into play.
func (p *Player) HasRoom() bool {
	return p.Active == nil || !p.BenchFull()
}

// place puts a creature into the active slot if empty, else onto the bench.
func (p *Player) place(c *Creature) {
	if p.Active == nil {
		p.Active = c
		return
	}
	p.Bench = append(p.Bench, c)
}

// removeCreature takes c out of play and reports whether it was active.
func (p *Player) removeCreature(c *Creature) (wasActive bool) {
	if p.Active == c {
		p.Active = nil
		return true
	}
	if i := p.BenchIndex(c); i >= 0 {
		p.Bench = append(p.Bench[:i], p.Bench[i+1:]...)
	}
	return false
}

// replaceCreature swaps old for c in whichever slot old occupies.
func (p *Player) replaceCreature(old, c *Creature) {
	if p.Active == old {
		p.Active = c
		return
	}
	if i := p.BenchIndex(old); i >= 0 {
		p.Bench[i] = c
	}
}

// swapActive exchanges the active creature with the benched one at index i.
// The creature leaving the active slot loses its special condition.
func (p *Player) swapActive(i int) (out, in *Creature) {
	out, in = p.Active, p.Bench[i]
	if out != nil {
		out.ClearStatus()
		p.Bench[i] = out
	} else {
		p.Bench = append(p.Bench[:i], p.Bench[i+1:]...)
	}
	p.Active = in
	return out, in
}

// ShuffleDeck randomizes the deck order.
func (p *Player) ShuffleDeck(rng *rand.Rand) {
	rng.Shuffle(len(p.Deck), func(i, j int) {
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	})
}

func (p *Player) resetTurnFlags() {
	p.EnergyAttachedThisTurn = false
	p.SupporterUsedThisTurn = false
	p.AttackedThisTurn = false
	p.RetreatedThisTurn = false
}

// StadiumInPlay is the shared stadium and the player who played it.
type StadiumInPlay struct {
	Card  *Card
	Owner int
}

// --- GameState ---

// GameState holds the complete state of a duel.
type GameState struct {
	Players     [2]*Player
	Turn        int // round counter, advances when control returns to FirstPlayer
	TurnPlayer  int // 0 or 1: whose turn it is
	FirstPlayer int
	Phase       Phase
	Stadium     *StadiumInPlay

	// ID counter for creatures
	nextID int

	// Game result
	Winner    int // 0, 1, or -1 (no winner yet, or a draw once Over)
	WinReason string
	Over      bool
	Result    string
}

// NewGameState creates a fresh duel state.
func NewGameState() *GameState {
	return &GameState{
		Players: [2]*Player{{Index: 0}, {Index: 1}},
		Phase:   PhaseSetup,
		Winner:  -1,
	}
}

// NextID generates a unique creature ID.
func (gs *GameState) NextID() int {
	gs.nextID++
	return gs.nextID
}

// Opponent returns the index of the other player.
func (gs *GameState) Opponent(player int) int {
	return 1 - player
}

// CurrentPlayer returns the Player struct for the turn player.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.Players[gs.TurnPlayer]
}

// OpponentPlayer returns the Player struct for the non-turn player.
func (gs *GameState) OpponentPlayer() *Player {
	return gs.Players[gs.Opponent(gs.TurnPlayer)]
}

// IsFirstTurn reports whether this is the first player's first turn.
func (gs *GameState) IsFirstTurn() bool {
	return gs.Turn == 1 && gs.TurnPlayer == gs.FirstPlayer
}

// OwnerOf returns the index of the player that has c in play, or -1.
func (gs *GameState) OwnerOf(c *Creature) int {
	for i, p := range gs.Players {
		if p.Owns(c) {
			return i
		}
	}
	return -1
}

// IsBehind reports whether player has more prizes left to take than the opponent.
func (gs *GameState) IsBehind(player int) bool {
	return gs.Players[player].PrizesRemaining() > gs.Players[gs.Opponent(player)].PrizesRemaining()
}

// StadiumEffect returns the effect of the stadium in play, if any.
func (gs *GameState) StadiumEffect() (TrainerEffect, int, bool) {
	if gs.Stadium == nil {
		return TrainerNoEffect, 0, false
	}
	return gs.Stadium.Card.Effect, gs.Stadium.Card.Value, true
}

// HasAbilityInPlay reports whether player has a creature in play carrying ability id.
func (gs *GameState) HasAbilityInPlay(player int, id AbilityID) bool {
	for _, c := range gs.Players[player].InPlay() {
		if c.Card.HasAbility(id) {
			return true
		}
	}
	return false
}

func (gs *GameState) finish(winner int, reason string) {
	gs.Over = true
	gs.Winner = winner
	gs.WinReason = reason
	if winner < 0 {
		gs.Result = fmt.Sprintf("Draw (%s)", reason)
		return
	}
	gs.Result = fmt.Sprintf("P%d wins (%s)", winner+1, reason)
}
