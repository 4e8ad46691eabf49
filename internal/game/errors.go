package game

import "errors"

// IllegalActionError is returned when a rule forbids an action. The game state
// is unchanged whenever one is returned; Reason is safe to show to players.
type IllegalActionError struct {
	Reason string
}

func (e *IllegalActionError) Error() string { return e.Reason }

// Is makes every illegal-action reason match ErrIllegalAction.
func (e *IllegalActionError) Is(target error) bool {
	return target == ErrIllegalAction
}

func illegal(reason string) *IllegalActionError {
	return &IllegalActionError{Reason: reason}
}

var (
	// ErrIllegalAction matches any *IllegalActionError via errors.Is.
	ErrIllegalAction = errors.New("illegal action")

	// ErrDecisionCancelled is returned when a player backs out of a decision.
	// The in-flight effect has been rolled back.
	ErrDecisionCancelled = errors.New("decision cancelled")

	// ErrDecisionPending is returned when an operation is submitted while
	// another effect is waiting on a decision.
	ErrDecisionPending = errors.New("decision in flight")

	// ErrNoLegalActions is returned by controllers offered an empty action
	// list, which happens when the player may not act.
	ErrNoLegalActions = errors.New("no legal actions")

	// ErrMulliganLimit aborts setup when a deck cannot produce a Basic Pokémon.
	ErrMulliganLimit = errors.New("mulligan limit exceeded")
)

var (
	ErrGameOver           = illegal("the game is over")
	ErrNotYourTurn        = illegal("not your turn")
	ErrNotMainPhase       = illegal("actions are only allowed in the main phase")
	ErrNoActive           = illegal("no active Pokémon")
	ErrNoTarget           = illegal("no target")
	ErrNotInPlay          = illegal("Pokémon is not in play")
	ErrNotInHand          = illegal("card is not in hand")
	ErrAlreadyAttacked    = illegal("already attacked this turn")
	ErrFirstTurn          = illegal("cannot do that on the first player's first turn")
	ErrStatusPrevents     = illegal("special condition prevents it")
	ErrNoAttack           = illegal("no such attack")
	ErrInsufficientEnergy = illegal("insufficient energy")
	ErrMissingEnergyType  = illegal("missing required energy type")
	ErrAlreadyAttached    = illegal("already attached energy this turn")
	ErrNoEnergyInHand     = illegal("no energy card in hand")
	ErrNotEnergy          = illegal("card is not an energy")
	ErrNotBasic           = illegal("card is not a Basic Pokémon")
	ErrBenchFull          = illegal("bench is full")
	ErrBenchEmpty         = illegal("bench is empty")
	ErrActiveOccupied     = illegal("active spot is occupied")
	ErrCannotEvolve       = illegal("cannot evolve into that card")
	ErrEvolveSameTurn     = illegal("cannot evolve a Pokémon the turn it was played")
	ErrAlreadyRetreated   = illegal("already retreated this turn")
	ErrNoSuchAbility      = illegal("no such ability")
	ErrAbilityUsed        = illegal("ability already used this turn")
	ErrAbilityPassive     = illegal("ability is passive")
	ErrNotTrainer         = illegal("card is not a playable trainer")
	ErrSupporterUsed      = illegal("already played a Supporter this turn")
	ErrStadiumInPlay      = illegal("that Stadium is already in play")
	ErrToolAttached       = illegal("Pokémon already has a tool")
	ErrNotTool            = illegal("card is not a Pokémon Tool")
	ErrConditionNotMet    = illegal("the card's condition is not met")
	ErrWouldKnockOut      = illegal("that would knock out the Pokémon")
)

// IsIllegal reports whether err is a rules rejection rather than a fault.
func IsIllegal(err error) bool {
	return errors.Is(err, ErrIllegalAction)
}
