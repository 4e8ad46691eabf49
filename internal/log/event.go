package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventDraw
	EventShuffle
	EventMulligan
	EventSetup
	EventPlayBasic
	EventAttachEnergy
	EventAttachTool
	EventEvolve
	EventRetreat
	EventPromote
	EventSwitch
	EventAttack
	EventDamage
	EventHeal
	EventStatus
	EventCoinFlip
	EventKnockout
	EventPrize
	EventAbility
	EventTrainer
	EventStadium
	EventDiscard
	EventAddToHand
	EventCancelled
	EventWin
	EventTie
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventShuffle:
		return "Shuffle"
	case EventMulligan:
		return "Mulligan"
	case EventSetup:
		return "Setup"
	case EventPlayBasic:
		return "PlayBasic"
	case EventAttachEnergy:
		return "AttachEnergy"
	case EventAttachTool:
		return "AttachTool"
	case EventEvolve:
		return "Evolve"
	case EventRetreat:
		return "Retreat"
	case EventPromote:
		return "Promote"
	case EventSwitch:
		return "Switch"
	case EventAttack:
		return "Attack"
	case EventDamage:
		return "Damage"
	case EventHeal:
		return "Heal"
	case EventStatus:
		return "Status"
	case EventCoinFlip:
		return "CoinFlip"
	case EventKnockout:
		return "Knockout"
	case EventPrize:
		return "Prize"
	case EventAbility:
		return "Ability"
	case EventTrainer:
		return "Trainer"
	case EventStadium:
		return "Stadium"
	case EventDiscard:
		return "Discard"
	case EventAddToHand:
		return "AddToHand"
	case EventCancelled:
		return "Cancelled"
	case EventWin:
		return "Win"
	case EventTie:
		return "Tie"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a duel. It carries enough
// information for a front end to re-render the affected zone without reading
// engine internals.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // round counter (1-based)
	Phase   string    // current phase name (e.g. "Main")
	Player  int       // acting or affected player (0 or 1)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Amount  int       // damage, heal, prize or card count (if applicable)
	Details string    // human-readable detail string
}
