package log

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- ZapLogger: structured event stream for server deployments ---

// ZapLogger keeps events in memory and mirrors each one to a zap logger.
type ZapLogger struct {
	MemoryLogger
	z *zap.Logger
}

// NewZapLogger returns an EventLogger writing to z. The match id, if any,
// should already be attached to z with zap.String("match", id).
func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

func (l *ZapLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	stored := l.LastEvent()
	l.z.Info(stored.Details,
		zap.Int("seq", stored.Seq),
		zap.Int("turn", stored.Turn),
		zap.String("phase", stored.Phase),
		zap.Int("player", stored.Player),
		zap.String("type", stored.Type.String()),
		zap.String("card", stored.Card),
		zap.Int("amount", stored.Amount),
	)
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "     "
	}
	for len(phase) < 8 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewTurnEvent(turn int, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Draw",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, playerName(player)),
	}
}

func NewDrawEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Amount:  1,
		Details: fmt.Sprintf("%s draws %s", playerName(player), cardName),
	}
}

func NewShuffleEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffles their deck", playerName(player)),
	}
}

func NewMulliganEvent(player int, count int) GameEvent {
	return GameEvent{
		Phase:   "Setup",
		Player:  player,
		Type:    EventMulligan,
		Amount:  count,
		Details: fmt.Sprintf("%s has no Basic Pokémon and mulligans (%d)", playerName(player), count),
	}
}

func NewSetupEvent(player int, details string) GameEvent {
	return GameEvent{
		Phase:   "Setup",
		Player:  player,
		Type:    EventSetup,
		Details: details,
	}
}

func NewPlayBasicEvent(turn int, phase string, player int, cardName string, slot string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayBasic,
		Card:    cardName,
		Details: fmt.Sprintf("%s puts %s into play (%s)", playerName(player), cardName, slot),
	}
}

func NewAttachEnergyEvent(turn int, phase string, player int, energyName string, target string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttachEnergy,
		Card:    energyName,
		Details: fmt.Sprintf("%s attaches %s to %s", playerName(player), energyName, target),
	}
}

func NewAttachToolEvent(turn int, phase string, player int, toolName string, target string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttachTool,
		Card:    toolName,
		Details: fmt.Sprintf("%s attaches %s to %s", playerName(player), toolName, target),
	}
}

func NewEvolveEvent(turn int, phase string, player int, from, to string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEvolve,
		Card:    to,
		Details: fmt.Sprintf("%s evolves %s into %s", playerName(player), from, to),
	}
}

func NewRetreatEvent(turn int, phase string, player int, from, to string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventRetreat,
		Card:    from,
		Amount:  cost,
		Details: fmt.Sprintf("%s retreats %s (cost %d); %s is now active", playerName(player), from, cost, to),
	}
}

func NewPromoteEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPromote,
		Card:    cardName,
		Details: fmt.Sprintf("%s promotes %s to the active spot", playerName(player), cardName),
	}
}

func NewSwitchEvent(turn int, phase string, player int, out, in string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSwitch,
		Card:    in,
		Details: fmt.Sprintf("%s's %s is switched with %s", playerName(player), out, in),
	}
}

func NewAttackEvent(turn int, player int, attacker, attack, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Main",
		Player:  player,
		Type:    EventAttack,
		Card:    attacker,
		Details: fmt.Sprintf("%s's %s uses %s on %s", playerName(player), attacker, attack, defender),
	}
}

func NewDamageEvent(turn int, phase string, player int, cardName string, amount, remaining int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Card:    cardName,
		Amount:  amount,
		Details: fmt.Sprintf("%s's %s takes %d damage (%s), %d HP left", playerName(player), cardName, amount, reason, remaining),
	}
}

func NewHealEvent(turn int, phase string, player int, cardName string, amount int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventHeal,
		Card:    cardName,
		Amount:  amount,
		Details: fmt.Sprintf("%s's %s heals %d damage", playerName(player), cardName, amount),
	}
}

func NewStatusEvent(turn int, phase string, player int, cardName string, status string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventStatus,
		Card:    cardName,
		Details: fmt.Sprintf("%s's %s is now %s", playerName(player), cardName, status),
	}
}

func NewCoinFlipEvent(turn int, phase string, player int, heads bool, reason string) GameEvent {
	side := "tails"
	if heads {
		side = "heads"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCoinFlip,
		Details: fmt.Sprintf("%s flips a coin for %s: %s", playerName(player), reason, side),
	}
}

func NewKnockoutEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventKnockout,
		Card:    cardName,
		Details: fmt.Sprintf("%s's %s is knocked out", playerName(player), cardName),
	}
}

func NewPrizeEvent(turn int, phase string, player int, count, remaining int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPrize,
		Amount:  count,
		Details: fmt.Sprintf("%s takes %d prize card(s), %d left", playerName(player), count, remaining),
	}
}

func NewAbilityEvent(turn int, phase string, player int, cardName, ability string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAbility,
		Card:    cardName,
		Details: fmt.Sprintf("%s uses %s's ability %s", playerName(player), cardName, ability),
	}
}

func NewTrainerEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTrainer,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s", playerName(player), cardName),
	}
}

func NewStadiumEvent(turn int, phase string, player int, cardName, replaced string) GameEvent {
	details := fmt.Sprintf("%s puts %s into play", playerName(player), cardName)
	if replaced != "" {
		details += fmt.Sprintf(" (replacing %s)", replaced)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventStadium,
		Card:    cardName,
		Details: details,
	}
}

func NewDiscardEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s discards %s (%s)", playerName(player), cardName, reason),
	}
}

func NewAddToHandEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAddToHand,
		Card:    cardName,
		Details: fmt.Sprintf("%s is added to %s's hand (%s)", cardName, playerName(player), reason),
	}
}

func NewCancelledEvent(turn int, phase string, player int, effect string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCancelled,
		Card:    effect,
		Details: fmt.Sprintf("%s cancels %s", playerName(player), effect),
	}
}

func NewWinEvent(turn int, phase string, winner int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", playerName(winner), reason),
	}
}

func NewTieEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  -1,
		Type:    EventTie,
		Details: fmt.Sprintf("Game ends without a winner (%s)", reason),
	}
}
