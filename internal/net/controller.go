package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
)

// NetworkController implements game.PlayerController over a TCP connection.
type NetworkController struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	player int // which player this controller is (0 or 1)
	mu     sync.Mutex
	zap    *zap.Logger
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player int, logger *zap.Logger) *NetworkController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NetworkController{
		conn:   conn,
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
		zap:    logger.With(zap.Int("player", player)),
	}
}

// BuildStateView creates a StateView from the perspective of the given player.
func BuildStateView(state *game.GameState, player int) *StateView {
	sv := &StateView{
		You:        buildPlayerView(state.Players[player], true),
		Opponent:   buildPlayerView(state.Players[1-player], false),
		Turn:       state.Turn,
		Phase:      state.Phase.String(),
		IsYourTurn: state.TurnPlayer == player,
	}
	if state.Stadium != nil {
		sv.Stadium = state.Stadium.Card.Name
	}
	return sv
}

func buildPlayerView(p *game.Player, isOwner bool) PlayerView {
	pv := PlayerView{
		Active:         CreatureViewOf(p.Active),
		Bench:          make([]CreatureView, 0, len(p.Bench)),
		HandCount:      p.HandCount(),
		DeckCount:      p.DeckCount(),
		DiscardCount:   len(p.Discard),
		LostZoneCount:  len(p.LostZone),
		Prizes:         p.PrizesRemaining(),
		EnergyAttached: p.EnergyAttachedThisTurn,
		SupporterUsed:  p.SupporterUsedThisTurn,
	}
	for _, c := range p.Bench {
		pv.Bench = append(pv.Bench, *CreatureViewOf(c))
	}
	// Hand names are visible only to their owner.
	if isOwner {
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, c.Name)
		}
	}
	return pv
}

// CreatureViewOf describes c, or returns nil for an empty slot.
func CreatureViewOf(c *game.Creature) *CreatureView {
	if c == nil {
		return nil
	}
	cv := &CreatureView{
		Name:   c.Card.Name,
		Stage:  c.Card.Stage.String(),
		Type:   c.Card.Type.String(),
		EX:     c.Card.IsEX,
		HP:     c.RemainingHP(),
		MaxHP:  c.MaxHP(),
		Damage: c.Damage,
	}
	for _, e := range c.Energies {
		cv.Energies = append(cv.Energies, e.Name)
	}
	if c.Tool != nil {
		cv.Tool = c.Tool.Name
	}
	if c.Status != game.StatusNone {
		cv.Status = c.Status.String()
	}
	return cv
}

// OptionViews converts decision options for the wire.
func OptionViews(options []game.Option) []OptionView {
	views := make([]OptionView, len(options))
	for i, o := range options {
		ov := OptionView{Index: i, Label: o.Label}
		if o.Card != nil {
			ov.Card = o.Card.Name
		}
		ov.Creature = CreatureViewOf(o.Creature)
		views[i] = ov
	}
	return views
}

// EventViewOf converts a game event for the wire.
func EventViewOf(event log.GameEvent) *EventView {
	return &EventView{
		Seq:     event.Seq,
		Turn:    event.Turn,
		Phase:   event.Phase,
		Player:  event.Player,
		Type:    event.Type.String(),
		Card:    event.Card,
		Amount:  event.Amount,
		Details: event.Details,
	}
}

// buildStateView creates a StateView from the perspective of this controller's player.
func (nc *NetworkController) buildStateView(state *game.GameState) *StateView {
	return BuildStateView(state, nc.player)
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// ChooseAction implements game.PlayerController.
func (nc *NetworkController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	if len(actions) == 0 {
		return game.Action{}, game.ErrNoLegalActions
	}
	nc.mu.Lock()
	defer nc.mu.Unlock()

	var views []ActionView
	for i, a := range actions {
		views = append(views, ActionView{Index: i, Desc: a.String()})
	}

	msg := ServerMessage{
		Type:    "choose_action",
		Actions: views,
		State:   nc.buildStateView(state),
	}
	if err := nc.send(msg); err != nil {
		return game.Action{}, fmt.Errorf("send choose_action: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return game.Action{}, fmt.Errorf("recv action: %w", err)
	}

	if resp.Index < 0 || resp.Index >= len(actions) {
		nc.zap.Warn("action index out of range, ending turn", zap.Int("index", resp.Index))
		return actions[len(actions)-1], nil
	}
	return actions[resp.Index], nil
}

// ChooseOptions implements game.PlayerController. A "cancel" reply backs
// out of the effect; out-of-range answers are left for the engine to reject.
func (nc *NetworkController) ChooseOptions(ctx context.Context, state *game.GameState, req game.SelectionRequest) ([]int, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	sv := nc.buildStateView(state)
	sv.Pending = req.Effect
	msg := ServerMessage{
		Type:    "choose_options",
		Kind:    req.Kind.String(),
		Effect:  req.Effect,
		Prompt:  req.Prompt,
		Message: req.Message,
		Options: OptionViews(req.Options),
		Min:     req.Min,
		Max:     req.Max,
		State:   sv,
	}
	if err := nc.send(msg); err != nil {
		return nil, fmt.Errorf("send choose_options: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return nil, fmt.Errorf("recv options: %w", err)
	}

	switch resp.Type {
	case "cancel":
		return nil, game.ErrDecisionCancelled
	case "yes_no":
		if resp.Answer {
			return []int{0}, nil
		}
		return []int{1}, nil
	}
	return resp.Indices, nil
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(winner int, result string) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "game_over", Winner: winner, Result: result})
}

// SendError reports a fatal server-side error to the client.
func (nc *NetworkController) SendError(err error) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "error", Error: err.Error()})
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "notify", Event: EventViewOf(event)})
}
