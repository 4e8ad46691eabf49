package mcp

import (
	"context"

	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
	"github.com/peterkuimelis/pokeduel/internal/net"
)

// MCPController implements game.PlayerController by publishing decisions on
// the session's pending channel. Actions are answered on responseCh; option
// selections and confirmations settle through a game.Decision.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan any
}

// NewMCPController creates a controller for the given player.
func NewMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan any),
	}
}

func (c *MCPController) await(ctx context.Context) (any, error) {
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChooseAction implements game.PlayerController.
func (c *MCPController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	if len(actions) == 0 {
		return game.Action{}, game.ErrNoLegalActions
	}
	var views []net.ActionView
	for i, a := range actions {
		views = append(views, net.ActionView{Index: i, Desc: a.String()})
	}

	c.session.pendingCh <- &PendingDecision{
		Type:    DecisionChooseAction,
		Player:  c.player,
		State:   net.BuildStateView(state, c.player),
		Actions: views,
	}

	resp, err := c.await(ctx)
	if err != nil {
		return game.Action{}, err
	}
	ar := resp.(ActionResponse)

	if ar.Index < 0 || ar.Index >= len(actions) {
		return actions[len(actions)-1], nil
	}
	return actions[ar.Index], nil
}

// ChooseOptions implements game.PlayerController. The tool handlers resolve
// or cancel the published Decision.
func (c *MCPController) ChooseOptions(ctx context.Context, state *game.GameState, req game.SelectionRequest) ([]int, error) {
	dec := game.NewDecision(req)
	sv := net.BuildStateView(state, c.player)
	sv.Pending = req.Effect

	c.session.pendingCh <- &PendingDecision{
		Type:     DecisionChooseOptions,
		Player:   c.player,
		State:    sv,
		Decision: dec,
	}
	return dec.Wait(ctx)
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*net.EventViewOf(event))
	return nil
}
