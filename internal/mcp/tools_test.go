package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

const testCatalog = `
cards:
  - id: machop
    name: Machop
    kind: pokemon
    stage: basic
    type: fighting
    hp: 70
    retreat_cost: 1
    attacks:
      - {name: Low Kick, cost: 1, damage: 20}
  - id: potion
    name: Potion
    kind: trainer
    trainer_type: item
    effect: potion
  - {id: fighting, name: Fighting Energy, kind: energy, basic: true, provides: fighting}
`

const testDecks = `
decks:
  - name: Fists
    cards:
      - {id: machop, count: 8}
      - {id: potion, count: 2}
      - {id: fighting, count: 10}
  - name: Fists Again
    cards:
      - {id: machop, count: 8}
      - {id: fighting, count: 12}
`

func newTools(t *testing.T) *Tools {
	t.Helper()
	catalog, err := game.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	decks := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(decks, []byte(testDecks), 0o644))
	return &Tools{
		Catalog:   catalog,
		DecksFile: decks,
		Duel:      game.DuelConfig{Seed: 3, MaxTurns: 6},
		Logger:    zaptest.NewLogger(t),
	}
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, res *mcp.CallToolResult) *ToolResponse {
	t.Helper()
	require.NotNil(t, res)
	require.False(t, res.IsError, "tool error: %v", res.Content)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return &resp
}

// answer attacks when it can, else attaches energy, else ends the turn. It
// takes the first options of every selection.
func answer(t *testing.T, ctx context.Context, tools *Tools, resp *ToolResponse) (*mcp.CallToolResult, error) {
	t.Helper()
	p := resp.Pending
	require.NotNil(t, p)
	require.Equal(t, "agent", p.ForPlayer)
	id := map[string]any{"session_id": resp.SessionID}

	switch p.Type {
	case DecisionChooseAction:
		pick := len(p.Actions) - 1
		for _, prefix := range []string{"Attach ", "Attack with"} {
			for _, a := range p.Actions {
				if strings.HasPrefix(a.Desc, prefix) {
					pick = a.Index
				}
			}
		}
		id["index"] = pick
		return tools.handleTakeAction(ctx, request(id))
	case DecisionChooseOptions:
		if p.Kind == "confirm" {
			id["answer"] = true
			return tools.handleAnswerYesNo(ctx, request(id))
		}
		var picks []string
		for i := 0; i < p.Min; i++ {
			picks = append(picks, string(rune('0'+i)))
		}
		id["indices"] = strings.Join(picks, " ")
		return tools.handleSelectOptions(ctx, request(id))
	default:
		t.Fatalf("unexpected pending decision %q", p.Type)
		return nil, nil
	}
}

func TestAgentPlaysAgainstSequencer(t *testing.T) {
	tools := newTools(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := tools.handleStartGame(ctx, request(map[string]any{"agent_deck": 1, "agent_player": 0}))
	require.NoError(t, err)
	resp := decode(t, res)
	require.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.State)
	assert.NotEmpty(t, resp.Events, "setup events are delivered with the first decision")

	for i := 0; !resp.GameOver; i++ {
		require.Less(t, i, 500, "duel did not finish")
		res, err = answer(t, ctx, tools, resp)
		require.NoError(t, err)
		resp = decode(t, res)
	}

	assert.NotEmpty(t, resp.Result)
	res, err = tools.handleGetGameState(ctx, request(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "finished sessions are dropped")
}

func TestWrongToolIsRejected(t *testing.T) {
	tools := newTools(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := tools.handleStartGame(ctx, request(map[string]any{"agent_deck": 1, "agent_player": 1, "opponent_deck": 2}))
	require.NoError(t, err)
	resp := decode(t, res)
	require.NotNil(t, resp.Pending)
	require.Equal(t, DecisionChooseAction, resp.Pending.Type)

	res, err = tools.handleSelectOptions(ctx, request(map[string]any{"indices": "0"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleTakeAction(ctx, request(map[string]any{"index": 99}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleGetGameState(ctx, request(map[string]any{"session_id": resp.SessionID}))
	require.NoError(t, err)
	state := decode(t, res)
	require.NotNil(t, state.Pending)
	assert.Equal(t, DecisionChooseAction, state.Pending.Type)
	assert.Equal(t, resp.Pending.Actions, state.Pending.Actions)
}

func TestStartGameValidation(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	tests := []map[string]any{
		{"agent_deck": 0, "agent_player": 0},
		{"agent_deck": 1, "agent_player": 2},
		{"agent_deck": 1, "agent_player": 0, "opponent": "robot"},
		{"agent_deck": 9, "agent_player": 0},
	}
	for _, args := range tests {
		res, err := tools.handleStartGame(ctx, request(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "%v", args)
	}

	res, err := tools.handleTakeAction(ctx, request(map[string]any{"index": 0}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "no session is running")
}

func TestEmptyActionListIsNotPublished(t *testing.T) {
	sess := &GameSession{ID: "s", agentPlayer: 0, pendingCh: make(chan *PendingDecision, 1)}
	ctrl := NewMCPController(0, sess)

	_, err := ctrl.ChooseAction(context.Background(), game.NewGameState(), nil)
	assert.ErrorIs(t, err, game.ErrNoLegalActions)
	assert.Empty(t, sess.pendingCh)
}

func TestCancelledSelectionRollsBack(t *testing.T) {
	sess := &GameSession{ID: "s", agentPlayer: 0, pendingCh: make(chan *PendingDecision, 1)}
	ctrl := NewMCPController(0, sess)
	req := game.SelectionRequest{Options: []game.Option{{Label: "a"}, {Label: "b"}}, Min: 1, Max: 1, Effect: "Nest Ball"}

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.ChooseOptions(context.Background(), game.NewGameState(), req)
		done <- err
	}()

	resp, err := sess.waitForPending(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Pending)
	assert.Equal(t, "Nest Ball", resp.Pending.Effect)
	assert.Equal(t, "Nest Ball", resp.State.Pending)
	require.Len(t, resp.Pending.Options, 2)

	tools := &Tools{sessions: map[string]*GameSession{sess.ID: sess}}
	res, err := tools.handleSelectOptions(context.Background(), request(map[string]any{"indices": "0 1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "too many picks keep the decision open")

	require.NoError(t, sess.currentPending.Decision.Cancel())
	assert.ErrorIs(t, <-done, game.ErrDecisionCancelled)
	assert.False(t, sess.Over())
}
