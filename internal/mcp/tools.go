package mcp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

// Tools serves the game over MCP. Each start_game call opens a session
// addressed by its id in later calls.
type Tools struct {
	Catalog           *game.Catalog
	DecksFile         string
	Port              string // TCP port for human opponents
	Duel              game.DuelConfig
	EvolutionPriority []string
	Logger            *zap.Logger

	mu       sync.Mutex
	sessions map[string]*GameSession
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(takeActionTool(), t.handleTakeAction)
	s.AddTool(selectOptionsTool(), t.handleSelectOptions)
	s.AddTool(cancelSelectionTool(), t.handleCancelSelection)
	s.AddTool(answerYesNoTool(), t.handleAnswerYesNo)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// --- Tool definitions ---

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Session id returned by start_game. May be omitted while only one game is running."))
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Pokémon TCG duel. Returns the session id, initial game state and first pending decision. "+
			"Against a human opponent, they connect via `pokeduel-cli join --addr localhost:<port> --deck N` and this call blocks until they do."),
		mcp.WithNumber("agent_deck", mcp.Required(), mcp.Description("Deck number for you (1-indexed from decks.yaml)")),
		mcp.WithNumber("agent_player", mcp.Required(), mcp.Description("Which seat you take: 0 = player one, 1 = player two")),
		mcp.WithString("opponent", mcp.Description("\"ai\" (default) for the built-in sequencer or \"human\" for a TCP player")),
		mcp.WithNumber("opponent_deck", mcp.Description("Deck number for the AI opponent (default 2)")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. Use this when the pending decision type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
		sessionParam(),
	)
}

func selectOptionsTool() mcp.Tool {
	return mcp.NewTool("select_options",
		mcp.WithDescription("Answer a pending 'choose_options' decision of kind 'select' with between min and max option indices."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based option indices (e.g. '0 2'), or empty string for no selection")),
		sessionParam(),
	)
}

func cancelSelectionTool() mcp.Tool {
	return mcp.NewTool("cancel_selection",
		mcp.WithDescription("Back out of the pending 'choose_options' decision. The card or ability that asked is rolled back and stays unplayed."),
		sessionParam(),
	)
}

func answerYesNoTool() mcp.Tool {
	return mcp.NewTool("answer_yes_no",
		mcp.WithDescription("Answer a yes/no question: a 'choose_options' decision of kind 'confirm'."),
		mcp.WithBoolean("answer", mcp.Required(), mcp.Description("true for yes, false for no")),
		sessionParam(),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
		sessionParam(),
	)
}

// --- Session bookkeeping ---

func (t *Tools) add(sess *GameSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessions == nil {
		t.sessions = make(map[string]*GameSession)
	}
	t.sessions[sess.ID] = sess
}

func (t *Tools) remove(sess *GameSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sess.ID)
}

// lookup finds the session named in request, or the only running one.
func (t *Tools) lookup(request mcp.CallToolRequest) (*GameSession, *mcp.CallToolResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id := request.GetString("session_id", ""); id != "" {
		sess, ok := t.sessions[id]
		if !ok {
			return nil, mcp.NewToolResultErrorf("Unknown session %q.", id)
		}
		return sess, nil
	}
	switch len(t.sessions) {
	case 0:
		return nil, mcp.NewToolResultError("No game is running. Use start_game first.")
	case 1:
		for _, sess := range t.sessions {
			return sess, nil
		}
	}
	return nil, mcp.NewToolResultError("Several games are running; pass session_id.")
}

// pendingFor returns the session's pending decision if the agent must answer it with want.
func (t *Tools) pendingFor(request mcp.CallToolRequest, want DecisionType) (*GameSession, *PendingDecision, *mcp.CallToolResult) {
	sess, errResult := t.lookup(request)
	if errResult != nil {
		return nil, nil, errResult
	}
	pending := sess.currentPending
	if pending == nil {
		return nil, nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Player != sess.agentPlayer {
		return nil, nil, mcp.NewToolResultError("Waiting for the opponent to respond.")
	}
	if pending.Type != want {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'. Use the correct tool.", pending.Type, want)
	}
	return sess, pending, nil
}

// next waits for the session's next decision and reports it.
func (t *Tools) next(ctx context.Context, sess *GameSession) (*mcp.CallToolResult, error) {
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		t.remove(sess)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentDeck := request.GetInt("agent_deck", 0)
	agentPlayer := request.GetInt("agent_player", 0)
	opponent := request.GetString("opponent", OpponentAI)

	if agentDeck < 1 {
		return mcp.NewToolResultError("agent_deck must be >= 1"), nil
	}
	if agentPlayer != 0 && agentPlayer != 1 {
		return mcp.NewToolResultError("agent_player must be 0 or 1"), nil
	}
	if opponent != OpponentAI && opponent != OpponentHuman {
		return mcp.NewToolResultErrorf("opponent must be %q or %q", OpponentAI, OpponentHuman), nil
	}

	sess, err := NewGameSession(SessionOptions{
		Catalog:           t.Catalog,
		DecksFile:         t.DecksFile,
		AgentDeck:         agentDeck,
		AgentPlayer:       agentPlayer,
		Opponent:          opponent,
		OpponentDeck:      request.GetInt("opponent_deck", 2),
		Port:              t.Port,
		Duel:              t.Duel,
		EvolutionPriority: t.EvolutionPriority,
		Logger:            t.Logger,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.add(sess)

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	if opponent == OpponentHuman {
		resp.Port = t.Port
	}
	if resp.GameOver {
		t.remove(sess)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := t.pendingFor(request, DecisionChooseAction)
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}

	sess.agentCtrl.responseCh <- ActionResponse{Index: index}
	return t.next(ctx, sess)
}

func parseIndices(s string) ([]int, error) {
	var indices []int
	for _, p := range strings.Fields(s) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (t *Tools) handleSelectOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := t.pendingFor(request, DecisionChooseOptions)
	if errResult != nil {
		return errResult, nil
	}
	if pending.Decision.Request.Kind == game.DecisionConfirm {
		return mcp.NewToolResultError("Wrong tool: this decision is a confirmation. Use answer_yes_no."), nil
	}

	indices, err := parseIndices(request.GetString("indices", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid indices: %v", err), nil
	}
	if err := pending.Decision.Resolve(indices); err != nil {
		return mcp.NewToolResultErrorf("Invalid selection: %v", err), nil
	}
	return t.next(ctx, sess)
}

func (t *Tools) handleCancelSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := t.pendingFor(request, DecisionChooseOptions)
	if errResult != nil {
		return errResult, nil
	}
	if err := pending.Decision.Cancel(); err != nil {
		return mcp.NewToolResultErrorf("Cannot cancel: %v", err), nil
	}
	return t.next(ctx, sess)
}

func (t *Tools) handleAnswerYesNo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := t.pendingFor(request, DecisionChooseOptions)
	if errResult != nil {
		return errResult, nil
	}
	if pending.Decision.Request.Kind != game.DecisionConfirm {
		return mcp.NewToolResultError("Wrong tool: this decision is a selection. Use select_options."), nil
	}
	if err := pending.Decision.Confirm(request.GetBool("answer", false)); err != nil {
		return mcp.NewToolResultErrorf("Cannot answer: %v", err), nil
	}
	return t.next(ctx, sess)
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	sess.mu.Lock()
	gameOver := sess.gameOver
	winner := sess.winner
	result := sess.result
	sess.mu.Unlock()

	resp := &ToolResponse{
		SessionID: sess.ID,
		Events:    sess.drainEvents(),
		GameOver:  gameOver,
		Winner:    winner,
		Result:    result,
	}

	pending := sess.currentPending
	switch {
	case gameOver:
		if pending != nil {
			resp.State = pending.State
		}
	case pending != nil:
		// The pending state view is the latest snapshot taken on the
		// engine goroutine; reading the live state here would race it.
		resp.State = pending.State
		if pending.Player != sess.agentPlayer {
			resp.Pending = &PendingView{Type: pending.Type, ForPlayer: "opponent"}
		} else {
			resp.Pending = sess.pendingView(pending)
		}
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}
