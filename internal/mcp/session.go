package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	stdnet "net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/ai"
	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
	pdnet "github.com/peterkuimelis/pokeduel/internal/net"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction  DecisionType = "choose_action"
	DecisionChooseOptions DecisionType = "choose_options"
	DecisionGameOver      DecisionType = "game_over"
)

// Opponent kinds accepted by start_game.
const (
	OpponentAI    = "ai"
	OpponentHuman = "human"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type     DecisionType
	Player   int
	State    *pdnet.StateView
	Actions  []pdnet.ActionView
	Decision *game.Decision // set for choose_options
}

// ActionResponse answers a choose_action decision.
type ActionResponse struct {
	Index int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string            `json:"session_id"`
	Events    []pdnet.EventView `json:"events"`
	State     *pdnet.StateView  `json:"state,omitempty"`
	Pending   *PendingView      `json:"pending,omitempty"`
	GameOver  bool              `json:"game_over"`
	Winner    int               `json:"winner,omitempty"`
	Result    string            `json:"result,omitempty"`
	Port      string            `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type      DecisionType       `json:"type"`
	ForPlayer string             `json:"for_player"`
	Actions   []pdnet.ActionView `json:"actions,omitempty"`
	Kind      string             `json:"kind,omitempty"`
	Effect    string             `json:"effect,omitempty"`
	Prompt    string             `json:"prompt,omitempty"`
	Message   string             `json:"message,omitempty"`
	Options   []pdnet.OptionView `json:"options,omitempty"`
	Min       int                `json:"min,omitempty"`
	Max       int                `json:"max,omitempty"`
}

// SessionOptions configures a new game session.
type SessionOptions struct {
	Catalog      *game.Catalog
	DecksFile    string
	AgentDeck    int
	AgentPlayer  int
	Opponent     string // OpponentAI or OpponentHuman
	OpponentDeck int    // deck for the AI opponent
	Port         string // TCP port a human opponent joins on

	Duel              game.DuelConfig
	EvolutionPriority []string
	Logger            *zap.Logger
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	ID          string
	duel        *game.Duel
	agentCtrl   *MCPController
	humanCtrl   *pdnet.NetworkController
	agentPlayer int

	listener  stdnet.Listener
	humanConn stdnet.Conn

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	zap *zap.Logger

	mu       sync.Mutex
	events   []pdnet.EventView
	gameOver bool
	winner   int
	result   string
}

// NewGameSession loads the decks, seats the opponent and starts the duel in
// the background. With a human opponent it blocks until they join over TCP.
func NewGameSession(opts SessionOptions) (*GameSession, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	_, agentCards, err := game.DeckByNumber(opts.DecksFile, opts.Catalog, opts.AgentDeck)
	if err != nil {
		return nil, fmt.Errorf("load agent deck: %w", err)
	}

	sess := &GameSession{
		ID:          uuid.NewString(),
		agentPlayer: opts.AgentPlayer,
		pendingCh:   make(chan *PendingDecision, 1),
		winner:      -1,
	}
	sess.zap = logger.With(zap.String("session", sess.ID))
	sess.agentCtrl = NewMCPController(opts.AgentPlayer, sess)

	var opponent game.PlayerController
	var opponentCards []*game.Card
	switch opts.Opponent {
	case OpponentHuman:
		opponentCards, err = sess.acceptHuman(opts)
		if err != nil {
			return nil, err
		}
		opponent = sess.humanCtrl
	case OpponentAI, "":
		deck := opts.OpponentDeck
		if deck == 0 {
			deck = 2
		}
		_, opponentCards, err = game.DeckByNumber(opts.DecksFile, opts.Catalog, deck)
		if err != nil {
			return nil, fmt.Errorf("load opponent deck: %w", err)
		}
		opponent = ai.New(sess.zap, opts.EvolutionPriority)
	default:
		return nil, fmt.Errorf("unknown opponent %q", opts.Opponent)
	}

	cfg := opts.Duel
	cfg.Catalog = opts.Catalog
	cfg.Logger = log.NewMemoryLogger()
	cfg.Zap = sess.zap
	if opts.AgentPlayer == 0 {
		cfg.Deck0, cfg.Deck1 = agentCards, opponentCards
		sess.duel = game.NewDuel(cfg, sess.agentCtrl, opponent)
	} else {
		cfg.Deck0, cfg.Deck1 = opponentCards, agentCards
		sess.duel = game.NewDuel(cfg, opponent, sess.agentCtrl)
	}
	sess.zap.Info("session started", zap.String("match", sess.duel.ID), zap.String("opponent", opts.Opponent))

	go sess.run()
	return sess, nil
}

// acceptHuman waits for one `pokeduel join` connection and loads its deck.
func (s *GameSession) acceptHuman(opts SessionOptions) ([]*game.Card, error) {
	ln, err := stdnet.Listen("tcp", ":"+opts.Port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", opts.Port, err)
	}
	conn, err := ln.Accept()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("accept: %w", err)
	}

	dec := json.NewDecoder(conn)
	var joinMsg pdnet.ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		conn.Close()
		ln.Close()
		return nil, fmt.Errorf("read join message: %w", err)
	}
	humanDeck := joinMsg.DeckNumber
	if humanDeck == 0 {
		humanDeck = 2
	}
	_, cards, err := game.DeckByNumber(opts.DecksFile, opts.Catalog, humanDeck)
	if err != nil {
		conn.Close()
		ln.Close()
		return nil, fmt.Errorf("load human deck: %w", err)
	}

	s.listener = ln
	s.humanConn = conn
	s.humanCtrl = pdnet.NewNetworkController(conn, 1-opts.AgentPlayer, s.zap)
	return cards, nil
}

func (s *GameSession) run() {
	winner, err := s.duel.Run(context.Background())
	result := s.duel.State.Result
	if err != nil {
		s.zap.Error("duel failed", zap.Error(err))
		result = fmt.Sprintf("error: %v", err)
	}
	if result == "" {
		result = fmt.Sprintf("Game over. Winner: player %d", winner)
	}

	if s.humanCtrl != nil {
		_ = s.humanCtrl.SendGameOver(winner, result)
		s.humanConn.Close()
		s.listener.Close()
	}

	s.mu.Lock()
	s.gameOver = true
	s.winner = winner
	s.result = result
	s.mu.Unlock()

	s.pendingCh <- &PendingDecision{
		Type:   DecisionGameOver,
		Player: winner,
		State:  pdnet.BuildStateView(s.duel.State, s.agentPlayer),
	}
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev pdnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []pdnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []pdnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.currentPending = pending

	resp := &ToolResponse{
		SessionID: s.ID,
		Events:    s.drainEvents(),
		State:     pending.State,
	}

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		return resp, nil
	}

	resp.Pending = s.pendingView(pending)
	return resp, nil
}

// pendingView presents pending for the JSON response.
func (s *GameSession) pendingView(pending *PendingDecision) *PendingView {
	pv := &PendingView{
		Type:      pending.Type,
		ForPlayer: s.playerLabel(pending.Player),
		Actions:   pending.Actions,
	}
	if dec := pending.Decision; dec != nil {
		req := dec.Request
		pv.Kind = req.Kind.String()
		pv.Effect = req.Effect
		pv.Prompt = req.Prompt
		pv.Message = req.Message
		pv.Options = pdnet.OptionViews(req.Options)
		pv.Min = req.Min
		pv.Max = req.Max
	}
	return pv
}

// playerLabel returns "agent" or "opponent" for the given player index.
func (s *GameSession) playerLabel(player int) string {
	if player == s.agentPlayer {
		return "agent"
	}
	return "opponent"
}

// Over reports whether the duel has finished.
func (s *GameSession) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
