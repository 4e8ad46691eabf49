package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/log"
)

// PlayerController is the interface that human (TCP/MCP) and AI players implement.
type PlayerController interface {
	// ChooseAction presents the legal actions and waits for the player to pick one.
	ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error)

	// ChooseOptions answers a selection decision with the indices of the
	// chosen options. Returning ErrDecisionCancelled backs out of the effect.
	ChooseOptions(ctx context.Context, state *GameState, req SelectionRequest) ([]int, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// TurnTaker is implemented by controllers that play a whole turn through the
// public operations instead of answering ChooseAction one step at a time.
type TurnTaker interface {
	TakeTurn(ctx context.Context, d *Duel, player int) error
}

// DuelConfig holds configuration for creating a new duel.
type DuelConfig struct {
	Deck0   []*Card // Player 0's deck (card definitions)
	Deck1   []*Card // Player 1's deck (card definitions)
	Catalog *Catalog
	Logger  log.EventLogger
	Zap     *zap.Logger

	Seed        int64       // RNG seed (0 for random)
	NoShuffle   bool        // skip deck shuffles (for deterministic tests)
	Coin        func() bool // coin flip source, true is heads (nil uses the RNG)
	FirstPlayer int         // 1 or 2 fixes who goes first; 0 picks at random

	MaxTurns       int // draw after this many rounds (0 = default limit)
	MulliganLimit  int // 0 = MulliganLimit
	PrizeCount     int // 0 = PrizeCount
	ActivePriority []string
}

// Duel orchestrates an entire duel between two players.
type Duel struct {
	ID          string
	State       *GameState
	Controllers [2]PlayerController
	Logger      log.EventLogger
	Catalog     *Catalog

	cfg       DuelConfig
	zap       *zap.Logger
	rng       *rand.Rand
	ctx       context.Context
	observers []func(log.GameEvent)

	mu       sync.Mutex
	pending  *SelectionRequest
	inFlight string
}

// NewDuel creates a new duel from the given config and player controllers.
func NewDuel(cfg DuelConfig, p0, p1 PlayerController) *Duel {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = defaultMaxTurn
	}
	if cfg.MulliganLimit == 0 {
		cfg.MulliganLimit = MulliganLimit
	}
	if cfg.PrizeCount == 0 {
		cfg.PrizeCount = PrizeCount
	}

	id := uuid.NewString()
	z := cfg.Zap
	if z == nil {
		z = zap.NewNop()
	}

	return &Duel{
		ID:          id,
		State:       NewGameState(),
		Controllers: [2]PlayerController{p0, p1},
		Logger:      logger,
		Catalog:     cfg.Catalog,
		cfg:         cfg,
		zap:         z.With(zap.String("match", id)),
		rng:         rand.New(rand.NewSource(seed)),
		ctx:         context.Background(),
	}
}

// Observe registers fn to be called after every state change event.
func (d *Duel) Observe(fn func(log.GameEvent)) {
	d.observers = append(d.observers, fn)
}

// Run executes the entire duel loop. Returns the winner (0, 1, or -1 for draw).
func (d *Duel) Run(ctx context.Context) (int, error) {
	d.ctx = ctx
	gs := d.State

	if err := d.StartGame(d.cfg.Deck0, d.cfg.Deck1); err != nil {
		return gs.Winner, err
	}

	for !gs.Over {
		if err := d.runTurn(); err != nil {
			return gs.Winner, err
		}
		if err := d.ctx.Err(); err != nil {
			return -1, err
		}
	}

	return gs.Winner, nil
}

// runTurn hands control to the turn player until the turn passes.
func (d *Duel) runTurn() error {
	gs := d.State
	tp, turn := gs.TurnPlayer, gs.Turn
	passed := func() bool { return gs.Over || gs.TurnPlayer != tp || gs.Turn != turn }

	if tt, ok := d.Controllers[tp].(TurnTaker); ok {
		if err := tt.TakeTurn(d.ctx, d, tp); err != nil {
			return err
		}
		if !passed() {
			return d.EndTurn()
		}
		return nil
	}

	for !passed() {
		actions := d.LegalActions(tp)
		chosen, err := d.Controllers[tp].ChooseAction(d.ctx, gs, actions)
		if err != nil {
			return err
		}
		chosen.Player = tp
		err = d.Execute(chosen)
		switch {
		case err == nil:
		case IsIllegal(err), errors.Is(err, ErrDecisionCancelled):
			d.zap.Info("action rejected",
				zap.Int("player", tp), zap.String("action", chosen.String()), zap.Error(err))
			continue
		default:
			return err
		}
		// Attacking ends the turn.
		if chosen.Type == ActionAttack && !passed() {
			return d.EndTurn()
		}
	}
	return nil
}

// log emits a game event through the logger and notifies observers and both players.
func (d *Duel) log(event log.GameEvent) {
	d.Logger.Log(event)
	for _, fn := range d.observers {
		fn(event)
	}
	// Notify controllers (ignore errors for notifications)
	for i := 0; i < 2; i++ {
		if d.Controllers[i] != nil {
			_ = d.Controllers[i].Notify(d.ctx, event)
		}
	}
}

func (d *Duel) phase() string {
	return d.State.Phase.String()
}

// flipCoin flips a fair coin for player and reports heads.
func (d *Duel) flipCoin(player int, reason string) bool {
	var heads bool
	if d.cfg.Coin != nil {
		heads = d.cfg.Coin()
	} else {
		heads = d.rng.Intn(2) == 0
	}
	d.log(log.NewCoinFlipEvent(d.State.Turn, d.phase(), player, heads, reason))
	return heads
}

// shuffleDeck shuffles a player's deck unless shuffling is disabled.
func (d *Duel) shuffleDeck(player int) {
	if !d.cfg.NoShuffle {
		d.State.Players[player].ShuffleDeck(d.rng)
	}
	d.log(log.NewShuffleEvent(d.State.Turn, d.phase(), player))
}

// runEffect records name as the effect in flight for the duration of fn.
func (d *Duel) runEffect(name string, fn func() error) error {
	d.mu.Lock()
	d.inFlight = name
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.inFlight = ""
		d.mu.Unlock()
	}()
	return fn()
}

// InFlight returns the name of the effect currently resolving, if any.
func (d *Duel) InFlight() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// checkTurn validates that player may act now.
func (d *Duel) checkTurn(player int) error {
	if err := d.checkIdle(); err != nil {
		return err
	}
	gs := d.State
	if gs.Over {
		return ErrGameOver
	}
	if player != gs.TurnPlayer {
		return ErrNotYourTurn
	}
	if gs.Phase != PhaseMain {
		return ErrNotMainPhase
	}
	return nil
}
