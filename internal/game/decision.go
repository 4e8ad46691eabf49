package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DecisionKind distinguishes option selection from yes/no confirmation.
type DecisionKind int

const (
	DecisionSelect DecisionKind = iota
	DecisionConfirm
)

func (k DecisionKind) String() string {
	if k == DecisionConfirm {
		return "confirm"
	}
	return "select"
}

// Option is one selectable choice of a decision point. At most one of Card
// and Creature is set.
type Option struct {
	Label    string
	Card     *Card
	Creature *Creature
	Index    int // effect-specific payload (deck position, attack index, count)
}

// SelectionRequest describes a decision the engine is waiting on.
type SelectionRequest struct {
	Kind    DecisionKind
	Player  int
	Effect  string // the effect in flight that issued the request
	Prompt  string
	Message string
	Options []Option
	Min     int
	Max     int
}

// Validate checks that picks is a legal answer: distinct in-range indices,
// between Min and Max of them.
func (r SelectionRequest) Validate(picks []int) error {
	if len(picks) < r.Min || len(picks) > r.Max {
		return fmt.Errorf("select between %d and %d options, got %d", r.Min, r.Max, len(picks))
	}
	seen := make(map[int]bool, len(picks))
	for _, p := range picks {
		if p < 0 || p >= len(r.Options) {
			return fmt.Errorf("option %d out of range [0,%d)", p, len(r.Options))
		}
		if seen[p] {
			return fmt.Errorf("option %d selected twice", p)
		}
		seen[p] = true
	}
	return nil
}

// FirstPicks is the deterministic answer automated actors give: the first Max options.
func (r SelectionRequest) FirstPicks() []int {
	n := r.Max
	if n > len(r.Options) {
		n = len(r.Options)
	}
	picks := make([]int, n)
	for i := range picks {
		picks[i] = i
	}
	return picks
}

// confirmOptions are the two options of every confirmation request.
var confirmOptions = []Option{{Label: "Yes"}, {Label: "No", Index: 1}}

// NewConfirmation builds a yes/no request. Option 0 is "Yes".
func NewConfirmation(player int, prompt, message string) SelectionRequest {
	return SelectionRequest{
		Kind:    DecisionConfirm,
		Player:  player,
		Prompt:  prompt,
		Message: message,
		Options: confirmOptions,
		Min:     1,
		Max:     1,
	}
}

// ErrDecisionResolved is returned when a Decision is answered a second time.
var ErrDecisionResolved = errors.New("decision already resolved")

// Decision is an outstanding request that an external actor answers
// asynchronously. It settles exactly once, either resolved or cancelled.
type Decision struct {
	Request SelectionRequest

	once  sync.Once
	done  chan struct{}
	picks []int
	err   error
}

// NewDecision wraps req in an unresolved Decision.
func NewDecision(req SelectionRequest) *Decision {
	return &Decision{Request: req, done: make(chan struct{})}
}

// Resolve answers the decision. Invalid picks are rejected and leave the
// decision open.
func (d *Decision) Resolve(picks []int) error {
	if err := d.Request.Validate(picks); err != nil {
		return err
	}
	return d.settle(append([]int(nil), picks...), nil)
}

// Confirm answers a confirmation request.
func (d *Decision) Confirm(yes bool) error {
	if yes {
		return d.Resolve([]int{0})
	}
	return d.Resolve([]int{1})
}

// Cancel withdraws the decision; the waiting effect rolls back.
func (d *Decision) Cancel() error {
	return d.settle(nil, ErrDecisionCancelled)
}

func (d *Decision) settle(picks []int, err error) error {
	settled := false
	d.once.Do(func() {
		d.picks, d.err = picks, err
		settled = true
		close(d.done)
	})
	if !settled {
		return ErrDecisionResolved
	}
	return nil
}

// Done is closed once the decision settles.
func (d *Decision) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the decision settles or ctx ends.
func (d *Decision) Wait(ctx context.Context) ([]int, error) {
	select {
	case <-d.done:
		return d.picks, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// --- Engine side of the decision boundary ---

// Pending returns the decision currently in flight, if any.
func (d *Duel) Pending() *SelectionRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Duel) setPending(req *SelectionRequest) {
	d.mu.Lock()
	d.pending = req
	d.mu.Unlock()
}

// checkIdle rejects operations submitted while a decision is in flight.
func (d *Duel) checkIdle() error {
	if d.Pending() != nil {
		return ErrDecisionPending
	}
	return nil
}

// ask hands req to the player's controller and waits for the answer.
func (d *Duel) ask(req SelectionRequest) ([]int, error) {
	req.Effect = d.InFlight()
	d.setPending(&req)
	defer d.setPending(nil)

	picks, err := d.Controllers[req.Player].ChooseOptions(d.ctx, d.State, req)
	if err != nil {
		if errors.Is(err, ErrDecisionCancelled) {
			d.zap.Debug("decision cancelled", zap.String("effect", req.Effect), zap.Int("player", req.Player))
		}
		return nil, err
	}
	if err := req.Validate(picks); err != nil {
		d.zap.Warn("invalid decision answer, using defaults",
			zap.String("effect", req.Effect), zap.Int("player", req.Player), zap.Error(err))
		picks = req.FirstPicks()
	}
	return picks, nil
}

// requestSelection issues a select-up-to-N decision and returns the chosen options.
// An empty option list with min 0 resolves to nothing without asking.
func (d *Duel) requestSelection(player int, prompt string, options []Option, min, max int) ([]Option, error) {
	if max > len(options) {
		max = len(options)
	}
	if min > max {
		min = max
	}
	if max == 0 {
		return nil, nil
	}
	picks, err := d.ask(SelectionRequest{
		Kind:    DecisionSelect,
		Player:  player,
		Prompt:  prompt,
		Options: options,
		Min:     min,
		Max:     max,
	})
	if err != nil {
		return nil, err
	}
	chosen := make([]Option, len(picks))
	for i, p := range picks {
		chosen[i] = options[p]
	}
	return chosen, nil
}

// requestOne issues a select-exactly-one decision.
func (d *Duel) requestOne(player int, prompt string, options []Option) (Option, error) {
	chosen, err := d.requestSelection(player, prompt, options, 1, 1)
	if err != nil {
		return Option{}, err
	}
	if len(chosen) == 0 {
		return Option{}, ErrNoTarget
	}
	return chosen[0], nil
}

// requestConfirmation issues a yes/no decision.
func (d *Duel) requestConfirmation(player int, prompt, message string) (bool, error) {
	picks, err := d.ask(NewConfirmation(player, prompt, message))
	if err != nil {
		return false, err
	}
	return picks[0] == 0, nil
}

// --- Option builders ---

func cardOptions(cards []*Card) []Option {
	opts := make([]Option, len(cards))
	for i, c := range cards {
		opts[i] = Option{Label: c.Name, Card: c, Index: i}
	}
	return opts
}

func creatureOptions(creatures []*Creature) []Option {
	opts := make([]Option, len(creatures))
	for i, c := range creatures {
		opts[i] = Option{Label: c.DisplayString(), Creature: c, Index: i}
	}
	return opts
}
