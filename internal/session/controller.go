// Package session owns one puzzle session: the puzzle state, the manual move
// path and the auto-solve run. All mutation goes through a Controller, which
// serialises it under a single lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/hanoi"
	"github.com/AaronLay10/TowerEngine/internal/logger"
	"github.com/AaronLay10/TowerEngine/internal/metrics"
)

const (
	DefaultDisks    = 3
	DefaultMaxDisks = 10
)

// ErrAutoSolveRunning is returned by StartAutoSolve while a run is active.
var ErrAutoSolveRunning = fmt.Errorf("auto-solve already running: %w", hanoi.ErrPrecondition)

// errStale marks a continuation of a run that a reset or cancel superseded.
var errStale = errors.New("stale auto-solve step")

// Options configures a Controller. Zero Disks and MaxDisks take the
// defaults; a zero Delay plays auto moves back to back.
type Options struct {
	Disks    int
	MaxDisks int
	Delay    time.Duration
}

// Result is the outcome of a manual move.
type Result struct {
	Applied  bool           `json:"applied"`
	Move     hanoi.Move     `json:"move"`
	Reason   hanoi.Reason   `json:"reason,omitempty"`
	Solved   bool           `json:"solved"`
	Snapshot hanoi.Snapshot `json:"state"`
}

// Status is the controller state exposed to the presentation layer.
type Status struct {
	hanoi.Snapshot
	Session   string `json:"session"`
	Sequencer string `json:"sequencer"`
	Playable  bool   `json:"playable"`
	MaxDisks  int    `json:"max_disks"`
}

type envelope struct {
	session string
	n       Notification
}

// Controller is the single writer of a puzzle session.
type Controller struct {
	mu        sync.Mutex
	puzzle    *hanoi.Puzzle
	target    int
	maxDisks  int
	delay     time.Duration
	sessionID string
	solved    bool
	gen       uint64
	seq       *fsm.FSM
	run       *run
	lastRun   *run
	listeners []Listener
	pending   []envelope
	flushing  bool
	drained   chan struct{}
	log       *zap.SugaredLogger

	// wait suspends between auto moves; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// New creates a controller with a freshly initialised puzzle.
func New(opts Options) (*Controller, error) {
	if opts.Disks == 0 {
		opts.Disks = DefaultDisks
	}
	if opts.MaxDisks == 0 {
		opts.MaxDisks = DefaultMaxDisks
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("auto move delay %s: %w", opts.Delay, hanoi.ErrPrecondition)
	}
	if opts.Disks < 1 || opts.Disks > opts.MaxDisks {
		return nil, fmt.Errorf("disk count %d outside 1..%d: %w", opts.Disks, opts.MaxDisks, hanoi.ErrPrecondition)
	}

	p, err := hanoi.New(opts.Disks)
	if err != nil {
		return nil, err
	}

	log := logger.For("session")
	return &Controller{
		puzzle:    p,
		target:    hanoi.DestinationRod,
		maxDisks:  opts.MaxDisks,
		delay:     opts.Delay,
		sessionID: uuid.NewString(),
		seq:       newSequencer(log),
		log:       log,
		wait:      sleep,
	}, nil
}

// AddListener registers l for every later notification.
func (c *Controller) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// MaxDisks returns the largest accepted disk count.
func (c *Controller) MaxDisks() int {
	return c.maxDisks
}

// SessionID identifies the current game; it changes on every reset.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Snapshot returns a copy of the puzzle.
func (c *Controller) Snapshot() hanoi.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puzzle.Snapshot(c.target)
}

// Status returns the snapshot together with session and sequencer state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Snapshot:  c.puzzle.Snapshot(c.target),
		Session:   c.sessionID,
		Sequencer: c.seq.Current(),
		Playable:  !c.solved && !c.seq.Is(StateRunning),
		MaxDisks:  c.maxDisks,
	}
}

// Running reports whether an auto-solve run is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.Is(StateRunning)
}

// SequencerState returns idle, running, completed or cancelled.
func (c *Controller) SequencerState() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.Current()
}

// Reset reinitialises the puzzle with disks disks. A running auto-solve is
// cancelled first. Calling Reset repeatedly with the same count is harmless.
func (c *Controller) Reset(disks int) error {
	if disks < 1 || disks > c.maxDisks {
		return fmt.Errorf("disk count %d outside 1..%d: %w", disks, c.maxDisks, hanoi.ErrPrecondition)
	}

	c.mu.Lock()
	c.cancelRunLocked()
	err := c.resetLocked(disks)
	c.mu.Unlock()

	c.flush()
	return err
}

// TryManualMove applies a player's move if it is legal. It never mutates the
// puzzle on rejection.
func (c *Controller) TryManualMove(from, to int) Result {
	c.mu.Lock()

	res := Result{Move: hanoi.Move{From: from, To: to}}
	switch {
	case c.seq.Is(StateRunning):
		res.Reason = hanoi.ReasonAutoSolving
	case c.solved:
		res.Reason = hanoi.ReasonSolved
	default:
		disk, err := c.puzzle.ApplyMove(from, to)
		if err != nil {
			var me *hanoi.MoveError
			if errors.As(err, &me) {
				res.Reason = me.Reason
			} else {
				res.Reason = hanoi.ReasonUnknownRod
			}
			break
		}
		res.Applied = true
		res.Move.Disk = disk
	}

	if res.Applied {
		moves := c.puzzle.Moves()
		c.enqueueLocked(MoveApplied{From: from, To: to, Disk: res.Move.Disk, MoveCount: moves})
		if c.puzzle.IsSolved(c.target, c.puzzle.Disks()) {
			c.solved = true
			res.Solved = true
			c.enqueueLocked(Solved{MoveCount: moves, OptimalMoveCount: hanoi.OptimalMoves(c.puzzle.Disks())})
		}
	} else {
		c.enqueueLocked(MoveRejected{From: from, To: to, Reason: res.Reason})
	}
	res.Snapshot = c.puzzle.Snapshot(c.target)
	c.mu.Unlock()

	c.flush()
	return res
}

// StartAutoSolve resets the puzzle to its current disk count and starts the
// optimal solution in the background. It returns at once.
func (c *Controller) StartAutoSolve() error {
	c.mu.Lock()
	if c.seq.Is(StateRunning) {
		c.mu.Unlock()
		return ErrAutoSolveRunning
	}
	c.settleLocked()

	disks := c.puzzle.Disks()
	if err := c.resetLocked(disks); err != nil {
		c.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		gen:    c.gen,
		disks:  disks,
		from:   hanoi.SourceRod,
		to:     c.target,
		via:    hanoi.AuxiliaryRod,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if err := c.seq.Event(ctx, EventStart); err != nil {
		cancel()
		c.mu.Unlock()
		return fmt.Errorf("start auto-solve: %w", err)
	}
	c.run = r
	c.lastRun = r
	c.enqueueLocked(AutoSolveStarted{Disks: disks, OptimalMoveCount: hanoi.OptimalMoves(disks)})
	c.mu.Unlock()

	c.flush()
	go c.drive(ctx, r)
	return nil
}

// CancelAutoSolve stops the active run, if any. Moves already applied stay.
func (c *Controller) CancelAutoSolve() {
	c.mu.Lock()
	cancelled := c.cancelRunLocked()
	c.mu.Unlock()

	c.flush()
	if cancelled {
		c.settle()
	}
}

// Wait blocks until the most recent run has stopped touching the puzzle and
// every notification queued so far has reached the listeners. A listener that
// calls Wait blocks until ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	r := c.lastRun
	c.mu.Unlock()

	if r != nil {
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.waitDrained(ctx)
}

// waitDrained blocks while a flush is delivering notifications.
func (c *Controller) waitDrained(ctx context.Context) error {
	for {
		c.mu.Lock()
		ch := c.drained
		c.mu.Unlock()

		if ch == nil {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drive walks the optimal sequence, waiting between moves.
func (c *Controller) drive(ctx context.Context, r *run) {
	defer close(r.done)

	err := hanoi.WalkContext(ctx, r.disks, r.from, r.to, r.via, func(m hanoi.Move) error {
		if err := c.wait(ctx, c.delay); err != nil {
			return err
		}
		return c.applyAuto(ctx, r, m)
	})

	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errStale) {
			c.log.Errorw("auto-solve stopped", "session", c.SessionID(), "error", err)
		}
		return
	}
	c.complete(r)
}

func (c *Controller) applyAuto(ctx context.Context, r *run, m hanoi.Move) error {
	c.mu.Lock()
	if c.run != r || r.gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		return errStale
	}

	disk, err := c.puzzle.ApplyMove(m.From, m.To)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("auto move %d->%d: %w", m.From, m.To, err)
	}
	r.applied++
	c.enqueueLocked(MoveApplied{From: m.From, To: m.To, Disk: disk, MoveCount: c.puzzle.Moves(), Auto: true})
	c.mu.Unlock()

	c.flush()
	return nil
}

func (c *Controller) complete(r *run) {
	c.mu.Lock()
	if c.run != r {
		c.mu.Unlock()
		return
	}
	if err := c.seq.Event(context.Background(), EventComplete); err != nil {
		c.log.Warnw("sequencer refused completion", "error", err)
	}
	c.run = nil
	r.cancel()
	if !c.puzzle.IsSolved(r.to, r.disks) {
		c.log.Errorw("auto-solve finished without solving", "session", c.sessionID, "moves", c.puzzle.Moves())
	}
	// The demo ends the game; play resumes after a reset.
	c.solved = true
	c.enqueueLocked(AutoSolveCompleted{TotalMoves: c.puzzle.Moves()})
	c.mu.Unlock()

	c.flush()
	c.settle()
}

// cancelRunLocked stops the active run and queues its cancellation.
func (c *Controller) cancelRunLocked() bool {
	r := c.run
	if r == nil {
		return false
	}
	r.cancel()
	c.run = nil
	if err := c.seq.Event(context.Background(), EventCancel); err != nil {
		c.log.Warnw("sequencer refused cancel", "error", err)
	}
	c.enqueueLocked(AutoSolveCancelled{AppliedMoves: r.applied})
	return true
}

func (c *Controller) resetLocked(disks int) error {
	if err := c.puzzle.Initialize(disks); err != nil {
		return err
	}
	c.gen++
	c.solved = false
	c.sessionID = uuid.NewString()
	c.settleLocked()
	c.enqueueLocked(Reset{Disks: disks})
	return nil
}

func (c *Controller) settle() {
	c.mu.Lock()
	c.settleLocked()
	c.mu.Unlock()
}

// settleLocked returns a finished sequencer to idle.
func (c *Controller) settleLocked() {
	if c.seq.Can(EventSettle) {
		if err := c.seq.Event(context.Background(), EventSettle); err != nil {
			c.log.Warnw("sequencer refused settle", "error", err)
		}
	}
}

func (c *Controller) enqueueLocked(n Notification) {
	c.pending = append(c.pending, envelope{session: c.sessionID, n: n})
}

// flush delivers queued notifications outside the lock. Only one goroutine
// delivers at a time, so listeners observe mutation order.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	c.drained = make(chan struct{})

	for len(c.pending) > 0 {
		env := c.pending[0]
		c.pending = c.pending[1:]
		listeners := append([]Listener(nil), c.listeners...)
		c.mu.Unlock()

		c.publish(env, listeners)

		c.mu.Lock()
	}
	c.flushing = false
	close(c.drained)
	c.drained = nil
	c.mu.Unlock()
}

func (c *Controller) publish(env envelope, listeners []Listener) {
	record(env.n)

	level := "info"
	if _, ok := env.n.(MoveRejected); ok {
		level = "warn"
	}
	if _, err := events.EmitSession(env.session, level, env.n.Event(), "", env.n.Fields()); err != nil {
		c.log.Errorw("emit failed", "event", env.n.Event(), "error", err)
	}

	for _, l := range listeners {
		l(env.n)
	}
}

func record(n Notification) {
	switch v := n.(type) {
	case Reset:
		metrics.Reset()
	case MoveApplied:
		if v.Auto {
			metrics.MoveApplied(metrics.ModeAuto)
		} else {
			metrics.MoveApplied(metrics.ModeManual)
		}
	case MoveRejected:
		metrics.MoveRejected(string(v.Reason))
	case Solved:
		metrics.PuzzleSolved()
	case AutoSolveStarted:
		metrics.AutoSolveStarted()
	case AutoSolveCompleted:
		metrics.AutoSolveFinished(metrics.OutcomeCompleted)
	case AutoSolveCancelled:
		metrics.AutoSolveFinished(metrics.OutcomeCancelled)
	}
}
