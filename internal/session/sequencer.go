package session

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Sequencer states.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateCancelled = "cancelled"
)

// Sequencer events.
const (
	EventStart    = "start"
	EventComplete = "complete"
	EventCancel   = "cancel"
	EventSettle   = "settle"
)

// newSequencer builds the idle -> running -> (completed | cancelled) -> idle
// machine for auto-solve runs.
func newSequencer(log *zap.SugaredLogger) *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventStart, Src: []string{StateIdle}, Dst: StateRunning},
			{Name: EventComplete, Src: []string{StateRunning}, Dst: StateCompleted},
			{Name: EventCancel, Src: []string{StateRunning}, Dst: StateCancelled},
			{Name: EventSettle, Src: []string{StateCompleted, StateCancelled}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugw("sequencer transition", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
}

// run is one auto-solve execution. Its fields are guarded by Controller.mu.
type run struct {
	gen     uint64
	disks   int
	from    int
	to      int
	via     int
	applied int
	cancel  context.CancelFunc
	done    chan struct{}
}

// sleep waits d or until ctx ends, whichever is first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
