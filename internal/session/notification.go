package session

import "github.com/AaronLay10/TowerEngine/internal/hanoi"

// Notification is something the controller tells the presentation layer.
// Every notification maps to one allow-listed bus event.
type Notification interface {
	Event() string
	Fields() map[string]interface{}
}

// Listener receives notifications in the order the controller produced them.
// A listener may call back into the controller; notifications caused by that
// call are delivered after the listener returns.
type Listener func(Notification)

// Reset is sent whenever the puzzle is reinitialised.
type Reset struct {
	Disks int
}

func (Reset) Event() string { return "puzzle.reset" }

func (n Reset) Fields() map[string]interface{} {
	return map[string]interface{}{
		"disk_count":         n.Disks,
		"optimal_move_count": hanoi.OptimalMoves(n.Disks),
	}
}

// MoveApplied is sent for every move, manual or automatic.
type MoveApplied struct {
	From      int
	To        int
	Disk      hanoi.Disk
	MoveCount int
	Auto      bool
}

func (MoveApplied) Event() string { return "move.applied" }

func (n MoveApplied) Fields() map[string]interface{} {
	return map[string]interface{}{
		"from":       n.From,
		"to":         n.To,
		"disk":       int(n.Disk),
		"move_count": n.MoveCount,
		"auto":       n.Auto,
	}
}

// MoveRejected is sent when a manual move is refused.
type MoveRejected struct {
	From   int
	To     int
	Reason hanoi.Reason
}

func (MoveRejected) Event() string { return "move.rejected" }

func (n MoveRejected) Fields() map[string]interface{} {
	return map[string]interface{}{
		"from":   n.From,
		"to":     n.To,
		"reason": string(n.Reason),
	}
}

// Solved is sent when a manual move completes the puzzle.
type Solved struct {
	MoveCount        int
	OptimalMoveCount int
}

func (Solved) Event() string { return "puzzle.solved" }

func (n Solved) Fields() map[string]interface{} {
	return map[string]interface{}{
		"move_count":         n.MoveCount,
		"optimal_move_count": n.OptimalMoveCount,
	}
}

// AutoSolveStarted is sent when a run begins.
type AutoSolveStarted struct {
	Disks            int
	OptimalMoveCount int
}

func (AutoSolveStarted) Event() string { return "autosolve.started" }

func (n AutoSolveStarted) Fields() map[string]interface{} {
	return map[string]interface{}{
		"disk_count":         n.Disks,
		"optimal_move_count": n.OptimalMoveCount,
	}
}

// AutoSolveCompleted is sent when a run applied its whole sequence.
type AutoSolveCompleted struct {
	TotalMoves int
}

func (AutoSolveCompleted) Event() string { return "autosolve.completed" }

func (n AutoSolveCompleted) Fields() map[string]interface{} {
	return map[string]interface{}{
		"total_moves": n.TotalMoves,
	}
}

// AutoSolveCancelled is sent when a run is stopped before the end.
type AutoSolveCancelled struct {
	AppliedMoves int
}

func (AutoSolveCancelled) Event() string { return "autosolve.cancelled" }

func (n AutoSolveCancelled) Fields() map[string]interface{} {
	return map[string]interface{}{
		"applied_moves": n.AppliedMoves,
	}
}
