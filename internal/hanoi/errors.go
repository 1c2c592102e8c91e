package hanoi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is returned when a move breaks the stacking rule.
	ErrInvalidMove = errors.New("invalid move")

	// ErrPrecondition is returned for calls the caller was expected to prevent:
	// moving from an empty or unknown rod, a bad disk count, a second auto run.
	ErrPrecondition = errors.New("precondition violated")
)

// Reason explains why a move was refused.
type Reason string

const (
	ReasonUnknownRod      Reason = "unknown_rod"
	ReasonEmptySource     Reason = "empty_source"
	ReasonSameRod         Reason = "same_rod"
	ReasonLargerOnSmaller Reason = "larger_on_smaller"
	ReasonAutoSolving     Reason = "auto_solving"
	ReasonSolved          Reason = "solved"
)

// Kind reports which error class a reason belongs to.
func (r Reason) Kind() error {
	switch r {
	case ReasonSameRod, ReasonLargerOnSmaller:
		return ErrInvalidMove
	default:
		return ErrPrecondition
	}
}

// MoveError describes a refused move.
type MoveError struct {
	From   int
	To     int
	Reason Reason
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %d->%d: %s", e.From, e.To, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidMove or ErrPrecondition.
func (e *MoveError) Unwrap() error {
	return e.Reason.Kind()
}
