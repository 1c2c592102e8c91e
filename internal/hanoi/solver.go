package hanoi

import "context"

// Walk visits the optimal move order for n disks from -> to using via as the
// spare rod. Moves are produced one at a time; visit returning false stops the
// walk and no further descent happens. Walk reports whether every move was
// visited.
func Walk(n, from, to, via int, visit func(Move) bool) bool {
	if n <= 0 {
		return true
	}
	if !Walk(n-1, from, via, to, visit) {
		return false
	}
	if !visit(Move{From: from, To: to}) {
		return false
	}
	return Walk(n-1, via, to, from, visit)
}

// Solution returns the full optimal move list. It always holds 2^n - 1 moves.
func Solution(n, from, to, via int) []Move {
	moves := make([]Move, 0, OptimalMoves(n))
	Walk(n, from, to, via, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

// WalkContext is Walk driven by a context. ctx is checked before every
// descent and before every visit; a visit error also stops the walk. The
// returned error is nil only when every move was visited.
func WalkContext(ctx context.Context, n, from, to, via int, visit func(Move) error) error {
	if n <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WalkContext(ctx, n-1, from, via, to, visit); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := visit(Move{From: from, To: to}); err != nil {
		return err
	}
	return WalkContext(ctx, n-1, via, to, from, visit)
}
