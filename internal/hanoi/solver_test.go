package hanoi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionKnownSequences(t *testing.T) {
	tests := []struct {
		n    int
		want []Move
	}{
		{1, []Move{{From: 0, To: 2}}},
		{2, []Move{{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 2}}},
		{3, []Move{
			{From: 0, To: 2}, {From: 0, To: 1}, {From: 2, To: 1}, {From: 0, To: 2},
			{From: 1, To: 0}, {From: 1, To: 2}, {From: 0, To: 2},
		}},
		{4, []Move{
			{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 2}, {From: 0, To: 1},
			{From: 2, To: 0}, {From: 2, To: 1}, {From: 0, To: 1}, {From: 0, To: 2},
			{From: 1, To: 2}, {From: 1, To: 0}, {From: 2, To: 0}, {From: 1, To: 2},
			{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 2},
		}},
	}

	for _, tt := range tests {
		got := Solution(tt.n, SourceRod, DestinationRod, AuxiliaryRod)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestSolutionSolvesPuzzle(t *testing.T) {
	for n := 1; n <= 10; n++ {
		p, _ := New(n)
		moves := Solution(n, SourceRod, DestinationRod, AuxiliaryRod)
		require.Len(t, moves, OptimalMoves(n))

		for i, m := range moves {
			_, err := p.ApplyMove(m.From, m.To)
			require.NoError(t, err, "n=%d move %d", n, i)
		}

		assert.True(t, p.IsSolved(DestinationRod, n))
		assert.Equal(t, OptimalMoves(n), p.Moves())
		assert.True(t, p.Snapshot(DestinationRod).Stacked())
	}
}

func TestWalkZeroDisks(t *testing.T) {
	called := false
	done := Walk(0, 0, 2, 1, func(Move) bool {
		called = true
		return true
	})
	assert.True(t, done)
	assert.False(t, called)
}

func TestWalkStopsWhenVisitRefuses(t *testing.T) {
	var seen []Move
	done := Walk(3, 0, 2, 1, func(m Move) bool {
		seen = append(seen, m)
		return len(seen) < 2
	})

	assert.False(t, done)
	assert.Equal(t, []Move{{From: 0, To: 2}, {From: 0, To: 1}}, seen)
}

func TestWalkContextMatchesWalk(t *testing.T) {
	var got []Move
	err := WalkContext(context.Background(), 4, 0, 2, 1, func(m Move) error {
		got = append(got, m)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Solution(4, 0, 2, 1), got)
}

func TestWalkContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := WalkContext(ctx, 5, 0, 2, 1, func(Move) error {
		count++
		if count == 3 {
			cancel()
		}
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, count)
}

func TestWalkContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WalkContext(ctx, 3, 0, 2, 1, func(Move) error {
		t.Fatal("visit must not run")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
