package notice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/TowerEngine/internal/events"
)

func TestFromEvent(t *testing.T) {
	b := DefaultBuilder

	tests := []struct {
		name  string
		event events.Event
		title string
		text  string
		delay time.Duration
	}{
		{
			name:  "manual move",
			event: events.Event{Name: "move.applied", Fields: map[string]interface{}{"to": 2, "auto": false}},
			title: "Valid Move",
			text:  "Disk placed on rod 3",
		},
		{
			name:  "auto move decoded from json",
			event: events.Event{Name: "move.applied", Fields: map[string]interface{}{"to": float64(0), "auto": true}},
			title: "Auto Move",
			text:  "Disk placed on rod 1",
		},
		{
			name:  "stacking rule",
			event: events.Event{Name: "move.rejected", Fields: map[string]interface{}{"reason": "larger_on_smaller"}},
			title: "Invalid Move",
			text:  "A larger disk cannot be placed on a smaller disk.",
		},
		{
			name:  "manual win",
			event: events.Event{Name: "puzzle.solved", Fields: map[string]interface{}{"move_count": 9, "optimal_move_count": 7}},
			title: "Well Done 🎉",
			text:  "You completed the puzzle in 9 moves.\nOptimal: 7",
			delay: 300 * time.Millisecond,
		},
		{
			name:  "auto demo",
			event: events.Event{Name: "autosolve.completed", Fields: map[string]interface{}{"total_moves": 7}},
			title: "Well Done 🎉",
			text:  "Auto demo completed using the optimal solution (2ⁿ − 1 moves).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := b.FromEvent(tt.event)
			require.True(t, ok)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.text, n.Text)
			assert.Equal(t, tt.delay, n.Delay)
			assert.Equal(t, 3*time.Second, n.DisplayFor)
		})
	}
}

func TestFromEventIgnoresOthers(t *testing.T) {
	_, ok := DefaultBuilder.FromEvent(events.Event{Name: "puzzle.reset"})
	assert.False(t, ok)
}

func TestMarshalMilliseconds(t *testing.T) {
	b, err := json.Marshal(Notice{Title: "t", Text: "x", Delay: 300 * time.Millisecond, DisplayFor: 3 * time.Second})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, float64(300), got["delay_ms"])
	assert.Equal(t, float64(3000), got["display_ms"])
	assert.Len(t, got, 4, "only title, text, delay_ms and display_ms go on the wire")
}

func TestMarshalThroughPointerField(t *testing.T) {
	n := Notice{Title: "t", Delay: time.Second}
	b, err := json.Marshal(struct {
		Notice *Notice `json:"notice"`
	}{&n})
	require.NoError(t, err)
	assert.JSONEq(t, `{"notice":{"title":"t","text":"","delay_ms":1000,"display_ms":0}}`, string(b))
}
