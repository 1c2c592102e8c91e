// Package notice turns bus events into the short messages the puzzle page
// overlays on the board. Display timing lives here, not in the puzzle core.
package notice

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AaronLay10/TowerEngine/internal/events"
)

// Notice is a transient message with its display timing.
type Notice struct {
	Title      string        `json:"title"`
	Text       string        `json:"text"`
	Delay      time.Duration `json:"-"`
	DisplayFor time.Duration `json:"-"`
}

// MarshalJSON defines the wire format: durations go out as delay_ms and
// display_ms.
func (n Notice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title      string `json:"title"`
		Text       string `json:"text"`
		Delay      int64  `json:"delay_ms"`
		DisplayFor int64  `json:"display_ms"`
	}{n.Title, n.Text, n.Delay.Milliseconds(), n.DisplayFor.Milliseconds()})
}

// Builder holds the display timing.
type Builder struct {
	DisplayFor time.Duration
	WinDelay   time.Duration
}

// DefaultBuilder shows notices for 3s and delays the win message by 300ms.
var DefaultBuilder = Builder{
	DisplayFor: 3 * time.Second,
	WinDelay:   300 * time.Millisecond,
}

// FromEvent returns the notice for e, or false when e has none.
func (b Builder) FromEvent(e events.Event) (Notice, bool) {
	n := Notice{DisplayFor: b.DisplayFor}

	switch e.Name {
	case "move.applied":
		rod := intField(e.Fields, "to") + 1
		n.Title = "Valid Move"
		if auto, _ := e.Fields["auto"].(bool); auto {
			n.Title = "Auto Move"
		}
		n.Text = fmt.Sprintf("Disk placed on rod %d", rod)
	case "move.rejected":
		n.Title = "Invalid Move"
		n.Text = rejectionText(e.Fields["reason"])
	case "puzzle.solved":
		n.Title = "Well Done 🎉"
		n.Text = fmt.Sprintf("You completed the puzzle in %d moves.\nOptimal: %d",
			intField(e.Fields, "move_count"), intField(e.Fields, "optimal_move_count"))
		n.Delay = b.WinDelay
	case "autosolve.completed":
		n.Title = "Well Done 🎉"
		n.Text = "Auto demo completed using the optimal solution (2ⁿ − 1 moves)."
	default:
		return Notice{}, false
	}
	return n, true
}

func rejectionText(reason interface{}) string {
	r, _ := reason.(string)
	switch r {
	case "empty_source":
		return "There is no disk on that rod."
	case "same_rod":
		return "The disk is already on that rod."
	case "auto_solving":
		return "Wait for the auto demo to finish."
	case "solved":
		return "The puzzle is already solved. Reset to play again."
	default:
		return "A larger disk cannot be placed on a smaller disk."
	}
}

func intField(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
