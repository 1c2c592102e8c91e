package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// puzzle
	"puzzle.reset":  {},
	"puzzle.solved": {},

	// move
	"move.applied":  {},
	"move.rejected": {},

	// autosolve
	"autosolve.started":   {},
	"autosolve.completed": {},
	"autosolve.cancelled": {},

	// mirror
	"mqtt.connected":    {},
	"mqtt.disconnected": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
