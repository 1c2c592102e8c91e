package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var buffer = NewRingBuffer(256)

var totalEmitted atomic.Int64

// Journal persists emitted events. The Postgres client implements it.
type Journal interface {
	Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error
}

var (
	journal            Journal
	journalMu          sync.RWMutex
	journalErrorLogged bool
)

// SetJournal sets the journal used for event persistence. Nil disables it.
func SetJournal(j Journal) {
	journalMu.Lock()
	journal = j
	journalErrorLogged = false
	journalMu.Unlock()
}

// GetJournal returns the current journal, or nil.
func GetJournal() Journal {
	journalMu.RLock()
	defer journalMu.RUnlock()
	return journal
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Session   string                 `json:"session,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records an event that belongs to no puzzle session.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	return EmitSession("", level, name, msg, fields)
}

// EmitSession records an event, buffers it, fans it out to subscribers and
// appends it to the journal. It returns the JSON encoding of the event.
func EmitSession(session, level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Session:   session,
		Fields:    fields,
	}

	buffer.Add(e)
	totalEmitted.Add(1)
	broadcast(e)

	journalMu.RLock()
	j := journal
	journalMu.RUnlock()

	if j != nil {
		if err := j.Append(ts, level, name, msg, fields, session); err != nil {
			// Report the first failure only. The report goes straight into the
			// buffer, never through Emit, so a dead database cannot recurse.
			journalMu.Lock()
			first := !journalErrorLogged
			journalErrorLogged = true
			journalMu.Unlock()

			if first {
				errEvent := Event{
					Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
					Level:     "error",
					Name:      "system.error",
					Message:   "journal append failed",
					Fields: map[string]interface{}{
						"error": err.Error(),
					},
				}
				buffer.Add(errEvent)
				broadcast(errEvent)
			}
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return b, nil
}

func Snapshot() []Event {
	return buffer.Snapshot()
}

// TotalCount returns the number of events emitted since startup.
func TotalCount() int64 {
	return totalEmitted.Load()
}

// Clear resets the event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}
