// Package postgres journals puzzle events. The journal is append-only and is
// never read back to rebuild a puzzle.
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/AaronLay10/TowerEngine/internal/config"
)

const (
	defaultQueryLimit = 200
	maxQueryLimit     = 10000
)

// EventRow represents an event stored in Postgres.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	RoomID    string                 `json:"room_id"`
	SessionID *string                `json:"session_id,omitempty"`
}

// Client manages the Postgres connection for the event journal.
type Client struct {
	db     *sql.DB
	roomID string
}

// ConnString builds a lib/pq connection string from the PG* environment.
// PGPASSWORD and PGUSER honour the *_FILE convention.
func ConnString() (string, error) {
	host, _ := config.ResolveSecretOr("PGHOST", "127.0.0.1")
	port, _ := config.ResolveSecretOr("PGPORT", "5432")
	dbname, _ := config.ResolveSecretOr("PGDATABASE", "hanoi")
	user, err := config.ResolveSecretOr("PGUSER", "hanoi")
	if err != nil {
		return "", err
	}
	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return "", err
	}

	if password != "" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname), nil
	}
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		host, port, user, dbname), nil
}

// New connects, pings and makes sure the journal table exists.
func New(roomID string) (*Client, error) {
	connStr, err := ConnString()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:     db,
		roomID: roomID,
	}

	if err := client.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create hanoi_events table: %w", err)
	}

	return client, nil
}

func (c *Client) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS hanoi_events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB,
			room_id    TEXT NOT NULL,
			session_id TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_hanoi_events_ts ON hanoi_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_hanoi_events_session ON hanoi_events(session_id);
	`
	_, err := c.db.Exec(query)
	return err
}

// Append inserts an event into the journal.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	var sessionPtr *string
	if sessionID != "" {
		sessionPtr = &sessionID
	}

	query := `
		INSERT INTO hanoi_events (ts, level, event, msg, fields, room_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.roomID, sessionPtr)
	return err
}

// Query returns the last limit events, newest first. A non-empty sessionID
// restricts the result to one game.
func (c *Client) Query(sessionID string, limit int) ([]EventRow, error) {
	limit = ClampLimit(limit)

	query := `
		SELECT event_id, ts, level, event, msg, fields, room_id, session_id
		FROM hanoi_events
		WHERE room_id = $1 AND ($2::text = '' OR session_id = $2)
		ORDER BY ts DESC
		LIMIT $3
	`
	rows, err := c.db.Query(query, c.roomID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg, session sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.RoomID, &session); err != nil {
			return nil, err
		}

		if msg.Valid {
			e.Message = &msg.String
		}
		if session.Valid {
			e.SessionID = &session.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// Ping reports whether the database is reachable.
func (c *Client) Ping() error {
	return c.db.Ping()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// ClampLimit maps a requested row count into 1..10000, defaulting to 200.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
