package usagelog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed request audit log. It records what happened,
// not quota state: admission counters live in the in-memory ledger and start
// from zero on every restart.
type Store struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS request_log (
    request_id   TEXT PRIMARY KEY,
    identity     TEXT NOT NULL,
    tier         TEXT NOT NULL,
    model        TEXT NOT NULL,
    prompt_chars INTEGER NOT NULL DEFAULT 0,
    status       INTEGER NOT NULL,
    created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_request_log_identity ON request_log(identity);
CREATE INDEX IF NOT EXISTS idx_request_log_created  ON request_log(created_at);
`

// Open opens (creating if needed) the audit database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage db: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping usage db: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize usage schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Entry is one logged request.
type Entry struct {
	RequestID   string    `json:"request_id"`
	Identity    string    `json:"identity"`
	Tier        string    `json:"tier"`
	Model       string    `json:"model"`
	PromptChars int       `json:"prompt_chars"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record inserts one audit entry.
func (s *Store) Record(e Entry) error {
	_, err := s.conn.Exec(
		`INSERT INTO request_log (request_id, identity, tier, model, prompt_chars, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.Identity, e.Tier, e.Model, e.PromptChars, e.Status, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log request: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.conn.Query(
		`SELECT request_id, identity, tier, model, prompt_chars, status, created_at
		 FROM request_log ORDER BY created_at DESC, request_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query request log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RequestID, &e.Identity, &e.Tier, &e.Model, &e.PromptChars, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
