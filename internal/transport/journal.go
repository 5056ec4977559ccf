package transport

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// JournalEntry is one dispatched event and its outcome.
type JournalEntry struct {
	CorrelationID string
	Action        string
	Endpoint      string
	Outcome       string // "success" or "failure"
	Detail        string // failure reason or response summary
	CreatedAt     time.Time
}

// Journal keeps a local record of dispatched events in SQLite, so an
// operator can reconstruct what a client sent after the fact.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database at dbPath and runs
// the schema migration.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrateJournal(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal db: %w", err)
	}
	return &Journal{db: db}, nil
}

func migrateJournal(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			correlation_id TEXT NOT NULL,
			action         TEXT NOT NULL,
			endpoint       TEXT NOT NULL,
			outcome        TEXT NOT NULL,
			detail         TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL
		)
	`)
	return err
}

// Record appends one dispatch entry.
func (j *Journal) Record(ctx context.Context, e JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO dispatches (correlation_id, action, endpoint, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.CorrelationID, e.Action, e.Endpoint, e.Outcome, e.Detail,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT correlation_id, action, endpoint, outcome, detail, created_at FROM dispatches ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var createdAt string
		if err := rows.Scan(&e.CorrelationID, &e.Action, &e.Endpoint, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
