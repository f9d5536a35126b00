// Package sqlite persists the tool-invocation audit log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver (pure Go).
	_ "modernc.org/sqlite"
)

// Entry is one audited tool invocation.
type Entry struct {
	// ID is the invocation correlation ID.
	ID string
	// Tool is the invoked tool name (e.g. "create_user").
	Tool string
	// Target identifies the affected resource (user ID, group ID, or
	// search term). Never contains credentials.
	Target string
	// Outcome is "success" or "error".
	Outcome string
	// Status is the upstream HTTP status, 0 when no response was received.
	Status int
	// CreatedAt is when the invocation completed.
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY,
	tool       TEXT NOT NULL,
	target     TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	status     INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at);
`

// AuditStore records tool invocations in a local SQLite database.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore opens (creating if necessary) the audit database.
// An empty path uses ~/.graphadmin/data/audit.db.
func NewAuditStore(path string) (*AuditStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".graphadmin", "data", "audit.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise audit schema: %w", err)
	}

	return &AuditStore{db: db}, nil
}

// Record appends an entry to the audit log.
func (s *AuditStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, tool, target, outcome, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Target, e.Outcome, e.Status, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, target, outcome, status, created_at
		 FROM audit_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tool, &e.Target, &e.Outcome, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}
