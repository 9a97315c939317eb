// Package streamstate tracks which note and notification IDs the
// client has already shown, backed by a small SQLite database, so a
// client that is restarted (or reconnects after a backoff delay)
// doesn't redisplay everything the stream replays on resubscribe.
// This is a supplement beyond the original tool's in-memory-only
// dedup: it survives process restarts.
package streamstate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_ids (
    kind TEXT NOT NULL,
    id TEXT NOT NULL,
    seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (kind, id)
);
`

// Kind distinguishes the two streams whose IDs are tracked.
type Kind string

const (
	KindNote         Kind = "note"
	KindNotification Kind = "notification"
)

// Store records and queries seen IDs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path, or
// ":memory:" for a process-local, non-persistent store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("streamstate: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("streamstate: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarkSeen records id as seen, returning whether this call is the one
// that actually inserted it (false if it was already recorded).
func (s *Store) MarkSeen(ctx context.Context, kind Kind, id string) (firstSeen bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_ids (kind, id) VALUES (?, ?)`, string(kind), id)
	if err != nil {
		return false, fmt.Errorf("streamstate: mark seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Prune deletes entries older than maxAge, keeping the table from
// growing unbounded across a long-lived install.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	_, err := s.db.ExecContext(ctx, `DELETE FROM seen_ids WHERE seen_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("streamstate: prune: %w", err)
	}
	return nil
}
