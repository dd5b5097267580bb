package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter numbers events across both tables, so a tutor request
// sorts between the lesson events around it.
type sequenceCounter struct {
	mu   sync.Mutex
	next *sql.Stmt
}

const (
	createSequenceSQL = `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`
	seedSequenceSQL = `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`
	nextSequenceSQL = `UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
)

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	for _, q := range []string{createSequenceSQL, seedSequenceSQL} {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("init event sequence: %w", err)
		}
	}
	stmt, err := db.Prepare(nextSequenceSQL)
	if err != nil {
		return nil, fmt.Errorf("prepare event sequence: %w", err)
	}
	return &sequenceCounter{next: stmt}, nil
}

// Next returns the next sequence number.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	if err := sc.next.QueryRowContext(ctx).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next event sequence: %w", err)
	}
	return seq, nil
}

func (sc *sequenceCounter) Close() error {
	return sc.next.Close()
}
