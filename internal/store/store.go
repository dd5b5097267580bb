// Package store is the diagnostics log: every tutor request and every
// lesson milestone, kept in SQLite for `myenglish llm` and `myenglish
// history`. Learner progress is never read back from it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	_ "modernc.org/sqlite"
)

// Single writer, many short reads from the CLI while the TUI runs.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
}

// Store owns the database handle and the event sequence.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open opens (creating if needed) the SQLite database at dsn and brings
// the event tables up to date.
func Open(dsn string) (_ *Store, err error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, drv: drv, seq: seq}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// DB exposes the raw handle, mostly for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

func (s *Store) Close() error {
	return errors.Join(s.seq.Close(), s.drv.Close())
}

// DefaultDBPath is $MYENGLISH_DB if set, else myenglish.db under the XDG
// data directory. The parent directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("MYENGLISH_DB")
	if p == "" {
		data := os.Getenv("XDG_DATA_HOME")
		if data == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("find home directory: %w", err)
			}
			data = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(data, "myenglish", "myenglish.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
