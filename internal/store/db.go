package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored. Nanosecond precision keeps the
// created classification (first_seen == last_seen) exact.
const timeLayout = time.RFC3339Nano

// Store is the persisted job/company store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	// modernc sqlite DSN; busy_timeout covers overlapping readers while a
	// run holds the write connection.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite wants a single writer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  ticker        TEXT NOT NULL DEFAULT '',
  name          TEXT NOT NULL,
  website_url   TEXT NOT NULL DEFAULT '',
  ats_type      TEXT NOT NULL DEFAULT 'unknown',
  ats_board_url TEXT NOT NULL DEFAULT '',
  careers_url   TEXT NOT NULL DEFAULT '',
  active        INTEGER NOT NULL DEFAULT 1,
  notes         TEXT NOT NULL DEFAULT ''
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_ticker
ON companies(ticker) WHERE ticker != '';`,
		`CREATE TABLE IF NOT EXISTS jobs (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id  INTEGER NOT NULL REFERENCES companies(id),
  external_id TEXT NOT NULL,
  title       TEXT NOT NULL,
  location    TEXT NOT NULL DEFAULT '',
  department  TEXT NOT NULL DEFAULT '',
  url         TEXT NOT NULL DEFAULT '',
  source      TEXT NOT NULL DEFAULT '',
  posted_at   TEXT,
  fingerprint TEXT NOT NULL,
  first_seen  TEXT NOT NULL,
  last_seen   TEXT NOT NULL,
  is_active   INTEGER NOT NULL DEFAULT 1,
  UNIQUE(company_id, external_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_last_seen ON jobs(company_id, last_seen);`,
		`CREATE TABLE IF NOT EXISTS alert_outbox (
  job_id    INTEGER PRIMARY KEY REFERENCES jobs(id),
  queued_at TEXT NOT NULL
);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return tx.Commit()
}
