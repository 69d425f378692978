// Package store provides SQLite-backed persistence for analysis results,
// keyed by an opaque analysis id. Entries expire after a configurable TTL
// so stale analyses of re-uploaded projects do not accumulate.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ResultStore is the result cache the engine is injected with. Put stores
// a serialized analysis under an id; Get returns it, reporting false for
// unknown or expired ids.
type ResultStore interface {
	Put(id string, payload []byte) error
	Get(id string) ([]byte, bool, error)
}

// Store wraps a SQLite database holding serialized analysis results.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures the
// results table exists. Use ":memory:" for an in-memory database. A ttl of
// zero disables expiry.
func NewStore(dbPath string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analysis_results (
		id         TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("exec create analysis_results: %w", err)
	}
	return nil
}

// Put stores a serialized analysis result. An existing entry with the same
// id is replaced and its expiry clock restarts.
func (s *Store) Put(id string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO analysis_results (id, payload, created_at)
		 VALUES (?, ?, ?)`,
		id, payload, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

// Get retrieves a stored result by id. Expired entries are deleted on
// access and reported as missing.
func (s *Store) Get(id string) ([]byte, bool, error) {
	var payload []byte
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT payload, created_at FROM analysis_results WHERE id = ?`, id,
	).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result: %w", err)
	}

	if s.expired(createdAt) {
		if _, err := s.db.Exec(`DELETE FROM analysis_results WHERE id = ?`, id); err != nil {
			return nil, false, fmt.Errorf("delete expired result: %w", err)
		}
		return nil, false, nil
	}

	return payload, true, nil
}

// Sweep deletes all expired entries and returns how many were removed.
func (s *Store) Sweep() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.Exec(`DELETE FROM analysis_results WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) expired(createdAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return time.Unix(createdAt, 0).Add(s.ttl).Before(s.now())
}
