// Package store provides SQLite persistence for moments and stories.
//
// The store implements the feed service contract directly, so the client can
// run against a local database (offline mode) and the fixture server can
// serve from the same code.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a moment or story does not exist.
var ErrNotFound = errors.New("not found")

// DefaultEmbedSize is how many moments a story slide carries inline.
const DefaultEmbedSize = 4

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex // Protects all database operations
	embedSize int
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, embedSize: DefaultEmbedSize}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// SetEmbedSize sets how many moments FetchSlides embeds in a story slide.
func (s *Store) SetEmbedSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.embedSize = n
	}
}

// createTables creates the required tables and indexes if they don't exist.
// Timestamps are unix nanoseconds so keyset comparisons are exact.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		visibility TEXT NOT NULL DEFAULT 'public',
		comparison INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS moments (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		story_id TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		media_kind TEXT NOT NULL DEFAULT 'image',
		media_url TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reactions (
		moment_id TEXT NOT NULL,
		emoji TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (moment_id, emoji)
	);

	CREATE INDEX IF NOT EXISTS idx_stories_keyset ON stories(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_moments_keyset ON moments(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_moments_story ON moments(story_id, created_at DESC, id DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
