package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// l2Store is the durable cache tier: one SQLite table keyed by the same
// keyspace as L1, with a longer TTL. Rows are immutable; expiry and
// invalidation delete them.
type l2Store struct {
	db  *sql.DB
	ttl time.Duration
}

const l2Schema = `
CREATE TABLE IF NOT EXISTS query_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
)`

// openL2 opens (or creates) the durable cache database at path.
func openL2(path string, ttl time.Duration) (*l2Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(l2Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &l2Store{db: db, ttl: ttl}, nil
}

// get returns the payload for key if present and unexpired.
// Expired rows are deleted on the way out.
func (s *l2Store) get(key string, now time.Time) ([]byte, bool, error) {
	var payload []byte
	var expiresAt int64
	err := s.db.QueryRow(
		"SELECT payload, expires_at FROM query_cache WHERE key = ?", key,
	).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if now.Unix() >= expiresAt {
		s.delete(key)
		return nil, false, nil
	}
	return payload, true, nil
}

// set stores a payload under key, replacing any previous entry.
func (s *l2Store) set(key string, payload []byte, now time.Time) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO query_cache (key, payload, created_at, expires_at) VALUES (?, ?, ?, ?)",
		key, payload, now.Unix(), now.Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// delete removes a single entry.
func (s *l2Store) delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM query_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// flush removes every entry.
func (s *l2Store) flush() error {
	if _, err := s.db.Exec("DELETE FROM query_cache"); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// len returns the number of stored entries (expired rows included until
// they are read or flushed).
func (s *l2Store) len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM query_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

func (s *l2Store) close() error {
	return s.db.Close()
}
