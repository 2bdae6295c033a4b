// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the cache in a SQLite database. The position column
// records LRU order so recency survives restarts, which the flat JSON file
// cannot do.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the cache database at path and bootstraps
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		ttl_seconds REAL,
		created_at TEXT NOT NULL,
		position INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads all rows ordered least- to most-recently used. Malformed rows
// are dropped rather than failing the load.
func (s *SQLiteStore) Load() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT key, value, ttl_seconds, created_at FROM entries ORDER BY position ASC`)
	if err != nil {
		// A broken table is treated as an empty cache.
		return nil, nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			key, value, createdAt string
			ttlSecs               sql.NullFloat64
		)
		if err := rows.Scan(&key, &value, &ttlSecs, &createdAt); err != nil {
			continue
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			continue
		}
		entry := Entry{Value: value, CreatedAt: created}
		if ttlSecs.Valid {
			entry.TTL = time.Duration(ttlSecs.Float64 * float64(time.Second))
		}
		records = append(records, Record{Key: key, Entry: entry})
	}
	return records, rows.Err()
}

// Save replaces the stored set with records, preserving their LRU order in
// the position column.
func (s *SQLiteStore) Save(records []Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing cache table: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO entries (key, value, ttl_seconds, created_at, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var ttlSecs sql.NullFloat64
		if r.Entry.TTL > 0 {
			ttlSecs = sql.NullFloat64{Float64: r.Entry.TTL.Seconds(), Valid: true}
		}
		created := r.Entry.CreatedAt.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.Exec(r.Key, r.Entry.Value, ttlSecs, created, i); err != nil {
			return fmt.Errorf("inserting cache entry %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}
