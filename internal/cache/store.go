// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// MemStore is an in-memory Store for tests and the "memory" cache backend.
type MemStore struct {
	records []Record

	// FailSaves makes Save return an error, for exercising the
	// swallow-on-write-failure behavior.
	FailSaves bool

	// Saves counts Save calls.
	Saves int
}

// Load returns the records from the last successful Save.
func (m *MemStore) Load() ([]Record, error) {
	return m.records, nil
}

// Save keeps the record set in memory.
func (m *MemStore) Save(records []Record) error {
	m.Saves++
	if m.FailSaves {
		return os.ErrPermission
	}
	m.records = append([]Record(nil), records...)
	return nil
}

// fileEntry is the on-disk JSON shape of one cache entry. TTL is seconds,
// null for entries that never expire; created_at is a Unix timestamp.
type fileEntry struct {
	Value     string   `json:"value"`
	TTL       *float64 `json:"ttl"`
	CreatedAt float64  `json:"created_at"`
}

// FileStore persists the cache as a single JSON object mapping key to
// entry. An absent or corrupt file loads as an empty cache, never an error.
type FileStore struct {
	Path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the JSON object from disk. Structurally invalid entries are
// dropped; a missing or unparsable file yields an empty record set.
func (f *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, nil
	}

	var raw map[string]fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil
	}

	records := make([]Record, 0, len(raw))
	for key, fe := range raw {
		if key == "" {
			continue
		}
		entry := Entry{
			Value:     fe.Value,
			CreatedAt: time.Unix(0, int64(fe.CreatedAt*float64(time.Second))),
		}
		if fe.TTL != nil {
			entry.TTL = time.Duration(*fe.TTL * float64(time.Second))
		}
		records = append(records, Record{Key: key, Entry: entry})
	}
	return records, nil
}

// Save writes the full record set as one JSON object, creating the parent
// directory if needed.
func (f *FileStore) Save(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}

	raw := make(map[string]fileEntry, len(records))
	for _, r := range records {
		fe := fileEntry{
			Value:     r.Entry.Value,
			CreatedAt: float64(r.Entry.CreatedAt.UnixNano()) / float64(time.Second),
		}
		if r.Entry.TTL > 0 {
			secs := r.Entry.TTL.Seconds()
			fe.TTL = &secs
		}
		raw[r.Key] = fe
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}
