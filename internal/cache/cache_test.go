// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T, maxSize int, ttl time.Duration) (*Cache, *MemStore) {
	t.Helper()
	store := &MemStore{}
	c, err := New(store, maxSize, ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, store
}

func TestCacheSetGet(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	c.Set("attention is all you need::2017::", "@inproceedings{...}")

	got, ok := c.Get("attention is all you need::2017::")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "@inproceedings{...}" {
		t.Errorf("got %q", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCacheEntryLifetimeRespectsTTL(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetWithTTL("k", "v", time.Minute)

	// Just inside the lifetime.
	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL elapsed")
	}

	// Just past the lifetime: miss, and the entry is gone.
	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry served after its TTL elapsed")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed, size=%d", c.Size())
	}

	stats := c.Stats()
	if stats.ExpiredEntries != 1 {
		t.Errorf("ExpiredEntries = %d, want 1", stats.ExpiredEntries)
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetWithTTL("k", "v", 0)

	c.now = func() time.Time { return base.Add(1000 * time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("permanent entry expired")
	}
}

func TestCacheBoundedLRUEviction(t *testing.T) {
	const maxSize = 5
	c, _ := newTestCache(t, maxSize, time.Hour)

	for i := 0; i < maxSize+3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "v")
	}

	if c.Size() != maxSize {
		t.Fatalf("size = %d, want %d", c.Size(), maxSize)
	}

	// The most recent maxSize insertions survive; the oldest were evicted.
	for i := 0; i < 3; i++ {
		if _, ok := c.Get(fmt.Sprintf("key-%d", i)); ok {
			t.Errorf("key-%d should have been evicted", i)
		}
	}
	for i := 3; i < maxSize+3; i++ {
		if _, ok := c.Get(fmt.Sprintf("key-%d", i)); !ok {
			t.Errorf("key-%d missing", i)
		}
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c, _ := newTestCache(t, 3, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch "a" so "b" is now least recently used.
	c.Get("a")
	c.Set("d", "4")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived after being touched")
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")

	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
	got, _ := c.Get("a")
	if got != "updated" {
		t.Errorf("a = %q, want updated", got)
	}
}

func TestCacheNegativeResultCaching(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	// A stored empty value is a hit: the resolver uses this to remember
	// failed lookups.
	c.Set("nonexistent paper::2020::", "")
	got, ok := c.Get("nonexistent paper::2020::")
	if !ok {
		t.Fatal("expected hit for negative entry")
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCacheStats(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Get("missing")

	s := c.Stats()
	if s.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", s.TotalRequests)
	}
	if s.HitRate != 0.5 || s.MissRate != 0.5 {
		t.Errorf("rates = %v/%v, want 0.5/0.5", s.HitRate, s.MissRate)
	}
	if s.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", s.TotalEntries)
	}
	if s.MaxSize != 10 {
		t.Errorf("MaxSize = %d, want 10", s.MaxSize)
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetWithTTL("old", "v", time.Minute)
	c.SetWithTTL("fresh", "v", time.Hour)

	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Clear()

	if c.Size() != 0 {
		t.Errorf("size = %d after clear", c.Size())
	}
	if s := c.Stats(); s.TotalRequests != 0 {
		t.Errorf("counters survived clear: %+v", s)
	}
}

func TestCacheSurvivesSaveFailure(t *testing.T) {
	store := &MemStore{FailSaves: true}
	c, err := New(store, 10, time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.Set("a", "1")

	// The write failed but the in-memory state is authoritative.
	got, ok := c.Get("a")
	if !ok || got != "1" {
		t.Errorf("got %q ok=%v after failed save", got, ok)
	}
	if store.Saves == 0 {
		t.Error("Save was never attempted")
	}
}

func TestCachePersistenceRoundTrip(t *testing.T) {
	store := &MemStore{}
	c, _ := New(store, 10, time.Hour)

	c.Set("a", "1")
	c.SetWithTTL("b", "2", 0)

	reloaded, err := New(store, 10, time.Hour)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok := reloaded.Get(key); !ok {
			t.Errorf("%s missing after reload", key)
		}
	}
}

func TestCacheLoadDropsExpired(t *testing.T) {
	store := &MemStore{}
	store.records = []Record{
		{Key: "stale", Entry: Entry{Value: "v", TTL: time.Minute, CreatedAt: time.Now().Add(-time.Hour)}},
		{Key: "fresh", Entry: Entry{Value: "v", TTL: time.Hour, CreatedAt: time.Now()}},
		{Key: "", Entry: Entry{Value: "bad"}},
	}

	c, err := New(store, 10, time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry lost on load")
	}
}

func TestCacheKeysMostRecentFirst(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")

	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
}

func TestCacheRecencySurvivesFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := New(NewFileStore(path), 10, time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")

	reloaded, err := New(NewFileStore(path), 10, time.Hour)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Size() != 1 {
		t.Fatalf("size = %d, want 1", reloaded.Size())
	}
	if _, ok := reloaded.Get("b"); !ok {
		t.Error("b missing after round trip")
	}
}
