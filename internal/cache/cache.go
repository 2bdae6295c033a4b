// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements the resolution cache: a TTL-aware, LRU-bounded
// key/value store persisted through a pluggable backend. Every provider
// lookup goes through this cache, so repeated resolution of the same
// (title, year, doi) triple is answered without network traffic.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry is one cached value with its expiry metadata. A zero TTL means the
// entry never expires.
type Entry struct {
	Value     string
	TTL       time.Duration
	CreatedAt time.Time
}

// Expired reports whether the entry's lifetime has elapsed at now.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.CreatedAt) > e.TTL
}

// Record pairs a cache key with its entry for persistence. Stores return
// records ordered least- to most-recently used where the backend can
// preserve order; otherwise order is arbitrary.
type Record struct {
	Key string
	Entry
}

// Store persists the cache entry set. Save receives the full non-expired
// set ordered least- to most-recently used. Implementations must treat a
// missing or corrupt backing store as empty rather than failing Load.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// Stats reports cache effectiveness counters.
type Stats struct {
	HitRate        float64 `json:"hit_rate"`
	MissRate       float64 `json:"miss_rate"`
	TotalRequests  int     `json:"total_requests"`
	TotalEntries   int     `json:"total_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	MaxSize        int     `json:"max_size"`
}

// Cache is a TTL+LRU cache safe for concurrent use. Disk write failures are
// swallowed: the in-memory state stays authoritative for the process
// lifetime.
type Cache struct {
	mu         sync.Mutex
	store      Store
	maxSize    int
	defaultTTL time.Duration

	order   *list.List // front = most recently used
	entries map[string]*list.Element

	hits    int
	misses  int
	expired int

	// now is the clock, overridable in tests.
	now func() time.Time
}

type node struct {
	key   string
	entry Entry
}

const (
	// DefaultMaxSize bounds the entry count before LRU eviction.
	DefaultMaxSize = 1000
	// DefaultTTL is the entry lifetime when the caller does not choose one.
	DefaultTTL = 24 * time.Hour
)

// New creates a cache backed by store. Entries already expired or
// structurally invalid in the store are silently dropped; a corrupt store
// loads as empty. maxSize <= 0 and defaultTTL <= 0 select the defaults.
func New(store Store, maxSize int, defaultTTL time.Duration) (*Cache, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	c := &Cache{
		store:      store,
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}

	records, err := store.Load()
	if err != nil {
		return nil, err
	}
	now := c.now()
	for _, r := range records {
		if r.Key == "" || r.Entry.Expired(now) {
			continue
		}
		// Records arrive LRU-first, so pushing to the front preserves order.
		c.entries[r.Key] = c.order.PushFront(&node{key: r.Key, entry: r.Entry})
	}

	return c, nil
}

// Get returns the cached value for key. An expired entry is removed and
// counted as a miss. A hit moves the key to the most-recently-used position.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	n := el.Value.(*node)
	if n.entry.Expired(c.now()) {
		c.removeLocked(key, el)
		c.expired++
		c.misses++
		c.persistLocked()
		return "", false
	}

	c.order.MoveToFront(el)
	c.hits++
	return n.entry.Value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key, value string) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key. A ttl <= 0 makes the entry permanent.
// The key becomes the most recently used; if the insert pushes the cache
// past its size bound, the least-recently-used entry is evicted.
func (c *Cache) SetWithTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{Value: value, TTL: ttl, CreatedAt: c.now()}

	if el, ok := c.entries[key]; ok {
		el.Value.(*node).entry = entry
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&node{key: key, entry: entry})
		if c.order.Len() > c.maxSize {
			c.evictLocked()
		}
	}

	c.persistLocked()
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(key, el)
	c.persistLocked()
	return true
}

// CleanupExpired eagerly removes all expired entries and returns the count.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var stale []*list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		if el.Value.(*node).entry.Expired(now) {
			stale = append(stale, el)
		}
	}
	for _, el := range stale {
		n := el.Value.(*node)
		c.removeLocked(n.key, el)
		c.expired++
	}
	if len(stale) > 0 {
		c.persistLocked()
	}
	return len(stale)
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.hits, c.misses, c.expired = 0, 0, 0
	c.persistLocked()
}

// Size returns the current entry count, expired entries included until
// their lazy or eager removal.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns all keys ordered most- to least-recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*node).key)
	}
	return keys
}

// Stats returns hit/miss rates and entry counts.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalRequests:  c.hits + c.misses,
		TotalEntries:   c.order.Len(),
		ExpiredEntries: c.expired,
		MaxSize:        c.maxSize,
	}
	if s.TotalRequests > 0 {
		s.HitRate = float64(c.hits) / float64(s.TotalRequests)
		s.MissRate = float64(c.misses) / float64(s.TotalRequests)
	}
	return s
}

func (c *Cache) evictLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.removeLocked(back.Value.(*node).key, back)
}

func (c *Cache) removeLocked(key string, el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, key)
}

// persistLocked writes the full non-expired set to the store. Failures are
// swallowed; the in-memory cache remains authoritative.
func (c *Cache) persistLocked() {
	now := c.now()
	records := make([]Record, 0, c.order.Len())
	// Walk back-to-front so the store receives LRU-first order.
	for el := c.order.Back(); el != nil; el = el.Prev() {
		n := el.Value.(*node)
		if n.entry.Expired(now) {
			continue
		}
		records = append(records, Record{Key: n.key, Entry: n.entry})
	}
	_ = c.store.Save(records)
}
