// Package cache implements the bounded, generic cache described in
// spec.md §4.1 (C2): a configurable max size, pluggable eviction strategy
// fixed at construction, and lock-free atomic statistics. It backs the
// reasoner's decision caches, the query engine's result cache, the
// profile validator's cache, and the canonicalization cache.
package cache

import (
	"container/list"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/provchain-labs/owl2reasoner/internal/errs"
)

// Strategy selects which eviction policy a Cache uses. Fixed at
// construction per spec.md §4.1 ("strategy choice is fixed at
// construction").
type Strategy int

const (
	LRU Strategy = iota
	LFU
	FIFO
	Random
)

func (s Strategy) String() string {
	switch s {
	case LRU:
		return "LRU"
	case LFU:
		return "LFU"
	case FIFO:
		return "FIFO"
	case Random:
		return "Random"
	default:
		return "Unknown"
	}
}

// Config enumerates the cache's tunables (spec.md §4.1).
type Config struct {
	MaxSize                  int
	EnableStats              bool
	EnableMemoryPressure     bool
	MemoryPressureThreshold  float64 // ConfigBuilder clamps it to [0.1, 0.95]; New does not
	CleanupInterval          time.Duration
	Strategy                 Strategy
}

// DefaultConfig mirrors the Rust original's Default impl: a sensible
// max_size with stats and memory-pressure detection off.
func DefaultConfig() Config {
	return Config{
		MaxSize:                 10_000,
		EnableStats:             false,
		EnableMemoryPressure:    false,
		MemoryPressureThreshold: 0.8,
		CleanupInterval:         60 * time.Second,
		Strategy:                LRU,
	}
}

// ConfigBuilder is the fluent builder carried over from the Rust
// original's CacheConfigBuilder (SPEC_FULL.md "SUPPLEMENTED FEATURES").
type ConfigBuilder struct{ cfg Config }

func NewConfigBuilder() *ConfigBuilder { return &ConfigBuilder{cfg: DefaultConfig()} }

func (b *ConfigBuilder) MaxSize(n int) *ConfigBuilder { b.cfg.MaxSize = n; return b }
func (b *ConfigBuilder) EnableStats(v bool) *ConfigBuilder { b.cfg.EnableStats = v; return b }
func (b *ConfigBuilder) EnableMemoryPressure(v bool) *ConfigBuilder {
	b.cfg.EnableMemoryPressure = v
	return b
}
func (b *ConfigBuilder) MemoryPressureThreshold(t float64) *ConfigBuilder {
	if t < 0.1 {
		t = 0.1
	}
	if t > 0.95 {
		t = 0.95
	}
	b.cfg.MemoryPressureThreshold = t
	return b
}
func (b *ConfigBuilder) CleanupInterval(d time.Duration) *ConfigBuilder {
	b.cfg.CleanupInterval = d
	return b
}
func (b *ConfigBuilder) WithStrategy(s Strategy) *ConfigBuilder { b.cfg.Strategy = s; return b }
func (b *ConfigBuilder) Build() Config                          { return b.cfg }

// entryMeta carries the per-entry bookkeeping named in spec.md §3.7:
// created-at, last-accessed, access-count, estimated size.
type entryMeta struct {
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  uint64
	estimateSize int
}

type record[V any] struct {
	value V
	meta  entryMeta
	// accessElem/insertElem are this entry's node in the two order lists
	// (spec.md §4.1: "two order lists... to support strategy switching
	// without reshaping"). Only the list matching the active strategy is
	// consulted for eviction, but both are always maintained.
	accessElem  *list.Element
	insertElem  *list.Element
}

// Stats is the lock-free, monotonic statistics counters of spec.md §4.1(c).
type Stats struct {
	hits      atomicU64
	misses    atomicU64
	evictions atomicU64
	inserts   atomicU64
}

// Snapshot is a point-in-time read of Stats.
type Snapshot struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Inserts   uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:      s.hits.load(),
		Misses:    s.misses.load(),
		Evictions: s.evictions.load(),
		Inserts:   s.inserts.load(),
	}
}

func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a generic, bounded, single-reader-writer-lock cache with a
// fixed eviction strategy. K must be comparable.
type Cache[K comparable, V any] struct {
	name   string
	cfg    Config
	mu     sync.RWMutex
	data   map[K]*record[V]
	access *list.List // front = most-recently-used, for LRU
	insert *list.List // front = oldest-inserted, for FIFO
	stats  Stats

	metricSize prometheus.Gauge
}

// New constructs a Cache. name is used as the Prometheus metric label,
// matching how core/system_health_logging.go labels its node gauges.
func New[K comparable, V any](name string, cfg Config) *Cache[K, V] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	c := &Cache[K, V]{
		name:   name,
		cfg:    cfg,
		data:   make(map[K]*record[V], cfg.MaxSize),
		access: list.New(),
		insert: list.New(),
	}
	c.metricSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "owl2reasoner_cache_entries",
		Help:        "Number of entries currently held by a bounded cache.",
		ConstLabels: prometheus.Labels{"cache": name},
	})
	return c
}

// listElem is stored in both order lists; it lets us map a list.Element
// back to its key without a second lookup, the way hashicorp/golang-lru's
// simplelru.entry does for its own single order list.
type listElem[K comparable] struct{ key K }

// Get returns the value for key, or ok=false on a miss. When stats are
// enabled, a hit is recorded and the entry's access metadata/ordering is
// refreshed; with stats disabled, a hit leaves both untouched.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	rec, ok := c.data[key]
	if !ok {
		c.mu.RUnlock()
		if c.cfg.EnableStats {
			c.stats.misses.add(1)
		}
		var zero V
		return zero, false
	}
	val := rec.value
	c.mu.RUnlock()

	if c.cfg.EnableStats {
		c.stats.hits.add(1)
	}
	// Upgrade to an exclusive lock only to refresh access metadata, per
	// spec.md §4.1 ("metadata updates after a read require upgrading to
	// an exclusive lock only when statistics are enabled").
	if c.cfg.EnableStats {
		c.mu.Lock()
		if rec, ok := c.data[key]; ok {
			rec.meta.lastAccessed = time.Now()
			rec.meta.accessCount++
			c.access.MoveToFront(rec.accessElem)
		}
		c.mu.Unlock()
	}
	return val, true
}

// Insert stores value under key, evicting ceil(maxSize/10) entries first
// if the cache is already full (spec.md §4.1(b)).
func (c *Cache[K, V]) Insert(key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(key, value, 0)
}

func (c *Cache[K, V]) insertLocked(key K, value V, estimateSize int) error {
	if existing, ok := c.data[key]; ok {
		existing.value = value
		existing.meta.lastAccessed = time.Now()
		c.access.MoveToFront(existing.accessElem)
		return nil
	}

	if len(c.data) >= c.cfg.MaxSize {
		if err := c.evictLocked(); err != nil {
			return err
		}
	}

	now := time.Now()
	rec := &record[V]{value: value, meta: entryMeta{createdAt: now, lastAccessed: now, accessCount: 0, estimateSize: estimateSize}}
	rec.accessElem = c.access.PushFront(listElem[K]{key: key})
	rec.insertElem = c.insert.PushBack(listElem[K]{key: key})
	c.data[key] = rec

	if c.cfg.EnableStats {
		c.stats.inserts.add(1)
	}
	c.metricSize.Set(float64(len(c.data)))

	if len(c.data) > c.cfg.MaxSize {
		return &errs.CacheError{Operation: "insert", Message: "cache exceeded max_size after eviction"}
	}
	return nil
}

// evictLocked removes ceil(maxSize/10) (at least one) entries per the
// active strategy. Caller must hold c.mu for writing.
func (c *Cache[K, V]) evictLocked() error {
	toEvict := (c.cfg.MaxSize + 9) / 10
	if toEvict < 1 {
		toEvict = 1
	}
	if toEvict > len(c.data) {
		toEvict = len(c.data)
	}

	var keys []K
	switch c.cfg.Strategy {
	case LRU:
		for e := c.access.Back(); e != nil && len(keys) < toEvict; e = e.Prev() {
			keys = append(keys, e.Value.(listElem[K]).key)
		}
	case FIFO:
		for e := c.insert.Front(); e != nil && len(keys) < toEvict; e = e.Next() {
			keys = append(keys, e.Value.(listElem[K]).key)
		}
	case LFU:
		all := make([]countEntry[K], 0, len(c.data))
		for k, rec := range c.data {
			all = append(all, countEntry[K]{key: k, count: rec.meta.accessCount})
		}
		sortByCountAsc(all)
		for i := 0; i < toEvict && i < len(all); i++ {
			keys = append(keys, all[i].key)
		}
	case Random:
		all := make([]K, 0, len(c.data))
		for k := range c.data {
			all = append(all, k)
		}
		rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		if toEvict > len(all) {
			toEvict = len(all)
		}
		keys = all[:toEvict]
	default:
		return &errs.CacheError{Operation: "evict", Message: "unknown eviction strategy"}
	}

	for _, k := range keys {
		c.removeLocked(k)
		if c.cfg.EnableStats {
			c.stats.evictions.add(1)
		}
	}
	return nil
}

// countEntry pairs a key with its access count for LFU ranking.
type countEntry[K any] struct {
	key   K
	count uint64
}

func sortByCountAsc[K any](items []countEntry[K]) {
	// insertion sort: eviction batches are always small (ceil(maxSize/10)
	// of the *whole* cache, but this runs over every entry to rank them,
	// so keep it simple and allocation-free for the common small-cache
	// case; larger inputs (over 64 entries) go through an O(n log n)
	// quicksort instead).
	if len(items) > 64 {
		sortByCountAscLarge(items)
		return
	}
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && items[j-1].count > items[j].count {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
}

func sortByCountAscLarge[K any](items []countEntry[K]) {
	quickSortByCount(items, 0, len(items)-1)
}

func quickSortByCount[K any](items []countEntry[K], lo, hi int) {
	if lo >= hi {
		return
	}
	pivot := items[(lo+hi)/2].count
	i, j := lo, hi
	for i <= j {
		for items[i].count < pivot {
			i++
		}
		for items[j].count > pivot {
			j--
		}
		if i <= j {
			items[i], items[j] = items[j], items[i]
			i++
			j--
		}
	}
	quickSortByCount(items, lo, j)
	quickSortByCount(items, i, hi)
}

// removeLocked deletes key and unlinks it from both order lists. Caller
// must hold c.mu for writing.
func (c *Cache[K, V]) removeLocked(key K) {
	rec, ok := c.data[key]
	if !ok {
		return
	}
	c.access.Remove(rec.accessElem)
	c.insert.Remove(rec.insertElem)
	delete(c.data, key)
}

// Remove deletes key if present.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
	c.metricSize.Set(float64(len(c.data)))
}

// Clear empties the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]*record[V], c.cfg.MaxSize)
	c.access.Init()
	c.insert.Init()
	c.metricSize.Set(0)
}

// Len returns the current number of entries. Invariant (a) of spec.md
// §4.1 guarantees this never exceeds MaxSize.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[K, V]) Stats() Snapshot { return c.stats.Snapshot() }

// Collector exposes the cache's size gauge to a Prometheus registry.
func (c *Cache[K, V]) Collector() prometheus.Collector { return c.metricSize }
