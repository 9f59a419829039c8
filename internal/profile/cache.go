package profile

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"sync"

	"github.com/provchain-labs/owl2reasoner/internal/cache"
)

// CacheConfig tunes the validation-result cache, mirroring
// ProfileCacheConfig's primary-cache-size and compression-threshold
// knobs (the hot tier and TTL eviction the Rust AdvancedCacheManager
// also carries are dropped: this codebase's cache.Cache (C2) already
// gives LRU eviction and hit/miss stats, so a hot tier on top would only
// duplicate it).
type CacheConfig struct {
	MaxSize int
	// CompressionThreshold is the serialized-size cutoff, in bytes,
	// above which an entry is gzipped before being stored.
	CompressionThreshold int
}

// DefaultCacheConfig mirrors ProfileCacheConfig::default (1000 primary
// entries, 1KB compression threshold); the original's 1-hour TTL and
// hot-cache promotion threshold have no equivalent here since
// invalidation instead rides the bound cache.Cache's own eviction.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MaxSize: 1000, CompressionThreshold: 1024}
}

// ResultCache memoizes ValidationResults per Profile, transparently
// gzip-compressing entries whose JSON encoding exceeds the configured
// threshold, per spec.md §4.9 ("the cache is optionally compressed when
// an entry exceeds the configured threshold"). Grounded on
// AdvancedCacheManager's primary/compressed split in
// original_source/owl2-reasoner/src/profiles/cache.rs, simplified to two
// tiers since this codebase's cache.Cache already supplies the LRU
// primary tier.
type ResultCache struct {
	mu         sync.RWMutex
	primary    *cache.Cache[Profile, *ValidationResult]
	compressed map[Profile][]byte
	cfg        CacheConfig

	hits, misses, compressedHits uint64
}

// NewResultCache builds a ResultCache with the given configuration.
func NewResultCache(cfg CacheConfig) *ResultCache {
	ccfg := cache.NewConfigBuilder().MaxSize(cfg.MaxSize).EnableStats(true).WithStrategy(cache.LRU).Build()
	return &ResultCache{
		primary:    cache.New[Profile, *ValidationResult]("profile_results", ccfg),
		compressed: make(map[Profile][]byte),
		cfg:        cfg,
	}
}

// Get returns a cached result for p, decompressing it first if it was
// stored in the compressed tier.
func (rc *ResultCache) Get(p Profile) (*ValidationResult, bool) {
	if r, ok := rc.primary.Get(p); ok {
		rc.mu.Lock()
		rc.hits++
		rc.mu.Unlock()
		return r, true
	}

	rc.mu.RLock()
	blob, ok := rc.compressed[p]
	rc.mu.RUnlock()
	if ok {
		r, err := decompressResult(blob)
		if err == nil {
			rc.mu.Lock()
			rc.hits++
			rc.compressedHits++
			rc.mu.Unlock()
			return r, true
		}
	}

	rc.mu.Lock()
	rc.misses++
	rc.mu.Unlock()
	return nil, false
}

// Put stores r for p, compressing it into the secondary tier when its
// JSON encoding exceeds CompressionThreshold.
func (rc *ResultCache) Put(p Profile, r *ValidationResult) {
	encoded, err := json.Marshal(r)
	if err == nil && len(encoded) > rc.cfg.CompressionThreshold {
		if blob, cerr := compressBytes(encoded); cerr == nil {
			rc.mu.Lock()
			rc.compressed[p] = blob
			rc.mu.Unlock()
			return
		}
	}
	rc.primary.Insert(p, r)
}

// Clear empties both cache tiers and resets statistics.
func (rc *ResultCache) Clear() {
	rc.primary.Clear()
	rc.mu.Lock()
	rc.compressed = make(map[Profile][]byte)
	rc.hits, rc.misses, rc.compressedHits = 0, 0, 0
	rc.mu.Unlock()
}

// Stats returns (hits, misses, compressed-tier hits), matching
// CacheStatistics' hits/misses/compressed_hits fields.
func (rc *ResultCache) Stats() (hits, misses, compressedHits uint64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.hits, rc.misses, rc.compressedHits
}

func compressBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressResult(blob []byte) (*ValidationResult, error) {
	r, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var result ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
