package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/cache"
)

// resultCache memoizes QueryResults by hash(pattern) ∥ hash(config-flags)
// ∥ the bound ontology's generation, per spec.md §4.5. Folding the
// generation into the key gets "any ontology mutation invalidates all
// entries" for free — a stale generation's entries simply become
// unreachable rather than needing an explicit sweep, the same trick
// reasoner.generationKey uses for its decision caches.
type resultCache struct {
	c *cache.Cache[string, *QueryResult]
}

func newResultCache(maxSize int) *resultCache {
	cfg := cache.NewConfigBuilder().MaxSize(maxSize).EnableStats(true).WithStrategy(cache.LRU).Build()
	return &resultCache{c: cache.New[string, *QueryResult]("query_results", cfg)}
}

// patternHash returns a short, stable digest of a pattern's canonical
// textual form.
func patternHash(p *QueryPattern) string {
	sum := sha256.Sum256([]byte(p.key()))
	return hex.EncodeToString(sum[:8])
}

// configHash digests the config flags that affect a query's result set
// (reasoning/parallel/max_results — caching itself doesn't change the
// answer, only whether one is memoized, so it's excluded).
func configHash(cfg Config) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("r%v|p%v|m%d", cfg.EnableReasoning, cfg.EnableParallel, cfg.MaxResults)))
	return hex.EncodeToString(sum[:8])
}

func cacheKey(patHash, cfgHash string, generation uint64) string {
	return fmt.Sprintf("g%d|%s|%s", generation, patHash, cfgHash)
}

func (rc *resultCache) get(key string) (*QueryResult, bool) {
	return rc.c.Get(key)
}

func (rc *resultCache) put(key string, r *QueryResult) {
	rc.c.Insert(key, r)
}

func (rc *resultCache) clear() {
	rc.c.Clear()
}

// stats exposes (entries, evictions) the way the original engine's
// cache_stats() exposed (cache_size, pattern_size), for CLI/introspection
// callers.
func (rc *resultCache) stats() (entries int, evictions int) {
	snap := rc.c.Stats()
	return rc.c.Len(), int(snap.Evictions)
}
