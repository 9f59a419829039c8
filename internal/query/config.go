package query

// Config tunes a query Engine, mirroring the original QueryConfig's
// enable_reasoning/enable_caching/enable_parallel/max_results/cache_size
// fields (the result cache's config-flags key is built from
// EnableReasoning, EnableParallel and MaxResults).
type Config struct {
	EnableReasoning bool
	EnableCaching   bool
	EnableParallel  bool
	MaxResults      int // 0 means unbounded
	CacheSize       int
}

// DefaultConfig mirrors reasoner.DefaultConfig's tuning philosophy
// (caching and a bounded cache on by default, parallel execution opt-in
// since it only pays off for multi-branch Union/BGP patterns).
func DefaultConfig() Config {
	return Config{
		EnableReasoning: true,
		EnableCaching:   true,
		EnableParallel:  false,
		MaxResults:      0,
		CacheSize:       1000,
	}
}
