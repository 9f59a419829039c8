package query

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineStats accumulates the counters the original engine's
// QueryEngineStats tracked (success/failure/cache hit-miss/timing),
// exported as both a plain snapshot and Prometheus counters, matching the
// pattern workerpool.ThroughputMeter and cache.Cache already establish
// for this codebase's observability surface.
type EngineStats struct {
	mu                sync.Mutex
	totalQueries      uint64
	successfulQueries uint64
	failedQueries     uint64
	cacheHits         uint64
	cacheMisses       uint64
	parallelRuns      uint64
	totalTimeMS       uint64

	metricTotal prometheus.Counter
	metricFail  prometheus.Counter
}

// NewEngineStats constructs a zeroed stats tracker.
func NewEngineStats() *EngineStats {
	return &EngineStats{
		metricTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owl2reasoner_query_total",
			Help: "Total query executions submitted to the engine.",
		}),
		metricFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owl2reasoner_query_failed_total",
			Help: "Query executions that returned an error.",
		}),
	}
}

func (s *EngineStats) recordSuccess(elapsedMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
	s.successfulQueries++
	s.totalTimeMS += uint64(elapsedMS)
	s.metricTotal.Inc()
}

func (s *EngineStats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
	s.failedQueries++
	s.metricTotal.Inc()
	s.metricFail.Inc()
}

func (s *EngineStats) recordCacheHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheHits++
}

func (s *EngineStats) recordCacheMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheMisses++
}

func (s *EngineStats) recordParallel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parallelRuns++
}

func (s *EngineStats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries, s.successfulQueries, s.failedQueries = 0, 0, 0
	s.cacheHits, s.cacheMisses, s.parallelRuns, s.totalTimeMS = 0, 0, 0, 0
}

// EngineStatsSnapshot is a point-in-time, lock-free copy of EngineStats.
type EngineStatsSnapshot struct {
	TotalQueries      uint64
	SuccessfulQueries uint64
	FailedQueries     uint64
	CacheHits         uint64
	CacheMisses       uint64
	ParallelRuns      uint64
}

// AverageTimeMS returns the mean wall-clock time of successful queries,
// or 0 if none have completed yet.
func (s EngineStatsSnapshot) AverageTimeMS(totalTimeMS uint64) float64 {
	if s.SuccessfulQueries == 0 {
		return 0
	}
	return float64(totalTimeMS) / float64(s.SuccessfulQueries)
}

func (s *EngineStats) snapshot() (EngineStatsSnapshot, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngineStatsSnapshot{
		TotalQueries:      s.totalQueries,
		SuccessfulQueries: s.successfulQueries,
		FailedQueries:     s.failedQueries,
		CacheHits:         s.cacheHits,
		CacheMisses:       s.cacheMisses,
		ParallelRuns:      s.parallelRuns,
	}, s.totalTimeMS
}

// Collectors exposes the engine's Prometheus counters for registration
// alongside cache.Cache.Collector() and workerpool's gauge.
func (s *EngineStats) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.metricTotal, s.metricFail}
}

func nowMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
