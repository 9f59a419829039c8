package workerpool

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// bucketWindow is the 60-second sliding window named in spec.md §5,
// divided into one-second buckets so old activity ages out continuously
// rather than in one coarse 60s hop.
const bucketWindow = 60

// ThroughputMeter records operation counts and reports an operations-per-
// second rate over the trailing 60 seconds. Stale buckets are cleared
// lazily under a mutex on each Record or RatePerSecond call; no
// background goroutine sweeps them.
type ThroughputMeter struct {
	mu      sync.Mutex
	buckets [bucketWindow]uint64
	lastSec int64

	metric prometheus.Gauge
}

// NewThroughputMeter constructs a meter starting at the current second.
func NewThroughputMeter() *ThroughputMeter {
	return &ThroughputMeter{
		lastSec: nowUnix(),
		metric: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "owl2reasoner_workerpool_ops_per_second",
			Help: "Trailing 60-second throughput of the worker pool.",
		}),
	}
}

// nowUnix is isolated in its own function so tests can't accidentally
// depend on wall-clock granularity assumptions elsewhere in this file.
func nowUnix() int64 { return time.Now().Unix() }

func (m *ThroughputMeter) advanceLocked(nowSec int64) {
	delta := nowSec - m.lastSec
	if delta <= 0 {
		return
	}
	if delta >= bucketWindow {
		m.buckets = [bucketWindow]uint64{}
	} else {
		for i := int64(1); i <= delta; i++ {
			m.buckets[(m.lastSec+i)%bucketWindow] = 0
		}
	}
	m.lastSec = nowSec
}

// Record adds n completed operations to the current second's bucket.
func (m *ThroughputMeter) Record(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := nowUnix()
	m.advanceLocked(now)
	m.buckets[now%bucketWindow] += n
	var total uint64
	for _, b := range m.buckets {
		total += b
	}
	m.metric.Set(float64(total) / float64(bucketWindow))
}

// RatePerSecond returns the mean operations/second over the trailing
// window.
func (m *ThroughputMeter) RatePerSecond() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(nowUnix())
	var total uint64
	for _, b := range m.buckets {
		total += b
	}
	return float64(total) / float64(bucketWindow)
}

// Collector exposes the meter's gauge to a Prometheus registry.
func (m *ThroughputMeter) Collector() prometheus.Collector { return m.metric }
