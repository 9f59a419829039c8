package cache

import "sync/atomic"

// atomicU64 is a thin wrapper over atomic.Uint64 used for the cache's
// monotonic statistics counters (spec.md §4.1(c): "statistics updates are
// lock-free and monotonic").
type atomicU64 struct{ v atomic.Uint64 }

func (a *atomicU64) add(delta uint64) { a.v.Add(delta) }
func (a *atomicU64) load() uint64     { return a.v.Load() }
