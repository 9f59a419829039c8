package workerpool

import "sync"

// ScopedLock wraps a sync.RWMutex so callers acquire and release within a
// single expression via defer, instead of threading lock/unlock calls
// through every accessor by hand — the same pattern the teacher applies
// implicitly at every `mu.Lock(); defer mu.Unlock()` call site, made
// reusable for the reasoner/query/ontology packages that all guard a
// single shared structure.
type ScopedLock struct {
	mu sync.RWMutex
}

// Lock acquires the exclusive lock and returns an unlock func for defer.
func (s *ScopedLock) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// RLock acquires the shared lock and returns an unlock func for defer.
func (s *ScopedLock) RLock() func() {
	s.mu.RLock()
	return s.mu.RUnlock
}
