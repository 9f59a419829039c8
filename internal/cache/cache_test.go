package cache

import "testing"

func TestInsertRespectsMaxSize(t *testing.T) {
	cfg := NewConfigBuilder().MaxSize(10).EnableStats(true).WithStrategy(LRU).Build()
	c := New[int, int]("test-lru", cfg)
	for i := 0; i < 100; i++ {
		if err := c.Insert(i, i*i); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if c.Len() > cfg.MaxSize {
			t.Fatalf("cache exceeded max size: %d > %d", c.Len(), cfg.MaxSize)
		}
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	cfg := NewConfigBuilder().MaxSize(10).WithStrategy(LRU).Build()
	c := New[int, int]("test-lru-evict", cfg)
	for i := 0; i < 10; i++ {
		c.Insert(i, i)
	}
	// Touch everything except key 0, so it becomes the LRU victim.
	for i := 1; i < 10; i++ {
		c.Get(i)
	}
	c.Insert(100, 100) // triggers eviction of ceil(10/10)=1 entry
	if _, ok := c.Get(0); ok {
		t.Fatalf("expected key 0 (least recently used) to have been evicted")
	}
}

func TestFIFOEvictsOldestInserted(t *testing.T) {
	cfg := NewConfigBuilder().MaxSize(10).WithStrategy(FIFO).Build()
	c := New[int, int]("test-fifo", cfg)
	for i := 0; i < 10; i++ {
		c.Insert(i, i)
	}
	// Even after reading key 0 repeatedly, FIFO must still evict it first.
	for i := 0; i < 5; i++ {
		c.Get(0)
	}
	c.Insert(100, 100)
	if _, ok := c.Get(0); ok {
		t.Fatalf("expected key 0 (oldest inserted) to have been evicted under FIFO")
	}
}

func TestStatsMonotonic(t *testing.T) {
	cfg := NewConfigBuilder().MaxSize(5).EnableStats(true).Build()
	c := New[int, int]("test-stats", cfg)
	for i := 0; i < 5; i++ {
		c.Insert(i, i)
	}
	c.Get(0)
	c.Get(999) // miss
	s1 := c.Stats()
	c.Get(1)
	c.Get(998) // miss
	s2 := c.Stats()
	if s2.Hits < s1.Hits || s2.Misses < s1.Misses {
		t.Fatalf("stats must be monotonic: %+v -> %+v", s1, s2)
	}
	if s2.Hits == 0 || s2.Misses == 0 {
		t.Fatalf("expected nonzero hits and misses, got %+v", s2)
	}
}

func TestEvictionBatchIsCeilTenPercent(t *testing.T) {
	cfg := NewConfigBuilder().MaxSize(20).EnableStats(true).WithStrategy(FIFO).Build()
	c := New[int, int]("test-batch", cfg)
	for i := 0; i < 20; i++ {
		c.Insert(i, i)
	}
	c.Insert(1000, 1000) // forces exactly one eviction batch
	snap := c.Stats()
	if snap.Evictions != 2 { // ceil(20/10) = 2
		t.Fatalf("expected 2 evictions (ceil(20/10)), got %d", snap.Evictions)
	}
	if c.Len() > cfg.MaxSize {
		t.Fatalf("cache over max size after eviction: %d", c.Len())
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New[string, int]("test-clear", DefaultConfig())
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be removed")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", c.Len())
	}
}
