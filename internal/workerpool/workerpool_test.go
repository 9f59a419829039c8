package workerpool

import (
	"context"
	"testing"
)

func TestPoolDoReturnsResult(t *testing.T) {
	p := New(4)
	defer p.Shutdown()

	v, err := p.Do(context.Background(), TaskCanonicalize, func(ctx context.Context) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(int) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestParallelMapPreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out, err := ParallelMap(context.Background(), items, 3, func(ctx context.Context, item int) (int, error) {
		return item * item, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, item := range items {
		if out[i] != item*item {
			t.Fatalf("index %d: expected %d, got %d", i, item*item, out[i])
		}
	}
}

func TestThroughputMeterRecordsOps(t *testing.T) {
	m := NewThroughputMeter()
	m.Record(10)
	if m.RatePerSecond() <= 0 {
		t.Fatalf("expected positive rate after recording ops")
	}
}

func TestScopedLock(t *testing.T) {
	var s ScopedLock
	var n int
	func() {
		unlock := s.Lock()
		defer unlock()
		n = 1
	}()
	if n != 1 {
		t.Fatalf("expected critical section to have run")
	}
}
