package provenance

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// poolItem wraps a pending transaction with its position in the pool's
// priority heap. Grounded on the teacher's txItem/txPriorityQueue in
// core/transactions.go, generalized from a gas-price priority to the
// timestamp-ordered, capacity-bounded pool spec.md §4.8 describes.
type poolItem struct {
	tx    *Transaction
	index int
}

// poolQueue orders pending transactions oldest-first (by TimestampNanos):
// a min-heap built like the teacher's txPriorityQueue but keyed on
// recency instead of gas price, since §4.8 evicts by age under pressure
// rather than by fee.
type poolQueue []*poolItem

func (q poolQueue) Len() int { return len(q) }
func (q poolQueue) Less(i, j int) bool {
	return q[i].tx.TimestampNanos < q[j].tx.TimestampNanos
}
func (q poolQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *poolQueue) Push(x any) {
	it := x.(*poolItem)
	it.index = len(*q)
	*q = append(*q, it)
}
func (q *poolQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

// Pool is a capacity-bounded transaction mem-pool. When a pool at capacity
// receives a new valid transaction, the oldest pending transaction is
// evicted to make room (spec.md §4.8's priority-based eviction, here
// "priority" meaning age rather than fee since the pool carries no gas
// market).
type Pool struct {
	mu       sync.RWMutex
	capacity int
	byID     map[uuid.UUID]*poolItem
	queue    poolQueue
}

// NewPool constructs a Pool bounded to at most capacity pending
// transactions.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Pool{
		capacity: capacity,
		byID:     make(map[uuid.UUID]*poolItem),
		queue:    make(poolQueue, 0),
	}
}

// Add validates tx and inserts it into the pool, evicting the oldest
// pending transaction first if the pool is already at capacity. resolveInput
// is forwarded to Transaction.Validate for the Transfer balance rule; it may
// be nil.
func (p *Pool) Add(tx *Transaction, resolveInput func(uuid.UUID, int) (float64, bool)) error {
	if tx == nil {
		return fmt.Errorf("nil transaction")
	}
	if err := tx.Validate(resolveInput); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byID[tx.ID]; exists {
		return fmt.Errorf("transaction %s already in pool", tx.ID)
	}

	if len(p.queue) >= p.capacity {
		evicted := heap.Pop(&p.queue).(*poolItem)
		delete(p.byID, evicted.tx.ID)
	}

	item := &poolItem{tx: tx}
	heap.Push(&p.queue, item)
	p.byID[tx.ID] = item
	return nil
}

// Pick removes and returns up to max pending transactions, oldest first, for
// inclusion in the next block. max <= 0 picks every pending transaction.
func (p *Pool) Pick(max int) []*Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	if max <= 0 || max > len(p.queue) {
		max = len(p.queue)
	}
	out := make([]*Transaction, 0, max)
	for i := 0; i < max; i++ {
		item := heap.Pop(&p.queue).(*poolItem)
		delete(p.byID, item.tx.ID)
		out = append(out, item.tx)
	}
	return out
}

// Snapshot returns a copy of every transaction currently pending, in no
// particular order.
func (p *Pool) Snapshot() []*Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Transaction, len(p.queue))
	for i, item := range p.queue {
		out[i] = item.tx
	}
	return out
}

// Len reports the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.queue)
}
