package provenance

import (
	"crypto/ed25519"
	"testing"

	"github.com/google/uuid"
)

func productionTx(t *testing.T, priv ed25519.PrivateKey, ts int64) *Transaction {
	t.Helper()
	tx := &Transaction{
		ID:             uuid.New(),
		Kind:           Production,
		Outputs:        []Output{{ID: "o", Owner: "alice", Value: 1}},
		Payload:        Payload{GovernanceAction: "produce"},
		TimestampNanos: ts,
	}
	tx.Sign(priv)
	return tx
}

func TestPoolAddRejectsInvalidTransaction(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	p := NewPool(10)
	tx := &Transaction{ID: uuid.New(), Kind: Production, Payload: Payload{GovernanceAction: "produce"}}
	tx.Sign(priv)
	if err := p.Add(tx, nil); err == nil {
		t.Fatalf("expected a Production transaction with no outputs to be rejected at insertion")
	}
	if p.Len() != 0 {
		t.Fatalf("expected the pool to remain empty, got %d", p.Len())
	}
}

func TestPoolRejectsDuplicateID(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	p := NewPool(10)
	tx := productionTx(t, priv, 1)
	if err := p.Add(tx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Add(tx, nil); err == nil {
		t.Fatalf("expected a duplicate transaction id to be rejected")
	}
}

func TestPoolEvictsOldestOnOverflow(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	p := NewPool(2)
	oldest := productionTx(t, priv, 1)
	middle := productionTx(t, priv, 2)
	newest := productionTx(t, priv, 3)

	if err := p.Add(oldest, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Add(middle, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Add(newest, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected pool capacity to remain bounded at 2, got %d", p.Len())
	}

	snap := p.Snapshot()
	for _, tx := range snap {
		if tx.ID == oldest.ID {
			t.Fatalf("expected the oldest transaction to have been evicted")
		}
	}
}

func TestPoolPickReturnsOldestFirst(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	p := NewPool(10)
	first := productionTx(t, priv, 1)
	second := productionTx(t, priv, 2)
	if err := p.Add(second, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Add(first, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	picked := p.Pick(1)
	if len(picked) != 1 || picked[0].ID != first.ID {
		t.Fatalf("expected Pick to return the oldest-timestamped transaction first")
	}
	if p.Len() != 1 {
		t.Fatalf("expected one transaction to remain pending, got %d", p.Len())
	}
}
