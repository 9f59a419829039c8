package provenance

import (
	"crypto/ed25519"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func sampleTx(t *testing.T, priv ed25519.PrivateKey, ts int64) *Transaction {
	t.Helper()
	graphName, err := iri.Intern("http://example.org/batch1")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	harvested, err := iri.Intern("http://example.org/harvestedBy")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	lit, err := entity.NewLiteral("farm-7", iri.XsdString, "")
	if err != nil {
		t.Fatalf("literal: %v", err)
	}
	graph := &canon.NamedGraph{
		Name: graphName,
		Triples: []canon.Triple{
			{Subject: canon.BlankTerm("b0"), Predicate: harvested, Object: canon.LiteralTerm(lit)},
		},
	}
	tx := &Transaction{
		ID:             uuid.New(),
		Kind:           Production,
		Outputs:        []Output{{ID: "o1", Owner: "farm-7", AssetKind: "cacao", Value: 250, Metadata: map[string]string{"lot": "A1"}}},
		Payload:        Payload{Graph: graph},
		TimestampNanos: ts,
	}
	tx.Sign(priv)
	return tx
}

func TestEncodeDecodeTxRoundTrips(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := sampleTx(t, priv, 1)

	raw, err := EncodeTx(tx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeTx(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != tx.ID || got.Kind != tx.Kind || len(got.Outputs) != 1 {
		t.Fatalf("decoded transaction does not match original: %+v", got)
	}
	if got.Outputs[0].Value != tx.Outputs[0].Value {
		t.Fatalf("output value mismatch: got %v want %v", got.Outputs[0].Value, tx.Outputs[0].Value)
	}
	if err := got.Validate(nil); err != nil {
		t.Fatalf("decoded transaction failed validation (signature should survive round-trip): %v", err)
	}
}

func TestBlockHashIsDeterministic(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := sampleTx(t, priv, 1)

	b1 := NewBlock(0, [32]byte{}, 100, []*Transaction{tx})
	b2 := NewBlock(0, [32]byte{}, 100, []*Transaction{tx})

	h1, err := b1.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := b2.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected identical blocks to hash identically")
	}
}

func TestStoreAppendAndReplay(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.bin")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	genesis := NewBlock(0, [32]byte{}, 100, []*Transaction{sampleTx(t, priv, 100)})
	if err := store.Append(genesis); err != nil {
		t.Fatalf("append genesis: %v", err)
	}
	genesisHash, err := genesis.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	second := NewBlock(1, genesisHash, 200, []*Transaction{sampleTx(t, priv, 200)})
	if err := store.Append(second); err != nil {
		t.Fatalf("append second block: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 blocks after replay, got %d", reopened.Len())
	}
	blk, ok := reopened.BlockAt(1)
	if !ok {
		t.Fatalf("expected block 1 to be present after replay")
	}
	if blk.PrevHash != genesisHash {
		t.Fatalf("replayed block's prev_hash does not match the genesis block's hash")
	}
}

func TestStoreRejectsNonMonotoneIndex(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "chain.bin"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	genesis := NewBlock(0, [32]byte{}, 100, []*Transaction{sampleTx(t, priv, 100)})
	if err := store.Append(genesis); err != nil {
		t.Fatalf("append genesis: %v", err)
	}

	skip := NewBlock(5, [32]byte{}, 200, []*Transaction{sampleTx(t, priv, 200)})
	if err := store.Append(skip); err == nil {
		t.Fatalf("expected a non-monotone block index to be rejected")
	}
}

func TestStoreRejectsBadPrevHash(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "chain.bin"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	genesis := NewBlock(0, [32]byte{}, 100, []*Transaction{sampleTx(t, priv, 100)})
	if err := store.Append(genesis); err != nil {
		t.Fatalf("append genesis: %v", err)
	}

	wrongPrev := NewBlock(1, [32]byte{0xFF}, 200, []*Transaction{sampleTx(t, priv, 200)})
	if err := store.Append(wrongPrev); err == nil {
		t.Fatalf("expected a mismatched prev_hash to be rejected")
	}
}
