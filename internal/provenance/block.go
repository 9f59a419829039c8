package provenance

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
)

// Block commits one or more transactions into the hash-chained log,
// spec.md §4.7. Grounded on the teacher's Block/applyBlock shape in
// core/ledger.go, generalized from a single state-transition block to a
// named-graph-commitment block.
type Block struct {
	Index          uint64
	PrevHash       [32]byte
	TimestampNanos int64
	Transactions   []*Transaction

	// unionGraphHash is canon.Canonicalize of the union of every
	// transaction's RDF payload in this block, cached at construction time
	// since it is part of the block's own hash input.
	unionGraphHash [32]byte
}

// NewBlock builds a Block from txs, computing the canonical hash of their
// combined RDF payloads up front.
func NewBlock(index uint64, prevHash [32]byte, timestampNanos int64, txs []*Transaction) *Block {
	b := &Block{Index: index, PrevHash: prevHash, TimestampNanos: timestampNanos, Transactions: txs}
	b.unionGraphHash = canon.Canonicalize(unionGraph(txs)).Hash
	return b
}

// unionGraph concatenates every transaction's RDF payload triples into a
// single graph named after the first contributing transaction's payload, for
// hashing purposes only — it is never stored or queried as a graph in its
// own right.
func unionGraph(txs []*Transaction) canon.NamedGraph {
	var g canon.NamedGraph
	named := false
	for _, tx := range txs {
		if tx.Payload.Graph == nil {
			continue
		}
		if !named {
			g.Name = tx.Payload.Graph.Name
			named = true
		}
		g.Triples = append(g.Triples, tx.Payload.Graph.Triples...)
	}
	return g
}

// Hash computes SHA-256 of (index ∥ prev_hash ∥ timestamp ∥
// canonical_hash(union_graph) ∥ serialized_transactions_without_signatures),
// spec.md §4.7.
func (b *Block) Hash() ([32]byte, error) {
	h := sha256.New()

	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], b.Index)
	h.Write(idx[:])

	h.Write(b.PrevHash[:])

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(b.TimestampNanos))
	h.Write(ts[:])

	h.Write(b.unionGraphHash[:])

	for _, tx := range b.Transactions {
		raw, err := encodeTxWithoutSignatures(tx)
		if err != nil {
			return [32]byte{}, err
		}
		h.Write(raw)
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// Validate checks the per-append invariants of spec.md §4.7 against the
// chain's current tail: prevIndex/prevHash describe the block this one must
// extend (use index 0 / a zero hash for the genesis block), and
// prevTimestamp is the tail block's timestamp (use 0 for genesis). Every
// committed transaction is re-validated independently of whatever checks
// ran when it was first added to the pool.
func (b *Block) Validate(prevIndex uint64, prevHash [32]byte, prevTimestamp int64, isGenesis bool) error {
	if !isGenesis && b.Index != prevIndex+1 {
		return &errs.StorageError{Message: "block index is not monotone"}
	}
	if isGenesis && b.Index != 0 {
		return &errs.StorageError{Message: "genesis block must have index 0"}
	}
	if !isGenesis && b.PrevHash != prevHash {
		return &errs.StorageError{Message: "block prev_hash does not match chain tail"}
	}
	if !isGenesis && b.TimestampNanos < prevTimestamp {
		return &errs.StorageError{Message: "block timestamp is not non-decreasing"}
	}
	if len(b.Transactions) == 0 {
		return &errs.StorageError{Message: "block must commit at least one transaction"}
	}
	for _, tx := range b.Transactions {
		if err := tx.Validate(nil); err != nil {
			return err
		}
	}
	return nil
}
