// Package provenance implements the append-only block log (C11) and the
// transaction/signature layer (C12) of spec.md §4.7/§4.8: named graphs are
// packaged into signed transactions, transactions are pooled and then
// committed into hash-chained blocks. Grounded on the teacher's
// core/transactions.go (hash/sign/verify shape, TxPool) and core/ledger.go
// (WAL-backed append-only chain), adapted from go-ethereum/ECDSA signing to
// the Ed25519 scheme spec.md §3.6/§4.8 mandates.
package provenance

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
)

// Kind enumerates the transaction kinds of spec.md §3.6.
type Kind int

const (
	Production Kind = iota
	Processing
	Transport
	Quality
	Transfer
	Environmental
	Compliance
	Governance
)

func (k Kind) String() string {
	names := [...]string{"Production", "Processing", "Transport", "Quality", "Transfer", "Environmental", "Compliance", "Governance"}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// InputRef references a prior transaction's output, spec.md §3.6.
type InputRef struct {
	PrevTxID    uuid.UUID
	OutputIndex int
}

// Output is a single transaction output: an owned asset of a given kind and
// numeric value, plus free-form metadata.
type Output struct {
	ID       string
	Owner    string
	AssetKind string
	Value    float64
	Metadata map[string]string
}

// Payload is a transaction's business content: either an RDF named graph
// (the common case — "this production/processing/... event asserts these
// facts") or a governance action string, never both.
type Payload struct {
	Graph            *canon.NamedGraph
	GovernanceAction string
}

// QualityMetadata carries the quality-test classification used by the
// Compliance/Quality signature-threshold rule in spec.md §4.8.
type QualityMetadata struct {
	TestKind string // e.g. "REGULATORY", "COMPLIANCE", "CERTIFICATION", or a lab-internal code
	Present  bool
}

// Transaction is the unit of committed provenance, spec.md §3.6.
type Transaction struct {
	ID         uuid.UUID
	Kind       Kind
	Inputs     []InputRef
	Outputs    []Output
	Payload    Payload
	Quality    *QualityMetadata
	Compliance map[string]string // non-nil + non-empty ⇒ "compliance metadata present"

	Signatures [][]byte // 64-byte Ed25519 signatures
	Signers    []ed25519.PublicKey

	TimestampNanos int64
	Nonce          uint64
	Fee            *float64
}

// CanonicalHash computes the hash spec.md §4.8 binds signatures to: every
// field except Signatures/Signers, with the RDF payload replaced by its
// canonical hash (§4.6) when present. Field order is fixed, so two
// transactions that differ only in JSON/RLP field ordering still hash
// identically — there is no "field order" to vary in the first place.
func (tx *Transaction) CanonicalHash() [32]byte {
	var b strings.Builder
	fmt.Fprintf(&b, "id=%s|kind=%d|nonce=%d|ts=%d", tx.ID.String(), tx.Kind, tx.Nonce, tx.TimestampNanos)
	for _, in := range tx.Inputs {
		fmt.Fprintf(&b, "|in=%s:%d", in.PrevTxID.String(), in.OutputIndex)
	}
	for _, out := range tx.Outputs {
		fmt.Fprintf(&b, "|out=%s:%s:%s:%g", out.ID, out.Owner, out.AssetKind, out.Value)
		for _, k := range sortedKeys(out.Metadata) {
			fmt.Fprintf(&b, ",%s=%s", k, out.Metadata[k])
		}
	}
	if tx.Payload.Graph != nil {
		h := canon.Canonicalize(*tx.Payload.Graph)
		fmt.Fprintf(&b, "|graph=%x", h.Hash)
	}
	if tx.Payload.GovernanceAction != "" {
		fmt.Fprintf(&b, "|gov=%s", tx.Payload.GovernanceAction)
	}
	if tx.Quality != nil {
		fmt.Fprintf(&b, "|quality=%s:%v", tx.Quality.TestKind, tx.Quality.Present)
	}
	for _, k := range sortedKeys(tx.Compliance) {
		fmt.Fprintf(&b, "|compliance=%s=%s", k, tx.Compliance[k])
	}
	if tx.Fee != nil {
		fmt.Fprintf(&b, "|fee=%g", *tx.Fee)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return sum
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Sign appends a new Ed25519 signature over CanonicalHash to the
// transaction.
func (tx *Transaction) Sign(priv ed25519.PrivateKey) {
	hash := tx.CanonicalHash()
	tx.Signatures = append(tx.Signatures, ed25519.Sign(priv, hash[:]))
	tx.Signers = append(tx.Signers, priv.Public().(ed25519.PublicKey))
}

// validSignatureCount returns how many of tx's (signature, signer) pairs
// verify against its canonical hash.
func (tx *Transaction) validSignatureCount() int {
	hash := tx.CanonicalHash()
	n := 0
	for i := range tx.Signatures {
		if i >= len(tx.Signers) {
			break
		}
		if ed25519.Verify(tx.Signers[i], hash[:], tx.Signatures[i]) {
			n++
		}
	}
	return n
}

// requiredSignatures implements the kind-specific threshold table in
// spec.md §4.8.
func (tx *Transaction) requiredSignatures() int {
	switch tx.Kind {
	case Compliance:
		return 2
	case Transfer:
		if tx.outputValueSum() > 1000 {
			return 2
		}
	case Quality:
		if tx.Quality != nil {
			k := strings.ToUpper(tx.Quality.TestKind)
			if strings.Contains(k, "REGULATORY") || strings.Contains(k, "COMPLIANCE") || strings.Contains(k, "CERTIFICATION") {
				return 2
			}
		}
	}
	return 1
}

func (tx *Transaction) outputValueSum() float64 {
	var sum float64
	for _, o := range tx.Outputs {
		sum += o.Value
	}
	return sum
}

func (tx *Transaction) inputValueSum(resolve func(uuid.UUID, int) (float64, bool)) (float64, bool) {
	var sum float64
	for _, in := range tx.Inputs {
		v, ok := resolve(in.PrevTxID, in.OutputIndex)
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

const transferTolerance = 1e-3

// Validate checks the business rules and signature requirements of spec.md
// §4.8. resolveInput looks up a referenced output's value (used only by
// Transfer's input/output balance rule); pass nil if the caller has no
// ledger context (that rule is then skipped, e.g. during standalone unit
// construction before a transaction has any recorded inputs).
func (tx *Transaction) Validate(resolveInput func(uuid.UUID, int) (float64, bool)) error {
	if tx.ID == uuid.Nil {
		return &errs.InvalidTransaction{Message: "transaction id must be non-empty"}
	}
	if tx.Payload.Graph == nil && tx.Payload.GovernanceAction == "" {
		return &errs.InvalidTransaction{Message: "transaction payload must be non-empty"}
	}

	if tx.validSignatureCount() < tx.requiredSignatures() {
		return &errs.InvalidTransaction{Message: fmt.Sprintf("expected at least %d valid signature(s), found %d", tx.requiredSignatures(), tx.validSignatureCount())}
	}

	switch tx.Kind {
	case Production:
		if len(tx.Outputs) < 1 {
			return &errs.InvalidTransaction{Message: "a Production transaction requires at least one output"}
		}
	case Processing:
		if len(tx.Inputs) < 1 || len(tx.Outputs) < 1 {
			return &errs.InvalidTransaction{Message: "a Processing transaction requires at least one input and one output"}
		}
	case Transfer:
		if resolveInput != nil {
			inSum, ok := tx.inputValueSum(resolveInput)
			if !ok {
				return &errs.InvalidTransaction{Message: "a Transfer transaction references an unresolvable input"}
			}
			outSum := tx.outputValueSum()
			if diff := inSum - outSum; diff > transferTolerance || diff < -transferTolerance {
				return &errs.InvalidTransaction{Message: fmt.Sprintf("a Transfer transaction's input value %.6f must equal its output value %.6f", inSum, outSum)}
			}
		}
	case Quality:
		if tx.Quality == nil || !tx.Quality.Present {
			return &errs.InvalidTransaction{Message: "a Quality transaction requires quality metadata"}
		}
	case Compliance:
		if len(tx.Compliance) == 0 {
			return &errs.InvalidTransaction{Message: "a Compliance transaction requires compliance metadata"}
		}
	}
	return nil
}
