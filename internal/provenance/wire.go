package provenance

import (
	"crypto/ed25519"
	"math"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func ed25519PublicKey(b []byte) ed25519.PublicKey {
	pk := make(ed25519.PublicKey, len(b))
	copy(pk, b)
	return pk
}

// The RLP encoder (github.com/ethereum/go-ethereum/rlp) only understands
// fixed-shape values — uints, strings, bytes, and slices/structs of those —
// so every wire-level struct below is a flattened, float-free mirror of its
// domain type. This is the same layering the teacher uses: `Block`/
// `Transaction` are the live in-memory core/ledger.go types, RLP only ever
// touches the purpose-built wire shapes, never the domain types directly.

type wireInput struct {
	PrevTxID    []byte
	OutputIndex uint64
}

type wireOutput struct {
	ID        string
	Owner     string
	AssetKind string
	ValueBits uint64
	MetaKeys  []string
	MetaVals  []string
}

type wireTerm struct {
	Kind    uint8
	IRI     string
	Blank   string
	LitLex  string
	LitType string
	LitLang string
}

type wireTriple struct {
	Subject   wireTerm
	Predicate string
	Object    wireTerm
}

type wireTx struct {
	ID               []byte
	Kind             uint8
	Inputs           []wireInput
	Outputs          []wireOutput
	HasGraph         bool
	GraphName        string
	GraphTriples     []wireTriple
	GovernanceAction string
	HasQuality       bool
	QualityTestKind  string
	QualityPresent   bool
	ComplianceKeys   []string
	ComplianceVals   []string
	Signatures       [][]byte
	Signers          [][]byte
	TimestampNanos   uint64 // RLP only encodes unsigned integers; nanosecond timestamps are never negative
	Nonce            uint64
	HasFee           bool
	FeeBits          uint64
}

func floatBits(f float64) uint64  { return math.Float64bits(f) }
func bitsToFloat(b uint64) float64 { return math.Float64frombits(b) }

func toWireTerm(t canon.Term) wireTerm {
	w := wireTerm{Kind: uint8(t.Kind)}
	switch t.Kind {
	case canon.TermIRI:
		w.IRI = t.IRI.String()
	case canon.TermBlank:
		w.Blank = t.Blank
	case canon.TermLiteral:
		w.LitLex = t.Literal.Lexical
		w.LitType = t.Literal.Datatype.String()
		w.LitLang = t.Literal.Language
	}
	return w
}

func fromWireTerm(w wireTerm) (canon.Term, error) {
	switch canon.TermKind(w.Kind) {
	case canon.TermIRI:
		h, err := iri.Intern(w.IRI)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.IRITerm(h), nil
	case canon.TermBlank:
		return canon.BlankTerm(w.Blank), nil
	default:
		dt, err := iri.Intern(w.LitType)
		if err != nil {
			return canon.Term{}, err
		}
		lit, err := entity.NewLiteral(w.LitLex, dt, w.LitLang)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.LiteralTerm(lit), nil
	}
}

// toWire flattens tx into its RLP-ready shape. When withSignatures is false
// the Signatures/Signers slices are omitted, producing the
// "serialized_transactions_without_signatures" form the block hash binds to
// (spec.md §4.7).
func toWire(tx *Transaction, withSignatures bool) (wireTx, error) {
	w := wireTx{
		ID:             tx.ID[:],
		Kind:           uint8(tx.Kind),
		TimestampNanos: uint64(tx.TimestampNanos),
		Nonce:          tx.Nonce,
	}
	for _, in := range tx.Inputs {
		w.Inputs = append(w.Inputs, wireInput{PrevTxID: in.PrevTxID[:], OutputIndex: uint64(in.OutputIndex)})
	}
	for _, out := range tx.Outputs {
		wo := wireOutput{ID: out.ID, Owner: out.Owner, AssetKind: out.AssetKind, ValueBits: floatBits(out.Value)}
		for _, k := range sortedKeys(out.Metadata) {
			wo.MetaKeys = append(wo.MetaKeys, k)
			wo.MetaVals = append(wo.MetaVals, out.Metadata[k])
		}
		w.Outputs = append(w.Outputs, wo)
	}
	if tx.Payload.Graph != nil {
		w.HasGraph = true
		w.GraphName = tx.Payload.Graph.Name.String()
		for _, t := range tx.Payload.Graph.Triples {
			w.GraphTriples = append(w.GraphTriples, wireTriple{
				Subject:   toWireTerm(t.Subject),
				Predicate: t.Predicate.String(),
				Object:    toWireTerm(t.Object),
			})
		}
	}
	w.GovernanceAction = tx.Payload.GovernanceAction
	if tx.Quality != nil {
		w.HasQuality = true
		w.QualityTestKind = tx.Quality.TestKind
		w.QualityPresent = tx.Quality.Present
	}
	for _, k := range sortedKeys(tx.Compliance) {
		w.ComplianceKeys = append(w.ComplianceKeys, k)
		w.ComplianceVals = append(w.ComplianceVals, tx.Compliance[k])
	}
	if tx.Fee != nil {
		w.HasFee = true
		w.FeeBits = floatBits(*tx.Fee)
	}
	if withSignatures {
		w.Signatures = tx.Signatures
		for _, s := range tx.Signers {
			w.Signers = append(w.Signers, []byte(s))
		}
	}
	return w, nil
}

func fromWire(w wireTx) (*Transaction, error) {
	tx := &Transaction{
		Kind:           Kind(w.Kind),
		TimestampNanos: int64(w.TimestampNanos),
		Nonce:          w.Nonce,
	}
	id, err := uuid.FromBytes(w.ID)
	if err != nil {
		return nil, &errs.SerializationError{Message: "decode transaction id: " + err.Error()}
	}
	tx.ID = id

	for _, in := range w.Inputs {
		prevID, err := uuid.FromBytes(in.PrevTxID)
		if err != nil {
			return nil, &errs.SerializationError{Message: "decode input prev tx id: " + err.Error()}
		}
		tx.Inputs = append(tx.Inputs, InputRef{PrevTxID: prevID, OutputIndex: int(in.OutputIndex)})
	}
	for _, wo := range w.Outputs {
		out := Output{ID: wo.ID, Owner: wo.Owner, AssetKind: wo.AssetKind, Value: bitsToFloat(wo.ValueBits)}
		if len(wo.MetaKeys) > 0 {
			out.Metadata = make(map[string]string, len(wo.MetaKeys))
			for i, k := range wo.MetaKeys {
				out.Metadata[k] = wo.MetaVals[i]
			}
		}
		tx.Outputs = append(tx.Outputs, out)
	}
	if w.HasGraph {
		name, err := iri.Intern(w.GraphName)
		if err != nil {
			return nil, err
		}
		g := &canon.NamedGraph{Name: name}
		for _, wt := range w.GraphTriples {
			subj, err := fromWireTerm(wt.Subject)
			if err != nil {
				return nil, err
			}
			pred, err := iri.Intern(wt.Predicate)
			if err != nil {
				return nil, err
			}
			obj, err := fromWireTerm(wt.Object)
			if err != nil {
				return nil, err
			}
			g.Triples = append(g.Triples, canon.Triple{Subject: subj, Predicate: pred, Object: obj})
		}
		tx.Payload.Graph = g
	}
	tx.Payload.GovernanceAction = w.GovernanceAction
	if w.HasQuality {
		tx.Quality = &QualityMetadata{TestKind: w.QualityTestKind, Present: w.QualityPresent}
	}
	if len(w.ComplianceKeys) > 0 {
		tx.Compliance = make(map[string]string, len(w.ComplianceKeys))
		for i, k := range w.ComplianceKeys {
			tx.Compliance[k] = w.ComplianceVals[i]
		}
	}
	if w.HasFee {
		fee := bitsToFloat(w.FeeBits)
		tx.Fee = &fee
	}
	tx.Signatures = w.Signatures
	for _, s := range w.Signers {
		tx.Signers = append(tx.Signers, ed25519PublicKey(s))
	}
	return tx, nil
}

// EncodeTx RLP-encodes tx in the stable field order §6.3 requires, including
// its signatures (the on-disk form read back by DecodeTx).
func EncodeTx(tx *Transaction) ([]byte, error) {
	w, err := toWire(tx, true)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&w)
}

// DecodeTx reverses EncodeTx.
func DecodeTx(data []byte) (*Transaction, error) {
	var w wireTx
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, &errs.SerializationError{Message: "decode transaction: " + err.Error()}
	}
	return fromWire(w)
}

// encodeTxWithoutSignatures RLP-encodes the signature-free projection of tx
// used only as input to the block hash (spec.md §4.7).
func encodeTxWithoutSignatures(tx *Transaction) ([]byte, error) {
	w, err := toWire(tx, false)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&w)
}
