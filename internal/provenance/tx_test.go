package provenance

import (
	"crypto/ed25519"
	"testing"

	"github.com/google/uuid"
)

func newSignedTx(t *testing.T, kind Kind, outputs []Output, priv ed25519.PrivateKey) *Transaction {
	t.Helper()
	tx := &Transaction{
		ID:             uuid.New(),
		Kind:           kind,
		Outputs:        outputs,
		Payload:        Payload{GovernanceAction: "noop"},
		TimestampNanos: 1,
	}
	tx.Sign(priv)
	return tx
}

func TestProductionRequiresAnOutput(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := newSignedTx(t, Production, nil, priv)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a Production transaction with no outputs to be rejected")
	}
}

func TestProductionWithOutputValidates(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := newSignedTx(t, Production, []Output{{ID: "o1", Owner: "alice", AssetKind: "widget", Value: 10}}, priv)
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessingRequiresInputAndOutput(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := newSignedTx(t, Processing, []Output{{ID: "o1", Owner: "alice", Value: 5}}, priv)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a Processing transaction with no inputs to be rejected")
	}
	tx.Inputs = []InputRef{{PrevTxID: uuid.New(), OutputIndex: 0}}
	tx.Sign(priv) // re-sign after mutating fields the canonical hash covers
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error after adding an input: %v", err)
	}
}

func TestTransferBalanceWithinTolerance(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	prevID := uuid.New()
	tx := &Transaction{
		ID:      uuid.New(),
		Kind:    Transfer,
		Inputs:  []InputRef{{PrevTxID: prevID, OutputIndex: 0}},
		Outputs: []Output{{ID: "o1", Owner: "bob", Value: 100}},
		Payload: Payload{GovernanceAction: "transfer"},
	}
	tx.Sign(priv)
	resolve := func(id uuid.UUID, idx int) (float64, bool) {
		if id == prevID && idx == 0 {
			return 100.0005, true
		}
		return 0, false
	}
	if err := tx.Validate(resolve); err != nil {
		t.Fatalf("expected a near-balanced transfer within tolerance to validate: %v", err)
	}
}

func TestTransferImbalanceIsRejected(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	prevID := uuid.New()
	tx := &Transaction{
		ID:      uuid.New(),
		Kind:    Transfer,
		Inputs:  []InputRef{{PrevTxID: prevID, OutputIndex: 0}},
		Outputs: []Output{{ID: "o1", Owner: "bob", Value: 100}},
		Payload: Payload{GovernanceAction: "transfer"},
	}
	tx.Sign(priv)
	resolve := func(id uuid.UUID, idx int) (float64, bool) { return 50, true }
	if err := tx.Validate(resolve); err == nil {
		t.Fatalf("expected an imbalanced transfer to be rejected")
	}
}

func TestTransferOver1000RequiresTwoSignatures(t *testing.T) {
	_, priv1, _ := ed25519.GenerateKey(nil)
	_, priv2, _ := ed25519.GenerateKey(nil)
	tx := &Transaction{
		ID:      uuid.New(),
		Kind:    Transfer,
		Outputs: []Output{{ID: "o1", Owner: "bob", Value: 5000}},
		Payload: Payload{GovernanceAction: "transfer"},
	}
	tx.Sign(priv1)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a single signature to be insufficient for a >1000 transfer")
	}
	tx.Sign(priv2)
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error with two signatures: %v", err)
	}
}

func TestQualityRequiresMetadata(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := &Transaction{ID: uuid.New(), Kind: Quality, Payload: Payload{GovernanceAction: "qa"}}
	tx.Sign(priv)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a Quality transaction with no quality metadata to be rejected")
	}
	tx.Quality = &QualityMetadata{TestKind: "LAB-INTERNAL", Present: true}
	tx.Sign(priv)
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegulatoryQualityRequiresTwoSignatures(t *testing.T) {
	_, priv1, _ := ed25519.GenerateKey(nil)
	_, priv2, _ := ed25519.GenerateKey(nil)
	tx := &Transaction{
		ID:      uuid.New(),
		Kind:    Quality,
		Quality: &QualityMetadata{TestKind: "REGULATORY-ISO9001", Present: true},
		Payload: Payload{GovernanceAction: "qa"},
	}
	tx.Sign(priv1)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected one signature to be insufficient for a regulatory quality test")
	}
	tx.Sign(priv2)
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error with two signatures: %v", err)
	}
}

func TestComplianceRequiresMetadataAndTwoSignatures(t *testing.T) {
	_, priv1, _ := ed25519.GenerateKey(nil)
	_, priv2, _ := ed25519.GenerateKey(nil)
	tx := &Transaction{ID: uuid.New(), Kind: Compliance, Payload: Payload{GovernanceAction: "comply"}}
	tx.Sign(priv1)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a Compliance transaction with no compliance metadata to be rejected")
	}
	tx.Compliance = map[string]string{"regulation": "ISO-22005"}
	tx.Sign(priv1)
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected a Compliance transaction with one signature to be rejected")
	}
	tx.Sign(priv2)
	if err := tx.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTamperedSignatureIsRejected(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tx := newSignedTx(t, Production, []Output{{ID: "o1", Owner: "alice", Value: 1}}, priv)
	tx.Outputs[0].Value = 999 // mutate a hashed field after signing
	if err := tx.Validate(nil); err == nil {
		t.Fatalf("expected mutating a signed field to invalidate the signature")
	}
}
