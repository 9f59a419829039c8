package axiom

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func TestClassExpressionKeyStructuralEquality(t *testing.T) {
	r := iri.NewRegistry()
	dog, _ := r.Intern("http://example.org/Dog")
	animal, _ := r.Intern("http://example.org/Animal")

	a := ObjectIntersectionOf(Class(dog), Class(animal))
	b := ObjectIntersectionOf(Class(dog), Class(animal))
	if !a.Equal(b) {
		t.Fatalf("structurally identical expressions must compare equal")
	}

	c := ObjectIntersectionOf(Class(animal), Class(dog))
	if a.Equal(c) {
		t.Fatalf("operand order matters for this key scheme; expected distinct keys")
	}
}

func TestPropertyExpressionInverseFlattening(t *testing.T) {
	r := iri.NewRegistry()
	h, _ := r.Intern("http://example.org/hasPart")
	p := ObjectProperty(h)
	inv := ObjectInverseOf(p)
	if !inv.Inverted {
		t.Fatalf("expected inverted=true")
	}
	doubleInv := ObjectInverseOf(inv)
	if doubleInv.Inverted {
		t.Fatalf("double inverse must flatten back to direct")
	}
	if !doubleInv.IRI.Equal(h) {
		t.Fatalf("flattened inverse must preserve base IRI")
	}
}

func TestAxiomKeyDetectsDuplicates(t *testing.T) {
	r := iri.NewRegistry()
	dog, _ := r.Intern("http://example.org/Dog")
	animal, _ := r.Intern("http://example.org/Animal")
	a := SubClassOfAxiom(Class(dog), Class(animal))
	b := SubClassOfAxiom(Class(dog), Class(animal))
	if a.Key() != b.Key() {
		t.Fatalf("expected identical keys for structurally equal axioms")
	}
}
