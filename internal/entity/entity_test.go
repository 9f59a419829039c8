package entity

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func TestClassEquality(t *testing.T) {
	r := iri.NewRegistry()
	h1, _ := r.Intern("http://example.org/Dog")
	h2, _ := r.Intern("http://example.org/Dog")
	c1, c2 := NewClass(h1), NewClass(h2)
	if !c1.Equal(c2) {
		t.Fatalf("classes over the same IRI must be equal")
	}
}

func TestObjectPropertyCharacteristics(t *testing.T) {
	r := iri.NewRegistry()
	h, _ := r.Intern("http://example.org/hasPart")
	p := NewObjectProperty(h)
	if p.HasCharacteristic(Transitive) {
		t.Fatalf("fresh property should have no characteristics")
	}
	p.AddCharacteristic(Transitive)
	if !p.HasCharacteristic(Transitive) {
		t.Fatalf("expected Transitive characteristic to be recorded")
	}
}

func TestLiteralConstructionRules(t *testing.T) {
	lang, err := NewLiteral("hello", iri.Handle{}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lang.IsLangTagged() || lang.Datatype.String() != iri.RdfLangString.String() {
		t.Fatalf("expected lang-tagged literal with rdf:langString datatype, got %+v", lang)
	}

	plain, err := NewLiteral("hello", iri.Handle{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plain.IsPlain() {
		t.Fatalf("expected plain literal, got %+v", plain)
	}

	if _, err := NewLiteral("hello", iri.XsdInteger, "en"); err == nil {
		t.Fatalf("expected error combining language tag with a non-langString datatype")
	}
}

func TestAnonymousIndividualEquality(t *testing.T) {
	a := NewAnonymousIndividual("b0")
	b := NewAnonymousIndividual("b0")
	c := NewAnonymousIndividual("b1")
	if !a.Equal(b) {
		t.Fatalf("same node id must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("different node ids must not be equal")
	}
}
