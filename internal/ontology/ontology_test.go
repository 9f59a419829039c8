package ontology

import (
	"errors"
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func TestAddAndDuplicateDetection(t *testing.T) {
	r := iri.NewRegistry()
	dog, _ := r.Intern("http://example.org/Dog")
	animal, _ := r.Intern("http://example.org/Animal")

	o := New()
	ax := axiom.SubClassOfAxiom(axiom.Class(dog), axiom.Class(animal))
	if err := o.Add(ax); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := o.Add(ax)
	var dup *errs.DuplicateAxiom
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateAxiom, got %v", err)
	}
}

func TestAccessorsStableOrder(t *testing.T) {
	r := iri.NewRegistry()
	o := New()
	var classes []iri.Handle
	for _, name := range []string{"A", "B", "C"} {
		h, _ := r.Intern("http://example.org/" + name)
		classes = append(classes, h)
		if err := o.Add(axiom.ClassDeclarationAxiom(h)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	got := o.Classes()
	for i, h := range got {
		if !h.Equal(classes[i]) {
			t.Fatalf("expected insertion order, position %d mismatch", i)
		}
	}
}

func TestClassAssertionsForRoot(t *testing.T) {
	r := iri.NewRegistry()
	o := New()
	fido, _ := r.Intern("http://example.org/fido")
	dog, _ := r.Intern("http://example.org/Dog")
	o.Add(axiom.ClassAssertionAxiom(fido, axiom.Class(dog)))

	got := o.ClassAssertionsFor(fido)
	if len(got) != 1 || got[0].Class.String() != dog.String() {
		t.Fatalf("expected one class assertion for fido, got %+v", got)
	}
}

func TestGenerationIncrementsOnMutation(t *testing.T) {
	r := iri.NewRegistry()
	o := New()
	g0 := o.Generation()
	h, _ := r.Intern("http://example.org/A")
	o.Add(axiom.ClassDeclarationAxiom(h))
	if o.Generation() == g0 {
		t.Fatalf("expected generation to advance after mutation")
	}
}
