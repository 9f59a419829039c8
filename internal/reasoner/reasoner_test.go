package reasoner

import (
	"context"
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

func mustIRI(t *testing.T, s string) iri.Handle {
	t.Helper()
	h, err := iri.Intern(s)
	if err != nil {
		t.Fatalf("intern %q: %v", s, err)
	}
	return h
}

func animalDogOntology(t *testing.T) (*ontology.Ontology, iri.Handle, iri.Handle, iri.Handle) {
	t.Helper()
	o := ontology.New()
	animal := mustIRI(t, "http://example.org/Animal")
	dog := mustIRI(t, "http://example.org/Dog")
	cat := mustIRI(t, "http://example.org/Cat")
	rex := mustIRI(t, "http://example.org/Rex")

	for _, h := range []iri.Handle{animal, dog, cat} {
		must(t, o.Add(axiom.ClassDeclarationAxiom(h)))
	}
	must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(rex)))
	must(t, o.Add(axiom.SubClassOfAxiom(axiom.Class(dog), axiom.Class(animal))))
	must(t, o.Add(axiom.DisjointClassesAxiom(axiom.Class(dog), axiom.Class(cat))))
	must(t, o.Add(axiom.ClassAssertionAxiom(rex, axiom.Class(dog))))
	return o, animal, dog, cat
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConsistentOntologyIsConsistent(t *testing.T) {
	o, _, _, _ := animalDogOntology(t)
	r := New(o, DefaultConfig())
	ok, err := r.IsConsistent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ontology to be consistent")
	}
}

func TestDogIsSubClassOfAnimal(t *testing.T) {
	o, animal, dog, _ := animalDogOntology(t)
	r := New(o, DefaultConfig())
	ok, err := r.IsSubClassOf(axiom.Class(dog), axiom.Class(animal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected Dog to be a subclass of Animal")
	}
}

func TestDogAndCatAreDisjoint(t *testing.T) {
	o, _, dog, cat := animalDogOntology(t)
	r := New(o, DefaultConfig())
	ok, err := r.AreDisjoint(axiom.Class(dog), axiom.Class(cat))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected Dog and Cat to be disjoint")
	}
}

func TestAssertingRexAsCatIsInconsistent(t *testing.T) {
	o, _, _, cat := animalDogOntology(t)
	rex := mustIRI(t, "http://example.org/Rex")
	must(t, o.Add(axiom.ClassAssertionAxiom(rex, axiom.Class(cat))))

	r := New(o, DefaultConfig())
	ok, err := r.IsConsistent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ontology asserting a dog is also a cat to be inconsistent")
	}
}

func TestNothingIsNeverSatisfiable(t *testing.T) {
	o, _, _, _ := animalDogOntology(t)
	r := New(o, DefaultConfig())
	ok, err := r.IsClassSatisfiable(iri.OwlNothing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected owl:Nothing to be unsatisfiable")
	}
}

func TestUnmentionedClassIsTriviallySatisfiable(t *testing.T) {
	o, _, _, _ := animalDogOntology(t)
	wombat := mustIRI(t, "http://example.org/Wombat")
	r := New(o, DefaultConfig())
	ok, err := r.IsClassSatisfiable(wombat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected an unreferenced class to be satisfiable")
	}
}

func TestMaxCardinalityViolationIsInconsistent(t *testing.T) {
	o := ontology.New()
	person := mustIRI(t, "http://example.org/Person")
	hasParent := mustIRI(t, "http://example.org/hasParent")
	alice := mustIRI(t, "http://example.org/Alice")
	p1 := mustIRI(t, "http://example.org/P1")
	p2 := mustIRI(t, "http://example.org/P2")
	p3 := mustIRI(t, "http://example.org/P3")

	must(t, o.Add(axiom.ClassDeclarationAxiom(person)))
	must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(hasParent)))
	for _, h := range []iri.Handle{alice, p1, p2, p3} {
		must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(h)))
	}
	maxTwoParents := axiom.ObjectMaxCardinality(2, axiom.ObjectProperty(hasParent), nil)
	must(t, o.Add(axiom.ClassAssertionAxiom(alice, maxTwoParents)))
	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(alice, axiom.ObjectProperty(hasParent), p1)))
	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(alice, axiom.ObjectProperty(hasParent), p2)))
	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(alice, axiom.ObjectProperty(hasParent), p3)))
	must(t, o.Add(axiom.DifferentIndividualsAxiom(p1, p2, p3)))

	r := New(o, DefaultConfig())
	ok, err := r.IsConsistent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected more than 2 parents to violate a max-2 cardinality restriction")
	}
}

func TestClassifyBuildsDirectHierarchy(t *testing.T) {
	o, animal, dog, _ := animalDogOntology(t)
	r := New(o, DefaultConfig())
	h, err := r.Classify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, sub := range h.DirectSubclasses[animal.String()] {
		if sub.Equal(dog) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Dog to be a direct subclass of Animal, got %v", h.DirectSubclasses[animal.String()])
	}
}
