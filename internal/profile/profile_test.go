package profile

import (
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

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateELAcceptsSimpleHierarchy(t *testing.T) {
	o := ontology.New()
	person := mustIRI(t, "http://example.org/Person")
	employee := mustIRI(t, "http://example.org/Employee")
	worksFor := mustIRI(t, "http://example.org/worksFor")
	must(t, o.Add(axiom.ClassDeclarationAxiom(person)))
	must(t, o.Add(axiom.ClassDeclarationAxiom(employee)))
	must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(worksFor)))
	must(t, o.Add(axiom.SubClassOfAxiom(axiom.Class(employee), axiom.Class(person))))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(employee),
		axiom.ObjectSomeValuesFrom(axiom.ObjectProperty(worksFor), axiom.Class(person)),
	)))

	result := ValidateEL(o)
	if !result.Conforms {
		t.Fatalf("expected EL conformance, got violations: %v", result.Violations)
	}
}

func TestValidateELRejectsUnionAndUniversal(t *testing.T) {
	o := ontology.New()
	a := mustIRI(t, "http://example.org/A")
	b := mustIRI(t, "http://example.org/B")
	c := mustIRI(t, "http://example.org/C")
	p := mustIRI(t, "http://example.org/p")
	for _, h := range []iri.Handle{a, b, c} {
		must(t, o.Add(axiom.ClassDeclarationAxiom(h)))
	}
	must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(p)))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(a),
		axiom.ObjectUnionOf(axiom.Class(b), axiom.Class(c)),
	)))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(a),
		axiom.ObjectAllValuesFrom(axiom.ObjectProperty(p), axiom.Class(b)),
	)))

	result := ValidateEL(o)
	if result.Conforms {
		t.Fatalf("expected EL to reject union and universal restriction")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("expected 2 violations (union, universal), got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestValidateQLRejectsPropertyChain(t *testing.T) {
	o := ontology.New()
	p := mustIRI(t, "http://example.org/p")
	q := mustIRI(t, "http://example.org/q")
	r := mustIRI(t, "http://example.org/r")
	for _, h := range []iri.Handle{p, q, r} {
		must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(h)))
	}
	must(t, o.Add(axiom.SubPropertyChainAxiom(
		axiom.PropertyChain{axiom.ObjectProperty(p), axiom.ObjectProperty(q)},
		axiom.ObjectProperty(r),
	)))

	result := ValidateQL(o)
	if result.Conforms {
		t.Fatalf("expected QL to reject a property chain")
	}
}

func TestValidateQLRejectsDisjunctionAndNominal(t *testing.T) {
	o := ontology.New()
	a := mustIRI(t, "http://example.org/A")
	b := mustIRI(t, "http://example.org/B")
	i1 := mustIRI(t, "http://example.org/i1")
	for _, h := range []iri.Handle{a, b} {
		must(t, o.Add(axiom.ClassDeclarationAxiom(h)))
	}
	must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(i1)))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(a),
		axiom.ObjectUnionOf(axiom.Class(a), axiom.Class(b)),
	)))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(a),
		axiom.ObjectOneOf(i1),
	)))

	result := ValidateQL(o)
	if result.Conforms {
		t.Fatalf("expected QL to reject disjunction and a nominal")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestValidateRLRejectsNominalAndExactCardinality(t *testing.T) {
	o := ontology.New()
	a := mustIRI(t, "http://example.org/A")
	b := mustIRI(t, "http://example.org/B")
	p := mustIRI(t, "http://example.org/p")
	i1 := mustIRI(t, "http://example.org/i1")
	must(t, o.Add(axiom.ClassDeclarationAxiom(a)))
	must(t, o.Add(axiom.ClassDeclarationAxiom(b)))
	must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(p)))
	must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(i1)))
	must(t, o.Add(axiom.SubClassOfAxiom(axiom.Class(a), axiom.ObjectOneOf(i1))))
	must(t, o.Add(axiom.SubClassOfAxiom(
		axiom.Class(a),
		axiom.ObjectExactCardinality(1, axiom.ObjectProperty(p), axiom.Class(b)),
	)))

	result := ValidateRL(o)
	if result.Conforms {
		t.Fatalf("expected RL to reject a nominal and an exact-cardinality restriction")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestValidateReturnsErrorForUnknownProfile(t *testing.T) {
	o := ontology.New()
	if _, err := Validate(o, Profile(99)); err == nil {
		t.Fatalf("expected an error for an unknown profile")
	}
}

func TestResultCacheRoundTripsAndCompressesLargeEntries(t *testing.T) {
	rc := NewResultCache(CacheConfig{MaxSize: 10, CompressionThreshold: 1})

	result := newResult(EL)
	for i := 0; i < 20; i++ {
		result.fail("axiom", "construct", "a sufficiently long reason string to push this past a 1-byte compression threshold")
	}
	rc.Put(EL, result)

	got, ok := rc.Get(EL)
	if !ok {
		t.Fatalf("expected a cache hit after Put")
	}
	if len(got.Violations) != len(result.Violations) {
		t.Fatalf("expected %d violations after round-trip, got %d", len(result.Violations), len(got.Violations))
	}
	_, _, compressedHits := rc.Stats()
	if compressedHits == 0 {
		t.Fatalf("expected the oversized entry to be served from the compressed tier")
	}
}

func TestResultCacheMissOnEmptyCache(t *testing.T) {
	rc := NewResultCache(DefaultCacheConfig())
	if _, ok := rc.Get(QL); ok {
		t.Fatalf("expected a miss on an empty cache")
	}
	hits, misses, _ := rc.Stats()
	if hits != 0 || misses != 1 {
		t.Fatalf("expected 0 hits, 1 miss, got hits=%d misses=%d", hits, misses)
	}
}
