package canon

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

func mustIRI(t *testing.T, s string) iri.Handle {
	t.Helper()
	h, err := iri.Intern(s)
	if err != nil {
		t.Fatalf("intern %q: %v", s, err)
	}
	return h
}

func sampleGraph(t *testing.T, subjBlank, objBlank string) NamedGraph {
	t.Helper()
	g := mustIRI(t, "http://example.org/graph1")
	knows := mustIRI(t, "http://example.org/knows")
	name := mustIRI(t, "http://example.org/name")
	lit, err := entity.NewLiteral("Alice", iri.XsdString, "")
	if err != nil {
		t.Fatalf("literal: %v", err)
	}
	return NamedGraph{
		Name: g,
		Triples: []Triple{
			{Subject: BlankTerm(subjBlank), Predicate: knows, Object: BlankTerm(objBlank)},
			{Subject: BlankTerm(subjBlank), Predicate: name, Object: LiteralTerm(lit)},
		},
	}
}

func TestCanonicalizeIsInvariantUnderBlankNodeRenaming(t *testing.T) {
	g1 := sampleGraph(t, "b0", "b1")
	g2 := sampleGraph(t, "x", "y")

	r1 := Canonicalize(g1)
	r2 := Canonicalize(g2)
	if r1.Hash != r2.Hash {
		t.Fatalf("expected blank-node renaming to preserve the canonical hash")
	}
}

func TestCanonicalizeIsInvariantUnderTripleReordering(t *testing.T) {
	g := sampleGraph(t, "b0", "b1")
	r1 := Canonicalize(g)

	reordered := NamedGraph{Name: g.Name, Triples: []Triple{g.Triples[1], g.Triples[0]}}
	r2 := Canonicalize(reordered)
	if r1.Hash != r2.Hash {
		t.Fatalf("expected triple reordering to preserve the canonical hash")
	}
}

func TestCanonicalizeDistinguishesDifferentGraphs(t *testing.T) {
	a := sampleGraph(t, "b0", "b1")
	knows2 := mustIRI(t, "http://example.org/dislikes")
	b := NamedGraph{
		Name: a.Name,
		Triples: []Triple{
			{Subject: BlankTerm("b0"), Predicate: knows2, Object: BlankTerm("b1")},
			a.Triples[1],
		},
	}
	ra := Canonicalize(a)
	rb := Canonicalize(b)
	if ra.Hash == rb.Hash {
		t.Fatalf("expected structurally different graphs to hash differently")
	}
}

func TestCacheMemoizesRepeatedGraphs(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := sampleGraph(t, "b0", "b1")
	r1 := c.Canonicalize(g)
	r2 := c.Canonicalize(g)
	if r1.Hash != r2.Hash {
		t.Fatalf("expected repeated canonicalization of the same graph to agree")
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly one cached entry, got %d", c.Len())
	}
}
