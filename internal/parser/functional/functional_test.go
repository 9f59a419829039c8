package functional

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

const sampleFunctional = `
Prefix(:=<http://example.org/cacao#>)
Prefix(owl:=<http://www.w3.org/2002/07/owl#>)

Ontology(<http://example.org/cacao>
  Declaration(Class(:Batch))
  Declaration(Class(:Farm))
  Declaration(ObjectProperty(:harvestedFrom))
  ObjectPropertyDomain(:harvestedFrom :Batch)
  ObjectPropertyRange(:harvestedFrom :Farm)
  SubClassOf(:Batch owl:Thing)
  ClassAssertion(:Batch :batch1)
  ObjectPropertyAssertion(:harvestedFrom :batch1 :farmA)
)
`

func TestLoadBasicAxioms(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, sampleFunctional, "http://example.org/cacao#", common.BestEffort)
	if len(errsOut) != 0 {
		t.Fatalf("unexpected errors: %v", errsOut)
	}

	batch, err := iri.Intern("http://example.org/cacao#Batch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !o.IsDeclared(batch) {
		t.Fatalf("expected :Batch to be declared")
	}

	harvested, err := iri.Intern("http://example.org/cacao#harvestedFrom")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	var sawDomain, sawRange bool
	for _, ax := range o.AxiomsFor(harvested) {
		switch ax.Kind {
		case axiom.KindObjectPropertyDomain:
			sawDomain = true
		case axiom.KindObjectPropertyRange:
			sawRange = true
		}
	}
	if !sawDomain || !sawRange {
		t.Fatalf("expected domain/range axioms, got domain=%v range=%v", sawDomain, sawRange)
	}

	batch1, err := iri.Intern("http://example.org/cacao#batch1")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	assertions := o.ClassAssertionsFor(batch1)
	if len(assertions) != 1 || !assertions[0].Class.Equal(batch) {
		t.Fatalf("expected batch1 to be asserted a Batch, got %+v", assertions)
	}
}

func TestRestrictionAndCardinality(t *testing.T) {
	src := `
Prefix(:=<http://example.org/cacao#>)
Prefix(owl:=<http://www.w3.org/2002/07/owl#>)
Declaration(Class(:Batch))
Declaration(ObjectProperty(:hasDefect))
SubClassOf(:Batch ObjectMaxCardinality(2 :hasDefect))
EquivalentClasses(:Pure ObjectComplementOf(ObjectSomeValuesFrom(:hasDefect owl:Thing)))
`
	o := ontology.New()
	errsOut := Load(o, src, "http://example.org/cacao#", common.BestEffort)
	if len(errsOut) != 0 {
		t.Fatalf("unexpected errors: %v", errsOut)
	}
	batch, err := iri.Intern("http://example.org/cacao#Batch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	var found bool
	for _, ax := range o.AxiomsFor(batch) {
		if ax.Kind == axiom.KindSubClassOf && ax.SuperClass.Kind == axiom.CEObjectMaxCardinality {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a SubClassOf with an ObjectMaxCardinality superclass")
	}
}
