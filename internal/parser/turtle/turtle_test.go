package turtle

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

const sampleTurtle = `
@prefix : <http://example.org/cacao#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

:Batch a owl:Class .
:Farm a owl:Class .
:harvestedFrom a owl:ObjectProperty ;
    rdfs:domain :Batch ;
    rdfs:range :Farm .

:batch1 a :Batch ;
    :harvestedFrom :farmA .
`

func TestLoadDeclarationsAndAssertions(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, sampleTurtle, "http://example.org/cacao#", common.BestEffort)
	if len(errsOut) != 0 {
		t.Fatalf("unexpected parse/lift errors: %v", errsOut)
	}

	batch, err := iri.Intern("http://example.org/cacao#Batch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !o.IsDeclared(batch) {
		t.Fatalf("expected :Batch to be declared a class")
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
		t.Fatalf("expected domain and range axioms for :harvestedFrom, got domain=%v range=%v", sawDomain, sawRange)
	}

	batch1, err := iri.Intern("http://example.org/cacao#batch1")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	assertions := o.ClassAssertionsFor(batch1)
	if len(assertions) != 1 || !assertions[0].Class.Equal(batch) {
		t.Fatalf("expected :batch1 to be asserted a :Batch, got %+v", assertions)
	}
}

func TestBlankNodeRestrictionLifts(t *testing.T) {
	src := `
@prefix : <http://example.org/cacao#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .

:Batch a owl:Class .
:HighValueBatch a owl:Class ;
    owl:equivalentClass [
        a owl:Restriction ;
        owl:onProperty :hasValue ;
        owl:someValuesFrom :Batch
    ] .
`
	o := ontology.New()
	errsOut := Load(o, src, "http://example.org/cacao#", common.BestEffort)
	if len(errsOut) != 0 {
		t.Fatalf("unexpected parse/lift errors: %v", errsOut)
	}

	high, err := iri.Intern("http://example.org/cacao#HighValueBatch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	var found bool
	for _, ax := range o.AxiomsFor(high) {
		if ax.Kind == axiom.KindEquivalentClasses {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EquivalentClasses axiom lifted from the restriction blank node")
	}
}

func TestUndefinedPrefixReportsError(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, `foo:Bar a owl:Class .`, "http://example.org/", common.BestEffort)
	if len(errsOut) == 0 {
		t.Fatalf("expected an error for an undefined prefix")
	}
}
