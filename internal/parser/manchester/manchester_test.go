package manchester

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

const sampleManchester = `
Prefix: : <http://example.org/cacao#>
Prefix: owl: <http://www.w3.org/2002/07/owl#>

Class: :Batch
    SubClassOf: owl:Thing

Class: :Farm

ObjectProperty: :harvestedFrom
    Domain: :Batch
    Range: :Farm
    Characteristics: Functional

Individual: :batch1
    Types: :Batch
    Facts: :harvestedFrom :farmA
`

func TestLoadFrames(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, sampleManchester, "http://example.org/cacao#", common.BestEffort)
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
	var sawDomain, sawRange, sawFunctional bool
	for _, ax := range o.AxiomsFor(harvested) {
		switch ax.Kind {
		case axiom.KindObjectPropertyDomain:
			sawDomain = true
		case axiom.KindObjectPropertyRange:
			sawRange = true
		case axiom.KindFunctionalObjectProperty:
			sawFunctional = true
		}
	}
	if !sawDomain || !sawRange || !sawFunctional {
		t.Fatalf("expected domain/range/functional axioms, got domain=%v range=%v functional=%v", sawDomain, sawRange, sawFunctional)
	}

	batch1, err := iri.Intern("http://example.org/cacao#batch1")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	assertions := o.ClassAssertionsFor(batch1)
	if len(assertions) != 1 || !assertions[0].Class.Equal(batch) {
		t.Fatalf("expected batch1 to be asserted a Batch, got %+v", assertions)
	}

	var sawFact bool
	for _, ax := range o.AxiomsFor(batch1) {
		if ax.Kind == axiom.KindObjectPropertyAssertion {
			sawFact = true
		}
	}
	if !sawFact {
		t.Fatalf("expected an ObjectPropertyAssertion fact for batch1")
	}
}

func TestRestrictionAndCardinality(t *testing.T) {
	src := `
Prefix: : <http://example.org/cacao#>
Prefix: owl: <http://www.w3.org/2002/07/owl#>

Class: :Batch
    SubClassOf: :hasDefect max 2 owl:Thing

Class: :Pure
    EquivalentTo: not (:hasDefect some owl:Thing)

ObjectProperty: :hasDefect
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

func TestUndefinedPrefixReportsError(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, "Class: foo:Batch\n", "http://example.org/cacao#", common.BestEffort)
	if len(errsOut) == 0 {
		t.Fatalf("expected an error for an undefined prefix")
	}
}
