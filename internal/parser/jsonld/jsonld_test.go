package jsonld

import (
	"strings"
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

const sampleJSONLD = `{
  "@context": {
    "ex": "http://example.org/cacao#",
    "owl": "http://www.w3.org/2002/07/owl#",
    "rdfs": "http://www.w3.org/2000/01/rdf-schema#"
  },
  "@graph": [
    {"@id": "ex:Batch", "@type": "owl:Class"},
    {"@id": "ex:Farm", "@type": "owl:Class"},
    {
      "@id": "ex:harvestedFrom",
      "@type": "owl:ObjectProperty",
      "rdfs:domain": {"@id": "ex:Batch"},
      "rdfs:range": {"@id": "ex:Farm"}
    },
    {
      "@id": "ex:batch1",
      "@type": "ex:Batch",
      "ex:harvestedFrom": {"@id": "ex:farmA"}
    }
  ]
}`

func TestLoadDeclarationsAndAssertions(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, strings.NewReader(sampleJSONLD), "http://example.org/cacao#")
	if len(errsOut) != 0 {
		t.Fatalf("unexpected parse/lift errors: %v", errsOut)
	}

	batch, err := iri.Intern("http://example.org/cacao#Batch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !o.IsDeclared(batch) {
		t.Fatalf("expected ex:Batch to be declared a class")
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
		t.Fatalf("expected domain/range axioms for harvestedFrom, got domain=%v range=%v", sawDomain, sawRange)
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

const collectionJSONLD = `{
  "@context": {
    "ex": "http://example.org/cacao#",
    "owl": "http://www.w3.org/2002/07/owl#"
  },
  "@id": "ex:Premium",
  "owl:equivalentClass": {
    "@type": "owl:Class",
    "owl:unionOf": {
      "@list": [{"@id": "ex:Batch"}, {"@id": "ex:Farm"}]
    }
  }
}`

func TestListContainerLiftsToUnionOf(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, strings.NewReader(collectionJSONLD), "http://example.org/cacao#")
	if len(errsOut) != 0 {
		t.Fatalf("unexpected parse/lift errors: %v", errsOut)
	}
	premium, err := iri.Intern("http://example.org/cacao#Premium")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	var found bool
	for _, ax := range o.AxiomsFor(premium) {
		if ax.Kind == axiom.KindEquivalentClasses {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EquivalentClasses axiom lifted from the @list-encoded unionOf")
	}
}
