package rdfxml

import (
	"strings"
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

const sampleRDFXML = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:ex="http://example.org/cacao#">
  <owl:Class rdf:about="http://example.org/cacao#Batch"/>
  <owl:Class rdf:about="http://example.org/cacao#Farm"/>
  <owl:ObjectProperty rdf:about="http://example.org/cacao#harvestedFrom">
    <rdfs:domain rdf:resource="http://example.org/cacao#Batch"/>
    <rdfs:range rdf:resource="http://example.org/cacao#Farm"/>
  </owl:ObjectProperty>
  <ex:Batch rdf:about="http://example.org/cacao#batch1">
    <ex:harvestedFrom rdf:resource="http://example.org/cacao#farmA"/>
  </ex:Batch>
</rdf:RDF>`

func TestLoadDeclarationsAndAssertions(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, strings.NewReader(sampleRDFXML), "http://example.org/cacao#")
	if len(errsOut) != 0 {
		t.Fatalf("unexpected parse/lift errors: %v", errsOut)
	}

	batch, err := iri.Intern("http://example.org/cacao#Batch")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !o.IsDeclared(batch) {
		t.Fatalf("expected Batch to be declared a class")
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
		t.Fatalf("expected domain and range axioms for harvestedFrom, got domain=%v range=%v", sawDomain, sawRange)
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

const collectionRDFXML = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:ex="http://example.org/cacao#">
  <owl:Class rdf:about="http://example.org/cacao#Premium">
    <owl:equivalentClass>
      <owl:Class>
        <owl:unionOf rdf:parseType="Collection">
          <owl:Class rdf:about="http://example.org/cacao#Batch"/>
          <owl:Class rdf:about="http://example.org/cacao#Farm"/>
        </owl:unionOf>
      </owl:Class>
    </owl:equivalentClass>
  </owl:Class>
</rdf:RDF>`

func TestCollectionLiftsToUnionOf(t *testing.T) {
	o := ontology.New()
	errsOut := Load(o, strings.NewReader(collectionRDFXML), "http://example.org/cacao#")
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
		t.Fatalf("expected an EquivalentClasses axiom lifted from the unionOf collection")
	}
}
