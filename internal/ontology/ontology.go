// Package ontology implements the indexed axiom store of spec.md §3.4/§4.2
// (C4): a set of axioms partitioned by kind, with typed accessors and
// secondary indexes by IRI. Mutation is single-writer; readers take a
// shared lock and observe a consistent snapshot, the same discipline the
// teacher's core/ledger.go applies to block-chain state (single mutator,
// many concurrent readers over one sync.RWMutex).
package ontology

import (
	"sync"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// Ontology is the mutable axiom store. Zero value is not usable; use New.
type Ontology struct {
	mu sync.RWMutex

	byKind map[axiom.Kind][]axiom.Axiom
	keys   map[string]struct{} // Axiom.Key() -> present, for DuplicateAxiom detection

	classes      map[string]iri.Handle
	objectProps  map[string]iri.Handle
	dataProps    map[string]iri.Handle
	annotProps   map[string]iri.Handle
	individuals  map[string]iri.Handle

	// axiomsByEntity indexes every axiom touching a given IRI (class,
	// property, or individual), for "axioms involving X" queries (§3.4).
	axiomsByEntity map[string][]axiom.Axiom

	// generation increments on every mutation; callers (reasoner/query
	// caches) use it to detect "the ontology changed under me" without
	// needing to diff the whole axiom set.
	generation uint64
}

// New constructs an empty ontology.
func New() *Ontology {
	return &Ontology{
		byKind:         make(map[axiom.Kind][]axiom.Axiom),
		keys:           make(map[string]struct{}),
		classes:        make(map[string]iri.Handle),
		objectProps:    make(map[string]iri.Handle),
		dataProps:      make(map[string]iri.Handle),
		annotProps:     make(map[string]iri.Handle),
		individuals:    make(map[string]iri.Handle),
		axiomsByEntity: make(map[string][]axiom.Axiom),
	}
}

// Generation returns the current mutation counter, for cache invalidation.
func (o *Ontology) Generation() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.generation
}

// Add inserts ax, failing with *errs.DuplicateAxiom if a structurally
// equal axiom is already present (spec.md §4.2).
func (o *Ontology) Add(ax axiom.Axiom) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	k := ax.Key()
	if _, ok := o.keys[k]; ok {
		return &errs.DuplicateAxiom{Description: k}
	}
	o.keys[k] = struct{}{}
	o.byKind[ax.Kind] = append(o.byKind[ax.Kind], ax)
	o.indexEntities(ax)
	o.generation++
	return nil
}

// indexEntities registers ax against the secondary indexes (classes,
// properties, individuals by IRI, and axioms-by-entity). Declarations
// register the entity itself; every axiom kind registers the entities
// it references in the axioms-by-entity index, so AxiomsFor works for
// undeclared built-ins (owl:Thing, owl:Nothing) too.
func (o *Ontology) indexEntities(ax axiom.Axiom) {
	switch ax.Kind {
	case axiom.KindClassDeclaration:
		o.classes[ax.DeclaredIRI.String()] = ax.DeclaredIRI
	case axiom.KindObjectPropertyDeclaration:
		o.objectProps[ax.DeclaredIRI.String()] = ax.DeclaredIRI
	case axiom.KindDataPropertyDeclaration:
		o.dataProps[ax.DeclaredIRI.String()] = ax.DeclaredIRI
	case axiom.KindAnnotationPropertyDeclaration:
		o.annotProps[ax.DeclaredIRI.String()] = ax.DeclaredIRI
	case axiom.KindNamedIndividualDeclaration:
		o.individuals[ax.DeclaredIRI.String()] = ax.DeclaredIRI
	}
	for _, h := range axiomEntityRefs(ax) {
		o.axiomsByEntity[h.String()] = append(o.axiomsByEntity[h.String()], ax)
	}
}

// axiomEntityRefs extracts every entity IRI an axiom mentions, used to
// build the axioms-by-entity index and to validate the "every referenced
// entity appears in a declaration or is a built-in" invariant (§3.4).
func axiomEntityRefs(ax axiom.Axiom) []iri.Handle {
	var out []iri.Handle
	add := func(h iri.Handle) {
		if h.Valid() {
			out = append(out, h)
		}
	}
	addCE := func(c *axiom.ClassExpression) { out = append(out, classExprRefs(c)...) }

	switch ax.Kind {
	case axiom.KindSubClassOf:
		addCE(ax.SubClass)
		addCE(ax.SuperClass)
	case axiom.KindEquivalentClasses, axiom.KindDisjointClasses:
		for _, c := range ax.Classes {
			addCE(c)
		}
	case axiom.KindDisjointUnion:
		addCE(ax.SubClass)
		for _, c := range ax.Classes {
			addCE(c)
		}
	case axiom.KindSubObjectPropertyOf:
		add(ax.SubProperty.IRI)
		for _, p := range ax.Chain {
			add(p.IRI)
		}
		add(ax.SuperProperty.IRI)
	case axiom.KindEquivalentObjectProperties, axiom.KindDisjointObjectProperties:
		for _, p := range ax.Properties {
			add(p.IRI)
		}
	case axiom.KindInverseObjectProperties:
		add(ax.First.IRI)
		add(ax.Second.IRI)
	case axiom.KindObjectPropertyDomain:
		add(ax.Property.IRI)
		addCE(ax.Domain)
	case axiom.KindObjectPropertyRange:
		add(ax.Property.IRI)
		addCE(ax.Range)
	case axiom.KindDataPropertyDomain:
		add(ax.DataProp)
		addCE(ax.Domain)
	case axiom.KindDataPropertyRange:
		add(ax.DataProp)
	case axiom.KindFunctionalObjectProperty, axiom.KindInverseFunctionalObjectProperty,
		axiom.KindTransitiveObjectProperty, axiom.KindSymmetricObjectProperty,
		axiom.KindAsymmetricObjectProperty, axiom.KindReflexiveObjectProperty,
		axiom.KindIrreflexiveObjectProperty:
		add(ax.Property.IRI)
	case axiom.KindFunctionalDataProperty:
		add(ax.DataProp)
	case axiom.KindClassAssertion:
		add(ax.Individual)
		addCE(ax.ClassExpr)
	case axiom.KindObjectPropertyAssertion, axiom.KindNegativeObjectPropertyAssertion:
		add(ax.Subject)
		add(ax.ObjectProp.IRI)
		add(ax.ObjectTarget)
	case axiom.KindDataPropertyAssertion, axiom.KindNegativeDataPropertyAssertion:
		add(ax.Subject)
		add(ax.DataProp)
	case axiom.KindSameIndividual, axiom.KindDifferentIndividuals:
		for _, i := range ax.Individuals {
			add(i)
		}
	case axiom.KindClassDeclaration, axiom.KindObjectPropertyDeclaration,
		axiom.KindDataPropertyDeclaration, axiom.KindAnnotationPropertyDeclaration,
		axiom.KindNamedIndividualDeclaration:
		add(ax.DeclaredIRI)
	case axiom.KindAnnotationAssertion:
		add(ax.AnnotationSubject)
		add(ax.AnnotationProperty)
	}
	return out
}

func classExprRefs(c *axiom.ClassExpression) []iri.Handle {
	if c == nil {
		return nil
	}
	var out []iri.Handle
	switch c.Kind {
	case axiom.CEClass:
		out = append(out, c.Class)
	case axiom.CEObjectIntersectionOf, axiom.CEObjectUnionOf:
		for _, op := range c.Operands {
			out = append(out, classExprRefs(op)...)
		}
	case axiom.CEObjectComplementOf:
		out = append(out, classExprRefs(c.Complement)...)
	case axiom.CEObjectOneOf:
		out = append(out, c.Individuals...)
	case axiom.CEObjectSomeValuesFrom, axiom.CEObjectAllValuesFrom,
		axiom.CEObjectMinCardinality, axiom.CEObjectMaxCardinality, axiom.CEObjectExactCardinality:
		out = append(out, c.ObjectProperty.IRI)
		out = append(out, classExprRefs(c.Filler)...)
	case axiom.CEObjectHasValue:
		out = append(out, c.ObjectProperty.IRI, c.Value)
	case axiom.CEObjectHasSelf:
		out = append(out, c.ObjectProperty.IRI)
	case axiom.CEDataSomeValuesFrom, axiom.CEDataAllValuesFrom, axiom.CEDataHasValue,
		axiom.CEDataMinCardinality, axiom.CEDataMaxCardinality, axiom.CEDataExactCardinality:
		out = append(out, c.DataProperty)
	}
	return out
}

// AxiomsOfKind returns all axioms of the given kind, in insertion order
// (spec.md §3.4's "accessors return stable iteration order").
func (o *Ontology) AxiomsOfKind(k axiom.Kind) []axiom.Axiom {
	o.mu.RLock()
	defer o.mu.RUnlock()
	src := o.byKind[k]
	out := make([]axiom.Axiom, len(src))
	copy(out, src)
	return out
}

// All returns every axiom in the ontology, grouped by kind in Kind-value
// order, each group in insertion order.
func (o *Ontology) All() []axiom.Axiom {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []axiom.Axiom
	for k := axiom.KindSubClassOf; k <= axiom.KindAnnotationAssertion; k++ {
		out = append(out, o.byKind[k]...)
	}
	return out
}

// AxiomsFor returns every axiom referencing entity h, in insertion order.
func (o *Ontology) AxiomsFor(h iri.Handle) []axiom.Axiom {
	o.mu.RLock()
	defer o.mu.RUnlock()
	src := o.axiomsByEntity[h.String()]
	out := make([]axiom.Axiom, len(src))
	copy(out, src)
	return out
}

func sortedHandles(m map[string]iri.Handle) []iri.Handle {
	out := make([]iri.Handle, 0, len(m))
	for _, h := range m {
		out = append(out, h)
	}
	return out
}

// Classes returns every declared class, in declaration order.
func (o *Ontology) Classes() []iri.Handle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return classDeclOrder(o.byKind[axiom.KindClassDeclaration])
}

// ObjectProperties returns every declared object property.
func (o *Ontology) ObjectProperties() []iri.Handle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]iri.Handle, 0, len(o.byKind[axiom.KindObjectPropertyDeclaration]))
	for _, a := range o.byKind[axiom.KindObjectPropertyDeclaration] {
		out = append(out, a.DeclaredIRI)
	}
	return out
}

// DataProperties returns every declared data property.
func (o *Ontology) DataProperties() []iri.Handle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]iri.Handle, 0, len(o.byKind[axiom.KindDataPropertyDeclaration]))
	for _, a := range o.byKind[axiom.KindDataPropertyDeclaration] {
		out = append(out, a.DeclaredIRI)
	}
	return out
}

// NamedIndividuals returns every declared named individual.
func (o *Ontology) NamedIndividuals() []iri.Handle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]iri.Handle, 0, len(o.byKind[axiom.KindNamedIndividualDeclaration]))
	for _, a := range o.byKind[axiom.KindNamedIndividualDeclaration] {
		out = append(out, a.DeclaredIRI)
	}
	return out
}

func classDeclOrder(decls []axiom.Axiom) []iri.Handle {
	out := make([]iri.Handle, 0, len(decls))
	for _, a := range decls {
		out = append(out, a.DeclaredIRI)
	}
	return out
}

// IsDeclared reports whether h has a declaration axiom of any kind, or is
// one of the built-ins (owl:Thing/owl:Nothing), satisfying the invariant
// in spec.md §3.4.
func (o *Ontology) IsDeclared(h iri.Handle) bool {
	if h.Equal(iri.OwlThing) || h.Equal(iri.OwlNothing) {
		return true
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.classes[h.String()]
	if ok {
		return true
	}
	if _, ok := o.objectProps[h.String()]; ok {
		return true
	}
	if _, ok := o.dataProps[h.String()]; ok {
		return true
	}
	if _, ok := o.annotProps[h.String()]; ok {
		return true
	}
	if _, ok := o.individuals[h.String()]; ok {
		return true
	}
	return false
}

// ClassAssertionsFor returns the class expressions asserted of individual
// h, used by the tableaux engine to initialize the root node (spec.md
// §4.4.3: "a class assertion is the only justification for placing a
// concept at the root").
func (o *Ontology) ClassAssertionsFor(h iri.Handle) []*axiom.ClassExpression {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []*axiom.ClassExpression
	for _, a := range o.byKind[axiom.KindClassAssertion] {
		if a.Individual.Equal(h) {
			out = append(out, a.ClassExpr)
		}
	}
	return out
}

// AllClassAssertions returns every (individual, class-expression) pair
// asserted in the ontology, in insertion order.
func (o *Ontology) AllClassAssertions() []axiom.Axiom {
	return o.AxiomsOfKind(axiom.KindClassAssertion)
}
