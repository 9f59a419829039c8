package common

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// vocab interns the OWL/RDF/RDFS vocabulary terms the lifter recognizes,
// beyond what internal/iri already preallocates as well-known handles.
// Grounded on the standard OWL2 Mapping to RDF Graphs
// (https://www.w3.org/TR/owl2-mapping-to-rdf/), which both Turtle and
// RDF/XML ontologies encode against identically — the two serializations
// differ only in surface syntax, not in the RDF graph they denote, so one
// lifter serves both (see turtle.go/rdfxml.go).
type vocab struct {
	equivalentClass   iri.Handle
	disjointWith      iri.Handle
	intersectionOf    iri.Handle
	unionOf           iri.Handle
	complementOf      iri.Handle
	oneOf             iri.Handle
	onProperty        iri.Handle
	someValuesFrom    iri.Handle
	allValuesFrom     iri.Handle
	hasValue          iri.Handle
	hasSelf           iri.Handle
	minCardinality    iri.Handle
	maxCardinality    iri.Handle
	cardinality       iri.Handle
	minQualCard       iri.Handle
	maxQualCard       iri.Handle
	qualCard          iri.Handle
	onClass           iri.Handle
	inverseOf         iri.Handle
	functionalProp    iri.Handle
	invFunctionalProp iri.Handle
	transitiveProp    iri.Handle
	symmetricProp     iri.Handle
	asymmetricProp    iri.Handle
	reflexiveProp     iri.Handle
	irreflexiveProp   iri.Handle
	annotationProp    iri.Handle
	sameAs            iri.Handle
	differentFrom     iri.Handle
	disjointUnionOf   iri.Handle
	rdfFirst          iri.Handle
	rdfRest           iri.Handle
	rdfNil            iri.Handle
	rdfsSubPropertyOf iri.Handle
}

func newVocab() (*vocab, error) {
	names := map[string]*iri.Handle{}
	v := &vocab{}
	add := func(h *iri.Handle, s string) { names[s] = h }
	add(&v.equivalentClass, "http://www.w3.org/2002/07/owl#equivalentClass")
	add(&v.disjointWith, "http://www.w3.org/2002/07/owl#disjointWith")
	add(&v.intersectionOf, "http://www.w3.org/2002/07/owl#intersectionOf")
	add(&v.unionOf, "http://www.w3.org/2002/07/owl#unionOf")
	add(&v.complementOf, "http://www.w3.org/2002/07/owl#complementOf")
	add(&v.oneOf, "http://www.w3.org/2002/07/owl#oneOf")
	add(&v.onProperty, "http://www.w3.org/2002/07/owl#onProperty")
	add(&v.someValuesFrom, "http://www.w3.org/2002/07/owl#someValuesFrom")
	add(&v.allValuesFrom, "http://www.w3.org/2002/07/owl#allValuesFrom")
	add(&v.hasValue, "http://www.w3.org/2002/07/owl#hasValue")
	add(&v.hasSelf, "http://www.w3.org/2002/07/owl#hasSelf")
	add(&v.minCardinality, "http://www.w3.org/2002/07/owl#minCardinality")
	add(&v.maxCardinality, "http://www.w3.org/2002/07/owl#maxCardinality")
	add(&v.cardinality, "http://www.w3.org/2002/07/owl#cardinality")
	add(&v.minQualCard, "http://www.w3.org/2002/07/owl#minQualifiedCardinality")
	add(&v.maxQualCard, "http://www.w3.org/2002/07/owl#maxQualifiedCardinality")
	add(&v.qualCard, "http://www.w3.org/2002/07/owl#qualifiedCardinality")
	add(&v.onClass, "http://www.w3.org/2002/07/owl#onClass")
	add(&v.inverseOf, "http://www.w3.org/2002/07/owl#inverseOf")
	add(&v.functionalProp, "http://www.w3.org/2002/07/owl#FunctionalProperty")
	add(&v.invFunctionalProp, "http://www.w3.org/2002/07/owl#InverseFunctionalProperty")
	add(&v.transitiveProp, "http://www.w3.org/2002/07/owl#TransitiveProperty")
	add(&v.symmetricProp, "http://www.w3.org/2002/07/owl#SymmetricProperty")
	add(&v.asymmetricProp, "http://www.w3.org/2002/07/owl#AsymmetricProperty")
	add(&v.reflexiveProp, "http://www.w3.org/2002/07/owl#ReflexiveProperty")
	add(&v.irreflexiveProp, "http://www.w3.org/2002/07/owl#IrreflexiveProperty")
	add(&v.annotationProp, "http://www.w3.org/2002/07/owl#AnnotationProperty")
	add(&v.sameAs, "http://www.w3.org/2002/07/owl#sameAs")
	add(&v.differentFrom, "http://www.w3.org/2002/07/owl#differentFrom")
	add(&v.disjointUnionOf, "http://www.w3.org/2002/07/owl#disjointUnionOf")
	add(&v.rdfFirst, "http://www.w3.org/1999/02/22-rdf-syntax-ns#first")
	add(&v.rdfRest, "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest")
	add(&v.rdfNil, "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil")
	add(&v.rdfsSubPropertyOf, "http://www.w3.org/2000/01/rdf-schema#subPropertyOf")
	for s, h := range names {
		interned, err := iri.Intern(s)
		if err != nil {
			return nil, err
		}
		*h = interned
	}
	return v, nil
}

func subjKey(t canon.Term) string {
	switch t.Kind {
	case canon.TermBlank:
		return "_:" + t.Blank
	case canon.TermIRI:
		return "<" + t.IRI.String() + ">"
	default:
		return "lit"
	}
}

// LiftTriples applies the OWL2 Mapping to RDF Graphs in reverse: given the
// triples a Turtle or RDF/XML document expanded to, it recognizes
// declarations, axioms, and assertions and adds them to o. Triples that
// match no recognized OWL-in-RDF pattern are silently ignored (annotation/
// provenance triples outside the OWL vocabulary are common and not an
// error) rather than rejected, matching the "lift what is recognized"
// posture of a profile-agnostic RDF-syntax ontology loader.
func LiftTriples(o *ontology.Ontology, triples []canon.Triple) []error {
	v, err := newVocab()
	if err != nil {
		return []error{err}
	}
	bySubj := make(map[string][]canon.Triple)
	for _, t := range triples {
		bySubj[subjKey(t.Subject)] = append(bySubj[subjKey(t.Subject)], t)
	}

	l := &lifter{o: o, v: v, bySubj: bySubj}
	var errors []error

	// Pass 1: declarations and simple (named-subject) axioms.
	for _, t := range triples {
		if err := l.liftTriple(t); err != nil {
			errors = append(errors, err)
		}
	}
	return errors
}

type lifter struct {
	o      *ontology.Ontology
	v      *vocab
	bySubj map[string][]canon.Triple
}

func (l *lifter) add(ax axiom.Axiom) error {
	if err := l.o.Add(ax); err != nil {
		if _, dup := err.(*errs.DuplicateAxiom); dup {
			return nil
		}
		return err
	}
	return nil
}

func (l *lifter) liftTriple(t canon.Triple) error {
	if t.Subject.Kind != canon.TermIRI {
		// Blank-node subjects are only ever restriction/list/collection
		// nodes, consumed on demand while resolving a named axiom's class
		// expression (resolveClass), never top-level axiom subjects
		// themselves.
		return nil
	}
	subject, err := iri.Intern(t.Subject.IRI.String())
	if err != nil {
		return err
	}

	switch {
	case t.Predicate.Equal(iri.RdfType):
		return l.liftTypeTriple(subject, t.Object)
	case t.Predicate.Equal(iri.RdfsSubClassOf):
		super, err := l.resolveClass(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.SubClassOfAxiom(axiom.Class(subject), super))
	case t.Predicate.Equal(l.v.equivalentClass):
		other, err := l.resolveClass(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.EquivalentClassesAxiom(axiom.Class(subject), other))
	case t.Predicate.Equal(l.v.disjointWith):
		other, err := l.resolveClass(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.DisjointClassesAxiom(axiom.Class(subject), other))
	case t.Predicate.Equal(iri.RdfsDomain):
		dom, err := l.resolveClass(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.ObjectPropertyDomainAxiom(axiom.ObjectProperty(subject), dom))
	case t.Predicate.Equal(iri.RdfsRange):
		rng, err := l.resolveClass(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.ObjectPropertyRangeAxiom(axiom.ObjectProperty(subject), rng))
	case t.Predicate.Equal(l.v.rdfsSubPropertyOf):
		super, err := l.resolveObjectTerm(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.SubObjectPropertyOfAxiom(axiom.ObjectProperty(subject), axiom.ObjectProperty(super)))
	case t.Predicate.Equal(l.v.inverseOf):
		other, err := l.resolveObjectTerm(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.InverseObjectPropertiesAxiom(axiom.ObjectProperty(subject), axiom.ObjectProperty(other)))
	case t.Predicate.Equal(l.v.sameAs):
		other, err := l.resolveObjectTerm(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.SameIndividualAxiom(subject, other))
	case t.Predicate.Equal(l.v.differentFrom):
		other, err := l.resolveObjectTerm(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.DifferentIndividualsAxiom(subject, other))
	case t.Object.Kind == canon.TermLiteral:
		return l.add(axiom.DataPropertyAssertionAxiom(subject, t.Predicate, t.Object.Literal))
	case t.Object.Kind == canon.TermIRI:
		target, err := l.resolveObjectTerm(t.Object)
		if err != nil {
			return err
		}
		return l.add(axiom.ObjectPropertyAssertionAxiom(subject, axiom.ObjectProperty(t.Predicate), target))
	}
	return nil
}

func (l *lifter) liftTypeTriple(subject iri.Handle, obj canon.Term) error {
	if obj.Kind != canon.TermIRI {
		return nil
	}
	switch {
	case obj.IRI.Equal(iri.OwlClass):
		return l.add(axiom.ClassDeclarationAxiom(subject))
	case obj.IRI.Equal(iri.OwlObjectProperty):
		return l.add(axiom.ObjectPropertyDeclarationAxiom(subject))
	case obj.IRI.Equal(iri.OwlDatatypeProperty):
		return l.add(axiom.DataPropertyDeclarationAxiom(subject))
	case obj.IRI.Equal(iri.OwlNamedIndividual):
		return l.add(axiom.NamedIndividualDeclarationAxiom(subject))
	case obj.IRI.Equal(l.v.annotationProp):
		return l.add(axiom.AnnotationPropertyDeclarationAxiom(subject))
	case obj.IRI.Equal(l.v.functionalProp):
		return l.add(axiom.FunctionalObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.invFunctionalProp):
		return l.add(axiom.InverseFunctionalObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.transitiveProp):
		return l.add(axiom.TransitiveObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.symmetricProp):
		return l.add(axiom.SymmetricObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.asymmetricProp):
		return l.add(axiom.AsymmetricObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.reflexiveProp):
		return l.add(axiom.ReflexiveObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	case obj.IRI.Equal(l.v.irreflexiveProp):
		return l.add(axiom.IrreflexiveObjectPropertyAxiom(axiom.ObjectProperty(subject)))
	default:
		return l.add(axiom.ClassAssertionAxiom(subject, axiom.Class(obj.IRI)))
	}
}

func (l *lifter) resolveObjectTerm(t canon.Term) (iri.Handle, error) {
	if t.Kind != canon.TermIRI {
		return iri.Handle{}, &errs.ParseError{Message: "expected a named IRI, found a blank node or literal", Kind: errs.ExpectedClassExpression}
	}
	return t.IRI, nil
}

// resolveClass resolves a class-position term to a ClassExpression: a
// named IRI resolves directly, a blank node is looked up in bySubj and
// classified by which OWL restriction/combinator predicates it carries.
func (l *lifter) resolveClass(t canon.Term) (*axiom.ClassExpression, error) {
	if t.Kind == canon.TermIRI {
		return axiom.Class(t.IRI), nil
	}
	if t.Kind != canon.TermBlank {
		return nil, &errs.ParseError{Message: "a class expression cannot be a literal", Kind: errs.ExpectedClassExpression}
	}
	triples := l.bySubj[subjKey(t)]
	byPred := make(map[string]canon.Term, len(triples))
	for _, tr := range triples {
		byPred[tr.Predicate.String()] = tr.Object
	}

	if obj, ok := byPred[l.v.intersectionOf.String()]; ok {
		items, err := l.readList(obj)
		if err != nil {
			return nil, err
		}
		operands, err := l.resolveClassList(items)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectIntersectionOf(operands...), nil
	}
	if obj, ok := byPred[l.v.unionOf.String()]; ok {
		items, err := l.readList(obj)
		if err != nil {
			return nil, err
		}
		operands, err := l.resolveClassList(items)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectUnionOf(operands...), nil
	}
	if obj, ok := byPred[l.v.complementOf.String()]; ok {
		inner, err := l.resolveClass(obj)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectComplementOf(inner), nil
	}
	if obj, ok := byPred[l.v.oneOf.String()]; ok {
		items, err := l.readList(obj)
		if err != nil {
			return nil, err
		}
		individuals := make([]iri.Handle, 0, len(items))
		for _, it := range items {
			h, err := l.resolveObjectTerm(it)
			if err != nil {
				return nil, err
			}
			individuals = append(individuals, h)
		}
		return axiom.ObjectOneOf(individuals...), nil
	}
	if propTerm, ok := byPred[l.v.onProperty.String()]; ok {
		propIRI, err := l.resolveObjectTerm(propTerm)
		if err != nil {
			return nil, err
		}
		prop := axiom.ObjectProperty(propIRI)
		return l.resolveRestriction(byPred, prop)
	}
	return nil, &errs.ParseError{Message: fmt.Sprintf("unrecognized blank-node class expression %q", t.Blank), Kind: errs.ExpectedClassExpression}
}

func (l *lifter) resolveRestriction(byPred map[string]canon.Term, prop axiom.PropertyExpression) (*axiom.ClassExpression, error) {
	if obj, ok := byPred[l.v.someValuesFrom.String()]; ok {
		filler, err := l.resolveClass(obj)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectSomeValuesFrom(prop, filler), nil
	}
	if obj, ok := byPred[l.v.allValuesFrom.String()]; ok {
		filler, err := l.resolveClass(obj)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectAllValuesFrom(prop, filler), nil
	}
	if obj, ok := byPred[l.v.hasValue.String()]; ok {
		ind, err := l.resolveObjectTerm(obj)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectHasValue(prop, ind), nil
	}
	if _, ok := byPred[l.v.hasSelf.String()]; ok {
		return axiom.ObjectHasSelf(prop), nil
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.minCardinality); ok {
		return axiom.ObjectMinCardinality(n, prop, axiom.Thing()), err
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.maxCardinality); ok {
		return axiom.ObjectMaxCardinality(n, prop, axiom.Thing()), err
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.cardinality); ok {
		return axiom.ObjectExactCardinality(n, prop, axiom.Thing()), err
	}
	qualFiller := axiom.Thing()
	if cls, ok := byPred[l.v.onClass.String()]; ok {
		resolved, err := l.resolveClass(cls)
		if err != nil {
			return nil, err
		}
		qualFiller = resolved
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.minQualCard); ok {
		return axiom.ObjectMinCardinality(n, prop, qualFiller), err
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.maxQualCard); ok {
		return axiom.ObjectMaxCardinality(n, prop, qualFiller), err
	}
	if n, ok, err := l.cardinalityLiteral(byPred, l.v.qualCard); ok {
		return axiom.ObjectExactCardinality(n, prop, qualFiller), err
	}
	return nil, &errs.ParseError{Message: "owl:Restriction with onProperty but no recognized restriction kind", Kind: errs.IncompleteExpression}
}

func (l *lifter) cardinalityLiteral(byPred map[string]canon.Term, pred iri.Handle) (int, bool, error) {
	t, ok := byPred[pred.String()]
	if !ok {
		return 0, false, nil
	}
	if t.Kind != canon.TermLiteral {
		return 0, true, &errs.ParseError{Message: "cardinality value must be a literal", Kind: errs.InvalidCardinality}
	}
	n, err := parseNonNegativeInt(t.Literal)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

func parseNonNegativeInt(lit entity.Literal) (int, error) {
	n := 0
	if lit.Lexical == "" {
		return 0, &errs.ParseError{Message: "empty cardinality literal", Kind: errs.InvalidCardinality}
	}
	for _, c := range lit.Lexical {
		if c < '0' || c > '9' {
			return 0, &errs.ParseError{Message: fmt.Sprintf("invalid cardinality literal %q", lit.Lexical), Kind: errs.InvalidCardinality}
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func (l *lifter) resolveClassList(items []canon.Term) ([]*axiom.ClassExpression, error) {
	out := make([]*axiom.ClassExpression, 0, len(items))
	for _, it := range items {
		c, err := l.resolveClass(it)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// readList walks an rdf:first/rdf:rest collection rooted at head until
// rdf:nil, returning its elements in order.
func (l *lifter) readList(head canon.Term) ([]canon.Term, error) {
	var out []canon.Term
	cur := head
	for {
		if cur.Kind == canon.TermIRI && cur.IRI.Equal(l.v.rdfNil) {
			return out, nil
		}
		if cur.Kind != canon.TermBlank {
			return nil, &errs.ParseError{Message: "malformed RDF collection: expected a blank list node or rdf:nil", Kind: errs.IncompleteExpression}
		}
		triples := l.bySubj[subjKey(cur)]
		var first, rest *canon.Term
		for i := range triples {
			switch {
			case triples[i].Predicate.Equal(l.v.rdfFirst):
				first = &triples[i].Object
			case triples[i].Predicate.Equal(l.v.rdfRest):
				rest = &triples[i].Object
			}
		}
		if first == nil || rest == nil {
			return nil, &errs.ParseError{Message: "malformed RDF collection: missing rdf:first/rdf:rest", Kind: errs.IncompleteExpression}
		}
		out = append(out, *first)
		cur = *rest
	}
}
