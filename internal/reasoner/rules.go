// Package reasoner implements the tableaux reasoning core (C6) and the
// simple structural reasoner/classifier (C7) of spec.md §4.4, built over
// internal/ontology and internal/axiom. Grounded on
// original_source/owl2-reasoner/src/reasoning/tableaux/core.rs,
// .../reasoning/consistency.rs, and .../reasoning.rs.
package reasoner

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// ReasoningRules is the bundle extracted from an Ontology at reasoner
// construction time (spec.md §4.4.1): every axiom shape the tableaux
// engine and classifier need, pre-sorted into the categories they use.
type ReasoningRules struct {
	SubClass       []axiom.Axiom // KindSubClassOf
	Equivalence    []axiom.Axiom // KindEquivalentClasses
	Disjointness   []axiom.Axiom // KindDisjointClasses
	DisjointUnion  []axiom.Axiom
	SubProperty    []axiom.Axiom // KindSubObjectPropertyOf (incl. chains)
	PropertyDomain []axiom.Axiom
	PropertyRange  []axiom.Axiom
	InverseProps   []axiom.Axiom
	// characteristics[propertyKey] = set of characteristics asserted for
	// that (resolved) property.
	Characteristics map[string]map[entity.Characteristic]struct{}
	PositiveObjectAssertions []axiom.Axiom
	NegativeObjectAssertions []axiom.Axiom
	PositiveDataAssertions   []axiom.Axiom
	NegativeDataAssertions   []axiom.Axiom
	SameIndividuals          []axiom.Axiom
	DifferentIndividuals     []axiom.Axiom
}

var characteristicKindToCharacteristic = map[axiom.Kind]entity.Characteristic{
	axiom.KindFunctionalObjectProperty:        entity.Functional,
	axiom.KindInverseFunctionalObjectProperty: entity.InverseFunctional,
	axiom.KindTransitiveObjectProperty:        entity.Transitive,
	axiom.KindSymmetricObjectProperty:         entity.Symmetric,
	axiom.KindAsymmetricObjectProperty:        entity.Asymmetric,
	axiom.KindReflexiveObjectProperty:         entity.Reflexive,
	axiom.KindIrreflexiveObjectProperty:       entity.Irreflexive,
}

// ExtractRules builds a ReasoningRules bundle from o.
func ExtractRules(o *ontology.Ontology) *ReasoningRules {
	rr := &ReasoningRules{Characteristics: make(map[string]map[entity.Characteristic]struct{})}
	rr.SubClass = o.AxiomsOfKind(axiom.KindSubClassOf)
	rr.Equivalence = o.AxiomsOfKind(axiom.KindEquivalentClasses)
	rr.Disjointness = o.AxiomsOfKind(axiom.KindDisjointClasses)
	rr.DisjointUnion = o.AxiomsOfKind(axiom.KindDisjointUnion)
	rr.SubProperty = o.AxiomsOfKind(axiom.KindSubObjectPropertyOf)
	rr.PropertyDomain = o.AxiomsOfKind(axiom.KindObjectPropertyDomain)
	rr.PropertyRange = o.AxiomsOfKind(axiom.KindObjectPropertyRange)
	rr.InverseProps = o.AxiomsOfKind(axiom.KindInverseObjectProperties)
	rr.PositiveObjectAssertions = o.AxiomsOfKind(axiom.KindObjectPropertyAssertion)
	rr.NegativeObjectAssertions = o.AxiomsOfKind(axiom.KindNegativeObjectPropertyAssertion)
	rr.PositiveDataAssertions = o.AxiomsOfKind(axiom.KindDataPropertyAssertion)
	rr.NegativeDataAssertions = o.AxiomsOfKind(axiom.KindNegativeDataPropertyAssertion)
	rr.SameIndividuals = o.AxiomsOfKind(axiom.KindSameIndividual)
	rr.DifferentIndividuals = o.AxiomsOfKind(axiom.KindDifferentIndividuals)

	for kind, ch := range characteristicKindToCharacteristic {
		for _, a := range o.AxiomsOfKind(kind) {
			key := a.Property.Key()
			if rr.Characteristics[key] == nil {
				rr.Characteristics[key] = make(map[entity.Characteristic]struct{})
			}
			rr.Characteristics[key][ch] = struct{}{}
		}
	}
	return rr
}

// HasCharacteristic reports whether property p (resolved direction+IRI)
// carries characteristic ch.
func (rr *ReasoningRules) HasCharacteristic(p axiom.PropertyExpression, ch entity.Characteristic) bool {
	set, ok := rr.Characteristics[p.Key()]
	if !ok {
		return false
	}
	_, ok = set[ch]
	return ok
}

// DisjointPairs returns every pair of classes asserted pairwise disjoint,
// expanding each n-ary DisjointClasses axiom.
func (rr *ReasoningRules) DisjointPairs() [][2]*axiom.ClassExpression {
	var out [][2]*axiom.ClassExpression
	for _, a := range rr.Disjointness {
		for i := 0; i < len(a.Classes); i++ {
			for j := i + 1; j < len(a.Classes); j++ {
				out = append(out, [2]*axiom.ClassExpression{a.Classes[i], a.Classes[j]})
			}
		}
	}
	return out
}

// EquivalenceGroups returns, for each EquivalentClasses axiom, the classes
// in that group.
func (rr *ReasoningRules) EquivalenceGroups() [][]*axiom.ClassExpression {
	out := make([][]*axiom.ClassExpression, 0, len(rr.Equivalence))
	for _, a := range rr.Equivalence {
		out = append(out, a.Classes)
	}
	return out
}

// AllSubClassImplications returns every implied SubClassOf as a (sub,
// super) pair: each direct SubClassOf, both directions within each
// equivalence group, and for each DisjointUnion the defined class under
// the union of its parts plus each part under the defined class.
func (rr *ReasoningRules) AllSubClassImplications() [][2]*axiom.ClassExpression {
	var out [][2]*axiom.ClassExpression
	for _, a := range rr.SubClass {
		out = append(out, [2]*axiom.ClassExpression{a.SubClass, a.SuperClass})
	}
	for _, grp := range rr.EquivalenceGroups() {
		for i := range grp {
			for j := range grp {
				if i != j {
					out = append(out, [2]*axiom.ClassExpression{grp[i], grp[j]})
				}
			}
		}
	}
	for _, a := range rr.DisjointUnion {
		union := axiom.ObjectUnionOf(a.Classes...)
		out = append(out, [2]*axiom.ClassExpression{a.SubClass, union})
		for _, part := range a.Classes {
			out = append(out, [2]*axiom.ClassExpression{part, a.SubClass})
		}
	}
	return out
}

// namedClassesMentionedBy reports whether any axiom in the ontology
// mentions class h, used by is_class_satisfiable's short-circuit (spec.md
// §4.4.7: "if no axiom in the ontology mentions C, return true").
func namedClassesMentionedBy(o *ontology.Ontology, h iri.Handle) bool {
	return len(o.AxiomsFor(h)) > 0
}
