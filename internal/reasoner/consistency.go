package reasoner

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// buildABoxGraph seeds an engine's completion graph from the ontology's
// individuals, class/property assertions, and same/different constraints —
// the "ABox" half of the model, per spec.md §4.4.3.
func buildABoxGraph(e *engine, o *ontology.Ontology) error {
	individuals := o.NamedIndividuals()
	seen := make(map[string]struct{}, len(individuals))
	for _, h := range individuals {
		seen[h.String()] = struct{}{}
		n := e.individualNode(h)
		for _, ce := range o.ClassAssertionsFor(h) {
			e.addConceptTracked(n, ce)
		}
	}
	// Object/data property assertions may mention individuals that were
	// never explicitly declared; pick those up too so the graph is
	// complete even for loosely-declared ontologies.
	ensure := func(h iri.Handle) {
		if _, ok := seen[h.String()]; ok {
			return
		}
		seen[h.String()] = struct{}{}
		e.individualNode(h)
	}

	for _, a := range o.AxiomsOfKind(axiom.KindObjectPropertyAssertion) {
		ensure(a.Subject)
		ensure(a.ObjectTarget)
		from := e.individualNode(a.Subject)
		to := e.individualNode(a.ObjectTarget)
		e.addEdgeTracked(from, a.ObjectProp, to.id)
	}
	for _, a := range o.AxiomsOfKind(axiom.KindNegativeObjectPropertyAssertion) {
		ensure(a.Subject)
		ensure(a.ObjectTarget)
		from := e.individualNode(a.Subject)
		to := e.individualNode(a.ObjectTarget)
		if e.hasEdge(from, a.ObjectProp, to.id) {
			return &errs.InvalidTransaction{Message: "negative property assertion contradicts an asserted positive one"}
		}
	}
	for _, a := range o.AxiomsOfKind(axiom.KindDifferentIndividuals) {
		for i := 0; i < len(a.Individuals); i++ {
			ensure(a.Individuals[i])
			for j := i + 1; j < len(a.Individuals); j++ {
				ensure(a.Individuals[j])
				e.markDifferent(e.individualNode(a.Individuals[i]).id, e.individualNode(a.Individuals[j]).id)
			}
		}
	}
	for _, a := range o.AxiomsOfKind(axiom.KindSameIndividual) {
		for i := 1; i < len(a.Individuals); i++ {
			ensure(a.Individuals[0])
			ensure(a.Individuals[i])
			first := e.individualNode(a.Individuals[0])
			other := e.individualNode(a.Individuals[i])
			if e.mustDiffer(first.id, other.id) {
				return &errs.InvalidTransaction{Message: "same-individual assertion contradicts an asserted different-individuals constraint"}
			}
			mergeNodes(e, first, other)
		}
	}
	return nil
}

// mergeNodes folds other's label and outgoing edges into first, used for
// SameIndividual (deterministic — no search required since both names are
// given up front, unlike the general tableaux equality rule).
func mergeNodes(e *engine, first, other *node) {
	if first.id == other.id {
		return
	}
	for _, c := range other.label {
		e.addConceptTracked(first, c)
	}
	for _, ed := range other.edges {
		e.addEdgeTracked(first, ed.prop, ed.to)
	}
	for _, n := range e.g.nodes {
		for i, ed := range n.edges {
			if ed.to == other.id {
				n.edges[i].to = first.id
			}
		}
	}
}

// CheckConsistency runs the tableaux algorithm over the whole ontology ABox
// plus its internalized TBox, per spec.md §4.4.5.
func CheckConsistency(o *ontology.Ontology, rules *ReasoningRules, cfg Config) (bool, error) {
	e := newEngine(rules, cfg)
	if err := buildABoxGraph(e, o); err != nil {
		if _, ok := err.(*errs.InvalidTransaction); ok {
			return false, nil
		}
		return false, err
	}
	return e.complete()
}

// IsClassSatisfiable reports whether class (named by h) can have a
// non-empty extension in some model of the ontology, per spec.md §4.4.7. As
// a fast path, a class no axiom mentions is trivially satisfiable.
func IsClassSatisfiable(o *ontology.Ontology, rules *ReasoningRules, cfg Config, h iri.Handle) (bool, error) {
	if h.Equal(iri.OwlNothing) {
		return false, nil
	}
	if h.Equal(iri.OwlThing) {
		return true, nil
	}
	if !namedClassesMentionedBy(o, h) {
		return true, nil
	}
	e := newEngine(rules, cfg)
	root := e.newManagedNode(-1)
	e.addConceptTracked(root, axiom.Class(h))
	return e.complete()
}

// IsClassExpressionSatisfiable is IsClassSatisfiable generalized to an
// arbitrary (possibly anonymous) class expression, used by IsSubClassOf
// and AreDisjoint for the expressions they build.
func IsClassExpressionSatisfiable(rules *ReasoningRules, cfg Config, c *axiom.ClassExpression) (bool, error) {
	if c.IsNothing() {
		return false, nil
	}
	if c.IsThing() {
		return true, nil
	}
	e := newEngine(rules, cfg)
	root := e.newManagedNode(-1)
	e.addConceptTracked(root, c)
	return e.complete()
}

// IsSubClassOf reports whether sub ⊑ super is entailed: sub ⊓ ¬super must
// be unsatisfiable, per spec.md §4.4.7.
func IsSubClassOf(rules *ReasoningRules, cfg Config, sub, super *axiom.ClassExpression) (bool, error) {
	probe := axiom.ObjectIntersectionOf(sub, axiom.ObjectComplementOf(super))
	sat, err := IsClassExpressionSatisfiable(rules, cfg, probe)
	if err != nil {
		return false, err
	}
	return !sat, nil
}

// AreDisjoint reports whether a ⊓ b is unsatisfiable.
func AreDisjoint(rules *ReasoningRules, cfg Config, a, b *axiom.ClassExpression) (bool, error) {
	probe := axiom.ObjectIntersectionOf(a, b)
	sat, err := IsClassExpressionSatisfiable(rules, cfg, probe)
	if err != nil {
		return false, err
	}
	return !sat, nil
}

// AreEquivalent reports whether a ⊑ b and b ⊑ a both hold.
func AreEquivalent(rules *ReasoningRules, cfg Config, a, b *axiom.ClassExpression) (bool, error) {
	forward, err := IsSubClassOf(rules, cfg, a, b)
	if err != nil || !forward {
		return false, err
	}
	return IsSubClassOf(rules, cfg, b, a)
}
