package reasoner

import (
	"sort"
	"time"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// engine runs one tableaux expansion (a single consistency or satisfiability
// check) over a fresh completion graph. Grounded on
// original_source/owl2-reasoner/src/reasoning/tableaux/core.rs's expansion
// loop; the rule set covers intersection, union, the quantified/has-value/
// has-self object restrictions, min and max cardinality, and the
// symmetric/transitive/asymmetric/irreflexive property characteristics.
// Exact cardinality restrictions are neither expanded nor checked, and
// reflexive properties get no rule.
type engine struct {
	g        *graph
	rules    *ReasoningRules
	universals []*axiom.ClassExpression // internalized GCIs, applied to every node
	cfg      Config
	deadline time.Time
	log      changeLog

	different map[nodeID]map[nodeID]struct{} // asserted DifferentIndividuals pairs
}

func newEngine(rules *ReasoningRules, cfg Config) *engine {
	e := &engine{
		g:         newGraph(),
		rules:     rules,
		cfg:       cfg,
		different: make(map[nodeID]map[nodeID]struct{}),
	}
	if cfg.Timeout > 0 {
		e.deadline = time.Now().Add(cfg.Timeout)
	}
	for _, pair := range rules.AllSubClassImplications() {
		e.universals = append(e.universals, axiom.ObjectUnionOf(axiom.ObjectComplementOf(pair[0]), pair[1]))
	}
	return e
}

// newManagedNode creates a node, seeds it with every internalized GCI
// obligation, and records its creation for backtracking.
func (e *engine) newManagedNode(parent nodeID) *node {
	n := e.g.newNode(parent)
	for _, u := range e.universals {
		n.addConcept(u)
	}
	e.log.push(func() { delete(e.g.nodes, n.id) })
	return n
}

func (e *engine) addConceptTracked(n *node, c *axiom.ClassExpression) bool {
	if !n.addConcept(c) {
		return false
	}
	k := c.Key()
	e.log.push(func() { delete(n.label, k) })
	return true
}

func (e *engine) addEdgeTracked(from *node, p axiom.PropertyExpression, to nodeID) {
	from.edges = append(from.edges, edge{to: to, prop: p})
	e.log.push(func() { from.edges = from.edges[:len(from.edges)-1] })
}

func (e *engine) markDifferent(a, b nodeID) {
	if e.different[a] == nil {
		e.different[a] = make(map[nodeID]struct{})
	}
	e.different[a][b] = struct{}{}
	if e.different[b] == nil {
		e.different[b] = make(map[nodeID]struct{})
	}
	e.different[b][a] = struct{}{}
}

func (e *engine) mustDiffer(a, b nodeID) bool {
	_, ok := e.different[a][b]
	return ok
}

// timedOut reports whether the wall-clock budget named in spec.md §4.4.6
// has been exceeded.
func (e *engine) timedOut() bool {
	return !e.deadline.IsZero() && time.Now().After(e.deadline)
}

// clash reports whether n's label (together with its edges, for the role
// characteristic checks) contains a logical contradiction.
func (e *engine) clash(n *node) bool {
	if n.hasConcept(axiom.Nothing()) {
		return true
	}
	// Direct complement pairs: C and not-C both present.
	for _, c := range n.label {
		if c.Kind == axiom.CEObjectComplementOf {
			if n.hasConcept(c.Complement) {
				return true
			}
		}
	}
	// Asserted pairwise disjointness.
	for _, pair := range e.rules.DisjointPairs() {
		if n.hasConcept(pair[0]) && n.hasConcept(pair[1]) {
			return true
		}
	}
	// Irreflexive/asymmetric role clashes.
	for _, ed := range n.edges {
		if ed.to == n.id && e.rules.HasCharacteristic(ed.prop, entity.Irreflexive) {
			return true
		}
		if e.rules.HasCharacteristic(ed.prop, entity.Asymmetric) {
			if e.hasEdge(e.g.nodes[ed.to], ed.prop, n.id) {
				return true
			}
		}
	}
	return false
}

func (e *engine) hasEdge(n *node, p axiom.PropertyExpression, to nodeID) bool {
	for _, ed := range n.edges {
		if ed.to == to && ed.prop.Equal(p) {
			return true
		}
	}
	return false
}

// pushNegation rewrites ¬C for a compound C into its De Morgan equivalent,
// or returns nil when c is already atomic or not a complement (nothing to
// push further).
func pushNegation(c *axiom.ClassExpression) *axiom.ClassExpression {
	if c.Kind != axiom.CEObjectComplementOf {
		return nil
	}
	inner := c.Complement
	switch inner.Kind {
	case axiom.CEObjectComplementOf:
		return inner.Complement
	case axiom.CEObjectIntersectionOf:
		neg := make([]*axiom.ClassExpression, len(inner.Operands))
		for i, op := range inner.Operands {
			neg[i] = axiom.ObjectComplementOf(op)
		}
		return axiom.ObjectUnionOf(neg...)
	case axiom.CEObjectUnionOf:
		neg := make([]*axiom.ClassExpression, len(inner.Operands))
		for i, op := range inner.Operands {
			neg[i] = axiom.ObjectComplementOf(op)
		}
		return axiom.ObjectIntersectionOf(neg...)
	case axiom.CEObjectSomeValuesFrom:
		return axiom.ObjectAllValuesFrom(inner.ObjectProperty, axiom.ObjectComplementOf(inner.Filler))
	case axiom.CEObjectAllValuesFrom:
		return axiom.ObjectSomeValuesFrom(inner.ObjectProperty, axiom.ObjectComplementOf(inner.Filler))
	default:
		return nil
	}
}

func fillerOrThing(f *axiom.ClassExpression) *axiom.ClassExpression {
	if f == nil {
		return axiom.Thing()
	}
	return f
}

// matchesFiller reports whether successor n counts toward a cardinality
// restriction's filler: every individual trivially satisfies owl:Thing (the
// unqualified form), so that case never requires an explicit label entry.
func matchesFiller(n *node, filler *axiom.ClassExpression) bool {
	if filler.IsThing() {
		return true
	}
	return n.hasConcept(filler)
}

// sortedNodeIDs gives a stable processing order so expansion is
// deterministic across runs, matching spec.md §5's "deterministic result
// aggregation" expectation even for the single-threaded tableaux path.
func (e *engine) sortedNodeIDs() []nodeID {
	ids := make([]nodeID, 0, len(e.g.nodes))
	for id := range e.g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// applyDeterministic tries the rules with exactly one possible outcome
// (intersection, negation-pushing, quantifiers, has-value/self, role
// characteristics, and cardinality) against a single node. It returns
// applied=true the moment it makes any change, so the caller can re-scan
// from a consistent state (nodes/edges may have been added).
func (e *engine) applyDeterministic(n *node) (applied bool, err error) {
	if e.timedOut() {
		return false, &errs.TimeoutError{Operation: "tableaux expansion", TimeoutMs: e.cfg.Timeout.Milliseconds()}
	}
	for _, c := range n.label {
		switch c.Kind {
		case axiom.CEObjectIntersectionOf:
			for _, op := range c.Operands {
				if e.addConceptTracked(n, op) {
					return true, nil
				}
			}
		case axiom.CEObjectComplementOf:
			if rewritten := pushNegation(c); rewritten != nil {
				if e.addConceptTracked(n, rewritten) {
					return true, nil
				}
			}
		case axiom.CEObjectSomeValuesFrom:
			if e.expandSome(n, c) {
				return true, nil
			}
		case axiom.CEObjectAllValuesFrom:
			if e.expandAll(n, c) {
				return true, nil
			}
		case axiom.CEObjectHasValue:
			if e.expandHasValue(n, c) {
				return true, nil
			}
		case axiom.CEObjectHasSelf:
			if !e.hasEdge(n, c.ObjectProperty, n.id) {
				e.addEdgeTracked(n, c.ObjectProperty, n.id)
				return true, nil
			}
		case axiom.CEObjectMinCardinality:
			if e.expandMinCardinality(n, c) {
				return true, nil
			}
		case axiom.CEObjectMaxCardinality:
			// handled as a clash check in maxCardinalityViolated, not an
			// expansion (no merging support, see DESIGN.md).
		}
	}
	if e.propagateRoleCharacteristics(n) {
		return true, nil
	}
	return false, nil
}

// expandSome implements ∃p.C: reuse an existing p-successor already
// satisfying C, or a functional property's unique successor, before
// creating a fresh one.
func (e *engine) expandSome(n *node, c *axiom.ClassExpression) bool {
	for _, succID := range n.successorsVia(c.ObjectProperty) {
		if matchesFiller(e.g.nodes[succID], c.Filler) {
			return false
		}
	}
	succs := n.successorsVia(c.ObjectProperty)
	if e.rules.HasCharacteristic(c.ObjectProperty, entity.Functional) && len(succs) > 0 {
		return e.addConceptTracked(e.g.nodes[succs[0]], c.Filler)
	}
	succ := e.newManagedNode(n.id)
	e.addEdgeTracked(n, c.ObjectProperty, succ.id)
	e.addConceptTracked(succ, c.Filler)
	return true
}

// expandAll implements ∀p.C over every existing p-successor.
func (e *engine) expandAll(n *node, c *axiom.ClassExpression) bool {
	applied := false
	for _, succID := range n.successorsVia(c.ObjectProperty) {
		if e.addConceptTracked(e.g.nodes[succID], c.Filler) {
			applied = true
		}
	}
	return applied
}

// expandHasValue implements ∃p.{a}: ensures a p-edge to the individual a's
// node exists.
func (e *engine) expandHasValue(n *node, c *axiom.ClassExpression) bool {
	target := e.individualNode(c.Value)
	if e.hasEdge(n, c.ObjectProperty, target.id) {
		return false
	}
	e.addEdgeTracked(n, c.ObjectProperty, target.id)
	return true
}

// expandMinCardinality creates fresh successors until n has at least
// Cardinality distinct p-successors satisfying Filler.
func (e *engine) expandMinCardinality(n *node, c *axiom.ClassExpression) bool {
	filler := fillerOrThing(c.Filler)
	count := 0
	for _, succID := range n.successorsVia(c.ObjectProperty) {
		if matchesFiller(e.g.nodes[succID], filler) {
			count++
		}
	}
	if count >= c.Cardinality {
		return false
	}
	succ := e.newManagedNode(n.id)
	e.addEdgeTracked(n, c.ObjectProperty, succ.id)
	e.addConceptTracked(succ, filler)
	return true
}

// maxCardinalityViolated reports whether n has strictly more distinct
// p-successors satisfying Filler than c.Cardinality allows. Successors are
// treated as pairwise distinct (no merging search), a deliberate
// simplification documented in DESIGN.md.
func (e *engine) maxCardinalityViolated(n *node, c *axiom.ClassExpression) bool {
	filler := fillerOrThing(c.Filler)
	count := 0
	for _, succID := range n.successorsVia(c.ObjectProperty) {
		if matchesFiller(e.g.nodes[succID], filler) {
			count++
		}
	}
	return count > c.Cardinality
}

// propagateRoleCharacteristics implements the symmetric/transitive
// characteristic rules, the only role rules with a single deterministic
// outcome.
func (e *engine) propagateRoleCharacteristics(n *node) bool {
	for _, ed := range n.edges {
		if e.rules.HasCharacteristic(ed.prop, entity.Symmetric) {
			target := e.g.nodes[ed.to]
			if !e.hasEdge(target, ed.prop, n.id) {
				e.addEdgeTracked(target, ed.prop, n.id)
				return true
			}
		}
		if e.rules.HasCharacteristic(ed.prop, entity.Transitive) {
			mid := e.g.nodes[ed.to]
			for _, ed2 := range mid.edges {
				if ed2.prop.Equal(ed.prop) && !e.hasEdge(n, ed.prop, ed2.to) {
					e.addEdgeTracked(n, ed.prop, ed2.to)
					return true
				}
			}
		}
	}
	return false
}

// individualNode returns (creating if necessary) the root node representing
// named individual h.
func (e *engine) individualNode(h iri.Handle) *node {
	for _, n := range e.g.nodes {
		if n.individualName == h.String() {
			return n
		}
	}
	n := e.newManagedNode(-1)
	n.individualName = h.String()
	return n
}

// findUnexpandedDisjunction locates a union-kind concept in some node's
// label that has not yet had any disjunct asserted, the one genuinely
// non-deterministic choice this engine makes.
func (e *engine) findUnexpandedDisjunction() (*node, *axiom.ClassExpression, bool) {
	for _, id := range e.sortedNodeIDs() {
		n := e.g.nodes[id]
		if n.blocked {
			continue
		}
		for _, c := range n.label {
			if c.Kind != axiom.CEObjectUnionOf {
				continue
			}
			satisfied := false
			for _, op := range c.Operands {
				if n.hasConcept(op) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return n, c, true
			}
		}
	}
	return nil, nil, false
}

// complete runs the tableaux algorithm to a fixpoint, recursing into the
// non-deterministic union rule via backtracking search (spec.md §4.4.4). It
// returns consistent=true iff a clash-free completion graph was found.
func (e *engine) complete() (bool, error) {
	for {
		if e.timedOut() {
			return false, &errs.TimeoutError{Operation: "tableaux expansion", TimeoutMs: e.cfg.Timeout.Milliseconds()}
		}
		progressed := false
		for _, id := range e.sortedNodeIDs() {
			n := e.g.nodes[id]
			if blocked, by := isBlocked(e.g, n, e.cfg.Blocking); blocked {
				n.blocked = true
				n.blockedBy = by
				continue
			}
			if e.clash(n) {
				return false, nil
			}
			for _, c := range n.label {
				if c.Kind == axiom.CEObjectMaxCardinality && e.maxCardinalityViolated(n, c) {
					return false, nil
				}
			}
			if e.g.depth(n) > e.cfg.MaxDepth {
				return false, &errs.ReasoningError{Message: "tableaux expansion exceeded max depth"}
			}
			applied, err := e.applyDeterministic(n)
			if err != nil {
				return false, err
			}
			if applied {
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}

	n, disjunction, found := e.findUnexpandedDisjunction()
	if !found {
		return true, nil
	}
	mark := e.log.mark()
	for _, disjunct := range disjunction.Operands {
		if e.addConceptTracked(n, disjunct) {
			ok, err := e.complete()
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		e.log.rewind(mark)
	}
	return false, nil
}
