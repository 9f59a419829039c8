package reasoner

import "github.com/provchain-labs/owl2reasoner/internal/axiom"

// nodeID identifies a tableaux graph node. Root nodes (one per named
// individual seeding the model) keep the individual's IRI string as part of
// their debug label; anonymous successors are created fresh during
// expansion.
type nodeID int

// edge is a directed, property-labeled connection between two nodes, per
// spec.md §4.4.3's "role edges" over the tableaux completion graph.
type edge struct {
	to   nodeID
	prop axiom.PropertyExpression
}

// node is a single tableaux completion-graph vertex: a label (set of class
// expressions forced true at this node) plus its outgoing role edges.
// Grounded on original_source/owl2-reasoner/src/reasoning/tableaux/core.rs's
// node/label model.
type node struct {
	id       nodeID
	label    map[string]*axiom.ClassExpression // Key() -> expression
	edges    []edge
	parent   nodeID // -1 for roots
	parentOf edge   // never assigned; stays the zero edge for every node

	blocked   bool
	blockedBy nodeID

	// individualName is non-empty when this node stands for a named
	// individual; individualNode sets it and finds existing nodes by it.
	individualName string
}

func newNode(id nodeID, parent nodeID) *node {
	return &node{id: id, label: make(map[string]*axiom.ClassExpression), parent: parent, blockedBy: -1}
}

// addConcept adds c to the node's label, returning true if it was new.
func (n *node) addConcept(c *axiom.ClassExpression) bool {
	k := c.Key()
	if _, ok := n.label[k]; ok {
		return false
	}
	n.label[k] = c
	return true
}

func (n *node) hasConcept(c *axiom.ClassExpression) bool {
	_, ok := n.label[c.Key()]
	return ok
}

// successorsVia returns the node IDs reachable from n via property p
// (resolved direction honored by the caller).
func (n *node) successorsVia(p axiom.PropertyExpression) []nodeID {
	var out []nodeID
	for _, e := range n.edges {
		if e.prop.Equal(p) {
			out = append(out, e.to)
		}
	}
	return out
}

// graph is the tableaux completion graph built and expanded for a single
// consistency/satisfiability check. Discarded after the check completes —
// spec.md §4.4.3 does not ask for model reuse across checks.
type graph struct {
	nodes  map[nodeID]*node
	nextID nodeID
}

func newGraph() *graph {
	return &graph{nodes: make(map[nodeID]*node)}
}

func (g *graph) newNode(parent nodeID) *node {
	n := newNode(g.nextID, parent)
	g.nodes[n.id] = n
	g.nextID++
	return n
}

func (g *graph) addEdge(from nodeID, p axiom.PropertyExpression, to nodeID) {
	n := g.nodes[from]
	n.edges = append(n.edges, edge{to: to, prop: p})
}

// ancestors returns the chain of node IDs from n's parent up to the root,
// nearest ancestor first, used by blocking checks.
func (g *graph) ancestors(n *node) []*node {
	var out []*node
	cur := n.parent
	for cur >= 0 {
		anc := g.nodes[cur]
		out = append(out, anc)
		cur = anc.parent
	}
	return out
}

func (g *graph) depth(n *node) int {
	d := 0
	cur := n.parent
	for cur >= 0 {
		d++
		cur = g.nodes[cur].parent
	}
	return d
}
