package axiom

import "github.com/provchain-labs/owl2reasoner/internal/iri"

// PropertyExpression is either a named object property or its inverse,
// per spec.md §3.2. ObjectInverseOf chains are flattened at construction
// time to a single (inverted, iri) pair, per §4.4.3's "resolved direction"
// rule — there is never a multiply-nested inverse to walk at reasoning
// time.
type PropertyExpression struct {
	IRI      iri.Handle
	Inverted bool
}

// ObjectProperty constructs a direct (non-inverted) property expression.
func ObjectProperty(h iri.Handle) PropertyExpression {
	return PropertyExpression{IRI: h}
}

// ObjectInverseOf flattens nested inverses: the inverse of an already-
// inverted expression is the direct one, never a deeper wrapper.
func ObjectInverseOf(pe PropertyExpression) PropertyExpression {
	return PropertyExpression{IRI: pe.IRI, Inverted: !pe.Inverted}
}

// Key is the structural identity used by concept-set/cache keys.
func (p PropertyExpression) Key() string {
	if p.Inverted {
		return "Inv(" + p.IRI.String() + ")"
	}
	return p.IRI.String()
}

// Equal compares two property expressions by resolved direction and IRI.
func (p PropertyExpression) Equal(other PropertyExpression) bool {
	return p.Inverted == other.Inverted && p.IRI.Equal(other.IRI)
}

// Resolved mirrors the Rust original's "(inverted, base-IRI)" pair used
// throughout cardinality/clash checks in spec.md §4.4.3.
func (p PropertyExpression) Resolved() (inverted bool, base iri.Handle) {
	return p.Inverted, p.IRI
}
