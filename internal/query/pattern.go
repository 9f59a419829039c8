// Package query implements the pattern-matching query engine of spec.md
// §4.5 (C8): a small relational algebra over triple patterns (basic graph
// patterns, optional/union/filter/distinct/reduced), a SPARQL-like surface
// syntax that lowers to it, and a generation-keyed result cache built on
// internal/cache. Grounded on
// original_source/owl2-reasoner/src/reasoning/query/engine.rs, with the
// QueryEngine's query_cache/result_pool/type_index/property_index fields
// collapsed into direct ontology lookups plus the one shared cache.Cache,
// since this package never needs its own secondary indexes once the
// ontology already indexes axioms by entity.
package query

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// TermKind distinguishes the three shapes a pattern term (or a bound
// value) can take, mirroring PatternTerm in the original engine.
type TermKind int

const (
	TermVariable TermKind = iota
	TermIRI
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermVariable:
		return "Variable"
	case TermIRI:
		return "IRI"
	case TermLiteral:
		return "Literal"
	default:
		return "Unknown"
	}
}

// PatternTerm is one slot (subject, predicate, or object) of a triple
// pattern: a variable to bind, a concrete IRI, or a concrete literal.
type PatternTerm struct {
	Kind     TermKind
	Variable string
	IRI      iri.Handle
	Literal  entity.Literal
}

// Var constructs a variable term. The leading '?' is conventional, not
// required; surface syntax always supplies it.
func Var(name string) PatternTerm { return PatternTerm{Kind: TermVariable, Variable: name} }

// IRITerm constructs a concrete-IRI term.
func IRITerm(h iri.Handle) PatternTerm { return PatternTerm{Kind: TermIRI, IRI: h} }

// LitTerm constructs a concrete-literal term.
func LitTerm(l entity.Literal) PatternTerm { return PatternTerm{Kind: TermLiteral, Literal: l} }

// IsVariable reports whether t names a binding slot rather than a
// concrete value.
func (t PatternTerm) IsVariable() bool { return t.Kind == TermVariable }

func (t PatternTerm) String() string {
	switch t.Kind {
	case TermVariable:
		return "?" + t.Variable
	case TermIRI:
		return "<" + t.IRI.String() + ">"
	case TermLiteral:
		return t.Literal.String()
	default:
		return "?"
	}
}

// Equal compares two terms structurally; two variable terms are equal
// only if they share a name (pattern-construction identity, not binding
// identity — binding equality is QueryValue.Equal).
func (t PatternTerm) Equal(other PatternTerm) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TermVariable:
		return t.Variable == other.Variable
	case TermIRI:
		return t.IRI.Equal(other.IRI)
	case TermLiteral:
		return t.Literal.Equal(other.Literal)
	default:
		return false
	}
}

// TriplePattern is one (subject, predicate, object) slot triple in a
// basic graph pattern.
type TriplePattern struct {
	Subject   PatternTerm
	Predicate PatternTerm
	Object    PatternTerm
}

// NewTriplePattern builds a triple pattern from its three terms.
func NewTriplePattern(s, p, o PatternTerm) TriplePattern {
	return TriplePattern{Subject: s, Predicate: p, Object: o}
}

func (t TriplePattern) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject, t.Predicate, t.Object)
}

// variables returns the distinct variable names t introduces, in
// subject/predicate/object order.
func (t TriplePattern) variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range []PatternTerm{t.Subject, t.Predicate, t.Object} {
		if term.IsVariable() && !seen[term.Variable] {
			seen[term.Variable] = true
			out = append(out, term.Variable)
		}
	}
	return out
}

// PatternKind tags the variant of QueryPattern in play, per spec.md
// §4.5's pattern grammar.
type PatternKind int

const (
	PatternBasicGraph PatternKind = iota
	PatternOptional
	PatternUnion
	PatternFilter
	PatternDistinct
	PatternReduced
)

// FilterOp is the comparison a FilterExpression evaluates against a
// binding. The original engine left filter evaluation as a TODO; this
// reader implements the subset spec.md actually names a use for.
type FilterOp int

const (
	FilterBound FilterOp = iota
	FilterUnbound
	FilterEquals
	FilterNotEquals
)

// FilterExpression is the predicate half of a Filter pattern.
type FilterExpression struct {
	Op    FilterOp
	Var   string
	Left  PatternTerm
	Right PatternTerm
}

// IsBound builds a FILTER(BOUND(?var))-style expression.
func IsBound(v string) FilterExpression { return FilterExpression{Op: FilterBound, Var: v} }

// IsUnbound builds the negation of IsBound.
func IsUnbound(v string) FilterExpression { return FilterExpression{Op: FilterUnbound, Var: v} }

// TermsEqual builds a FILTER(?a = ?b)-style expression over two terms
// (either may be a variable or a concrete term).
func TermsEqual(left, right PatternTerm) FilterExpression {
	return FilterExpression{Op: FilterEquals, Left: left, Right: right}
}

// TermsNotEqual builds the negation of TermsEqual.
func TermsNotEqual(left, right PatternTerm) FilterExpression {
	return FilterExpression{Op: FilterNotEquals, Left: left, Right: right}
}

// QueryPattern is the tagged-union pattern algebra of spec.md §4.5:
// BasicGraphPattern(triples), Optional(left,right), Union(left,right),
// Filter(pattern,expr), Distinct(inner), Reduced(inner).
type QueryPattern struct {
	Kind    PatternKind
	Triples []TriplePattern
	Left    *QueryPattern
	Right   *QueryPattern
	Inner   *QueryPattern
	Filter  FilterExpression
}

// BasicGraphPattern builds a conjunction of triple patterns, joined by
// shared variables (spec.md §4.5's "natural joins over shared
// variables").
func BasicGraphPattern(triples ...TriplePattern) *QueryPattern {
	return &QueryPattern{Kind: PatternBasicGraph, Triples: triples}
}

// Optional builds a left outer join: every left binding is retained,
// extended with right's bindings when they join, unextended otherwise.
func Optional(left, right *QueryPattern) *QueryPattern {
	return &QueryPattern{Kind: PatternOptional, Left: left, Right: right}
}

// Union builds the concatenation of left's and right's results, with
// the variable columns being the union of both sides'.
func Union(left, right *QueryPattern) *QueryPattern {
	return &QueryPattern{Kind: PatternUnion, Left: left, Right: right}
}

// Filter restricts inner's bindings to those satisfying expr.
func Filter(inner *QueryPattern, expr FilterExpression) *QueryPattern {
	return &QueryPattern{Kind: PatternFilter, Inner: inner, Filter: expr}
}

// Distinct deduplicates inner's bindings after sorting them into a
// deterministic order.
func Distinct(inner *QueryPattern) *QueryPattern {
	return &QueryPattern{Kind: PatternDistinct, Inner: inner}
}

// Reduced deduplicates inner's bindings without an ordering guarantee
// beyond whatever inner itself produced.
func Reduced(inner *QueryPattern) *QueryPattern {
	return &QueryPattern{Kind: PatternReduced, Inner: inner}
}

// SupportsParallel reports whether p's top-level shape can usefully run
// its branches concurrently. A single-triple BGP and anything that
// depends on accumulated left-hand bindings (Optional, Filter) cannot.
func (p *QueryPattern) SupportsParallel() bool {
	switch p.Kind {
	case PatternBasicGraph:
		return len(p.Triples) > 1
	case PatternUnion:
		return true
	default:
		return false
	}
}

// key returns a canonical textual form used only for cache-key hashing;
// it is not meant to be a parseable surface syntax.
func (p *QueryPattern) key() string {
	switch p.Kind {
	case PatternBasicGraph:
		s := "BGP("
		for i, t := range p.Triples {
			if i > 0 {
				s += ";"
			}
			s += t.String()
		}
		return s + ")"
	case PatternOptional:
		return "OPT(" + p.Left.key() + "," + p.Right.key() + ")"
	case PatternUnion:
		return "UNION(" + p.Left.key() + "," + p.Right.key() + ")"
	case PatternFilter:
		return fmt.Sprintf("FILTER(%s,%d,%s,%s,%s)", p.Inner.key(), p.Filter.Op, p.Filter.Var, p.Filter.Left, p.Filter.Right)
	case PatternDistinct:
		return "DISTINCT(" + p.Inner.key() + ")"
	case PatternReduced:
		return "REDUCED(" + p.Inner.key() + ")"
	default:
		return "?"
	}
}
