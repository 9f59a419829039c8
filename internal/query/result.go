package query

import (
	"sort"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// QueryValue is a bound value: an IRI or a literal, per spec.md §6.2's
// `value ∈ {IRI(h), Literal(text)}`.
type QueryValue struct {
	Kind    TermKind
	IRI     iri.Handle
	Literal entity.Literal
}

// IRIValue wraps h as a bound IRI value.
func IRIValue(h iri.Handle) QueryValue { return QueryValue{Kind: TermIRI, IRI: h} }

// LiteralValue wraps l as a bound literal value.
func LiteralValue(l entity.Literal) QueryValue { return QueryValue{Kind: TermLiteral, Literal: l} }

func (v QueryValue) String() string {
	if v.Kind == TermLiteral {
		return v.Literal.String()
	}
	return v.IRI.String()
}

// Equal compares two bound values structurally.
func (v QueryValue) Equal(other QueryValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == TermLiteral {
		return v.Literal.Equal(other.Literal)
	}
	return v.IRI.Equal(other.IRI)
}

// QueryBinding maps variable names to the value a query result assigned
// them. Bind writes into the binding in place; Clone and Join build new
// bindings, so a binding already stored in a QueryResult.Bindings slice
// changes only if Bind is called on that same binding.
type QueryBinding struct {
	values map[string]QueryValue
}

// NewBinding constructs an empty binding.
func NewBinding() QueryBinding {
	return QueryBinding{values: make(map[string]QueryValue)}
}

// Clone returns a deep copy so mutating the copy never affects b.
func (b QueryBinding) Clone() QueryBinding {
	out := NewBinding()
	for k, v := range b.values {
		out.values[k] = v
	}
	return out
}

// Bind records var = value in place. Call on a binding this function
// owns exclusively (e.g. one just produced by NewBinding or Clone).
func (b QueryBinding) Bind(name string, v QueryValue) {
	b.values[name] = v
}

// Get returns the value bound to name, if any.
func (b QueryBinding) Get(name string) (QueryValue, bool) {
	v, ok := b.values[name]
	return v, ok
}

// IsBound reports whether name has an assigned value in b.
func (b QueryBinding) IsBound(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Variables returns b's bound variable names in sorted order, for
// deterministic iteration and display.
func (b QueryBinding) Variables() []string {
	out := make([]string, 0, len(b.values))
	for k := range b.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// key is a canonical string form used for sorting/deduplication
// (Distinct/Reduced).
func (b QueryBinding) key() string {
	vars := b.Variables()
	var sb strings.Builder
	for i, v := range vars {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(v)
		sb.WriteByte('=')
		sb.WriteString(b.values[v].String())
	}
	return sb.String()
}

// Join merges b with other if every variable they share is bound to an
// equal value, returning the merged binding and true. If any shared
// variable conflicts, Join reports false and the zero binding.
func (b QueryBinding) Join(other QueryBinding) (QueryBinding, bool) {
	for name, v := range b.values {
		if ov, ok := other.values[name]; ok && !v.Equal(ov) {
			return QueryBinding{}, false
		}
	}
	merged := b.Clone()
	for name, v := range other.values {
		merged.values[name] = v
	}
	return merged, true
}

// QueryStats mirrors spec.md §6.2's `stats = { time_ms, results_count,
// reasoning_used }`.
type QueryStats struct {
	TimeMS       int64
	ResultsCount int
	ReasoningUsed bool
}

// QueryResult is the output shape of every query operation, per spec.md
// §6.2.
type QueryResult struct {
	Variables []string
	Bindings  []QueryBinding
	Stats     QueryStats
}

// NewResult constructs an empty result.
func NewResult() *QueryResult {
	return &QueryResult{}
}

// Len reports the number of bindings currently accumulated.
func (r *QueryResult) Len() int { return len(r.Bindings) }

// AddBinding appends b and widens Variables with any new names b
// introduces.
func (r *QueryResult) AddBinding(b QueryBinding) {
	r.Bindings = append(r.Bindings, b)
	seen := make(map[string]bool, len(r.Variables))
	for _, v := range r.Variables {
		seen[v] = true
	}
	for _, v := range b.Variables() {
		if !seen[v] {
			seen[v] = true
			r.Variables = append(r.Variables, v)
		}
	}
}

// mergeVariableLists returns left's variables followed by any of
// right's variables left doesn't already have, preserving left's order
// (spec.md §4.5: "variable columns are the union of both sides'
// columns").
func mergeVariableLists(left, right []string) []string {
	merged := append([]string(nil), left...)
	seen := make(map[string]bool, len(left))
	for _, v := range left {
		seen[v] = true
	}
	for _, v := range right {
		if !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}
	return merged
}

// sortBindings orders bindings by their canonical key, giving Distinct
// a deterministic order before deduplication (spec.md §4.5).
func sortBindings(bindings []QueryBinding) {
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].key() < bindings[j].key() })
}

// dedupBindings removes consecutive duplicate bindings (by canonical
// key), assuming bindings is already sorted or at least groups
// duplicates together.
func dedupBindings(bindings []QueryBinding) []QueryBinding {
	if len(bindings) == 0 {
		return bindings
	}
	out := bindings[:1]
	for _, b := range bindings[1:] {
		if b.key() != out[len(out)-1].key() {
			out = append(out, b)
		}
	}
	return out
}

// dedupBindingsUnordered removes duplicates (by canonical key) while
// preserving first-seen order, for Reduced's "no ordering guarantee"
// semantics — it is allowed to reorder, but there is no reason to when
// a stable pass is just as cheap.
func dedupBindingsUnordered(bindings []QueryBinding) []QueryBinding {
	seen := make(map[string]bool, len(bindings))
	out := make([]QueryBinding, 0, len(bindings))
	for _, b := range bindings {
		k := b.key()
		if !seen[k] {
			seen[k] = true
			out = append(out, b)
		}
	}
	return out
}
