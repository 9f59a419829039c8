// Package axiom implements the tagged-variant class/property expression
// model and axiom kinds of spec.md §3.2/§3.3. Polymorphism over kinds uses
// tagged variants (a Kind enum plus one struct per kind), not inheritance,
// per the design note in spec.md §9.
package axiom

import (
	"fmt"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// ClassExpressionKind tags the variant held by a ClassExpression.
type ClassExpressionKind int

const (
	CEClass ClassExpressionKind = iota
	CEObjectIntersectionOf
	CEObjectUnionOf
	CEObjectComplementOf
	CEObjectOneOf
	CEObjectSomeValuesFrom
	CEObjectAllValuesFrom
	CEObjectHasValue
	CEObjectHasSelf
	CEObjectMinCardinality
	CEObjectMaxCardinality
	CEObjectExactCardinality
	CEDataSomeValuesFrom
	CEDataAllValuesFrom
	CEDataHasValue
	CEDataMinCardinality
	CEDataMaxCardinality
	CEDataExactCardinality
)

// ClassExpression is a constructed or named class, per spec.md §3.2.
// Exactly the fields relevant to Kind are populated; callers switch on
// Kind before reading them, matching the Rust original's enum-of-structs.
type ClassExpression struct {
	Kind ClassExpressionKind

	// CEClass
	Class iri.Handle

	// CEObjectIntersectionOf / CEObjectUnionOf / CEObjectOneOf (object
	// individuals named by IRI for OneOf)
	Operands     []*ClassExpression
	Individuals  []iri.Handle

	// CEObjectComplementOf
	Complement *ClassExpression

	// Object*ValuesFrom / Object*Cardinality / ObjectHasValue / ObjectHasSelf
	ObjectProperty PropertyExpression
	Filler         *ClassExpression // restriction range for ObjectXValuesFrom / cardinality-with-filler
	Value          iri.Handle       // ObjectHasValue's target individual
	Cardinality    int              // Min/Max/Exact cardinality bound

	// Data*ValuesFrom / Data*Cardinality / DataHasValue
	DataProperty iri.Handle
	DataRange    *DataRange
	Literal      *entity.Literal
}

// Class constructs a named-class expression.
func Class(h iri.Handle) *ClassExpression { return &ClassExpression{Kind: CEClass, Class: h} }

// ObjectIntersectionOf constructs a conjunction.
func ObjectIntersectionOf(operands ...*ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectIntersectionOf, Operands: operands}
}

// ObjectUnionOf constructs a disjunction.
func ObjectUnionOf(operands ...*ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectUnionOf, Operands: operands}
}

// ObjectComplementOf constructs a negation.
func ObjectComplementOf(c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectComplementOf, Complement: c}
}

// ObjectOneOf constructs an enumeration of named individuals.
func ObjectOneOf(individuals ...iri.Handle) *ClassExpression {
	return &ClassExpression{Kind: CEObjectOneOf, Individuals: individuals}
}

// ObjectSomeValuesFrom constructs an existential restriction.
func ObjectSomeValuesFrom(p PropertyExpression, filler *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectSomeValuesFrom, ObjectProperty: p, Filler: filler}
}

// ObjectAllValuesFrom constructs a universal restriction.
func ObjectAllValuesFrom(p PropertyExpression, filler *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectAllValuesFrom, ObjectProperty: p, Filler: filler}
}

// ObjectHasValue constructs a has-value restriction.
func ObjectHasValue(p PropertyExpression, individual iri.Handle) *ClassExpression {
	return &ClassExpression{Kind: CEObjectHasValue, ObjectProperty: p, Value: individual}
}

// ObjectHasSelf constructs a self-restriction.
func ObjectHasSelf(p PropertyExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectHasSelf, ObjectProperty: p}
}

// ObjectMinCardinality constructs a qualified or unqualified min-cardinality
// restriction; filler may be nil for the unqualified form (equivalent to
// owl:Thing).
func ObjectMinCardinality(n int, p PropertyExpression, filler *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectMinCardinality, Cardinality: n, ObjectProperty: p, Filler: filler}
}

func ObjectMaxCardinality(n int, p PropertyExpression, filler *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectMaxCardinality, Cardinality: n, ObjectProperty: p, Filler: filler}
}

func ObjectExactCardinality(n int, p PropertyExpression, filler *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: CEObjectExactCardinality, Cardinality: n, ObjectProperty: p, Filler: filler}
}

// Data-range analogues (spec.md §3.2 "plus the analogous Data… variants").

func DataSomeValuesFrom(p iri.Handle, dr *DataRange) *ClassExpression {
	return &ClassExpression{Kind: CEDataSomeValuesFrom, DataProperty: p, DataRange: dr}
}
func DataAllValuesFrom(p iri.Handle, dr *DataRange) *ClassExpression {
	return &ClassExpression{Kind: CEDataAllValuesFrom, DataProperty: p, DataRange: dr}
}
func DataHasValue(p iri.Handle, lit entity.Literal) *ClassExpression {
	return &ClassExpression{Kind: CEDataHasValue, DataProperty: p, Literal: &lit}
}
func DataMinCardinality(n int, p iri.Handle, dr *DataRange) *ClassExpression {
	return &ClassExpression{Kind: CEDataMinCardinality, Cardinality: n, DataProperty: p, DataRange: dr}
}
func DataMaxCardinality(n int, p iri.Handle, dr *DataRange) *ClassExpression {
	return &ClassExpression{Kind: CEDataMaxCardinality, Cardinality: n, DataProperty: p, DataRange: dr}
}
func DataExactCardinality(n int, p iri.Handle, dr *DataRange) *ClassExpression {
	return &ClassExpression{Kind: CEDataExactCardinality, Cardinality: n, DataProperty: p, DataRange: dr}
}

// DataRange is a minimal data-range model: either a single named datatype
// or an enumeration of literals (DataOneOf). Profile/query evaluation only
// ever needs to test membership, not the full XSD facet algebra.
type DataRange struct {
	Datatype iri.Handle
	OneOf    []entity.Literal
}

// Thing and Nothing are convenience constructors for the two built-in
// classes, used pervasively by the tableaux engine's root initialization.
func Thing() *ClassExpression   { return Class(iri.OwlThing) }
func Nothing() *ClassExpression { return Class(iri.OwlNothing) }

// IsThing / IsNothing test for the built-ins by IRI, not by identity,
// since class expressions are constructed fresh at many call sites.
func (c *ClassExpression) IsThing() bool {
	return c.Kind == CEClass && c.Class.Equal(iri.OwlThing)
}
func (c *ClassExpression) IsNothing() bool {
	return c.Kind == CEClass && c.Class.Equal(iri.OwlNothing)
}

// Key returns a stable, structural string key for the expression, used by
// the tableaux node's concept set and by the reasoner's decision caches.
// Two structurally-equal expressions (same kind, same operands in the same
// order) always produce the same key.
func (c *ClassExpression) Key() string {
	if c == nil {
		return "⊥"
	}
	var b strings.Builder
	c.writeKey(&b)
	return b.String()
}

func (c *ClassExpression) writeKey(b *strings.Builder) {
	switch c.Kind {
	case CEClass:
		b.WriteString(c.Class.String())
	case CEObjectIntersectionOf:
		b.WriteString("(")
		for i, op := range c.Operands {
			if i > 0 {
				b.WriteString(" ⊓ ")
			}
			op.writeKey(b)
		}
		b.WriteString(")")
	case CEObjectUnionOf:
		b.WriteString("(")
		for i, op := range c.Operands {
			if i > 0 {
				b.WriteString(" ⊔ ")
			}
			op.writeKey(b)
		}
		b.WriteString(")")
	case CEObjectComplementOf:
		b.WriteString("¬")
		c.Complement.writeKey(b)
	case CEObjectOneOf:
		b.WriteString("{")
		for i, ind := range c.Individuals {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(ind.String())
		}
		b.WriteString("}")
	case CEObjectSomeValuesFrom:
		b.WriteString("∃")
		b.WriteString(c.ObjectProperty.Key())
		b.WriteString(".")
		c.Filler.writeKey(b)
	case CEObjectAllValuesFrom:
		b.WriteString("∀")
		b.WriteString(c.ObjectProperty.Key())
		b.WriteString(".")
		c.Filler.writeKey(b)
	case CEObjectHasValue:
		fmt.Fprintf(b, "∃%s.{%s}", c.ObjectProperty.Key(), c.Value.String())
	case CEObjectHasSelf:
		fmt.Fprintf(b, "∃%s.Self", c.ObjectProperty.Key())
	case CEObjectMinCardinality:
		fmt.Fprintf(b, "≥%d %s.%s", c.Cardinality, c.ObjectProperty.Key(), fillerKey(c.Filler))
	case CEObjectMaxCardinality:
		fmt.Fprintf(b, "≤%d %s.%s", c.Cardinality, c.ObjectProperty.Key(), fillerKey(c.Filler))
	case CEObjectExactCardinality:
		fmt.Fprintf(b, "=%d %s.%s", c.Cardinality, c.ObjectProperty.Key(), fillerKey(c.Filler))
	case CEDataSomeValuesFrom:
		fmt.Fprintf(b, "∃%s.%s", c.DataProperty.String(), dataRangeKey(c.DataRange))
	case CEDataAllValuesFrom:
		fmt.Fprintf(b, "∀%s.%s", c.DataProperty.String(), dataRangeKey(c.DataRange))
	case CEDataHasValue:
		fmt.Fprintf(b, "∃%s.{%s}", c.DataProperty.String(), c.Literal.String())
	case CEDataMinCardinality:
		fmt.Fprintf(b, "≥%d %s.%s", c.Cardinality, c.DataProperty.String(), dataRangeKey(c.DataRange))
	case CEDataMaxCardinality:
		fmt.Fprintf(b, "≤%d %s.%s", c.Cardinality, c.DataProperty.String(), dataRangeKey(c.DataRange))
	case CEDataExactCardinality:
		fmt.Fprintf(b, "=%d %s.%s", c.Cardinality, c.DataProperty.String(), dataRangeKey(c.DataRange))
	default:
		b.WriteString("?")
	}
}

func fillerKey(f *ClassExpression) string {
	if f == nil {
		return iri.OwlThing.String()
	}
	return f.Key()
}

func dataRangeKey(dr *DataRange) string {
	if dr == nil {
		return ""
	}
	if dr.Datatype.Valid() {
		return dr.Datatype.String()
	}
	var b strings.Builder
	b.WriteString("{")
	for i, l := range dr.OneOf {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(l.String())
	}
	b.WriteString("}")
	return b.String()
}

// Equal compares two class expressions structurally.
func (c *ClassExpression) Equal(other *ClassExpression) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key() == other.Key()
}
