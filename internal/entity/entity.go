// Package entity implements the Class/ObjectProperty/DataProperty/
// AnnotationProperty/NamedIndividual/AnonymousIndividual/Literal value
// types of spec.md §3.1. Each entity carries an interned IRI handle, a
// small annotation vector, and (for object/data properties) a
// characteristics set. Equality and hashing are defined purely in terms of
// the IRI handle, matching the Rust original's Entity capability trait.
package entity

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// Characteristic is one of the seven OWL2 property characteristics.
type Characteristic int

const (
	Functional Characteristic = iota
	InverseFunctional
	Transitive
	Symmetric
	Asymmetric
	Reflexive
	Irreflexive
)

func (c Characteristic) String() string {
	names := [...]string{"Functional", "InverseFunctional", "Transitive", "Symmetric", "Asymmetric", "Reflexive", "Irreflexive"}
	if int(c) < 0 || int(c) >= len(names) {
		return "Unknown"
	}
	return names[c]
}

// Annotation is a property/value pair attached to an entity.
type Annotation struct {
	Property iri.Handle
	Value    string
}

// Entity is the capability shared by every named OWL2 entity: it can be
// built from an IRI, it reports that IRI back, and it carries annotations.
// Tagged variants over a single interface, not inheritance, per spec.md §9.
type Entity interface {
	IRI() iri.Handle
	Annotations() []Annotation
	AddAnnotation(a Annotation)
}

type base struct {
	handle      iri.Handle
	annotations []Annotation
}

func (b *base) IRI() iri.Handle             { return b.handle }
func (b *base) Annotations() []Annotation   { return b.annotations }
func (b *base) AddAnnotation(a Annotation)  { b.annotations = append(b.annotations, a) }

// Class is a named OWL2 class.
type Class struct{ base }

// NewClass constructs a Class from an already-interned IRI handle.
func NewClass(h iri.Handle) *Class { return &Class{base{handle: h}} }

// Equal compares two classes by IRI handle only.
func (c *Class) Equal(other *Class) bool { return c.handle.Equal(other.handle) }

func (c *Class) String() string { return fmt.Sprintf("Class(%s)", c.handle.String()) }

// ObjectProperty is a named object property, with its characteristic set.
type ObjectProperty struct {
	base
	characteristics map[Characteristic]struct{}
}

func NewObjectProperty(h iri.Handle) *ObjectProperty {
	return &ObjectProperty{base: base{handle: h}, characteristics: make(map[Characteristic]struct{})}
}

func (p *ObjectProperty) AddCharacteristic(c Characteristic) { p.characteristics[c] = struct{}{} }
func (p *ObjectProperty) HasCharacteristic(c Characteristic) bool {
	_, ok := p.characteristics[c]
	return ok
}
func (p *ObjectProperty) Characteristics() []Characteristic {
	out := make([]Characteristic, 0, len(p.characteristics))
	for c := range p.characteristics {
		out = append(out, c)
	}
	return out
}
func (p *ObjectProperty) Equal(other *ObjectProperty) bool { return p.handle.Equal(other.handle) }
func (p *ObjectProperty) String() string                   { return fmt.Sprintf("ObjectProperty(%s)", p.handle.String()) }

// DataProperty is a named data property, with its characteristic set
// (only Functional is meaningful for data properties, but the set is kept
// general for uniform handling alongside ObjectProperty).
type DataProperty struct {
	base
	characteristics map[Characteristic]struct{}
}

func NewDataProperty(h iri.Handle) *DataProperty {
	return &DataProperty{base: base{handle: h}, characteristics: make(map[Characteristic]struct{})}
}

func (p *DataProperty) AddCharacteristic(c Characteristic) { p.characteristics[c] = struct{}{} }
func (p *DataProperty) HasCharacteristic(c Characteristic) bool {
	_, ok := p.characteristics[c]
	return ok
}
func (p *DataProperty) Equal(other *DataProperty) bool { return p.handle.Equal(other.handle) }
func (p *DataProperty) String() string                 { return fmt.Sprintf("DataProperty(%s)", p.handle.String()) }

// AnnotationProperty is a named annotation property.
type AnnotationProperty struct{ base }

func NewAnnotationProperty(h iri.Handle) *AnnotationProperty {
	return &AnnotationProperty{base{handle: h}}
}
func (p *AnnotationProperty) Equal(other *AnnotationProperty) bool { return p.handle.Equal(other.handle) }

// NamedIndividual is a named OWL2 individual.
type NamedIndividual struct{ base }

func NewNamedIndividual(h iri.Handle) *NamedIndividual { return &NamedIndividual{base{handle: h}} }
func (i *NamedIndividual) Equal(other *NamedIndividual) bool { return i.handle.Equal(other.handle) }
func (i *NamedIndividual) String() string                    { return fmt.Sprintf("NamedIndividual(%s)", i.handle.String()) }

// AnonymousIndividual is a blank node: a string node-id plus annotations,
// with no interned IRI.
type AnonymousIndividual struct {
	NodeID      string
	annotations []Annotation
}

func NewAnonymousIndividual(nodeID string) *AnonymousIndividual {
	return &AnonymousIndividual{NodeID: nodeID}
}
func (a *AnonymousIndividual) Annotations() []Annotation  { return a.annotations }
func (a *AnonymousIndividual) AddAnnotation(an Annotation) { a.annotations = append(a.annotations, an) }
func (a *AnonymousIndividual) Equal(other *AnonymousIndividual) bool {
	return a.NodeID == other.NodeID
}
func (a *AnonymousIndividual) String() string { return fmt.Sprintf("_:%s", a.NodeID) }

// Individual is either a NamedIndividual or an AnonymousIndividual; the
// tableaux engine and query evaluator both need to range over both kinds
// uniformly without caring which.
type Individual interface {
	fmt.Stringer
}

// Literal is a lexical form paired with a datatype and an optional
// language tag, per spec.md §3.1.
type Literal struct {
	Lexical  string
	Datatype iri.Handle
	Language string // empty unless lang-tagged
}

// NewLiteral constructs and validates a Literal per the rule in spec.md
// §4.3: a language tag may only be combined with rdf:langString, and a
// plain literal (no tag) must use xsd:string when no explicit datatype was
// given.
func NewLiteral(lexical string, datatype iri.Handle, language string) (Literal, error) {
	if language != "" {
		if datatype.Valid() && datatype.String() != iri.RdfLangString.String() {
			return Literal{}, fmt.Errorf("literal with language tag must use rdf:langString, got %s", datatype.String())
		}
		return Literal{Lexical: lexical, Datatype: iri.RdfLangString, Language: language}, nil
	}
	if !datatype.Valid() {
		datatype = iri.XsdString
	}
	return Literal{Lexical: lexical, Datatype: datatype}, nil
}

// IsPlain reports whether l is a plain string literal (xsd:string, no
// language tag).
func (l Literal) IsPlain() bool {
	return l.Language == "" && l.Datatype.String() == iri.XsdString.String()
}

// IsLangTagged reports whether l carries a language tag.
func (l Literal) IsLangTagged() bool { return l.Language != "" }

func (l Literal) String() string {
	if l.Language != "" {
		return fmt.Sprintf("%q@%s", l.Lexical, l.Language)
	}
	return fmt.Sprintf("%q^^%s", l.Lexical, l.Datatype.String())
}

// Equal compares two literals structurally (lexical form, datatype, and
// language tag must all match).
func (l Literal) Equal(other Literal) bool {
	return l.Lexical == other.Lexical && l.Datatype.Equal(other.Datatype) && l.Language == other.Language
}
