package axiom

import (
	"fmt"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// Kind tags the variant held by an Axiom, per spec.md §3.3.
type Kind int

const (
	KindSubClassOf Kind = iota
	KindEquivalentClasses
	KindDisjointClasses
	KindDisjointUnion
	KindSubObjectPropertyOf
	KindEquivalentObjectProperties
	KindDisjointObjectProperties
	KindInverseObjectProperties
	KindObjectPropertyDomain
	KindObjectPropertyRange
	KindFunctionalObjectProperty
	KindInverseFunctionalObjectProperty
	KindTransitiveObjectProperty
	KindSymmetricObjectProperty
	KindAsymmetricObjectProperty
	KindReflexiveObjectProperty
	KindIrreflexiveObjectProperty
	KindDataPropertyDomain
	KindDataPropertyRange
	KindFunctionalDataProperty
	KindClassAssertion
	KindObjectPropertyAssertion
	KindNegativeObjectPropertyAssertion
	KindDataPropertyAssertion
	KindNegativeDataPropertyAssertion
	KindSameIndividual
	KindDifferentIndividuals
	KindClassDeclaration
	KindObjectPropertyDeclaration
	KindDataPropertyDeclaration
	KindAnnotationPropertyDeclaration
	KindNamedIndividualDeclaration
	KindAnnotationAssertion
)

func (k Kind) String() string {
	names := [...]string{
		"SubClassOf", "EquivalentClasses", "DisjointClasses", "DisjointUnion",
		"SubObjectPropertyOf", "EquivalentObjectProperties", "DisjointObjectProperties",
		"InverseObjectProperties", "ObjectPropertyDomain", "ObjectPropertyRange",
		"FunctionalObjectProperty", "InverseFunctionalObjectProperty", "TransitiveObjectProperty",
		"SymmetricObjectProperty", "AsymmetricObjectProperty", "ReflexiveObjectProperty",
		"IrreflexiveObjectProperty", "DataPropertyDomain", "DataPropertyRange",
		"FunctionalDataProperty", "ClassAssertion", "ObjectPropertyAssertion",
		"NegativeObjectPropertyAssertion", "DataPropertyAssertion", "NegativeDataPropertyAssertion",
		"SameIndividual", "DifferentIndividuals", "ClassDeclaration", "ObjectPropertyDeclaration",
		"DataPropertyDeclaration", "AnnotationPropertyDeclaration", "NamedIndividualDeclaration",
		"AnnotationAssertion",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// PropertyChain is the antecedent of a SubObjectPropertyOf chain axiom
// (P1 ∘ P2 ∘ ... ⊑ Q), spec.md §3.3.
type PropertyChain []PropertyExpression

// Axiom is a single asserted statement, per spec.md §3.3. As with
// ClassExpression, only the fields relevant to Kind are populated.
type Axiom struct {
	Kind Kind

	// SubClassOf
	SubClass   *ClassExpression
	SuperClass *ClassExpression

	// EquivalentClasses / DisjointClasses (n-ary) / DisjointUnion
	Classes []*ClassExpression

	// SubObjectPropertyOf (chain has len>1), Equivalent/DisjointObjectProperties
	SubProperty   PropertyExpression
	SuperProperty PropertyExpression
	Chain         PropertyChain
	Properties    []PropertyExpression

	// InverseObjectProperties
	First  PropertyExpression
	Second PropertyExpression

	// Object/DataPropertyDomain/Range
	Property   PropertyExpression
	DataProp   iri.Handle
	Domain     *ClassExpression
	Range      *ClassExpression
	DataRange  *DataRange

	// Characteristic axioms (Functional.../Transitive.../etc.) reuse
	// Property above.

	// ClassAssertion
	Individual iri.Handle
	ClassExpr  *ClassExpression

	// Object/DataPropertyAssertion (+ Negative variants)
	Subject      iri.Handle
	ObjectProp   PropertyExpression
	ObjectTarget iri.Handle
	DataTarget   entity.Literal

	// Same/DifferentIndividuals (n-ary)
	Individuals []iri.Handle

	// Declarations
	DeclaredIRI iri.Handle

	// AnnotationAssertion
	AnnotationSubject  iri.Handle
	AnnotationProperty iri.Handle
	AnnotationValue    string
}

// SubClassOfAxiom constructs a SubClassOf axiom.
func SubClassOfAxiom(sub, super *ClassExpression) Axiom {
	return Axiom{Kind: KindSubClassOf, SubClass: sub, SuperClass: super}
}

func EquivalentClassesAxiom(classes ...*ClassExpression) Axiom {
	return Axiom{Kind: KindEquivalentClasses, Classes: classes}
}

func DisjointClassesAxiom(classes ...*ClassExpression) Axiom {
	return Axiom{Kind: KindDisjointClasses, Classes: classes}
}

func DisjointUnionAxiom(defined *ClassExpression, parts ...*ClassExpression) Axiom {
	return Axiom{Kind: KindDisjointUnion, SubClass: defined, Classes: parts}
}

func SubObjectPropertyOfAxiom(sub, super PropertyExpression) Axiom {
	return Axiom{Kind: KindSubObjectPropertyOf, SubProperty: sub, SuperProperty: super}
}

func SubPropertyChainAxiom(chain PropertyChain, super PropertyExpression) Axiom {
	return Axiom{Kind: KindSubObjectPropertyOf, Chain: chain, SuperProperty: super}
}

func EquivalentObjectPropertiesAxiom(props ...PropertyExpression) Axiom {
	return Axiom{Kind: KindEquivalentObjectProperties, Properties: props}
}

func DisjointObjectPropertiesAxiom(props ...PropertyExpression) Axiom {
	return Axiom{Kind: KindDisjointObjectProperties, Properties: props}
}

func InverseObjectPropertiesAxiom(a, b PropertyExpression) Axiom {
	return Axiom{Kind: KindInverseObjectProperties, First: a, Second: b}
}

func ObjectPropertyDomainAxiom(p PropertyExpression, domain *ClassExpression) Axiom {
	return Axiom{Kind: KindObjectPropertyDomain, Property: p, Domain: domain}
}

func ObjectPropertyRangeAxiom(p PropertyExpression, rng *ClassExpression) Axiom {
	return Axiom{Kind: KindObjectPropertyRange, Property: p, Range: rng}
}

func DataPropertyDomainAxiom(p iri.Handle, domain *ClassExpression) Axiom {
	return Axiom{Kind: KindDataPropertyDomain, DataProp: p, Domain: domain}
}

func DataPropertyRangeAxiom(p iri.Handle, dr *DataRange) Axiom {
	return Axiom{Kind: KindDataPropertyRange, DataProp: p, DataRange: dr}
}

// characteristicAxiom builds one of the seven property-characteristic
// axiom kinds over an object property.
func characteristicAxiom(kind Kind, p PropertyExpression) Axiom {
	return Axiom{Kind: kind, Property: p}
}

func FunctionalObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindFunctionalObjectProperty, p)
}
func InverseFunctionalObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindInverseFunctionalObjectProperty, p)
}
func TransitiveObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindTransitiveObjectProperty, p)
}
func SymmetricObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindSymmetricObjectProperty, p)
}
func AsymmetricObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindAsymmetricObjectProperty, p)
}
func ReflexiveObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindReflexiveObjectProperty, p)
}
func IrreflexiveObjectPropertyAxiom(p PropertyExpression) Axiom {
	return characteristicAxiom(KindIrreflexiveObjectProperty, p)
}
func FunctionalDataPropertyAxiom(p iri.Handle) Axiom {
	return Axiom{Kind: KindFunctionalDataProperty, DataProp: p}
}

func ClassAssertionAxiom(individual iri.Handle, class *ClassExpression) Axiom {
	return Axiom{Kind: KindClassAssertion, Individual: individual, ClassExpr: class}
}

func ObjectPropertyAssertionAxiom(subject iri.Handle, p PropertyExpression, object iri.Handle) Axiom {
	return Axiom{Kind: KindObjectPropertyAssertion, Subject: subject, ObjectProp: p, ObjectTarget: object}
}

func NegativeObjectPropertyAssertionAxiom(subject iri.Handle, p PropertyExpression, object iri.Handle) Axiom {
	return Axiom{Kind: KindNegativeObjectPropertyAssertion, Subject: subject, ObjectProp: p, ObjectTarget: object}
}

func DataPropertyAssertionAxiom(subject iri.Handle, p iri.Handle, value entity.Literal) Axiom {
	return Axiom{Kind: KindDataPropertyAssertion, Subject: subject, DataProp: p, DataTarget: value}
}

func NegativeDataPropertyAssertionAxiom(subject iri.Handle, p iri.Handle, value entity.Literal) Axiom {
	return Axiom{Kind: KindNegativeDataPropertyAssertion, Subject: subject, DataProp: p, DataTarget: value}
}

func SameIndividualAxiom(individuals ...iri.Handle) Axiom {
	return Axiom{Kind: KindSameIndividual, Individuals: individuals}
}

func DifferentIndividualsAxiom(individuals ...iri.Handle) Axiom {
	return Axiom{Kind: KindDifferentIndividuals, Individuals: individuals}
}

func ClassDeclarationAxiom(h iri.Handle) Axiom {
	return Axiom{Kind: KindClassDeclaration, DeclaredIRI: h}
}
func ObjectPropertyDeclarationAxiom(h iri.Handle) Axiom {
	return Axiom{Kind: KindObjectPropertyDeclaration, DeclaredIRI: h}
}
func DataPropertyDeclarationAxiom(h iri.Handle) Axiom {
	return Axiom{Kind: KindDataPropertyDeclaration, DeclaredIRI: h}
}
func AnnotationPropertyDeclarationAxiom(h iri.Handle) Axiom {
	return Axiom{Kind: KindAnnotationPropertyDeclaration, DeclaredIRI: h}
}
func NamedIndividualDeclarationAxiom(h iri.Handle) Axiom {
	return Axiom{Kind: KindNamedIndividualDeclaration, DeclaredIRI: h}
}

func AnnotationAssertionAxiom(subject, property iri.Handle, value string) Axiom {
	return Axiom{Kind: KindAnnotationAssertion, AnnotationSubject: subject, AnnotationProperty: property, AnnotationValue: value}
}

// Key returns a structural identity for duplicate-detection in the
// ontology store (spec.md §4.2: "DuplicateAxiom when a structurally equal
// axiom already exists").
func (a Axiom) Key() string {
	var b strings.Builder
	b.WriteString(a.Kind.String())
	b.WriteString("|")
	switch a.Kind {
	case KindSubClassOf:
		b.WriteString(a.SubClass.Key())
		b.WriteString("⊑")
		b.WriteString(a.SuperClass.Key())
	case KindEquivalentClasses, KindDisjointClasses:
		writeClassList(&b, a.Classes)
	case KindDisjointUnion:
		b.WriteString(a.SubClass.Key())
		b.WriteString("≡⊔")
		writeClassList(&b, a.Classes)
	case KindSubObjectPropertyOf:
		if len(a.Chain) > 0 {
			for i, p := range a.Chain {
				if i > 0 {
					b.WriteString("∘")
				}
				b.WriteString(p.Key())
			}
		} else {
			b.WriteString(a.SubProperty.Key())
		}
		b.WriteString("⊑")
		b.WriteString(a.SuperProperty.Key())
	case KindEquivalentObjectProperties, KindDisjointObjectProperties:
		for i, p := range a.Properties {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(p.Key())
		}
	case KindInverseObjectProperties:
		fmt.Fprintf(&b, "%s<->%s", a.First.Key(), a.Second.Key())
	case KindObjectPropertyDomain:
		fmt.Fprintf(&b, "%s->%s", a.Property.Key(), a.Domain.Key())
	case KindObjectPropertyRange:
		fmt.Fprintf(&b, "%s->%s", a.Property.Key(), a.Range.Key())
	case KindDataPropertyDomain:
		fmt.Fprintf(&b, "%s->%s", a.DataProp.String(), a.Domain.Key())
	case KindDataPropertyRange:
		fmt.Fprintf(&b, "%s->%s", a.DataProp.String(), dataRangeKey(a.DataRange))
	case KindFunctionalObjectProperty, KindInverseFunctionalObjectProperty, KindTransitiveObjectProperty,
		KindSymmetricObjectProperty, KindAsymmetricObjectProperty, KindReflexiveObjectProperty,
		KindIrreflexiveObjectProperty:
		b.WriteString(a.Property.Key())
	case KindFunctionalDataProperty:
		b.WriteString(a.DataProp.String())
	case KindClassAssertion:
		fmt.Fprintf(&b, "%s:%s", a.Individual.String(), a.ClassExpr.Key())
	case KindObjectPropertyAssertion, KindNegativeObjectPropertyAssertion:
		fmt.Fprintf(&b, "%s-%s->%s", a.Subject.String(), a.ObjectProp.Key(), a.ObjectTarget.String())
	case KindDataPropertyAssertion, KindNegativeDataPropertyAssertion:
		fmt.Fprintf(&b, "%s-%s->%s", a.Subject.String(), a.DataProp.String(), a.DataTarget.String())
	case KindSameIndividual, KindDifferentIndividuals:
		for i, ind := range a.Individuals {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(ind.String())
		}
	case KindClassDeclaration, KindObjectPropertyDeclaration, KindDataPropertyDeclaration,
		KindAnnotationPropertyDeclaration, KindNamedIndividualDeclaration:
		b.WriteString(a.DeclaredIRI.String())
	case KindAnnotationAssertion:
		fmt.Fprintf(&b, "%s-%s->%s", a.AnnotationSubject.String(), a.AnnotationProperty.String(), a.AnnotationValue)
	}
	return b.String()
}

func writeClassList(b *strings.Builder, classes []*ClassExpression) {
	for i, c := range classes {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(c.Key())
	}
}
