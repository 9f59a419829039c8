package profile

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// elDisallowedExpr lists the class-expression constructs OWL2-EL's
// grammar excludes: disjunction, negation, universal restriction, and
// every object and data cardinality restriction (0 and 1 included).
var elDisallowedExpr = exprGrammar{
	axiom.CEObjectUnionOf:         "disjunction is not expressible in EL",
	axiom.CEObjectComplementOf:    "negation is not expressible in EL",
	axiom.CEObjectAllValuesFrom:   "universal restriction is not expressible in EL",
	axiom.CEObjectMinCardinality:  "cardinality restrictions are not expressible in EL",
	axiom.CEObjectMaxCardinality:  "cardinality restrictions are not expressible in EL",
	axiom.CEObjectExactCardinality: "cardinality restrictions are not expressible in EL",
	axiom.CEDataMinCardinality:    "cardinality restrictions are not expressible in EL",
	axiom.CEDataMaxCardinality:    "cardinality restrictions are not expressible in EL",
	axiom.CEDataExactCardinality:  "cardinality restrictions are not expressible in EL",
}

// elDisallowedAxioms lists the axiom kinds EL excludes outright: most
// property characteristics, inverse and disjoint object properties, and
// disjoint union (of the object-property characteristics EL keeps only
// transitivity and reflexivity).
var elDisallowedAxioms = axiomKindGrammar{
	axiom.KindInverseObjectProperties:            "inverse properties are not expressible in EL",
	axiom.KindFunctionalObjectProperty:           "functional object properties are not expressible in EL",
	axiom.KindInverseFunctionalObjectProperty:    "inverse-functional object properties are not expressible in EL",
	axiom.KindSymmetricObjectProperty:            "symmetric object properties are not expressible in EL",
	axiom.KindAsymmetricObjectProperty:           "asymmetric object properties are not expressible in EL",
	axiom.KindIrreflexiveObjectProperty:          "irreflexive object properties are not expressible in EL",
	axiom.KindFunctionalDataProperty:             "functional data properties are not expressible in EL",
	axiom.KindDisjointObjectProperties:           "disjoint object properties are not expressible in EL",
	axiom.KindDisjointUnion:                      "disjoint union is not expressible in EL",
}

// ValidateEL checks every axiom in o against OWL2-EL's structural
// grammar, per spec.md §4.9.
func ValidateEL(o *ontology.Ontology) *ValidationResult {
	result := newResult(EL)
	for _, ax := range o.All() {
		if checkAxiomKind(ax, elDisallowedAxioms, result) {
			continue
		}
		checkExpr(ax.SubClass, elDisallowedExpr, ax.Key(), result)
		checkExpr(ax.SuperClass, elDisallowedExpr, ax.Key(), result)
		checkExpr(ax.ClassExpr, elDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Domain, elDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Range, elDisallowedExpr, ax.Key(), result)
		for _, c := range ax.Classes {
			checkExpr(c, elDisallowedExpr, ax.Key(), result)
		}
	}
	return result
}
