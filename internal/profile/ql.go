package profile

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// qlDisallowedExpr lists the class-expression constructs OWL2-QL's
// grammar excludes: disjunction, universal restriction, has-value and
// has-self restrictions, nominals, and every cardinality restriction.
// Every other construct, complement and qualified existential
// restriction included, is accepted in any position.
var qlDisallowedExpr = exprGrammar{
	axiom.CEObjectUnionOf:          "disjunction is not expressible in QL",
	axiom.CEObjectAllValuesFrom:    "universal restriction is not expressible in QL",
	axiom.CEObjectHasValue:         "individual-valued restrictions are not expressible in QL",
	axiom.CEObjectHasSelf:          "self-restriction is not expressible in QL",
	axiom.CEObjectOneOf:            "nominals are not expressible in QL",
	axiom.CEObjectMinCardinality:   "cardinality restrictions are not expressible in QL",
	axiom.CEObjectMaxCardinality:   "cardinality restrictions are not expressible in QL",
	axiom.CEObjectExactCardinality: "cardinality restrictions are not expressible in QL",
	axiom.CEDataMinCardinality:     "cardinality restrictions are not expressible in QL",
	axiom.CEDataMaxCardinality:     "cardinality restrictions are not expressible in QL",
	axiom.CEDataExactCardinality:   "cardinality restrictions are not expressible in QL",
	axiom.CEDataHasValue:           "individual-valued restrictions are not expressible in QL",
}

var qlDisallowedAxioms = axiomKindGrammar{
	axiom.KindTransitiveObjectProperty:        "transitive object properties break QL's query rewritability",
	axiom.KindFunctionalObjectProperty:        "functional object properties are not expressible in QL",
	axiom.KindInverseFunctionalObjectProperty: "inverse-functional object properties are not expressible in QL",
	axiom.KindFunctionalDataProperty:          "functional data properties are not expressible in QL",
	axiom.KindDisjointUnion:                   "disjoint union is not expressible in QL",
}

// ValidateQL checks every axiom in o against OWL2-QL's structural
// grammar, per spec.md §4.9. Role inclusion axioms with a property chain
// (length > 1) are rejected outright: QL restricts SubObjectPropertyOf to
// simple sub-property, never a chain.
func ValidateQL(o *ontology.Ontology) *ValidationResult {
	result := newResult(QL)
	for _, ax := range o.All() {
		if checkAxiomKind(ax, qlDisallowedAxioms, result) {
			continue
		}
		if ax.Kind == axiom.KindSubObjectPropertyOf && len(ax.Chain) > 1 {
			result.fail(ax.Key(), "PropertyChain", "property chains are not expressible in QL")
			continue
		}
		checkExpr(ax.SubClass, qlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.SuperClass, qlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.ClassExpr, qlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Domain, qlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Range, qlDisallowedExpr, ax.Key(), result)
		for _, c := range ax.Classes {
			checkExpr(c, qlDisallowedExpr, ax.Key(), result)
		}
	}
	return result
}
