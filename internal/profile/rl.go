package profile

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// rlDisallowedExpr lists the class-expression constructs OWL2-RL's
// grammar excludes. RL is the most permissive of the three — it keeps
// most of the profile's expressivity but still drops nominals and every
// object or data minimum/exact cardinality restriction, whatever its
// bound (maximum cardinality is accepted at any bound), since those
// defeat rule-based materialization.
var rlDisallowedExpr = exprGrammar{
	axiom.CEObjectOneOf:            "nominals are not expressible in RL",
	axiom.CEObjectMinCardinality:   "unbounded cardinality restrictions are not expressible in RL",
	axiom.CEObjectExactCardinality: "exact cardinality restrictions are not expressible in RL",
	axiom.CEDataMinCardinality:     "unbounded cardinality restrictions are not expressible in RL",
	axiom.CEDataExactCardinality:   "exact cardinality restrictions are not expressible in RL",
}

// RL places no blanket restriction on property-characteristic axioms
// beyond what the expression grammar above already covers.
var rlDisallowedAxioms = axiomKindGrammar{}

// ValidateRL checks every axiom in o against OWL2-RL's structural
// grammar, per spec.md §4.9.
func ValidateRL(o *ontology.Ontology) *ValidationResult {
	result := newResult(RL)
	for _, ax := range o.All() {
		if checkAxiomKind(ax, rlDisallowedAxioms, result) {
			continue
		}
		checkExpr(ax.SubClass, rlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.SuperClass, rlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.ClassExpr, rlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Domain, rlDisallowedExpr, ax.Key(), result)
		checkExpr(ax.Range, rlDisallowedExpr, ax.Key(), result)
		for _, c := range ax.Classes {
			checkExpr(c, rlDisallowedExpr, ax.Key(), result)
		}
	}
	return result
}
