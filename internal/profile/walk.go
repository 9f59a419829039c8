package profile

import "github.com/provchain-labs/owl2reasoner/internal/axiom"

// exprGrammar names, for one profile, which class-expression constructs
// are disallowed and why.
type exprGrammar map[axiom.ClassExpressionKind]string

// checkExpr walks a class expression tree and records a violation for
// every disallowed construct it contains, recursing into nested operands
// so a disallowed filler buried inside an otherwise-legal intersection is
// still caught.
func checkExpr(ce *axiom.ClassExpression, g exprGrammar, axiomKey string, result *ValidationResult) {
	if ce == nil {
		return
	}
	if reason, bad := g[ce.Kind]; bad {
		result.fail(axiomKey, ce.Key(), reason)
	}
	for _, op := range ce.Operands {
		checkExpr(op, g, axiomKey, result)
	}
	checkExpr(ce.Complement, g, axiomKey, result)
	checkExpr(ce.Filler, g, axiomKey, result)
}

// axiomKindGrammar names, for one profile, which axiom kinds are
// disallowed outright (independent of any embedded class expression) and
// why — typically property-characteristic axioms a profile's rule set
// can't express.
type axiomKindGrammar map[axiom.Kind]string

func checkAxiomKind(ax axiom.Axiom, g axiomKindGrammar, result *ValidationResult) bool {
	if reason, bad := g[ax.Kind]; bad {
		result.fail(ax.Key(), ax.Kind.String(), reason)
		return true
	}
	return false
}
