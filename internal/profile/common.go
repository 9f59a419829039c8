// Package profile decides OWL2-EL/QL/RL membership by structural
// inspection of an ontology's axioms and class/property expressions
// against each profile's permitted constructs, per spec.md §4.9.
//
// Grounded on original_source/owl2-reasoner/src/profiles/cache.rs for the
// caching layer (the Owl2Profile/ProfileValidationResult types it
// imports from a sibling profiles/common.rs were not present in the
// retrieved source); the per-profile structural grammars themselves
// follow the W3C OWL2 profile definitions spec.md §4.9 and the GLOSSARY
// ("Profile: a syntactic OWL2 subset (EL, QL, RL) with known reasoning
// complexity") describe, simplified to the constructs this codebase's
// axiom model (internal/axiom) actually represents.
package profile

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
)

// Profile names an OWL2 tractable fragment.
type Profile int

const (
	EL Profile = iota
	QL
	RL
)

func (p Profile) String() string {
	switch p {
	case EL:
		return "EL"
	case QL:
		return "QL"
	case RL:
		return "RL"
	default:
		return "Unknown"
	}
}

// Violation cites one axiom and the construct within it that falls
// outside a profile's permitted grammar.
type Violation struct {
	AxiomKey  string
	Construct string
	Reason    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.AxiomKey, v.Reason, v.Construct)
}

// ValidationResult is the outcome of checking one profile against one
// ontology snapshot, per spec.md §4.9.
type ValidationResult struct {
	Profile    Profile
	Conforms   bool
	Violations []Violation
}

func newResult(p Profile) *ValidationResult {
	return &ValidationResult{Profile: p, Conforms: true}
}

func (r *ValidationResult) fail(key, construct, reason string) {
	r.Conforms = false
	r.Violations = append(r.Violations, Violation{AxiomKey: key, Construct: construct, Reason: reason})
}

// axiomChecker is implemented by each profile's structural grammar: it
// inspects a single axiom and appends any violations to result.
type axiomChecker func(ax axiom.Axiom, result *ValidationResult)
