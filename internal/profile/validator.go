package profile

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// Validate dispatches to the named profile's structural grammar and
// returns its ValidationResult, per spec.md §4.9.
func Validate(o *ontology.Ontology, p Profile) (*ValidationResult, error) {
	switch p {
	case EL:
		return ValidateEL(o), nil
	case QL:
		return ValidateQL(o), nil
	case RL:
		return ValidateRL(o), nil
	default:
		return nil, fmt.Errorf("profile: unknown profile %d", p)
	}
}

// ValidateAll runs all three profiles against o and returns one result
// per profile, in EL, QL, RL order.
func ValidateAll(o *ontology.Ontology) []*ValidationResult {
	return []*ValidationResult{ValidateEL(o), ValidateQL(o), ValidateRL(o)}
}
