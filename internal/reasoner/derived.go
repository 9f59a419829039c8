package reasoner

import (
	"context"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/workerpool"
)

// Hierarchy is the class taxonomy produced by classification (spec.md
// §4.4.9, C7): for every declared class, its direct (immediate, not
// transitive) subclasses and superclasses in the classified model.
type Hierarchy struct {
	DirectSubclasses   map[string][]iri.Handle
	DirectSuperclasses map[string][]iri.Handle
}

// classPair is one ordered candidate subsumption test (sub ⊑ super) during
// classification.
type classPair struct {
	sub, super iri.Handle
}

// Classify computes the complete class hierarchy by testing subsumption
// between every pair of declared classes (plus owl:Thing/owl:Nothing), then
// reducing to the direct edges of the resulting partial order. Grounded on
// original_source/owl2-reasoner/src/reasoning.rs's classify_ontology, which
// takes the same brute-force-then-reduce approach rather than an
// incremental completion algorithm.
func Classify(ctx context.Context, o *ontology.Ontology, rules *ReasoningRules, cfg Config) (*Hierarchy, error) {
	classes := o.Classes()
	all := append([]iri.Handle{iri.OwlThing, iri.OwlNothing}, classes...)

	var pairs []classPair
	for _, a := range all {
		for _, b := range all {
			if a.Equal(b) {
				continue
			}
			pairs = append(pairs, classPair{sub: a, super: b})
		}
	}

	var subsumes map[classPair]bool
	if cfg.EnableParallel {
		results, err := workerpool.ParallelMap(ctx, pairs, cfg.MaxConcurrency, func(ctx context.Context, p classPair) (bool, error) {
			return IsSubClassOf(rules, cfg, axiom.Class(p.sub), axiom.Class(p.super))
		})
		if err != nil {
			return nil, err
		}
		subsumes = make(map[classPair]bool, len(pairs))
		for i, p := range pairs {
			subsumes[p] = results[i]
		}
	} else {
		subsumes = make(map[classPair]bool, len(pairs))
		for _, p := range pairs {
			ok, err := IsSubClassOf(rules, cfg, axiom.Class(p.sub), axiom.Class(p.super))
			if err != nil {
				return nil, err
			}
			subsumes[p] = ok
		}
	}

	h := &Hierarchy{
		DirectSubclasses:   make(map[string][]iri.Handle),
		DirectSuperclasses: make(map[string][]iri.Handle),
	}
	for _, sup := range all {
		for _, sub := range all {
			if sub.Equal(sup) || !subsumes[classPair{sub: sub, super: sup}] {
				continue
			}
			if isDirect(all, subsumes, sub, sup) {
				h.DirectSubclasses[sup.String()] = append(h.DirectSubclasses[sup.String()], sub)
				h.DirectSuperclasses[sub.String()] = append(h.DirectSuperclasses[sub.String()], sup)
			}
		}
	}
	return h, nil
}

// isDirect reports whether sub ⊑ sup is a direct (non-redundant) edge: no
// intermediate class mid exists with sub ⊑ mid ⊑ sup, mid distinct from
// both.
func isDirect(all []iri.Handle, subsumes map[classPair]bool, sub, sup iri.Handle) bool {
	for _, mid := range all {
		if mid.Equal(sub) || mid.Equal(sup) {
			continue
		}
		if subsumes[classPair{sub: sub, super: mid}] && subsumes[classPair{sub: mid, super: sup}] {
			return false
		}
	}
	return true
}
