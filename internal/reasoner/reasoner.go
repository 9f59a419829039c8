// Package reasoner also exposes Reasoner, the façade spec.md §4.4 describes
// as "the single entry point every consumer (query engine, profile
// validator, CLI) goes through" — it owns the rule extraction, the decision
// caches, and generation-based invalidation, so callers never touch the
// tableaux engine directly.
package reasoner

import (
	"context"
	"sync"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
)

// Reasoner binds an Ontology to a Config and caches its reasoning
// decisions, invalidating them automatically whenever the ontology's
// Generation() advances (spec.md §4.4.8).
type Reasoner struct {
	mu    sync.Mutex
	onto  *ontology.Ontology
	cfg   Config
	rules *ReasoningRules
	cache *decisionCaches
	gen   uint64
}

// New constructs a Reasoner bound to o with cfg.
func New(o *ontology.Ontology, cfg Config) *Reasoner {
	return &Reasoner{
		onto:  o,
		cfg:   cfg,
		rules: ExtractRules(o),
		cache: newDecisionCaches(cfg.DecisionCacheMax),
		gen:   o.Generation(),
	}
}

// refresh re-extracts the rule bundle and drops every cached decision when
// the bound ontology has mutated since the last call.
func (r *Reasoner) refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.onto.Generation()
	if cur == r.gen {
		return
	}
	r.rules = ExtractRules(r.onto)
	r.cache.clear()
	r.gen = cur
}

// IsConsistent checks the whole ontology for consistency, per spec.md
// §4.4.5, caching the result until the next mutation.
func (r *Reasoner) IsConsistent() (bool, error) {
	r.refresh()
	key := generationKey(r.gen, "consistency")
	if v, ok := r.cache.consistency.Get(key); ok {
		return v, nil
	}
	ok, err := CheckConsistency(r.onto, r.rules, r.cfg)
	if err != nil {
		return false, err
	}
	r.cache.consistency.Insert(key, ok)
	return ok, nil
}

// IsClassSatisfiable checks whether h can have instances in some model.
func (r *Reasoner) IsClassSatisfiable(h iri.Handle) (bool, error) {
	r.refresh()
	key := generationKey(r.gen, h.String())
	if v, ok := r.cache.satisfiability.Get(key); ok {
		return v, nil
	}
	ok, err := IsClassSatisfiable(r.onto, r.rules, r.cfg, h)
	if err != nil {
		return false, err
	}
	r.cache.satisfiability.Insert(key, ok)
	return ok, nil
}

// IsSubClassOf checks whether sub ⊑ super is entailed.
func (r *Reasoner) IsSubClassOf(sub, super *axiom.ClassExpression) (bool, error) {
	r.refresh()
	key := generationKey(r.gen, sub.Key(), super.Key())
	if v, ok := r.cache.subsumption.Get(key); ok {
		return v, nil
	}
	ok, err := IsSubClassOf(r.rules, r.cfg, sub, super)
	if err != nil {
		return false, err
	}
	r.cache.subsumption.Insert(key, ok)
	return ok, nil
}

// AreDisjoint checks whether a and b can never share an instance.
func (r *Reasoner) AreDisjoint(a, b *axiom.ClassExpression) (bool, error) {
	r.refresh()
	return AreDisjoint(r.rules, r.cfg, a, b)
}

// AreEquivalent checks whether a and b always denote the same extension.
func (r *Reasoner) AreEquivalent(a, b *axiom.ClassExpression) (bool, error) {
	r.refresh()
	return AreEquivalent(r.rules, r.cfg, a, b)
}

// Classify computes the full class hierarchy (spec.md §4.4.9).
func (r *Reasoner) Classify(ctx context.Context) (*Hierarchy, error) {
	r.refresh()
	return Classify(ctx, r.onto, r.rules, r.cfg)
}

// Stats exposes the decision caches' hit/miss counters for observability.
func (r *Reasoner) Stats() (consistency, satisfiability, subsumption interface{ HitRate() float64 }) {
	cs := r.cache.consistency.Stats()
	ss := r.cache.satisfiability.Stats()
	us := r.cache.subsumption.Stats()
	return cs, ss, us
}
