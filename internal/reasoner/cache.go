package reasoner

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/cache"
)

// decisionCaches is the three-tier cache named in spec.md §4.4.8: one
// bounded cache per decision kind (consistency, satisfiability,
// subsumption), each keyed by a generation-qualified string so a mutation to
// the ontology can never serve a stale answer. Built directly on internal/
// cache's generic Cache rather than a bespoke map, matching C2's role as the
// shared caching primitive for every reasoning-adjacent component.
type decisionCaches struct {
	consistency   *cache.Cache[string, bool]
	satisfiability *cache.Cache[string, bool]
	subsumption   *cache.Cache[string, bool]
}

func newDecisionCaches(maxSize int) *decisionCaches {
	cfg := cache.NewConfigBuilder().MaxSize(maxSize).EnableStats(true).WithStrategy(cache.LRU).Build()
	return &decisionCaches{
		consistency:    cache.New[string, bool]("reasoner_consistency", cfg),
		satisfiability: cache.New[string, bool]("reasoner_satisfiability", cfg),
		subsumption:    cache.New[string, bool]("reasoner_subsumption", cfg),
	}
}

func generationKey(gen uint64, parts ...string) string {
	key := fmt.Sprintf("g%d", gen)
	for _, p := range parts {
		key += "|" + p
	}
	return key
}

func (d *decisionCaches) clear() {
	d.consistency.Clear()
	d.satisfiability.Clear()
	d.subsumption.Clear()
}
