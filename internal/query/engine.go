package query

import (
	"context"
	"time"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/reasoner"
)

// Engine answers QueryPatterns against a bound Ontology, with optional
// reasoning-aware class-instance lookup and a generation-keyed result
// cache, per spec.md §4.5. Grounded on
// original_source/owl2-reasoner/src/reasoning/query/engine.rs's
// QueryEngine, with type_index/property_index dropped — Ontology already
// indexes axioms by entity (AxiomsFor/ClassAssertionsFor), so a second
// index here would only duplicate it.
type Engine struct {
	onto     *ontology.Ontology
	reasoner *reasoner.Reasoner
	cfg      Config
	cache    *resultCache
	stats    *EngineStats
}

// New constructs an Engine over o with DefaultConfig and no reasoner
// (GetClassInstances then only ever reports asserted membership).
func New(o *ontology.Ontology) *Engine {
	return WithConfig(o, DefaultConfig(), nil)
}

// WithConfig constructs an Engine with explicit cfg and an optional bound
// Reasoner (nil disables reasoning-aware instance lookup regardless of
// cfg.EnableReasoning).
func WithConfig(o *ontology.Ontology, cfg Config, r *reasoner.Reasoner) *Engine {
	return &Engine{
		onto:     o,
		reasoner: r,
		cfg:      cfg,
		cache:    newResultCache(cfg.CacheSize),
		stats:    NewEngineStats(),
	}
}

// Config returns the engine's current configuration.
func (e *Engine) Config() Config { return e.cfg }

// Stats returns a point-in-time snapshot of execution statistics, plus
// the mean successful-query time in milliseconds.
func (e *Engine) Stats() (EngineStatsSnapshot, float64) {
	snap, totalMS := e.stats.snapshot()
	return snap, snap.AverageTimeMS(totalMS)
}

// ResetStats zeros all counters.
func (e *Engine) ResetStats() { e.stats.reset() }

// ClearCache drops every memoized result.
func (e *Engine) ClearCache() { e.cache.clear() }

// CacheStats reports (entries, evictions) in the result cache.
func (e *Engine) CacheStats() (int, int) { return e.cache.stats() }

// Execute runs pattern, consulting and populating the result cache when
// caching is enabled.
func (e *Engine) Execute(pattern *QueryPattern) (*QueryResult, error) {
	start := time.Now()

	patHash := patternHash(pattern)
	cfgHash := configHash(e.cfg)
	key := cacheKey(patHash, cfgHash, e.onto.Generation())

	if e.cfg.EnableCaching {
		if cached, ok := e.cache.get(key); ok {
			e.stats.recordCacheHit()
			e.stats.recordSuccess(nowMillis(start))
			return cached, nil
		}
		e.stats.recordCacheMiss()
	}

	var result *QueryResult
	var err error
	if e.cfg.EnableParallel && pattern.SupportsParallel() {
		e.stats.recordParallel()
		result, err = e.executeParallel(pattern)
	} else {
		result, err = e.executeSequential(pattern)
	}
	if err != nil {
		e.stats.recordFailure()
		return nil, err
	}

	e.applyMaxResults(result)
	result.Stats.TimeMS = nowMillis(start)
	result.Stats.ResultsCount = result.Len()

	if e.cfg.EnableCaching {
		e.cache.put(key, result)
	}
	e.stats.recordSuccess(result.Stats.TimeMS)
	return result, nil
}

func (e *Engine) applyMaxResults(r *QueryResult) {
	if e.cfg.MaxResults > 0 && len(r.Bindings) > e.cfg.MaxResults {
		r.Bindings = r.Bindings[:e.cfg.MaxResults]
	}
}

// ExecuteTriple is a convenience wrapper executing a single-triple
// BasicGraphPattern.
func (e *Engine) ExecuteTriple(t TriplePattern) (*QueryResult, error) {
	return e.Execute(BasicGraphPattern(t))
}

// executeParallel currently falls back to sequential execution (as the
// original engine's execute_parallel does — it only records that a
// parallel-capable pattern was seen); a real fan-out would gain nothing
// here since BGP joins are strictly sequential and Union's two branches
// are each cheap ontology-index lookups, not expensive I/O.
func (e *Engine) executeParallel(pattern *QueryPattern) (*QueryResult, error) {
	return e.executeSequential(pattern)
}

func (e *Engine) executeSequential(pattern *QueryPattern) (*QueryResult, error) {
	switch pattern.Kind {
	case PatternBasicGraph:
		return e.executeBasicGraphPattern(pattern.Triples)
	case PatternOptional:
		return e.executeOptional(pattern.Left, pattern.Right)
	case PatternUnion:
		return e.executeUnion(pattern.Left, pattern.Right)
	case PatternFilter:
		return e.executeFilter(pattern.Inner, pattern.Filter)
	case PatternDistinct:
		inner, err := e.executeSequential(pattern.Inner)
		if err != nil {
			return nil, err
		}
		sortBindings(inner.Bindings)
		inner.Bindings = dedupBindings(inner.Bindings)
		return inner, nil
	case PatternReduced:
		inner, err := e.executeSequential(pattern.Inner)
		if err != nil {
			return nil, err
		}
		inner.Bindings = dedupBindingsUnordered(inner.Bindings)
		return inner, nil
	default:
		return nil, &errs.QueryError{Message: "unknown pattern kind"}
	}
}

func (e *Engine) executeBasicGraphPattern(triples []TriplePattern) (*QueryResult, error) {
	if len(triples) == 0 {
		return NewResult(), nil
	}
	current, err := e.executeSingleTriple(triples[0])
	if err != nil {
		return nil, err
	}
	for _, t := range triples[1:] {
		current, err = e.joinResults(current, t)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// queryKind classifies a single triple pattern to pick the fastest
// ontology lookup, per spec.md §4.5's evaluation policy.
type queryKind int

const (
	queryKindType queryKind = iota
	queryKindProperty
	queryKindGeneric
)

func (e *Engine) determineQueryKind(t TriplePattern) queryKind {
	if t.Predicate.Kind == TermIRI {
		if t.Predicate.IRI.Equal(iri.RdfType) {
			return queryKindType
		}
		return queryKindProperty
	}
	return queryKindGeneric
}

func (e *Engine) executeSingleTriple(t TriplePattern) (*QueryResult, error) {
	switch e.determineQueryKind(t) {
	case queryKindType:
		return e.executeTypeQuery(t)
	case queryKindProperty:
		return e.executePropertyQuery(t)
	default:
		return e.executeGenericQuery(t)
	}
}

// executeTypeQuery handles `?s rdf:type <Class>`, delegating to
// GetClassInstances and renaming its "instance" column to the pattern's
// actual subject variable (or filtering to one concrete subject).
func (e *Engine) executeTypeQuery(t TriplePattern) (*QueryResult, error) {
	if t.Object.Kind != TermIRI {
		return NewResult(), nil
	}
	instances, reasoningUsed := e.classInstances(t.Object.IRI)
	result := NewResult()
	result.Stats.ReasoningUsed = reasoningUsed

	switch {
	case t.Subject.Kind == TermVariable:
		result.Variables = []string{t.Subject.Variable}
		for _, ind := range instances {
			b := NewBinding()
			b.Bind(t.Subject.Variable, IRIValue(ind))
			result.AddBinding(b)
		}
	case t.Subject.Kind == TermIRI:
		for _, ind := range instances {
			if ind.Equal(t.Subject.IRI) {
				result.AddBinding(NewBinding())
				break
			}
		}
	}
	return result, nil
}

// executePropertyQuery handles a concrete-subject, concrete-predicate
// triple whose object is a variable, delegating to GetPropertyValues.
func (e *Engine) executePropertyQuery(t TriplePattern) (*QueryResult, error) {
	if t.Subject.Kind == TermIRI && t.Predicate.Kind == TermIRI && t.Object.Kind == TermVariable {
		result, err := e.getPropertyValuesInto(t.Subject.IRI, t.Predicate.IRI, t.Object.Variable)
		return result, err
	}
	return e.executeGenericQuery(t)
}

// executeGenericQuery is the fallback path for any shape not recognized
// above (variable predicate, concrete object with variable subject,
// fully concrete triples used as an existence check, ...): it walks
// every class assertion and property assertion in the ontology and
// tests each against the pattern.
func (e *Engine) executeGenericQuery(t TriplePattern) (*QueryResult, error) {
	result := NewResult()
	for _, v := range t.variables() {
		result.Variables = append(result.Variables, v)
	}

	for _, ax := range e.onto.AllClassAssertions() {
		if ax.ClassExpr == nil || ax.ClassExpr.Kind != axiom.CEClass {
			continue
		}
		if b, ok := matchTriple(t, IRIValue(ax.Individual), IRIValue(iri.RdfType), IRIValue(ax.ClassExpr.Class)); ok {
			result.AddBinding(b)
		}
	}
	for _, ax := range e.onto.AxiomsOfKind(axiom.KindObjectPropertyAssertion) {
		if b, ok := matchTriple(t, IRIValue(ax.Subject), IRIValue(ax.ObjectProp.IRI), IRIValue(ax.ObjectTarget)); ok {
			result.AddBinding(b)
		}
	}
	for _, ax := range e.onto.AxiomsOfKind(axiom.KindDataPropertyAssertion) {
		if b, ok := matchTriple(t, IRIValue(ax.Subject), IRIValue(ax.DataProp), LiteralValue(ax.DataTarget)); ok {
			result.AddBinding(b)
		}
	}
	return result, nil
}

// matchTriple tests (s,p,o) against pattern t, returning a binding of
// t's variables on success.
func matchTriple(t TriplePattern, s, p, o QueryValue) (QueryBinding, bool) {
	b := NewBinding()
	if !matchTerm(t.Subject, s, &b) {
		return b, false
	}
	if !matchTerm(t.Predicate, p, &b) {
		return b, false
	}
	if !matchTerm(t.Object, o, &b) {
		return b, false
	}
	return b, true
}

func matchTerm(t PatternTerm, v QueryValue, b *QueryBinding) bool {
	switch t.Kind {
	case TermVariable:
		if existing, ok := b.Get(t.Variable); ok {
			return existing.Equal(v)
		}
		b.Bind(t.Variable, v)
		return true
	case TermIRI:
		return v.Kind == TermIRI && v.IRI.Equal(t.IRI)
	case TermLiteral:
		return v.Kind == TermLiteral && v.Literal.Equal(t.Literal)
	default:
		return false
	}
}

// joinResults natural-joins left's bindings against every binding the
// single triple pattern right produces.
func (e *Engine) joinResults(left *QueryResult, right TriplePattern) (*QueryResult, error) {
	rightResult, err := e.executeSingleTriple(right)
	if err != nil {
		return nil, err
	}
	result := NewResult()
	result.Variables = mergeVariableLists(left.Variables, rightResult.Variables)
	for _, lb := range left.Bindings {
		for _, rb := range rightResult.Bindings {
			if merged, ok := lb.Join(rb); ok {
				result.AddBinding(merged)
			}
		}
	}
	result.Stats.ReasoningUsed = left.Stats.ReasoningUsed || rightResult.Stats.ReasoningUsed
	return result, nil
}

func (e *Engine) executeOptional(left, right *QueryPattern) (*QueryResult, error) {
	leftResult, err := e.executeSequential(left)
	if err != nil {
		return nil, err
	}
	rightResult, err := e.executeSequential(right)
	if err != nil {
		return nil, err
	}
	result := NewResult()
	result.Variables = mergeVariableLists(leftResult.Variables, rightResult.Variables)
	for _, lb := range leftResult.Bindings {
		matched := false
		for _, rb := range rightResult.Bindings {
			if merged, ok := lb.Join(rb); ok {
				result.AddBinding(merged)
				matched = true
			}
		}
		if !matched {
			result.AddBinding(lb)
		}
	}
	result.Stats.ReasoningUsed = leftResult.Stats.ReasoningUsed || rightResult.Stats.ReasoningUsed
	return result, nil
}

func (e *Engine) executeUnion(left, right *QueryPattern) (*QueryResult, error) {
	leftResult, err := e.executeSequential(left)
	if err != nil {
		return nil, err
	}
	rightResult, err := e.executeSequential(right)
	if err != nil {
		return nil, err
	}
	result := NewResult()
	result.Variables = mergeVariableLists(leftResult.Variables, rightResult.Variables)
	result.Bindings = append(result.Bindings, leftResult.Bindings...)
	result.Bindings = append(result.Bindings, rightResult.Bindings...)
	result.Stats.ReasoningUsed = leftResult.Stats.ReasoningUsed || rightResult.Stats.ReasoningUsed
	return result, nil
}

func (e *Engine) executeFilter(inner *QueryPattern, expr FilterExpression) (*QueryResult, error) {
	innerResult, err := e.executeSequential(inner)
	if err != nil {
		return nil, err
	}
	result := NewResult()
	result.Variables = innerResult.Variables
	result.Stats.ReasoningUsed = innerResult.Stats.ReasoningUsed
	for _, b := range innerResult.Bindings {
		if evalFilter(expr, b) {
			result.AddBinding(b)
		}
	}
	return result, nil
}

func evalFilter(expr FilterExpression, b QueryBinding) bool {
	switch expr.Op {
	case FilterBound:
		return b.IsBound(expr.Var)
	case FilterUnbound:
		return !b.IsBound(expr.Var)
	case FilterEquals, FilterNotEquals:
		lv, lok := resolveFilterTerm(expr.Left, b)
		rv, rok := resolveFilterTerm(expr.Right, b)
		if !lok || !rok {
			return false
		}
		eq := lv.Equal(rv)
		if expr.Op == FilterNotEquals {
			return !eq
		}
		return eq
	default:
		return false
	}
}

func resolveFilterTerm(t PatternTerm, b QueryBinding) (QueryValue, bool) {
	switch t.Kind {
	case TermVariable:
		return b.Get(t.Variable)
	case TermIRI:
		return IRIValue(t.IRI), true
	case TermLiteral:
		return LiteralValue(t.Literal), true
	default:
		return QueryValue{}, false
	}
}

// classInstances returns every individual asserted (and, when reasoning
// is enabled and a Reasoner is bound, entailed via the class hierarchy)
// to be a member of class h.
func (e *Engine) classInstances(h iri.Handle) ([]iri.Handle, bool) {
	set := make(map[string]iri.Handle)
	collectDirect := func(class iri.Handle) {
		for _, ax := range e.onto.AllClassAssertions() {
			if ax.ClassExpr != nil && ax.ClassExpr.Kind == axiom.CEClass && ax.ClassExpr.Class.Equal(class) {
				set[ax.Individual.String()] = ax.Individual
			}
		}
	}
	collectDirect(h)

	reasoningUsed := false
	if e.cfg.EnableReasoning && e.reasoner != nil {
		reasoningUsed = true
		hier, err := e.reasoner.Classify(context.Background())
		if err == nil {
			for _, sub := range descendantsOf(hier, h) {
				collectDirect(sub)
			}
		}
	}

	out := make([]iri.Handle, 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out, reasoningUsed
}

func descendantsOf(hier *reasoner.Hierarchy, root iri.Handle) []iri.Handle {
	var out []iri.Handle
	visited := map[string]bool{root.String(): true}
	queue := []iri.Handle{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sub := range hier.DirectSubclasses[cur.String()] {
			if !visited[sub.String()] {
				visited[sub.String()] = true
				out = append(out, sub)
				queue = append(queue, sub)
			}
		}
	}
	return out
}

// GetClassInstances answers "all instances of class h", per spec.md
// §4.5's type-query evaluation rule.
func (e *Engine) GetClassInstances(h iri.Handle) (*QueryResult, error) {
	instances, reasoningUsed := e.classInstances(h)
	result := NewResult()
	result.Variables = []string{"instance"}
	result.Stats.ReasoningUsed = reasoningUsed
	for _, ind := range instances {
		b := NewBinding()
		b.Bind("instance", IRIValue(ind))
		result.AddBinding(b)
	}
	result.Stats.ResultsCount = result.Len()
	return result, nil
}

// GetPropertyValues answers "every value subject--property-->?" across
// both object- and data-property assertions.
func (e *Engine) GetPropertyValues(subject, property iri.Handle) (*QueryResult, error) {
	return e.getPropertyValuesInto(subject, property, "value")
}

func (e *Engine) getPropertyValuesInto(subject, property iri.Handle, varName string) (*QueryResult, error) {
	result := NewResult()
	result.Variables = []string{varName}
	result.Stats.ReasoningUsed = e.cfg.EnableReasoning

	for _, ax := range e.onto.AxiomsFor(subject) {
		switch ax.Kind {
		case axiom.KindObjectPropertyAssertion:
			if ax.Subject.Equal(subject) && ax.ObjectProp.IRI.Equal(property) {
				b := NewBinding()
				b.Bind(varName, IRIValue(ax.ObjectTarget))
				result.AddBinding(b)
			}
		case axiom.KindDataPropertyAssertion:
			if ax.Subject.Equal(subject) && ax.DataProp.Equal(property) {
				b := NewBinding()
				b.Bind(varName, LiteralValue(ax.DataTarget))
				result.AddBinding(b)
			}
		}
	}
	result.Stats.ResultsCount = result.Len()
	return result, nil
}

// GetAllClasses answers "every declared class", binding each to ?class.
func (e *Engine) GetAllClasses() (*QueryResult, error) {
	result := NewResult()
	result.Variables = []string{"class"}
	for _, h := range e.onto.Classes() {
		b := NewBinding()
		b.Bind("class", IRIValue(h))
		result.AddBinding(b)
	}
	result.Stats.ResultsCount = result.Len()
	return result, nil
}

// GetAllIndividuals answers "every declared named individual", binding
// each to ?individual.
func (e *Engine) GetAllIndividuals() (*QueryResult, error) {
	result := NewResult()
	result.Variables = []string{"individual"}
	for _, h := range e.onto.NamedIndividuals() {
		b := NewBinding()
		b.Bind("individual", IRIValue(h))
		result.AddBinding(b)
	}
	result.Stats.ResultsCount = result.Len()
	return result, nil
}
