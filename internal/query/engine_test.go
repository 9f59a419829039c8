package query

import (
	"testing"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/reasoner"
)

func mustIRI(t *testing.T, s string) iri.Handle {
	t.Helper()
	h, err := iri.Intern(s)
	if err != nil {
		t.Fatalf("intern %q: %v", s, err)
	}
	return h
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// companyOntology mirrors the fixture the original engine's test suite
// builds: three Person-family classes, two object properties, and a
// handful of individuals wired up with class and property assertions.
func companyOntology(t *testing.T) (o *ontology.Ontology, person, company, employee, worksFor, managerOf, person1, person2, person3, company1 iri.Handle) {
	t.Helper()
	o = ontology.New()
	person = mustIRI(t, "http://example.org/Person")
	company = mustIRI(t, "http://example.org/Company")
	employee = mustIRI(t, "http://example.org/Employee")
	worksFor = mustIRI(t, "http://example.org/worksFor")
	managerOf = mustIRI(t, "http://example.org/managerOf")
	person1 = mustIRI(t, "http://example.org/person1")
	person2 = mustIRI(t, "http://example.org/person2")
	person3 = mustIRI(t, "http://example.org/person3")
	company1 = mustIRI(t, "http://example.org/company1")

	for _, h := range []iri.Handle{person, company, employee} {
		must(t, o.Add(axiom.ClassDeclarationAxiom(h)))
	}
	must(t, o.Add(axiom.SubClassOfAxiom(axiom.Class(employee), axiom.Class(person))))
	for _, h := range []iri.Handle{worksFor, managerOf} {
		must(t, o.Add(axiom.ObjectPropertyDeclarationAxiom(h)))
	}
	for _, h := range []iri.Handle{person1, person2, person3, company1} {
		must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(h)))
	}

	must(t, o.Add(axiom.ClassAssertionAxiom(person1, axiom.Class(person))))
	must(t, o.Add(axiom.ClassAssertionAxiom(person2, axiom.Class(employee))))
	must(t, o.Add(axiom.ClassAssertionAxiom(person3, axiom.Class(person))))
	must(t, o.Add(axiom.ClassAssertionAxiom(company1, axiom.Class(company))))

	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(person1, axiom.ObjectProperty(worksFor), company1)))
	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(person2, axiom.ObjectProperty(worksFor), company1)))
	must(t, o.Add(axiom.ObjectPropertyAssertionAxiom(person3, axiom.ObjectProperty(managerOf), person1)))
	return
}

func newTestEngine(t *testing.T, o *ontology.Ontology) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheSize = 100
	return WithConfig(o, cfg, reasoner.New(o, reasoner.DefaultConfig()))
}

func TestGetClassInstances(t *testing.T) {
	o, person, _, _, _, _, person1, _, person3, _ := companyOntology(t)
	e := New(o) // no bound reasoner: only directly-asserted membership

	result, err := e.GetClassInstances(person)
	must(t, err)
	if len(result.Variables) != 1 || result.Variables[0] != "instance" {
		t.Fatalf("expected a single 'instance' variable, got %v", result.Variables)
	}
	if result.Len() != 2 {
		t.Fatalf("expected 2 direct Person instances, got %d: %+v", result.Len(), result.Bindings)
	}
	var sawP1, sawP3 bool
	for _, b := range result.Bindings {
		v, _ := b.Get("instance")
		switch {
		case v.IRI.Equal(person1):
			sawP1 = true
		case v.IRI.Equal(person3):
			sawP3 = true
		}
	}
	if !sawP1 || !sawP3 {
		t.Fatalf("expected person1 and person3 among instances")
	}
}

func TestGetClassInstancesWithReasoningIncludesSubclass(t *testing.T) {
	o, person, _, _, _, _, _, person2, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	result, err := e.GetClassInstances(person)
	must(t, err)
	if !result.Stats.ReasoningUsed {
		t.Fatalf("expected reasoning_used to be true when a reasoner is bound and enabled")
	}
	var sawEmployeeInstance bool
	for _, b := range result.Bindings {
		v, _ := b.Get("instance")
		if v.IRI.Equal(person2) {
			sawEmployeeInstance = true
		}
	}
	if !sawEmployeeInstance {
		t.Fatalf("expected person2 (an Employee, a subclass of Person) to be entailed a Person instance")
	}
}

func TestGetPropertyValues(t *testing.T) {
	o, _, _, _, worksFor, _, person1, _, _, company1 := companyOntology(t)
	e := newTestEngine(t, o)

	result, err := e.GetPropertyValues(person1, worksFor)
	must(t, err)
	if result.Len() != 1 {
		t.Fatalf("expected exactly one worksFor value, got %d", result.Len())
	}
	v, ok := result.Bindings[0].Get("value")
	if !ok || !v.IRI.Equal(company1) {
		t.Fatalf("expected person1 worksFor company1, got %+v", v)
	}
}

func TestGetAllClassesAndIndividuals(t *testing.T) {
	o, _, _, _, _, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	classes, err := e.GetAllClasses()
	must(t, err)
	if classes.Len() != 3 {
		t.Fatalf("expected 3 classes, got %d", classes.Len())
	}

	individuals, err := e.GetAllIndividuals()
	must(t, err)
	if individuals.Len() != 4 {
		t.Fatalf("expected 4 individuals, got %d", individuals.Len())
	}
}

func TestExecuteTypeTriplePattern(t *testing.T) {
	o, person, _, _, _, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	t1 := NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person))
	result, err := e.ExecuteTriple(t1)
	must(t, err)
	// person1 and person3 are directly asserted Person; person2 is only
	// asserted Employee, entailed a Person via the bound reasoner's subclass
	// hierarchy (Employee ⊑ Person), so reasoning-enabled lookup finds 3.
	if result.Len() != 3 {
		t.Fatalf("expected 3 bindings for ?s rdf:type Person, got %d", result.Len())
	}
}

func TestExecuteBasicGraphPatternJoin(t *testing.T) {
	o, person, _, employee, worksFor, _, _, person2, _, company1 := companyOntology(t)
	e := newTestEngine(t, o)

	// ?who a Employee . ?who worksFor ?company
	pattern := BasicGraphPattern(
		NewTriplePattern(Var("who"), IRITerm(iri.RdfType), IRITerm(employee)),
		NewTriplePattern(Var("who"), IRITerm(worksFor), Var("company")),
	)
	result, err := e.Execute(pattern)
	must(t, err)
	if result.Len() != 1 {
		t.Fatalf("expected exactly one joined binding, got %d: %+v", result.Len(), result.Bindings)
	}
	who, _ := result.Bindings[0].Get("who")
	company, _ := result.Bindings[0].Get("company")
	if !who.IRI.Equal(person2) || !company.IRI.Equal(company1) {
		t.Fatalf("expected who=person2 company=company1, got who=%v company=%v", who, company)
	}
	_ = person
}

func TestExecuteOptionalKeepsUnmatchedLeft(t *testing.T) {
	o, person, _, _, _, managerOf, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	left := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person)))
	right := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(managerOf), Var("report")))
	result, err := e.Execute(Optional(left, right))
	must(t, err)
	// Person extension is {person1, person2, person3} (person2 entailed via
	// Employee ⊑ Person); only person3 has a managerOf value, so one binding
	// joins and the other two carry ?report unbound.
	if result.Len() != 3 {
		t.Fatalf("expected 3 bindings (one joined, two left-only), got %d", result.Len())
	}
	var sawUnjoined bool
	for _, b := range result.Bindings {
		if !b.IsBound("report") {
			sawUnjoined = true
		}
	}
	if !sawUnjoined {
		t.Fatalf("expected at least one binding with ?report left unbound")
	}
}

func TestExecuteUnionConcatenates(t *testing.T) {
	o, person, company, _, _, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	left := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person)))
	right := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(company)))
	result, err := e.Execute(Union(left, right))
	must(t, err)
	// Person extension is {person1, person2, person3} (person2 entailed via
	// Employee ⊑ Person), plus 1 Company instance = 4 bindings.
	if result.Len() != 4 {
		t.Fatalf("expected 3 Person + 1 Company = 4 bindings, got %d", result.Len())
	}
}

func TestExecuteDistinctDeduplicates(t *testing.T) {
	o, _, _, _, worksFor, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	pattern := Distinct(BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(worksFor), Var("c"))))
	result, err := e.Execute(pattern)
	must(t, err)
	if result.Len() != 2 {
		t.Fatalf("expected 2 distinct worksFor bindings, got %d", result.Len())
	}
}

func TestExecuteFilterBound(t *testing.T) {
	o, person, _, _, _, managerOf, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	left := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person)))
	right := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(managerOf), Var("report")))
	pattern := Filter(Optional(left, right), IsBound("report"))
	result, err := e.Execute(pattern)
	must(t, err)
	for _, b := range result.Bindings {
		if !b.IsBound("report") {
			t.Fatalf("FILTER(BOUND(?report)) should have dropped unbound bindings, got %+v", b)
		}
	}
	if result.Len() == 0 {
		t.Fatalf("expected at least one binding to survive the filter")
	}
}

func TestCachingReturnsSameResultAndTracksHits(t *testing.T) {
	o, person, _, _, _, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	pattern := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person)))
	_, err := e.Execute(pattern)
	must(t, err)
	_, err = e.Execute(pattern)
	must(t, err)

	snap, _ := e.Stats()
	if snap.CacheHits == 0 {
		t.Fatalf("expected at least one cache hit on the second identical execution")
	}
	if snap.SuccessfulQueries != 2 {
		t.Fatalf("expected 2 successful queries recorded, got %d", snap.SuccessfulQueries)
	}
}

func TestCacheInvalidatesOnOntologyMutation(t *testing.T) {
	o, person, _, _, _, _, _, _, _, _ := companyOntology(t)
	e := newTestEngine(t, o)

	pattern := BasicGraphPattern(NewTriplePattern(Var("s"), IRITerm(iri.RdfType), IRITerm(person)))
	first, err := e.Execute(pattern)
	must(t, err)
	before := first.Len()

	newPerson := mustIRI(t, "http://example.org/person4")
	must(t, o.Add(axiom.NamedIndividualDeclarationAxiom(newPerson)))
	must(t, o.Add(axiom.ClassAssertionAxiom(newPerson, axiom.Class(person))))

	second, err := e.Execute(pattern)
	must(t, err)
	if second.Len() != before+1 {
		t.Fatalf("expected the mutated ontology to bypass the stale cache entry: before=%d after=%d", before, second.Len())
	}
}
