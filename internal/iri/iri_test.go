package iri

import "testing"

func TestInternSharesHandle(t *testing.T) {
	r := NewRegistry()
	a, err := r.Intern("http://example.org/A")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	b, err := r.Intern("http://example.org/A")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected interning the same string to share a handle")
	}
	if a.String() != "http://example.org/A" {
		t.Fatalf("unexpected string %q", a.String())
	}
}

func TestInternDistinctStrings(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Intern("http://example.org/A")
	b, _ := r.Intern("http://example.org/B")
	if a.Equal(b) {
		t.Fatalf("distinct IRIs must not share a handle")
	}
}

func TestValidateRejectsBadIRIs(t *testing.T) {
	cases := []string{
		"",
		"no-scheme",
		"1scheme:foo",
		"http://example.org/#",
		"http://example.org/?",
		"http://[::1/bad",
		"http://example.org/ space",
	}
	for _, c := range cases {
		if err := Validate(c); err == nil {
			t.Errorf("expected validation error for %q", c)
		}
	}
}

func TestValidateAcceptsGoodIRIs(t *testing.T) {
	cases := []string{
		"http://example.org/A",
		"https://example.org/path?query=1#frag",
		"urn:isbn:0451450523",
		"http://[::1]:8080/path",
	}
	for _, c := range cases {
		if err := Validate(c); err != nil {
			t.Errorf("unexpected validation error for %q: %v", c, err)
		}
	}
}

func TestReleaseRemovesEntry(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Intern("http://example.org/A")
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
	r.Release(a)
	if r.Len() != 0 {
		t.Fatalf("expected 0 entries after release, got %d", r.Len())
	}
}

func TestClearEmptiesTable(t *testing.T) {
	r := NewRegistry()
	r.Intern("http://example.org/A")
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("expected empty table after Clear, got %d", r.Len())
	}
}

func TestWellKnownIRIsPreallocated(t *testing.T) {
	if !OwlThing.Valid() || OwlThing.String() != "http://www.w3.org/2002/07/owl#Thing" {
		t.Fatalf("owl:Thing not preallocated correctly: %+v", OwlThing)
	}
	if !RdfType.Valid() {
		t.Fatalf("rdf:type not preallocated")
	}
}
