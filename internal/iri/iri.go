// Package iri implements the process-wide IRI intern table described in
// spec.md §3.1: every validated absolute reference is stored once, behind a
// reference-counted handle, so that equality and hashing across the whole
// reasoner reduce to a pointer/integer comparison instead of a string
// comparison.
package iri

import (
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/provchain-labs/owl2reasoner/internal/errs"
)

// Handle is a shared, reference-counted reference to an interned IRI
// string. The zero Handle is invalid; always obtain one via Intern.
type Handle struct {
	entry *entry
}

type entry struct {
	value string
	refs  int64
}

// String returns the canonical IRI string behind the handle.
func (h Handle) String() string {
	if h.entry == nil {
		return ""
	}
	return h.entry.value
}

// Valid reports whether h was produced by Intern (as opposed to the zero
// value).
func (h Handle) Valid() bool { return h.entry != nil }

// Equal compares two handles by identity, per spec.md §3.1 ("equality is
// handle equality").
func (h Handle) Equal(other Handle) bool { return h.entry == other.entry }

// Registry is the intern table. A process normally uses the package-level
// default instance (see Intern/Release/Clear), but tests may construct an
// isolated Registry to avoid cross-test interference.
type Registry struct {
	mu      sync.RWMutex
	byValue map[string]*entry
}

// NewRegistry constructs an empty, isolated intern table.
func NewRegistry() *Registry {
	return &Registry{byValue: make(map[string]*entry)}
}

// Intern validates iriStr per RFC 3987 (a practical subset, see Validate)
// and returns a shared handle, incrementing its reference count.
func (r *Registry) Intern(iriStr string) (Handle, error) {
	if err := Validate(iriStr); err != nil {
		return Handle{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byValue[iriStr]; ok {
		e.refs++
		return Handle{entry: e}, nil
	}
	e := &entry{value: iriStr, refs: 1}
	r.byValue[iriStr] = e
	return Handle{entry: e}, nil
}

// MustIntern is a convenience for well-known, statically-valid IRIs; it
// panics on validation failure, which would indicate a bug in this
// package's own well-known-IRI table, not user input.
func (r *Registry) MustIntern(iriStr string) Handle {
	h, err := r.Intern(iriStr)
	if err != nil {
		panic(err)
	}
	return h
}

// Release decrements the reference count of h. Once it reaches zero the
// entry is removed from the table; subsequent Interns of the same string
// allocate a fresh entry. Release on an already-released handle is a
// no-op guarded by the refs<=0 check.
func (r *Registry) Release(h Handle) {
	if !h.Valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.entry.refs <= 0 {
		return
	}
	h.entry.refs--
	if h.entry.refs == 0 && r.byValue[h.entry.value] == h.entry {
		delete(r.byValue, h.entry.value)
	}
}

// Len returns the number of distinct interned IRIs, for tests and metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byValue)
}

// Clear empties the table. Existing handles remain readable (their string
// is still reachable via h.String()) but will no longer compare Equal to a
// handle freshly interned after Clear — this is the explicit test-isolation
// entry point called for in spec.md §5 and §9.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byValue = make(map[string]*entry)
}

// hash64 is retained for callers that want a cheap, well-distributed hash of an IRI string without re-deriving it from
// the interned entry pointer; it is not used by the intern table itself,
// which keys its map on the Go string directly.
func hash64(s string) uint64 {
	sum := blake2b.Sum512([]byte(s))
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return v
}

// Hash64 exposes hash64 for packages that need a stable 64-bit digest of an
// IRI string (e.g. building composite cache keys).
func Hash64(s string) uint64 { return hash64(s) }

// Default is the process-wide registry used by the well-known IRIs below
// and by callers that don't need test isolation.
var Default = NewRegistry()

// Intern interns iriStr in the default registry.
func Intern(iriStr string) (Handle, error) { return Default.Intern(iriStr) }

// Clear empties the default registry. Exposed at package level for test
// setup/teardown, mirroring Registry.Clear.
func Clear() { Default.Clear() }

// Validate checks iriStr against the practical RFC 3987 subset named in
// spec.md §4.3: the scheme begins with a letter, the remainder uses a
// restricted character class, any fragment/query present is non-empty, and
// IP-literal hosts ("[...]") have matched brackets.
func Validate(iriStr string) error {
	if iriStr == "" {
		return &errs.IriParseError{Iri: iriStr, Context: "empty IRI"}
	}
	colon := strings.IndexByte(iriStr, ':')
	if colon <= 0 {
		return &errs.IriParseError{Iri: iriStr, Context: "missing scheme"}
	}
	scheme := iriStr[:colon]
	if !isAlpha(rune(scheme[0])) {
		return &errs.IriParseError{Iri: iriStr, Context: "scheme must begin with a letter"}
	}
	for _, c := range scheme[1:] {
		if !isAlpha(c) && !isDigit(c) && c != '+' && c != '-' && c != '.' {
			return &errs.IriParseError{Iri: iriStr, Context: "invalid scheme character"}
		}
	}
	rest := iriStr[colon+1:]

	// Split off fragment then query; both, if present, must be non-empty.
	if hash := strings.IndexByte(rest, '#'); hash >= 0 {
		if hash == len(rest)-1 {
			return &errs.IriParseError{Iri: iriStr, Context: "empty fragment"}
		}
		rest = rest[:hash]
	}
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		if q == len(rest)-1 {
			return &errs.IriParseError{Iri: iriStr, Context: "empty query"}
		}
	}

	// IP-literal bracket matching: "//[...]" hosts must balance brackets.
	if open := strings.IndexByte(rest, '['); open >= 0 {
		close := strings.IndexByte(rest, ']')
		if close < open {
			return &errs.IriParseError{Iri: iriStr, Context: "unmatched IP-literal bracket"}
		}
	} else if strings.IndexByte(rest, ']') >= 0 {
		return &errs.IriParseError{Iri: iriStr, Context: "unmatched IP-literal bracket"}
	}

	for _, c := range iriStr {
		if c <= 0x20 || c == '<' || c == '>' || c == '"' || c == '{' || c == '}' || c == '|' || c == '\\' || c == '^' || c == '`' {
			return &errs.IriParseError{Iri: iriStr, Context: "disallowed character"}
		}
	}
	return nil
}

func isAlpha(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c rune) bool { return c >= '0' && c <= '9' }
