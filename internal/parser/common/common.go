// Package common provides the utilities every format-specific parser
// (turtle, rdfxml, functional, manchester, jsonld) shares: prefix/CURIE
// resolution, literal construction, and the recovery-mode error-cap
// policy, per spec.md §4.3. Grounded on
// original_source/owl2-reasoner/src/parser/common.rs, which the distilled
// formats were themselves lifted from.
package common

import (
	"fmt"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
)

// Prefixes tracks the prefix → namespace-IRI bindings accumulated while
// parsing one document (Turtle `@prefix`, Manchester `Prefix:`, OWL
// Functional `Prefix(...)` declarations all populate the same structure).
type Prefixes struct {
	m    map[string]string
	base string
}

// NewPrefixes constructs an empty prefix table holding baseIRI, which Base
// returns. Expand does not consult the base: a bare `:name` resolves only
// through a bound empty prefix, and relative references are not resolved.
func NewPrefixes(baseIRI string) *Prefixes {
	return &Prefixes{m: make(map[string]string), base: baseIRI}
}

// Add binds prefix (without its trailing ':') to namespace.
func (p *Prefixes) Add(prefix, namespace string) {
	p.m[prefix] = namespace
}

// Base returns the document's base IRI.
func (p *Prefixes) Base() string { return p.base }

// SetBase updates the base IRI in place, leaving accumulated prefix
// bindings untouched (an `@base`/`BASE` directive never resets `@prefix`
// bindings already seen earlier in the document).
func (p *Prefixes) SetBase(baseIRI string) { p.base = baseIRI }

// Expand resolves a CURIE of the form `prefix:localName` (or a bare `:name`
// against the empty prefix) to an absolute IRI string. An IRI containing
// "://" is returned unchanged; any other input, including an absolute IRI
// without "://" such as a urn:, is resolved as a CURIE.
func (p *Prefixes) Expand(curie string) (string, error) {
	if curie == "" {
		return "", &errs.IriParseError{Iri: curie, Context: "empty CURIE"}
	}
	if strings.Contains(curie, "://") {
		return curie, nil
	}
	idx := strings.IndexByte(curie, ':')
	if idx < 0 {
		return "", &errs.IriParseError{Iri: curie, Context: "not a CURIE (no ':')"}
	}
	prefix, local := curie[:idx], curie[idx+1:]
	ns, ok := p.m[prefix]
	if !ok {
		return "", &errs.IriParseError{Iri: curie, Context: fmt.Sprintf("undefined prefix %q", prefix)}
	}
	return ns + local, nil
}

// ExpandAndIntern expands a CURIE and interns the result, surfacing both
// the undefined-prefix case and a subsequent RFC 3987 validation failure as
// the same IriParseError kind.
func (p *Prefixes) ExpandAndIntern(curie string) (iri.Handle, error) {
	expanded, err := p.Expand(curie)
	if err != nil {
		return iri.Handle{}, err
	}
	return iri.Intern(expanded)
}

// ParseLiteral constructs a Literal from its lexical form plus an optional
// datatype and an optional language tag. Per spec.md §4.3, supplying both a
// datatype and a language tag is a parse error (the literal is plain-or-
// typed XOR language-tagged, never both).
func ParseLiteral(lexical string, datatype *string, language *string) (entity.Literal, error) {
	if datatype != nil && language != nil && *datatype != "" && *language != "" {
		return entity.Literal{}, &errs.ParseError{
			Message: "a literal cannot carry both a datatype and a language tag",
			Kind:    errs.UnexpectedToken,
		}
	}
	var dt iri.Handle
	var err error
	if datatype != nil && *datatype != "" {
		dt, err = iri.Intern(*datatype)
		if err != nil {
			return entity.Literal{}, err
		}
	}
	lang := ""
	if language != nil {
		lang = *language
	}
	return entity.NewLiteral(lexical, dt, lang)
}

// RecoveryMode selects how a parser continues after a structured parse
// error, per spec.md §4.3.
type RecoveryMode int

const (
	// BestEffort (the default) skips the offending construct and resumes at
	// the next recognizable token, collecting up to DefaultErrorCap errors.
	BestEffort RecoveryMode = iota
	// ErrorProduction treats a parse failure as if the grammar had an
	// explicit "error" production: it consumes tokens up to the next
	// statement terminator and continues.
	ErrorProduction
	// PanicMode aborts parsing at the first error.
	PanicMode
)

// DefaultErrorCap bounds how many structured errors BestEffort/
// ErrorProduction recovery accumulates before aborting outright.
const DefaultErrorCap = 10

// ErrorSink accumulates structured parse errors under a RecoveryMode
// policy, used by both the Manchester and OWL-Functional recursive-descent
// parsers.
type ErrorSink struct {
	Mode   RecoveryMode
	Cap    int
	Errors []*errs.ParseError
}

// NewErrorSink constructs a sink capped at DefaultErrorCap for every mode;
// under PanicMode the cap is never reached, since Report stops recovery at
// the first error.
func NewErrorSink(mode RecoveryMode) *ErrorSink {
	cap := DefaultErrorCap
	return &ErrorSink{Mode: mode, Cap: cap}
}

// Report records a parse error. It returns false once recovery should stop
// (PanicMode on the first error, or the cap reached under the other
// modes), at which point the caller must abort parsing.
func (s *ErrorSink) Report(e *errs.ParseError) bool {
	s.Errors = append(s.Errors, e)
	if s.Mode == PanicMode {
		return false
	}
	return len(s.Errors) < s.Cap
}

// HasErrors reports whether any parse error was recorded.
func (s *ErrorSink) HasErrors() bool { return len(s.Errors) > 0 }
