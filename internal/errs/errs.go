// Package errs centralises the error taxonomy surfaced across the reasoner
// and provenance store, per the component boundary: user-input faults carry
// location/kind, resource faults are returned unchanged for the caller to
// retry or abort, and invariant violations are reported rather than
// silently corrected.
package errs

import "fmt"

// ParseErrorKind classifies a structured parse failure.
type ParseErrorKind int

const (
	UnexpectedToken ParseErrorKind = iota
	ExpectedClassExpression
	UndefinedPrefix
	DuplicateDeclaration
	InvalidCardinality
	InvalidIRI
	IncompleteExpression
	CircularDependency
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case ExpectedClassExpression:
		return "ExpectedClassExpression"
	case UndefinedPrefix:
		return "UndefinedPrefix"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case InvalidCardinality:
		return "InvalidCardinality"
	case InvalidIRI:
		return "InvalidIRI"
	case IncompleteExpression:
		return "IncompleteExpression"
	case CircularDependency:
		return "CircularDependency"
	default:
		return "Unknown"
	}
}

// ParseError is a user-input fault raised by any of the ontology parsers.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Kind    ParseErrorKind
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d (%s): %s", e.Line, e.Column, e.Kind, e.Message)
}

// IriParseError reports a malformed IRI encountered while validating or
// resolving a reference.
type IriParseError struct {
	Iri     string
	Context string
}

func (e *IriParseError) Error() string {
	return fmt.Sprintf("invalid IRI %q: %s", e.Iri, e.Context)
}

// DuplicateAxiom is returned when an ontology mutation would introduce a
// structurally equal axiom that already exists.
type DuplicateAxiom struct {
	Description string
}

func (e *DuplicateAxiom) Error() string {
	return fmt.Sprintf("duplicate axiom: %s", e.Description)
}

// UnsupportedConstruct is returned when a parser or reasoner encounters a
// syntactically valid construct it deliberately does not implement.
type UnsupportedConstruct struct {
	Construct string
}

func (e *UnsupportedConstruct) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// TimeoutError is a resource fault: the operation's wall-clock budget was
// exceeded before a decision could be reached.
type TimeoutError struct {
	Operation string
	TimeoutMs int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %dms", e.Operation, e.TimeoutMs)
}

// ReasoningError wraps a failure internal to the tableaux engine that is
// not a clash (e.g. an internal invariant could not be established).
type ReasoningError struct {
	Message string
}

func (e *ReasoningError) Error() string { return "reasoning error: " + e.Message }

// QueryError wraps a failure evaluating a query pattern.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string { return "query error: " + e.Message }

// CacheError reports an invariant violation inside the bounded cache (e.g.
// eviction failed to bring the cache back under its bound) or a recovered
// lock-poisoning condition.
type CacheError struct {
	Operation string
	Message   string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s: %s", e.Operation, e.Message)
}

// ConfigError reports an invalid configuration parameter.
type ConfigError struct {
	Parameter string
	Message   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %q: %s", e.Parameter, e.Message)
}

// StorageError wraps a failure persisting or reading the block log.
type StorageError struct {
	Message string
}

func (e *StorageError) Error() string { return "storage error: " + e.Message }

// SerializationError wraps a failure encoding or decoding a wire payload.
type SerializationError struct {
	Message string
}

func (e *SerializationError) Error() string { return "serialization error: " + e.Message }

// SignatureError reports a signature that failed to verify.
type SignatureError struct {
	Message string
}

func (e *SignatureError) Error() string { return "signature error: " + e.Message }

// InvalidTransaction reports a transaction that failed business-rule
// validation (§4.8).
type InvalidTransaction struct {
	Message string
}

func (e *InvalidTransaction) Error() string { return "invalid transaction: " + e.Message }
