// Package jsonld implements a simplified JSON-LD 1.1 expansion reader:
// term expansion against an active-context stack, value-object and
// container processing (@list/@set/@language/@index/@id), and
// reverse-property collection. Terms declared with an @graph or @type
// container get no container-specific handling: their values are expanded
// like those of a term without a container. It produces the same canon.Triple shape
// the turtle and rdfxml readers do so the result can be lifted into
// axioms through the one shared internal/parser/common.LiftTriples path.
// Grounded on
// original_source/owl2-reasoner/src/parser/json_ld/{algorithm,container}.rs,
// adapted from that crate's ExpandedNode/ExpandedValue/ContainerProcessor
// split into triple emission directly — an ontology only ever needs the
// RDF graph a JSON-LD document denotes, not its intermediate expanded-JSON
// form.
package jsonld

import (
	"fmt"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/errs"
)

// termDef records what one context-scoped term expands to: the IRI it
// maps to, its declared container (if any), and any fixed type/language
// coercion.
type termDef struct {
	iri       string
	container string // "", "@list", "@set", "@language", "@index", "@id", "@graph", "@type"
	typeMap   string // "", "@id", "@vocab", or a fixed datatype IRI
	language  *string
	reverse   bool
}

// context is one frame of the active-context stack. It is cloned (not
// mutated in place) whenever a nested @context is processed, so a sibling
// node's expansion never observes another sibling's scoped terms.
type context struct {
	vocab    string
	base     string
	language string
	terms    map[string]termDef
}

func newContext(baseIRI string) *context {
	return &context{base: baseIRI, terms: make(map[string]termDef)}
}

func (c *context) clone() *context {
	terms := make(map[string]termDef, len(c.terms))
	for k, v := range c.terms {
		terms[k] = v
	}
	return &context{vocab: c.vocab, base: c.base, language: c.language, terms: terms}
}

// isAbsoluteIRI reports whether s already has a scheme, so it should pass
// through term/vocab expansion unchanged.
func isAbsoluteIRI(s string) bool {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return false
	}
	for i := 0; i < idx; i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}

// expandIRI resolves a key or value string to an absolute IRI: an already-
// absolute IRI passes through, a compact IRI ("prefix:local" where prefix
// is itself a term) expands against that term, a bare term expands against
// its definition, and anything else falls back to @vocab (or @base for
// document-relative references).
func (c *context) expandIRI(value string) (string, error) {
	if value == "" {
		return "", &errs.ParseError{Message: "empty term reference", Kind: errs.UnexpectedToken}
	}
	if idx := strings.IndexByte(value, ':'); idx > 0 && !strings.HasPrefix(value[idx+1:], "//") {
		prefix, local := value[:idx], value[idx+1:]
		if td, ok := c.terms[prefix]; ok && td.iri != "" {
			return td.iri + local, nil
		}
	}
	if isAbsoluteIRI(value) {
		return value, nil
	}
	if value == "@type" {
		return "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", nil
	}
	if td, ok := c.terms[value]; ok && td.iri != "" {
		return td.iri, nil
	}
	if c.vocab != "" {
		return c.vocab + value, nil
	}
	if c.base != "" {
		return c.base + value, nil
	}
	return "", &errs.ParseError{Message: fmt.Sprintf("undefined term %q", value), Kind: errs.UndefinedPrefix}
}

// applyContextValue merges raw (a single context object, or an array of
// them — string-valued remote @context references are rejected, since this
// reader never performs network I/O) onto a clone of base.
func applyContextValue(base *context, raw interface{}) (*context, error) {
	out := base.clone()
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			var err error
			out, err = applyContextValue(out, item)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case string:
		return nil, &errs.UnsupportedConstruct{Construct: "remote @context reference: " + v}
	case map[string]interface{}:
		if vocab, ok := v["@vocab"].(string); ok {
			out.vocab = vocab
		}
		if base, ok := v["@base"].(string); ok {
			out.base = base
		}
		if lang, ok := v["@language"].(string); ok {
			out.language = lang
		}
		for key, val := range v {
			if strings.HasPrefix(key, "@") {
				continue
			}
			td, err := parseTermDefinition(out, val)
			if err != nil {
				return nil, err
			}
			out.terms[key] = td
		}
		return out, nil
	case nil:
		return out, nil
	default:
		return nil, &errs.ParseError{Message: "unsupported @context value", Kind: errs.UnexpectedToken}
	}
}

func parseTermDefinition(ctx *context, raw interface{}) (termDef, error) {
	switch v := raw.(type) {
	case string:
		expanded, err := ctx.expandIRI(v)
		if err != nil {
			// Forward references within the same context object (a term
			// whose expansion depends on a prefix defined later in the same
			// map) aren't reordered here; fall back to treating the string
			// as already-absolute or @vocab-relative text.
			return termDef{iri: v}, nil
		}
		return termDef{iri: expanded}, nil
	case map[string]interface{}:
		var td termDef
		if id, ok := v["@id"].(string); ok {
			expanded, err := ctx.expandIRI(id)
			if err != nil {
				expanded = id
			}
			td.iri = expanded
		}
		if rev, ok := v["@reverse"].(string); ok {
			expanded, err := ctx.expandIRI(rev)
			if err != nil {
				expanded = rev
			}
			td.iri = expanded
			td.reverse = true
		}
		if container, ok := v["@container"].(string); ok {
			td.container = container
		}
		if typ, ok := v["@type"].(string); ok {
			if typ == "@id" || typ == "@vocab" {
				td.typeMap = typ
			} else {
				expanded, err := ctx.expandIRI(typ)
				if err != nil {
					expanded = typ
				}
				td.typeMap = expanded
			}
		}
		if lang, ok := v["@language"]; ok {
			if lang == nil {
				none := ""
				td.language = &none
			} else if s, ok := lang.(string); ok {
				td.language = &s
			}
		}
		return td, nil
	default:
		return termDef{}, &errs.ParseError{Message: "unsupported term definition shape", Kind: errs.UnexpectedToken}
	}
}
