// Package rdfxml implements a reader for the RDF/XML serialization (striped
// syntax per the W3C RDF 1.1 XML Syntax recommendation), producing
// canon.Triple values that are lifted to axioms by internal/parser/common's
// shared OWL-in-RDF mapping — the same lifter internal/parser/turtle uses.
// No original_source/ Rust analogue exists for this grammar (the distilled
// reasoner delegates RDF/XML parsing to an external crate); this is built
// directly from the W3C grammar using encoding/xml, the way the Go standard
// library expects XML-shaped formats to be walked.
package rdfxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// element is a minimal in-memory XML tree node; encoding/xml's streaming
// decoder doesn't build one for us, and RDF/XML's striped grammar needs to
// look ahead at a node's children before deciding whether they're nested
// resources, a collection, or plain literal content.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*element
	text     string
}

func buildTree(dec *xml.Decoder) (*element, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return buildElement(dec, start)
		}
	}
}

func buildElement(dec *xml.Decoder, start xml.StartElement) (*element, error) {
	el := &element{name: start.Name, attrs: start.Attr}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := buildElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el.text = text.String()
			return el, nil
		}
	}
}

func (e *element) attr(localName string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == rdfNS && a.Name.Local == localName {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) lang() (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == "http://www.w3.org/XML/1998/namespace" && a.Name.Local == "lang" {
			return a.Value, true
		}
	}
	return "", false
}

// reader accumulates triples while walking the tree and mints blank-node
// identifiers for anonymous resources and rdf:parseType="Collection" list
// cells.
type reader struct {
	base     string
	triples  []canon.Triple
	blankSeq int
	errs     []*errs.ParseError
	rdfType  iri.Handle
	rdfFirst iri.Handle
	rdfRest  iri.Handle
	rdfNil   iri.Handle
}

func newReader(base string) (*reader, error) {
	r := &reader{base: base}
	var err error
	if r.rdfType, err = iri.Intern(rdfNS + "type"); err != nil {
		return nil, err
	}
	if r.rdfFirst, err = iri.Intern(rdfNS + "first"); err != nil {
		return nil, err
	}
	if r.rdfRest, err = iri.Intern(rdfNS + "rest"); err != nil {
		return nil, err
	}
	if r.rdfNil, err = iri.Intern(rdfNS + "nil"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reader) reportf(format string, args ...interface{}) {
	r.errs = append(r.errs, &errs.ParseError{Message: fmt.Sprintf(format, args...), Kind: errs.UnexpectedToken})
}

func (r *reader) freshBlank() canon.Term {
	r.blankSeq++
	return canon.BlankTerm(fmt.Sprintf("rdfxml%d", r.blankSeq))
}

// elementIRI resolves an XML element or attribute name (namespace URI +
// local name) to an absolute IRI.
func elementIRI(name xml.Name) (iri.Handle, error) {
	ns := name.Space
	if ns == "" {
		return iri.Handle{}, &errs.IriParseError{Iri: name.Local, Context: "unqualified RDF/XML element name"}
	}
	return iri.Intern(ns + name.Local)
}

// resourceTerm determines the subject/object term a node element denotes,
// from rdf:about, rdf:ID (resolved against base), or rdf:nodeID — minting a
// fresh blank node if none of the three is present.
func (r *reader) resourceTerm(e *element) (canon.Term, error) {
	if about, ok := e.attr("about"); ok {
		h, err := iri.Intern(resolveRef(r.base, about))
		if err != nil {
			return canon.Term{}, err
		}
		return canon.IRITerm(h), nil
	}
	if id, ok := e.attr("ID"); ok {
		h, err := iri.Intern(r.base + "#" + id)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.IRITerm(h), nil
	}
	if nodeID, ok := e.attr("nodeID"); ok {
		return canon.BlankTerm("n" + nodeID), nil
	}
	return r.freshBlank(), nil
}

func resolveRef(base, ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	if strings.HasPrefix(ref, "#") {
		return base + ref
	}
	return base + ref
}

// processNode walks a node element (an rdf:Description or a typed-node
// shorthand) and every property element nested inside it, appending
// triples to r.triples. Returns the term the node denotes.
func (r *reader) processNode(e *element) (canon.Term, error) {
	subject, err := r.resourceTerm(e)
	if err != nil {
		return canon.Term{}, err
	}
	if e.name.Space != rdfNS || e.name.Local != "Description" {
		typeIRI, err := elementIRI(e.name)
		if err != nil {
			return canon.Term{}, err
		}
		r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: r.rdfType, Object: canon.IRITerm(typeIRI)})
	}
	// Attribute-form properties, e.g. <owl:Class rdf:about="..." rdfs:label="Cacao batch"/>.
	for _, a := range e.attrs {
		if a.Name.Space == rdfNS || a.Name.Space == "" || a.Name.Space == "http://www.w3.org/XML/1998/namespace" {
			continue
		}
		pred, err := iri.Intern(a.Name.Space + a.Name.Local)
		if err != nil {
			return canon.Term{}, err
		}
		lit, err := entity.NewLiteral(a.Value, iri.XsdString, "")
		if err != nil {
			return canon.Term{}, err
		}
		r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: canon.LiteralTerm(lit)})
	}
	for _, child := range e.children {
		if err := r.processPropertyElement(subject, child); err != nil {
			return canon.Term{}, err
		}
	}
	return subject, nil
}

func (r *reader) processPropertyElement(subject canon.Term, e *element) error {
	pred, err := elementIRI(e.name)
	if err != nil {
		return err
	}

	if resource, ok := e.attr("resource"); ok {
		h, err := iri.Intern(resolveRef(r.base, resource))
		if err != nil {
			return err
		}
		r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: canon.IRITerm(h)})
		return nil
	}
	if nodeID, ok := e.attr("nodeID"); ok {
		r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: canon.BlankTerm("n" + nodeID)})
		return nil
	}
	if parseType, ok := e.attr("parseType"); ok {
		switch parseType {
		case "Resource":
			nested := r.freshBlank()
			for _, child := range e.children {
				if err := r.processPropertyElement(nested, child); err != nil {
					return err
				}
			}
			r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: nested})
			return nil
		case "Collection":
			head, err := r.buildCollection(e.children)
			if err != nil {
				return err
			}
			r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: head})
			return nil
		case "Literal":
			lit, err := entity.NewLiteral(e.text, iri.RdfLangString, "")
			if err != nil {
				return err
			}
			r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: canon.LiteralTerm(lit)})
			return nil
		}
	}
	if len(e.children) == 1 {
		obj, err := r.processNode(e.children[0])
		if err != nil {
			return err
		}
		r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: obj})
		return nil
	}

	var datatype *string
	if dt, ok := e.attr("datatype"); ok {
		datatype = &dt
	}
	var language *string
	if lang, ok := e.lang(); ok {
		language = &lang
	}
	lit, err := common.ParseLiteral(e.text, datatype, language)
	if err != nil {
		return err
	}
	r.triples = append(r.triples, canon.Triple{Subject: subject, Predicate: pred, Object: canon.LiteralTerm(lit)})
	return nil
}

func (r *reader) buildCollection(items []*element) (canon.Term, error) {
	if len(items) == 0 {
		return canon.IRITerm(r.rdfNil), nil
	}
	tail := canon.IRITerm(r.rdfNil)
	resolved := make([]canon.Term, len(items))
	for i, it := range items {
		t, err := r.processNode(it)
		if err != nil {
			return canon.Term{}, err
		}
		resolved[i] = t
	}
	for i := len(resolved) - 1; i >= 0; i-- {
		node := r.freshBlank()
		r.triples = append(r.triples, canon.Triple{Subject: node, Predicate: r.rdfFirst, Object: resolved[i]})
		r.triples = append(r.triples, canon.Triple{Subject: node, Predicate: r.rdfRest, Object: tail})
		tail = node
	}
	return tail, nil
}

// Parse reads an RDF/XML document from src and returns the triples it
// denotes plus any structured parse errors encountered along the way.
func Parse(src io.Reader, baseIRI string) ([]canon.Triple, []*errs.ParseError) {
	dec := xml.NewDecoder(src)
	root, err := buildTree(dec)
	if err != nil {
		return nil, []*errs.ParseError{{Message: "malformed XML: " + err.Error(), Kind: errs.UnexpectedToken}}
	}
	r, internErr := newReader(baseIRI)
	if internErr != nil {
		return nil, []*errs.ParseError{{Message: internErr.Error(), Kind: errs.UnexpectedToken}}
	}

	nodes := root.children
	if root.name.Space != rdfNS || root.name.Local != "RDF" {
		// A bare top-level typed node (no wrapping rdf:RDF) is also valid.
		nodes = []*element{root}
	}
	for _, n := range nodes {
		if _, err := r.processNode(n); err != nil {
			pe, ok := err.(*errs.ParseError)
			if !ok {
				pe = &errs.ParseError{Message: err.Error(), Kind: errs.UnexpectedToken}
			}
			r.errs = append(r.errs, pe)
		}
	}
	return r.triples, r.errs
}

// Load parses src as RDF/XML and lifts every recognized OWL-in-RDF
// construct into o.
func Load(o *ontology.Ontology, src io.Reader, baseIRI string) []error {
	triples, parseErrs := Parse(src, baseIRI)
	var out []error
	for _, e := range parseErrs {
		out = append(out, e)
	}
	out = append(out, common.LiftTriples(o, triples)...)
	return out
}
