package jsonld

import (
	"encoding/json"
	"io"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// Parse decodes src as JSON-LD and expands it into RDF triples, without
// lifting them into axioms (exposed for callers that want the triple
// form directly, e.g. re-serializing to Turtle).
func Parse(src io.Reader, baseIRI string) ([]canon.Triple, []error) {
	dec := json.NewDecoder(src)
	dec.UseNumber()
	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, []error{err}
	}
	ctx := newContext(baseIRI)
	if obj, ok := root.(map[string]interface{}); ok {
		if rawCtx, ok := obj["@context"]; ok {
			merged, err := applyContextValue(ctx, rawCtx)
			if err != nil {
				return nil, []error{err}
			}
			ctx = merged
		}
	}
	triples, errsOut := expandTopLevel(root, ctx)
	return triples, errsOut
}

// Load parses src as JSON-LD, expands it to RDF, and lifts every resulting
// triple into o via the same OWL-in-RDF mapping the turtle and rdfxml
// readers share.
func Load(o *ontology.Ontology, src io.Reader, baseIRI string) []error {
	triples, errsOut := Parse(src, baseIRI)
	errsOut = append(errsOut, common.LiftTriples(o, triples)...)
	return errsOut
}
