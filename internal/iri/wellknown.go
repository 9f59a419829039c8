package iri

// Well-known IRIs preallocated in the default registry at package init
// time, per spec.md §3.1 and §6.4.
var (
	OwlThing             Handle
	OwlNothing           Handle
	OwlClass             Handle
	OwlObjectProperty    Handle
	OwlDatatypeProperty  Handle
	OwlNamedIndividual   Handle
	RdfType              Handle
	RdfsSubClassOf       Handle
	RdfsDomain           Handle
	RdfsRange            Handle
	XsdString            Handle
	XsdInteger           Handle
	XsdDecimal           Handle
	XsdDouble            Handle
	XsdBoolean           Handle
	RdfLangString        Handle
)

func init() {
	reinitWellKnown()
}

// ReinitWellKnown re-interns the well-known IRIs into the default registry.
// Call this after Clear() in tests that need the preallocated handles to
// remain valid (Clear wipes the table, stranding any handle captured
// before it, the well-known ones included).
func ReinitWellKnown() {
	reinitWellKnown()
}

func reinitWellKnown() {
	OwlThing = Default.MustIntern("http://www.w3.org/2002/07/owl#Thing")
	OwlNothing = Default.MustIntern("http://www.w3.org/2002/07/owl#Nothing")
	OwlClass = Default.MustIntern("http://www.w3.org/2002/07/owl#Class")
	OwlObjectProperty = Default.MustIntern("http://www.w3.org/2002/07/owl#ObjectProperty")
	OwlDatatypeProperty = Default.MustIntern("http://www.w3.org/2002/07/owl#DatatypeProperty")
	OwlNamedIndividual = Default.MustIntern("http://www.w3.org/2002/07/owl#NamedIndividual")
	RdfType = Default.MustIntern("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")
	RdfsSubClassOf = Default.MustIntern("http://www.w3.org/2000/01/rdf-schema#subClassOf")
	RdfsDomain = Default.MustIntern("http://www.w3.org/2000/01/rdf-schema#domain")
	RdfsRange = Default.MustIntern("http://www.w3.org/2000/01/rdf-schema#range")
	XsdString = Default.MustIntern("http://www.w3.org/2001/XMLSchema#string")
	XsdInteger = Default.MustIntern("http://www.w3.org/2001/XMLSchema#integer")
	XsdDecimal = Default.MustIntern("http://www.w3.org/2001/XMLSchema#decimal")
	XsdDouble = Default.MustIntern("http://www.w3.org/2001/XMLSchema#double")
	XsdBoolean = Default.MustIntern("http://www.w3.org/2001/XMLSchema#boolean")
	RdfLangString = Default.MustIntern("http://www.w3.org/1999/02/22-rdf-syntax-ns#langString")
}
