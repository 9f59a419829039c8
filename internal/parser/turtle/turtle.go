package turtle

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/canon"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// Parser turns Turtle source into triples, tracking the prefix/base state a
// document accumulates as it reads top to bottom.
type Parser struct {
	lex       *lexer
	cur       token
	prefixes  *common.Prefixes
	sink      *common.ErrorSink
	blankSeq  int
	triples   []canon.Triple
}

// NewParser constructs a Parser over src. baseIRI is the prefix table's
// initial base, which an @base/BASE directive replaces; IRI references are
// interned as written and are not resolved against it.
func NewParser(src, baseIRI string, mode common.RecoveryMode) *Parser {
	return &Parser{
		lex:      newLexer(src),
		prefixes: common.NewPrefixes(baseIRI),
		sink:     common.NewErrorSink(mode),
	}
}

func (p *Parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

// Parse reads the whole document and returns the triples it denotes. Parse
// errors recorded in the ErrorSink are also returned for BestEffort/
// ErrorProduction callers that want to inspect what was skipped.
func (p *Parser) Parse() ([]canon.Triple, []*errs.ParseError) {
	if err := p.advance(); err != nil {
		p.reportLexErr(err)
		return p.triples, p.sink.Errors
	}
	for p.cur.kind != tokEOF {
		if err := p.statement(); err != nil {
			if !p.reportLexErr(err) {
				break
			}
			if !p.recoverToNextStatement() {
				break
			}
		}
	}
	return p.triples, p.sink.Errors
}

func (p *Parser) reportLexErr(err error) bool {
	if err == nil {
		return true
	}
	pe, ok := err.(*errs.ParseError)
	if !ok {
		pe = &errs.ParseError{Message: err.Error(), Kind: errs.UnexpectedToken}
	}
	return p.sink.Report(pe)
}

func (p *Parser) recoverToNextStatement() bool {
	for p.cur.kind != tokEOF && p.cur.kind != tokDot {
		if err := p.advance(); err != nil {
			return p.reportLexErr(err)
		}
	}
	if p.cur.kind == tokDot {
		return p.reportLexErr(p.advance())
	}
	return true
}

func (p *Parser) expect(kind tokenKind, what string) error {
	if p.cur.kind != kind {
		return &errs.ParseError{
			Message: fmt.Sprintf("expected %s, got %q", what, p.cur.text),
			Kind:    errs.UnexpectedToken,
			Line:    p.cur.line,
			Column:  p.cur.column,
		}
	}
	return p.advance()
}

func (p *Parser) statement() error {
	switch p.cur.kind {
	case tokPrefixKW:
		return p.prefixDirective(true)
	case tokPrefixKWSparql:
		return p.prefixDirective(false)
	case tokBaseKW:
		return p.baseDirective(true)
	case tokBaseKWSparql:
		return p.baseDirective(false)
	default:
		return p.triplesStatement()
	}
}

// prefixDirective handles both `@prefix p: <iri> .` (requireDot=true) and
// the SPARQL-style `PREFIX p: <iri>` (requireDot=false, no trailing dot).
func (p *Parser) prefixDirective(requireDot bool) error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokPNameNS && p.cur.kind != tokPNameLN {
		return &errs.ParseError{Message: "expected a prefix name", Kind: errs.UnexpectedToken, Line: p.cur.line, Column: p.cur.column}
	}
	prefix := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokIRIRef {
		return &errs.ParseError{Message: "expected an IRI reference after prefix name", Kind: errs.UnexpectedToken, Line: p.cur.line, Column: p.cur.column}
	}
	p.prefixes.Add(prefix, p.cur.text)
	if err := p.advance(); err != nil {
		return err
	}
	if requireDot || p.cur.kind == tokDot {
		return p.expect(tokDot, "'.'")
	}
	return nil
}

func (p *Parser) baseDirective(requireDot bool) error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokIRIRef {
		return &errs.ParseError{Message: "expected an IRI reference after base", Kind: errs.UnexpectedToken, Line: p.cur.line, Column: p.cur.column}
	}
	p.prefixes.SetBase(p.cur.text)
	if err := p.advance(); err != nil {
		return err
	}
	if requireDot || p.cur.kind == tokDot {
		return p.expect(tokDot, "'.'")
	}
	return nil
}

func (p *Parser) triplesStatement() error {
	subject, err := p.subject()
	if err != nil {
		return err
	}
	if err := p.predicateObjectList(subject); err != nil {
		return err
	}
	return p.expect(tokDot, "'.'")
}

func (p *Parser) subject() (canon.Term, error) {
	switch p.cur.kind {
	case tokLBracket:
		return p.blankNodePropertyList()
	case tokLParen:
		return p.collection()
	default:
		return p.namedOrBlank()
	}
}

func (p *Parser) namedOrBlank() (canon.Term, error) {
	switch p.cur.kind {
	case tokIRIRef:
		h, err := iri.Intern(p.cur.text)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.IRITerm(h), p.advance()
	case tokPNameNS, tokPNameLN:
		h, err := p.prefixes.ExpandAndIntern(p.cur.text)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.IRITerm(h), p.advance()
	case tokBlankNodeLabel:
		label := p.cur.text
		return canon.BlankTerm(label), p.advance()
	case tokAnonBlank:
		p.blankSeq++
		label := fmt.Sprintf("anon%d", p.blankSeq)
		return canon.BlankTerm(label), p.advance()
	default:
		return canon.Term{}, &errs.ParseError{
			Message: fmt.Sprintf("expected an IRI, prefixed name, or blank node, got %q", p.cur.text),
			Kind:    errs.UnexpectedToken, Line: p.cur.line, Column: p.cur.column,
		}
	}
}

// blankNodePropertyList parses `[ predicateObjectList ]`, allocating a
// fresh blank node as its subject and adding every triple it implies.
func (p *Parser) blankNodePropertyList() (canon.Term, error) {
	if err := p.advance(); err != nil { // consume '['
		return canon.Term{}, err
	}
	p.blankSeq++
	node := canon.BlankTerm(fmt.Sprintf("bnode%d", p.blankSeq))
	if err := p.predicateObjectList(node); err != nil {
		return canon.Term{}, err
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return canon.Term{}, err
	}
	return node, nil
}

// collection parses `( item* )` as an RDF list, returning the head node
// (rdf:nil when empty).
func (p *Parser) collection() (canon.Term, error) {
	if err := p.advance(); err != nil { // consume '('
		return canon.Term{}, err
	}
	var items []canon.Term
	for p.cur.kind != tokRParen {
		item, err := p.object()
		if err != nil {
			return canon.Term{}, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil { // consume ')'
		return canon.Term{}, err
	}
	rdfFirst, err := iri.Intern("http://www.w3.org/1999/02/22-rdf-syntax-ns#first")
	if err != nil {
		return canon.Term{}, err
	}
	rdfRest, err := iri.Intern("http://www.w3.org/1999/02/22-rdf-syntax-ns#rest")
	if err != nil {
		return canon.Term{}, err
	}
	rdfNil, err := iri.Intern("http://www.w3.org/1999/02/22-rdf-syntax-ns#nil")
	if err != nil {
		return canon.Term{}, err
	}
	tail := canon.IRITerm(rdfNil)
	for i := len(items) - 1; i >= 0; i-- {
		p.blankSeq++
		node := canon.BlankTerm(fmt.Sprintf("list%d", p.blankSeq))
		p.triples = append(p.triples, canon.Triple{Subject: node, Predicate: rdfFirst, Object: items[i]})
		p.triples = append(p.triples, canon.Triple{Subject: node, Predicate: rdfRest, Object: tail})
		tail = node
	}
	return tail, nil
}

func (p *Parser) predicateObjectList(subject canon.Term) error {
	for {
		pred, err := p.verb()
		if err != nil {
			return err
		}
		if err := p.objectList(subject, pred); err != nil {
			return err
		}
		if p.cur.kind != tokSemicolon {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
		// Trailing ';' with nothing following (end of property list).
		if p.cur.kind == tokDot || p.cur.kind == tokRBracket {
			return nil
		}
	}
}

func (p *Parser) verb() (iri.Handle, error) {
	if p.cur.kind == tokA {
		if err := p.advance(); err != nil {
			return iri.Handle{}, err
		}
		return iri.RdfType, nil
	}
	t, err := p.namedOrBlank()
	if err != nil {
		return iri.Handle{}, err
	}
	if t.Kind != canon.TermIRI {
		return iri.Handle{}, &errs.ParseError{Message: "a predicate must be an IRI", Kind: errs.UnexpectedToken}
	}
	return t.IRI, nil
}

func (p *Parser) objectList(subject canon.Term, pred iri.Handle) error {
	for {
		obj, err := p.object()
		if err != nil {
			return err
		}
		p.triples = append(p.triples, canon.Triple{Subject: subject, Predicate: pred, Object: obj})
		if p.cur.kind != tokComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) object() (canon.Term, error) {
	switch p.cur.kind {
	case tokLBracket:
		return p.blankNodePropertyList()
	case tokLParen:
		return p.collection()
	case tokString:
		return p.literal()
	case tokInteger:
		return p.numericLiteral("http://www.w3.org/2001/XMLSchema#integer")
	case tokDecimal:
		return p.numericLiteral("http://www.w3.org/2001/XMLSchema#decimal")
	case tokDouble:
		return p.numericLiteral("http://www.w3.org/2001/XMLSchema#double")
	case tokBooleanTrue, tokBooleanFalse:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return canon.Term{}, err
		}
		lit, err := common.ParseLiteral(text, strPtr("http://www.w3.org/2001/XMLSchema#boolean"), nil)
		if err != nil {
			return canon.Term{}, err
		}
		return canon.LiteralTerm(lit), nil
	default:
		return p.namedOrBlank()
	}
}

func (p *Parser) numericLiteral(datatype string) (canon.Term, error) {
	text := p.cur.text
	if err := p.advance(); err != nil {
		return canon.Term{}, err
	}
	lit, err := common.ParseLiteral(text, strPtr(datatype), nil)
	if err != nil {
		return canon.Term{}, err
	}
	return canon.LiteralTerm(lit), nil
}

func (p *Parser) literal() (canon.Term, error) {
	lexical := p.cur.text
	if err := p.advance(); err != nil {
		return canon.Term{}, err
	}
	var datatype, lang *string
	switch p.cur.kind {
	case tokLangTag:
		lang = strPtr(p.cur.text)
		if err := p.advance(); err != nil {
			return canon.Term{}, err
		}
	case tokDatatypeMarker:
		if err := p.advance(); err != nil {
			return canon.Term{}, err
		}
		dtTerm, err := p.namedOrBlank()
		if err != nil {
			return canon.Term{}, err
		}
		if dtTerm.Kind != canon.TermIRI {
			return canon.Term{}, &errs.ParseError{Message: "a datatype must be an IRI", Kind: errs.UnexpectedToken}
		}
		datatype = strPtr(dtTerm.IRI.String())
	}
	lit, err := common.ParseLiteral(lexical, datatype, lang)
	if err != nil {
		return canon.Term{}, err
	}
	return canon.LiteralTerm(lit), nil
}

func strPtr(s string) *string { return &s }

// Load parses src as Turtle and lifts every recognized OWL-in-RDF
// construct into o, returning any parse errors accumulated under mode
// followed by any lift errors; the result is nil when there are none.
func Load(o *ontology.Ontology, src, baseIRI string, mode common.RecoveryMode) []error {
	p := NewParser(src, baseIRI, mode)
	triples, parseErrs := p.Parse()
	var out []error
	for _, e := range parseErrs {
		out = append(out, e)
	}
	out = append(out, common.LiftTriples(o, triples)...)
	return out
}
