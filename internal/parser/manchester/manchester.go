package manchester

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// Parser reads Manchester Syntax frames directly into axiom.Axiom values.
// It keeps no intermediate triple representation, like the functional
// syntax reader, because Manchester's grammar is already entity-centric:
// every frame names its subject entity up front.
type Parser struct {
	lex      *lexer
	cur      token
	prefixes *common.Prefixes
	sink     *common.ErrorSink
	o        *ontology.Ontology
	errs     []error
}

func NewParser(o *ontology.Ontology, src, baseIRI string, mode common.RecoveryMode) *Parser {
	return &Parser{lex: newLexer(src), prefixes: common.NewPrefixes(baseIRI), sink: common.NewErrorSink(mode), o: o}
}

func (p *Parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) parseErrorf(kind errs.ParseErrorKind, format string, args ...interface{}) *errs.ParseError {
	return &errs.ParseError{Message: fmt.Sprintf(format, args...), Kind: kind, Line: p.cur.line, Column: p.cur.column}
}

func (p *Parser) record(err error) {
	if err == nil {
		return
	}
	if _, dup := err.(*errs.DuplicateAxiom); dup {
		return
	}
	p.errs = append(p.errs, err)
}

func (p *Parser) add(ax axiom.Axiom) {
	p.record(p.o.Add(ax))
}

// Load parses Manchester Syntax source, accumulating every recognized
// frame's axioms into o, and returns the combined parse/lift errors.
func Load(o *ontology.Ontology, src, baseIRI string, mode common.RecoveryMode) []error {
	p := NewParser(o, src, baseIRI, mode)
	if err := p.advance(); err != nil {
		return []error{err}
	}
	for p.cur.kind != tokEOF {
		if err := p.frame(); err != nil {
			if pe, ok := err.(*errs.ParseError); ok {
				if !p.sink.Report(pe) {
					break
				}
			}
			p.record(err)
			p.recoverToNextFrame()
		}
	}
	return p.errs
}

var frameKeywords = map[string]bool{
	"Class:": true, "ObjectProperty:": true, "DataProperty:": true,
	"Individual:": true, "Datatype:": true, "AnnotationProperty:": true,
	"Prefix:": true,
}

func (p *Parser) recoverToNextFrame() {
	for p.cur.kind != tokEOF {
		if p.cur.kind == tokIdent && frameKeywords[p.cur.text] {
			return
		}
		if p.advance() != nil {
			return
		}
	}
}

func (p *Parser) expectIdent(text string) error {
	if p.cur.kind != tokIdent || p.cur.text != text {
		return p.parseErrorf(errs.UnexpectedToken, "expected %q, found %q", text, p.cur.text)
	}
	return p.advance()
}

func (p *Parser) frame() error {
	if p.cur.kind != tokIdent {
		return p.parseErrorf(errs.UnexpectedToken, "expected a frame keyword, found %q", p.cur.text)
	}
	switch p.cur.text {
	case "Prefix:":
		return p.prefixDirective()
	case "Class:":
		return p.classFrame()
	case "ObjectProperty:":
		return p.objectPropertyFrame()
	case "DataProperty:":
		return p.dataPropertyFrame()
	case "Individual:":
		return p.individualFrame()
	case "Datatype:":
		return p.datatypeFrame()
	case "AnnotationProperty:":
		return p.annotationPropertyFrame()
	default:
		return p.parseErrorf(errs.UnexpectedToken, "unrecognized frame keyword %q", p.cur.text)
	}
}

// Prefix: pre: <iri>
func (p *Parser) prefixDirective() error {
	if err := p.advance(); err != nil {
		return err
	}
	var name string
	switch p.cur.kind {
	case tokColon:
		name = ""
	case tokIdent, tokPName:
		name = p.cur.text
		for len(name) > 0 && name[len(name)-1] == ':' {
			name = name[:len(name)-1]
		}
	default:
		return p.parseErrorf(errs.UnexpectedToken, "expected a prefix name after 'Prefix:'")
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokIRIRef {
		return p.parseErrorf(errs.UnexpectedToken, "expected an IRI after prefix name")
	}
	p.prefixes.Add(name, p.cur.text)
	return p.advance()
}

func (p *Parser) entityName() (iri.Handle, error) {
	switch p.cur.kind {
	case tokIRIRef:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return iri.Handle{}, err
		}
		return iri.Intern(text)
	case tokPName, tokIdent:
		text := p.cur.text
		expanded, err := p.prefixes.Expand(text)
		if err != nil {
			return iri.Handle{}, err
		}
		if err := p.advance(); err != nil {
			return iri.Handle{}, err
		}
		return iri.Intern(expanded)
	default:
		return iri.Handle{}, p.parseErrorf(errs.UnexpectedToken, "expected an entity name, found %q", p.cur.text)
	}
}

// section reports whether the current token is the named section keyword
// (e.g. "SubClassOf:") and, if so, consumes it.
func (p *Parser) section(name string) (bool, error) {
	if p.cur.kind == tokIdent && p.cur.text == name {
		return true, p.advance()
	}
	return false, nil
}

func (p *Parser) classFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	subject, err := p.entityName()
	if err != nil {
		return err
	}
	p.add(axiom.ClassDeclarationAxiom(subject))
	subjectCE := axiom.Class(subject)
	for {
		if ok, err := p.section("SubClassOf:"); err != nil {
			return err
		} else if ok {
			supers, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, s := range supers {
				p.add(axiom.SubClassOfAxiom(subjectCE, s))
			}
			continue
		}
		if ok, err := p.section("EquivalentTo:"); err != nil {
			return err
		} else if ok {
			eqs, err := p.classExpressionList()
			if err != nil {
				return err
			}
			p.add(axiom.EquivalentClassesAxiom(append([]*axiom.ClassExpression{subjectCE}, eqs...)...))
			continue
		}
		if ok, err := p.section("DisjointWith:"); err != nil {
			return err
		} else if ok {
			dis, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, d := range dis {
				p.add(axiom.DisjointClassesAxiom(subjectCE, d))
			}
			continue
		}
		if ok, err := p.section("DisjointUnionOf:"); err != nil {
			return err
		} else if ok {
			parts, err := p.classExpressionList()
			if err != nil {
				return err
			}
			p.add(axiom.DisjointUnionAxiom(subjectCE, parts...))
			continue
		}
		if ok, err := p.section("Annotations:"); err != nil {
			return err
		} else if ok {
			if err := p.skipAnnotationList(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func (p *Parser) objectPropertyFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	subject, err := p.entityName()
	if err != nil {
		return err
	}
	p.add(axiom.ObjectPropertyDeclarationAxiom(subject))
	pe := axiom.ObjectProperty(subject)
	for {
		if ok, err := p.section("Domain:"); err != nil {
			return err
		} else if ok {
			ces, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, c := range ces {
				p.add(axiom.ObjectPropertyDomainAxiom(pe, c))
			}
			continue
		}
		if ok, err := p.section("Range:"); err != nil {
			return err
		} else if ok {
			ces, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, c := range ces {
				p.add(axiom.ObjectPropertyRangeAxiom(pe, c))
			}
			continue
		}
		if ok, err := p.section("SubPropertyOf:"); err != nil {
			return err
		} else if ok {
			supers, err := p.propertyExpressionList()
			if err != nil {
				return err
			}
			for _, s := range supers {
				p.add(axiom.SubObjectPropertyOfAxiom(pe, s))
			}
			continue
		}
		if ok, err := p.section("EquivalentTo:"); err != nil {
			return err
		} else if ok {
			eqs, err := p.propertyExpressionList()
			if err != nil {
				return err
			}
			p.add(axiom.EquivalentObjectPropertiesAxiom(append([]axiom.PropertyExpression{pe}, eqs...)...))
			continue
		}
		if ok, err := p.section("DisjointWith:"); err != nil {
			return err
		} else if ok {
			dis, err := p.propertyExpressionList()
			if err != nil {
				return err
			}
			p.add(axiom.DisjointObjectPropertiesAxiom(append([]axiom.PropertyExpression{pe}, dis...)...))
			continue
		}
		if ok, err := p.section("InverseOf:"); err != nil {
			return err
		} else if ok {
			invs, err := p.propertyExpressionList()
			if err != nil {
				return err
			}
			for _, inv := range invs {
				p.add(axiom.InverseObjectPropertiesAxiom(pe, inv))
			}
			continue
		}
		if ok, err := p.section("Characteristics:"); err != nil {
			return err
		} else if ok {
			if err := p.characteristicsList(pe); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func (p *Parser) dataPropertyFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	subject, err := p.entityName()
	if err != nil {
		return err
	}
	p.add(axiom.DataPropertyDeclarationAxiom(subject))
	for {
		if ok, err := p.section("Domain:"); err != nil {
			return err
		} else if ok {
			ces, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, c := range ces {
				p.add(axiom.DataPropertyDomainAxiom(subject, c))
			}
			continue
		}
		if ok, err := p.section("Range:"); err != nil {
			return err
		} else if ok {
			drs, err := p.dataRangeList()
			if err != nil {
				return err
			}
			for _, dr := range drs {
				p.add(axiom.DataPropertyRangeAxiom(subject, dr))
			}
			continue
		}
		if ok, err := p.section("Characteristics:"); err != nil {
			return err
		} else if ok {
			if err := p.advance(); err != nil { // consume the single "Functional" token
				return err
			}
			p.add(axiom.FunctionalDataPropertyAxiom(subject))
			for p.cur.kind == tokComma {
				if err := p.advance(); err != nil {
					return err
				}
				if err := p.advance(); err != nil {
					return err
				}
			}
			continue
		}
		break
	}
	return nil
}

func (p *Parser) annotationPropertyFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	subject, err := p.entityName()
	if err != nil {
		return err
	}
	p.add(axiom.AnnotationPropertyDeclarationAxiom(subject))
	return nil
}

func (p *Parser) datatypeFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	_, err := p.entityName()
	return err
}

func (p *Parser) individualFrame() error {
	if err := p.advance(); err != nil {
		return err
	}
	subject, err := p.entityName()
	if err != nil {
		return err
	}
	p.add(axiom.NamedIndividualDeclarationAxiom(subject))
	for {
		if ok, err := p.section("Types:"); err != nil {
			return err
		} else if ok {
			ces, err := p.classExpressionList()
			if err != nil {
				return err
			}
			for _, c := range ces {
				p.add(axiom.ClassAssertionAxiom(subject, c))
			}
			continue
		}
		if ok, err := p.section("Facts:"); err != nil {
			return err
		} else if ok {
			if err := p.factsList(subject); err != nil {
				return err
			}
			continue
		}
		if ok, err := p.section("SameAs:"); err != nil {
			return err
		} else if ok {
			others, err := p.individualList()
			if err != nil {
				return err
			}
			p.add(axiom.SameIndividualAxiom(append([]iri.Handle{subject}, others...)...))
			continue
		}
		if ok, err := p.section("DifferentFrom:"); err != nil {
			return err
		} else if ok {
			others, err := p.individualList()
			if err != nil {
				return err
			}
			p.add(axiom.DifferentIndividualsAxiom(append([]iri.Handle{subject}, others...)...))
			continue
		}
		break
	}
	return nil
}

func (p *Parser) factsList(subject iri.Handle) error {
	for {
		negated := false
		if p.cur.kind == tokIdent && p.cur.text == "not" {
			negated = true
			if err := p.advance(); err != nil {
				return err
			}
		}
		propH, err := p.entityName()
		if err != nil {
			return err
		}
		// A data-property fact carries a literal object; an object-property
		// fact carries an individual name. Both are entity-shaped at the
		// lexer level except for string/number tokens.
		if p.cur.kind == tokString || p.cur.kind == tokInteger {
			lit, err := p.literalValue()
			if err != nil {
				return err
			}
			if negated {
				p.add(axiom.NegativeDataPropertyAssertionAxiom(subject, propH, lit))
			} else {
				p.add(axiom.DataPropertyAssertionAxiom(subject, propH, lit))
			}
		} else {
			obj, err := p.entityName()
			if err != nil {
				return err
			}
			if negated {
				p.add(axiom.NegativeObjectPropertyAssertionAxiom(subject, axiom.ObjectProperty(propH), obj))
			} else {
				p.add(axiom.ObjectPropertyAssertionAxiom(subject, axiom.ObjectProperty(propH), obj))
			}
		}
		if p.cur.kind != tokComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) characteristicsList(pe axiom.PropertyExpression) error {
	for {
		if p.cur.kind != tokIdent {
			return p.parseErrorf(errs.InvalidCardinality, "expected a property characteristic, found %q", p.cur.text)
		}
		switch p.cur.text {
		case "Functional":
			p.add(axiom.FunctionalObjectPropertyAxiom(pe))
		case "InverseFunctional":
			p.add(axiom.InverseFunctionalObjectPropertyAxiom(pe))
		case "Transitive":
			p.add(axiom.TransitiveObjectPropertyAxiom(pe))
		case "Symmetric":
			p.add(axiom.SymmetricObjectPropertyAxiom(pe))
		case "Asymmetric":
			p.add(axiom.AsymmetricObjectPropertyAxiom(pe))
		case "Reflexive":
			p.add(axiom.ReflexiveObjectPropertyAxiom(pe))
		case "Irreflexive":
			p.add(axiom.IrreflexiveObjectPropertyAxiom(pe))
		default:
			return p.parseErrorf(errs.InvalidCardinality, "unknown property characteristic %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.kind != tokComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *Parser) skipAnnotationList() error {
	depth := 0
	for {
		switch p.cur.kind {
		case tokEOF:
			return nil
		case tokLParen:
			depth++
		case tokRParen:
			if depth == 0 {
				return nil
			}
			depth--
		case tokIdent:
			if depth == 0 && frameKeywords[p.cur.text] {
				return nil
			}
			if depth == 0 && isSectionKeyword(p.cur.text) {
				return nil
			}
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func isSectionKeyword(text string) bool {
	switch text {
	case "SubClassOf:", "EquivalentTo:", "DisjointWith:", "DisjointUnionOf:",
		"Domain:", "Range:", "SubPropertyOf:", "InverseOf:", "Characteristics:",
		"Types:", "Facts:", "SameAs:", "DifferentFrom:", "Annotations:":
		return true
	}
	return false
}

func (p *Parser) individualList() ([]iri.Handle, error) {
	var out []iri.Handle
	for {
		h, err := p.entityName()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
		if p.cur.kind != tokComma {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) propertyExpressionList() ([]axiom.PropertyExpression, error) {
	var out []axiom.PropertyExpression
	for {
		pe, err := p.propertyExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, pe)
		if p.cur.kind != tokComma {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) propertyExpression() (axiom.PropertyExpression, error) {
	if p.cur.kind == tokIdent && p.cur.text == "inverse" {
		if err := p.advance(); err != nil {
			return axiom.PropertyExpression{}, err
		}
		inner, err := p.propertyExpression()
		if err != nil {
			return axiom.PropertyExpression{}, err
		}
		return axiom.ObjectInverseOf(inner), nil
	}
	h, err := p.entityName()
	if err != nil {
		return axiom.PropertyExpression{}, err
	}
	return axiom.ObjectProperty(h), nil
}

func (p *Parser) dataRangeList() ([]*axiom.DataRange, error) {
	var out []*axiom.DataRange
	for {
		h, err := p.entityName()
		if err != nil {
			return nil, err
		}
		out = append(out, &axiom.DataRange{Datatype: h})
		if p.cur.kind != tokComma {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// classExpressionList parses a comma-separated list of full class
// expressions, used by SubClassOf:/EquivalentTo:/DisjointWith:/Types:.
func (p *Parser) classExpressionList() ([]*axiom.ClassExpression, error) {
	var out []*axiom.ClassExpression
	for {
		ce, err := p.classOr()
		if err != nil {
			return nil, err
		}
		out = append(out, ce)
		if p.cur.kind != tokComma {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// Manchester class-expression precedence: 'or' binds loosest, then 'and',
// then 'not'/restrictions/atomics. classOr/classAnd/classUnary mirror that.
func (p *Parser) classOr() (*axiom.ClassExpression, error) {
	left, err := p.classAnd()
	if err != nil {
		return nil, err
	}
	operands := []*axiom.ClassExpression{left}
	for p.cur.kind == tokIdent && p.cur.text == "or" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.classAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return axiom.ObjectUnionOf(operands...), nil
}

func (p *Parser) classAnd() (*axiom.ClassExpression, error) {
	left, err := p.classUnary()
	if err != nil {
		return nil, err
	}
	operands := []*axiom.ClassExpression{left}
	for p.cur.kind == tokIdent && p.cur.text == "and" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.classUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return axiom.ObjectIntersectionOf(operands...), nil
}

func (p *Parser) classUnary() (*axiom.ClassExpression, error) {
	if p.cur.kind == tokIdent && p.cur.text == "not" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.classUnary()
		if err != nil {
			return nil, err
		}
		return axiom.ObjectComplementOf(inner), nil
	}
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.classOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, p.parseErrorf(errs.ExpectedClassExpression, "expected ')'")
		}
		return inner, p.advance()
	}
	if p.cur.kind == tokLBrace {
		return p.nominalSet()
	}
	return p.restrictionOrAtomic()
}

func (p *Parser) nominalSet() (*axiom.ClassExpression, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var members []iri.Handle
	for p.cur.kind != tokRBrace {
		h, err := p.entityName()
		if err != nil {
			return nil, err
		}
		members = append(members, h)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return axiom.ObjectOneOf(members...), nil
}

// restrictionOrAtomic reads either a bare class name or a property
// restriction `propertyExpression ('some'|'only'|'value'|'Self'|'min'|'max'|
// 'exactly') ...`. A leading entity name is ambiguous between the two until
// the token after it is examined.
func (p *Parser) restrictionOrAtomic() (*axiom.ClassExpression, error) {
	pe, err := p.propertyExpression()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokIdent {
		// No restriction keyword followed: this was a plain named class,
		// not a property.
		return axiom.Class(pe.IRI), nil
	}
	switch p.cur.text {
	case "some":
		if err := p.advance(); err != nil {
			return nil, err
		}
		filler, err := p.classUnary()
		if err != nil {
			return nil, err
		}
		return axiom.ObjectSomeValuesFrom(pe, filler), nil
	case "only":
		if err := p.advance(); err != nil {
			return nil, err
		}
		filler, err := p.classUnary()
		if err != nil {
			return nil, err
		}
		return axiom.ObjectAllValuesFrom(pe, filler), nil
	case "value":
		if err := p.advance(); err != nil {
			return nil, err
		}
		ind, err := p.entityName()
		if err != nil {
			return nil, err
		}
		return axiom.ObjectHasValue(pe, ind), nil
	case "Self":
		if err := p.advance(); err != nil {
			return nil, err
		}
		return axiom.ObjectHasSelf(pe), nil
	case "min", "max", "exactly":
		kw := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokInteger {
			return nil, p.parseErrorf(errs.InvalidCardinality, "expected an integer after %q", kw)
		}
		n, err := parseNonNegativeInt(p.cur.text)
		if err != nil {
			return nil, p.parseErrorf(errs.InvalidCardinality, "invalid cardinality %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		filler := axiom.Thing()
		if p.cur.kind == tokIRIRef || p.cur.kind == tokPName || (p.cur.kind == tokIdent && p.cur.text != "and" && p.cur.text != "or" && !isSectionKeyword(p.cur.text)) {
			filler, err = p.classUnary()
			if err != nil {
				return nil, err
			}
		}
		switch kw {
		case "min":
			return axiom.ObjectMinCardinality(n, pe, filler), nil
		case "max":
			return axiom.ObjectMaxCardinality(n, pe, filler), nil
		default:
			return axiom.ObjectExactCardinality(n, pe, filler), nil
		}
	default:
		// Bareword that isn't a restriction keyword: treat the property
		// name itself as a plain class reference.
		return axiom.Class(pe.IRI), nil
	}
}

func parseNonNegativeInt(text string) (int, error) {
	n := 0
	for _, c := range text {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a digit: %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func (p *Parser) literalValue() (entity.Literal, error) {
	if p.cur.kind == tokInteger {
		text := p.cur.text
		if err := p.advance(); err != nil {
			return entity.Literal{}, err
		}
		return common.ParseLiteral(text, strPtr(iri.XsdInteger.String()), nil)
	}
	lexical := p.cur.text
	if err := p.advance(); err != nil {
		return entity.Literal{}, err
	}
	var datatype, language *string
	if p.cur.kind == tokDatatypeMarker {
		if err := p.advance(); err != nil {
			return entity.Literal{}, err
		}
		dt, err := p.entityName()
		if err != nil {
			return entity.Literal{}, err
		}
		s := dt.String()
		datatype = &s
	} else if p.cur.kind == tokLangTag {
		s := p.cur.text
		language = &s
		if err := p.advance(); err != nil {
			return entity.Literal{}, err
		}
	}
	return common.ParseLiteral(lexical, datatype, language)
}

func strPtr(s string) *string { return &s }
