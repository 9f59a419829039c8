package query

import (
	"fmt"
	"strings"

	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// ParseSelect reads a SPARQL-like "SELECT ... WHERE { ... }" query
// string and lowers it to the QueryPattern algebra, per spec.md §4.5:
// "IRIs appear as <...>, literals as "...", variables begin with ?".
// prefixes resolves any bare/prefixed names appearing in the triple
// block; pass common.NewPrefixes("") for a query written entirely in
// <full IRI> and "literal" form.
func ParseSelect(src string, prefixes *common.Prefixes) (*QueryPattern, []string, error) {
	p := &surfaceParser{lex: newSurfaceLexer(src), prefixes: prefixes}
	if err := p.advance(); err != nil {
		return nil, nil, err
	}
	vars, distinct, reduced, err := p.selectClause()
	if err != nil {
		return nil, nil, err
	}
	if err := p.expectKeyword("WHERE"); err != nil {
		return nil, nil, err
	}
	pattern, err := p.groupGraphPattern()
	if err != nil {
		return nil, nil, err
	}
	if distinct {
		pattern = Distinct(pattern)
	} else if reduced {
		pattern = Reduced(pattern)
	}
	if p.cur.kind != surfaceEOF {
		return nil, nil, p.errorf("unexpected trailing input %q", p.cur.text)
	}
	return pattern, vars, nil
}

// --- lexer -----------------------------------------------------------

type surfaceTokKind int

const (
	surfaceEOF surfaceTokKind = iota
	surfaceVar
	surfaceIRIRef
	surfaceString
	surfacePName
	surfaceIdent
	surfaceDot
	surfaceLBrace
	surfaceRBrace
	surfaceLParen
	surfaceRParen
	surfaceEq
	surfaceNotEq
)

type surfaceTok struct {
	kind surfaceTokKind
	text string
}

type surfaceLexer struct {
	src string
	pos int
}

func newSurfaceLexer(src string) *surfaceLexer { return &surfaceLexer{src: src} }

func (l *surfaceLexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' || c == '.' || c == ':'
}

func (l *surfaceLexer) next() (surfaceTok, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return surfaceTok{kind: surfaceEOF}, nil
	}
	c := l.src[l.pos]
	switch c {
	case '.':
		l.pos++
		return surfaceTok{kind: surfaceDot, text: "."}, nil
	case '{':
		l.pos++
		return surfaceTok{kind: surfaceLBrace, text: "{"}, nil
	case '}':
		l.pos++
		return surfaceTok{kind: surfaceRBrace, text: "}"}, nil
	case '(':
		l.pos++
		return surfaceTok{kind: surfaceLParen, text: "("}, nil
	case ')':
		l.pos++
		return surfaceTok{kind: surfaceRParen, text: ")"}, nil
	case '=':
		l.pos++
		return surfaceTok{kind: surfaceEq, text: "="}, nil
	case '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return surfaceTok{kind: surfaceNotEq, text: "!="}, nil
		}
		return surfaceTok{}, &errs.ParseError{Message: "unexpected '!'", Kind: errs.UnexpectedToken}
	case '*':
		l.pos++
		return surfaceTok{kind: surfaceIdent, text: "*"}, nil
	case '?':
		start := l.pos
		l.pos++
		for l.pos < len(l.src) && isNameChar(l.src[l.pos]) && l.src[l.pos] != ':' {
			l.pos++
		}
		return surfaceTok{kind: surfaceVar, text: l.src[start+1 : l.pos]}, nil
	case '<':
		end := strings.IndexByte(l.src[l.pos:], '>')
		if end < 0 {
			return surfaceTok{}, &errs.ParseError{Message: "unterminated IRI reference", Kind: errs.UnexpectedToken}
		}
		text := l.src[l.pos+1 : l.pos+end]
		l.pos += end + 1
		return surfaceTok{kind: surfaceIRIRef, text: text}, nil
	case '"':
		l.pos++
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return surfaceTok{}, &errs.ParseError{Message: "unterminated string literal", Kind: errs.UnexpectedToken}
		}
		text := l.src[start:l.pos]
		l.pos++
		return surfaceTok{kind: surfaceString, text: text}, nil
	default:
		if isNameChar(c) {
			start := l.pos
			for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
				l.pos++
			}
			text := l.src[start:l.pos]
			if strings.ContainsRune(text, ':') {
				return surfaceTok{kind: surfacePName, text: text}, nil
			}
			return surfaceTok{kind: surfaceIdent, text: text}, nil
		}
		return surfaceTok{}, &errs.ParseError{Message: "unexpected character " + string(c), Kind: errs.UnexpectedToken}
	}
}

// --- parser ------------------------------------------------------------

type surfaceParser struct {
	lex      *surfaceLexer
	cur      surfaceTok
	prefixes *common.Prefixes
}

func (p *surfaceParser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *surfaceParser) errorf(format string, args ...interface{}) error {
	return &errs.ParseError{Message: fmt.Sprintf(format, args...), Kind: errs.UnexpectedToken}
}

func (p *surfaceParser) expectKeyword(kw string) error {
	if p.cur.kind != surfaceIdent || !strings.EqualFold(p.cur.text, kw) {
		return p.errorf("expected %q, got %q", kw, p.cur.text)
	}
	return p.advance()
}

func (p *surfaceParser) atKeyword(kw string) bool {
	return p.cur.kind == surfaceIdent && strings.EqualFold(p.cur.text, kw)
}

func (p *surfaceParser) selectClause() (vars []string, distinct, reduced bool, err error) {
	if err = p.expectKeyword("SELECT"); err != nil {
		return nil, false, false, err
	}
	if p.atKeyword("DISTINCT") {
		distinct = true
		if err = p.advance(); err != nil {
			return nil, false, false, err
		}
	} else if p.atKeyword("REDUCED") {
		reduced = true
		if err = p.advance(); err != nil {
			return nil, false, false, err
		}
	}
	if p.cur.kind == surfaceIdent && p.cur.text == "*" {
		if err = p.advance(); err != nil {
			return nil, false, false, err
		}
		return nil, distinct, reduced, nil
	}
	for p.cur.kind == surfaceVar {
		vars = append(vars, p.cur.text)
		if err = p.advance(); err != nil {
			return nil, false, false, err
		}
	}
	return vars, distinct, reduced, nil
}

// groupGraphPattern parses `{ ... }`: a leading run of plain triples
// becomes one BasicGraphPattern, then any OPTIONAL/UNION/FILTER clauses
// fold left-to-right around it.
func (p *surfaceParser) groupGraphPattern() (*QueryPattern, error) {
	if p.cur.kind != surfaceLBrace {
		return nil, p.errorf("expected '{', got %q", p.cur.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	// acc starts as the block's leading run of plain triples (there is no
	// general Join(pattern,pattern) node in this algebra — only a BGP's
	// own triple list joins naturally — so every plain triple in a block
	// must appear before its first OPTIONAL/UNION/FILTER clause).
	var triples []TriplePattern
	for p.cur.kind != surfaceRBrace && !p.atKeyword("OPTIONAL") && !p.atKeyword("UNION") && !p.atKeyword("FILTER") {
		if p.cur.kind == surfaceDot {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		t, err := p.triple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	acc := BasicGraphPattern(triples...)

	for p.cur.kind != surfaceRBrace {
		switch {
		case p.atKeyword("OPTIONAL"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			inner, err := p.groupGraphPattern()
			if err != nil {
				return nil, err
			}
			acc = Optional(acc, inner)
		case p.atKeyword("UNION"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.groupGraphPattern()
			if err != nil {
				return nil, err
			}
			acc = Union(acc, right)
		case p.atKeyword("FILTER"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.filterExpr()
			if err != nil {
				return nil, err
			}
			acc = Filter(acc, expr)
		case p.cur.kind == surfaceDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, &errs.UnsupportedConstruct{Construct: "a plain triple after an OPTIONAL/UNION/FILTER clause in the same block (reorder triples before the clause)"}
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return acc, nil
}

func (p *surfaceParser) triple() (TriplePattern, error) {
	s, err := p.term()
	if err != nil {
		return TriplePattern{}, err
	}
	pr, err := p.term()
	if err != nil {
		return TriplePattern{}, err
	}
	o, err := p.term()
	if err != nil {
		return TriplePattern{}, err
	}
	return NewTriplePattern(s, pr, o), nil
}

func (p *surfaceParser) term() (PatternTerm, error) {
	switch p.cur.kind {
	case surfaceVar:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return PatternTerm{}, err
		}
		return Var(name), nil
	case surfaceIRIRef:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return PatternTerm{}, err
		}
		h, err := iri.Intern(text)
		if err != nil {
			return PatternTerm{}, &errs.IriParseError{Iri: text, Context: err.Error()}
		}
		return IRITerm(h), nil
	case surfacePName, surfaceIdent:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return PatternTerm{}, err
		}
		expanded, err := p.prefixes.Expand(text)
		if err != nil {
			return PatternTerm{}, err
		}
		h, err := iri.Intern(expanded)
		if err != nil {
			return PatternTerm{}, &errs.IriParseError{Iri: expanded, Context: err.Error()}
		}
		return IRITerm(h), nil
	case surfaceString:
		lexical := p.cur.text
		if err := p.advance(); err != nil {
			return PatternTerm{}, err
		}
		lit, err := entity.NewLiteral(lexical, iri.XsdString, "")
		if err != nil {
			return PatternTerm{}, err
		}
		return LitTerm(lit), nil
	default:
		return PatternTerm{}, p.errorf("expected a term, got %q", p.cur.text)
	}
}

func (p *surfaceParser) filterExpr() (FilterExpression, error) {
	if p.cur.kind != surfaceLParen {
		return FilterExpression{}, p.errorf("expected '(' after FILTER")
	}
	if err := p.advance(); err != nil {
		return FilterExpression{}, err
	}
	if p.atKeyword("BOUND") {
		if err := p.advance(); err != nil {
			return FilterExpression{}, err
		}
		if p.cur.kind != surfaceLParen {
			return FilterExpression{}, p.errorf("expected '(' after BOUND")
		}
		if err := p.advance(); err != nil {
			return FilterExpression{}, err
		}
		if p.cur.kind != surfaceVar {
			return FilterExpression{}, p.errorf("expected a variable inside BOUND(...)")
		}
		v := p.cur.text
		if err := p.advance(); err != nil {
			return FilterExpression{}, err
		}
		if p.cur.kind != surfaceRParen {
			return FilterExpression{}, p.errorf("expected ')'")
		}
		if err := p.advance(); err != nil {
			return FilterExpression{}, err
		}
		if p.cur.kind != surfaceRParen {
			return FilterExpression{}, p.errorf("expected ')'")
		}
		return IsBound(v), p.advance()
	}

	left, err := p.term()
	if err != nil {
		return FilterExpression{}, err
	}
	var negate bool
	switch p.cur.kind {
	case surfaceEq:
		negate = false
	case surfaceNotEq:
		negate = true
	default:
		return FilterExpression{}, p.errorf("expected '=' or '!=' in FILTER expression")
	}
	if err := p.advance(); err != nil {
		return FilterExpression{}, err
	}
	right, err := p.term()
	if err != nil {
		return FilterExpression{}, err
	}
	if p.cur.kind != surfaceRParen {
		return FilterExpression{}, p.errorf("expected ')'")
	}
	if err := p.advance(); err != nil {
		return FilterExpression{}, err
	}
	if negate {
		return TermsNotEqual(left, right), nil
	}
	return TermsEqual(left, right), nil
}
