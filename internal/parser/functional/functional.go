package functional

import (
	"fmt"

	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// expr is a generic S-expression node: either `Name(args...)`, a bare IRI/
// prefixed-name reference, an integer, or a literal. Parsing happens in
// two passes: readExpr builds this untyped tree, then assembleAxiom
// interprets each node against the positional grammar its function name
// implies (spec.md §4.3's "direct recursive-descent... producing axioms
// directly").
type expr struct {
	name    string // function name, e.g. "SubClassOf"; empty for leaves
	args    []*expr
	iriText string // resolved, already-expanded absolute IRI text
	isIRI   bool
	integer int
	isInt   bool
	literal *litExpr
}

type litExpr struct {
	lexical  string
	datatype string
	language string
}

// Parser reads OWL Functional Syntax source.
type Parser struct {
	lex      *lexer
	cur      token
	prefixes *common.Prefixes
	sink     *common.ErrorSink
}

func NewParser(src, baseIRI string, mode common.RecoveryMode) *Parser {
	return &Parser{lex: newLexer(src), prefixes: common.NewPrefixes(baseIRI), sink: common.NewErrorSink(mode)}
}

func (p *Parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) parseErrorf(format string, args ...interface{}) *errs.ParseError {
	return &errs.ParseError{Message: fmt.Sprintf(format, args...), Kind: errs.UnexpectedToken, Line: p.cur.line, Column: p.cur.column}
}

// Load parses src and adds every axiom it denotes to o, returning both
// structured parse errors and lift-time errors (undefined prefixes,
// malformed IRIs) together.
func Load(o *ontology.Ontology, src, baseIRI string, mode common.RecoveryMode) []error {
	p := NewParser(src, baseIRI, mode)
	var out []error
	if err := p.advance(); err != nil {
		return append(out, err)
	}
	for p.cur.kind != tokEOF {
		e, err := p.readExpr()
		if err != nil {
			if pe, ok := err.(*errs.ParseError); ok {
				if !p.sink.Report(pe) {
					break
				}
			}
			out = append(out, err)
			continue
		}
		if e.name == "Prefix" {
			if err := p.applyPrefix(e); err != nil {
				out = append(out, err)
			}
			continue
		}
		if e.name == "Ontology" {
			for _, inner := range e.args {
				if inner.isIRI || inner.name == "Import" {
					continue // ontology IRI / version IRI / Import(...) carry no axiom
				}
				if ax, err := p.assembleAxiom(inner); err != nil {
					out = append(out, err)
				} else if ax != nil {
					if err := o.Add(*ax); err != nil {
						if _, dup := err.(*errs.DuplicateAxiom); !dup {
							out = append(out, err)
						}
					}
				}
			}
			continue
		}
		if ax, err := p.assembleAxiom(e); err != nil {
			out = append(out, err)
		} else if ax != nil {
			if err := o.Add(*ax); err != nil {
				if _, dup := err.(*errs.DuplicateAxiom); !dup {
					out = append(out, err)
				}
			}
		}
	}
	return out
}

func (p *Parser) applyPrefix(e *expr) error {
	// Prefix(pre:=<iri>) reaches here as two args: the lexer emits the
	// prefix name with its trailing ":=" attached as a single bareword
	// token (see scanIdentOrPName), and this strips that suffix.
	if len(e.args) != 2 {
		return &errs.ParseError{Message: "Prefix(...) expects a name and an IRI", Kind: errs.UnexpectedToken}
	}
	trimmed := e.args[0].name
	if len(trimmed) >= 2 && trimmed[len(trimmed)-2:] == ":=" {
		trimmed = trimmed[:len(trimmed)-2]
	}
	if !e.args[1].isIRI {
		return &errs.ParseError{Message: "Prefix(...) second argument must be an IRI", Kind: errs.UnexpectedToken}
	}
	p.prefixes.Add(trimmed, e.args[1].iriText)
	return nil
}

// readExpr parses one `Name(args...)` form, a PNAME/IRI leaf, a string
// literal (optionally followed by ^^datatype or @lang), or an integer.
func (p *Parser) readExpr() (*expr, error) {
	switch p.cur.kind {
	case tokIRIRef:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &expr{iriText: text, isIRI: true}, nil
	case tokPName:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		expanded, err := p.prefixes.Expand(text)
		if err != nil {
			return nil, err
		}
		return &expr{iriText: expanded, isIRI: true}, nil
	case tokInteger:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		n := 0
		neg := false
		for i, c := range text {
			if i == 0 && (c == '+' || c == '-') {
				neg = c == '-'
				continue
			}
			n = n*10 + int(c-'0')
		}
		if neg {
			n = -n
		}
		return &expr{integer: n, isInt: true}, nil
	case tokString:
		lexical := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit := &litExpr{lexical: lexical}
		if p.cur.kind == tokDatatypeMarker {
			if err := p.advance(); err != nil {
				return nil, err
			}
			dtExpr, err := p.readExpr()
			if err != nil {
				return nil, err
			}
			if !dtExpr.isIRI {
				return nil, p.parseErrorf("expected an IRI datatype after '^^'")
			}
			lit.datatype = dtExpr.iriText
		} else if p.cur.kind == tokLangTag {
			lit.language = p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return &expr{literal: lit}, nil
	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokLParen {
			// A bareword with no following '(' only ever appears as the
			// name half of Prefix(pre:=<iri>).
			return &expr{name: name}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []*expr
		for p.cur.kind != tokRParen {
			if p.cur.kind == tokEOF {
				return nil, p.parseErrorf("unterminated %s(...): expected ')'", name)
			}
			arg, err := p.readExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &expr{name: name, args: args}, nil
	default:
		return nil, p.parseErrorf("unexpected token %q", p.cur.text)
	}
}

func (e *expr) handle() (iri.Handle, error) {
	if !e.isIRI {
		return iri.Handle{}, &errs.ParseError{Message: "expected an IRI", Kind: errs.UnexpectedToken}
	}
	return iri.Intern(e.iriText)
}
