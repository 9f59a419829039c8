package functional

import (
	"github.com/provchain-labs/owl2reasoner/internal/axiom"
	"github.com/provchain-labs/owl2reasoner/internal/entity"
	"github.com/provchain-labs/owl2reasoner/internal/errs"
	"github.com/provchain-labs/owl2reasoner/internal/iri"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
)

// assembleAxiom interprets e as a top-level axiom, dispatching on its
// function name. A nil, nil result means e was a declaration-only form
// whose effect was already applied directly (none currently), never used
// — every recognized axiom name returns a non-nil axiom or an error.
func (p *Parser) assembleAxiom(e *expr) (*axiom.Axiom, error) {
	switch e.name {
	case "Declaration":
		return p.assembleDeclaration(e)
	case "SubClassOf":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		sub, err := p.assembleClass(e.args[0])
		if err != nil {
			return nil, err
		}
		super, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.SubClassOfAxiom(sub, super)
		return &ax, nil
	case "EquivalentClasses":
		classes, err := p.assembleClassList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.EquivalentClassesAxiom(classes...)
		return &ax, nil
	case "DisjointClasses":
		classes, err := p.assembleClassList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.DisjointClassesAxiom(classes...)
		return &ax, nil
	case "DisjointUnion":
		if len(e.args) < 2 {
			return nil, p.arityErr(e, 2)
		}
		defined, err := p.assembleClass(e.args[0])
		if err != nil {
			return nil, err
		}
		parts, err := p.assembleClassList(e.args[1:])
		if err != nil {
			return nil, err
		}
		ax := axiom.DisjointUnionAxiom(defined, parts...)
		return &ax, nil
	case "SubObjectPropertyOf":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		if e.args[0].name == "ObjectPropertyChain" {
			chain := make(axiom.PropertyChain, 0, len(e.args[0].args))
			for _, a := range e.args[0].args {
				pe, err := p.assembleProperty(a)
				if err != nil {
					return nil, err
				}
				chain = append(chain, pe)
			}
			super, err := p.assembleProperty(e.args[1])
			if err != nil {
				return nil, err
			}
			ax := axiom.SubPropertyChainAxiom(chain, super)
			return &ax, nil
		}
		sub, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		super, err := p.assembleProperty(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.SubObjectPropertyOfAxiom(sub, super)
		return &ax, nil
	case "EquivalentObjectProperties":
		props, err := p.assemblePropertyList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.EquivalentObjectPropertiesAxiom(props...)
		return &ax, nil
	case "DisjointObjectProperties":
		props, err := p.assemblePropertyList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.DisjointObjectPropertiesAxiom(props...)
		return &ax, nil
	case "InverseObjectProperties":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		a, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		b, err := p.assembleProperty(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.InverseObjectPropertiesAxiom(a, b)
		return &ax, nil
	case "ObjectPropertyDomain":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		dom, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.ObjectPropertyDomainAxiom(prop, dom)
		return &ax, nil
	case "ObjectPropertyRange":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		rng, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.ObjectPropertyRangeAxiom(prop, rng)
		return &ax, nil
	case "DataPropertyDomain":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		dom, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.DataPropertyDomainAxiom(prop, dom)
		return &ax, nil
	case "DataPropertyRange":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		dr, err := p.assembleDataRange(e.args[1])
		if err != nil {
			return nil, err
		}
		ax := axiom.DataPropertyRangeAxiom(prop, dr)
		return &ax, nil
	case "FunctionalObjectProperty", "InverseFunctionalObjectProperty", "TransitiveObjectProperty",
		"SymmetricObjectProperty", "AsymmetricObjectProperty", "ReflexiveObjectProperty", "IrreflexiveObjectProperty":
		if len(e.args) != 1 {
			return nil, p.arityErr(e, 1)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		var ax axiom.Axiom
		switch e.name {
		case "FunctionalObjectProperty":
			ax = axiom.FunctionalObjectPropertyAxiom(prop)
		case "InverseFunctionalObjectProperty":
			ax = axiom.InverseFunctionalObjectPropertyAxiom(prop)
		case "TransitiveObjectProperty":
			ax = axiom.TransitiveObjectPropertyAxiom(prop)
		case "SymmetricObjectProperty":
			ax = axiom.SymmetricObjectPropertyAxiom(prop)
		case "AsymmetricObjectProperty":
			ax = axiom.AsymmetricObjectPropertyAxiom(prop)
		case "ReflexiveObjectProperty":
			ax = axiom.ReflexiveObjectPropertyAxiom(prop)
		case "IrreflexiveObjectProperty":
			ax = axiom.IrreflexiveObjectPropertyAxiom(prop)
		}
		return &ax, nil
	case "FunctionalDataProperty":
		if len(e.args) != 1 {
			return nil, p.arityErr(e, 1)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		ax := axiom.FunctionalDataPropertyAxiom(prop)
		return &ax, nil
	case "ClassAssertion":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		class, err := p.assembleClass(e.args[0])
		if err != nil {
			return nil, err
		}
		ind, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		ax := axiom.ClassAssertionAxiom(ind, class)
		return &ax, nil
	case "ObjectPropertyAssertion", "NegativeObjectPropertyAssertion":
		if len(e.args) != 3 {
			return nil, p.arityErr(e, 3)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		subj, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		obj, err := e.args[2].handle()
		if err != nil {
			return nil, err
		}
		var ax axiom.Axiom
		if e.name == "ObjectPropertyAssertion" {
			ax = axiom.ObjectPropertyAssertionAxiom(subj, prop, obj)
		} else {
			ax = axiom.NegativeObjectPropertyAssertionAxiom(subj, prop, obj)
		}
		return &ax, nil
	case "DataPropertyAssertion", "NegativeDataPropertyAssertion":
		if len(e.args) != 3 {
			return nil, p.arityErr(e, 3)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		subj, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		lit, err := p.assembleLiteral(e.args[2])
		if err != nil {
			return nil, err
		}
		var ax axiom.Axiom
		if e.name == "DataPropertyAssertion" {
			ax = axiom.DataPropertyAssertionAxiom(subj, prop, lit)
		} else {
			ax = axiom.NegativeDataPropertyAssertionAxiom(subj, prop, lit)
		}
		return &ax, nil
	case "SameIndividual":
		inds, err := p.assembleIndividualList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.SameIndividualAxiom(inds...)
		return &ax, nil
	case "DifferentIndividuals":
		inds, err := p.assembleIndividualList(e.args)
		if err != nil {
			return nil, err
		}
		ax := axiom.DifferentIndividualsAxiom(inds...)
		return &ax, nil
	case "AnnotationAssertion":
		if len(e.args) != 3 {
			return nil, p.arityErr(e, 3)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		subj, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		value := e.args[2].iriText
		if e.args[2].literal != nil {
			value = e.args[2].literal.lexical
		}
		ax := axiom.AnnotationAssertionAxiom(subj, prop, value)
		return &ax, nil
	default:
		return nil, &errs.ParseError{Message: "unrecognized axiom constructor " + e.name, Kind: errs.UnexpectedToken}
	}
}

func (p *Parser) assembleDeclaration(e *expr) (*axiom.Axiom, error) {
	if len(e.args) != 1 || e.args[0].name == "" {
		return nil, &errs.ParseError{Message: "Declaration(...) expects a single typed entity", Kind: errs.UnexpectedToken}
	}
	entityExpr := e.args[0]
	if len(entityExpr.args) != 1 {
		return nil, p.arityErr(entityExpr, 1)
	}
	h, err := entityExpr.args[0].handle()
	if err != nil {
		return nil, err
	}
	var ax axiom.Axiom
	switch entityExpr.name {
	case "Class":
		ax = axiom.ClassDeclarationAxiom(h)
	case "ObjectProperty":
		ax = axiom.ObjectPropertyDeclarationAxiom(h)
	case "DataProperty":
		ax = axiom.DataPropertyDeclarationAxiom(h)
	case "AnnotationProperty":
		ax = axiom.AnnotationPropertyDeclarationAxiom(h)
	case "NamedIndividual":
		ax = axiom.NamedIndividualDeclarationAxiom(h)
	default:
		return nil, &errs.ParseError{Message: "unrecognized declared entity kind " + entityExpr.name, Kind: errs.UnexpectedToken}
	}
	return &ax, nil
}

func (p *Parser) arityErr(e *expr, want int) error {
	return &errs.ParseError{Message: "wrong argument count for " + e.name, Kind: errs.IncompleteExpression}
}

// assembleClass interprets e as a class expression.
func (p *Parser) assembleClass(e *expr) (*axiom.ClassExpression, error) {
	if e.isIRI {
		h, err := e.handle()
		if err != nil {
			return nil, err
		}
		return axiom.Class(h), nil
	}
	switch e.name {
	case "ObjectIntersectionOf":
		operands, err := p.assembleClassList(e.args)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectIntersectionOf(operands...), nil
	case "ObjectUnionOf":
		operands, err := p.assembleClassList(e.args)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectUnionOf(operands...), nil
	case "ObjectComplementOf":
		if len(e.args) != 1 {
			return nil, p.arityErr(e, 1)
		}
		inner, err := p.assembleClass(e.args[0])
		if err != nil {
			return nil, err
		}
		return axiom.ObjectComplementOf(inner), nil
	case "ObjectOneOf":
		inds, err := p.assembleIndividualList(e.args)
		if err != nil {
			return nil, err
		}
		return axiom.ObjectOneOf(inds...), nil
	case "ObjectSomeValuesFrom":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		filler, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		return axiom.ObjectSomeValuesFrom(prop, filler), nil
	case "ObjectAllValuesFrom":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		filler, err := p.assembleClass(e.args[1])
		if err != nil {
			return nil, err
		}
		return axiom.ObjectAllValuesFrom(prop, filler), nil
	case "ObjectHasValue":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		ind, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		return axiom.ObjectHasValue(prop, ind), nil
	case "ObjectHasSelf":
		if len(e.args) != 1 {
			return nil, p.arityErr(e, 1)
		}
		prop, err := p.assembleProperty(e.args[0])
		if err != nil {
			return nil, err
		}
		return axiom.ObjectHasSelf(prop), nil
	case "ObjectMinCardinality", "ObjectMaxCardinality", "ObjectExactCardinality":
		if len(e.args) < 2 || len(e.args) > 3 {
			return nil, p.arityErr(e, 2)
		}
		if !e.args[0].isInt {
			return nil, &errs.ParseError{Message: "expected a cardinality integer", Kind: errs.InvalidCardinality}
		}
		prop, err := p.assembleProperty(e.args[1])
		if err != nil {
			return nil, err
		}
		filler := axiom.Thing()
		if len(e.args) == 3 {
			filler, err = p.assembleClass(e.args[2])
			if err != nil {
				return nil, err
			}
		}
		switch e.name {
		case "ObjectMinCardinality":
			return axiom.ObjectMinCardinality(e.args[0].integer, prop, filler), nil
		case "ObjectMaxCardinality":
			return axiom.ObjectMaxCardinality(e.args[0].integer, prop, filler), nil
		default:
			return axiom.ObjectExactCardinality(e.args[0].integer, prop, filler), nil
		}
	case "DataSomeValuesFrom", "DataAllValuesFrom":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		dr, err := p.assembleDataRange(e.args[1])
		if err != nil {
			return nil, err
		}
		if e.name == "DataSomeValuesFrom" {
			return axiom.DataSomeValuesFrom(prop, dr), nil
		}
		return axiom.DataAllValuesFrom(prop, dr), nil
	case "DataHasValue":
		if len(e.args) != 2 {
			return nil, p.arityErr(e, 2)
		}
		prop, err := e.args[0].handle()
		if err != nil {
			return nil, err
		}
		lit, err := p.assembleLiteral(e.args[1])
		if err != nil {
			return nil, err
		}
		return axiom.DataHasValue(prop, lit), nil
	case "DataMinCardinality", "DataMaxCardinality", "DataExactCardinality":
		if len(e.args) < 2 || len(e.args) > 3 {
			return nil, p.arityErr(e, 2)
		}
		if !e.args[0].isInt {
			return nil, &errs.ParseError{Message: "expected a cardinality integer", Kind: errs.InvalidCardinality}
		}
		prop, err := e.args[1].handle()
		if err != nil {
			return nil, err
		}
		var dr *axiom.DataRange
		if len(e.args) == 3 {
			dr, err = p.assembleDataRange(e.args[2])
			if err != nil {
				return nil, err
			}
		}
		switch e.name {
		case "DataMinCardinality":
			return axiom.DataMinCardinality(e.args[0].integer, prop, dr), nil
		case "DataMaxCardinality":
			return axiom.DataMaxCardinality(e.args[0].integer, prop, dr), nil
		default:
			return axiom.DataExactCardinality(e.args[0].integer, prop, dr), nil
		}
	default:
		return nil, &errs.ParseError{Message: "unrecognized class expression " + e.name, Kind: errs.ExpectedClassExpression}
	}
}

func (p *Parser) assembleClassList(exprs []*expr) ([]*axiom.ClassExpression, error) {
	out := make([]*axiom.ClassExpression, 0, len(exprs))
	for _, a := range exprs {
		c, err := p.assembleClass(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (p *Parser) assembleProperty(e *expr) (axiom.PropertyExpression, error) {
	if e.name == "ObjectInverseOf" {
		if len(e.args) != 1 {
			return axiom.PropertyExpression{}, p.arityErr(e, 1)
		}
		inner, err := p.assembleProperty(e.args[0])
		if err != nil {
			return axiom.PropertyExpression{}, err
		}
		return axiom.ObjectInverseOf(inner), nil
	}
	h, err := e.handle()
	if err != nil {
		return axiom.PropertyExpression{}, err
	}
	return axiom.ObjectProperty(h), nil
}

func (p *Parser) assemblePropertyList(exprs []*expr) ([]axiom.PropertyExpression, error) {
	out := make([]axiom.PropertyExpression, 0, len(exprs))
	for _, a := range exprs {
		pe, err := p.assembleProperty(a)
		if err != nil {
			return nil, err
		}
		out = append(out, pe)
	}
	return out, nil
}

func (p *Parser) assembleIndividualList(exprs []*expr) ([]iri.Handle, error) {
	out := make([]iri.Handle, 0, len(exprs))
	for _, a := range exprs {
		h, err := a.handle()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (p *Parser) assembleDataRange(e *expr) (*axiom.DataRange, error) {
	if e.isIRI {
		h, err := e.handle()
		if err != nil {
			return nil, err
		}
		return &axiom.DataRange{Datatype: h}, nil
	}
	if e.name == "DataOneOf" {
		lits := make([]entity.Literal, 0, len(e.args))
		for _, a := range e.args {
			lit, err := p.assembleLiteral(a)
			if err != nil {
				return nil, err
			}
			lits = append(lits, lit)
		}
		return &axiom.DataRange{OneOf: lits}, nil
	}
	return nil, &errs.ParseError{Message: "unrecognized data range " + e.name, Kind: errs.ExpectedClassExpression}
}

func (p *Parser) assembleLiteral(e *expr) (entity.Literal, error) {
	if e.literal == nil {
		return entity.Literal{}, &errs.ParseError{Message: "expected a literal", Kind: errs.UnexpectedToken}
	}
	var dt *string
	if e.literal.datatype != "" {
		dt = &e.literal.datatype
	}
	var lang *string
	if e.literal.language != "" {
		lang = &e.literal.language
	}
	return common.ParseLiteral(e.literal.lexical, dt, lang)
}
