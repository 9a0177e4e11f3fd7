package parser

import (
	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

// parseProjection parses "=>" ( componentValue | "{" namedComponent* "}" ).
//
// The formal grammar in §4.E writes the non-brace alternative as a full
// named "component" (ident "=" ...), but §3's prose and the literal
// scenarios of §8 (e.g. "=> u1") show a bare, unnamed singular projection.
// This parser follows the scenarios: a bare componentValue with no
// "ident =" prefix is a singular projection.
func (p *Parser) parseProjection() (spec.Projection, error) {
	if _, err := p.expect(TokFatArrow); err != nil {
		return spec.Projection{}, err
	}
	if p.at(TokLBrace) {
		components, err := p.parseComponentList()
		if err != nil {
			return spec.Projection{}, err
		}
		return spec.Projection{Composite: true, Components: components}, nil
	}
	val, err := p.parseComponentValue()
	if err != nil {
		return spec.Projection{}, err
	}
	return spec.Projection{Composite: false, Singular: &val}, nil
}

func (p *Parser) parseComponentList() ([]spec.Component, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	var components []spec.Component
	seen := map[string]bool{}
	for !p.at(TokRBrace) {
		c, err := p.parseNamedComponent()
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, fact.NewSpecError(c.Name, "projection component %q is declared more than once", c.Name)
		}
		seen[c.Name] = true
		components = append(components, c)
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return components, nil
}

// parseNamedComponent parses "ident "=" ( matches projection | componentValue )".
func (p *Parser) parseNamedComponent() (spec.Component, error) {
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return spec.Component{}, err
	}
	if _, err := p.expect(TokEquals); err != nil {
		return spec.Component{}, err
	}

	if p.at(TokLBrace) {
		nested, err := p.parseMatches()
		if err != nil {
			return spec.Component{}, err
		}
		var nestedProj spec.Projection
		if p.at(TokFatArrow) {
			nestedProj, err = p.parseProjection()
			if err != nil {
				return spec.Component{}, err
			}
		}
		return spec.Component{
			Name: nameTok.Text,
			Value: spec.ComponentValue{
				Kind:   spec.ComponentNested,
				Nested: &spec.NestedSpecification{Matches: nested, Projection: nestedProj},
			},
		}, nil
	}

	val, err := p.parseComponentValue()
	if err != nil {
		return spec.Component{}, err
	}
	return spec.Component{Name: nameTok.Text, Value: val}, nil
}

// parseComponentValue parses "#" ident | ident ("." ident)?.
func (p *Parser) parseComponentValue() (spec.ComponentValue, error) {
	if p.at(TokHash) {
		p.advance()
		labelTok, err := p.expect(TokIdent)
		if err != nil {
			return spec.ComponentValue{}, err
		}
		if err := p.requireLabelInScope(labelTok); err != nil {
			return spec.ComponentValue{}, err
		}
		return spec.ComponentValue{Kind: spec.ComponentHash, Label: labelTok.Text}, nil
	}

	labelTok, err := p.expect(TokIdent)
	if err != nil {
		return spec.ComponentValue{}, err
	}
	if err := p.requireLabelInScope(labelTok); err != nil {
		return spec.ComponentValue{}, err
	}
	if p.at(TokDot) {
		p.advance()
		fieldTok, err := p.expect(TokIdent)
		if err != nil {
			return spec.ComponentValue{}, err
		}
		return spec.ComponentValue{Kind: spec.ComponentField, Label: labelTok.Text, FieldName: fieldTok.Text}, nil
	}
	return spec.ComponentValue{Kind: spec.ComponentFact, Label: labelTok.Text}, nil
}

func (p *Parser) requireLabelInScope(tok Token) error {
	if _, ok := p.labels[tok.Text]; !ok {
		return fact.NewUndefinedNameError(tok.Text, p.labelNames(), "projection references undefined label %q", tok.Text)
	}
	return nil
}
