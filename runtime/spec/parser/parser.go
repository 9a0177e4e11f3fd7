// Package parser implements the descriptive-string DSL of §4.E / §6.1: a
// hand-written recursive-descent parser over a hand-written lexer,
// producing a runtime/spec.Specification and validating the structural
// rules of §4.E while it does so. Grounded on opal/runtime/parser's
// recursive-descent style and opal/runtime/parser/errors.go's error
// reporting shape.
package parser

import (
	"strings"

	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
	"github.com/chronofact/fact/runtime/spec/connectivity"
)

// Parser holds the token stream and the cursor over it, plus the label
// registry used to enforce §4.E's uniqueness and scope rules.
type Parser struct {
	tokens []Token
	pos    int
	labels map[string]spec.Label
}

// Parse parses descriptive-string source into a validated Specification.
// Runs the connectivity check (§4.G) as the final validation step.
func Parse(src string) (spec.Specification, error) {
	lx := NewLexer(src)
	tokens, err := lx.Tokens()
	if err != nil {
		return spec.Specification{}, err
	}
	p := &Parser{tokens: tokens, labels: map[string]spec.Label{}}
	s, err := p.parseSpecification()
	if err != nil {
		return spec.Specification{}, err
	}
	if err := connectivity.Validate(s); err != nil {
		return spec.Specification{}, err
	}
	return s, nil
}

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) at(t TokenType) bool { return p.peek().Type == t }

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return Token{}, fact.NewSyntaxError(tok.Offset, "expected %s, found %s %q", t, tok.Type, tok.Text)
	}
	return p.advance(), nil
}

func (p *Parser) parseSpecification() (spec.Specification, error) {
	givens, err := p.parseGivens()
	if err != nil {
		return spec.Specification{}, err
	}
	if len(givens) == 0 {
		return spec.Specification{}, fact.NewError(fact.InvalidSpecification, "a specification must declare at least one given")
	}

	matches, err := p.parseMatches()
	if err != nil {
		return spec.Specification{}, err
	}

	var proj spec.Projection
	if p.at(TokFatArrow) {
		proj, err = p.parseProjection()
		if err != nil {
			return spec.Specification{}, err
		}
	}

	if _, err := p.expect(TokEOF); err != nil {
		return spec.Specification{}, err
	}

	return spec.Specification{Given: givens, Matches: matches, Projection: proj}, nil
}

// parseGivens parses "(" label ("," label)* ")" and enforces given-name
// uniqueness (§4.E rule 1).
func (p *Parser) parseGivens() ([]spec.Given, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	var givens []spec.Given
	seen := map[string]bool{}
	for {
		label, conds, err := p.parseLabelWithConditions()
		if err != nil {
			return nil, err
		}
		if seen[label.Name] {
			return nil, fact.NewSpecError(label.Name, "given name %q is declared more than once", label.Name)
		}
		seen[label.Name] = true
		if err := p.registerLabel(label); err != nil {
			return nil, err
		}
		givens = append(givens, spec.Given{Label: label, Conditions: conds})

		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return givens, nil
}

// labelNames returns every label currently in scope, for fuzzy-matching an
// undefined reference against.
func (p *Parser) labelNames() []string {
	names := make([]string, 0, len(p.labels))
	for name := range p.labels {
		names = append(names, name)
	}
	return names
}

func (p *Parser) registerLabel(l spec.Label) error {
	if existing, ok := p.labels[l.Name]; ok {
		return fact.NewSpecError(l.Name, "label %q is already declared with type %q", l.Name, existing.Type)
	}
	p.labels[l.Name] = l
	return nil
}

// parseLabelWithConditions parses "ident : type ( "[" condition+ "]" )?".
func (p *Parser) parseLabelWithConditions() (spec.Label, []spec.Condition, error) {
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return spec.Label{}, nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return spec.Label{}, nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return spec.Label{}, nil, err
	}
	label := spec.Label{Name: nameTok.Text, Type: typ}

	var conds []spec.Condition
	if p.at(TokLBracket) {
		conds, err = p.parseConditionList(label)
		if err != nil {
			return spec.Label{}, nil, err
		}
	}
	return label, conds, nil
}

// parseType parses a namespaced identifier: ident ("." ident)*.
func (p *Parser) parseType() (string, error) {
	tok, err := p.expect(TokIdent)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(tok.Text)
	for p.at(TokDot) {
		p.advance()
		seg, err := p.expect(TokIdent)
		if err != nil {
			return "", err
		}
		b.WriteByte('.')
		b.WriteString(seg.Text)
	}
	return b.String(), nil
}

// parseMatches parses "{" match* "}".
func (p *Parser) parseMatches() ([]spec.Match, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	var matches []spec.Match
	for !p.at(TokRBrace) {
		m, err := p.parseMatch()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return matches, nil
}

// parseMatch parses "label "[" condition+ "]"" and enforces rule 2 (at
// least one condition, first is a path).
func (p *Parser) parseMatch() (spec.Match, error) {
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return spec.Match{}, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return spec.Match{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return spec.Match{}, err
	}
	unknown := spec.Label{Name: nameTok.Text, Type: typ}
	if err := p.registerLabel(unknown); err != nil {
		return spec.Match{}, err
	}

	conds, err := p.parseConditionList(unknown)
	if err != nil {
		return spec.Match{}, err
	}
	if len(conds) == 0 {
		return spec.Match{}, fact.NewSpecError(unknown.Name, "match %q must have at least one condition", unknown.Name)
	}
	if !spec.IsPathCondition(conds[0]) {
		return spec.Match{}, fact.NewSpecError(unknown.Name, "the first condition of match %q must be a path condition", unknown.Name)
	}
	return spec.Match{Unknown: unknown, Conditions: conds}, nil
}

func (p *Parser) parseConditionList(owner spec.Label) ([]spec.Condition, error) {
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, err
	}
	var conds []spec.Condition
	for !p.at(TokRBracket) {
		c, err := p.parseCondition(owner)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}
	return conds, nil
}

func (p *Parser) parseCondition(owner spec.Label) (spec.Condition, error) {
	switch {
	case p.at(TokBang):
		p.advance()
		if _, err := p.expectKeywordE(); err != nil {
			return nil, err
		}
		nested, err := p.parseMatches()
		if err != nil {
			return nil, err
		}
		if err := requireReferencesLabel(nested, owner.Name); err != nil {
			return nil, err
		}
		return spec.ExistentialCondition{Exists: false, Matches: nested}, nil
	case p.at(TokIdent) && p.peek().Text == "E":
		p.advance()
		nested, err := p.parseMatches()
		if err != nil {
			return nil, err
		}
		if err := requireReferencesLabel(nested, owner.Name); err != nil {
			return nil, err
		}
		return spec.ExistentialCondition{Exists: true, Matches: nested}, nil
	default:
		return p.parsePath(owner)
	}
}

func (p *Parser) expectKeywordE() (Token, error) {
	tok := p.peek()
	if tok.Type != TokIdent || tok.Text != "E" {
		return Token{}, fact.NewSyntaxError(tok.Offset, "expected existential keyword 'E', found %q", tok.Text)
	}
	return p.advance(), nil
}

// parsePath parses "ident roles "=" ident roles" and enforces rule 3 (left
// identifier equals the owning match's unknown, right identifier already
// in scope) and rule 6 (role type chains converge).
func (p *Parser) parsePath(owner spec.Label) (spec.Condition, error) {
	leftTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if leftTok.Text != owner.Name {
		return nil, fact.NewSpecError(owner.Name, "path left identifier %q must be the enclosing match's unknown %q", leftTok.Text, owner.Name)
	}
	rolesLeft, err := p.parseRoles()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals); err != nil {
		return nil, err
	}
	rightTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	rightLabel, ok := p.labels[rightTok.Text]
	if !ok {
		return nil, fact.NewUndefinedNameError(rightTok.Text, p.labelNames(), "label %q is not yet in scope", rightTok.Text)
	}
	rolesRight, err := p.parseRoles()
	if err != nil {
		return nil, err
	}

	leftTerminal := owner.Type
	if len(rolesLeft) > 0 {
		leftTerminal = rolesLeft[len(rolesLeft)-1].Type
	}
	rightTerminal := rightLabel.Type
	if len(rolesRight) > 0 {
		rightTerminal = rolesRight[len(rolesRight)-1].Type
	}
	if leftTerminal != rightTerminal {
		return nil, fact.NewSpecError(owner.Name, "path type chains diverge: left side reaches %q, right side reaches %q", leftTerminal, rightTerminal)
	}

	return spec.PathCondition{RolesLeft: rolesLeft, LabelRight: rightTok.Text, RolesRight: rolesRight}, nil
}

// parseRoles parses "( "->" ident ":" type )*".
func (p *Parser) parseRoles() ([]spec.Role, error) {
	var roles []spec.Role
	for p.at(TokArrow) {
		p.advance()
		nameTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		roles = append(roles, spec.Role{Name: nameTok.Text, Type: typ})
	}
	return roles, nil
}

// requireReferencesLabel enforces rule 4: an existential condition's
// nested matches must reference the enclosing unknown via a path,
// somewhere in the nested match tree.
func requireReferencesLabel(matches []spec.Match, name string) error {
	if referencesLabel(matches, name) {
		return nil
	}
	return fact.NewSpecError(name, "existential condition must reference %q via a path", name)
}

func referencesLabel(matches []spec.Match, name string) bool {
	for _, m := range matches {
		for _, c := range m.Conditions {
			switch cond := c.(type) {
			case spec.PathCondition:
				if cond.LabelRight == name {
					return true
				}
			case spec.ExistentialCondition:
				if referencesLabel(cond.Matches, name) {
					return true
				}
			}
		}
	}
	return false
}
