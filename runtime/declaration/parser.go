package declaration

import (
	"strings"

	"github.com/chronofact/fact/runtime/fact"
)

// Parse parses a full declaration list: zero or more "let name: type =
// factExpr" bindings, each immediately available to later entries by
// name.
func Parse(src string) (Declaration, error) {
	tokens, err := newLexer(src).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	var decl Declaration
	seen := map[string]bool{}
	for !p.at(tokEOF) {
		entry, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		if seen[entry.Name] {
			return nil, fact.NewSpecError(entry.Name, "declaration name %q is already declared", entry.Name)
		}
		seen[entry.Name] = true
		decl = append(decl, entry)
	}
	return decl, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) at(t tokenType) bool { return p.peek().typ == t }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(t tokenType) (token, error) {
	if !p.at(t) {
		got := p.peek()
		return token{}, fact.NewSyntaxError(got.offset, "expected %s, found %q", t, got.text)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(word string) error {
	tok, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	if tok.text != word {
		return fact.NewSyntaxError(tok.offset, "expected keyword %q, found %q", word, tok.text)
	}
	return nil
}

func (p *parser) parseEntry() (Entry, error) {
	if err := p.expectKeyword("let"); err != nil {
		return Entry{}, err
	}
	nameTok, err := p.expect(tokIdent)
	if err != nil {
		return Entry{}, err
	}
	if _, err := p.expect(tokColon); err != nil {
		return Entry{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return Entry{}, err
	}
	if _, err := p.expect(tokEquals); err != nil {
		return Entry{}, err
	}
	expr, err := p.parseFactExpr()
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: nameTok.text, Type: typ, Expr: expr}, nil
}

func (p *parser) parseType() (string, error) {
	first, err := p.expect(tokIdent)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first.text)
	for p.at(tokDot) {
		p.advance()
		part, err := p.expect(tokIdent)
		if err != nil {
			return "", err
		}
		b.WriteByte('.')
		b.WriteString(part.text)
	}
	return b.String(), nil
}

func (p *parser) parseFactExpr() (FactExpr, error) {
	switch {
	case p.at(tokLBrace):
		fields, err := p.parseFieldList()
		if err != nil {
			return FactExpr{}, err
		}
		return FactExpr{Kind: FactExprLiteral, Fields: fields}, nil
	case p.at(tokBase64Hash):
		tok := p.advance()
		return FactExpr{Kind: FactExprHashRef, Hash: tok.text}, nil
	case p.at(tokIdent):
		tok := p.advance()
		return FactExpr{Kind: FactExprNameRef, Name: tok.text}, nil
	default:
		got := p.peek()
		return FactExpr{}, fact.NewSyntaxError(got.offset, "expected a fact body, a #hash, or a declaration name, found %q", got.text)
	}
}

func (p *parser) parseFieldList() ([]Field, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var fields []Field
	if !p.at(tokRBrace) {
		for {
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			if !p.at(tokComma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *parser) parseField() (Field, error) {
	nameTok, err := p.expect(tokIdent)
	if err != nil {
		return Field{}, err
	}
	if !p.at(tokColon) {
		return Field{Name: nameTok.text}, nil
	}
	p.advance()
	val, err := p.parseValue()
	if err != nil {
		return Field{}, err
	}
	return Field{Name: nameTok.text, Value: &val}, nil
}

func (p *parser) parseValue() (Value, error) {
	switch {
	case p.at(tokLBracket):
		p.advance()
		var names []string
		if !p.at(tokRBracket) {
			for {
				tok, err := p.expect(tokIdent)
				if err != nil {
					return Value{}, err
				}
				names = append(names, tok.text)
				if !p.at(tokComma) {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueSequence, Sequence: names}, nil

	case p.at(tokString):
		tok := p.advance()
		return Value{Kind: ValueLiteral, Literal: fact.String(tok.text)}, nil

	case p.at(tokNumber):
		tok := p.advance()
		return Value{Kind: ValueLiteral, Literal: fact.Number(tok.number)}, nil

	case p.at(tokIdent):
		tok := p.peek()
		switch tok.text {
		case "true":
			p.advance()
			return Value{Kind: ValueLiteral, Literal: fact.Bool(true)}, nil
		case "false":
			p.advance()
			return Value{Kind: ValueLiteral, Literal: fact.Bool(false)}, nil
		case "null":
			p.advance()
			return Value{Kind: ValueLiteral, Literal: fact.Null}, nil
		default:
			p.advance()
			return Value{Kind: ValueReference, Reference: tok.text}, nil
		}

	default:
		got := p.peek()
		return Value{}, fact.NewSyntaxError(got.offset, "expected a value, found %q", got.text)
	}
}
