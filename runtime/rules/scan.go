package rules

import "github.com/chronofact/fact/runtime/fact"

func skipSpace(src string, pos int) int {
	for pos < len(src) {
		switch src[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func readIdent(src string, pos int) (string, int) {
	start := pos
	for pos < len(src) && isIdentChar(src[pos]) {
		pos++
	}
	return src[start:pos], pos
}

// readTypeName reads a dot-separated identifier chain without tokenizing
// the whole source — rule blocks are scanned with simple byte-position
// helpers rather than the specification lexer, since most of a block's
// content is free-form embedded specification text handed to
// runtime/spec/parser.Parse wholesale.
func readTypeName(src string, pos int) (string, int) {
	start := pos
	_, pos = readIdent(src, pos)
	for pos < len(src) && src[pos] == '.' {
		pos++
		_, pos = readIdent(src, pos)
	}
	return src[start:pos], pos
}

// scanBalanced returns the index just past the bracket opened at pos,
// treating '(', '{', '[' as openers and ')', '}', ']' as closers of a
// single shared depth counter (the descriptive-string grammar never
// interleaves mismatched bracket kinds, so this is sufficient).
func scanBalanced(src string, pos int) (int, error) {
	start := pos
	depth := 0
	for pos < len(src) {
		switch src[pos] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		}
		pos++
		if depth == 0 {
			return pos, nil
		}
	}
	return pos, fact.NewSyntaxError(start, "unterminated bracket")
}

// scanBlockBody scans a "{ ... }" block starting at pos and returns its
// interior text (braces excluded) plus the position just past the block.
func scanBlockBody(src string, pos int) (string, int, error) {
	pos = skipSpace(src, pos)
	if pos >= len(src) || src[pos] != '{' {
		return "", pos, fact.NewSyntaxError(pos, "expected '{'")
	}
	bodyStart := pos + 1
	end, err := scanBalanced(src, pos)
	if err != nil {
		return "", pos, err
	}
	return src[bodyStart : end-1], end, nil
}

// scanSpecification scans one embedded descriptive-string specification
// starting at pos: a given list, a match block, and an optional
// projection, and returns its full text plus the position just past it.
func scanSpecification(src string, pos int) (string, int, error) {
	start := pos
	pos = skipSpace(src, pos)
	if pos >= len(src) || src[pos] != '(' {
		return "", pos, fact.NewSyntaxError(pos, "expected a specification's given list")
	}
	pos, err := scanBalanced(src, pos)
	if err != nil {
		return "", pos, err
	}

	pos = skipSpace(src, pos)
	if pos >= len(src) || src[pos] != '{' {
		return "", pos, fact.NewSyntaxError(pos, "expected a specification's match block")
	}
	pos, err = scanBalanced(src, pos)
	if err != nil {
		return "", pos, err
	}

	afterMatches := skipSpace(src, pos)
	if afterMatches+1 < len(src) && src[afterMatches] == '=' && src[afterMatches+1] == '>' {
		pos = skipSpace(src, afterMatches+2)
		if pos < len(src) && src[pos] == '{' {
			pos, err = scanBalanced(src, pos)
			if err != nil {
				return "", pos, err
			}
		} else {
			for pos < len(src) && src[pos] != '\n' && src[pos] != ' ' && src[pos] != '\t' {
				pos++
			}
		}
	}
	return src[start:pos], pos, nil
}
