package rules

import (
	"strings"

	"github.com/chronofact/fact/runtime/fact"
	specparser "github.com/chronofact/fact/runtime/spec/parser"
)

// Parse scans src for the three optional top-level rule blocks —
// authorization, distribution, purge — in any order, parsing each block's
// embedded specifications with specparser.Parse. Unrecognized top-level
// text outside a block is ignored, the same tolerance opal's own
// directive scanner affords surrounding prose.
func Parse(src string) (RuleSet, error) {
	var rs RuleSet
	pos := 0
	for pos < len(src) {
		pos = skipSpace(src, pos)
		if pos >= len(src) {
			break
		}
		if !isIdentChar(src[pos]) {
			pos++
			continue
		}
		wordStart := pos
		word, next := readIdent(src, pos)
		switch word {
		case "authorization":
			body, end, err := scanBlockBody(src, next)
			if err != nil {
				return RuleSet{}, err
			}
			rules, err := parseAuthorizationBlock(body)
			if err != nil {
				return RuleSet{}, err
			}
			rs.Authorization = append(rs.Authorization, rules...)
			pos = end
		case "distribution":
			body, end, err := scanBlockBody(src, next)
			if err != nil {
				return RuleSet{}, err
			}
			rules, err := parseDistributionBlock(body)
			if err != nil {
				return RuleSet{}, err
			}
			rs.Distribution = append(rs.Distribution, rules...)
			pos = end
		case "purge":
			body, end, err := scanBlockBody(src, next)
			if err != nil {
				return RuleSet{}, err
			}
			rules, err := parsePurgeBlock(body)
			if err != nil {
				return RuleSet{}, err
			}
			rs.Purge = append(rs.Purge, rules...)
			pos = end
		default:
			pos = wordStart + len(word)
		}
	}
	return rs, nil
}

// parseAuthorizationBlock parses a sequence of lines, each either
// "any Type", "no Type", or an embedded specification whose single given
// names the guarded type.
func parseAuthorizationBlock(body string) ([]AuthorizationRule, error) {
	var rules []AuthorizationRule
	pos := 0
	for {
		pos = skipSpace(body, pos)
		if pos >= len(body) {
			break
		}
		if strings.HasPrefix(body[pos:], "any") && !isIdentChar(peekByte(body, pos+3)) {
			typ, next := readTypeName(body, skipSpace(body, pos+3))
			rules = append(rules, AuthorizationRule{Kind: AuthAny, Type: typ})
			pos = next
			continue
		}
		if strings.HasPrefix(body[pos:], "no") && !isIdentChar(peekByte(body, pos+2)) {
			typ, next := readTypeName(body, skipSpace(body, pos+2))
			rules = append(rules, AuthorizationRule{Kind: AuthNo, Type: typ})
			pos = next
			continue
		}
		if body[pos] == '(' {
			text, next, err := scanSpecification(body, pos)
			if err != nil {
				return nil, err
			}
			s, err := specparser.Parse(text)
			if err != nil {
				return nil, err
			}
			rules = append(rules, AuthorizationRule{Kind: AuthSpecification, Specification: s})
			pos = next
			continue
		}
		return nil, fact.NewSyntaxError(pos, "expected %q, %q, or a specification in authorization block", "any", "no")
	}
	return rules, nil
}

// parseDistributionBlock parses repeated "share <spec> with (everyone |
// <spec>)" statements.
func parseDistributionBlock(body string) ([]DistributionRule, error) {
	var rules []DistributionRule
	pos := 0
	for {
		pos = skipSpace(body, pos)
		if pos >= len(body) {
			break
		}
		word, next := readIdent(body, pos)
		if word != "share" {
			return nil, fact.NewSyntaxError(pos, "expected %q, found %q", "share", word)
		}
		pos = skipSpace(body, next)
		shareText, next, err := scanSpecification(body, pos)
		if err != nil {
			return nil, err
		}
		shareSpec, err := specparser.Parse(shareText)
		if err != nil {
			return nil, err
		}
		pos = skipSpace(body, next)
		word, next = readIdent(body, pos)
		if word != "with" {
			return nil, fact.NewSyntaxError(pos, "expected %q, found %q", "with", word)
		}
		pos = skipSpace(body, next)

		if strings.HasPrefix(body[pos:], "everyone") && !isIdentChar(peekByte(body, pos+8)) {
			rules = append(rules, DistributionRule{Share: shareSpec, Everyone: true})
			pos += len("everyone")
			continue
		}
		withText, next, err := scanSpecification(body, pos)
		if err != nil {
			return nil, err
		}
		withSpec, err := specparser.Parse(withText)
		if err != nil {
			return nil, err
		}
		rules = append(rules, DistributionRule{Share: shareSpec, With: withSpec})
		pos = next
	}
	return rules, nil
}

// parsePurgeBlock parses a flat list of specifications, one per purge
// scope.
func parsePurgeBlock(body string) ([]PurgeRule, error) {
	var rules []PurgeRule
	pos := 0
	for {
		pos = skipSpace(body, pos)
		if pos >= len(body) {
			break
		}
		text, next, err := scanSpecification(body, pos)
		if err != nil {
			return nil, err
		}
		s, err := specparser.Parse(text)
		if err != nil {
			return nil, err
		}
		rules = append(rules, PurgeRule{Specification: s})
		pos = next
	}
	return rules, nil
}

func peekByte(src string, pos int) byte {
	if pos < 0 || pos >= len(src) {
		return 0
	}
	return src[pos]
}
