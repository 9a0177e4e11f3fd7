package parser

import (
	"fmt"
	"strings"

	"github.com/chronofact/fact/runtime/spec"
)

// Print renders a Specification back to descriptive-string form. Print and
// Parse are inverses up to whitespace normalization (§6.1): for any
// Specification s produced by Parse, Parse(Print(s)) yields an
// AST equal to s.
func Print(s spec.Specification) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, g := range s.Given {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.Label.Name)
		b.WriteByte(':')
		b.WriteString(g.Label.Type)
		printConditions(&b, g.Conditions, g.Label.Name)
	}
	b.WriteString(") ")
	printMatches(&b, s.Matches)
	if s.Projection.Composite || s.Projection.Singular != nil {
		b.WriteString(" => ")
		printProjection(&b, s.Projection)
	}
	return b.String()
}

func printMatches(b *strings.Builder, matches []spec.Match) {
	b.WriteString("{ ")
	for _, m := range matches {
		b.WriteString(m.Unknown.Name)
		b.WriteByte(':')
		b.WriteString(m.Unknown.Type)
		printConditions(b, m.Conditions, m.Unknown.Name)
		b.WriteString(" ")
	}
	b.WriteString("}")
}

func printConditions(b *strings.Builder, conds []spec.Condition, owner string) {
	if len(conds) == 0 {
		return
	}
	b.WriteString(" [ ")
	for i, c := range conds {
		if i > 0 {
			b.WriteString(" ")
		}
		printCondition(b, c, owner)
	}
	b.WriteString(" ]")
}

func printCondition(b *strings.Builder, c spec.Condition, owner string) {
	switch cond := c.(type) {
	case spec.PathCondition:
		b.WriteString(owner)
		printRoles(b, cond.RolesLeft)
		b.WriteString(" = ")
		b.WriteString(cond.LabelRight)
		printRoles(b, cond.RolesRight)
	case spec.ExistentialCondition:
		if !cond.Exists {
			b.WriteString("!")
		}
		b.WriteString("E ")
		printMatches(b, cond.Matches)
	}
}

func printRoles(b *strings.Builder, roles []spec.Role) {
	for _, r := range roles {
		fmt.Fprintf(b, "->%s:%s", r.Name, r.Type)
	}
}

func printProjection(b *strings.Builder, proj spec.Projection) {
	if proj.Composite {
		b.WriteString("{ ")
		for _, c := range proj.Components {
			b.WriteString(c.Name)
			b.WriteString(" = ")
			printComponentValue(b, c.Value)
			b.WriteString(" ")
		}
		b.WriteString("}")
		return
	}
	if proj.Singular != nil {
		printComponentValue(b, *proj.Singular)
	}
}

func printComponentValue(b *strings.Builder, v spec.ComponentValue) {
	switch v.Kind {
	case spec.ComponentFact:
		b.WriteString(v.Label)
	case spec.ComponentField:
		b.WriteString(v.Label)
		b.WriteByte('.')
		b.WriteString(v.FieldName)
	case spec.ComponentHash:
		b.WriteByte('#')
		b.WriteString(v.Label)
	case spec.ComponentNested:
		printMatches(b, v.Nested.Matches)
		if v.Nested.Projection.Composite || v.Nested.Projection.Singular != nil {
			b.WriteString(" => ")
			printProjection(b, v.Nested.Projection)
		}
	}
}
