// Package rename implements §4.K: alpha-renaming a specification's labels
// under an injective mapping. Grounded on
// opal/runtime/planner/scope_graph.go's scoped-variable-rename helpers,
// used there when flattening nested decorator blocks into a single scope.
package rename

import (
	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

// Rename returns a copy of s with every label name present in mapping
// replaced by its image; labels not named as a mapping key are left
// untouched. mapping must be injective, and no image may collide with a
// label name that remains unmapped in s.
func Rename(s spec.Specification, mapping map[string]string) (spec.Specification, error) {
	if err := validateMapping(s, mapping); err != nil {
		return spec.Specification{}, err
	}
	r := renamer{mapping: mapping}
	return r.renameSpecification(s), nil
}

func validateMapping(s spec.Specification, mapping map[string]string) error {
	seenImages := map[string]string{}
	for from, to := range mapping {
		if prevFrom, ok := seenImages[to]; ok && prevFrom != from {
			return fact.NewSpecError(to, "rename mapping is not injective: both %q and %q map to %q", prevFrom, from, to)
		}
		seenImages[to] = from
	}

	labels := map[string]bool{}
	collectLabels(s, labels)

	for _, to := range mapping {
		if !labels[to] {
			continue
		}
		if _, renamedAway := mapping[to]; !renamedAway {
			return fact.NewSpecError(to, "rename target %q collides with an existing unmapped label", to)
		}
	}
	return nil
}

func rewrite(mapping map[string]string, name string) string {
	if to, ok := mapping[name]; ok {
		return to
	}
	return name
}

type renamer struct {
	mapping map[string]string
}

func (r renamer) renameSpecification(s spec.Specification) spec.Specification {
	out := spec.Specification{
		Given:      make([]spec.Given, len(s.Given)),
		Matches:    make([]spec.Match, len(s.Matches)),
		Projection: r.renameProjection(s.Projection),
	}
	for i, g := range s.Given {
		out.Given[i] = spec.Given{Label: r.renameLabel(g.Label), Conditions: r.renameConditions(g.Conditions)}
	}
	for i, m := range s.Matches {
		out.Matches[i] = r.renameMatch(m)
	}
	return out
}

func (r renamer) renameMatch(m spec.Match) spec.Match {
	return spec.Match{Unknown: r.renameLabel(m.Unknown), Conditions: r.renameConditions(m.Conditions)}
}

func (r renamer) renameLabel(l spec.Label) spec.Label {
	return spec.Label{Name: rewrite(r.mapping, l.Name), Type: l.Type}
}

func (r renamer) renameConditions(conds []spec.Condition) []spec.Condition {
	if conds == nil {
		return nil
	}
	out := make([]spec.Condition, len(conds))
	for i, c := range conds {
		out[i] = r.renameCondition(c)
	}
	return out
}

func (r renamer) renameCondition(c spec.Condition) spec.Condition {
	switch cond := c.(type) {
	case spec.PathCondition:
		return spec.PathCondition{
			RolesLeft:  cond.RolesLeft,
			LabelRight: rewrite(r.mapping, cond.LabelRight),
			RolesRight: cond.RolesRight,
		}
	case spec.ExistentialCondition:
		matches := make([]spec.Match, len(cond.Matches))
		for i, m := range cond.Matches {
			matches[i] = r.renameMatch(m)
		}
		return spec.ExistentialCondition{Exists: cond.Exists, Matches: matches}
	default:
		return c
	}
}

func (r renamer) renameProjection(p spec.Projection) spec.Projection {
	if p.Composite {
		components := make([]spec.Component, len(p.Components))
		for i, c := range p.Components {
			components[i] = spec.Component{Name: c.Name, Value: r.renameComponentValue(c.Value)}
		}
		return spec.Projection{Composite: true, Components: components}
	}
	if p.Singular != nil {
		v := r.renameComponentValue(*p.Singular)
		return spec.Projection{Singular: &v}
	}
	return spec.Projection{}
}

func (r renamer) renameComponentValue(v spec.ComponentValue) spec.ComponentValue {
	if v.Kind != spec.ComponentNested || v.Nested == nil {
		return spec.ComponentValue{Kind: v.Kind, Label: rewrite(r.mapping, v.Label), FieldName: v.FieldName}
	}
	nested := spec.NestedSpecification{
		Matches:    make([]spec.Match, len(v.Nested.Matches)),
		Projection: r.renameProjection(v.Nested.Projection),
	}
	for i, m := range v.Nested.Matches {
		nested.Matches[i] = r.renameMatch(m)
	}
	return spec.ComponentValue{Kind: spec.ComponentNested, Nested: &nested}
}

func collectLabels(s spec.Specification, out map[string]bool) {
	for _, g := range s.Given {
		out[g.Label.Name] = true
		collectConditionLabels(g.Conditions, out)
	}
	for _, m := range s.Matches {
		out[m.Unknown.Name] = true
		collectConditionLabels(m.Conditions, out)
	}
	collectProjectionLabels(s.Projection, out)
}

func collectConditionLabels(conds []spec.Condition, out map[string]bool) {
	for _, c := range conds {
		switch cond := c.(type) {
		case spec.PathCondition:
			out[cond.LabelRight] = true
		case spec.ExistentialCondition:
			for _, m := range cond.Matches {
				out[m.Unknown.Name] = true
				collectConditionLabels(m.Conditions, out)
			}
		}
	}
}

func collectProjectionLabels(p spec.Projection, out map[string]bool) {
	if p.Composite {
		for _, c := range p.Components {
			collectComponentLabels(c.Value, out)
		}
		return
	}
	if p.Singular != nil {
		collectComponentLabels(*p.Singular, out)
	}
}

func collectComponentLabels(v spec.ComponentValue, out map[string]bool) {
	if v.Kind == spec.ComponentNested && v.Nested != nil {
		for _, m := range v.Nested.Matches {
			out[m.Unknown.Name] = true
			collectConditionLabels(m.Conditions, out)
		}
		collectProjectionLabels(v.Nested.Projection, out)
		return
	}
	out[v.Label] = true
}
