// Package connectivity implements §4.G: rejecting specifications whose
// label graph is not connected across givens, matches, and projections.
// Grounded on opal/runtime/planner/scope_graph.go's parent-chain label
// resolution, adapted from a tree into a flat union-find over all labels.
package connectivity

import (
	"github.com/hashicorp/go-multierror"

	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

// unionFind is a minimal disjoint-set structure over label names.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[string]string{}}
}

func (u *unionFind) add(label string) {
	if _, ok := u.parent[label]; !ok {
		u.parent[label] = label
	}
}

func (u *unionFind) find(label string) string {
	u.add(label)
	for u.parent[label] != label {
		u.parent[label] = u.parent[u.parent[label]]
		label = u.parent[label]
	}
	return label
}

func (u *unionFind) union(a, b string) {
	u.add(a)
	u.add(b)
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Validate rejects s if its label graph is not fully connected: every
// given must be reachable from the rest of the specification, every
// projection component must reference labels from a single connected
// component, and the projection as a whole must not bridge disconnected
// components.
func Validate(s spec.Specification) error {
	uf := newUnionFind()

	for _, g := range s.Given {
		uf.add(g.Label.Name)
		connectConditions(uf, g.Label.Name, g.Conditions)
	}
	connectMatches(uf, s.Matches)

	var errs error
	connectProjection(uf, s.Projection, &errs)

	if len(uf.parent) <= 1 {
		return errs
	}

	// Every given must share a root with at least one other label.
	roots := map[string]int{}
	for label := range uf.parent {
		roots[uf.find(label)]++
	}
	for _, g := range s.Given {
		root := uf.find(g.Label.Name)
		if roots[root] <= 1 {
			errs = multierror.Append(errs, fact.NewError(fact.InvalidSpecification, "given %q is disconnected from the rest of the specification", g.Label.Name))
		}
	}

	// The specification as a whole must resolve to a single component:
	// if more than one root exists among referenced labels, something is
	// unreachable from something else.
	if len(roots) > 1 {
		errs = multierror.Append(errs, fact.NewError(fact.InvalidSpecification, "specification label graph has %d disconnected components", len(roots)))
	}

	return errs
}

func connectMatches(uf *unionFind, matches []spec.Match) {
	for _, m := range matches {
		uf.add(m.Unknown.Name)
		connectConditions(uf, m.Unknown.Name, m.Conditions)
	}
}

func connectConditions(uf *unionFind, owner string, conds []spec.Condition) {
	for _, c := range conds {
		switch cond := c.(type) {
		case spec.PathCondition:
			uf.union(owner, cond.LabelRight)
		case spec.ExistentialCondition:
			connectMatches(uf, cond.Matches)
			// A nested match whose path targets the owner directly unions
			// the nested scope back in; connectMatches already ran the
			// union for that case via connectConditions on the nested
			// match itself (owner there is the nested unknown, target is
			// the outer label), so no further action is needed here.
		}
	}
}

func connectProjection(uf *unionFind, proj spec.Projection, errs *error) {
	if proj.Composite {
		var root string
		haveRoot := false
		for _, c := range proj.Components {
			connectComponentValue(uf, c.Value, errs)
			label := componentRootLabel(c.Value)
			if label == "" {
				continue
			}
			uf.add(label)
			r := uf.find(label)
			if !haveRoot {
				root = r
				haveRoot = true
				continue
			}
			if r != root {
				*errs = multierror.Append(*errs, fact.NewError(fact.InvalidSpecification,
					"projection component %q references a label outside the specification's connected component", c.Name))
			}
		}
		return
	}
	if proj.Singular != nil {
		connectComponentValue(uf, *proj.Singular, errs)
	}
}

func connectComponentValue(uf *unionFind, v spec.ComponentValue, errs *error) {
	if v.Kind == spec.ComponentNested && v.Nested != nil {
		connectMatches(uf, v.Nested.Matches)
		connectProjection(uf, v.Nested.Projection, errs)
	}
}

func componentRootLabel(v spec.ComponentValue) string {
	if v.Kind == spec.ComponentNested {
		return ""
	}
	return v.Label
}
