// Package invert implements §4.I: producing, for a specification S, the
// set of inverted specifications that fire when a fact of a particular
// type is written. Grounded on opal/runtime/planner/resolver.go's
// multi-pass "resolve forward references, then re-walk" structure — a
// first pass records each unknown's defining path (buildParentEdges),
// a second walks that map to emit one inversion per reachable unknown
// plus one per negative existential.
package invert

import "github.com/chronofact/fact/runtime/spec"

// Inversion is one inverted specification: given a newly written fact of
// Root's type, Result recovers the original specification's reachable
// givens (as a composite hash projection), so a consumer can re-read
// exactly the slices that fact could have affected.
type Inversion struct {
	Root   spec.Label
	Result spec.Specification

	// Retraction is true when this inversion is rooted at a negative
	// existential's nested match: a fact satisfying Root's chain newly
	// satisfies that existential, which removes — rather than adds — a
	// previously produced row of the original specification.
	Retraction bool
}

// parentEdge records, for one label, the single other label its defining
// path condition names and the condition itself — the primary structural
// edge built by each match's first (required) path condition.
type parentEdge struct {
	parentLabel spec.Label
	cond        spec.PathCondition
}

// Invert computes every inversion of s. Per §4.I.3 determinism note,
// output order follows s's source order: one inversion per top-level
// match (in match order), then one per negative existential (in the same
// walk order).
//
// Only the primary per-match path condition is traced when rebuilding the
// chain back to the original givens; a label reachable solely via a
// match's secondary (non-first) path conditions is not retraced here.
func Invert(s spec.Specification) []Inversion {
	parents := buildParentEdges(s)

	var out []Inversion
	for _, m := range s.Matches {
		out = append(out, invertFromUnknown(s, parents, m.Unknown))
	}
	out = append(out, negativeExistentialInversions(s, parents)...)
	return out
}

func buildParentEdges(s spec.Specification) map[string]parentEdge {
	givenType := map[string]string{}
	for _, g := range s.Given {
		givenType[g.Label.Name] = g.Label.Type
	}

	edges := map[string]parentEdge{}
	for _, m := range s.Matches {
		if len(m.Conditions) == 0 {
			continue
		}
		pc, ok := m.Conditions[0].(spec.PathCondition)
		if !ok {
			continue
		}
		typ, ok := givenType[pc.LabelRight]
		if !ok {
			typ = unknownType(s, pc.LabelRight)
		}
		edges[m.Unknown.Name] = parentEdge{
			parentLabel: spec.Label{Name: pc.LabelRight, Type: typ},
			cond:        pc,
		}
	}
	return edges
}

func unknownType(s spec.Specification, name string) string {
	for _, m := range s.Matches {
		if m.Unknown.Name == name {
			return m.Unknown.Type
		}
	}
	return ""
}

func isGiven(s spec.Specification, name string) bool {
	for _, g := range s.Given {
		if g.Label.Name == name {
			return true
		}
	}
	return false
}

// invertPathCondition swaps the two sides of a path condition: the same
// rolesLeft/rolesRight chain relates child and parent regardless of which
// one is named "unknown" (§4.F's junction-unification makes this
// symmetry explicit), so recovering the parent from the child is just the
// condition with its role lists and label swapped.
func invertPathCondition(child string, original spec.PathCondition) spec.PathCondition {
	return spec.PathCondition{
		RolesLeft:  original.RolesRight,
		LabelRight: child,
		RolesRight: original.RolesLeft,
	}
}

// walkToGivens follows parent edges from start up to the root(s) it
// reaches, emitting one inverted match per hop and collecting the names
// of any original givens encountered along the way.
func walkToGivens(s spec.Specification, parents map[string]parentEdge, start spec.Label) ([]spec.Match, []string) {
	var chain []spec.Match
	var reached []string
	current := start
	visited := map[string]bool{start.Name: true}

	for {
		e, ok := parents[current.Name]
		if !ok {
			break
		}
		chain = append(chain, spec.Match{
			Unknown:    e.parentLabel,
			Conditions: []spec.Condition{invertPathCondition(current.Name, e.cond)},
		})
		if isGiven(s, e.parentLabel.Name) {
			reached = append(reached, e.parentLabel.Name)
		}
		current = e.parentLabel
		if visited[current.Name] {
			break
		}
		visited[current.Name] = true
	}
	return chain, reached
}

func buildRecoveryProjection(names []string) spec.Projection {
	if len(names) == 0 {
		return spec.Projection{}
	}
	components := make([]spec.Component, 0, len(names))
	for _, name := range names {
		components = append(components, spec.Component{
			Name:  name,
			Value: spec.ComponentValue{Kind: spec.ComponentHash, Label: name},
		})
	}
	return spec.Projection{Composite: true, Components: components}
}

func invertFromUnknown(s spec.Specification, parents map[string]parentEdge, u spec.Label) Inversion {
	chain, reached := walkToGivens(s, parents, u)
	return Inversion{
		Root: u,
		Result: spec.Specification{
			Given:      []spec.Given{{Label: u}},
			Matches:    chain,
			Projection: buildRecoveryProjection(reached),
		},
	}
}

func negativeExistentialInversions(s spec.Specification, parents map[string]parentEdge) []Inversion {
	var out []Inversion
	for _, m := range s.Matches {
		for _, c := range m.Conditions {
			ec, ok := c.(spec.ExistentialCondition)
			if !ok || ec.Exists {
				continue
			}
			out = append(out, inversionsForNotExists(s, parents, m.Unknown, ec)...)
		}
	}
	return out
}

// inversionsForNotExists handles §4.I.2: a fact satisfying a match nested
// under a not-exists condition newly falsifies rows that were previously
// kept because that nested match yielded zero rows.
func inversionsForNotExists(s spec.Specification, parents map[string]parentEdge, owner spec.Label, ec spec.ExistentialCondition) []Inversion {
	var out []Inversion
	for _, nm := range ec.Matches {
		pc, ok := nm.Conditions[0].(spec.PathCondition)
		if !ok {
			continue
		}
		firstHop := spec.Match{
			Unknown:    owner,
			Conditions: []spec.Condition{invertPathCondition(nm.Unknown.Name, pc)},
		}
		rest, reached := walkToGivens(s, parents, owner)
		if isGiven(s, owner.Name) {
			reached = append([]string{owner.Name}, reached...)
		}
		chain := append([]spec.Match{firstHop}, rest...)

		out = append(out, Inversion{
			Root:       nm.Unknown,
			Retraction: true,
			Result: spec.Specification{
				Given:      []spec.Given{{Label: nm.Unknown}},
				Matches:    chain,
				Projection: buildRecoveryProjection(reached),
			},
		})
	}
	return out
}
