// Package runner implements §4.H: executing a specification against a
// source.FactSource and emitting projected results. Grounded on
// opal/runtime/executor/executor.go and plan_runner.go's node-by-node
// tree interpretation: a single entry point walks matches in order,
// threading a working set of row bindings forward exactly as executor.go
// threads execution state statement-by-statement.
package runner

import (
	"context"

	"github.com/chronofact/fact/pkg/source"
	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

// Tuple maps every given and unknown label in a specification to the fact
// reference bound to it in one result row.
type Tuple map[string]fact.Reference

// ProjectedResult is one row of a Run, paired with its computed tuple.
type ProjectedResult struct {
	Tuple  Tuple
	Result Value
}

// ValueKind discriminates the shape of a projected Value.
type ValueKind int

const (
	KindFact ValueKind = iota
	KindField
	KindHash
	KindComposite
	KindList
)

// Value is the projected output for one component of one row. Exactly the
// fields matching Kind are meaningful.
type Value struct {
	Kind ValueKind

	Fact      *source.HydratedFact // KindFact
	Field     fact.Value           // KindField
	Hash      string               // KindHash
	Composite map[string]Value     // KindComposite
	List      []Value              // KindList, one entry per nested row
}

// binding is one row's label→reference map. Always copied on extension so
// that branching matches never alias a shared map.
type binding map[string]fact.Reference

func (b binding) extend(name string, ref fact.Reference) binding {
	out := make(binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = ref
	return out
}

// Run executes s against fs with the given start references, one per
// s.Given in order. Per §4.H step 1, an absent given fact yields an empty
// result sequence rather than an error; GivenNotFound is never returned
// to the caller.
func Run(ctx context.Context, fs source.FactSource, start []fact.Reference, s spec.Specification) ([]ProjectedResult, error) {
	if len(start) != len(s.Given) {
		return nil, fact.NewError(fact.Internal, "start has %d references but specification declares %d givens", len(start), len(s.Given))
	}

	row := binding{}
	for i, g := range s.Given {
		rec, err := fs.FindFact(ctx, start[i])
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		row[g.Label.Name] = start[i]
	}

	for _, g := range s.Given {
		for _, cond := range g.Conditions {
			ec, ok := cond.(spec.ExistentialCondition)
			if !ok {
				continue
			}
			satisfied, err := existentialHolds(ctx, fs, ec, row)
			if err != nil {
				return nil, err
			}
			if !satisfied {
				return nil, nil
			}
		}
	}

	bindings, err := runMatches(ctx, fs, s.Matches, []binding{row})
	if err != nil {
		return nil, err
	}

	results := make([]ProjectedResult, 0, len(bindings))
	for _, b := range bindings {
		val, err := project(ctx, fs, s.Projection, b)
		if err != nil {
			return nil, err
		}
		results = append(results, ProjectedResult{Tuple: Tuple(b), Result: val})
	}
	return results, nil
}

func existentialHolds(ctx context.Context, fs source.FactSource, ec spec.ExistentialCondition, row binding) (bool, error) {
	sub, err := runMatches(ctx, fs, ec.Matches, []binding{row})
	if err != nil {
		return false, err
	}
	return (len(sub) > 0) == ec.Exists, nil
}

// runMatches extends every binding in bindings through each match in turn,
// in source order, matching §5's "match-order cross-product" guarantee.
func runMatches(ctx context.Context, fs source.FactSource, matches []spec.Match, bindings []binding) ([]binding, error) {
	for _, m := range matches {
		next, err := applyMatch(ctx, fs, m, bindings)
		if err != nil {
			return nil, err
		}
		bindings = next
	}
	return bindings, nil
}

// applyMatch resolves one match's leading path condition against every
// incoming row, then filters the expanded rows through its remaining
// conditions.
func applyMatch(ctx context.Context, fs source.FactSource, m spec.Match, bindings []binding) ([]binding, error) {
	pathCond, ok := m.Conditions[0].(spec.PathCondition)
	if !ok {
		return nil, fact.NewError(fact.Internal, "match %q's first condition is not a path condition", m.Unknown.Name)
	}

	var extended []binding
	for _, b := range bindings {
		candidates, err := resolvePath(ctx, fs, b, m.Unknown.Type, pathCond)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			extended = append(extended, b.extend(m.Unknown.Name, c))
		}
	}

	for _, cond := range m.Conditions[1:] {
		var err error
		extended, err = filterCondition(ctx, fs, m, cond, extended)
		if err != nil {
			return nil, err
		}
	}
	return extended, nil
}

func filterCondition(ctx context.Context, fs source.FactSource, m spec.Match, cond spec.Condition, bindings []binding) ([]binding, error) {
	switch c := cond.(type) {
	case spec.PathCondition:
		var kept []binding
		for _, b := range bindings {
			candidates, err := resolvePath(ctx, fs, b, m.Unknown.Type, c)
			if err != nil {
				return nil, err
			}
			if containsRef(candidates, b[m.Unknown.Name]) {
				kept = append(kept, b)
			}
		}
		return kept, nil
	case spec.ExistentialCondition:
		var kept []binding
		for _, b := range bindings {
			ok, err := existentialHolds(ctx, fs, c, b)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, b)
			}
		}
		return kept, nil
	default:
		return bindings, nil
	}
}

// resolvePath implements §4.H.1: walk rolesRight as predecessor steps from
// labelRight, then walk rolesLeft in reverse as successor steps, each
// asking for the fact type found at that position in the forward
// (predecessor) chain — which for the innermost step is unknownType, and
// for every other step is the previous role's declared type.
func resolvePath(ctx context.Context, fs source.FactSource, b binding, unknownType string, cond spec.PathCondition) ([]fact.Reference, error) {
	rightRef, ok := b[cond.LabelRight]
	if !ok {
		return nil, fact.NewError(fact.Internal, "label %q is not bound while resolving a path condition", cond.LabelRight)
	}

	current := []fact.Reference{rightRef}
	for _, role := range cond.RolesRight {
		next, err := predecessorStep(ctx, fs, current, role.Name, role.Type)
		if err != nil {
			return nil, err
		}
		current = next
	}

	for i := len(cond.RolesLeft) - 1; i >= 0; i-- {
		role := cond.RolesLeft[i]
		successorType := unknownType
		if i > 0 {
			successorType = cond.RolesLeft[i-1].Type
		}
		next, err := successorStep(ctx, fs, current, role.Name, successorType)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return fact.UniqueReferences(current), nil
}

func predecessorStep(ctx context.Context, fs source.FactSource, refs []fact.Reference, role, predecessorType string) ([]fact.Reference, error) {
	var out []fact.Reference
	for _, ref := range refs {
		preds, err := fs.GetPredecessors(ctx, ref, role, predecessorType)
		if err != nil {
			return nil, err
		}
		out = append(out, preds...)
	}
	return out, nil
}

func successorStep(ctx context.Context, fs source.FactSource, refs []fact.Reference, role, successorType string) ([]fact.Reference, error) {
	var out []fact.Reference
	for _, ref := range refs {
		succs, err := fs.GetSuccessors(ctx, ref, role, successorType)
		if err != nil {
			return nil, err
		}
		out = append(out, succs...)
	}
	return out, nil
}

func containsRef(refs []fact.Reference, target fact.Reference) bool {
	for _, r := range refs {
		if fact.ReferenceEquals(r, target) {
			return true
		}
	}
	return false
}

// project computes the output shape for one surviving row.
func project(ctx context.Context, fs source.FactSource, proj spec.Projection, b binding) (Value, error) {
	if proj.Composite {
		out := make(map[string]Value, len(proj.Components))
		for _, c := range proj.Components {
			v, err := projectComponent(ctx, fs, c.Value, b)
			if err != nil {
				return Value{}, err
			}
			out[c.Name] = v
		}
		return Value{Kind: KindComposite, Composite: out}, nil
	}
	if proj.Singular != nil {
		return projectComponent(ctx, fs, *proj.Singular, b)
	}
	return Value{}, nil
}

func projectComponent(ctx context.Context, fs source.FactSource, v spec.ComponentValue, b binding) (Value, error) {
	switch v.Kind {
	case spec.ComponentFact:
		ref, err := boundRef(b, v.Label)
		if err != nil {
			return Value{}, err
		}
		h, err := fs.Hydrate(ctx, ref)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFact, Fact: h}, nil

	case spec.ComponentField:
		ref, err := boundRef(b, v.Label)
		if err != nil {
			return Value{}, err
		}
		rec, err := fs.FindFact(ctx, ref)
		if err != nil {
			return Value{}, err
		}
		// A missing field, or a fact absent from the source entirely,
		// both resolve to Null rather than an error (§9 Open Question 1).
		if rec == nil {
			return Value{Kind: KindField, Field: fact.Null}, nil
		}
		val, ok := rec.Fields[v.FieldName]
		if !ok {
			val = fact.Null
		}
		return Value{Kind: KindField, Field: val}, nil

	case spec.ComponentHash:
		ref, err := boundRef(b, v.Label)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindHash, Hash: ref.Hash}, nil

	case spec.ComponentNested:
		bindings, err := runMatches(ctx, fs, v.Nested.Matches, []binding{b})
		if err != nil {
			return Value{}, err
		}
		list := make([]Value, 0, len(bindings))
		for _, nb := range bindings {
			val, err := project(ctx, fs, v.Nested.Projection, nb)
			if err != nil {
				return Value{}, err
			}
			list = append(list, val)
		}
		return Value{Kind: KindList, List: list}, nil

	default:
		return Value{}, fact.NewError(fact.Internal, "unrecognized projection component kind")
	}
}

func boundRef(b binding, label string) (fact.Reference, error) {
	ref, ok := b[label]
	if !ok {
		return fact.Reference{}, fact.NewSpecError(label, "projection references unbound label %q", label)
	}
	return ref, nil
}
