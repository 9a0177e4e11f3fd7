package skeleton

import (
	"github.com/chronofact/fact/runtime/spec"
)

// Build walks s in source order, assigning each fact (given or unknown) a
// 1-based index the first time it is encountered, and lowers every path
// condition into predecessor/successor edges. Two specifications with the
// same AST always produce byte-equal-after-serialization skeletons,
// because the walk order is deterministic (§4.F's hashing invariant).
func Build(s spec.Specification) Skeleton {
	b := &builder{
		index:      map[string]int{},
		facts:      nil,
		edgeCursor: 0,
	}

	inputs := make([]int, len(s.Given))
	for i, g := range s.Given {
		inputs[i] = b.factIndex(g.Label.Name, g.Label.Type)
	}

	var topEdges []Edge
	var topConditions []Condition
	var outputs []int
	for _, m := range s.Matches {
		idx := b.factIndex(m.Unknown.Name, m.Unknown.Type)
		outputs = append(outputs, idx)
		edges, conds := b.lowerMatch(m)
		topEdges = append(topEdges, edges...)
		topConditions = append(topConditions, conds...)
	}

	b.lowerProjectionFacts(s.Projection)

	return Skeleton{
		Facts:      b.facts,
		Inputs:     inputs,
		Edges:      topEdges,
		Conditions: topConditions,
		Outputs:    outputs,
	}
}

type builder struct {
	index      map[string]int
	facts      []string
	edgeCursor int
}

// factIndex returns the existing index for a named label, or assigns the
// next index if this is the first time name has been seen.
func (b *builder) factIndex(name, typ string) int {
	if idx, ok := b.index[name]; ok {
		return idx
	}
	b.facts = append(b.facts, typ)
	idx := len(b.facts)
	b.index[name] = idx
	return idx
}

// freshIndex allocates an index for an unnamed intermediate fact
// encountered while walking a role chain.
func (b *builder) freshIndex(typ string) int {
	b.facts = append(b.facts, typ)
	return len(b.facts)
}

func (b *builder) nextEdgeIndex() int {
	b.edgeCursor++
	return b.edgeCursor
}

// lowerMatch produces the path edges for every path condition of a match,
// plus the existential-condition tree for its existential conditions.
func (b *builder) lowerMatch(m spec.Match) ([]Edge, []Condition) {
	var edges []Edge
	var conditions []Condition
	unknownIdx := b.index[m.Unknown.Name]

	for _, c := range m.Conditions {
		switch cond := c.(type) {
		case spec.PathCondition:
			rightIdx := b.index[cond.LabelRight]
			edges = append(edges, b.lowerPath(unknownIdx, cond, rightIdx)...)
		case spec.ExistentialCondition:
			conditions = append(conditions, b.lowerExistential(cond))
		}
	}
	return edges, conditions
}

// lowerPath lowers one PathCondition into a sequence of predecessor/
// successor edges connecting labelRight to the unknown (§4.H.1).
func (b *builder) lowerPath(unknownIdx int, cond spec.PathCondition, rightIdx int) []Edge {
	var edges []Edge

	// R-chain: walk rolesRight as predecessor steps from labelRight. With
	// no rolesLeft, the last hop reaches the unknown itself.
	rChain := []int{rightIdx}
	for i, role := range cond.RolesRight {
		if i == len(cond.RolesRight)-1 && len(cond.RolesLeft) == 0 {
			rChain = append(rChain, unknownIdx)
		} else {
			rChain = append(rChain, b.freshIndex(role.Type))
		}
	}
	for i, role := range cond.RolesRight {
		edges = append(edges, Edge{
			PredecessorFactIndex: rChain[i+1],
			SuccessorFactIndex:   rChain[i],
			Role:                 role.Name,
			EdgeIndex:            b.nextEdgeIndex(),
		})
	}
	junction := rChain[len(rChain)-1]

	// L-chain: walk rolesLeft as predecessor steps from the unknown; the
	// deepest hop is identified with the junction reached by the R-chain
	// (both describe the same fact), rather than allocated a fresh index.
	lChain := []int{unknownIdx}
	for i, role := range cond.RolesLeft {
		if i == len(cond.RolesLeft)-1 {
			lChain = append(lChain, junction)
		} else {
			lChain = append(lChain, b.freshIndex(role.Type))
		}
	}
	for i, role := range cond.RolesLeft {
		edges = append(edges, Edge{
			PredecessorFactIndex: lChain[i+1],
			SuccessorFactIndex:   lChain[i],
			Role:                 role.Name,
			EdgeIndex:            b.nextEdgeIndex(),
		})
	}

	return edges
}

// lowerExistential lowers an existential condition's nested matches into a
// Condition scope. The running edge-index counter is shared globally
// (b.edgeCursor), satisfying §3's "edge indexing is globally unique across
// nested not-exists scopes".
func (b *builder) lowerExistential(cond spec.ExistentialCondition) Condition {
	var edges []Edge
	var children []Condition
	for _, nm := range cond.Matches {
		b.factIndex(nm.Unknown.Name, nm.Unknown.Type)
		e, c := b.lowerMatch(nm)
		edges = append(edges, e...)
		children = append(children, c...)
	}
	return Condition{Exists: cond.Exists, Edges: edges, Children: children}
}

// lowerProjectionFacts assigns fact indices for any labels a nested
// specification's own matches introduce, so the skeleton's Facts slice
// accounts for every fact a hashed feed might reference.
func (b *builder) lowerProjectionFacts(proj spec.Projection) {
	if proj.Composite {
		for _, c := range proj.Components {
			b.lowerComponentFacts(c.Value)
		}
		return
	}
	if proj.Singular != nil {
		b.lowerComponentFacts(*proj.Singular)
	}
}

func (b *builder) lowerComponentFacts(v spec.ComponentValue) {
	if v.Kind != spec.ComponentNested || v.Nested == nil {
		return
	}
	for _, nm := range v.Nested.Matches {
		b.factIndex(nm.Unknown.Name, nm.Unknown.Type)
		b.lowerMatch(nm)
	}
	b.lowerProjectionFacts(v.Nested.Projection)
}
