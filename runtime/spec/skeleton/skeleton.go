// Package skeleton implements §4.F: normalizing a specification to
// positional fact indices for hashing and storage-engine planning.
// Grounded on opal/runtime/planner/ir_builder.go's single-pass
// AST-to-IR lowering style.
package skeleton

// Edge is one predecessor-step in the skeleton: predecessor fact index,
// successor fact index, the role name connecting them, and a globally
// unique edge index (unique across the whole skeleton, including inside
// nested Condition scopes — §3's Skeleton invariant).
type Edge struct {
	PredecessorFactIndex int
	SuccessorFactIndex   int
	Role                 string
	EdgeIndex            int
}

// Condition is the recursive not-exists/exists scope structure: the edges
// introduced by the nested matches' path conditions, plus any further
// nested existential scopes.
type Condition struct {
	Exists   bool
	Edges    []Edge
	Children []Condition
}

// Skeleton is the positional form of a Specification (§3).
type Skeleton struct {
	// Facts holds each referenced fact's type, indexed 1-based: Facts[i-1]
	// is the type of fact index i.
	Facts []string
	// Inputs maps each given's position to its fact index.
	Inputs []int
	// Edges are the top-level path-condition edges (outside any
	// existential scope).
	Edges []Edge
	// Conditions holds the existential/not-exists condition tree.
	Conditions []Condition
	// Outputs are the fact indices of every unknown reached at top level
	// (i.e. not inside a not-exists scope).
	Outputs []int
}
