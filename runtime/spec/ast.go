// Package spec defines the specification AST of §3/§4.D: given labels,
// matches with path/existential conditions, and projections.
package spec

// Label names a fact bound somewhere in a specification: a given, an
// unknown introduced by a match, or (inside a nested specification) one
// inherited from an enclosing scope.
type Label struct {
	Name string
	Type string
}

// Role is one predecessor step: the role name declared on the fact type
// being walked, and the fact type found at the far end of that step.
type Role struct {
	Name string
	Type string
}

// Given is one input parameter of a specification, with optional
// existential conditions filtering the given itself.
type Given struct {
	Label      Label
	Conditions []Condition
}

// Match defines one unknown and the ordered conditions that constrain it.
// The first condition must be a PathCondition (validated by the parser).
type Match struct {
	Unknown    Label
	Conditions []Condition
}

// Condition is either a PathCondition or an ExistentialCondition.
type Condition interface {
	isCondition()
}

// PathCondition is a structural equality between the enclosing match's
// unknown and a chain of predecessor/successor steps from another label.
// Semantically: start at LabelRight, walk RolesRight as predecessor steps,
// then walk the reverse of RolesLeft as successor steps; the results bind
// to the unknown (§3, §4.H.1).
type PathCondition struct {
	RolesLeft  []Role
	LabelRight string
	RolesRight []Role
}

func (PathCondition) isCondition() {}

// ExistentialCondition filters the enclosing row by whether its nested
// matches yield at least one row (Exists=true) or zero rows (Exists=false).
type ExistentialCondition struct {
	Exists  bool
	Matches []Match
}

func (ExistentialCondition) isCondition() {}

// IsPathCondition reports whether c is a PathCondition.
func IsPathCondition(c Condition) bool {
	_, ok := c.(PathCondition)
	return ok
}

// IsExistentialCondition reports whether c is an ExistentialCondition.
func IsExistentialCondition(c Condition) bool {
	_, ok := c.(ExistentialCondition)
	return ok
}

// ComponentKind discriminates the flavor of a projection component's value.
type ComponentKind int

const (
	ComponentFact ComponentKind = iota
	ComponentField
	ComponentHash
	ComponentNested
)

// NestedSpecification is a specification embedded as a composite
// projection component: its own matches plus its own projection,
// evaluated against the enclosing row's bindings.
type NestedSpecification struct {
	Matches    []Match
	Projection Projection
}

// ComponentValue is the value side of a named projection component, or the
// whole value of a singular (unnamed) projection.
type ComponentValue struct {
	Kind ComponentKind

	// Label is the bound label this component projects. Used by Fact, Field, Hash.
	Label string
	// FieldName names the field read off Label. Used only by Field.
	FieldName string
	// Nested holds the embedded specification. Used only by Nested.
	Nested *NestedSpecification
}

// Component is one named entry of a composite projection.
type Component struct {
	Name  string
	Value ComponentValue
}

// Projection is the output shape computed for each surviving row: either a
// composite (ordered named components) or a singular value.
type Projection struct {
	Composite  bool
	Components []Component     // set when Composite
	Singular   *ComponentValue // set when !Composite
}

// Specification is the full declarative query: given inputs, matches that
// bind unknowns, and the projection applied to each surviving row.
type Specification struct {
	Given      []Given
	Matches    []Match
	Projection Projection
}

// IsDeterministic reports whether s can never produce more than one
// successor per given — i.e. it contains no path condition whose
// RolesLeft is empty and RolesRight is non-empty with a many-valued
// (sequence) role at the head. Per §4.D, non-deterministic specifications
// carry subscription value as feeds; deterministic ones do not and are
// filtered out by feed decomposition.
//
// Because the AST alone does not carry role cardinality (single vs.
// sequence is a property of the fact *type* declaration, not the
// specification), determinism here is evaluated via a caller-supplied
// cardinality oracle: a function reporting whether a given role name on a
// given fact type is sequence-valued.
func IsDeterministic(s Specification, isSequenceRole func(factType, role string) bool) bool {
	labelType := map[string]string{}
	for _, g := range s.Given {
		labelType[g.Label.Name] = g.Label.Type
	}
	for _, m := range s.Matches {
		labelType[m.Unknown.Name] = m.Unknown.Type
	}
	for _, m := range s.Matches {
		if !matchIsDeterministic(m, labelType, isSequenceRole) {
			return false
		}
	}
	return true
}

func matchIsDeterministic(m Match, labelType map[string]string, isSequenceRole func(factType, role string) bool) bool {
	for _, c := range m.Conditions {
		switch cond := c.(type) {
		case PathCondition:
			if len(cond.RolesLeft) == 0 && len(cond.RolesRight) > 0 {
				// The head role is declared on LabelRight's type.
				head := cond.RolesRight[0]
				if isSequenceRole != nil && isSequenceRole(labelType[cond.LabelRight], head.Name) {
					return false
				}
			}
		case ExistentialCondition:
			// Existential conditions filter rows but do not themselves
			// introduce extra successors for the enclosing match.
		}
	}
	return true
}
