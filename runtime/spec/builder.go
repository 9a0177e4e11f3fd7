package spec

// Builder constructs a Specification programmatically, reducing to the
// same AST the descriptive-string parser produces for equivalent text.
// Mirrors opal/runtime/planner's programmatic-construction surface over
// the same IR its own text-format parser builds.
type Builder struct {
	given   []Given
	matches []Match
	proj    Projection
}

// NewBuilder starts an empty specification builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Given declares a given input, with optional existential conditions
// filtering it.
func (b *Builder) Given(name, typ string, conditions ...Condition) *Builder {
	b.given = append(b.given, Given{Label: Label{Name: name, Type: typ}, Conditions: conditions})
	return b
}

// Match declares an unknown constrained by conditions, the first of which
// must be a PathCondition.
func (b *Builder) Match(name, typ string, conditions ...Condition) *Builder {
	b.matches = append(b.matches, Match{Unknown: Label{Name: name, Type: typ}, Conditions: conditions})
	return b
}

// Project sets a singular projection.
func (b *Builder) Project(value ComponentValue) *Builder {
	b.proj = Projection{Composite: false, Singular: &value}
	return b
}

// ProjectComposite sets a composite projection from named components.
func (b *Builder) ProjectComposite(components ...Component) *Builder {
	b.proj = Projection{Composite: true, Components: components}
	return b
}

// Build returns the assembled Specification. It performs no validation of
// its own — callers that need §4.E's structural guarantees should round
// trip through parser.Print/parser.Parse, or run connectivity.Validate
// directly.
func (b *Builder) Build() Specification {
	return Specification{Given: b.given, Matches: b.matches, Projection: b.proj}
}

// Path constructs a PathCondition: owner walks rolesLeft as successors (in
// the §4.H.1 sense) to meet labelRight's rolesRight predecessor walk.
func Path(rolesLeft []Role, labelRight string, rolesRight []Role) PathCondition {
	return PathCondition{RolesLeft: rolesLeft, LabelRight: labelRight, RolesRight: rolesRight}
}

// Exists constructs a positive existential condition.
func Exists(matches ...Match) ExistentialCondition {
	return ExistentialCondition{Exists: true, Matches: matches}
}

// NotExists constructs a negative existential condition.
func NotExists(matches ...Match) ExistentialCondition {
	return ExistentialCondition{Exists: false, Matches: matches}
}

// Fact constructs a ComponentFact value referencing label.
func Fact(label string) ComponentValue {
	return ComponentValue{Kind: ComponentFact, Label: label}
}

// Field constructs a ComponentField value reading fieldName off label.
func Field(label, fieldName string) ComponentValue {
	return ComponentValue{Kind: ComponentField, Label: label, FieldName: fieldName}
}

// Hash constructs a ComponentHash value referencing label.
func Hash(label string) ComponentValue {
	return ComponentValue{Kind: ComponentHash, Label: label}
}

// Nested constructs a ComponentNested value embedding a full nested
// specification's matches and projection.
func Nested(matches []Match, projection Projection) ComponentValue {
	return ComponentValue{Kind: ComponentNested, Nested: &NestedSpecification{Matches: matches, Projection: projection}}
}

// Comp names a composite projection component.
func Comp(name string, value ComponentValue) Component {
	return Component{Name: name, Value: value}
}
