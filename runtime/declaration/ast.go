// Package declaration implements §6.2's declaration DSL: a small sequence
// of "let name: type = factExpr" bindings that let a query start reference
// named, freshly constructed facts instead of bare hashes.
package declaration

import "github.com/chronofact/fact/runtime/fact"

// ValueKind discriminates a field's value grammar (§6.2's "value").
type ValueKind int

const (
	// ValueLiteral is a plain jsonLiteral field value.
	ValueLiteral ValueKind = iota
	// ValueReference names a single prior declaration, making the owning
	// field a single-valued predecessor role.
	ValueReference
	// ValueSequence names an ordered list of prior declarations, making
	// the owning field a sequence-valued (many) predecessor role.
	ValueSequence
)

// Value is one field's right-hand side.
type Value struct {
	Kind      ValueKind
	Literal   fact.Value
	Reference string
	Sequence  []string
}

// Field is one entry of a literal fact body. A nil Value marks the
// auto-named form ("field := ident" with no ":value") — the field is
// itself a single-valued predecessor role referencing a prior
// declaration of the same name.
type Field struct {
	Name  string
	Value *Value
}

// FactExprKind discriminates which of the three factExpr alternatives an
// entry uses.
type FactExprKind int

const (
	// FactExprLiteral is a "{ field, ... }" full fact body.
	FactExprLiteral FactExprKind = iota
	// FactExprHashRef is a "#base64hash" reference by hash.
	FactExprHashRef
	// FactExprNameRef reuses a prior declaration by name.
	FactExprNameRef
)

// FactExpr is one declaration's right-hand side.
type FactExpr struct {
	Kind   FactExprKind
	Fields []Field // FactExprLiteral
	Hash   string  // FactExprHashRef
	Name   string  // FactExprNameRef
}

// Entry is one "let name: type = factExpr" binding.
type Entry struct {
	Name string
	Type string
	Expr FactExpr
}

// Declaration is an ordered sequence of entries; names are unique, and
// later entries may reference earlier ones.
type Declaration []Entry
