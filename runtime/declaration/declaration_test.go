package declaration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/runtime/fact"
)

func TestParse_LiteralBodyAndReuse(t *testing.T) {
	src := `
		let company: Acme.Company = { name: "Acme" }
		let office: Acme.Office = { company, city: "Lagos" }
		let alias: Acme.Office = office
	`
	decl, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, decl, 3)

	assert.Equal(t, "company", decl[0].Name)
	assert.Equal(t, "Acme.Company", decl[0].Type)
	require.Equal(t, FactExprLiteral, decl[0].Expr.Kind)

	require.Equal(t, FactExprLiteral, decl[1].Expr.Kind)
	require.Len(t, decl[1].Expr.Fields, 2)
	assert.Equal(t, "company", decl[1].Expr.Fields[0].Name)
	assert.Nil(t, decl[1].Expr.Fields[0].Value)
	assert.Equal(t, "city", decl[1].Expr.Fields[1].Name)
	require.NotNil(t, decl[1].Expr.Fields[1].Value)
	assert.Equal(t, ValueLiteral, decl[1].Expr.Fields[1].Value.Kind)

	assert.Equal(t, FactExprNameRef, decl[2].Expr.Kind)
	assert.Equal(t, "office", decl[2].Expr.Name)
}

func TestParse_HashReferenceAndSequenceValue(t *testing.T) {
	src := `
		let a: T = { x: 1 }
		let b: T = { x: 2 }
		let group: T = #QWJjRGVm
		let both: T = { members: [a, b] }
	`
	decl, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, decl, 4)

	assert.Equal(t, FactExprHashRef, decl[2].Expr.Kind)
	assert.Equal(t, "QWJjRGVm", decl[2].Expr.Hash)

	require.Len(t, decl[3].Expr.Fields, 1)
	val := decl[3].Expr.Fields[0].Value
	require.NotNil(t, val)
	assert.Equal(t, ValueSequence, val.Kind)
	assert.Equal(t, []string{"a", "b"}, val.Sequence)
}

func TestParse_RejectsDuplicateName(t *testing.T) {
	src := `
		let a: T = { x: 1 }
		let a: T = { x: 2 }
	`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestResolve_ComputesHashAndWiresPredecessors(t *testing.T) {
	decl, err := Parse(`
		let company: Acme.Company = { name: "Acme" }
		let office: Acme.Office = { company, city: "Lagos" }
	`)
	require.NoError(t, err)

	refs, records, err := Resolve(decl)
	require.NoError(t, err)

	companyRec := records["company"]
	officeRec := records["office"]

	expectedHash, err := fact.CanonicalHash(officeRec.Fields, officeRec.Predecessors)
	require.NoError(t, err)
	assert.Equal(t, expectedHash, officeRec.Hash)
	assert.Equal(t, companyRec.Reference(), officeRec.Predecessors["company"].Single())
	assert.Equal(t, officeRec.Reference(), refs["office"])
}

func TestResolve_RejectsUndefinedReference(t *testing.T) {
	decl, err := Parse(`let office: Acme.Office = { company }`)
	require.NoError(t, err)

	_, _, err = Resolve(decl)
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fact.InvalidFact, fe.Kind)
}

func TestResolve_SuggestsNearestDeclaredNameForATypo(t *testing.T) {
	decl, err := Parse(`
		let company: Acme.Company = { name: "Acme" }
		let office: Acme.Office = { compny }
	`)
	require.NoError(t, err)

	_, _, err = Resolve(decl)
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "company", fe.Suggestion)
	assert.Contains(t, fe.Error(), `Did you mean "company"?`)
}
