package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/runtime/fact"
)

func TestParse_SuccessorQuery(t *testing.T) {
	s, err := Parse("(p1: Company) { u1: Office [ u1 ->company:Company = p1 ] } => u1")
	require.NoError(t, err)
	require.Len(t, s.Given, 1)
	require.Len(t, s.Matches, 1)
	assert.Equal(t, "p1", s.Given[0].Label.Name)
	assert.Equal(t, "u1", s.Matches[0].Unknown.Name)
}

func TestParse_UndefinedLabelSuggestsNearestInScopeName(t *testing.T) {
	_, err := Parse("(company: Company) { u1: Office [ u1 ->company:Company = compny ] } => u1")
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fact.InvalidSpecification, fe.Kind)
	assert.Equal(t, "company", fe.Suggestion)
	assert.Contains(t, fe.Error(), `Did you mean "company"?`)
}

func TestParse_ProjectionUndefinedLabelSuggestsNearestInScopeName(t *testing.T) {
	_, err := Parse("(company: Company) { office: Office [ office ->company:Company = company ] } => offic")
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "office", fe.Suggestion)
}
