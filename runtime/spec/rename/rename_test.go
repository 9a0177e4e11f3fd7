package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

func sampleSpec() spec.Specification {
	return spec.Specification{
		Given: []spec.Given{
			{Label: spec.Label{Name: "p1", Type: "Company"}},
		},
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "u1", Type: "Office"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						RolesLeft:  []spec.Role{{Name: "company", Type: "Company"}},
						LabelRight: "p1",
					},
				},
			},
		},
		Projection: spec.Projection{
			Singular: &spec.ComponentValue{Kind: spec.ComponentFact, Label: "u1"},
		},
	}
}

func TestRename_SubstitutesEveryStructuralLocation(t *testing.T) {
	out, err := Rename(sampleSpec(), map[string]string{"p1": "company1", "u1": "office1"})
	require.NoError(t, err)

	assert.Equal(t, "company1", out.Given[0].Label.Name)
	assert.Equal(t, "office1", out.Matches[0].Unknown.Name)

	pc := out.Matches[0].Conditions[0].(spec.PathCondition)
	assert.Equal(t, "company1", pc.LabelRight)

	assert.Equal(t, "office1", out.Projection.Singular.Label)
}

func TestRename_RejectsNonInjectiveMapping(t *testing.T) {
	_, err := Rename(sampleSpec(), map[string]string{"p1": "x", "u1": "x"})
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fact.InvalidSpecification, fe.Kind)
}

func TestRename_RejectsCollisionWithUnmappedLabel(t *testing.T) {
	_, err := Rename(sampleSpec(), map[string]string{"u1": "p1"})
	require.Error(t, err)
}

func TestRename_LeavesUnmappedLabelsUntouched(t *testing.T) {
	out, err := Rename(sampleSpec(), map[string]string{"u1": "office1"})
	require.NoError(t, err)
	assert.Equal(t, "p1", out.Given[0].Label.Name)
	assert.Equal(t, "office1", out.Matches[0].Unknown.Name)
}
