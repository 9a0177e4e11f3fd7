package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AuthorizationAnyAndNo(t *testing.T) {
	src := `
		authorization {
			any Acme.Signup
			no Acme.AdminGrant
		}
	`
	rs, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, rs.Authorization, 2)
	assert.Equal(t, AuthAny, rs.Authorization[0].Kind)
	assert.Equal(t, "Acme.Signup", rs.Authorization[0].Type)
	assert.Equal(t, AuthNo, rs.Authorization[1].Kind)
	assert.Equal(t, "Acme.AdminGrant", rs.Authorization[1].Type)
}

func TestParse_AuthorizationEmbeddedSpecification(t *testing.T) {
	src := `
		authorization {
			(edit: Acme.Edit) {
				author: Acme.User [
					author = edit ->author:Acme.User
				]
			} => author
		}
	`
	rs, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, rs.Authorization, 1)
	rule := rs.Authorization[0]
	assert.Equal(t, AuthSpecification, rule.Kind)
	require.Len(t, rule.Specification.Given, 1)
	assert.Equal(t, "edit", rule.Specification.Given[0].Label.Name)
	require.Len(t, rule.Specification.Matches, 1)
}

func TestParse_DistributionShareWithEveryoneAndSpecification(t *testing.T) {
	src := `
		distribution {
			share (office: Acme.Office) {} with everyone
			share (office: Acme.Office) {} with (user: Acme.User, office: Acme.Office) {
				employed: Acme.Employment [
					employed ->office:Acme.Office = office
					employed ->user:Acme.User = user
				]
			}
		}
	`
	rs, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, rs.Distribution, 2)
	assert.True(t, rs.Distribution[0].Everyone)
	assert.False(t, rs.Distribution[1].Everyone)
	assert.Equal(t, "user", rs.Distribution[1].With.Given[0].Label.Name)
}

func TestParse_PurgeBlockListsSpecifications(t *testing.T) {
	src := `
		purge {
			(office: Acme.Office) {}
			(company: Acme.Company) {}
		}
	`
	rs, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, rs.Purge, 2)
	assert.Equal(t, "office", rs.Purge[0].Specification.Given[0].Label.Name)
	assert.Equal(t, "company", rs.Purge[1].Specification.Given[0].Label.Name)
}

func TestParse_AllThreeBlocksTogetherInAnyOrder(t *testing.T) {
	src := `
		purge {
			(office: Acme.Office) {}
		}
		authorization {
			any Acme.Signup
		}
		distribution {
			share (office: Acme.Office) {} with everyone
		}
	`
	rs, err := Parse(src)
	require.NoError(t, err)
	assert.Len(t, rs.Purge, 1)
	assert.Len(t, rs.Authorization, 1)
	assert.Len(t, rs.Distribution, 1)
}
