package skeleton

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/runtime/spec"
)

// successorSpec builds the canonical "find u1 whose company role leads back
// to p1" shape used throughout §8's scenarios:
//
//	(p1: Company) { u1: Office [ u1->company:Company = p1 ] } => u1
func successorSpec() spec.Specification {
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
						RolesRight: nil,
					},
				},
			},
		},
	}
}

func TestBuild_SimpleSuccessorQuery(t *testing.T) {
	sk := Build(successorSpec())

	require.Equal(t, []string{"Company", "Office"}, sk.Facts)
	require.Equal(t, []int{1}, sk.Inputs)
	require.Equal(t, []int{2}, sk.Outputs)

	require.Len(t, sk.Edges, 1)
	assert.Equal(t, 1, sk.Edges[0].PredecessorFactIndex)
	assert.Equal(t, 2, sk.Edges[0].SuccessorFactIndex)
	assert.Equal(t, "company", sk.Edges[0].Role)
	assert.Equal(t, 1, sk.Edges[0].EdgeIndex)

	assert.Empty(t, sk.Conditions)
}

// TestBuild_ChainedRolesUnifyAtJunction exercises a path condition where
// both sides of the "=" walk roles: u1->a:A = p1->b:B. The deep ends of
// each chain describe the same physical fact and must share one index.
func TestBuild_ChainedRolesUnifyAtJunction(t *testing.T) {
	s := spec.Specification{
		Given: []spec.Given{
			{Label: spec.Label{Name: "p1", Type: "Root"}},
		},
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "u1", Type: "Leaf"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						RolesLeft:  []spec.Role{{Name: "a", Type: "Mid"}},
						LabelRight: "p1",
						RolesRight: []spec.Role{{Name: "b", Type: "Mid"}},
					},
				},
			},
		},
	}

	sk := Build(s)

	// Facts: 1=p1(Root), 2=u1(Leaf), 3=fresh Mid (R-chain hop from p1).
	require.Equal(t, []string{"Root", "Leaf", "Mid"}, sk.Facts)
	require.Len(t, sk.Edges, 2)

	// R-chain edge: predecessor=3 (Mid), successor=1 (p1), role "b".
	assert.Equal(t, Edge{PredecessorFactIndex: 3, SuccessorFactIndex: 1, Role: "b", EdgeIndex: 1}, sk.Edges[0])
	// L-chain edge: predecessor=3 (junction, same Mid fact), successor=2 (u1), role "a".
	assert.Equal(t, Edge{PredecessorFactIndex: 3, SuccessorFactIndex: 2, Role: "a", EdgeIndex: 2}, sk.Edges[1])
}

// TestBuild_DeterministicForSameAST exercises builder.go's documented
// hashing invariant directly: two calls to Build on the same AST must
// produce structurally identical skeletons, not merely equal-looking ones.
func TestBuild_DeterministicForSameAST(t *testing.T) {
	s := successorSpec()
	sk1 := Build(s)
	sk2 := Build(s)

	if diff := cmp.Diff(sk1, sk2); diff != "" {
		t.Fatalf("Build is not deterministic for the same AST (-first +second):\n%s", diff)
	}
}

// TestBuild_DistinctASTsProduceDistinctSkeletons guards §4.F's
// hash-injectivity boundary: specifications that differ structurally must
// lower to skeletons that differ structurally, since the feed cache and
// hashing layer key solely off the lowered skeleton.
func TestBuild_DistinctASTsProduceDistinctSkeletons(t *testing.T) {
	successor := Build(successorSpec())

	chained := Build(spec.Specification{
		Given: []spec.Given{
			{Label: spec.Label{Name: "p1", Type: "Root"}},
		},
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "u1", Type: "Leaf"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						RolesLeft:  []spec.Role{{Name: "a", Type: "Mid"}},
						LabelRight: "p1",
						RolesRight: []spec.Role{{Name: "b", Type: "Mid"}},
					},
				},
			},
		},
	})

	if diff := cmp.Diff(successor, chained); diff == "" {
		t.Fatal("expected distinct specifications to lower to distinct skeletons")
	}
}

func TestBuild_NotExistsConditionNested(t *testing.T) {
	s := spec.Specification{
		Given: []spec.Given{
			{Label: spec.Label{Name: "p1", Type: "Company"}},
		},
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "u1", Type: "Office"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						LabelRight: "p1",
						RolesLeft:  []spec.Role{{Name: "company", Type: "Company"}},
					},
					spec.ExistentialCondition{
						Exists: false,
						Matches: []spec.Match{
							{
								Unknown: spec.Label{Name: "c1", Type: "OfficeClosed"},
								Conditions: []spec.Condition{
									spec.PathCondition{
										LabelRight: "u1",
										RolesLeft:  []spec.Role{{Name: "office", Type: "Office"}},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	sk := Build(s)

	require.Len(t, sk.Conditions, 1)
	cond := sk.Conditions[0]
	assert.False(t, cond.Exists)
	require.Len(t, cond.Edges, 1)
	assert.Equal(t, "office", cond.Edges[0].Role)

	// Edge indices are unique across the top-level edge and the nested
	// condition's edge.
	assert.NotEqual(t, sk.Edges[0].EdgeIndex, cond.Edges[0].EdgeIndex)
}
