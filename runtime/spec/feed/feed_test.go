package feed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

func alwaysNondeterministic(string, string) bool { return true }

// companyOfficeSpec walks from an office to its company through the
// office's "company" predecessor role: (p1: Office) { u1: Company
// [ u1 = p1->company:Company ] } => u1. Whether the prefix is
// deterministic depends only on the oracle's answer for that role.
func companyOfficeSpec() spec.Specification {
	return spec.Specification{
		Given: []spec.Given{
			{Label: spec.Label{Name: "p1", Type: "Office"}},
		},
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "u1", Type: "Company"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						LabelRight: "p1",
						RolesRight: []spec.Role{{Name: "company", Type: "Company"}},
					},
				},
			},
		},
		Projection: spec.Projection{
			Singular: &spec.ComponentValue{Kind: spec.ComponentFact, Label: "u1"},
		},
	}
}

func TestDecompose_OneFeedPerNondeterministicPrefix(t *testing.T) {
	feeds := Decompose(companyOfficeSpec(), alwaysNondeterministic)
	require.Len(t, feeds, 1)
	assert.Equal(t, "u1", feeds[0].Name)
	assert.Equal(t, []string{"Office", "Company"}, feeds[0].Skeleton.Facts)
}

func TestDecompose_FiltersDeterministicPrefixes(t *testing.T) {
	neverSequence := func(string, string) bool { return false }
	feeds := Decompose(companyOfficeSpec(), neverSequence)
	assert.Empty(t, feeds)
}

func TestDecompose_NegativeExistentialAddsWitnessFeed(t *testing.T) {
	s := companyOfficeSpec()
	s.Matches[0].Conditions = append(s.Matches[0].Conditions, spec.ExistentialCondition{
		Exists: false,
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "c1", Type: "Holding"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						LabelRight: "u1",
						RolesRight: []spec.Role{{Name: "holding", Type: "Holding"}},
					},
				},
			},
		},
	})

	feeds := Decompose(s, alwaysNondeterministic)
	require.Len(t, feeds, 2)
	assert.Equal(t, "u1", feeds[0].Name)
	assert.Equal(t, "c1", feeds[1].Name)
}

func TestHashIdentifier_DeterministicAcrossCalls(t *testing.T) {
	feeds := Decompose(companyOfficeSpec(), alwaysNondeterministic)
	require.Len(t, feeds, 1)
	start := []fact.Reference{{Type: "Office", Hash: "abc"}}

	h1, err := HashIdentifier(FeedIdentifier{Start: start, Skeleton: feeds[0].Skeleton})
	require.NoError(t, err)
	h2, err := HashIdentifier(FeedIdentifier{Start: start, Skeleton: feeds[0].Skeleton})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	otherStart := []fact.Reference{{Type: "Office", Hash: "different"}}
	h3, err := HashIdentifier(FeedIdentifier{Start: otherStart, Skeleton: feeds[0].Skeleton})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestCache_AddFeedsIsMonotoneAndConcurrencySafe(t *testing.T) {
	feeds := Decompose(companyOfficeSpec(), alwaysNondeterministic)
	start := []fact.Reference{{Type: "Office", Hash: "abc"}}
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, cache.AddFeeds(feeds, start))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
}
