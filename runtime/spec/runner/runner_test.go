package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chronofact/fact/internal/memsource"
	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec"
)

func mustRecord(t *testing.T, typ string, fields fact.Fields, preds fact.PredecessorMap) fact.Record {
	t.Helper()
	rec, err := fact.NewRecord(typ, fields, preds)
	require.NoError(t, err)
	return rec
}

func successorQuery() spec.Specification {
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

func TestRun_SimpleSuccessorQuery(t *testing.T) {
	store := memsource.New()
	company := mustRecord(t, "Company", fact.Fields{"name": fact.String("Acme")}, nil)
	store.Add(company)
	office1 := mustRecord(t, "Office", fact.Fields{"city": fact.String("Lagos")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(company.Reference())})
	office2 := mustRecord(t, "Office", fact.Fields{"city": fact.String("Accra")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(company.Reference())})
	store.Add(office1)
	store.Add(office2)

	results, err := Run(context.Background(), store, []fact.Reference{company.Reference()}, successorQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)

	var hashes []string
	for _, r := range results {
		require.Equal(t, KindFact, r.Result.Kind)
		require.Equal(t, office1.Type, r.Result.Fact.Type)
		hashes = append(hashes, r.Result.Fact.Hash)
		require.Equal(t, company.Reference(), r.Tuple["p1"])
	}
	require.ElementsMatch(t, []string{office1.Hash, office2.Hash}, hashes)
}

func TestRun_GivenNotFoundYieldsEmptyResult(t *testing.T) {
	store := memsource.New()
	missing := fact.Reference{Type: "Company", Hash: "does-not-exist"}

	results, err := Run(context.Background(), store, []fact.Reference{missing}, successorQuery())
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRun_FieldProjectionMissingReturnsNull(t *testing.T) {
	store := memsource.New()
	company := mustRecord(t, "Company", fact.Fields{"name": fact.String("Acme")}, nil)
	office := mustRecord(t, "Office", fact.Fields{"city": fact.String("Lagos")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(company.Reference())})
	store.Add(company)
	store.Add(office)

	s := successorQuery()
	s.Projection = spec.Projection{Singular: &spec.ComponentValue{Kind: spec.ComponentField, Label: "u1", FieldName: "missingField"}}

	results, err := Run(context.Background(), store, []fact.Reference{company.Reference()}, s)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, KindField, results[0].Result.Kind)
	require.True(t, results[0].Result.Field.IsNull())
}

func TestRun_NotExistsFiltersClosedOffices(t *testing.T) {
	store := memsource.New()
	company := mustRecord(t, "Company", fact.Fields{"name": fact.String("Acme")}, nil)
	store.Add(company)
	openOffice := mustRecord(t, "Office", fact.Fields{"city": fact.String("Lagos")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(company.Reference())})
	closedOffice := mustRecord(t, "Office", fact.Fields{"city": fact.String("Accra")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(company.Reference())})
	store.Add(openOffice)
	store.Add(closedOffice)
	closure := mustRecord(t, "OfficeClosed", nil,
		fact.PredecessorMap{"office": fact.SinglePredecessor(closedOffice.Reference())})
	store.Add(closure)

	s := successorQuery()
	s.Matches[0].Conditions = append(s.Matches[0].Conditions, spec.ExistentialCondition{
		Exists: false,
		Matches: []spec.Match{
			{
				Unknown: spec.Label{Name: "c1", Type: "OfficeClosed"},
				Conditions: []spec.Condition{
					spec.PathCondition{
						RolesLeft:  []spec.Role{{Name: "office", Type: "Office"}},
						LabelRight: "u1",
					},
				},
			},
		},
	})

	results, err := Run(context.Background(), store, []fact.Reference{company.Reference()}, s)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, openOffice.Hash, results[0].Result.Fact.Hash)
}

func TestRun_HydrateConflictOnDanglingPredecessor(t *testing.T) {
	store := memsource.New()
	danglingCompany := fact.Reference{Type: "Company", Hash: "never-added"}
	office := mustRecord(t, "Office", fact.Fields{"city": fact.String("Lagos")},
		fact.PredecessorMap{"company": fact.SinglePredecessor(danglingCompany)})
	store.Add(office)

	_, err := store.Hydrate(context.Background(), office.Reference())
	require.Error(t, err)
	var fe *fact.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fact.HydrationConflict, fe.Kind)
}
