// Package source defines the capability contracts an external driver
// implements for the core to consume: fact lookup, predecessor/successor
// traversal, hydration, and storage (§6.4). Every method is a suspension
// point (§5) and takes a context.Context as its first parameter, the
// idiomatic Go rendition of "suspending operation".
package source

import (
	"context"

	"github.com/chronofact/fact/runtime/fact"
)

// FactSource is the read-side capability the runner, inverter, and feed
// decomposer depend on. A nil *fact.Record return from FindFact (with a
// nil error) means the fact is simply absent — callers recover this
// rather than treating it as failure.
type FactSource interface {
	FindFact(ctx context.Context, ref fact.Reference) (*fact.Record, error)
	GetPredecessors(ctx context.Context, ref fact.Reference, roleName, predecessorType string) ([]fact.Reference, error)
	GetSuccessors(ctx context.Context, ref fact.Reference, roleName, successorType string) ([]fact.Reference, error)
	Hydrate(ctx context.Context, ref fact.Reference) (*HydratedFact, error)
}

// HydratedFact is a fact materialized together with its transitive
// predecessors as a tree, per the fact model's hydrate contract.
type HydratedFact struct {
	Type         string
	Hash         string
	Fields       fact.Fields
	Predecessors map[string]HydratedPredecessor
}

// HydratedPredecessor mirrors fact.PredecessorValue's single/many split,
// but holding fully hydrated facts instead of bare references.
type HydratedPredecessor struct {
	Many   bool
	Single *HydratedFact
	List   []*HydratedFact
}
