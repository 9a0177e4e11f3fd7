// Package topo orders a batch of facts so that every predecessor precedes
// every successor (§4.C), using Kahn's algorithm over the induced subgraph
// of the input batch.
package topo

import (
	"sort"

	"github.com/chronofact/fact/runtime/fact"
)

// Sort returns a permutation of records such that for every record R and
// every predecessor P of R that also appears in records, P precedes R.
// Predecessors absent from records are permitted and ignored — the
// caller's fact source is assumed to already hold them. Ties among nodes
// with equal in-degree are broken by input order (stable).
//
// Returns a *fact.Error of kind CircularDependency if the induced subgraph
// contains a cycle.
func Sort(records []fact.Record) ([]fact.Record, error) {
	n := len(records)
	indexByKey := make(map[string]int, n)
	for i, r := range records {
		indexByKey[r.Reference().JoinKey()] = i
	}

	// successors[i] lists the indices of records whose predecessor is
	// records[i]. inDegree[i] counts how many in-batch predecessors
	// records[i] still has unemitted.
	successors := make([][]int, n)
	inDegree := make([]int, n)

	for i, r := range records {
		for _, role := range r.Predecessors.Roles() {
			for _, ref := range r.Predecessors[role].References() {
				if predIdx, ok := indexByKey[ref.JoinKey()]; ok {
					successors[predIdx] = append(successors[predIdx], i)
					inDegree[i]++
				}
			}
		}
	}

	// ready is kept sorted ascending by original index at all times, so
	// among nodes simultaneously eligible the one earliest in input order
	// is always emitted first — the stable tie-break §4.C requires,
	// regardless of the order edges happened to unlock them in.
	ready := make([]int, 0, n)
	insertReady := func(idx int) {
		pos := sort.SearchInts(ready, idx)
		ready = append(ready, 0)
		copy(ready[pos+1:], ready[pos:])
		ready[pos] = idx
	}
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			insertReady(i)
		}
	}

	order := make([]fact.Record, 0, n)

	for len(ready) > 0 {
		idx := ready[0]
		ready = ready[1:]
		order = append(order, records[idx])

		for _, succ := range successors[idx] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				insertReady(succ)
			}
		}
	}

	if len(order) != n {
		return nil, fact.NewError(fact.CircularDependency, "predecessor cycle detected among %d unresolved record(s)", n-len(order))
	}

	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// validateOrder is the secondary pass of §4.C: re-scan the emitted order
// and assert the predecessor-before-successor property holds. A violation
// here indicates a bug in Sort, not bad input, so it is reported as
// Internal rather than CircularDependency.
func validateOrder(order []fact.Record) error {
	position := make(map[string]int, len(order))
	for i, r := range order {
		position[r.Reference().JoinKey()] = i
	}
	for i, r := range order {
		for _, role := range r.Predecessors.Roles() {
			for _, ref := range r.Predecessors[role].References() {
				if predPos, ok := position[ref.JoinKey()]; ok && predPos >= i {
					return fact.NewError(fact.Internal, "topological sort produced predecessor %s after successor %s", ref, r.Reference())
				}
			}
		}
	}
	return nil
}
