// Package memsource provides a minimal in-memory source.FactSource, used
// only by this repository's own package tests — analogous to
// opal/runtime/executor's in-tree fake sessions, never imported by
// runtime/....
package memsource

import (
	"context"
	"sync"

	"github.com/chronofact/fact/pkg/source"
	"github.com/chronofact/fact/runtime/fact"
)

// Store holds a fixed set of facts plus a reverse (successor) index built
// incrementally as facts are added.
type Store struct {
	mu         sync.RWMutex
	records    map[fact.Reference]fact.Record
	successors map[fact.Reference]map[string][]fact.Reference
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		records:    map[fact.Reference]fact.Record{},
		successors: map[fact.Reference]map[string][]fact.Reference{},
	}
}

// Add stores rec and indexes its predecessor edges for successor lookups.
// Re-adding an already-stored reference is a no-op, matching facts'
// immutability.
func (s *Store) Add(rec fact.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := rec.Reference()
	if _, ok := s.records[ref]; ok {
		return
	}
	s.records[ref] = rec

	for _, role := range rec.Predecessors.Roles() {
		for _, predRef := range rec.Predecessors[role].References() {
			if s.successors[predRef] == nil {
				s.successors[predRef] = map[string][]fact.Reference{}
			}
			s.successors[predRef][role] = append(s.successors[predRef][role], ref)
		}
	}
}

func (s *Store) FindFact(_ context.Context, ref fact.Reference) (*fact.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[ref]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (s *Store) GetPredecessors(_ context.Context, ref fact.Reference, role, predecessorType string) ([]fact.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[ref]
	if !ok {
		return nil, nil
	}
	pv, ok := rec.Predecessors[role]
	if !ok {
		return nil, nil
	}
	var out []fact.Reference
	for _, r := range pv.References() {
		if r.Type == predecessorType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetSuccessors(_ context.Context, ref fact.Reference, role, successorType string) ([]fact.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRole, ok := s.successors[ref]
	if !ok {
		return nil, nil
	}
	var out []fact.Reference
	for _, r := range byRole[role] {
		if r.Type == successorType {
			out = append(out, r)
		}
	}
	return out, nil
}

// Hydrate materializes ref and its transitive predecessors. A reference
// absent from the store is the "resolves to zero facts" case of the
// hydrate contract and raises HydrationConflict.
func (s *Store) Hydrate(ctx context.Context, ref fact.Reference) (*source.HydratedFact, error) {
	s.mu.RLock()
	rec, ok := s.records[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, fact.NewError(fact.HydrationConflict, "hydrate: no fact in source for %s", ref)
	}
	return s.hydrateRecord(ctx, rec)
}

func (s *Store) hydrateRecord(ctx context.Context, rec fact.Record) (*source.HydratedFact, error) {
	h := &source.HydratedFact{
		Type:         rec.Type,
		Hash:         rec.Hash,
		Fields:       rec.Fields,
		Predecessors: map[string]source.HydratedPredecessor{},
	}
	for _, role := range rec.Predecessors.Roles() {
		pv := rec.Predecessors[role]
		if pv.IsMany() {
			list := make([]*source.HydratedFact, 0, len(pv.Many()))
			for _, r := range pv.Many() {
				child, err := s.Hydrate(ctx, r)
				if err != nil {
					return nil, err
				}
				list = append(list, child)
			}
			h.Predecessors[role] = source.HydratedPredecessor{Many: true, List: list}
			continue
		}
		child, err := s.Hydrate(ctx, pv.Single())
		if err != nil {
			return nil, err
		}
		h.Predecessors[role] = source.HydratedPredecessor{Single: child}
	}
	return h, nil
}
