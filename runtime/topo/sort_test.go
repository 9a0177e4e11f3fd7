package topo

import (
	"testing"

	"github.com/chronofact/fact/runtime/fact"
)

func rec(t *testing.T, typ, hash string, preds fact.PredecessorMap) fact.Record {
	t.Helper()
	if preds == nil {
		preds = fact.PredecessorMap{}
	}
	return fact.Record{Type: typ, Hash: hash, Predecessors: preds, Fields: fact.Fields{}}
}

func TestSort_OrdersPredecessorsBeforeSuccessors(t *testing.T) {
	a := rec(t, "X", "A", nil)
	b := rec(t, "X", "B", fact.PredecessorMap{"prior": fact.SinglePredecessor(a.Reference())})
	c := rec(t, "X", "C", fact.PredecessorMap{"prior": fact.SinglePredecessor(b.Reference())})
	d := rec(t, "X", "D", fact.PredecessorMap{"prior": fact.SinglePredecessor(c.Reference())})

	input := []fact.Record{d, c, b, a}
	out, err := Sort(input)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C", "D"}
	for i, r := range out {
		if r.Hash != want[i] {
			t.Fatalf("position %d: got %s want %s (order: %v)", i, r.Hash, want[i], hashes(out))
		}
	}
}

func hashes(rs []fact.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Hash
	}
	return out
}

func TestSort_IgnoresPredecessorsOutsideBatch(t *testing.T) {
	external := fact.Reference{Type: "X", Hash: "EXTERNAL"}
	a := rec(t, "X", "A", fact.PredecessorMap{"prior": fact.SinglePredecessor(external)})
	out, err := Sort([]fact.Record{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Hash != "A" {
		t.Fatalf("expected single record A, got %v", hashes(out))
	}
}

func TestSort_DetectsCycle(t *testing.T) {
	refA := fact.Reference{Type: "X", Hash: "A"}
	refB := fact.Reference{Type: "X", Hash: "B"}
	refC := fact.Reference{Type: "X", Hash: "C"}

	a := rec(t, "X", "A", fact.PredecessorMap{"prior": fact.SinglePredecessor(refC)})
	b := rec(t, "X", "B", fact.PredecessorMap{"prior": fact.SinglePredecessor(refA)})
	c := rec(t, "X", "C", fact.PredecessorMap{"prior": fact.SinglePredecessor(refB)})

	_, err := Sort([]fact.Record{a, b, c})
	if err == nil {
		t.Fatal("expected CircularDependency error")
	}
	fe, ok := err.(*fact.Error)
	if !ok || fe.Kind != fact.CircularDependency {
		t.Fatalf("expected CircularDependency, got %v", err)
	}
}

func TestSort_StableTieBreakOnEqualInDegree(t *testing.T) {
	a := rec(t, "X", "A", nil)
	b := rec(t, "X", "B", nil)
	c := rec(t, "X", "C", nil)

	out, err := Sort([]fact.Record{c, a, b})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"C", "A", "B"}
	for i, r := range out {
		if r.Hash != want[i] {
			t.Fatalf("expected stable input order %v, got %v", want, hashes(out))
		}
	}
}
