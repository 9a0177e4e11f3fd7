// Package fact defines the historical-fact data model: content-addressed
// records connected by named predecessor edges, plus the canonical hasher
// that assigns each record its identity.
package fact

import (
	"fmt"
	"sort"
)

// Reference identifies a fact by its type and content hash. Two references
// are equal iff both fields are equal.
type Reference struct {
	Type string
	Hash string
}

// JoinKey returns the "{type}:{hash}" string used by the sorter and by
// storage planners to key facts.
func (r Reference) JoinKey() string {
	return r.Type + ":" + r.Hash
}

func (r Reference) String() string {
	return fmt.Sprintf("%s#%s", r.Type, r.Hash)
}

// ReferenceEquals reports whether two references name the same fact.
func ReferenceEquals(a, b Reference) bool {
	return a.Type == b.Type && a.Hash == b.Hash
}

// UniqueReferences returns refs with duplicates removed, preserving the
// order of first occurrence.
func UniqueReferences(refs []Reference) []Reference {
	seen := make(map[Reference]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// sortedUniqueReferences sorts refs by (Type, Hash) ascending and removes
// duplicates. Used only by the canonical hasher when serializing a
// many-valued predecessor role (§4.A).
func sortedUniqueReferences(refs []Reference) []Reference {
	cp := make([]Reference, len(refs))
	copy(cp, refs)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].Type != cp[j].Type {
			return cp[i].Type < cp[j].Type
		}
		return cp[i].Hash < cp[j].Hash
	})
	out := cp[:0:0]
	for i, r := range cp {
		if i == 0 || r != cp[i-1] {
			out = append(out, r)
		}
	}
	return out
}

// PredecessorValue holds either a single predecessor reference or an
// ordered sequence of them for one role. Exactly one of Single or Many is
// meaningful, distinguished by IsMany.
type PredecessorValue struct {
	many   bool
	single Reference
	list   []Reference
}

// SinglePredecessor builds a single-valued predecessor role.
func SinglePredecessor(ref Reference) PredecessorValue {
	return PredecessorValue{single: ref}
}

// ManyPredecessor builds a sequence-valued predecessor role.
func ManyPredecessor(refs ...Reference) PredecessorValue {
	return PredecessorValue{many: true, list: append([]Reference(nil), refs...)}
}

// IsMany reports whether this role holds a sequence rather than a single reference.
func (p PredecessorValue) IsMany() bool { return p.many }

// Single returns the single reference. Only meaningful when !IsMany().
func (p PredecessorValue) Single() Reference { return p.single }

// Many returns the sequence of references. Only meaningful when IsMany().
func (p PredecessorValue) Many() []Reference { return p.list }

// References returns every reference held by this role, single or many,
// in their stored order.
func (p PredecessorValue) References() []Reference {
	if p.many {
		return p.list
	}
	return []Reference{p.single}
}

// PredecessorMap maps a role name to the predecessor(s) referenced through it.
type PredecessorMap map[string]PredecessorValue

// Roles returns the role names in lexicographic order, matching the
// canonical hasher's field-name ordering rule (§4.A).
func (m PredecessorMap) Roles() []string {
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// ValueKind discriminates the JSON-literal variant held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
)

// Value is the JSON-literal field-value grammar of §4.A: null, boolean,
// number, or string. It doubles as the leaf case of the richer projection
// Value in runtime/spec/runner.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Str    string
}

// Null is the canonical null value.
var Null = Value{Kind: ValueNull}

// Bool builds a boolean Value.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Number builds a numeric Value.
func Number(n float64) Value { return Value{Kind: ValueNumber, Number: n} }

// String builds a string Value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// IsNull reports whether v is the null literal.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// Fields maps field names to JSON-literal values.
type Fields map[string]Value

// Record is an immutable fact: its type, content hash, predecessor edges,
// and field values. Hash must equal CanonicalHash(Fields, Predecessors);
// constructing a Record does not itself verify this — use NewRecord, which
// computes Hash, when building one from scratch.
type Record struct {
	Type         string
	Hash         string
	Predecessors PredecessorMap
	Fields       Fields
}

// Reference returns the (Type, Hash) reference naming this record.
func (r Record) Reference() Reference {
	return Reference{Type: r.Type, Hash: r.Hash}
}

// NewRecord computes the canonical hash of fields and predecessors and
// returns a fully formed Record. Returns InvalidFact if any field value is
// unhashable (not applicable in Go's typed Value, but kept for symmetry
// with §4.A's documented failure mode — e.g. a NaN/Inf Number).
func NewRecord(typ string, fields Fields, predecessors PredecessorMap) (Record, error) {
	h, err := CanonicalHash(fields, predecessors)
	if err != nil {
		return Record{}, err
	}
	return Record{Type: typ, Hash: h, Predecessors: predecessors, Fields: fields}, nil
}

// Envelope is a fact record plus an ordered set of opaque signatures.
// Equality on envelopes is by the contained record's reference, per §3.
type Envelope struct {
	Record     Record
	Signatures []Signature
}

// Signature is an opaque (publicKey, signature) pair. The core neither
// produces nor verifies these (§1).
type Signature struct {
	PublicKey string
	Signature string
}

// Reference returns the reference of the enclosed record.
func (e Envelope) Reference() Reference {
	return e.Record.Reference()
}

// EnvelopeEquals compares two envelopes by their record's (type, hash) only.
func EnvelopeEquals(a, b Envelope) bool {
	return ReferenceEquals(a.Reference(), b.Reference())
}
