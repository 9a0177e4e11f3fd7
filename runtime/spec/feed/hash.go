package feed

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/chronofact/fact/runtime/fact"
	"github.com/chronofact/fact/runtime/spec/skeleton"
)

// FeedIdentifier names a feed's externally visible subscription identity:
// the concrete fact reference bound to each skeleton input, plus the
// skeleton itself (§3's "Feed identifier").
type FeedIdentifier struct {
	Start    []fact.Reference
	Skeleton skeleton.Skeleton
}

// HashIdentifier computes a feed's identity hash. The skeleton and start
// array already have a canonical, deterministic shape by construction
// (skeleton.Build assigns indices in source order; Start is indexed by
// skeleton input position), so this serializer does not need to sort
// anything — it mirrors runtime/fact.CanonicalHash's digest algorithm
// (SHA-512, base64-standard) but over FeedIdentifier's own shape, which
// does not fit the Fields/PredecessorMap grammar that hasher serializes.
func HashIdentifier(id FeedIdentifier) (string, error) {
	var b strings.Builder
	b.WriteString("facts:")
	for i, typ := range id.Skeleton.Facts {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, typ)
	}
	b.WriteString(";inputs:")
	writeInts(&b, id.Skeleton.Inputs)
	b.WriteString(";start:")
	for i, ref := range id.Start {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, ref.Type)
		b.WriteByte('#')
		writeString(&b, ref.Hash)
	}
	b.WriteString(";edges:")
	writeEdges(&b, id.Skeleton.Edges)
	b.WriteString(";conditions:")
	writeConditions(&b, id.Skeleton.Conditions)
	b.WriteString(";outputs:")
	writeInts(&b, id.Skeleton.Outputs)

	sum := sha512.Sum512([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
}

func writeInts(b *strings.Builder, ints []int) {
	b.WriteByte('[')
	for i, n := range ints {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
}

func writeEdges(b *strings.Builder, edges []skeleton.Edge) {
	b.WriteByte('[')
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "(%d,%d,", e.PredecessorFactIndex, e.SuccessorFactIndex)
		writeString(b, e.Role)
		fmt.Fprintf(b, ",%d)", e.EdgeIndex)
	}
	b.WriteByte(']')
}

func writeConditions(b *strings.Builder, conds []skeleton.Condition) {
	b.WriteByte('[')
	for i, c := range conds {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "{exists:%t,edges:", c.Exists)
		writeEdges(b, c.Edges)
		b.WriteString(",children:")
		writeConditions(b, c.Children)
		b.WriteByte('}')
	}
	b.WriteByte(']')
}
