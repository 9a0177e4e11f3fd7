// Package feed implements §4.J: splitting a specification into monotonic
// "feed" sub-specifications and caching them by skeleton-derived hash.
// Decomposition is grounded on opal/runtime/planner/tree_builder.go's
// prefix-tree construction: each feed is one node of a match-prefix tree
// built by walking the specification's matches in order.
package feed

import (
	"github.com/chronofact/fact/runtime/spec"
	"github.com/chronofact/fact/runtime/spec/skeleton"
)

// Bookmark is the opaque cursor a Storage.Feed capability returns so a
// consumer can resume a feed read where it left off (§6.4).
type Bookmark string

// FeedPage is one page of a feed read: the tuples produced so far and the
// bookmark to resume from.
type FeedPage struct {
	Tuples   []map[string]string // label name -> "{type}:{hash}" join key
	Bookmark Bookmark
}

// Feed is one prefix sub-specification produced by Decompose, together
// with its positional skeleton.
type Feed struct {
	// Name identifies the feed for a human or a log line: the name of the
	// unknown whose binding this feed newly tracks, of the nested
	// match's unknown for an existential-witness branch, or of the
	// projection component for a nested-projection feed.
	Name          string
	Specification spec.Specification
	Skeleton      skeleton.Skeleton
}

// CardinalityOracle reports whether a given role name on a given fact
// type is sequence-valued, the same oracle spec.IsDeterministic takes.
type CardinalityOracle func(factType, role string) bool

// Decompose produces S's ordered feed list per §4.J:
//   - one feed per match prefix (given + matches[:i+1]), skipped when that
//     prefix is deterministic (adds no subscription value);
//   - one additional "witness" feed per negative existential condition,
//     rooted at the existential's own owner and running its nested
//     matches — proving the falsifying witness whose arrival would
//     retract a previously produced row;
//   - one feed per nested specification appearing in a composite
//     projection.
//
// Nested-projection feeds approximate their binding context as every
// given and top-level unknown of S (a nested specification may reference
// any label already in scope by the time its enclosing row is produced);
// this is a documented simplification rather than precise scope tracking.
func Decompose(s spec.Specification, isSequenceRole CardinalityOracle) []Feed {
	var feeds []Feed

	prefix := spec.Specification{Given: s.Given}
	for _, m := range s.Matches {
		prefix.Matches = append(prefix.Matches, m)

		if !spec.IsDeterministic(prefix, isSequenceRole) {
			feeds = append(feeds, buildFeed(m.Unknown.Name, prefix))
		}

		for _, c := range m.Conditions {
			ec, ok := c.(spec.ExistentialCondition)
			if !ok || ec.Exists {
				continue
			}
			witness := spec.Specification{
				Given:   []spec.Given{{Label: m.Unknown}},
				Matches: ec.Matches,
			}
			if !spec.IsDeterministic(witness, isSequenceRole) {
				feeds = append(feeds, buildFeed(witnessName(ec), witness))
			}
		}
	}

	feeds = append(feeds, decomposeProjection(s, isSequenceRole)...)
	return feeds
}

func witnessName(ec spec.ExistentialCondition) string {
	if len(ec.Matches) == 0 {
		return ""
	}
	return ec.Matches[0].Unknown.Name
}

func decomposeProjection(s spec.Specification, isSequenceRole CardinalityOracle) []Feed {
	if !s.Projection.Composite {
		return nil
	}

	scope := append([]spec.Given(nil), s.Given...)
	for _, m := range s.Matches {
		scope = append(scope, spec.Given{Label: m.Unknown})
	}

	var feeds []Feed
	for _, c := range s.Projection.Components {
		if c.Value.Kind != spec.ComponentNested || c.Value.Nested == nil {
			continue
		}
		nested := spec.Specification{
			Given:      scope,
			Matches:    c.Value.Nested.Matches,
			Projection: c.Value.Nested.Projection,
		}
		if !spec.IsDeterministic(nested, isSequenceRole) {
			feeds = append(feeds, buildFeed(c.Name, nested))
		}
		feeds = append(feeds, decomposeProjection(nested, isSequenceRole)...)
	}
	return feeds
}

func buildFeed(name string, s spec.Specification) Feed {
	return Feed{
		Name:          name,
		Specification: s,
		Skeleton:      skeleton.Build(s),
	}
}
