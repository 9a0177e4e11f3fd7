// Package rules implements §6.3: parsing (never evaluating) the three
// optional top-level rule blocks — authorization, distribution, and
// purge — into structured rule sets built from embedded specifications.
package rules

import "github.com/chronofact/fact/runtime/spec"

// AuthorizationKind discriminates an authorization rule's three forms.
type AuthorizationKind int

const (
	// AuthAny permits every write of Type unconditionally.
	AuthAny AuthorizationKind = iota
	// AuthNo forbids every write of Type unconditionally.
	AuthNo
	// AuthSpecification permits a write of the guarded type (the
	// specification's single given's type) only when Specification
	// yields at least one row for that fact.
	AuthSpecification
)

// AuthorizationRule is one line of an authorization block.
type AuthorizationRule struct {
	Kind          AuthorizationKind
	Type          string // set for AuthAny, AuthNo
	Specification spec.Specification
}

// DistributionRule is one "share ... with ..." pair of a distribution
// block.
type DistributionRule struct {
	Share    spec.Specification
	Everyone bool
	With     spec.Specification // set when !Everyone
}

// PurgeRule is one specification of a purge block; its given's type marks
// the purge scope.
type PurgeRule struct {
	Specification spec.Specification
}

// RuleSet is the parsed (but not evaluated) content of every rule block
// present in a source text.
type RuleSet struct {
	Authorization []AuthorizationRule
	Distribution  []DistributionRule
	Purge         []PurgeRule
}
