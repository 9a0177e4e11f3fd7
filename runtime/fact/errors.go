package fact

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrorKind enumerates the failure categories of §7. Every error the core
// returns to a caller carries one of these, so callers can discriminate
// with errors.As without string-matching messages.
type ErrorKind string

const (
	// InvalidSyntax marks a descriptive-string parse failure. Carries a
	// byte offset in Error.Offset.
	InvalidSyntax ErrorKind = "InvalidSyntax"
	// InvalidSpecification marks a structural rule violation: label
	// uniqueness, left-unknown on a path, an undefined label, a type-chain
	// mismatch, or disconnected labels.
	InvalidSpecification ErrorKind = "InvalidSpecification"
	// InvalidFact marks an unhashable field value or a declaration that
	// references an undefined name.
	InvalidFact ErrorKind = "InvalidFact"
	// CircularDependency marks a cycle detected by the topological sorter.
	CircularDependency ErrorKind = "CircularDependency"
	// HydrationConflict marks hydrate() resolving to zero or more than one
	// fact for a reference that should resolve to exactly one.
	HydrationConflict ErrorKind = "HydrationConflict"
	// GivenNotFound marks a start reference absent from the fact source.
	// Per §7 this kind is always recovered by the runner into an empty
	// result sequence — it is never returned to an external caller, but
	// the value exists so internal code can reason about the case.
	GivenNotFound ErrorKind = "GivenNotFound"
	// Forbidden is reserved for authorization evaluators built on top of
	// this core; the core itself never constructs it.
	Forbidden ErrorKind = "Forbidden"
	// Internal marks an invariant violation — a specification the
	// validator should have rejected, or a bug. Should never occur.
	Internal ErrorKind = "Internal"
)

// Error is the sum-typed result value every core operation returns on
// failure (§9's "model all failures as a sum-typed result, do not throw
// across capability boundaries").
type Error struct {
	Kind ErrorKind
	// Offset is the byte position of a parse failure. Zero when not
	// applicable.
	Offset int
	// Label names the offending label for a validation failure. Empty
	// when not applicable.
	Label string
	// Suggestion names the nearest in-scope candidate for an undefined
	// name, e.g. "office"; Error() renders it as "Did you mean ...?".
	// Empty when there is nothing close enough to suggest.
	Suggestion string
	Msg string
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s. Did you mean %q?", msg, e.Suggestion)
	}
	switch {
	case e.Label != "":
		return fmt.Sprintf("%s: %s (label %q)", e.Kind, msg, e.Label)
	case e.Offset != 0:
		return fmt.Sprintf("%s: %s (offset %d)", e.Kind, msg, e.Offset)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a bare Error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewSyntaxError builds an InvalidSyntax error carrying a byte offset.
func NewSyntaxError(offset int, format string, args ...any) *Error {
	return &Error{Kind: InvalidSyntax, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// NewSpecError builds an InvalidSpecification error naming the offending label.
func NewSpecError(label string, format string, args ...any) *Error {
	return &Error{Kind: InvalidSpecification, Label: label, Msg: fmt.Sprintf(format, args...)}
}

// NewUndefinedNameError builds an InvalidSpecification error for a
// reference to name that isn't among candidates, attaching the nearest
// candidate as a suggestion when one is close enough.
func NewUndefinedNameError(name string, candidates []string, format string, args ...any) *Error {
	return &Error{
		Kind:       InvalidSpecification,
		Label:      name,
		Suggestion: NearestMatch(name, candidates),
		Msg:        fmt.Sprintf(format, args...),
	}
}

// NearestMatch returns the candidate fuzzy-closest to target, or "" if
// candidates is empty. Grounded on opal/runtime/planner's findClosestMatch:
// fuzzy.RankFindFold's results are sorted by edit distance, so the first
// rank is the best match.
func NearestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Wrap builds an Error of the given kind wrapping a lower-level cause.
func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
