package declaration

import (
	"fmt"

	"github.com/chronofact/fact/runtime/fact"
)

// names returns the keys of refs, for fuzzy-matching an undefined name
// reference against.
func names(refs map[string]fact.Reference) []string {
	out := make([]string, 0, len(refs))
	for name := range refs {
		out = append(out, name)
	}
	return out
}

// undefinedNameError builds an InvalidFact error for a reference to name
// that isn't among refs, suggesting the nearest declared name.
func undefinedNameError(name string, refs map[string]fact.Reference, format string, args ...any) *fact.Error {
	return &fact.Error{
		Kind:       fact.InvalidFact,
		Label:      name,
		Suggestion: fact.NearestMatch(name, names(refs)),
		Msg:        fmt.Sprintf(format, args...),
	}
}

// Resolve binds every entry of d to a concrete fact.Reference, in
// declaration order, computing each literal body's canonical hash via
// fact.NewRecord. refs maps every declared name to its reference (usable
// as a query start); records holds the freshly constructed Record for
// every literal-bodied entry (hash and name-ref entries produce no new
// record to save).
func Resolve(d Declaration) (refs map[string]fact.Reference, records map[string]fact.Record, err error) {
	refs = map[string]fact.Reference{}
	records = map[string]fact.Record{}

	for _, entry := range d {
		var ref fact.Reference
		switch entry.Expr.Kind {
		case FactExprHashRef:
			ref = fact.Reference{Type: entry.Type, Hash: entry.Expr.Hash}

		case FactExprNameRef:
			prior, ok := refs[entry.Expr.Name]
			if !ok {
				return nil, nil, undefinedNameError(entry.Expr.Name, refs, "declaration %q reuses undefined name %q", entry.Name, entry.Expr.Name)
			}
			ref = prior

		case FactExprLiteral:
			rec, buildErr := buildRecord(entry, refs)
			if buildErr != nil {
				return nil, nil, buildErr
			}
			records[entry.Name] = rec
			ref = rec.Reference()
		}
		refs[entry.Name] = ref
	}
	return refs, records, nil
}

func buildRecord(entry Entry, refs map[string]fact.Reference) (fact.Record, error) {
	fields := fact.Fields{}
	preds := fact.PredecessorMap{}

	for _, f := range entry.Expr.Fields {
		if f.Value == nil {
			ref, ok := refs[f.Name]
			if !ok {
				return fact.Record{}, undefinedNameError(f.Name, refs, "declaration %q references undefined name %q", entry.Name, f.Name)
			}
			preds[f.Name] = fact.SinglePredecessor(ref)
			continue
		}

		switch f.Value.Kind {
		case ValueLiteral:
			fields[f.Name] = f.Value.Literal

		case ValueReference:
			ref, ok := refs[f.Value.Reference]
			if !ok {
				return fact.Record{}, undefinedNameError(f.Value.Reference, refs, "declaration %q references undefined name %q", entry.Name, f.Value.Reference)
			}
			preds[f.Name] = fact.SinglePredecessor(ref)

		case ValueSequence:
			var seq []fact.Reference
			for _, name := range f.Value.Sequence {
				ref, ok := refs[name]
				if !ok {
					return fact.Record{}, undefinedNameError(name, refs, "declaration %q references undefined name %q", entry.Name, name)
				}
				seq = append(seq, ref)
			}
			preds[f.Name] = fact.ManyPredecessor(seq...)
		}
	}

	return fact.NewRecord(entry.Type, fields, preds)
}
