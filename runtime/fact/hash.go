package fact

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// CanonicalHash computes the base64 digest of fields and predecessors
// under the canonical encoding of §4.A. Equal inputs — including
// reordered or duplicated members of a sequence-valued predecessor role —
// always produce equal digests.
func CanonicalHash(fields Fields, predecessors PredecessorMap) (string, error) {
	var buf bytes.Buffer
	if err := writeCanonicalForm(&buf, fields, predecessors); err != nil {
		return "", err
	}
	sum := sha512.Sum512(buf.Bytes())
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// writeCanonicalForm writes the canonical byte encoding of a fact's fields
// and predecessors: a JSON-shaped object with field names in lexicographic
// order followed by predecessor roles in lexicographic order, each role's
// sequence value sorted by (type, hash) and deduplicated.
func writeCanonicalForm(buf *bytes.Buffer, fields Fields, predecessors PredecessorMap) error {
	buf.WriteString(`{"fields":`)
	if err := writeFields(buf, fields); err != nil {
		return err
	}
	buf.WriteString(`,"predecessors":`)
	writePredecessors(buf, predecessors)
	buf.WriteByte('}')
	return nil
}

func writeFields(buf *bytes.Buffer, fields Fields) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, name)
		buf.WriteByte(':')
		if err := writeValue(buf, fields[name]); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case ValueNull:
		buf.WriteString("null")
	case ValueBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case ValueNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return NewError(InvalidFact, "non-finite number cannot be hashed")
		}
		buf.WriteString(canonicalNumber(v.Number))
	case ValueString:
		writeCanonicalString(buf, v.Str)
	default:
		return NewError(InvalidFact, "unrecognized value kind %d", v.Kind)
	}
	return nil
}

// canonicalNumber formats a float64 without unnecessary trailing zeros:
// integral values render with no decimal point, others render with the
// shortest round-trip representation.
func canonicalNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// canonicalEscapes is the fixed escape table of §4.A.
var canonicalEscapes = map[rune]string{
	'"':  `\"`,
	'\\': `\\`,
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		if esc, ok := canonicalEscapes[r]; ok {
			buf.WriteString(esc)
			continue
		}
		if r < 0x20 {
			fmt.Fprintf(buf, `\u%04x`, r)
			continue
		}
		buf.WriteRune(r)
	}
	buf.WriteByte('"')
}

func writePredecessors(buf *bytes.Buffer, predecessors PredecessorMap) {
	roles := predecessors.Roles()
	buf.WriteByte('{')
	for i, role := range roles {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, role)
		buf.WriteByte(':')
		writePredecessorValue(buf, predecessors[role])
	}
	buf.WriteByte('}')
}

func writePredecessorValue(buf *bytes.Buffer, p PredecessorValue) {
	if !p.IsMany() {
		writeReference(buf, p.Single())
		return
	}
	refs := sortedUniqueReferences(p.Many())
	buf.WriteByte('[')
	for i, ref := range refs {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeReference(buf, ref)
	}
	buf.WriteByte(']')
}

func writeReference(buf *bytes.Buffer, ref Reference) {
	buf.WriteByte('{')
	buf.WriteString(`"type":`)
	writeCanonicalString(buf, ref.Type)
	buf.WriteString(`,"hash":`)
	writeCanonicalString(buf, ref.Hash)
	buf.WriteByte('}')
}
