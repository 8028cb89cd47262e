package canon

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces the canonical byte form of v.
// CRITICAL: this is the ONLY serialization used for hashing and size bounds.
//
// Differences from encoding/json:
//  1. Object keys sorted by code point at every depth
//  2. No HTML escaping (< > & are emitted verbatim)
//  3. Strings (and keys) are NFC normalized
//  4. Numbers use the ECMAScript shortest round-trip form
//  5. NaN and Inf are errors
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Canonicalize marshals any JSON-encodable Go value canonically.
func Canonicalize(v any) ([]byte, error) {
	val, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Marshal(val)
}

// Size returns the length in bytes of the canonical form of v.
func Size(v Value) (int, error) {
	b, err := Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		writeString(buf, string(val))
	case Number:
		s, err := formatNumber(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Array:
		return writeArray(buf, val)
	case Object:
		return writeObject(buf, val)
	default:
		return fmt.Errorf("canon: unsupported value type %T", v)
	}
	return nil
}

func writeArray(buf *bytes.Buffer, arr Array) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeObject(buf *bytes.Buffer, obj Object) error {
	// Keys are normalized before sorting so the order matches what is emitted.
	type entry struct {
		key   string
		value Value
	}
	entries := make([]entry, 0, len(obj))
	seen := make(map[string]string, len(obj))
	for k, v := range obj {
		nk := norm.NFC.String(k)
		if orig, dup := seen[nk]; dup {
			return fmt.Errorf("canon: keys %q and %q collide after NFC normalization", orig, k)
		}
		seen[nk] = k
		entries = append(entries, entry{key: nk, value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, e.key)
		buf.WriteByte(':')
		if err := writeValue(buf, e.value); err != nil {
			return fmt.Errorf("value for key %q: %w", e.key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString emits s as a JSON string literal.
// Only quote, backslash and C0 control characters are escaped.
func writeString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// formatNumber renders f the way ECMAScript Number.prototype.toString does.
func formatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("canon: non-finite number %v", f)
	}
	if f == 0 {
		return "0", nil
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits, nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
