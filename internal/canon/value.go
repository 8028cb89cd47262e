package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Value is a sealed interface over the JSON value kinds PK1 stores.
// Only Null, String, Number, Bool, Array and Object implement it.
type Value interface {
	canonValue()
}

// Null represents a JSON null.
type Null struct{}

func (Null) canonValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a JSON string.
type String string

func (String) canonValue() {}

// Number represents a JSON number. Integral values serialize without a fraction.
type Number float64

func (Number) canonValue() {}

// MarshalJSON implements json.Marshaler for Number using the canonical form.
func (n Number) MarshalJSON() ([]byte, error) {
	s, err := formatNumber(float64(n))
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) canonValue() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) canonValue() {}

// MarshalJSON implements json.Marshaler for Array using canonical output.
func (a Array) MarshalJSON() ([]byte, error) {
	return Marshal(a)
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("canon: expected array, got %s", KindOf(v))
	}
	*a = arr
	return nil
}

// Object represents a JSON object. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) canonValue() {}

// MarshalJSON implements json.Marshaler for Object using canonical output.
func (o Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return Marshal(o)
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	if _, isNull := v.(Null); isNull {
		*o = nil
		return nil
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("canon: expected object, got %s", KindOf(v))
	}
	*o = obj
	return nil
}

// SortedKeys returns the object's keys in code-point order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup walks nested objects along path.
func (o Object) Lookup(path ...string) (Value, bool) {
	var cur Value = o
	for _, key := range path {
		obj, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// KindOf names the JSON kind of v, matching the schema type vocabulary.
func KindOf(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Array:
		if val == nil {
			return Array(nil)
		}
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		if val == nil {
			return Object(nil)
		}
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether a and b canonicalize to the same bytes.
func Equal(a, b Value) bool {
	ab, errA := Marshal(a)
	bb, errB := Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Parse decodes a single JSON document into a Value.
// Trailing data after the document is rejected.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("canon: parse: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("canon: parse: trailing data after JSON document")
	}

	return FromGo(raw)
}

// Encode converts a typed Go value into a Value via its JSON encoding.
// Struct tags and omitempty rules apply exactly as in encoding/json.
func Encode(v any) (Value, error) {
	if val, ok := v.(Value); ok {
		return val, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: encode: %w", err)
	}
	return Parse(data)
}

// Decode fills out from v via its JSON encoding.
func Decode(v Value, out any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("canon: decode: %w", err)
	}
	return nil
}

// FromGo converts plain Go data (as produced by encoding/json or yaml.v3)
// into a Value.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Number(f), nil
	case int:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case []string:
		arr := make(Array, len(val))
		for i, s := range val {
			arr[i] = String(s)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	case map[string]string:
		obj := make(Object, len(val))
		for k, s := range val {
			obj[k] = String(s)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number: %v", f)
	}
	return Number(f), nil
}

// Strings converts a string slice into an Array.
func Strings(ss []string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// AsStrings extracts the string elements of an Array, skipping other kinds.
// The boolean is false when v is not an array.
func AsStrings(v Value) ([]string, bool) {
	arr, ok := v.(Array)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, elem := range arr {
		if s, ok := elem.(String); ok {
			out = append(out, string(s))
		}
	}
	return out, true
}
