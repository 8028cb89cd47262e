package profile

import (
	"fmt"
	"strings"

	"github.com/imacdo2212/EdTech/internal/canon"
)

// Document returns the JSON document form of r.
// Size bounds, hashing and schema checks all operate on this form.
func (r Record) Document() (canon.Object, error) {
	v, err := canon.Encode(r)
	if err != nil {
		return nil, fmt.Errorf("profile: encode record: %w", err)
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return nil, fmt.Errorf("profile: encode record: got %s", canon.KindOf(v))
	}
	return obj, nil
}

// FromDocument decodes a document into a Record.
// The document is expected to have passed the record schema.
func FromDocument(doc canon.Object) (Record, error) {
	var r Record
	if err := canon.Decode(doc, &r); err != nil {
		return Record{}, fmt.Errorf("profile: decode record: %w", err)
	}
	if r.TopicStates == nil {
		r.TopicStates = canon.Object{}
	}
	return r, nil
}

// SplitPath splits a dotted field path such as "topic_states.MSK".
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// Get returns the value at path in doc.
func Get(doc canon.Object, path string) (canon.Value, bool) {
	return doc.Lookup(SplitPath(path)...)
}

// Set writes value at path in doc, creating intermediate objects as needed.
// A non-object found on the way is replaced by an object. doc is modified in
// place; callers own the copy they pass in.
func Set(doc canon.Object, path string, value canon.Value) {
	parts := SplitPath(path)
	cur := doc
	for _, key := range parts[:len(parts)-1] {
		next, ok := cur[key].(canon.Object)
		if !ok || next == nil {
			next = canon.Object{}
			cur[key] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
