package schema

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// keywords allowed per node type. "description" is accepted everywhere and ignored.
var keywords = map[string][]string{
	"object":  {"type", "description", "properties", "required", "additionalProperties"},
	"string":  {"type", "description", "enum", "maxLength"},
	"number":  {"type", "description"},
	"boolean": {"type", "description"},
	"array":   {"type", "description", "items", "maxItems"},
}

// Compile parses a CUE schema value into a Node.
//
// The value uses a JSON-Schema-like vocabulary, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`s: {type: "object", required: ["a"], properties: a: {type: "string"}}`)
//	node, err := Compile(v.LookupPath(cue.ParsePath("s")))
func Compile(v cue.Value) (Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{Field: "type", Message: "type is required", Pos: v.Pos()}
	}
	typ, err := typeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	allowed, ok := keywords[typ]
	if !ok {
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type %q", typ),
			Pos:     typeVal.Pos(),
		}
	}
	if err := checkKeywords(v, typ, allowed); err != nil {
		return nil, err
	}

	switch typ {
	case "object":
		return compileObject(v)
	case "string":
		return compileString(v)
	case "number":
		return &Number{}, nil
	case "boolean":
		return &Boolean{}, nil
	default:
		return compileArray(v)
	}
}

// CompileSource compiles CUE source and extracts the schema at path.
func CompileSource(filename string, src []byte, path string) (Node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil, &CompileError{Field: path, Message: "schema not found", Pos: v.Pos()}
	}
	return Compile(sv)
}

func checkKeywords(v cue.Value, typ string, allowed []string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if !slices.Contains(allowed, iter.Label()) {
			return &CompileError{
				Field:   iter.Label(),
				Message: fmt.Sprintf("keyword not allowed for type %s", typ),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func compileObject(v cue.Value) (*Object, error) {
	obj := &Object{}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if propsVal.Exists() {
		iter, err := propsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Label()
			child, err := Compile(iter.Value())
			if err != nil {
				return nil, wrapField(name, err)
			}
			obj.Properties = append(obj.Properties, Property{Name: name, Schema: child})
		}
	}

	reqVal := v.LookupPath(cue.ParsePath("required"))
	if reqVal.Exists() {
		names, err := stringList(reqVal)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, ok := obj.Property(name); !ok {
				return nil, &CompileError{
					Field:   "required",
					Message: fmt.Sprintf("required field %q is not a declared property", name),
					Pos:     reqVal.Pos(),
				}
			}
		}
		obj.Required = names
	}

	addVal := v.LookupPath(cue.ParsePath("additionalProperties"))
	if addVal.Exists() {
		open, err := addVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj.Closed = !open
	}

	return obj, nil
}

func compileString(v cue.Value) (*String, error) {
	s := &String{}

	enumVal := v.LookupPath(cue.ParsePath("enum"))
	if enumVal.Exists() {
		values, err := stringList(enumVal)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, &CompileError{Field: "enum", Message: "enum must not be empty", Pos: enumVal.Pos()}
		}
		s.Enum = values
	}

	n, err := positiveInt(v, "maxLength")
	if err != nil {
		return nil, err
	}
	s.MaxLength = n
	return s, nil
}

func compileArray(v cue.Value) (*Array, error) {
	arr := &Array{}

	itemsVal := v.LookupPath(cue.ParsePath("items"))
	if itemsVal.Exists() {
		items, err := Compile(itemsVal)
		if err != nil {
			return nil, wrapField("items", err)
		}
		arr.Items = items
	}

	n, err := positiveInt(v, "maxItems")
	if err != nil {
		return nil, err
	}
	arr.MaxItems = n
	return arr, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func positiveInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if n <= 0 {
		return 0, &CompileError{Field: field, Message: "must be a positive integer", Pos: fv.Pos()}
	}
	return int(n), nil
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// wrapField prefixes the field of a nested CompileError with its parent property.
func wrapField(parent string, err error) error {
	ce, ok := err.(*CompileError)
	if !ok {
		return err
	}
	return &CompileError{Field: parent + "." + ce.Field, Message: ce.Message, Pos: ce.Pos}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
