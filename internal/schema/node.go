package schema

// Node is a compiled schema node. Only the types in this file implement it.
type Node interface {
	typeName() string
}

// Property is a named member of an object schema.
type Property struct {
	Name   string
	Schema Node
}

// Object validates JSON objects.
type Object struct {
	// Properties in declaration order; validation visits them in this order.
	Properties []Property

	// Required lists member names that must be present.
	Required []string

	// Closed mirrors additionalProperties: false.
	Closed bool
}

func (*Object) typeName() string { return "object" }

// Property returns the schema declared for name.
func (o *Object) Property(name string) (Node, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// String validates JSON strings.
type String struct {
	Enum []string

	// MaxLength in UTF-16 code units; zero means unbounded.
	MaxLength int
}

func (*String) typeName() string { return "string" }

// Number validates JSON numbers.
type Number struct{}

func (*Number) typeName() string { return "number" }

// Boolean validates JSON booleans.
type Boolean struct{}

func (*Boolean) typeName() string { return "boolean" }

// Array validates JSON arrays.
type Array struct {
	// Items is applied to every element when non-nil.
	Items Node

	// MaxItems of zero means unbounded.
	MaxItems int
}

func (*Array) typeName() string { return "array" }
