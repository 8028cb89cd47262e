package schema

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"

	"github.com/imacdo2212/EdTech/internal/canon"
)

// Reasons shared by every object node.
const (
	ReasonMissingRequired = "missing required field"
	ReasonUnknownField    = "unknown field not allowed"
)

// ValidationError describes the first schema violation found.
type ValidationError struct {
	// Path is the dotted location of the offending value ("" for the root).
	Path string

	// Reason is a human-readable description.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// IsValidationError returns true if err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks value against node and returns the first violation, or nil.
func Validate(node Node, value canon.Value) *ValidationError {
	return validate(node, value, "")
}

func validate(node Node, value canon.Value, path string) *ValidationError {
	switch s := node.(type) {
	case *Object:
		return validateObject(s, value, path)
	case *String:
		return validateString(s, value, path)
	case *Number:
		if _, ok := value.(canon.Number); !ok {
			return typeError(path, "number", value)
		}
	case *Boolean:
		if _, ok := value.(canon.Bool); !ok {
			return typeError(path, "boolean", value)
		}
	case *Array:
		return validateArray(s, value, path)
	default:
		return &ValidationError{Path: path, Reason: fmt.Sprintf("unsupported schema node %T", node)}
	}
	return nil
}

func validateObject(s *Object, value canon.Value, path string) *ValidationError {
	obj, ok := value.(canon.Object)
	if !ok {
		return typeError(path, "object", value)
	}

	for _, name := range s.Required {
		if _, present := obj[name]; !present {
			return &ValidationError{Path: join(path, name), Reason: ReasonMissingRequired}
		}
	}

	if s.Closed {
		for _, key := range obj.SortedKeys() {
			if _, declared := s.Property(key); !declared {
				return &ValidationError{Path: join(path, key), Reason: ReasonUnknownField}
			}
		}
	}

	for _, prop := range s.Properties {
		child, present := obj[prop.Name]
		if !present {
			continue
		}
		if err := validate(prop.Schema, child, join(path, prop.Name)); err != nil {
			return err
		}
	}
	return nil
}

func validateString(s *String, value canon.Value, path string) *ValidationError {
	str, ok := value.(canon.String)
	if !ok {
		return typeError(path, "string", value)
	}
	if len(s.Enum) > 0 && !slices.Contains(s.Enum, string(str)) {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("must be one of %v", s.Enum)}
	}
	if s.MaxLength > 0 {
		if n := len(utf16.Encode([]rune(string(str)))); n > s.MaxLength {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("too long (%d > %d)", n, s.MaxLength)}
		}
	}
	return nil
}

func validateArray(s *Array, value canon.Value, path string) *ValidationError {
	arr, ok := value.(canon.Array)
	if !ok {
		return typeError(path, "array", value)
	}
	if s.MaxItems > 0 && len(arr) > s.MaxItems {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("too many items (%d > %d)", len(arr), s.MaxItems)}
	}
	if s.Items == nil {
		return nil
	}
	for i, elem := range arr {
		if err := validate(s.Items, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func typeError(path, want string, got canon.Value) *ValidationError {
	return &ValidationError{
		Path:   path,
		Reason: fmt.Sprintf("must be %s, got %s", want, canon.KindOf(got)),
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
