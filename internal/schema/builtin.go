package schema

import (
	"embed"
	"fmt"
	"sync"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Set holds the compiled schemas PK1 validates against.
type Set struct {
	// Delta is the submit-delta envelope schema.
	Delta *Object

	// Record is the canonical learner record schema.
	Record *Object
}

var (
	builtinOnce sync.Once
	builtinSet  *Set
	builtinErr  error
)

// Builtin returns the embedded schemas, compiled once per process.
func Builtin() (*Set, error) {
	builtinOnce.Do(func() {
		builtinSet, builtinErr = loadBuiltin()
	})
	return builtinSet, builtinErr
}

// MustBuiltin is like Builtin but panics on error.
func MustBuiltin() *Set {
	s, err := Builtin()
	if err != nil {
		panic(err)
	}
	return s
}

func loadBuiltin() (*Set, error) {
	delta, err := loadObject("schemas/delta.cue", "delta")
	if err != nil {
		return nil, err
	}
	record, err := loadObject("schemas/record.cue", "record")
	if err != nil {
		return nil, err
	}
	return &Set{Delta: delta, Record: record}, nil
}

func loadObject(file, path string) (*Object, error) {
	src, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	node, err := CompileSource(file, src, path)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", file, err)
	}
	obj, ok := node.(*Object)
	if !ok {
		return nil, fmt.Errorf("compile %s: %s must be an object schema", file, path)
	}
	return obj, nil
}
