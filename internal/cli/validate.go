package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/schema"
)

// Document kinds accepted by validate.
const (
	KindRecord = "record"
	KindDelta  = "delta"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Kind       string
	SchemaPath string
	CUEPath    string
}

// ValidateResult is the output of validate.
type ValidateResult struct {
	File   string `json:"file"`
	Schema string `json:"schema"`
	Valid  bool   `json:"valid"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Text implements Texter.
func (r ValidateResult) Text() string {
	if r.Valid {
		return fmt.Sprintf("✓ %s is a valid %s", r.File, r.Schema)
	}
	return fmt.Sprintf("✗ %s: %s: %s", r.File, r.Path, r.Reason)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document.json|->",
		Short: "Validate a JSON document against a schema",
		Long: `Validate a JSON document against the built-in record or delta schema,
or against a definition in a CUE file.

Examples:
  pk1 validate record.json
  pk1 validate --kind delta delta.json
  pk1 validate --schema custom.cue --path learner doc.json

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", KindRecord, "built-in schema (record|delta)")
	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "CUE schema file")
	cmd.Flags().StringVar(&opts.CUEPath, "path", "", "CUE value path within --schema")

	return cmd
}

func runValidate(opts *ValidateOptions, file string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	node, name, err := opts.schemaNode()
	if err != nil {
		return fail(f, ErrCodeInvalidInput, err)
	}
	doc, err := readJSON(file, cmd.InOrStdin())
	if err != nil {
		return fail(f, ErrCodeInvalidInput, err)
	}

	result := ValidateResult{File: file, Schema: name, Valid: true}
	if ve := schema.Validate(node, doc); ve != nil {
		result.Valid = false
		result.Path = ve.Path
		result.Reason = ve.Reason
		_ = f.Error(ErrCodeInvalid, ve.Error(), result)
		return WrapExitError(ExitFailure, "validation failed", ve)
	}
	return f.Success(result)
}

func (o *ValidateOptions) schemaNode() (schema.Node, string, error) {
	if o.SchemaPath != "" {
		if o.CUEPath == "" {
			return nil, "", NewExitError(ExitCommandError, "--path is required with --schema")
		}
		src, err := os.ReadFile(o.SchemaPath)
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "failed to read schema", err)
		}
		node, err := schema.CompileSource(o.SchemaPath, src, o.CUEPath)
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "failed to compile schema", err)
		}
		return node, o.CUEPath, nil
	}

	set, err := schema.Builtin()
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to load built-in schemas", err)
	}
	switch o.Kind {
	case KindRecord:
		return set.Record, KindRecord, nil
	case KindDelta:
		return set.Delta, KindDelta, nil
	default:
		return nil, "", NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be %s or %s", o.Kind, KindRecord, KindDelta))
	}
}
