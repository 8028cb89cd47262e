package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/pk1"
)

// SubmitResult is the output of submit.
type SubmitResult struct {
	LearnerID string            `json:"learner_id"`
	Response  pk1.DeltaResponse `json:"response"`
	Head      string            `json:"head"`
	Entries   int               `json:"entries"`
}

// Text implements Texter.
func (r SubmitResult) Text() string {
	var b strings.Builder
	if r.Response.Refusal != nil {
		fmt.Fprintf(&b, "%s\n  cause: %s\n", r.Response.Refusal.Termination, r.Response.Refusal.Cause)
		for _, step := range r.Response.Refusal.NextSteps {
			fmt.Fprintf(&b, "  next: %s\n", step)
		}
	} else {
		fmt.Fprintf(&b, "✓ Delta %s for %s\n", r.Response.Status, r.LearnerID)
		for _, reason := range r.Response.Reasons {
			fmt.Fprintf(&b, "  %s\n", reason)
		}
	}
	fmt.Fprintf(&b, "  audit entries: %d", r.Entries)
	return b.String()
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <learner-id> <delta.json|->",
		Short: "Submit a producer delta",
		Long: `Submit a delta envelope {producer_id, timestamp, scope, payload} for a
learner. The envelope is read from a file, or from stdin when the path is "-".

Exit codes:
  0 - Delta applied or skipped
  1 - Delta refused (schema, size or consent)
  2 - Command error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runSubmit(opts *RootOptions, learnerID, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	raw, err := readJSON(path, cmd.InOrStdin())
	if err != nil {
		return fail(f, ErrCodeInvalidInput, err)
	}

	k, err := opts.kernel()
	if err != nil {
		return fail(f, ErrCodeGeneric, err)
	}
	s, err := opts.openStore()
	if err != nil {
		return fail(f, ErrCodeStore, err)
	}
	defer s.Close()

	st, l, err := loadLearner(ctx, s, learnerID)
	if err != nil {
		return fail(f, codeFor(err), err)
	}

	st, l, resp, err := k.SubmitDelta(st, l, raw)
	if err != nil {
		return fail(f, ErrCodeGeneric, err)
	}
	if err := saveLearner(ctx, s, st, l); err != nil {
		return fail(f, ErrCodeStore, err)
	}

	result := SubmitResult{LearnerID: learnerID, Response: resp, Head: l.Head, Entries: l.Len()}
	if resp.Refusal != nil {
		_ = f.Error(ErrCodeRefused, resp.Refusal.Termination, result)
		return NewExitError(ExitFailure, fmt.Sprintf("delta refused: %s", resp.Refusal.Cause))
	}
	return f.Success(result)
}
