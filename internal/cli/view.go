package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

// ViewResult is the output of view.
type ViewResult struct {
	LearnerID  string           `json:"learner_id"`
	ProducerID string           `json:"producer_id"`
	Response   pk1.ViewResponse `json:"response"`
	Head       string           `json:"head"`
}

// Text implements Texter.
func (r ViewResult) Text() string {
	if r.Response.Refusal != nil {
		return fmt.Sprintf("%s\n  cause: %s", r.Response.Refusal.Termination, r.Response.Refusal.Cause)
	}
	b, err := canon.Marshal(r.Response.Profile)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <learner-id> <producer-id>",
		Short: "Show the view of a learner visible to a producer",
		Long: `Show the least-privilege projection of a learner record for one producer.
Every view request is recorded in the audit ledger.

Exit codes:
  0 - View served
  1 - View refused (missing profile.read)
  2 - Command error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runView(opts *RootOptions, learnerID, producerID string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

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

	l, resp, err := k.GetView(st, l, producerID)
	if err != nil {
		return fail(f, ErrCodeGeneric, err)
	}
	if err := saveLearner(ctx, s, st, l); err != nil {
		return fail(f, ErrCodeStore, err)
	}

	result := ViewResult{LearnerID: learnerID, ProducerID: producerID, Response: resp, Head: l.Head}
	if resp.Refusal != nil {
		_ = f.Error(ErrCodeRefused, resp.Refusal.Termination, result)
		return NewExitError(ExitFailure, fmt.Sprintf("view refused: %s", resp.Refusal.Cause))
	}
	return f.Success(result)
}
