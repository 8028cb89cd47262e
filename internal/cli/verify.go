package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/store"
)

// LedgerStatus is the verification outcome for one learner.
type LedgerStatus struct {
	LearnerID string `json:"learner_id"`
	OK        bool   `json:"ok"`
	Head      string `json:"head,omitempty"`
	Entries   int    `json:"entries"`
	Error     string `json:"error,omitempty"`
}

// VerifyResult is the output of verify.
type VerifyResult struct {
	Learners []LedgerStatus `json:"learners"`
	Broken   int            `json:"broken"`
}

// Text implements Texter.
func (r VerifyResult) Text() string {
	if len(r.Learners) == 0 {
		return "No learners found."
	}
	var b strings.Builder
	for _, s := range r.Learners {
		if s.OK {
			fmt.Fprintf(&b, "✓ %s: %d entries, head %s\n", s.LearnerID, s.Entries, s.Head)
		} else {
			fmt.Fprintf(&b, "✗ %s: %s\n", s.LearnerID, s.Error)
		}
	}
	fmt.Fprintf(&b, "%d verified, %d broken", len(r.Learners)-r.Broken, r.Broken)
	return b.String()
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [learner-id...]",
		Short: "Verify stored audit ledgers",
		Long: `Recompute every stored audit entry hash and check the chain links.
With no arguments every learner in the database is verified.

Exit codes:
  0 - All ledgers verify
  1 - At least one ledger is broken
  2 - Command error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runVerify(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	s, err := opts.openStore()
	if err != nil {
		return fail(f, ErrCodeStore, err)
	}
	defer s.Close()

	if len(ids) == 0 {
		ids, err = s.LearnerIDs(ctx)
		if err != nil {
			return fail(f, ErrCodeStore, WrapExitError(ExitCommandError, "failed to list learners", err))
		}
	}

	result := VerifyResult{Learners: make([]LedgerStatus, 0, len(ids))}
	for _, id := range ids {
		_, l, err := s.Load(ctx, id)
		switch {
		case err == nil:
			result.Learners = append(result.Learners, LedgerStatus{LearnerID: id, OK: true, Head: l.Head, Entries: l.Len()})
		case audit.IsChainError(err):
			result.Broken++
			result.Learners = append(result.Learners, LedgerStatus{LearnerID: id, Error: err.Error()})
		case errors.Is(err, store.ErrNotFound):
			return fail(f, ErrCodeNotFound, WrapExitError(ExitCommandError, fmt.Sprintf("learner %s not found", id), err))
		default:
			return fail(f, ErrCodeStore, WrapExitError(ExitCommandError, "failed to load learner", err))
		}
		f.VerboseLog("Verified %s", id)
	}

	if result.Broken > 0 {
		_ = f.Error(ErrCodeChainBroken, fmt.Sprintf("%d ledger(s) failed verification", result.Broken), result)
		return NewExitError(ExitFailure, "ledger verification failed")
	}
	return f.Success(result)
}
