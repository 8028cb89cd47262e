package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/schema"
)

// ConsentOptions holds flags for the consent command.
type ConsentOptions struct {
	*RootOptions
	Status string
	Scopes []string
	At     string
}

// ConsentResult is the output of consent.
type ConsentResult struct {
	LearnerID string          `json:"learner_id"`
	Consent   consent.Consent `json:"consent"`
	Head      string          `json:"head"`
	Entries   int             `json:"entries"`
}

// Text implements Texter.
func (r ConsentResult) Text() string {
	return fmt.Sprintf("✓ Consent for %s is %s %v (%d audit entries)", r.LearnerID, r.Consent.Status, r.Consent.Scopes, r.Entries)
}

// NewConsentCommand creates the consent command.
func NewConsentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consent <learner-id>",
		Short: "Replace a learner's consent",
		Long: `Replace a learner's consent and record the change in the audit ledger.

Examples:
  pk1 consent L1 --status revoked
  pk1 consent L1 --status granted --scopes profile.read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsent(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "consent status (granted|revoked|limited)")
	_ = cmd.MarkFlagRequired("status")
	cmd.Flags().StringSliceVar(&opts.Scopes, "scopes", nil, "consent scopes")
	cmd.Flags().StringVar(&opts.At, "at", "", "consent timestamp (defaults to now)")

	return cmd
}

func runConsent(opts *ConsentOptions, learnerID string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	c := consent.Consent{Status: consent.Status(opts.Status), Scopes: opts.Scopes, Timestamp: timestampOr(opts.At)}
	if !c.Status.Valid() {
		return fail(f, ErrCodeInvalidInput, NewExitError(ExitCommandError, fmt.Sprintf("invalid consent status %q", opts.Status)))
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

	st, l, err = k.SetConsent(st, l, c)
	if err != nil {
		if schema.IsValidationError(err) {
			return fail(f, ErrCodeInvalid, WrapExitError(ExitFailure, "consent rejected", err))
		}
		return fail(f, ErrCodeGeneric, err)
	}
	if err := saveLearner(ctx, s, st, l); err != nil {
		return fail(f, ErrCodeStore, err)
	}

	return f.Success(ConsentResult{LearnerID: learnerID, Consent: st.Record.Consent, Head: l.Head, Entries: l.Len()})
}
