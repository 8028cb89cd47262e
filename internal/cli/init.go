package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/schema"
	"github.com/imacdo2212/EdTech/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	LearnerID string
	Status    string
	Scopes    []string
	At        string
}

// InitResult is the output of init.
type InitResult struct {
	LearnerID string          `json:"learner_id"`
	Consent   consent.Consent `json:"consent"`
	Head      string          `json:"head"`
}

// Text implements Texter.
func (r InitResult) Text() string {
	return fmt.Sprintf("✓ Created learner %s (consent %s %v)", r.LearnerID, r.Consent.Status, r.Consent.Scopes)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a learner with initial consent",
		Long: `Create a learner record with default identity and the given consent.

A random learner id is generated unless --learner is set. Creating a learner
that already exists is an error.

Examples:
  pk1 init --db ./pk1.db
  pk1 init --learner L1 --scopes profile.write --at 2025-01-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LearnerID, "learner", "", "learner id (generated when empty)")
	cmd.Flags().StringVar(&opts.Status, "status", string(consent.Granted), "consent status (granted|revoked|limited)")
	cmd.Flags().StringSliceVar(&opts.Scopes, "scopes",
		[]string{consent.ScopeProfileRead, consent.ScopeProfileWrite}, "consent scopes")
	cmd.Flags().StringVar(&opts.At, "at", "", "consent timestamp (defaults to now)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	learnerID := opts.LearnerID
	if learnerID == "" {
		learnerID = opts.IDGen.Generate()
	}
	c := consent.Consent{Status: consent.Status(opts.Status), Scopes: opts.Scopes, Timestamp: timestampOr(opts.At)}
	if !c.Status.Valid() {
		return fail(f, ErrCodeInvalidInput, NewExitError(ExitCommandError, fmt.Sprintf("invalid consent status %q", opts.Status)))
	}

	k, err := opts.kernel()
	if err != nil {
		return fail(f, ErrCodeGeneric, err)
	}
	st := pk1.Init(learnerID, c)
	if err := k.CheckRecord(st.Record); err != nil {
		if schema.IsValidationError(err) {
			return fail(f, ErrCodeInvalid, WrapExitError(ExitFailure, "initial record is invalid", err))
		}
		return fail(f, ErrCodeGeneric, err)
	}

	s, err := opts.openStore()
	if err != nil {
		return fail(f, ErrCodeStore, err)
	}
	defer s.Close()

	_, _, err = s.Load(ctx, learnerID)
	if err == nil {
		return fail(f, ErrCodeInvalidInput, NewExitError(ExitCommandError, fmt.Sprintf("learner %s already exists", learnerID)))
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fail(f, codeFor(err), WrapExitError(ExitCommandError, "failed to check learner", err))
	}

	l := audit.Genesis()
	if err := saveLearner(ctx, s, st, l); err != nil {
		return fail(f, ErrCodeStore, err)
	}
	f.VerboseLog("Stored learner %s in %s", learnerID, opts.Config.Store.Path)

	return f.Success(InitResult{LearnerID: learnerID, Consent: st.Record.Consent, Head: l.Head})
}
