package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/harness"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

// ReplaySummary is the output of replay.
type ReplaySummary struct {
	Scenarios []harness.ReplayResult `json:"scenarios"`
	Failed    int                    `json:"failed"`
}

// Text implements Texter.
func (r ReplaySummary) Text() string {
	var b strings.Builder
	for _, s := range r.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s: %d entries, head %s\n", mark, s.Name, s.Entries, s.Head)
	}
	fmt.Fprintf(&b, "%d passed, %d failed", len(r.Scenarios)-r.Failed, r.Failed)
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml|dir>",
		Short: "Replay scenarios and check determinism",
		Long: `Run each scenario twice against a fresh in-memory kernel and check that
both runs end at the same ledger head and record.

Exit codes:
  0 - All scenarios pass and replay identically
  1 - A scenario failed or diverged
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	files, err := harness.FindScenarios(path)
	if err != nil {
		return fail(f, ErrCodeNotFound, WrapExitError(ExitCommandError, "failed to find scenarios", err))
	}

	summary := ReplaySummary{Scenarios: make([]harness.ReplayResult, 0, len(files))}
	for _, file := range files {
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			return fail(f, ErrCodeInvalidInput, WrapExitError(ExitCommandError, "failed to load scenario", err))
		}
		f.VerboseLog("Replaying %s", file)

		res, err := harness.Replay(scenario, harness.WithKernelOptions(
			pk1.WithLimits(opts.Config.Limits.PK1Limits()),
		))
		if err != nil {
			return fail(f, ErrCodeNondeterministic, WrapExitError(ExitFailure, fmt.Sprintf("replay %s", file), err))
		}
		if !res.Pass {
			summary.Failed++
		}
		summary.Scenarios = append(summary.Scenarios, *res)
	}

	if summary.Failed > 0 {
		_ = f.Error(ErrCodeNondeterministic, fmt.Sprintf("%d scenario(s) failed", summary.Failed), summary)
		return NewExitError(ExitFailure, "replay failed")
	}
	return f.Success(summary)
}
