package cli

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/imacdo2212/EdTech/internal/config"
	"github.com/imacdo2212/EdTech/internal/logging"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/store"
)

// IDGenerator produces learner identifiers for init.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random UUIDv4 learner ids.
type UUIDGenerator struct{}

// Generate returns a new UUID string.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// IDGen defaults to UUIDGenerator.
	IDGen IDGenerator

	// Resolved by PersistentPreRunE.
	Config config.Config
	Logger zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pk1 CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts; tests use
// it to inject a fixed IDGenerator.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	if opts.IDGen == nil {
		opts.IDGen = UUIDGenerator{}
	}

	cmd := &cobra.Command{
		Use:   "pk1",
		Short: "PK1 - learner profile kernel",
		Long: `Maintain consent-gated learner profiles.

Producers submit deltas that are validated, adapted and merged under
confidence arbitration; every operation is recorded in a hash-linked audit
ledger stored alongside the profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to pk1.toml (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides store.path)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewConsentCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// resolve validates global flags and loads configuration and logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	if o.Database != "" {
		cfg.Store.Path = o.Database
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	o.Config = cfg
	o.Logger = logging.New(cfg.Log, cmd.ErrOrStderr())
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) kernel() (*pk1.Kernel, error) {
	k, err := pk1.New(
		pk1.WithLimits(o.Config.Limits.PK1Limits()),
		pk1.WithLogger(o.Logger),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create kernel", err)
	}
	return k, nil
}

func (o *RootOptions) openStore() (*store.Store, error) {
	s, err := store.Open(o.Config.Store.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return s, nil
}
