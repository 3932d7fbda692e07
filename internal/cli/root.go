package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/deltastate/internal/config"
	"github.com/roach88/deltastate/internal/schema"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	SchemaDir string // extra CUE schemas merged over the builtin catalogue

	// Compression is the default codec for encode, taken from the environment.
	Compression string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the deltastate CLI. Flag
// defaults come from DELTASTATE_* environment variables.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Config{Format: "text", Compression: "zstd"}
	}
	opts := &RootOptions{Compression: cfg.Compression}

	cmd := &cobra.Command{
		Use:   "deltastate",
		Short: "XOR delta-state registers",
		Long: `deltastate folds XOR deltas into registers described by CUE schemas.

Scenarios script register operations and check their results; delta streams
carry the same operations in a compact binary form for replay.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schemas", cfg.SchemaDir, "directory of CUE schemas added to the builtin catalogue")

	cmd.AddCommand(NewSchemasCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// loadCatalog returns the builtin catalogue merged with --schemas, if set.
func loadCatalog(opts *RootOptions) (*schema.Catalog, error) {
	cat, err := schema.Builtin()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load builtin schemas", err)
	}
	if opts.SchemaDir == "" {
		return cat, nil
	}

	result, errs := schema.LoadDir(opts.SchemaDir, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load schemas", errors.Join(errs...))
	}
	if err := cat.Merge(result.Catalog); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schemas", err)
	}
	return cat, nil
}
