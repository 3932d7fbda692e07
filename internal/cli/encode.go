package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/deltastate/internal/harness"
	"github.com/roach88/deltastate/internal/stream"
	"github.com/roach88/deltastate/internal/trace"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Output      string
	Compression string
	ID          string

	// RunIDs generates the stream id when neither --id nor the scenario sets
	// one. Defaults to UUIDv7Generator.
	RunIDs trace.RunIDGenerator
}

// EncodeOutput describes a written stream.
type EncodeOutput struct {
	File        string `json:"file"`
	ID          string `json:"id"`
	Schema      string `json:"schema"`
	Frames      int    `json:"frames"`
	Compression string `json:"compression"`
	Bytes       int64  `json:"bytes"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <scenario.yaml>",
		Short: "Write a scenario's operations as a delta stream",
		Long: `Convert the load, accumulate and rollback steps of a scenario into a
binary delta stream. Reconstruct and status steps are dropped.

Examples:
  deltastate encode scenarios/price_tick.yaml -o price_tick.dstm
  deltastate encode scenarios/price_tick.yaml -o price_tick.dstm --compression lz4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], cmd)
		},
	}

	compression := rootOpts.Compression
	if compression == "" {
		compression = stream.CompressionZstd.String()
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "stream file to write (required)")
	cmd.Flags().StringVar(&opts.Compression, "compression", compression, "body compression (none|lz4|zstd)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "stream id (defaults to the scenario run_id, then a new UUIDv7)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runEncode(opts *EncodeOptions, path string, cmd *cobra.Command) (err error) {
	formatter := newFormatter(opts.RootOptions, cmd)

	compression, err := stream.ParseCompression(opts.Compression)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid compression", err)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	s := stream.FromScenario(scenario)
	switch {
	case opts.ID != "":
		s.ID = opts.ID
	case s.ID == "":
		gen := opts.RunIDs
		if gen == nil {
			gen = trace.UUIDv7Generator{}
		}
		s.ID = gen.Generate()
	}

	// Resolve up front so a stream for an unknown schema is never written.
	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}
	obj, err := s.NewObject(cat)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve stream schema", err)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create stream file", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "failed to close stream file", closeErr)
		}
	}()

	if err := stream.Encode(f, s, compression); err != nil {
		return WrapExitError(ExitCommandError, "failed to encode stream", err)
	}
	info, err := f.Stat()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to stat stream file", err)
	}

	out := EncodeOutput{
		File:        opts.Output,
		ID:          s.ID,
		Schema:      obj.Schema().Name(),
		Frames:      len(s.Frames),
		Compression: compression.String(),
		Bytes:       info.Size(),
	}
	return formatter.Emit(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ wrote %d frame(s) for %s to %s (%s, %d bytes)\n",
			out.Frames, out.Schema, out.File, out.Compression, out.Bytes)
	})
}
