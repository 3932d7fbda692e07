package cli

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/deltastate/internal/metrics"
	"github.com/roach88/deltastate/internal/stream"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Metrics bool
}

// ReplayOutput is the result of replaying a stream.
type ReplayOutput struct {
	ID      string            `json:"id"`
	Schema  string            `json:"schema"`
	Summary stream.Summary    `json:"summary"`
	State   map[string]uint64 `json:"state"`
	Metrics string            `json:"metrics,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <stream-file>",
		Short: "Fold a delta stream into a fresh object",
		Long: `Decode a delta stream, fold every frame into a fresh object of the
stream's schema and print the final state of each field.

With --metrics, the per-field counters collected during the replay are
printed in the Prometheus text format.

Examples:
  deltastate replay price_tick.dstm
  deltastate replay price_tick.dstm --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print replay metrics")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open stream file", err)
	}
	defer f.Close()

	s, err := stream.Decode(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode stream", err)
	}

	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}
	obj, err := s.NewObject(cat)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve stream schema", err)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up metrics", err)
	}

	logger := formatter.Logger()
	replayer := stream.NewReplayer(obj,
		stream.WithObserver(m),
		stream.WithReplayLogger(logger),
	)
	sum, err := replayer.Replay(cmd.Context(), s.Frames)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	formatter.VerboseLog("replayed %d frame(s) from %s", sum.Frames, path)

	out := ReplayOutput{
		ID:      s.ID,
		Schema:  obj.Schema().Name(),
		Summary: sum,
		State:   obj.State(),
	}
	if opts.Metrics {
		var buf bytes.Buffer
		if err := metrics.WriteText(&buf, reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		out.Metrics = buf.String()
	}

	return formatter.Emit(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ replayed %s [%s]\n", out.ID, out.Schema)
		fmt.Fprintf(w, "  frames=%d loads=%d accumulates=%d rollbacks=%d undone=%d evictions=%d\n",
			sum.Frames, sum.Loads, sum.Accumulates, sum.Rollbacks, sum.Undone, sum.Evictions)
		for _, name := range slices.Sorted(maps.Keys(out.State)) {
			fmt.Fprintf(w, "  final %s = 0x%x\n", name, out.State[name])
		}
		if out.Metrics != "" {
			fmt.Fprintln(w)
			fmt.Fprint(w, out.Metrics)
		}
	})
}
