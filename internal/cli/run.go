package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/deltastate/internal/harness"
	"github.com/roach88/deltastate/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	RunID string // overrides the scenario's run_id
}

// RunOutput is the result of a single scenario run.
type RunOutput struct {
	Scenario    string            `json:"scenario"`
	Schema      string            `json:"schema"`
	RunID       string            `json:"run_id"`
	Pass        bool              `json:"pass"`
	Fingerprint string            `json:"fingerprint"`
	Errors      []string          `json:"errors,omitempty"`
	State       map[string]uint64 `json:"state"`
	Trace       json.RawMessage   `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and print its trace",
		Long: `Execute one scenario against a fresh object and print its trace and
fingerprint. The same scenario and run id always produce the same fingerprint.

Exit codes:
  0 - Scenario passed
  1 - An expectation or assertion failed
  2 - Command error (unreadable scenario, unknown schema or field)

Examples:
  deltastate run scenarios/rollback.yaml
  deltastate run scenarios/price_tick.yaml --run-id run-0001 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run id recorded in the trace (overrides the scenario)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.RunID != "" {
		scenario.RunID = opts.RunID
	}

	result, err := harness.Run(scenario,
		harness.WithCatalog(cat),
		harness.WithLogger(formatter.Logger()),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to execute scenario", err)
	}

	canonical, err := result.Trace.MarshalCanonical()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode trace", err)
	}

	out := RunOutput{
		Scenario:    result.Trace.Scenario,
		Schema:      result.Trace.Schema,
		RunID:       result.Trace.RunID,
		Pass:        result.Pass,
		Fingerprint: result.Fingerprint,
		Errors:      result.Errors,
		State:       result.State,
		Trace:       canonical,
	}
	text := func(w io.Writer) { writeRunText(w, out, result.Trace) }

	if !result.Pass {
		return formatter.Fail("E_SCENARIO_FAILED", fmt.Sprintf("scenario %s failed", scenario.Name), out, text)
	}
	return formatter.Emit(out, text)
}

func writeRunText(w io.Writer, out RunOutput, t trace.Trace) {
	fmt.Fprintf(w, "%s %s [%s] run=%s\n", passMark(out.Pass), out.Scenario, out.Schema, out.RunID)
	for _, ev := range t.Events {
		fmt.Fprintf(w, "  %s\n", formatEvent(ev))
	}
	for _, name := range slices.Sorted(maps.Keys(out.State)) {
		fmt.Fprintf(w, "  final %s = 0x%x\n", name, out.State[name])
	}
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	fmt.Fprintf(w, "  fingerprint %s\n", out.Fingerprint)
}

// formatEvent renders one trace event on a single line.
func formatEvent(ev trace.Event) string {
	line := fmt.Sprintf("#%d %-11s %s", ev.Seq, ev.Op, ev.Field)
	switch ev.Op {
	case trace.OpLoad, trace.OpAccumulate:
		line += " arg=" + trace.FormatWord(ev.Arg, ev.Width)
	case trace.OpRollback:
		line += fmt.Sprintf(" count=%d undone=%d", ev.Count, ev.Undone)
	}
	return line + fmt.Sprintf(" state=%s acc=%s history=%d",
		trace.FormatWord(ev.State, ev.Width),
		trace.FormatWord(ev.Accumulator, ev.Width),
		ev.HistorySize,
	)
}

func passMark(pass bool) string {
	if pass {
		return "✓"
	}
	return "✗"
}
