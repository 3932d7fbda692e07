package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/deltastate/internal/object"
	"github.com/roach88/deltastate/internal/schema"
	"github.com/roach88/deltastate/internal/testutil"
	"github.com/roach88/deltastate/internal/trace"
)

// Option configures a run.
type Option func(*Harness)

// WithCatalog resolves scenario schemas against cat instead of the builtin
// catalogue.
func WithCatalog(cat *schema.Catalog) Option {
	return func(h *Harness) { h.catalog = cat }
}

// WithLogger sets the logger used for per-step debug output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Harness executes one scenario against a fresh object.
type Harness struct {
	catalog *schema.Catalog
	clock   *testutil.DeterministicClock
	runIDs  *testutil.FixedRunIDGenerator
	logger  *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Every run starts from a fresh object built from the scenario's schema and a
// reset logical clock, so the same scenario always yields the same trace and
// fingerprint. Failed expectations are reported in the result; an error is
// returned only when the scenario cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewDeterministicClock(),
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	s, err := object.Resolve(h.catalog, scenario.Schema, scenario.Width, scenario.MaxHistory)
	if err != nil {
		return nil, err
	}
	obj, err := object.New(s)
	if err != nil {
		return nil, fmt.Errorf("build object: %w", err)
	}

	result := NewResult()
	result.Trace = trace.Trace{
		RunID:    h.runIDs.Generate(),
		Scenario: scenario.Name,
		Schema:   s.Name(),
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, obj, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, obj, scenario.Assertions) {
		result.AddError(msg)
	}

	result.State = obj.State()
	result.Fingerprint, err = trace.Fingerprint(result.Trace)
	if err != nil {
		return nil, err
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"schema", s.Name(),
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// executeStep applies one step, records its event and checks its expectations.
func (h *Harness) executeStep(i int, step Step, obj *object.Object, result *Result) error {
	f, err := obj.Field(step.Field)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", i, err)
	}

	ev := trace.Event{Op: step.Op, Field: f.Name()}
	switch step.Op {
	case trace.OpLoad:
		ev.Arg = uint64(*step.Value) & schema.Mask(f.Width())
		f.Load(ev.Arg)
	case trace.OpAccumulate:
		ev.Arg = uint64(*step.Value) & schema.Mask(f.Width())
		f.Accumulate(ev.Arg)
	case trace.OpRollback:
		ev.Count = *step.Count
		ev.Undone = f.Rollback(*step.Count)
	case trace.OpReconstruct:
		if _, err := obj.Reconstruct(f.Name()); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	case trace.OpStatus:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	ev.Seq = h.clock.Next()
	fillEvent(&ev, f)
	result.Trace.Events = append(result.Trace.Events, ev)

	if step.Expect != nil {
		label := fmt.Sprintf("steps[%d] %s %s", i, step.Op, f.Name())
		for _, msg := range checkExpect(label, step.Expect, ev) {
			result.AddError(msg)
		}
	}

	h.logger.Debug("step executed",
		"step", i,
		"op", step.Op,
		"field", f.Name(),
		"state", trace.FormatWord(ev.State, ev.Width),
		"history_size", ev.HistorySize,
	)
	return nil
}

// fillEvent copies the observable state of f into ev.
func fillEvent(ev *trace.Event, f object.Field) {
	ev.Width = f.Width()
	ev.Base = f.InitialState()
	ev.Accumulator = f.Accumulator()
	ev.State = f.Reconstruct()
	ev.HistorySize = f.HistorySize()
	ev.Zero = f.IsAccumulatorZero()
}
