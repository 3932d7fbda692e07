package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/deltastate/internal/object"
	"github.com/roach88/deltastate/internal/trace"
)

// AssertionError is returned when an assertion fails. It carries the trace so
// the failure can be read in context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    trace.Trace
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace.Events {
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", ev.Seq, ev.Op, ev.Field, trace.FormatWord(ev.State, ev.Width))
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against the finished run and
// returns the failure messages.
func EvaluateAssertions(result *Result, obj *object.Object, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(result.Trace, obj, a)
		case AssertOpCount:
			err = assertOpCount(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertFinalState compares the field's current observables with the
// expectation.
func assertFinalState(tr trace.Trace, obj *object.Object, a Assertion) error {
	f, err := obj.Field(a.Field)
	if err != nil {
		return err
	}

	ev := trace.Event{Field: f.Name()}
	fillEvent(&ev, f)

	mismatches := checkExpect("final_state "+f.Name(), a.Expect, ev)
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: describeExpect(a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    tr,
	}
}

// assertOpCount checks that op appears exactly Count times in the trace.
func assertOpCount(tr trace.Trace, a Assertion) error {
	got := tr.Count(a.Op)
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOpCount,
		Expected: fmt.Sprintf("%s x%d", a.Op, *a.Count),
		Actual:   fmt.Sprintf("%s x%d", a.Op, got),
		Trace:    tr,
	}
}

// checkExpect returns one message per expectation ev does not meet.
func checkExpect(label string, exp *Expect, ev trace.Event) []string {
	var out []string
	word := func(name string, want *Word, got uint64) {
		if want != nil && uint64(*want) != got {
			out = append(out, fmt.Sprintf("%s: %s expected %s, got %s",
				label, name, trace.FormatWord(uint64(*want), ev.Width), trace.FormatWord(got, ev.Width)))
		}
	}
	count := func(name string, want *int, got int) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: %s expected %d, got %d", label, name, *want, got))
		}
	}

	word("state", exp.State, ev.State)
	word("base", exp.Base, ev.Base)
	word("accumulator", exp.Accumulator, ev.Accumulator)
	count("history_size", exp.HistorySize, ev.HistorySize)
	count("undone", exp.Undone, ev.Undone)
	if exp.Zero != nil && *exp.Zero != ev.Zero {
		out = append(out, fmt.Sprintf("%s: zero expected %t, got %t", label, *exp.Zero, ev.Zero))
	}
	return out
}

func describeExpect(exp *Expect) string {
	var parts []string
	if exp.State != nil {
		parts = append(parts, "state="+exp.State.String())
	}
	if exp.Base != nil {
		parts = append(parts, "base="+exp.Base.String())
	}
	if exp.Accumulator != nil {
		parts = append(parts, "accumulator="+exp.Accumulator.String())
	}
	if exp.HistorySize != nil {
		parts = append(parts, fmt.Sprintf("history_size=%d", *exp.HistorySize))
	}
	if exp.Zero != nil {
		parts = append(parts, fmt.Sprintf("zero=%t", *exp.Zero))
	}
	return strings.Join(parts, " ")
}
