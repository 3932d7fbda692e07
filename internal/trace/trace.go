package trace

import "fmt"

// Operation names recorded in events.
const (
	OpLoad        = "load"
	OpAccumulate  = "accumulate"
	OpRollback    = "rollback"
	OpReconstruct = "reconstruct"
	OpStatus      = "status"
)

// Event is the state of one field right after an operation on it.
type Event struct {
	Seq   int64
	Op    string
	Field string
	Width int

	// Arg is the loaded value or accumulated delta. Only load and accumulate
	// carry it.
	Arg uint64
	// Count is the requested rollback depth; Undone is how many deltas the
	// rollback actually removed.
	Count  int
	Undone int

	Base        uint64
	Accumulator uint64
	State       uint64
	HistorySize int
	Zero        bool
}

// Trace is the ordered event record of one run.
type Trace struct {
	RunID    string
	Scenario string
	Schema   string
	Events   []Event
}

// FormatWord renders v as 0x-prefixed hex zero-padded to width bits.
func FormatWord(v uint64, width int) string {
	digits := width / 4
	if digits < 1 {
		digits = 1
	}
	return fmt.Sprintf("0x%0*x", digits, v)
}

// Value returns e as a canonical JSON value.
func (e Event) Value() map[string]any {
	obj := map[string]any{
		"seq":          e.Seq,
		"op":           e.Op,
		"field":        e.Field,
		"width":        e.Width,
		"base":         FormatWord(e.Base, e.Width),
		"accumulator":  FormatWord(e.Accumulator, e.Width),
		"state":        FormatWord(e.State, e.Width),
		"history_size": e.HistorySize,
		"zero":         e.Zero,
	}
	switch e.Op {
	case OpLoad, OpAccumulate:
		obj["arg"] = FormatWord(e.Arg, e.Width)
	case OpRollback:
		obj["count"] = e.Count
		obj["undone"] = e.Undone
	}
	return obj
}

// Value returns t as a canonical JSON value.
func (t Trace) Value() map[string]any {
	events := make([]any, len(t.Events))
	for i, e := range t.Events {
		events[i] = e.Value()
	}
	return map[string]any{
		"run_id":   t.RunID,
		"scenario": t.Scenario,
		"schema":   t.Schema,
		"events":   events,
	}
}

// MarshalCanonical returns the canonical JSON encoding of t.
func (t Trace) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(t.Value())
}

// Count returns how many events have the given op.
func (t Trace) Count(op string) int {
	n := 0
	for _, e := range t.Events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent event for field.
func (t Trace) Last(field string) (Event, bool) {
	for i := len(t.Events) - 1; i >= 0; i-- {
		if t.Events[i].Field == field {
			return t.Events[i], true
		}
	}
	return Event{}, false
}
