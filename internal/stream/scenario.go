package stream

import (
	"math"

	"github.com/roach88/deltastate/internal/harness"
	"github.com/roach88/deltastate/internal/trace"
)

// FromScenario converts the mutating steps of a scenario into a stream.
// Reconstruct and status steps only observe state and are dropped.
func FromScenario(sc *harness.Scenario) *Stream {
	s := &Stream{
		ID:         sc.RunID,
		Schema:     sc.Schema,
		Width:      sc.Width,
		MaxHistory: sc.MaxHistory,
		Frames:     make([]Frame, 0, len(sc.Steps)),
	}
	for _, step := range sc.Steps {
		switch step.Op {
		case trace.OpLoad:
			s.Frames = append(s.Frames, Frame{Op: OpLoad, Field: step.Field, Value: uint64(*step.Value)})
		case trace.OpAccumulate:
			s.Frames = append(s.Frames, Frame{Op: OpAccumulate, Field: step.Field, Value: uint64(*step.Value)})
		case trace.OpRollback:
			s.Frames = append(s.Frames, Frame{Op: OpRollback, Field: step.Field, Count: uint32(min(*step.Count, math.MaxUint32))})
		}
	}
	return s
}
