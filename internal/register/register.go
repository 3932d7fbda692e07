package register

import "math/bits"

// DefaultMaxHistory is the history bound used by New.
const DefaultMaxHistory = 4096

// Word is the set of fixed-width unsigned integers a Register can hold.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Register is a delta-state register over the unsigned word type W.
//
// Construct with New or NewWithHistory. The zero value is a register with a
// history bound of 0: it accumulates and reconstructs normally but can never
// roll back.
type Register[W Word] struct {
	base        W
	accumulator W
	history     history[W]
}

// New creates an empty register with DefaultMaxHistory.
func New[W Word]() *Register[W] {
	return NewWithHistory[W](DefaultMaxHistory)
}

// NewWithHistory creates an empty register retaining at most maxHistory deltas
// for rollback. A bound of 0 retains nothing; negative bounds are treated as 0.
func NewWithHistory[W Word](maxHistory int) *Register[W] {
	return &Register[W]{history: newHistory[W](maxHistory)}
}

// Load replaces the base snapshot and discards all applied deltas.
// Rollback capability acquired before the call is lost.
func (r *Register[W]) Load(initial W) {
	r.base = initial
	r.accumulator = 0
	r.history.clear()
}

// Accumulate applies delta. If the history bound is exceeded the oldest delta is
// evicted from history; its effect on the accumulator is kept.
func (r *Register[W]) Accumulate(delta W) {
	r.history.push(delta)
	r.accumulator ^= delta
}

// Reconstruct returns the current state, base ^ accumulator.
func (r *Register[W]) Reconstruct() W {
	return r.base ^ r.accumulator
}

// IsAccumulatorZero reports whether the retained deltas net out to nothing.
func (r *Register[W]) IsAccumulatorZero() bool {
	return r.accumulator == 0
}

// Rollback undoes up to count of the most recently applied deltas that are still
// in history, newest first. Returns the number actually undone. Requests beyond
// the retained history are capped, not rejected.
func (r *Register[W]) Rollback(count int) int {
	undone := 0
	for undone < count {
		delta, ok := r.history.popBack()
		if !ok {
			break
		}
		r.accumulator ^= delta
		undone++
	}
	return undone
}

// Accumulator returns the XOR-fold of applied deltas.
func (r *Register[W]) Accumulator() W {
	return r.accumulator
}

// InitialState returns the base loaded by the last Load.
func (r *Register[W]) InitialState() W {
	return r.base
}

// HistorySize returns the number of deltas available for rollback.
func (r *Register[W]) HistorySize() int {
	return r.history.size()
}

// MaxHistory returns the history bound fixed at construction.
func (r *Register[W]) MaxHistory() int {
	return r.history.limit
}

// History returns a copy of the retained deltas, oldest first.
func (r *Register[W]) History() []W {
	return r.history.values()
}

// Width returns the bit width of W.
func (r *Register[W]) Width() int {
	return bits.OnesCount64(uint64(^W(0)))
}
