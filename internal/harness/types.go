package harness

import "github.com/roach88/deltastate/internal/trace"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace records one event per step, in order.
	Trace trace.Trace `json:"-"`

	// Fingerprint is the keyed hash of the canonical trace.
	Fingerprint string `json:"fingerprint"`

	// Errors holds expectation and assertion failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`

	// State is the final reconstructed value of every field.
	State map[string]uint64 `json:"state"`
}

// NewResult returns a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		State:  make(map[string]uint64),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
