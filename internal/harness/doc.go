// Package harness runs YAML scenarios against delta-state objects.
//
// A scenario names a schema (or uses a bare 64-bit register), then lists
// operations with optional per-step expectations:
//
//	name: price_tick_rollback
//	description: "Undo the most recent tick"
//	schema: Finance.Trading.PriceTick
//	steps:
//	  - op: load
//	    field: price_delta
//	    value: "0x1000"
//	  - op: accumulate
//	    field: price_delta
//	    value: "0x00FF"
//	  - op: rollback
//	    field: price_delta
//	    count: 1
//	    expect: {state: "0x1000", undone: 1, zero: true}
//	assertions:
//	  - type: op_count
//	    op: accumulate
//	    count: 1
//
// # Determinism
//
// Each run builds a fresh object, stamps events from a logical clock
// (testutil.DeterministicClock) and records a fixed run id, so the canonical
// trace and its fingerprint depend only on the scenario. Golden files under
// testdata/golden pin those traces; see RunWithGolden.
//
// # Assertions
//
//   - final_state: the observables of one field after the last step
//   - op_count: how many times an op appears in the trace
package harness
