package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deltastate/internal/object"
	"github.com/roach88/deltastate/internal/trace"
)

func bareObject(t *testing.T) *object.Object {
	t.Helper()
	obj, err := object.New(object.Bare(16, 8))
	require.NoError(t, err)
	return obj
}

func TestAssertFinalState(t *testing.T) {
	obj := bareObject(t)
	require.NoError(t, obj.Load("", 0x00F0))
	require.NoError(t, obj.Accumulate("", 0x000F))

	errs := EvaluateAssertions(&Result{}, obj, []Assertion{
		{Type: AssertFinalState, Expect: &Expect{State: word(0x00FF), HistorySize: intp(1), Zero: boolp(false)}},
	})
	assert.Empty(t, errs)

	errs = EvaluateAssertions(&Result{}, obj, []Assertion{
		{Type: AssertFinalState, Expect: &Expect{Base: word(0)}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: final_state")
	assert.Contains(t, errs[0], "base expected 0x0000, got 0x00f0")
}

func TestAssertFinalStateUnknownField(t *testing.T) {
	errs := EvaluateAssertions(&Result{}, bareObject(t), []Assertion{
		{Type: AssertFinalState, Field: "nope", Expect: &Expect{Zero: boolp(true)}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unknown field")
}

func TestAssertOpCount(t *testing.T) {
	result := &Result{Trace: trace.Trace{Events: []trace.Event{
		{Seq: 1, Op: trace.OpAccumulate, Width: 16},
		{Seq: 2, Op: trace.OpAccumulate, Width: 16},
		{Seq: 3, Op: trace.OpRollback, Width: 16},
	}}}

	assert.Empty(t, EvaluateAssertions(result, bareObject(t), []Assertion{
		{Type: AssertOpCount, Op: trace.OpAccumulate, Count: intp(2)},
		{Type: AssertOpCount, Op: trace.OpLoad, Count: intp(0)},
	}))

	errs := EvaluateAssertions(result, bareObject(t), []Assertion{
		{Type: AssertOpCount, Op: trace.OpRollback, Count: intp(2)},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: rollback x2")
	assert.Contains(t, errs[0], "Actual: rollback x1")
	assert.Contains(t, errs[0], "[3] rollback")
}
