package metrics

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deltastate/internal/object"
	"github.com/roach88/deltastate/internal/stream"
)

func TestObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	const s, f = "Local.Register.Value", "value"
	m.ObserveFrame(stream.Applied{Schema: s, Field: f, Frame: stream.Frame{Op: stream.OpLoad}})
	m.ObserveFrame(stream.Applied{Schema: s, Field: f, Frame: stream.Frame{Op: stream.OpAccumulate}, HistorySize: 1})
	m.ObserveFrame(stream.Applied{Schema: s, Field: f, Frame: stream.Frame{Op: stream.OpAccumulate}, Evicted: true, HistorySize: 1})
	m.ObserveFrame(stream.Applied{Schema: s, Field: f, Frame: stream.Frame{Op: stream.OpRollback, Count: 3}, Undone: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(s, f)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.accumulates.WithLabelValues(s, f)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evictions.WithLabelValues(s, f)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollbacks.WithLabelValues(s, f)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.undone.WithLabelValues(s, f)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.historySize.WithLabelValues(s, f)))
}

func TestReplayFeedsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	obj, err := object.New(object.Bare(64, 2))
	require.NoError(t, err)

	frames := []stream.Frame{
		{Op: stream.OpAccumulate, Value: 1},
		{Op: stream.OpAccumulate, Value: 2},
		{Op: stream.OpAccumulate, Value: 4},
	}
	_, err = stream.NewReplayer(obj, stream.WithObserver(m)).Replay(context.Background(), frames)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, `deltastate_accumulates_total{field="value",schema="Local.Register.Value"} 3`)
	assert.Contains(t, out, `deltastate_evictions_total{field="value",schema="Local.Register.Value"} 1`)
	assert.Contains(t, out, `deltastate_history_size{field="value",schema="Local.Register.Value"} 2`)
	assert.Contains(t, out, "# TYPE deltastate_accumulates_total counter")
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}
