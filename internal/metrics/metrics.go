// Package metrics exports replay activity as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/deltastate/internal/stream"
)

const namespace = "deltastate"

var labels = []string{"schema", "field"}

// ErrRegistrationFailed is returned when a collector cannot be registered.
var ErrRegistrationFailed = errors.New("metric registration failed")

// Metrics counts register operations per schema and field. It implements
// stream.Observer.
type Metrics struct {
	loads       *prometheus.CounterVec
	accumulates *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	rollbacks   *prometheus.CounterVec
	undone      *prometheus.CounterVec
	historySize *prometheus.GaugeVec
}

var _ stream.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	m := &Metrics{
		loads:       counter("loads_total", "Register loads."),
		accumulates: counter("accumulates_total", "Deltas folded into a register."),
		evictions:   counter("evictions_total", "Deltas dropped from a full history. They stay in the accumulator."),
		rollbacks:   counter("rollbacks_total", "Rollback requests."),
		undone:      counter("rollback_undone_total", "Deltas removed by rollbacks."),
		historySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_size",
			Help:      "Deltas currently retained for rollback.",
		}, labels),
	}

	for _, c := range []prometheus.Collector{m.loads, m.accumulates, m.evictions, m.rollbacks, m.undone, m.historySize} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
		}
	}
	return m, nil
}

// ObserveFrame records one applied frame.
func (m *Metrics) ObserveFrame(a stream.Applied) {
	switch a.Frame.Op {
	case stream.OpLoad:
		m.loads.WithLabelValues(a.Schema, a.Field).Inc()
	case stream.OpAccumulate:
		m.accumulates.WithLabelValues(a.Schema, a.Field).Inc()
		if a.Evicted {
			m.evictions.WithLabelValues(a.Schema, a.Field).Inc()
		}
	case stream.OpRollback:
		m.rollbacks.WithLabelValues(a.Schema, a.Field).Inc()
		m.undone.WithLabelValues(a.Schema, a.Field).Add(float64(a.Undone))
	}
	m.historySize.WithLabelValues(a.Schema, a.Field).Set(float64(a.HistorySize))
}

// WriteText writes every metric family gathered from g in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
