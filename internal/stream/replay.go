package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/deltastate/internal/object"
	"github.com/roach88/deltastate/internal/schema"
)

// NewObject builds a fresh object for the stream's schema, resolved against
// cat (the builtin catalogue when nil).
func (s *Stream) NewObject(cat *schema.Catalog) (*object.Object, error) {
	sch, err := object.Resolve(cat, s.Schema, s.Width, s.MaxHistory)
	if err != nil {
		return nil, err
	}
	return object.New(sch)
}

// Applied describes one frame after it was folded into an object.
type Applied struct {
	Schema string
	Field  string
	Frame  Frame

	// Undone is the number of deltas a rollback frame removed.
	Undone int

	// Evicted is true when an accumulate pushed the oldest delta out of a
	// full history.
	Evicted bool

	HistorySize int
}

// Observer is notified after every applied frame.
type Observer interface {
	ObserveFrame(Applied)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Applied)

// ObserveFrame calls f.
func (f ObserverFunc) ObserveFrame(a Applied) { f(a) }

// Summary counts what a replay did.
type Summary struct {
	Frames      int `json:"frames"`
	Loads       int `json:"loads"`
	Accumulates int `json:"accumulates"`
	Rollbacks   int `json:"rollbacks"`
	Undone      int `json:"undone"`
	Evictions   int `json:"evictions"`
}

// ReplayOption configures a Replayer.
type ReplayOption func(*Replayer)

// WithObserver adds an observer.
func WithObserver(o Observer) ReplayOption {
	return func(r *Replayer) { r.observers = append(r.observers, o) }
}

// WithReplayLogger sets the logger for per-frame debug output.
func WithReplayLogger(l *slog.Logger) ReplayOption {
	return func(r *Replayer) { r.logger = l }
}

// Replayer folds stream frames into an object. It is not safe for concurrent
// use; the object it drives is not either.
type Replayer struct {
	obj       *object.Object
	observers []Observer
	logger    *slog.Logger
}

// NewReplayer returns a replayer driving obj.
func NewReplayer(obj *object.Object, opts ...ReplayOption) *Replayer {
	r := &Replayer{
		obj:    obj,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay applies frames in order. It checks ctx between frames and returns
// the summary so far together with ctx.Err() when cancelled. A frame naming an
// unknown field stops the replay with an error; frames before it stay applied.
func (r *Replayer) Replay(ctx context.Context, frames []Frame) (Summary, error) {
	var sum Summary
	name := r.obj.Schema().Name()

	for i, fr := range frames {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("replay interrupted at frame %d: %w", i, err)
		}

		f, err := r.obj.Field(fr.Field)
		if err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}

		applied := Applied{Schema: name, Field: f.Name(), Frame: fr}
		switch fr.Op {
		case OpLoad:
			f.Load(fr.Value)
			sum.Loads++
		case OpAccumulate:
			applied.Evicted = f.MaxHistory() > 0 && f.HistorySize() == f.MaxHistory()
			f.Accumulate(fr.Value)
			sum.Accumulates++
			if applied.Evicted {
				sum.Evictions++
			}
		case OpRollback:
			applied.Undone = f.Rollback(int(fr.Count))
			sum.Rollbacks++
			sum.Undone += applied.Undone
		default:
			return sum, fmt.Errorf("frame %d: unknown op %d", i, uint8(fr.Op))
		}
		sum.Frames++
		applied.HistorySize = f.HistorySize()

		for _, o := range r.observers {
			o.ObserveFrame(applied)
		}
		r.logger.Debug("frame applied",
			"frame", i,
			"op", fr.Op.String(),
			"field", f.Name(),
			"history_size", applied.HistorySize,
			"evicted", applied.Evicted,
		)
	}

	r.logger.Info("replay completed",
		"schema", name,
		"frames", sum.Frames,
		"evictions", sum.Evictions,
	)
	return sum, nil
}
