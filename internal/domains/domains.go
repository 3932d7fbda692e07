// Package domains provides named delta-state registers for the built-in
// catalogue entries.
//
// Each wrapper is a single 64-bit register whose history bound matches the
// rollback.history_depth of its catalogue schema. Use internal/object when
// the per-field layout of a schema matters.
package domains

import (
	"fmt"

	"github.com/roach88/deltastate/internal/register"
	"github.com/roach88/deltastate/internal/schema"
)

// Unit is a register tagged with the namespace it belongs to.
type Unit[W register.Word] struct {
	*register.Register[W]
	namespace string
}

// NewUnit returns an empty unit for namespace retaining up to maxHistory
// deltas.
func NewUnit[W register.Word](namespace string, maxHistory int) *Unit[W] {
	return &Unit[W]{
		Register:  register.NewWithHistory[W](maxHistory),
		namespace: namespace,
	}
}

// NewBuiltinUnit returns an empty unit for a built-in catalogue schema, bounded
// by that schema's rollback history depth.
func NewBuiltinUnit[W register.Word](namespace string) (*Unit[W], error) {
	cat, err := schema.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load builtin schemas: %w", err)
	}
	s, ok := cat.Lookup(namespace)
	if !ok {
		return nil, fmt.Errorf("unknown builtin schema %q", namespace)
	}
	return NewUnit[W](namespace, s.HistoryDepth()), nil
}

// Namespace returns the dotted catalogue name.
func (u *Unit[W]) Namespace() string {
	return u.namespace
}

// PriceTick tracks market tick deltas.
type PriceTick struct {
	*Unit[uint64]
}

// NewPriceTick returns an empty Finance.Trading.PriceTick register.
func NewPriceTick() (*PriceTick, error) {
	u, err := NewBuiltinUnit[uint64](schema.PriceTick)
	if err != nil {
		return nil, err
	}
	return &PriceTick{u}, nil
}

// IMUFusion tracks fused inertial sensor deltas.
type IMUFusion struct {
	*Unit[uint64]
}

// NewIMUFusion returns an empty Edge.Sensor.IMUFusion register.
func NewIMUFusion() (*IMUFusion, error) {
	u, err := NewBuiltinUnit[uint64](schema.IMUFusion)
	if err != nil {
		return nil, err
	}
	return &IMUFusion{u}, nil
}

// H264Delta tracks inter-frame video deltas.
type H264Delta struct {
	*Unit[uint64]
}

// NewH264Delta returns an empty Video.Streaming.H264Delta register.
func NewH264Delta() (*H264Delta, error) {
	u, err := NewBuiltinUnit[uint64](schema.H264Delta)
	if err != nil {
		return nil, err
	}
	return &H264Delta{u}, nil
}
