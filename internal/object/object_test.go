package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deltastate/internal/schema"
)

func mixedSchema() schema.Schema {
	return schema.Schema{
		Namespace: schema.Namespace{Vertical: "Test", Field: "Mixed", Object: "Widths"},
		Version:   "1.0.0",
		Fields: []schema.DeltaField{
			{Name: "flags", Type: schema.FieldBitmaskDelta, Width: 8, Default: 0x0F},
			{Name: "sample", Type: schema.FieldDeltaStream, Width: 32},
			{Name: "wide", Type: schema.FieldDeltaStream, Width: 64},
		},
		Operations: schema.Operations{
			Reconstruct: true,
			Rollback:    schema.Rollback{Enabled: true, HistoryDepth: 3},
		},
	}
}

func TestNewLoadsDefaults(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	state := o.State()
	assert.Equal(t, map[string]uint64{"flags": 0x0F, "sample": 0, "wide": 0}, state)
	assert.True(t, o.IsAccumulatorZero())

	for _, f := range o.Fields() {
		assert.Equal(t, 3, f.MaxHistory(), f.Name())
	}
}

func TestFieldWidths(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	var widths []int
	for _, f := range o.Fields() {
		widths = append(widths, f.Width())
	}
	assert.Equal(t, []int{8, 32, 64}, widths)
}

func TestValuesTruncateToFieldWidth(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	require.NoError(t, o.Load("flags", 0x1FF))
	require.NoError(t, o.Accumulate("flags", 0xF00F))

	v, err := o.Reconstruct("flags")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xF0), v)

	f, err := o.Field("flags")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF), f.InitialState())
	assert.Equal(t, uint64(0x0F), f.Accumulator())
	assert.Equal(t, []uint64{0x0F}, f.History())
}

func TestFieldsAreIndependent(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	require.NoError(t, o.Accumulate("sample", 0xAA))
	require.NoError(t, o.Accumulate("wide", 0xBB))
	assert.False(t, o.IsAccumulatorZero())

	undone, err := o.Rollback("sample", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, undone)
	assert.False(t, o.IsAccumulatorZero(), "wide still carries a delta")

	wide, err := o.Field("wide")
	require.NoError(t, err)
	assert.Equal(t, 1, wide.HistorySize())

	_, err = o.Rollback("wide", 1)
	require.NoError(t, err)
	assert.True(t, o.IsAccumulatorZero())
}

func TestFieldLookupErrors(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	_, err = o.Field("")
	require.ErrorIs(t, err, ErrAmbiguousField)

	_, err = o.Field("missing")
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "Test.Mixed.Widths.missing")

	require.ErrorIs(t, o.Load("missing", 1), ErrUnknownField)
	require.ErrorIs(t, o.Accumulate("missing", 1), ErrUnknownField)
	_, err = o.Reconstruct("missing")
	require.ErrorIs(t, err, ErrUnknownField)
	_, err = o.Rollback("missing", 1)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestBareResolvesEmptyName(t *testing.T) {
	o, err := New(Bare(64, 4096))
	require.NoError(t, err)

	require.NoError(t, o.Load("", 0x1000))
	require.NoError(t, o.Accumulate("", 0x00FF))
	require.NoError(t, o.Accumulate(BareField, 0x0F00))

	v, err := o.Reconstruct("")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1FFF), v)
	assert.Equal(t, BareNamespace, o.Schema().Name())
}

func TestRollbackDisabled(t *testing.T) {
	s := mixedSchema()
	s.Operations.Rollback.Enabled = false

	o, err := New(s)
	require.NoError(t, err)

	require.NoError(t, o.Accumulate("wide", 0x1))
	undone, err := o.Rollback("wide", 1)
	require.NoError(t, err)
	assert.Zero(t, undone)

	v, err := o.Reconstruct("wide")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1), v)
}

func TestWithHistoryDepth(t *testing.T) {
	s := mixedSchema()
	deeper := WithHistoryDepth(s, 10)
	assert.Equal(t, 10, deeper.HistoryDepth())
	assert.Equal(t, 3, s.HistoryDepth(), "original untouched")

	assert.Zero(t, WithHistoryDepth(s, 0).HistoryDepth())
	assert.Zero(t, WithHistoryDepth(s, -5).HistoryDepth())
}

func TestReset(t *testing.T) {
	o, err := New(mixedSchema())
	require.NoError(t, err)

	require.NoError(t, o.Load("flags", 0xFF))
	require.NoError(t, o.Accumulate("sample", 0x1234))
	o.Reset()

	assert.Equal(t, map[string]uint64{"flags": 0x0F, "sample": 0, "wide": 0}, o.State())
	assert.True(t, o.IsAccumulatorZero())
}

func TestNewRejectsBadSchemas(t *testing.T) {
	_, err := New(schema.Schema{Namespace: schema.Namespace{Vertical: "A", Field: "B", Object: "C"}})
	assert.Error(t, err)

	s := mixedSchema()
	s.Fields[1].Width = 12
	_, err = New(s)
	assert.ErrorContains(t, err, "unsupported width 12")

	s = mixedSchema()
	s.Fields[2].Name = "flags"
	_, err = New(s)
	assert.ErrorContains(t, err, "duplicate field")
}

func TestBuiltinSchemasBuild(t *testing.T) {
	cat, err := schema.Builtin()
	require.NoError(t, err)

	for _, s := range cat.All() {
		o, err := New(s)
		require.NoError(t, err, s.Name())
		assert.Len(t, o.Fields(), len(s.Fields))
	}
}

func TestResolve(t *testing.T) {
	s, err := Resolve(nil, "", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, BareNamespace, s.Name())
	assert.Equal(t, 64, s.Fields[0].Width)
	assert.Equal(t, 4096, s.HistoryDepth())

	depth := 2
	s, err = Resolve(nil, BareNamespace, 8, &depth)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Fields[0].Width)
	assert.Equal(t, 2, s.HistoryDepth())

	s, err = Resolve(nil, schema.IMUFusion, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1024, s.HistoryDepth())

	s, err = Resolve(nil, schema.IMUFusion, 0, &depth)
	require.NoError(t, err)
	assert.Equal(t, 2, s.HistoryDepth())

	_, err = Resolve(nil, "No.Such.Schema", 0, nil)
	assert.ErrorContains(t, err, "unknown schema")

	_, err = Resolve(nil, schema.IMUFusion, 16, nil)
	assert.ErrorContains(t, err, "width applies only to the bare register")
}

func TestReconstructDisabled(t *testing.T) {
	s := mixedSchema()
	s.Operations.Reconstruct = false

	o, err := New(s)
	require.NoError(t, err)
	require.NoError(t, o.Accumulate("sample", 0x5))

	_, err = o.Reconstruct("sample")
	require.ErrorIs(t, err, ErrReconstructDisabled)
	assert.Contains(t, err.Error(), "Test.Mixed.Widths")

	_, err = o.Reconstruct("missing")
	require.ErrorIs(t, err, ErrUnknownField)
}
