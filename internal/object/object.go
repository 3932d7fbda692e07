// Package object builds multi-field delta-state units from compiled schemas.
//
// Every delta field of a schema gets its own register, sized to the field
// width and bounded by the schema's history depth. Values cross the API as
// uint64 and are truncated to the field width on the way in.
package object

import (
	"errors"
	"fmt"

	"github.com/roach88/deltastate/internal/register"
	"github.com/roach88/deltastate/internal/schema"
)

var (
	// ErrUnknownField is returned when a field name is not part of the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrAmbiguousField is returned when no field name is given for a schema
	// with more than one field.
	ErrAmbiguousField = errors.New("field name required")
	// ErrReconstructDisabled is returned by Reconstruct when the schema turns
	// reconstruct off.
	ErrReconstructDisabled = errors.New("reconstruct disabled")
)

// BareNamespace names the single-field schema returned by Bare.
const BareNamespace = "Local.Register.Value"

// BareField is the name of the only field of a Bare schema.
const BareField = "value"

// Field is a width-erased view of one delta field register.
type Field interface {
	Name() string
	Type() schema.FieldType
	Width() int
	Load(initial uint64)
	Accumulate(delta uint64)
	Reconstruct() uint64
	IsAccumulatorZero() bool
	Rollback(count int) int
	Accumulator() uint64
	InitialState() uint64
	HistorySize() int
	MaxHistory() int
	History() []uint64
}

type field[W register.Word] struct {
	def schema.DeltaField
	reg *register.Register[W]
}

func newField[W register.Word](def schema.DeltaField, maxHistory int) *field[W] {
	f := &field[W]{def: def, reg: register.NewWithHistory[W](maxHistory)}
	f.reg.Load(W(def.Default))
	return f
}

func (f *field[W]) Name() string { return f.def.Name }
func (f *field[W]) Type() schema.FieldType { return f.def.Type }
func (f *field[W]) Width() int { return f.reg.Width() }
func (f *field[W]) Load(initial uint64) { f.reg.Load(W(initial)) }
func (f *field[W]) Accumulate(delta uint64) { f.reg.Accumulate(W(delta)) }
func (f *field[W]) Reconstruct() uint64 { return uint64(f.reg.Reconstruct()) }
func (f *field[W]) IsAccumulatorZero() bool { return f.reg.IsAccumulatorZero() }
func (f *field[W]) Rollback(count int) int { return f.reg.Rollback(count) }
func (f *field[W]) Accumulator() uint64 { return uint64(f.reg.Accumulator()) }
func (f *field[W]) InitialState() uint64 { return uint64(f.reg.InitialState()) }
func (f *field[W]) HistorySize() int { return f.reg.HistorySize() }
func (f *field[W]) MaxHistory() int { return f.reg.MaxHistory() }

func (f *field[W]) History() []uint64 {
	src := f.reg.History()
	out := make([]uint64, len(src))
	for i, v := range src {
		out[i] = uint64(v)
	}
	return out
}

// Object is a set of field registers laid out by a schema.
// It is not safe for concurrent use.
type Object struct {
	schema schema.Schema
	fields []Field
	index  map[string]int
}

// New builds an object for s with every field loaded with its default value.
func New(s schema.Schema) (*Object, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %s: no delta fields", s.Name())
	}

	o := &Object{
		schema: s,
		fields: make([]Field, 0, len(s.Fields)),
		index:  make(map[string]int, len(s.Fields)),
	}
	depth := s.HistoryDepth()
	for _, def := range s.Fields {
		if _, dup := o.index[def.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", s.Name(), def.Name)
		}
		f, err := newFieldForWidth(def, depth)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", s.Name(), err)
		}
		o.index[def.Name] = len(o.fields)
		o.fields = append(o.fields, f)
	}
	return o, nil
}

func newFieldForWidth(def schema.DeltaField, depth int) (Field, error) {
	switch def.Width {
	case 8:
		return newField[uint8](def, depth), nil
	case 16:
		return newField[uint16](def, depth), nil
	case 32:
		return newField[uint32](def, depth), nil
	case 64:
		return newField[uint64](def, depth), nil
	default:
		return nil, fmt.Errorf("field %s: unsupported width %d", def.Name, def.Width)
	}
}

// Bare returns a single-field schema with one register of the given width.
// A maxHistory of 0 or less disables rollback.
func Bare(width, maxHistory int) schema.Schema {
	return schema.Schema{
		Namespace: schema.Namespace{Vertical: "Local", Field: "Register", Object: "Value"},
		Version:   "1.0.0",
		Fields: []schema.DeltaField{
			{Name: BareField, Type: schema.FieldDeltaStream, Width: width},
		},
		Operations: schema.Operations{
			Reconstruct: true,
			Rollback:    schema.Rollback{Enabled: maxHistory > 0, HistoryDepth: max(maxHistory, 0)},
		},
	}
}

// WithHistoryDepth returns a copy of s whose fields retain up to depth deltas.
// A depth of 0 or less disables rollback.
func WithHistoryDepth(s schema.Schema, depth int) schema.Schema {
	s.Fields = append([]schema.DeltaField(nil), s.Fields...)
	s.Operations.Rollback = schema.Rollback{Enabled: depth > 0, HistoryDepth: max(depth, 0)}
	return s
}

// Schema returns the schema the object was built from.
func (o *Object) Schema() schema.Schema {
	return o.schema
}

// Fields returns the field views in declaration order.
func (o *Object) Fields() []Field {
	return append([]Field(nil), o.fields...)
}

// Field resolves a field by name. An empty name selects the only field of a
// single-field schema.
func (o *Object) Field(name string) (Field, error) {
	if name == "" {
		if len(o.fields) == 1 {
			return o.fields[0], nil
		}
		return nil, fmt.Errorf("%w: %s has %d fields", ErrAmbiguousField, o.schema.Name(), len(o.fields))
	}
	i, ok := o.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, o.schema.Name(), name)
	}
	return o.fields[i], nil
}

// Load resets the named field to initial.
func (o *Object) Load(name string, initial uint64) error {
	f, err := o.Field(name)
	if err != nil {
		return err
	}
	f.Load(initial)
	return nil
}

// Accumulate folds delta into the named field.
func (o *Object) Accumulate(name string, delta uint64) error {
	f, err := o.Field(name)
	if err != nil {
		return err
	}
	f.Accumulate(delta)
	return nil
}

// Reconstruct returns the current value of the named field. It fails with
// ErrReconstructDisabled when the schema disables reconstruct.
func (o *Object) Reconstruct(name string) (uint64, error) {
	f, err := o.Field(name)
	if err != nil {
		return 0, err
	}
	if !o.schema.Operations.Reconstruct {
		return 0, fmt.Errorf("%w: %s", ErrReconstructDisabled, o.schema.Name())
	}
	return f.Reconstruct(), nil
}

// Rollback undoes up to count recent deltas of the named field and returns
// how many were undone.
func (o *Object) Rollback(name string, count int) (int, error) {
	f, err := o.Field(name)
	if err != nil {
		return 0, err
	}
	return f.Rollback(count), nil
}

// IsAccumulatorZero reports whether every field's accumulator is zero.
func (o *Object) IsAccumulatorZero() bool {
	for _, f := range o.fields {
		if !f.IsAccumulatorZero() {
			return false
		}
	}
	return true
}

// State returns the reconstructed value of every field.
func (o *Object) State() map[string]uint64 {
	out := make(map[string]uint64, len(o.fields))
	for _, f := range o.fields {
		out[f.Name()] = f.Reconstruct()
	}
	return out
}

// Reset reloads every field with its schema default, clearing history.
func (o *Object) Reset() {
	for i, f := range o.fields {
		f.Load(o.schema.Fields[i].Default)
	}
}
