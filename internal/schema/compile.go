package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compile parses a CUE value into a Schema.
//
// The value should be the domain struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`domain: PriceTick: { ... }`)
//	s, err := Compile(v.LookupPath(cue.ParsePath("domain.PriceTick")))
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{}

	var label string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		label = sels[len(sels)-1].String()
	}

	if err := parseCatalogue(v, label, s); err != nil {
		return nil, err
	}

	fields, err := parseDeltaFields(v)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, &CompileError{
			Field:   "delta_fields",
			Message: "at least one delta field is required",
			Pos:     v.Pos(),
		}
	}
	s.Fields = fields

	ops, err := parseOperations(v)
	if err != nil {
		return nil, err
	}
	s.Operations = *ops

	return s, nil
}

// parseCatalogue fills the namespace, version and description.
// object falls back to the struct label when omitted.
func parseCatalogue(v cue.Value, label string, s *Schema) error {
	cat := v.LookupPath(cue.ParsePath("catalogue"))
	if !cat.Exists() {
		return &CompileError{
			Field:   "catalogue",
			Message: "catalogue is required",
			Pos:     v.Pos(),
		}
	}

	var err error
	if s.Namespace.Vertical, err = requiredString(cat, "vertical"); err != nil {
		return err
	}
	if s.Namespace.Field, err = requiredString(cat, "field"); err != nil {
		return err
	}
	if s.Version, err = requiredString(cat, "version"); err != nil {
		return err
	}

	s.Namespace.Object = label
	if obj := cat.LookupPath(cue.ParsePath("object")); obj.Exists() {
		if s.Namespace.Object, err = obj.String(); err != nil {
			return formatCUEError(err)
		}
	}
	if s.Namespace.Object == "" {
		return &CompileError{
			Field:   "catalogue.object",
			Message: "catalogue.object is required",
			Pos:     cat.Pos(),
		}
	}

	if desc := cat.LookupPath(cue.ParsePath("description")); desc.Exists() {
		if s.Description, err = desc.String(); err != nil {
			return formatCUEError(err)
		}
	}
	return nil
}

// requiredString reads a non-empty string field of the catalogue.
func requiredString(cat cue.Value, name string) (string, error) {
	fv := cat.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   "catalogue." + name,
			Message: fmt.Sprintf("catalogue.%s is required", name),
			Pos:     cat.Pos(),
		}
	}
	str, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if str == "" {
		return "", &CompileError{
			Field:   "catalogue." + name,
			Message: fmt.Sprintf("catalogue.%s must not be empty", name),
			Pos:     fv.Pos(),
		}
	}
	return str, nil
}

// parseDeltaFields extracts delta fields in declaration order.
func parseDeltaFields(v cue.Value) ([]DeltaField, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("delta_fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []DeltaField
	for iter.Next() {
		f, err := parseDeltaField(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseDeltaField(name string, v cue.Value) (DeltaField, error) {
	f := DeltaField{Name: name, Type: FieldDeltaStream}

	if tv := v.LookupPath(cue.ParsePath("type")); tv.Exists() {
		str, err := tv.String()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.Type = FieldType(str)
		if !f.Type.Valid() {
			return f, &CompileError{
				Field:   "delta_fields.type",
				Message: fmt.Sprintf("field %s: unknown type %q", name, str),
				Pos:     tv.Pos(),
			}
		}
	}

	wv := v.LookupPath(cue.ParsePath("width"))
	if !wv.Exists() {
		return f, &CompileError{
			Field:   "delta_fields.width",
			Message: fmt.Sprintf("field %s: width is required", name),
			Pos:     v.Pos(),
		}
	}
	width, err := wv.Int64()
	if err != nil {
		return f, formatCUEError(err)
	}
	if !ValidWidth(int(width)) {
		return f, &CompileError{
			Field:   "delta_fields.width",
			Message: fmt.Sprintf("field %s: width %d is not one of %v", name, width, ValidWidths),
			Pos:     wv.Pos(),
		}
	}
	f.Width = int(width)

	if dv := v.LookupPath(cue.ParsePath("default_value")); dv.Exists() {
		def, err := dv.Uint64()
		if err != nil {
			return f, &CompileError{
				Field:   "delta_fields.default_value",
				Message: fmt.Sprintf("field %s: default_value must be a non-negative integer", name),
				Pos:     dv.Pos(),
			}
		}
		if def&^Mask(f.Width) != 0 {
			return f, &CompileError{
				Field:   "delta_fields.default_value",
				Message: fmt.Sprintf("field %s: default_value %#x does not fit in %d bits", name, def, f.Width),
				Pos:     dv.Pos(),
			}
		}
		f.Default = def
	}

	return f, nil
}

// parseOperations extracts the operations block. accumulate is required and
// cannot be disabled.
func parseOperations(v cue.Value) (*Operations, error) {
	opsVal := v.LookupPath(cue.ParsePath("operations"))
	if !opsVal.Exists() || !opsVal.LookupPath(cue.ParsePath("accumulate")).Exists() {
		return nil, &CompileError{
			Field:   "operations.accumulate",
			Message: "operations.accumulate is required",
			Pos:     v.Pos(),
		}
	}

	acc := opsVal.LookupPath(cue.ParsePath("accumulate"))
	if en := acc.LookupPath(cue.ParsePath("enabled")); en.Exists() {
		b, err := en.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !b {
			return nil, &CompileError{
				Field:   "operations.accumulate",
				Message: "operations.accumulate cannot be disabled",
				Pos:     en.Pos(),
			}
		}
	}

	ops := &Operations{Reconstruct: true}

	if rv := opsVal.LookupPath(cue.ParsePath("reconstruct")); rv.Exists() {
		if en := rv.LookupPath(cue.ParsePath("enabled")); en.Exists() {
			b, err := en.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			ops.Reconstruct = b
		}
	}

	rb := opsVal.LookupPath(cue.ParsePath("rollback"))
	if !rb.Exists() {
		return ops, nil
	}

	if en := rb.LookupPath(cue.ParsePath("enabled")); en.Exists() {
		b, err := en.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ops.Rollback.Enabled = b
	}

	depthVal := rb.LookupPath(cue.ParsePath("history_depth"))
	if !depthVal.Exists() {
		if ops.Rollback.Enabled {
			return nil, &CompileError{
				Field:   "operations.rollback",
				Message: "rollback.enabled requires history_depth",
				Pos:     rb.Pos(),
			}
		}
		return ops, nil
	}

	depth, err := depthVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if depth <= 0 || depth > MaxHistoryDepth {
		return nil, &CompileError{
			Field:   "operations.rollback",
			Message: fmt.Sprintf("history_depth %d out of range (1..%d)", depth, MaxHistoryDepth),
			Pos:     depthVal.Pos(),
		}
	}
	ops.Rollback.HistoryDepth = int(depth)

	return ops, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
