package schema

import (
	"fmt"
	"strings"
)

// MaxHistoryDepth bounds rollback.history_depth. Deeper histories are
// almost certainly a typo and would pin a lot of memory per field.
const MaxHistoryDepth = 1 << 20

// Namespace identifies a schema in the catalogue as Vertical.Field.Object,
// e.g. Finance.Trading.PriceTick.
type Namespace struct {
	Vertical string `json:"vertical"`
	Field    string `json:"field"`
	Object   string `json:"object"`
}

// String returns the dotted form.
func (n Namespace) String() string {
	return n.Vertical + "." + n.Field + "." + n.Object
}

// ParseNamespace parses the dotted Vertical.Field.Object form.
func ParseNamespace(s string) (Namespace, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Namespace{}, fmt.Errorf("namespace %q: want Vertical.Field.Object", s)
	}
	for _, p := range parts {
		if p == "" {
			return Namespace{}, fmt.Errorf("namespace %q: empty segment", s)
		}
	}
	return Namespace{Vertical: parts[0], Field: parts[1], Object: parts[2]}, nil
}

// FieldType classifies what a delta field carries. The register semantics are
// the same for every type; the classification is informational.
type FieldType string

const (
	// FieldDeltaStream is a stream of value deltas (prices, samples, frames).
	FieldDeltaStream FieldType = "delta_stream"
	// FieldBitmaskDelta toggles flag bits.
	FieldBitmaskDelta FieldType = "bitmask_delta"
	// FieldParameterDelta carries parameter changes (vectors, coefficients).
	FieldParameterDelta FieldType = "parameter_delta"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldDeltaStream, FieldBitmaskDelta, FieldParameterDelta:
		return true
	}
	return false
}

// ValidWidths lists the supported delta field widths in bits.
var ValidWidths = []int{8, 16, 32, 64}

// DeltaField is one independently folded register within a schema.
type DeltaField struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Width   int       `json:"width"`
	Default uint64    `json:"default_value"`
}

// Rollback configures rollback support.
type Rollback struct {
	Enabled      bool `json:"enabled"`
	HistoryDepth int  `json:"history_depth,omitempty"`
}

// Operations lists which register operations a schema exposes.
// Accumulate is mandatory and therefore not represented.
type Operations struct {
	Reconstruct bool     `json:"reconstruct"`
	Rollback    Rollback `json:"rollback"`
}

// Schema is a compiled domain schema.
type Schema struct {
	Namespace   Namespace    `json:"namespace"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	Fields      []DeltaField `json:"delta_fields"`
	Operations  Operations   `json:"operations"`
}

// Name returns the dotted namespace.
func (s Schema) Name() string {
	return s.Namespace.String()
}

// HistoryDepth returns the per-field history bound: the configured depth when
// rollback is enabled, 0 otherwise.
func (s Schema) HistoryDepth() int {
	if !s.Operations.Rollback.Enabled {
		return 0
	}
	return s.Operations.Rollback.HistoryDepth
}

// Field looks up a delta field by name.
func (s Schema) Field(name string) (DeltaField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return DeltaField{}, false
}

// FieldNames returns field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Mask returns the all-ones value for a field width.
func Mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// ValidWidth reports whether w is one of ValidWidths.
func ValidWidth(w int) bool {
	for _, v := range ValidWidths {
		if v == w {
			return true
		}
	}
	return false
}
