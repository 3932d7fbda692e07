package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/deltastate/internal/schema"
	"github.com/roach88/deltastate/internal/trace"
)

// Scenario is a scripted sequence of register operations with expectations.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// Schema is the dotted namespace of the schema to run against. Empty means
	// a bare single-field register named "value".
	Schema string `yaml:"schema,omitempty"`

	// Width sets the bare register width in bits (default 64). Only valid
	// without Schema.
	Width int `yaml:"width,omitempty"`

	// MaxHistory overrides the history depth of every field.
	MaxHistory *int `yaml:"max_history,omitempty"`

	// RunID pins the run id recorded in the trace. Defaults to
	// "test-run-default" so golden files stay stable.
	RunID string `yaml:"run_id,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single operation on one field.
type Step struct {
	// Op is one of load, accumulate, rollback, reconstruct, status.
	Op string `yaml:"op"`

	// Field names the delta field. May be empty for single-field schemas.
	Field string `yaml:"field,omitempty"`

	// Value is the loaded value or accumulated delta.
	Value *Word `yaml:"value,omitempty"`

	// Count is the rollback depth.
	Count *int `yaml:"count,omitempty"`

	// Expect is checked against the field right after the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists the observable values to check. Nil entries are not checked.
type Expect struct {
	State       *Word `yaml:"state,omitempty"`
	Base        *Word `yaml:"base,omitempty"`
	Accumulator *Word `yaml:"accumulator,omitempty"`
	HistorySize *int  `yaml:"history_size,omitempty"`
	Zero        *bool `yaml:"zero,omitempty"`
	Undone      *int  `yaml:"undone,omitempty"`
}

func (e *Expect) empty() bool {
	return e.State == nil && e.Base == nil && e.Accumulator == nil &&
		e.HistorySize == nil && e.Zero == nil && e.Undone == nil
}

// Assertion validates the run once every step has executed.
type Assertion struct {
	// Type is final_state or op_count.
	Type string `yaml:"type"`

	// Field selects the field for final_state.
	Field string `yaml:"field,omitempty"`

	// Expect holds the final_state expectations. Undone is not allowed.
	Expect *Expect `yaml:"expect,omitempty"`

	// Op and Count configure op_count.
	Op    string `yaml:"op,omitempty"`
	Count *int   `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertOpCount    = "op_count"
)

// Word is a register value in YAML. It accepts integers and strings in any
// base strconv.ParseUint understands with base 0, e.g. 4096, "0x1000",
// "0b1010", "0o17".
type Word uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Word) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar word", node.Line)
	}
	v, err := strconv.ParseUint(node.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid word %q: must be an unsigned 64-bit integer", node.Line, node.Value)
	}
	*w = Word(v)
	return nil
}

// String renders the word as 0x-prefixed hex.
func (w Word) String() string {
	return fmt.Sprintf("%#x", uint64(w))
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) || s.Name == "." || strings.Contains(s.Name, "..") {
		return fmt.Errorf("name %q must not contain path separators or \"..\"", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Schema != "" {
		if _, err := schema.ParseNamespace(s.Schema); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		if s.Width != 0 {
			return fmt.Errorf("width only applies to the bare register, not to schema %s", s.Schema)
		}
	} else if s.Width != 0 && !schema.ValidWidth(s.Width) {
		return fmt.Errorf("width %d is not one of %v", s.Width, schema.ValidWidths)
	}
	if s.MaxHistory != nil && *s.MaxHistory < 0 {
		return fmt.Errorf("max_history must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case trace.OpLoad, trace.OpAccumulate:
		if step.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for %s", index, step.Op)
		}
		if step.Count != nil {
			return fmt.Errorf("steps[%d]: count only applies to rollback", index)
		}
	case trace.OpRollback:
		if step.Count == nil {
			return fmt.Errorf("steps[%d]: count is required for rollback", index)
		}
		if *step.Count < 0 {
			return fmt.Errorf("steps[%d]: count must be non-negative", index)
		}
		if step.Value != nil {
			return fmt.Errorf("steps[%d]: value does not apply to rollback", index)
		}
	case trace.OpReconstruct, trace.OpStatus:
		if step.Value != nil || step.Count != nil {
			return fmt.Errorf("steps[%d]: %s takes no value or count", index, step.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil && step.Expect.Undone != nil && step.Op != trace.OpRollback {
		return fmt.Errorf("steps[%d].expect: undone only applies to rollback", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFinalState:
		if a.Expect == nil || a.Expect.empty() {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		if a.Expect.Undone != nil {
			return fmt.Errorf("assertions[%d]: undone does not apply to final_state", index)
		}
	case AssertOpCount:
		if !knownOp(a.Op) {
			return fmt.Errorf("assertions[%d]: op_count needs a known op, got %q", index, a.Op)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be set and non-negative for op_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func knownOp(op string) bool {
	switch op {
	case trace.OpLoad, trace.OpAccumulate, trace.OpRollback, trace.OpReconstruct, trace.OpStatus:
		return true
	}
	return false
}
