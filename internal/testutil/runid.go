package testutil

// DefaultRunID is used when a scenario does not pin its own run id.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator returns the same run id on every call, so repeated runs
// of a scenario produce byte-identical traces.
//
// The id is typically pinned in the scenario YAML:
//
//	run_id: "run-00000000-0000-0000-0000-000000000001"
//
// It is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator returns a generator for id, or DefaultRunID if id is
// empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
