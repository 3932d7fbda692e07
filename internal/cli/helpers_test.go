package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	scenarioDir = "../harness/testdata/scenarios"
	goldenDir   = "../harness/testdata/golden"
	priceTick   = scenarioDir + "/price_tick.yaml"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// envelope decodes a JSON CLI response with a typed payload.
type envelope[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const failingScenario = `name: wrong_expectation
description: "Expects the wrong accumulator"
steps:
  - op: load
    value: 1
  - op: accumulate
    value: 2
    expect:
      accumulator: 3
`

const quoteSchema = `package schemas

domain: Quote: {
	catalogue: {vertical: "Finance", field: "Trading", version: "1.0.0"}
	delta_fields: {
		bid: {width: 32}
		ask: {width: 32}
	}
	operations: {
		accumulate: {}
		rollback: {enabled: true, history_depth: 16}
	}
}
`
