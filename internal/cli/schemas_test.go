package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deltastate/internal/schema"
)

func TestSchemasListText(t *testing.T) {
	out, _, err := execute(t, "schemas", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Edge.Sensor.IMUFusion (v")
	assert.Contains(t, out, "Finance.Trading.PriceTick (v")
	assert.Contains(t, out, "Video.Streaming.H264Delta (v")
	assert.Contains(t, out, "history 4096")
	assert.Contains(t, out, "price_delta")
}

func TestSchemasListJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "schemas", "list")
	require.NoError(t, err)

	env := decode[[]SchemaInfo](t, out)
	assert.Equal(t, "ok", env.Status)
	require.Len(t, env.Data, 3)
	assert.Equal(t, schema.IMUFusion, env.Data[0].Name)
	assert.Equal(t, 1024, env.Data[0].HistoryDepth)
	assert.Equal(t, schema.PriceTick, env.Data[1].Name)
	assert.Equal(t, "trade_flags", env.Data[1].Fields[2].Name)
}

func TestSchemasListWithSchemaDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quote.cue", quoteSchema)

	out, _, err := execute(t, "--format", "json", "--schemas", dir, "schemas", "list")
	require.NoError(t, err)

	env := decode[[]SchemaInfo](t, out)
	require.Len(t, env.Data, 4)

	var quote *SchemaInfo
	for i := range env.Data {
		if env.Data[i].Name == "Finance.Trading.Quote" {
			quote = &env.Data[i]
		}
	}
	require.NotNil(t, quote)
	assert.Equal(t, 16, quote.HistoryDepth)
	assert.Equal(t, []FieldInfo{
		{Name: "bid", Type: "delta_stream", Width: 32},
		{Name: "ask", Type: "delta_stream", Width: 32},
	}, quote.Fields)
}

func TestSchemasListBadSchemaDir(t *testing.T) {
	_, _, err := execute(t, "--schemas", filepath.Join(t.TempDir(), "missing"), "schemas", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), schema.ErrCodeNotFound)
}

func TestSchemasValidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quote.cue", quoteSchema)

	out, _, err := execute(t, "schemas", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 schema(s) valid: Finance.Trading.Quote")
}

func TestSchemasValidateCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", quoteSchema+`
domain: TooWide: {
	catalogue: {vertical: "A", field: "B", version: "1"}
	delta_fields: x: {width: 12}
	operations: accumulate: {}
}

domain: NoAccumulate: {
	catalogue: {vertical: "A", field: "C", version: "1"}
	delta_fields: x: {width: 8}
	operations: reconstruct: {}
}
`)

	out, _, err := execute(t, "--format", "json", "schemas", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	env := decode[SchemaValidation](t, out)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "E_SCHEMA_INVALID", env.Error.Code)
	assert.False(t, env.Data.Valid)
	assert.Equal(t, []string{"Finance.Trading.Quote"}, env.Data.Schemas)

	codes := make([]string, 0, len(env.Data.Errors))
	for _, issue := range env.Data.Errors {
		codes = append(codes, issue.Code)
	}
	assert.ElementsMatch(t, []string{schema.ErrCodeFieldWidth, schema.ErrCodeOperations}, codes)
}

func TestSchemasValidateTextErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `package schemas

domain: Empty: {
	catalogue: {vertical: "A", field: "B", version: "1"}
	operations: accumulate: {}
}
`)

	out, _, err := execute(t, "schemas", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ["+schema.ErrCodeDeltaFields+"]")
}

func TestSchemasValidateMissingDir(t *testing.T) {
	out, _, err := execute(t, "schemas", "validate", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+schema.ErrCodeNotFound+"]")
}

func TestSchemasValidateNoFiles(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "schemas", "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	env := decode[any](t, out)
	require.NotNil(t, env.Error)
	assert.Equal(t, schema.ErrCodeNoFiles, env.Error.Code)
}
