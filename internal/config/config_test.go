package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "text", Compression: "zstd"}, cfg)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DELTASTATE_FORMAT":      "json",
		"DELTASTATE_VERBOSE":     "true",
		"DELTASTATE_SCHEMA_DIR":  "/etc/deltastate/schemas",
		"DELTASTATE_COMPRESSION": "lz4",
	})
	require.NoError(t, err)
	assert.Equal(t, Config{
		Format:      "json",
		Verbose:     true,
		SchemaDir:   "/etc/deltastate/schemas",
		Compression: "lz4",
	}, cfg)
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{"format", map[string]string{"DELTASTATE_FORMAT": "yaml"}, "DELTASTATE_FORMAT"},
		{"compression", map[string]string{"DELTASTATE_COMPRESSION": "gzip"}, "DELTASTATE_COMPRESSION"},
		{"verbose", map[string]string{"DELTASTATE_VERBOSE": "loud"}, "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadReadsProcessEnv(t *testing.T) {
	t.Setenv("DELTASTATE_FORMAT", "json")
	t.Setenv("DELTASTATE_COMPRESSION", "none")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "none", cfg.Compression)
}
