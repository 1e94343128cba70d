package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverChanged(string) bool { return false }

func TestLoadFileAppliesAllFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"engine_cmd": "d8",
		"engine_args": ["--flag"],
		"seeds": "/seeds",
		"out": "/out",
		"iters": 500,
		"timeout": "250ms",
		"score_cmd_args": ["--scored"],
		"score_regex": "edges:(\\d+)",
		"keep_only_increasing": true,
		"minimize_by": "coverage"
	}`), 0o644))

	overrides, err := LoadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, overrides.Apply(&cfg, neverChanged))

	assert.Equal(t, "d8", cfg.EngineCmd)
	assert.Equal(t, []string{"--flag"}, cfg.EngineArgs)
	assert.Equal(t, "/seeds", cfg.SeedsDir)
	assert.Equal(t, "/out", cfg.OutDir)
	assert.Equal(t, uint64(500), cfg.Iterations)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"--scored"}, cfg.ScoreCmdArgs)
	assert.Equal(t, "edges:(\\d+)", cfg.ScoreRegex)
	assert.True(t, cfg.KeepOnlyIncreasing)
	assert.Equal(t, "coverage", cfg.MinimizeBy)
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not_a_real_field": 1}`), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsInvalidMinimizeByEnum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"minimize_by": "bogus"}`), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestApplyDoesNotOverrideExplicitlyChangedFlags(t *testing.T) {
	overrides := &FileOverrides{EngineCmd: stringPtr("d8")}
	cfg := Config{EngineCmd: "jsc"}

	changed := func(name string) bool { return name == "engine-cmd" }
	require.NoError(t, overrides.Apply(&cfg, changed))

	assert.Equal(t, "jsc", cfg.EngineCmd)
}

func stringPtr(s string) *string { return &s }
