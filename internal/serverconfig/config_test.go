package serverconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"[", ".", "$", "{", "#", "("}, cfg.Completion.TriggerCharacters)
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spring-lsp.toml")
	contents := `
[logging]
level = "debug"
verbose = true

[completion]
trigger_characters = ["[", "."]

[diagnostics]
disabled = ["missing-required-property"]

[schema]
url = "file:///tmp/schema.json"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Verbose)
	assert.Equal(t, []string{"[", "."}, cfg.Completion.TriggerCharacters)
	assert.True(t, cfg.IsDiagnosticDisabled("missing-required-property"))
	assert.False(t, cfg.IsDiagnosticDisabled("type-mismatch"))
	assert.Equal(t, "file:///tmp/schema.json", cfg.Schema.URL)
}

func TestLoadInvalidValuesFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spring-lsp.toml")
	contents := `
[logging]
level = "shout"

[completion]
trigger_characters = ["too-long"]

[schema]
url = "ftp://nope"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"[", ".", "$", "{", "#", "("}, cfg.Completion.TriggerCharacters)
	assert.Equal(t, "", cfg.Schema.URL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPRING_LSP_LOG_LEVEL", "warn")
	t.Setenv("SPRING_LSP_VERBOSE", "true")
	t.Setenv("SPRING_LSP_SCHEMA_URL", "https://example.com/schema.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Verbose)
	assert.Equal(t, "https://example.com/schema.json", cfg.Schema.URL)
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spring-lsp.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}
