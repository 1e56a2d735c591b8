package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderFallsBackOnEmptyURL(t *testing.T) {
	p := NewProvider("")

	plugin, ok := p.GetPlugin("web")
	require.True(t, ok)
	assert.Equal(t, "web", plugin.Prefix)

	_, ok = p.GetPlugin("redis")
	assert.True(t, ok)
}

func TestGetPluginPropertyInvariant(t *testing.T) {
	p := NewProvider("")
	for _, prefix := range p.ListPrefixes() {
		plugin, ok := p.GetPlugin(prefix)
		require.True(t, ok)
		assert.Equal(t, prefix, plugin.Prefix)
	}
}

func TestGetPropertyDefinedViaGetPlugin(t *testing.T) {
	p := NewProvider("")
	prop, ok := p.GetProperty("web", "port")
	require.True(t, ok)
	assert.Equal(t, "port", prop.Name)

	_, ok = p.GetProperty("web", "does-not-exist")
	assert.False(t, ok)

	_, ok = p.GetProperty("does-not-exist", "port")
	assert.False(t, ok)
}

func TestGetPluginReturnsSnapshotNotBorrow(t *testing.T) {
	p := NewProvider("")
	plugin, ok := p.GetPlugin("web")
	require.True(t, ok)

	plugin.Properties["injected"] = plugin.Properties["port"]

	again, ok := p.GetPlugin("web")
	require.True(t, ok)
	_, present := again.Properties["injected"]
	assert.False(t, present, "mutating a returned snapshot must not affect the provider's internal state")
}

func TestLoadFromFileURL(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	contents := `{"plugins":[{"prefix":"custom","properties":[
		{"name":"flag","type":"boolean","required":true}
	]}]}`
	require.NoError(t, os.WriteFile(schemaPath, []byte(contents), 0o644))

	p := NewProvider("file://" + schemaPath)
	plugin, ok := p.GetPlugin("custom")
	require.True(t, ok)
	assert.Equal(t, "custom", plugin.Prefix)
	assert.True(t, plugin.Properties["flag"].Required)

	// Built-in-only plugins are not present once a source schema loads.
	_, ok = p.GetPlugin("redis")
	assert.False(t, ok)
}

func TestLoadFromUnreadableFileFallsBack(t *testing.T) {
	p := NewProvider("file:///does/not/exist.json")
	_, ok := p.GetPlugin("web")
	assert.True(t, ok, "should fall back to the built-in schema")
}
