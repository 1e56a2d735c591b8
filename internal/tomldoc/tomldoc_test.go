package tomldoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/schema"
)

const sampleTOML = `[web]
host = "0.0.0.0"
port = 8080

[redis]
url = "redis://${REDIS_HOST:localhost}:6379"
`

func TestParseExtractsSectionsAndProperties(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(sampleTOML)
	require.Nil(t, perr)
	defer doc.Close()

	require.Contains(t, doc.Sections, "web")
	web := doc.Sections["web"]
	assert.Equal(t, []string{"host", "port"}, web.Order)
	assert.Equal(t, "0.0.0.0", web.Properties["host"].Value.Str)
	assert.EqualValues(t, 8080, web.Properties["port"].Value.Int)

	assert.Equal(t, []string{"web", "redis"}, doc.SectionOrder)
}

func TestParseExtractsEnvVarReference(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(sampleTOML)
	require.Nil(t, perr)
	defer doc.Close()

	require.Len(t, doc.EnvVars, 1)
	ref := doc.EnvVars[0]
	assert.Equal(t, "REDIS_HOST", ref.Name)
	require.NotNil(t, ref.Default)
	assert.Equal(t, "localhost", *ref.Default)
}

func TestParseSyntaxErrorStillYieldsPartialDocument(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[web\nhost = \"0.0.0.0\"\n")
	require.NotNil(t, perr)
	require.NotNil(t, doc)
	defer doc.Close()
}

func newTestProvider(t *testing.T) *schema.Provider {
	t.Helper()
	return schema.NewProvider("")
}

func TestValidateUndefinedSection(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[nonsense]\nfoo = 1\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, newTestProvider(t))
	require.Len(t, diags, 1)
	assert.Equal(t, "undefined-section", diags[0].Code)
}

func TestValidateTypeMismatch(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[web]\nport = \"not-a-number\"\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, newTestProvider(t))
	var found bool
	for _, d := range diags {
		if d.Code == "type-mismatch" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateValueTooSmall(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[web]\nport = 0\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, newTestProvider(t))
	var found bool
	for _, d := range diags {
		if d.Code == "value-too-small" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateMissingRequiredProperty(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[redis]\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, newTestProvider(t))
	var found bool
	for _, d := range diags {
		if d.Code == "missing-required-property" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateInvalidEnvVarName(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[redis]\nurl = \"redis://${1bad}:6379\"\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, newTestProvider(t))
	var found bool
	for _, d := range diags {
		if d.Code == "invalid-var-name" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompleteSectionHeader(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[we\n")
	require.NotNil(t, perr)
	defer doc.Close()

	items := Complete(doc, newTestProvider(t), position.Position{Line: 0, Character: 3})
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "web")
}

func TestCompletePropertyKey(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[web]\nhost = \"x\"\n")
	require.Nil(t, perr)
	defer doc.Close()

	items := Complete(doc, newTestProvider(t), position.Position{Line: 2, Character: 0})
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "port")
	assert.NotContains(t, labels, "host")
}

func TestHoverRendersPropertyCard(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse("[web]\nport = 8080\n")
	require.Nil(t, perr)
	defer doc.Close()

	text, ok := Hover(doc, newTestProvider(t), position.Position{Line: 1, Character: 2})
	require.True(t, ok)
	assert.Contains(t, text, "web.port")
	assert.Contains(t, text, "integer")
}

func TestLoadSchemaFromFileThenValidate(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
		"plugins": [
			{"prefix": "custom", "properties": [
				{"name": "enabled", "type": "boolean", "required": true}
			]}
		]
	}`), 0o644))

	provider := schema.NewProvider("file://" + schemaPath)

	p := NewParser()
	doc, perr := p.Parse("[custom]\n")
	require.Nil(t, perr)
	defer doc.Close()

	diags := Validate("file:///a.toml", doc, provider)
	require.Len(t, diags, 1)
	assert.Equal(t, "missing-required-property", diags[0].Code)
}
