package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
)

func TestPublishReplacesNotMerges(t *testing.T) {
	store := NewStore()
	cfg := serverconfig.Default()

	store.Publish("file:///a.toml", []model.Diagnostic{
		model.NewDiagnostic("file:///a.toml", model.Diagnostic{}.Range, model.SeverityError, "type-mismatch", "first pass"),
	}, cfg)
	assert.Len(t, store.Get("file:///a.toml"), 1)

	store.Publish("file:///a.toml", []model.Diagnostic{
		model.NewDiagnostic("file:///a.toml", model.Diagnostic{}.Range, model.SeverityWarning, "undefined-section", "second pass"),
	}, cfg)

	got := store.Get("file:///a.toml")
	assert.Len(t, got, 1)
	assert.Equal(t, "undefined-section", got[0].Code)
}

func TestPublishFiltersDisabledCodes(t *testing.T) {
	store := NewStore()
	cfg := serverconfig.Default()
	cfg.DisabledCodes["deprecated-property"] = struct{}{}

	published := store.Publish("file:///b.toml", []model.Diagnostic{
		model.NewDiagnostic("file:///b.toml", model.Diagnostic{}.Range, model.SeverityWarning, "deprecated-property", "old key"),
		model.NewDiagnostic("file:///b.toml", model.Diagnostic{}.Range, model.SeverityError, "type-mismatch", "wrong type"),
	}, cfg)

	assert.Len(t, published, 1)
	assert.Equal(t, "type-mismatch", published[0].Code)
}

func TestClearRemovesURI(t *testing.T) {
	store := NewStore()
	cfg := serverconfig.Default()
	store.Publish("file:///c.toml", []model.Diagnostic{
		model.NewDiagnostic("file:///c.toml", model.Diagnostic{}.Range, model.SeverityError, "type-mismatch", "x"),
	}, cfg)
	store.Clear("file:///c.toml")
	assert.Empty(t, store.Get("file:///c.toml"))
}

func TestAllOnlyReturnsNonEmpty(t *testing.T) {
	store := NewStore()
	cfg := serverconfig.Default()
	store.Publish("file:///clean.toml", nil, cfg)
	store.Publish("file:///dirty.toml", []model.Diagnostic{
		model.NewDiagnostic("file:///dirty.toml", model.Diagnostic{}.Range, model.SeverityError, "type-mismatch", "x"),
	}, cfg)

	all := store.All()
	_, cleanPresent := all["file:///clean.toml"]
	assert.False(t, cleanPresent)
	assert.Len(t, all["file:///dirty.toml"], 1)
}
