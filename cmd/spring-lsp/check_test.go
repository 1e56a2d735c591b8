package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
)

func writeCheckFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunCheckReportsUndefinedSection(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "app.toml", "[unknown]\nkey = \"x\"\n")

	diags, err := runCheck(context.Background(), dir, serverconfig.Default())
	require.NoError(t, err)

	var found bool
	for _, d := range diags {
		if d.Code == "undefined-section" {
			found = true
		}
	}
	assert.True(t, found, "expected an undefined-section diagnostic, got %+v", diags)
}

func TestRunCheckReportsCircularDependency(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "lib.rs", `
#[derive(Service)]
pub struct A {
    #[inject(component)]
    pub b: B,
}

#[derive(Service)]
pub struct B {
    #[inject(component)]
    pub a: A,
}
`)

	diags, err := runCheck(context.Background(), dir, serverconfig.Default())
	require.NoError(t, err)

	var circular int
	for _, d := range diags {
		if d.Code == "circular-dependency" {
			circular++
			assert.Equal(t, model.SeverityWarning, d.Severity)
		}
	}
	assert.Equal(t, 2, circular)
}

func TestRunCheckCleanWorkspaceYieldsNoDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "app.toml", "[web]\nport = 8080\n")

	diags, err := runCheck(context.Background(), dir, serverconfig.Default())
	require.NoError(t, err)
	assert.Empty(t, diags)
}
