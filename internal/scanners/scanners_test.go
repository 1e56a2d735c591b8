package scanners

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScanWorkspaceFlattensAllRecordKinds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "service.rs", `
#[derive(Service)]
pub struct OrderService {
    #[inject(component)]
    pub repo: OrderRepo,
}

#[get("/orders/{id}")]
async fn get_order() {}

#[cron("0 0 * * * *")]
async fn nightly() {}

fn wire(registry: &mut Registry) {
    add_plugin(MetricsPlugin)
}

#[config_prefix = "orders"]
#[derive(Configurable)]
pub struct OrdersConfig {
    pub ttl: u64,
}
`)

	results, err := ScanWorkspace(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, results.Components, 1)
	assert.Equal(t, "OrderService", results.Components[0].Name)

	require.Len(t, results.Routes, 1)
	assert.Equal(t, "/orders/{id}", results.Routes[0].Path)

	require.Len(t, results.Jobs, 1)
	assert.Equal(t, "nightly", results.Jobs[0].Handler)

	require.Len(t, results.Plugins, 1)
	assert.Equal(t, "MetricsPlugin", results.Plugins[0].TypeName)

	require.Len(t, results.Configurables, 1)
	assert.Equal(t, "OrdersConfig", results.Configurables[0].StructName)
}

func TestScanWorkspaceSkipsTargetDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))
	writeFile(t, filepath.Join(dir, "target"), "generated.rs", `#[get("/x")] async fn x() {}`)

	results, err := ScanWorkspace(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Empty(t, results.Routes)
}
