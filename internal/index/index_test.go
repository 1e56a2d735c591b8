package index

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

func newManager(t *testing.T, content string) *Manager {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "lib.rs", content)
	m := NewManager()
	require.NoError(t, m.Rebuild(context.Background(), dir, nil))
	return m
}

func TestScenarioS6CircularDependencyWarnings(t *testing.T) {
	m := newManager(t, `
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

	diags := m.ValidateDependencies()
	var circular int
	for _, d := range diags {
		if d.Code == "circular-dependency" {
			circular++
			assert.Contains(t, d.Message, "A, B")
		}
	}
	assert.Equal(t, 2, circular)

	graph := m.DependencyGraph()
	for _, n := range graph.Nodes {
		assert.True(t, n.HasError, "node %s should be marked as participating in a cycle", n.Name)
	}
}

func TestUnknownComponentAndUnknownDependency(t *testing.T) {
	m := newManager(t, `
#[derive(Service)]
pub struct OrderService {
    #[inject(component = "Missing")]
    pub repo: OrderRepo,
    #[inject(component)]
    pub cache: UnregisteredCache,
}
`)

	diags := m.ValidateDependencies()
	var unknownComponent, unknownDependency int
	for _, d := range diags {
		switch d.Code {
		case "unknown-component":
			unknownComponent++
		case "unknown-dependency":
			unknownDependency++
		}
	}
	assert.Equal(t, 1, unknownComponent)
	assert.Equal(t, 1, unknownDependency)
}

func TestNoCycleNoCircularDependencyDiagnostic(t *testing.T) {
	m := newManager(t, `
#[derive(Service)]
pub struct Repo {}

#[derive(Service)]
pub struct Service {
    #[inject(component)]
    pub repo: Repo,
}
`)

	diags := m.ValidateDependencies()
	for _, d := range diags {
		assert.NotEqual(t, "circular-dependency", d.Code)
	}
}

func TestRouteConflictDetection(t *testing.T) {
	m := newManager(t, `
#[get("/orders/{id}")]
async fn get_order() {}

#[get("/orders/{order_id}")]
async fn fetch_order() {}
`)

	diags := m.RouteConflicts()
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, "route-conflict", d.Code)
	}
}

func TestDistinctMethodsNoConflict(t *testing.T) {
	m := newManager(t, `
#[get("/orders/{id}")]
async fn get_order() {}

#[post("/orders/{id}")]
async fn replace_order() {}
`)

	diags := m.RouteConflicts()
	assert.Empty(t, diags)
}

func TestAllAccessorsAndSymbols(t *testing.T) {
	m := newManager(t, `
#[derive(Service)]
pub struct OrderService {
    #[inject(component)]
    pub repo: OrderRepo,
}

#[get("/orders")]
async fn list_orders() {}

#[cron("0 0 * * * *")]
async fn nightly() {}

#[config_prefix = "orders"]
#[derive(Configurable)]
pub struct OrdersConfig {
    pub ttl: u64,
}
`)

	assert.Len(t, m.AllComponents(), 1)
	assert.Len(t, m.AllRoutes(), 1)
	assert.Len(t, m.AllJobs(), 1)
	assert.Len(t, m.AllConfigurables(), 1)

	symbols := m.AllSymbols()
	assert.Contains(t, symbols, "OrderService")
	assert.Contains(t, symbols, "OrdersConfig")
	assert.Contains(t, symbols, "nightly")
}
