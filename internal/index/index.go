// Package index implements the Index Manager (C6): route, component,
// and symbol indexes built from a scan, plus dependency-graph and
// route-conflict diagnostics.
package index

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/scanners"
)

// Node is one component in the dependency graph.
type Node struct {
	Name     string
	HasError bool
}

// Edge is a directed component-to-component dependency, A -> B meaning
// A injects a component of type B.
type Edge struct {
	From string
	To   string
}

// Graph is the injection dependency graph.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Manager owns the latest scan snapshot and the indexes derived from
// it. Rebuild replaces the snapshot atomically; readers never observe a
// partially updated index.
type Manager struct {
	mu      sync.RWMutex
	results *scanners.Results
}

// NewManager returns an empty Manager; call Rebuild before querying.
func NewManager() *Manager {
	return &Manager{results: &scanners.Results{}}
}

// Rebuild rescans workspacePath and atomically replaces the snapshot
// every query method reads from.
func (m *Manager) Rebuild(ctx context.Context, workspacePath string, docs *document.Store) error {
	results, err := scanners.ScanWorkspace(ctx, workspacePath, docs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.results = results
	m.mu.Unlock()
	return nil
}

func (m *Manager) snapshot() *scanners.Results {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.results
}

func (m *Manager) AllComponents() []scanners.ComponentRecord {
	return append([]scanners.ComponentRecord(nil), m.snapshot().Components...)
}

func (m *Manager) AllRoutes() []scanners.RouteRecord {
	return append([]scanners.RouteRecord(nil), m.snapshot().Routes...)
}

func (m *Manager) AllJobs() []scanners.JobRecord {
	return append([]scanners.JobRecord(nil), m.snapshot().Jobs...)
}

func (m *Manager) AllPlugins() []scanners.PluginRecord {
	return append([]scanners.PluginRecord(nil), m.snapshot().Plugins...)
}

func (m *Manager) AllConfigurables() []scanners.ConfigurableRecord {
	return append([]scanners.ConfigurableRecord(nil), m.snapshot().Configurables...)
}

// AllSymbols returns a name -> location map spanning every component,
// configurable struct, and job handler currently indexed.
func (m *Manager) AllSymbols() map[string]model.Location {
	results := m.snapshot()
	out := make(map[string]model.Location)
	for _, c := range results.Components {
		out[c.Name] = model.Location{URI: c.URI, Range: c.Range}
	}
	for _, c := range results.Configurables {
		out[c.StructName] = model.Location{URI: c.URI, Range: c.Range}
	}
	for _, j := range results.Jobs {
		out[j.Handler] = model.Location{URI: j.URI, Range: j.Range}
	}
	return out
}

// dependencyTarget returns the component name a Component-kind inject
// field resolves to: its explicit override if present, else its
// declared field type.
func dependencyTarget(f rustmacro.InjectField) string {
	if f.ComponentName != "" {
		return f.ComponentName
	}
	return f.TypeName
}

// DependencyGraph builds the injection dependency graph over every
// scanned component, marking a node HasError when it participates in a
// cycle or references an unregistered component.
func (m *Manager) DependencyGraph() Graph {
	components := m.AllComponents()
	known := make(map[string]struct{}, len(components))
	for _, c := range components {
		known[c.Name] = struct{}{}
	}

	var g Graph
	for _, c := range components {
		g.Nodes = append(g.Nodes, Node{Name: c.Name})
	}
	missingRef := make(map[string]bool)
	for _, c := range components {
		for _, f := range c.Fields {
			if f.InjectKind != rustmacro.InjectComponent {
				continue
			}
			target := dependencyTarget(f)
			if _, ok := known[target]; ok {
				g.Edges = append(g.Edges, Edge{From: c.Name, To: target})
			} else {
				missingRef[c.Name] = true
			}
		}
	}

	cycles := findCycles(g)
	inCycle := make(map[string]bool)
	for _, cycle := range cycles {
		for _, n := range cycle {
			inCycle[n] = true
		}
	}
	for i := range g.Nodes {
		if inCycle[g.Nodes[i].Name] || missingRef[g.Nodes[i].Name] {
			g.Nodes[i].HasError = true
		}
	}
	return g
}

// ValidateDependencies emits unknown-component, unknown-dependency, and
// circular-dependency diagnostics over every scanned component's
// injected fields, per §4.6.
func (m *Manager) ValidateDependencies() []model.Diagnostic {
	components := m.AllComponents()
	known := make(map[string]struct{}, len(components))
	for _, c := range components {
		known[c.Name] = struct{}{}
	}

	var diags []model.Diagnostic
	graph := Graph{}
	for _, c := range components {
		graph.Nodes = append(graph.Nodes, Node{Name: c.Name})
		for _, f := range c.Fields {
			if f.InjectKind != rustmacro.InjectComponent {
				continue
			}
			target := dependencyTarget(f)
			if _, ok := known[target]; ok {
				graph.Edges = append(graph.Edges, Edge{From: c.Name, To: target})
				continue
			}
			if f.ComponentName != "" {
				diags = append(diags, model.NewDiagnostic(c.URI, f.Range, model.SeverityError,
					"unknown-component", "component \""+f.ComponentName+"\" is not registered"))
			} else {
				diags = append(diags, model.NewDiagnostic(c.URI, f.Range, model.SeverityError,
					"unknown-dependency", "field type \""+f.TypeName+"\" does not resolve to a known component"))
			}
		}
	}

	byName := make(map[string]scanners.ComponentRecord, len(components))
	for _, c := range components {
		byName[c.Name] = c
	}
	for _, cycle := range findCycles(graph) {
		rotated := rotateToSmallest(cycle)
		message := "circular dependency: " + strings.Join(rotated, ", ")
		for _, name := range cycle {
			c, ok := byName[name]
			if !ok {
				continue
			}
			diags = append(diags, model.NewDiagnostic(c.URI, c.Range, model.SeverityWarning, "circular-dependency", message))
		}
	}
	return diags
}

// findCycles returns every strongly connected component of size >= 2,
// plus every self-loop, via an iterative (non-recursive) Tarjan's
// algorithm — cancellation-safe call depth independent of graph size.
func findCycles(g Graph) [][]string {
	adjacency := make(map[string][]string)
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}
	selfLoops := make(map[string]bool)
	for _, e := range g.Edges {
		if e.From == e.To {
			selfLoops[e.From] = true
		}
	}

	nodeOrder := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeOrder = append(nodeOrder, n.Name)
	}
	sort.Strings(nodeOrder)

	index := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	counter := 0
	var sccs [][]string

	type frame struct {
		node     string
		children []string
		ci       int
	}

	for _, start := range nodeOrder {
		if _, visited := index[start]; visited {
			continue
		}
		var callStack []*frame
		callStack = append(callStack, &frame{node: start, children: adjacency[start]})
		index[start] = counter
		lowlink[start] = counter
		counter++
		stack = append(stack, start)
		onStack[start] = true

		for len(callStack) > 0 {
			top := callStack[len(callStack)-1]
			if top.ci < len(top.children) {
				child := top.children[top.ci]
				top.ci++
				if _, visited := index[child]; !visited {
					index[child] = counter
					lowlink[child] = counter
					counter++
					stack = append(stack, child)
					onStack[child] = true
					callStack = append(callStack, &frame{node: child, children: adjacency[child]})
				} else if onStack[child] {
					if index[child] < lowlink[top.node] {
						lowlink[top.node] = index[child]
					}
				}
				continue
			}

			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1]
				if lowlink[top.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[top.node]
				}
			}

			if lowlink[top.node] == index[top.node] {
				var scc []string
				for {
					n := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[n] = false
					scc = append(scc, n)
					if n == top.node {
						break
					}
				}
				if len(scc) >= 2 {
					sccs = append(sccs, scc)
				}
			}
		}
	}

	for name := range selfLoops {
		sccs = append(sccs, []string{name})
	}
	return sccs
}

func rotateToSmallest(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[minIdx:]...)
	out = append(out, cycle[:minIdx]...)
	return out
}

var pathParamPattern = regexp.MustCompile(`\{[^{}]*\}`)

func normalizePath(path string) string {
	return pathParamPattern.ReplaceAllString(path, "{}")
}

func methodSetsIntersect(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, m := range a {
		set[strings.ToUpper(m)] = struct{}{}
	}
	for _, m := range b {
		if _, ok := set[strings.ToUpper(m)]; ok {
			return true
		}
	}
	return false
}

// RouteConflicts emits one route-conflict diagnostic per offending
// route among every pair of recognized routes sharing a normalized path
// template and an intersecting method set.
func (m *Manager) RouteConflicts() []model.Diagnostic {
	routes := m.AllRoutes()
	var diags []model.Diagnostic
	for i := range routes {
		for j := range routes {
			if i == j {
				continue
			}
			if normalizePath(routes[i].Path) != normalizePath(routes[j].Path) {
				continue
			}
			if !methodSetsIntersect(routes[i].Methods, routes[j].Methods) {
				continue
			}
			diags = append(diags, model.NewDiagnostic(routes[i].URI, routes[i].Range, model.SeverityWarning,
				"route-conflict", "route conflicts with another handler for the same path and method"))
			break
		}
	}
	return diags
}
