package server

import (
	"github.com/spring-rs/spring-lsp/internal/index"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/scanners"
)

func toLSPPosition(p position.Position) lspPosition {
	return lspPosition{Line: p.Line, Character: p.Character}
}

func toPosition(p lspPosition) position.Position {
	return position.Position{Line: p.Line, Character: p.Character}
}

func toLSPRange(r position.Range) lspRange {
	return lspRange{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

func toLSPLocation(uri string, r position.Range) lspLocation {
	return lspLocation{URI: uri, Range: toLSPRange(r)}
}

// diagnosticWire is the LSP-shaped rendering of a model.Diagnostic,
// published under `textDocument/publishDiagnostics`.
type diagnosticWire struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity"`
	Code     string   `json:"code"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

func toDiagnosticWire(d model.Diagnostic) diagnosticWire {
	return diagnosticWire{
		Range:    toLSPRange(d.Range),
		Severity: int(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}
}

func diagnosticsWire(diags []model.Diagnostic) []diagnosticWire {
	out := make([]diagnosticWire, 0, len(diags))
	for _, d := range diags {
		out = append(out, toDiagnosticWire(d))
	}
	return out
}

// completionItemWire is the LSP-shaped rendering of a
// model.CompletionItem.
type completionItemWire struct {
	Label         string `json:"label"`
	Kind          int    `json:"kind"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	InsertText    string `json:"insertText,omitempty"`
}

func completionItemsWire(items []model.CompletionItem) []completionItemWire {
	out := make([]completionItemWire, 0, len(items))
	for _, it := range items {
		out = append(out, completionItemWire{
			Label:         it.Label,
			Kind:          int(it.Kind),
			Detail:        it.Detail,
			Documentation: it.Documentation,
			InsertText:    it.InsertText,
		})
	}
	return out
}

// componentInfoWire/routeInfoWire/jobInfoWire/pluginInfoWire/
// configStructInfoWire are the wire shapes for `spring/*` custom
// requests, fixed in §6.
type componentInfoWire struct {
	Name     string      `json:"name"`
	Location lspLocation `json:"location"`
	Fields   []string    `json:"fields"`
}

type routeInfoWire struct {
	Path         string      `json:"path"`
	Methods      []string    `json:"methods"`
	Middlewares  []string    `json:"middlewares"`
	Handler      string      `json:"handler"`
	IsDocumented bool        `json:"isDocumented"`
	Location     lspLocation `json:"location"`
}

type jobInfoWire struct {
	Handler  string      `json:"handler"`
	Schedule string      `json:"schedule"`
	Location lspLocation `json:"location"`
}

type pluginInfoWire struct {
	TypeName string      `json:"typeName"`
	Location lspLocation `json:"location"`
}

type configStructInfoWire struct {
	StructName string      `json:"structName"`
	Prefix     string      `json:"prefix,omitempty"`
	Fields     []string    `json:"fields"`
	Location   lspLocation `json:"location"`
}

func componentWire(c scanners.ComponentRecord) componentInfoWire {
	fields := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, f.Name+": "+f.TypeName)
	}
	return componentInfoWire{Name: c.Name, Location: toLSPLocation(c.URI, c.Range), Fields: fields}
}

func routeWire(r scanners.RouteRecord) routeInfoWire {
	return routeInfoWire{
		Path: r.Path, Methods: r.Methods, Middlewares: r.Middlewares,
		Handler: r.Handler, IsDocumented: r.IsDocumented, Location: toLSPLocation(r.URI, r.Range),
	}
}

func jobWire(j scanners.JobRecord) jobInfoWire {
	return jobInfoWire{Handler: j.Handler, Schedule: scheduleText(j.Schedule), Location: toLSPLocation(j.URI, j.Range)}
}

func scheduleText(s rustmacro.Schedule) string {
	switch s.Kind {
	case rustmacro.ScheduleCron:
		return "cron(" + s.CronExpr + ")"
	case rustmacro.ScheduleFixRate:
		return "fix_rate"
	case rustmacro.ScheduleFixDelay:
		return "fix_delay"
	default:
		return "unknown"
	}
}

func pluginWire(p scanners.PluginRecord) pluginInfoWire {
	return pluginInfoWire{TypeName: p.TypeName, Location: toLSPLocation(p.URI, p.Range)}
}

func configurableWire(c scanners.ConfigurableRecord) configStructInfoWire {
	fields := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, f.Name+": "+f.TypeName)
	}
	prefix := ""
	if c.ConfigPrefix != nil {
		prefix = *c.ConfigPrefix
	}
	return configStructInfoWire{StructName: c.StructName, Prefix: prefix, Fields: fields, Location: toLSPLocation(c.URI, c.Range)}
}

type graphWire struct {
	Nodes []nodeWire `json:"nodes"`
	Edges []edgeWire `json:"edges"`
}

type nodeWire struct {
	Name     string `json:"name"`
	HasError bool   `json:"hasError"`
}

type edgeWire struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func mapComponents(in []scanners.ComponentRecord) []componentInfoWire {
	out := make([]componentInfoWire, 0, len(in))
	for _, c := range in {
		out = append(out, componentWire(c))
	}
	return out
}

func mapRoutes(in []scanners.RouteRecord) []routeInfoWire {
	out := make([]routeInfoWire, 0, len(in))
	for _, r := range in {
		out = append(out, routeWire(r))
	}
	return out
}

func mapJobs(in []scanners.JobRecord) []jobInfoWire {
	out := make([]jobInfoWire, 0, len(in))
	for _, j := range in {
		out = append(out, jobWire(j))
	}
	return out
}

func mapPlugins(in []scanners.PluginRecord) []pluginInfoWire {
	out := make([]pluginInfoWire, 0, len(in))
	for _, p := range in {
		out = append(out, pluginWire(p))
	}
	return out
}

func mapConfigurables(in []scanners.ConfigurableRecord) []configStructInfoWire {
	out := make([]configStructInfoWire, 0, len(in))
	for _, c := range in {
		out = append(out, configurableWire(c))
	}
	return out
}

func graphWireFrom(g index.Graph) graphWire {
	out := graphWire{}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, nodeWire{Name: n.Name, HasError: n.HasError})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, edgeWire{From: e.From, To: e.To})
	}
	return out
}
