// Package scanners implements the per-kind Scanners (C5): pure
// functions over a workspace path and the open documents that run the
// macro analyzer over every reachable Rust file and flatten its
// recognized macros into typed records carrying a source location.
package scanners

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
)

// ComponentRecord is one recognized Service component.
type ComponentRecord struct {
	URI    string
	Name   string
	Range  position.Range
	Fields []rustmacro.InjectField
}

// RouteRecord is one recognized HTTP route.
type RouteRecord struct {
	URI          string
	Path         string
	Methods      []string
	Middlewares  []string
	Handler      string
	IsDocumented bool
	Range        position.Range
}

// JobRecord is one recognized scheduled job.
type JobRecord struct {
	URI      string
	Handler  string
	Schedule rustmacro.Schedule
	Range    position.Range
}

// PluginRecord is one recognized plugin registration, either a
// `#[auto_config(...)]` attribute or an `add_plugin(T)` call expression.
type PluginRecord struct {
	URI      string
	TypeName string
	Range    position.Range
}

// ConfigurableRecord is one recognized Configurable struct.
type ConfigurableRecord struct {
	URI          string
	StructName   string
	ConfigPrefix *string
	Fields       []rustmacro.ConfigFieldInfo
	Range        position.Range
}

// Results is the flattened output of scanning every Rust file reachable
// from a workspace.
type Results struct {
	Components    []ComponentRecord
	Routes        []RouteRecord
	Jobs          []JobRecord
	Plugins       []PluginRecord
	Configurables []ConfigurableRecord
}

var addPluginCall = regexp.MustCompile(`add_plugin\s*\(\s*([A-Za-z_][A-Za-z0-9_:]*)\s*\)`)

// ScanWorkspace walks every `.rs` file under workspacePath, preferring an
// already-open document's in-memory text over disk content, parses each
// concurrently via an errgroup, and flattens the results. A file that
// cannot be read is skipped; a file that fails to parse is logged and
// contributes whatever its partial parse yields. Neither aborts the scan.
func ScanWorkspace(ctx context.Context, workspacePath string, docs *document.Store) (*Results, error) {
	var files []string
	err := filepath.WalkDir(workspacePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "target" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".rs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := &Results{}
	g, gctx := errgroup.WithContext(ctx)

	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			scanFile(path, docs, results, &mu)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanFile(path string, docs *document.Store, results *Results, mu *sync.Mutex) {
	uri := "file://" + path
	text, ok := readSource(uri, path, docs)
	if !ok {
		return
	}

	parser := rustmacro.NewParser()
	doc, parseErr := parser.Parse(text)
	if parseErr != nil {
		logging.Recovered(logging.CategoryIndex, "parse "+path+" for scanning, using partial result", parseErr)
	}
	if doc == nil {
		return
	}

	records := flatten(uri, doc)
	records.Plugins = append(records.Plugins, scanAddPluginCalls(uri, text)...)

	mu.Lock()
	defer mu.Unlock()
	results.Components = append(results.Components, records.Components...)
	results.Routes = append(results.Routes, records.Routes...)
	results.Jobs = append(results.Jobs, records.Jobs...)
	results.Plugins = append(results.Plugins, records.Plugins...)
	results.Configurables = append(results.Configurables, records.Configurables...)
}

func readSource(uri, path string, docs *document.Store) (string, bool) {
	if docs != nil {
		if d, ok := docs.Get(uri); ok {
			return d.Text, true
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		logging.Recovered(logging.CategoryIndex, "read "+path+" for scanning", err)
		return "", false
	}
	return string(content), true
}

func flatten(uri string, doc *rustmacro.RustDocument) *Results {
	r := &Results{}
	for _, m := range doc.Macros {
		switch m.Kind {
		case rustmacro.KindDeriveService:
			r.Components = append(r.Components, ComponentRecord{URI: uri, Name: m.StructName, Range: m.Range, Fields: m.Fields})
		case rustmacro.KindRoute:
			r.Routes = append(r.Routes, RouteRecord{
				URI: uri, Path: m.Path, Methods: m.Methods, Middlewares: m.Middlewares,
				Handler: m.HandlerName, IsDocumented: m.IsDocumented, Range: m.Range,
			})
		case rustmacro.KindJob:
			r.Jobs = append(r.Jobs, JobRecord{URI: uri, Handler: m.HandlerName, Schedule: m.Schedule, Range: m.Range})
		case rustmacro.KindAutoConfig:
			r.Plugins = append(r.Plugins, PluginRecord{URI: uri, TypeName: m.ConfiguratorName, Range: m.Range})
		case rustmacro.KindConfigurableStruct:
			r.Configurables = append(r.Configurables, ConfigurableRecord{
				URI: uri, StructName: m.StructName, ConfigPrefix: m.ConfigPrefix, Fields: m.ConfigFields, Range: m.Range,
			})
		}
	}
	return r
}

func scanAddPluginCalls(uri, text string) []PluginRecord {
	var out []PluginRecord
	matches := addPluginCall.FindAllStringSubmatchIndex(text, -1)
	for _, match := range matches {
		typeName := text[match[2]:match[3]]
		out = append(out, PluginRecord{
			URI:      uri,
			TypeName: typeName,
			Range:    position.RangeFromByteSpan(text, match[0], match[1]),
		})
	}
	return out
}
