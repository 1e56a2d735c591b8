package server

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/tomldoc"
)

type initializeParams struct {
	RootURI string `json:"rootUri"`
}

// handleInitialize answers with the capability block fixed in §6. The
// server does not move to Initialized until the matching "initialized"
// notification arrives.
func (s *Server) handleInitialize(req Request) *Response {
	var params initializeParams
	_ = json.Unmarshal(req.Params, &params)
	if params.RootURI != "" {
		s.workspaceRoot = uriToPath(params.RootURI)
	}

	caps := map[string]any{
		"textDocumentSync": map[string]any{
			"openClose": true,
			"change":    2, // Incremental
		},
		"completionProvider": map[string]any{
			"triggerCharacters": s.cfg.Completion.TriggerCharacters,
		},
		"hoverProvider":          true,
		"definitionProvider":     true,
		"referencesProvider":     true,
		"renameProvider":         true,
		"documentSymbolProvider": true,
		"workspaceSymbolProvider": true,
	}
	return resultResponse(req.ID, map[string]any{
		"capabilities": caps,
		"serverInfo":   map[string]any{"name": "spring-lsp", "version": buildVersion},
	})
}

// handleInitialized moves the server to Initialized and runs the
// workspace bootstrap scan (C5/C6), per §4.6's "triggered... by
// workspace bootstrap."
func (s *Server) handleInitialized(ctx context.Context) {
	s.state.Store(int32(StateInitialized))
	if s.workspaceRoot == "" {
		return
	}
	if err := s.RebuildWorkspace(ctx); err != nil {
		logging.Recovered(logging.CategoryIndex, "bootstrap workspace scan", err)
		return
	}
	s.StartWatcher(ctx)
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didOpenParams struct {
	TextDocument struct {
		URI        string `json:"uri"`
		LanguageID string `json:"languageId"`
		Version    int    `json:"version"`
		Text       string `json:"text"`
	} `json:"textDocument"`
}

func (s *Server) handleDidOpen(req Request) {
	var p didOpenParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		logging.Recovered(logging.CategoryDocument, "decode didOpen params", err)
		return
	}
	lang := languageFor(p.TextDocument.URI, p.TextDocument.LanguageID)
	s.docs.Open(p.TextDocument.URI, p.TextDocument.Version, p.TextDocument.Text, lang)
	s.markOpen(p.TextDocument.URI)
	s.analyzeAndPublish(p.TextDocument.URI)
}

type didChangeParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Version int    `json:"version"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Range *struct {
			Start lspPosition `json:"start"`
			End   lspPosition `json:"end"`
		} `json:"range"`
		Text string `json:"text"`
	} `json:"contentChanges"`
}

func (s *Server) handleDidChange(req Request) {
	var p didChangeParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		logging.Recovered(logging.CategoryDocument, "decode didChange params", err)
		return
	}
	edits := make([]document.Edit, 0, len(p.ContentChanges))
	for _, c := range p.ContentChanges {
		if c.Range == nil {
			edits = append(edits, document.Edit{NewText: c.Text})
			continue
		}
		rng := position.Range{Start: toPosition(c.Range.Start), End: toPosition(c.Range.End)}
		edits = append(edits, document.Edit{Range: &rng, NewText: c.Text})
	}
	if err := s.docs.Change(p.TextDocument.URI, p.TextDocument.Version, edits); err != nil {
		logging.Recovered(logging.CategoryDocument, "apply change for "+p.TextDocument.URI, err)
		return
	}
	s.analyzeAndPublish(p.TextDocument.URI)
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

func (s *Server) handleDidClose(req Request) {
	var p didCloseParams
	_ = json.Unmarshal(req.Params, &p)
	s.docs.Close(p.TextDocument.URI)
	s.diagStore.Clear(p.TextDocument.URI)
	s.markClosed(p.TextDocument.URI)
}

func (s *Server) handleDidSave(ctx context.Context, req Request) {
	var p didCloseParams
	_ = json.Unmarshal(req.Params, &p)
	s.analyzeAndPublish(p.TextDocument.URI)

	if err := s.RebuildWorkspace(ctx); err != nil {
		logging.Recovered(logging.CategoryIndex, "rebuild index after save", err)
	}
}

func (s *Server) markOpen(uri string) {
	s.openMu.Lock()
	s.open[uri] = struct{}{}
	s.openMu.Unlock()
}

func (s *Server) markClosed(uri string) {
	s.openMu.Lock()
	delete(s.open, uri)
	s.openMu.Unlock()
}

func (s *Server) openURIs() []string {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	out := make([]string, 0, len(s.open))
	for uri := range s.open {
		out = append(out, uri)
	}
	return out
}

func languageFor(uri, languageID string) document.Language {
	switch languageID {
	case "toml":
		return document.LanguageTOML
	case "rust":
		return document.LanguageRust
	}
	switch {
	case strings.HasSuffix(uri, ".toml"):
		return document.LanguageTOML
	case strings.HasSuffix(uri, ".rs"):
		return document.LanguageRust
	default:
		return document.LanguageUnknown
	}
}

// analyzeAndPublish runs the matching analyzer over uri's current text
// and replaces its diagnostic set, merging in any dependency/route
// diagnostics the index already attributed to this URI.
func (s *Server) analyzeAndPublish(uri string) {
	doc, ok := s.docs.Get(uri)
	if !ok {
		return
	}

	var diags []model.Diagnostic
	switch doc.Language {
	case document.LanguageTOML:
		parser := tomldoc.NewParser()
		parsed, parseErr := parser.Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryTOML, "parse "+uri, parseErr)
		}
		if parsed != nil {
			diags = tomldoc.Validate(uri, parsed, s.schemaProv)
		}
	case document.LanguageRust:
		parser := rustmacro.NewParser()
		parsed, parseErr := parser.Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryMacro, "parse "+uri, parseErr)
		}
		if parsed != nil {
			diags = rustmacro.Validate(uri, parsed)
		}
		diags = append(diags, s.dependencyDiagnosticsFor(uri)...)
	default:
		return
	}

	published := s.diagStore.Publish(uri, diags, s.cfg)
	s.publishNotification(uri, doc.Version, published)
}

// dependencyDiagnosticsFor filters the index-wide dependency/route
// validation down to the diagnostics attributed to one URI, since C6
// validates across the whole workspace graph at once.
func (s *Server) dependencyDiagnosticsFor(uri string) []model.Diagnostic {
	var out []model.Diagnostic
	for _, d := range s.indexMgr.ValidateDependencies() {
		if d.URI == uri {
			out = append(out, d)
		}
	}
	for _, d := range s.indexMgr.RouteConflicts() {
		if d.URI == uri {
			out = append(out, d)
		}
	}
	return out
}

// publishDependencyDiagnostics re-runs analyzeAndPublish for every
// currently open Rust document after an index rebuild, since a cycle or
// conflict can newly involve a document whose own text did not change.
func (s *Server) publishDependencyDiagnostics() {
	for _, uri := range s.openURIs() {
		doc, ok := s.docs.Get(uri)
		if ok && doc.Language == document.LanguageRust {
			s.analyzeAndPublish(uri)
		}
	}
}

func (s *Server) publishNotification(uri string, version int, diags []model.Diagnostic) {
	notification := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": map[string]any{
			"uri":         uri,
			"version":     version,
			"diagnostics": diagnosticsWire(diags),
		},
	}
	data, err := json.Marshal(notification)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.writer.Write([]byte("Content-Length: "))
	s.writer.Write([]byte(strconv.Itoa(len(data))))
	s.writer.Write([]byte("\r\n\r\n"))
	s.writer.Write(data)
}
