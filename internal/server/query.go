package server

import (
	"encoding/json"
	"strings"

	"github.com/spring-rs/spring-lsp/internal/completion"
	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/tomldoc"
)

type positionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lspPosition            `json:"position"`
}

func (s *Server) handleCompletion(req Request) *Response {
	s.completionCount.Add(1)
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, ErrInvalidParams, "invalid completion params")
	}
	doc, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return resultResponse(req.ID, completionItemsWire(nil))
	}
	pos := toPosition(p.Position)

	creq := completion.Request{Language: doc.Language, Position: pos}
	switch doc.Language {
	case document.LanguageTOML:
		parsed, parseErr := tomldoc.NewParser().Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryCompletion, "parse "+p.TextDocument.URI+" for completion", parseErr)
		}
		creq.TomlDoc = parsed
	case document.LanguageRust:
		parsed, parseErr := rustmacro.NewParser().Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryCompletion, "parse "+p.TextDocument.URI+" for completion", parseErr)
		}
		creq.RustDoc = parsed
	}

	items := completion.Complete(creq, s.schemaProv)
	return resultResponse(req.ID, map[string]any{
		"isIncomplete": false,
		"items":        completionItemsWire(items),
	})
}

func (s *Server) handleHover(req Request) *Response {
	s.hoverCount.Add(1)
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, ErrInvalidParams, "invalid hover params")
	}
	doc, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return resultResponse(req.ID, nil)
	}
	pos := toPosition(p.Position)

	var content string
	switch doc.Language {
	case document.LanguageTOML:
		parsed, parseErr := tomldoc.NewParser().Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryCompletion, "parse "+p.TextDocument.URI+" for hover", parseErr)
		}
		if parsed != nil {
			if text, ok := tomldoc.Hover(parsed, s.schemaProv, pos); ok {
				content = text
			}
		}
	case document.LanguageRust:
		parsed, parseErr := rustmacro.NewParser().Parse(doc.Text)
		if parseErr != nil {
			logging.Recovered(logging.CategoryCompletion, "parse "+p.TextDocument.URI+" for hover", parseErr)
		}
		if parsed != nil {
			for _, m := range parsed.Macros {
				if pos.Line >= m.Range.Start.Line && pos.Line <= m.Range.End.Line {
					content = rustmacro.Hover(m)
					break
				}
			}
		}
	}
	if content == "" {
		return resultResponse(req.ID, nil)
	}
	return resultResponse(req.ID, map[string]any{
		"contents": map[string]string{"kind": "markdown", "value": content},
	})
}

// handleDefinition resolves the identifier under the cursor against the
// workspace symbol index, per the teacher's word-at-position
// GoToDefinition (internal/mangle/lsp.go) generalized to the
// component/configurable/job symbol table C6 builds.
func (s *Server) handleDefinition(req Request) *Response {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, ErrInvalidParams, "invalid definition params")
	}
	doc, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return resultResponse(req.ID, nil)
	}
	lines := strings.Split(doc.Text, "\n")
	if p.Position.Line < 0 || p.Position.Line >= len(lines) {
		return resultResponse(req.ID, nil)
	}
	word := wordAt(lines[p.Position.Line], p.Position.Character)
	if word == "" {
		return resultResponse(req.ID, nil)
	}

	loc, ok := s.indexMgr.AllSymbols()[word]
	if !ok {
		return resultResponse(req.ID, nil)
	}
	return resultResponse(req.ID, toLSPLocation(loc.URI, loc.Range))
}

type componentLocationParams struct {
	AppPath       string `json:"appPath"`
	ComponentName string `json:"componentName"`
}

func (s *Server) handleComponentLocation(req Request) *Response {
	var p componentLocationParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, ErrInvalidParams, "invalid componentLocation params")
	}
	for _, c := range s.indexMgr.AllComponents() {
		if c.Name == p.ComponentName {
			return resultResponse(req.ID, toLSPLocation(c.URI, c.Range))
		}
	}
	return resultResponse(req.ID, nil)
}

// statusSnapshot is the payload for `spring-lsp/status`, per §6.
type statusSnapshot struct {
	UptimeSeconds   float64 `json:"uptimeSeconds"`
	DocumentCount   int     `json:"documentCount"`
	RequestCount    uint64  `json:"requestCount"`
	ErrorRate       float64 `json:"errorRate"`
	CompletionCount uint64  `json:"completionCount"`
	HoverCount      uint64  `json:"hoverCount"`
	DiagnosticCount int     `json:"diagnosticCount"`
}

func (s *Server) status() statusSnapshot {
	requests := s.requestCount.Load()
	errors := s.errorCount.Load()
	var errorRate float64
	if requests > 0 {
		errorRate = float64(errors) / float64(requests)
	}

	diagCount := 0
	for _, diags := range s.diagStore.All() {
		diagCount += len(diags)
	}

	return statusSnapshot{
		UptimeSeconds:   s.uptimeSeconds(),
		DocumentCount:   len(s.openURIs()),
		RequestCount:    requests,
		ErrorRate:       errorRate,
		CompletionCount: s.completionCount.Load(),
		HoverCount:      s.hoverCount.Load(),
		DiagnosticCount: diagCount,
	}
}
