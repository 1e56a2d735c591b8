// Package completion implements the Completion Engine (C7): a single
// dispatch point that routes a position to the TOML or Rust-macro
// analyzer based on document language and cursor context, mirroring the
// teacher's GetCompletions word-at-position dispatch
// (internal/mangle/lsp.go).
package completion

import (
	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/schema"
	"github.com/spring-rs/spring-lsp/internal/tomldoc"
)

// Context tags which analyzer a completion request was routed to.
type Context int

const (
	ContextUnknown Context = iota
	ContextToml
	ContextMacro
)

// Request bundles everything a single completion call might need. The
// two parsed-document fields are optional: only the one matching
// Language is ever read.
type Request struct {
	Language document.Language
	Position position.Position
	TomlDoc  *tomldoc.TomlDocument
	RustDoc  *rustmacro.RustDocument
}

// Complete resolves req's context and delegates to the matching
// analyzer. An Unknown context (unrecognized language, or a Rust cursor
// outside every recognized macro) yields an empty list rather than a
// guess.
func Complete(req Request, provider *schema.Provider) []model.CompletionItem {
	switch classify(req) {
	case ContextToml:
		return tomldoc.Complete(req.TomlDoc, provider, req.Position)
	case ContextMacro:
		m, ok := enclosingMacro(req.RustDoc, req.Position)
		if !ok {
			return nil
		}
		return rustmacro.CompleteMacro(m.Kind, req.Position.Character)
	default:
		return nil
	}
}

func classify(req Request) Context {
	switch req.Language {
	case document.LanguageTOML:
		if req.TomlDoc != nil {
			return ContextToml
		}
		return ContextUnknown
	case document.LanguageRust:
		if req.RustDoc != nil {
			if _, ok := enclosingMacro(req.RustDoc, req.Position); ok {
				return ContextMacro
			}
		}
		return ContextUnknown
	default:
		return ContextUnknown
	}
}

// enclosingMacro returns the first macro in doc.Macros whose line span
// contains pos; when spans nest, it does not pick the innermost one.
func enclosingMacro(doc *rustmacro.RustDocument, pos position.Position) (rustmacro.FrameworkMacro, bool) {
	for _, m := range doc.Macros {
		if pos.Line >= m.Range.Start.Line && pos.Line <= m.Range.End.Line {
			return m, true
		}
	}
	return rustmacro.FrameworkMacro{}, false
}
