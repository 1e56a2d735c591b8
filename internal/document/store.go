// Package document implements the Document Store (C2): a concurrent,
// versioned mapping from URI to text, generalized from the teacher's
// LSPServer.documents map (internal/mangle/lsp.go) into a sharded
// concurrent map per the design note in SPEC_FULL.md §9.
package document

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/position"
)

// Language tags the kind of analysis a document's text should receive.
type Language string

const (
	LanguageTOML    Language = "toml"
	LanguageRust    Language = "rust"
	LanguageUnknown Language = "unknown"
)

// Document is one open file: its URI, monotonically increasing version,
// language tag, and current text.
type Document struct {
	URI      string
	Version  int
	Language Language
	Text     string
}

// Edit is either a whole-text replacement (Range == nil) or a
// range-scoped incremental edit.
type Edit struct {
	Range   *position.Range
	NewText string
}

// Store is the concurrent URI -> Document mapping. Per-URI writers are
// serialized by the underlying sharded map's per-bucket locking;
// operations on distinct URIs never contend.
type Store struct {
	docs *xsync.MapOf[string, Document]
}

// NewStore creates an empty Document Store.
func NewStore() *Store {
	return &Store{docs: xsync.NewMapOf[string, Document]()}
}

// Open inserts or replaces uri's document.
func (s *Store) Open(uri string, version int, text string, lang Language) {
	s.docs.Store(uri, Document{URI: uri, Version: version, Language: lang, Text: text})
}

// Close removes uri from the store.
func (s *Store) Close(uri string) {
	s.docs.Delete(uri)
}

// Get returns a clone of uri's current document.
func (s *Store) Get(uri string) (Document, bool) {
	return s.docs.Load(uri)
}

// With holds a short logical read over uri's document and passes it to
// f. Because the underlying map already hands out value copies, With is
// equivalent to Get for this implementation's purposes but documents the
// read-only intent at call sites, mirroring the spec's `with`/`get`
// split.
func (s *Store) With(uri string, f func(Document)) bool {
	doc, ok := s.docs.Load(uri)
	if !ok {
		return false
	}
	f(doc)
	return true
}

// Change applies an ordered batch of edits to uri, bumping its version.
// version must not be less than the document's current version; if it
// is, the call is ignored (an out-of-order notification), since the
// spec requires that version never decreases.
//
// Each edit is applied by converting its LSP range to a byte offset
// using UTF-16-aware column mapping (internal/position). If any edit in
// the batch cannot be applied cleanly (its range does not resolve
// inside the current text), the whole batch falls back to a full
// resync: the last edit carrying a nil Range (a whole-document
// replacement) is used verbatim if present, otherwise the original text
// is kept and the failure is logged — this is the "fall back to a full
// reparse... and emit a log event" path named in §4.2.
func (s *Store) Change(uri string, version int, edits []Edit) error {
	doc, ok := s.docs.Load(uri)
	if !ok {
		return fmt.Errorf("change: unknown document %s", uri)
	}
	if version < doc.Version {
		return nil
	}

	newText, err := applyEdits(doc.Text, edits)
	if err != nil {
		logging.Recovered(logging.CategoryDocument, "apply incremental edit, falling back to full resync for "+uri, err)
		newText = fullResyncText(doc.Text, edits)
	}

	doc.Version = version
	doc.Text = newText
	s.docs.Store(uri, doc)
	return nil
}

func applyEdits(text string, edits []Edit) (string, error) {
	for _, e := range edits {
		if e.Range == nil {
			text = e.NewText
			continue
		}
		start, end := position.ByteSpan(text, *e.Range)
		if start < 0 || end > len(text) || start > end {
			return "", fmt.Errorf("edit range [%d,%d) out of bounds for %d-byte document", start, end, len(text))
		}
		text = text[:start] + e.NewText + text[end:]
	}
	return text, nil
}

// fullResyncText picks the text to keep when position-based application
// failed: the most recent whole-document replacement in the batch if
// there is one, otherwise the previous text unchanged. Incremental
// fragments are not re-applied on this recovery path.
func fullResyncText(previous string, edits []Edit) string {
	for i := len(edits) - 1; i >= 0; i-- {
		if edits[i].Range == nil {
			return edits[i].NewText
		}
	}
	return previous
}
