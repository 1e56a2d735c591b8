// Package diagnostics implements the Diagnostic Engine (C8): a
// concurrent URI -> []Diagnostic map, generalized from the teacher's
// `diagnostics map[string][]Diagnostic` guarded by a sync.RWMutex
// (internal/mangle/lsp.go) into a sharded concurrent map consistent
// with internal/document's Store.
package diagnostics

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
)

// Store holds the current diagnostic set for every open document.
// Publishing replaces a URI's entire set rather than merging into it,
// per the data model invariant that a diagnostic set is always the
// output of the latest full analysis pass.
type Store struct {
	byURI *xsync.MapOf[string, []model.Diagnostic]
}

// NewStore creates an empty Diagnostic Store.
func NewStore() *Store {
	return &Store{byURI: xsync.NewMapOf[string, []model.Diagnostic]()}
}

// Publish replaces uri's diagnostics with found, after filtering out any
// code disabled by cfg. A nil or empty found still replaces whatever was
// there, so a document that becomes clean is reported as clean.
func (s *Store) Publish(uri string, found []model.Diagnostic, cfg *serverconfig.Config) []model.Diagnostic {
	filtered := make([]model.Diagnostic, 0, len(found))
	for _, d := range found {
		if cfg != nil && cfg.IsDiagnosticDisabled(d.Code) {
			continue
		}
		filtered = append(filtered, d)
	}
	s.byURI.Store(uri, filtered)
	return filtered
}

// Get returns a copy of uri's current diagnostics.
func (s *Store) Get(uri string) []model.Diagnostic {
	found, ok := s.byURI.Load(uri)
	if !ok {
		return nil
	}
	return append([]model.Diagnostic(nil), found...)
}

// Clear removes uri entirely, used when a document closes.
func (s *Store) Clear(uri string) {
	s.byURI.Delete(uri)
}

// All returns every URI currently tracked with a non-empty diagnostic
// set, snapshotted under the map's own iteration guarantees.
func (s *Store) All() map[string][]model.Diagnostic {
	out := make(map[string][]model.Diagnostic)
	s.byURI.Range(func(uri string, diags []model.Diagnostic) bool {
		if len(diags) > 0 {
			out[uri] = append([]model.Diagnostic(nil), diags...)
		}
		return true
	})
	return out
}
