package server

import (
	"context"

	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/watcher"
)

// WorkspaceRoot returns the path sent by the client's "initialize"
// request, or "" if none was given.
func (s *Server) WorkspaceRoot() string {
	return s.workspaceRoot
}

// IsOpen reports whether uri is currently open in the editor, per the
// document store lifecycle in §3's Lifecycles note.
func (s *Server) IsOpen(uri string) bool {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	_, ok := s.open[uri]
	return ok
}

// RebuildWorkspace reruns the C5/C6 scan over the workspace root and
// republishes dependency/route diagnostics for every open Rust
// document, the same path a didSave or a settled watcher event drives.
func (s *Server) RebuildWorkspace(ctx context.Context) error {
	if s.workspaceRoot == "" {
		return nil
	}
	if err := s.indexMgr.Rebuild(ctx, s.workspaceRoot, s.docs); err != nil {
		return err
	}
	s.publishDependencyDiagnostics()
	return nil
}

// StartWatcher launches the Workspace Watcher (C12) over the server's
// workspace root. A failure to start (e.g. an inotify instance limit)
// is logged and leaves the server on bootstrap-only indexing, per
// §4.12 — it never aborts startup.
func (s *Server) StartWatcher(ctx context.Context) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.workspaceRoot == "" || s.watch != nil {
		return
	}

	w, err := watcher.New(s.workspaceRoot, s.isPathOpen, func(ev watcher.Event) {
		if err := s.RebuildWorkspace(ctx); err != nil {
			logging.Recovered(logging.CategoryIndex, "rebuild after watched change", err)
		}
	})
	if err != nil {
		logging.Recovered(logging.CategoryWatcher, "start workspace watcher", err)
		return
	}
	s.watch = w
}

// StopWatcher releases the watcher's platform handle, if one was
// started. Safe to call when no watcher is running.
func (s *Server) StopWatcher() {
	s.watchMu.Lock()
	w := s.watch
	s.watch = nil
	s.watchMu.Unlock()

	if w != nil {
		if err := w.Close(); err != nil {
			logging.Recovered(logging.CategoryWatcher, "close workspace watcher", err)
		}
	}
}

// isPathOpen reports whether a filesystem path is open as a document,
// so the watcher can skip changes an in-editor didChange already drove.
func (s *Server) isPathOpen(path string) bool {
	uri := pathToURI(path)
	return s.IsOpen(uri)
}
