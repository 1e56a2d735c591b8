// Package watcher implements the Workspace Watcher (C12): it recursively
// watches a workspace root for create/write/remove/rename events on .rs
// and .toml files made outside the editor, coalesces bursts of events on
// the same path, and feeds the same rebuild path a didSave notification
// would. Grounded on the teacher's MangleWatcher
// (internal/core/mangle_watcher.go): fsnotify.Watcher, a debounce map
// drained by a ticker, and a stop/done channel pair for clean shutdown.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spring-rs/spring-lsp/internal/logging"
)

// Op mirrors fsnotify's operation bits in the vocabulary §3.10 names for
// WatchEvent.
type Op int

const (
	Create Op = iota
	Write
	Remove
	Rename
)

// Event is a coalesced, recognized filesystem change.
type Event struct {
	Path string
	Op   Op
}

// Watcher recursively watches root for .rs/.toml changes, skipping
// target/, .git/, and any directory name listed in a root-level
// .gitignore (best effort, not a full gitignore engine per §4.12).
type Watcher struct {
	fsw  *fsnotify.Watcher
	root string
	skip func(path string) bool

	debounceDur time.Duration

	mu       sync.Mutex
	pending  map[string]Event
	lastSeen map[string]time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

var defaultSkipDirs = map[string]struct{}{
	"target": {}, ".git": {}, "node_modules": {},
}

// New builds a Watcher over root. skip reports whether a path (currently
// open in the editor) should be ignored, since an open document's own
// didChange already drives re-analysis. onChange is invoked once per
// settled, recognized event with the translated path and operation.
func New(root string, skip func(path string) bool, onChange func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:         fsw,
		root:        root,
		skip:        skip,
		debounceDur: 300 * time.Millisecond,
		pending:     make(map[string]Event),
		lastSeen:    make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	ignored := readGitignoreDirs(root)
	if err := w.addTree(root, ignored); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.run(onChange)
	return w, nil
}

// Close stops the watcher and releases its underlying inotify (or
// platform-equivalent) handle.
func (w *Watcher) Close() error {
	close(w.stopCh)
	<-w.doneCh
	return w.fsw.Close()
}

func readGitignoreDirs(root string) map[string]struct{} {
	ignored := make(map[string]struct{})
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return ignored
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, "/")
		if line == "" || strings.HasPrefix(line, "#") || strings.ContainsAny(line, "*?[") {
			continue
		}
		ignored[line] = struct{}{}
	}
	return ignored
}

func (w *Watcher) addTree(dir string, ignored map[string]struct{}) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // best effort: skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if _, skip := defaultSkipDirs[name]; skip && path != dir {
			return filepath.SkipDir
		}
		if _, skip := ignored[name]; skip && path != dir {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			logging.Recovered(logging.CategoryWatcher, "watch directory "+path, addErr)
		}
		return nil
	})
}

func relevant(path string) bool {
	return strings.HasSuffix(path, ".rs") || strings.HasSuffix(path, ".toml")
}

func translateOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return Create, true
	case op&fsnotify.Write != 0:
		return Write, true
	case op&fsnotify.Remove != 0:
		return Remove, true
	case op&fsnotify.Rename != 0:
		return Rename, true
	default:
		return 0, false
	}
}

func (w *Watcher) run(onChange func(Event)) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev.Name) {
				continue
			}
			if w.skip != nil && w.skip(ev.Name) {
				continue
			}
			op, recognized := translateOp(ev.Op)
			if !recognized {
				continue
			}
			w.mu.Lock()
			w.pending[ev.Name] = Event{Path: ev.Name, Op: op}
			w.lastSeen[ev.Name] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Recovered(logging.CategoryWatcher, "filesystem watch", err)

		case <-ticker.C:
			for _, ev := range w.drainSettled() {
				onChange(ev)
			}
		}
	}
}

func (w *Watcher) drainSettled() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var settled []Event
	for path, seenAt := range w.lastSeen {
		if now.Sub(seenAt) < w.debounceDur {
			continue
		}
		settled = append(settled, w.pending[path])
		delete(w.pending, path)
		delete(w.lastSeen, path)
	}
	return settled
}
