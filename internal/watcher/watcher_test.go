package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherReportsWriteToRustFile(t *testing.T) {
	dir := t.TempDir()
	rsPath := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(rsPath, []byte("fn main() {}"), 0o644))

	events := make(chan Event, 8)
	w, err := New(dir, func(string) bool { return false }, func(ev Event) {
		events <- ev
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(rsPath, []byte("fn main() { println!(\"hi\"); }"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, rsPath, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestWatcherIgnoresNonRustTomlFiles(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("hello"), 0o644))

	events := make(chan Event, 8)
	w, err := New(dir, func(string) bool { return false }, func(ev Event) {
		events <- ev
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(txtPath, []byte("hello again"), 0o644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for non-watched file: %+v", ev)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherSkipsOpenDocuments(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[web]\n"), 0o644))

	events := make(chan Event, 8)
	w, err := New(dir, func(path string) bool { return path == tomlPath }, func(ev Event) {
		events <- ev
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(tomlPath, []byte("[web]\nport = 9000\n"), 0o644))

	select {
	case ev := <-events:
		t.Fatalf("expected skip() to suppress the event, got %+v", ev)
	case <-time.After(600 * time.Millisecond):
	}
}
