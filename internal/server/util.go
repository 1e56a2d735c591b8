package server

import (
	"path/filepath"
	"strings"
)

// buildVersion is reported as serverInfo.version. It can be set at link
// time with -ldflags "-X github.com/spring-rs/spring-lsp/internal/server.buildVersion=...";
// the cmd/ entrypoint's -X main.version does not reach it, and "dev" is
// the fallback.
var buildVersion = "dev"

// uriToPath converts a file:// URI to a filesystem path, mirroring the
// teacher's uriToPath (internal/mangle/lsp.go).
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	path := strings.TrimPrefix(uri, "file://")
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

// pathToURI converts a filesystem path to a file:// URI, the inverse of
// uriToPath, used to translate watcher events into the same shape the
// editor's own didSave notifications carry.
func pathToURI(path string) string {
	slashed := filepath.ToSlash(path)
	if len(slashed) > 1 && slashed[1] == ':' {
		return "file:///" + slashed
	}
	return "file://" + slashed
}

// isWordChar mirrors the teacher's identifier-character predicate.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_'
}

// wordAt returns the identifier touching col in line, per the teacher's
// getWordAtPosition (internal/mangle/lsp.go).
func wordAt(line string, col int) string {
	if col < 0 || col > len(line) {
		return ""
	}
	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	return line[start:end]
}
