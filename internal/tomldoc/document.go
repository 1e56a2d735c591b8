// Package tomldoc implements the TOML Analyzer (C3): lossless parse,
// section/property/env-var extraction, schema-driven validation,
// completion, and hover rendering over framework configuration files.
package tomldoc

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
)

// EnvVarReference is one `${NAME[:default]}` substring found inside a
// string value.
type EnvVarReference struct {
	Name    string
	Default *string
	Range   position.Range
}

// Equal reports whether two references carry the same (name, default),
// per the equality rule in §4.3.
func (e EnvVarReference) Equal(o EnvVarReference) bool {
	if e.Name != o.Name {
		return false
	}
	if (e.Default == nil) != (o.Default == nil) {
		return false
	}
	return e.Default == nil || *e.Default == *o.Default
}

// ConfigProperty is one key-value pair inside a ConfigSection.
type ConfigProperty struct {
	Key   string
	Value model.Value
	Range position.Range
}

// ConfigSection is one top-level table, keyed by its header ("prefix").
type ConfigSection struct {
	Prefix     string
	Range      position.Range
	Properties map[string]ConfigProperty
	// Order preserves declaration order of properties within the
	// section, used so validation diagnostics are emitted in traversal
	// order per §4.3.
	Order []string
}

// TomlDocument is the result of a successful parse: the lossless tree,
// the extracted sections, and every environment-variable reference
// found in string values.
type TomlDocument struct {
	Text     string
	tree     *sitter.Tree
	Sections map[string]ConfigSection
	// SectionOrder preserves top-level table declaration order.
	SectionOrder []string
	EnvVars      []EnvVarReference
}

// Close releases the underlying tree-sitter tree. Callers that keep a
// TomlDocument only momentarily (e.g. for a single validation pass) may
// skip calling Close; the tree is otherwise reclaimed by the garbage
// collector once unreferenced, same as any other Go value, but
// tree-sitter trees hold C memory so eagerly closing avoids pressure
// under heavy incremental editing.
func (d *TomlDocument) Close() {
	if d.tree != nil {
		d.tree.Close()
	}
}

// ParseError carries a range and a human message for a syntax error
// encountered during parsing. Per §4.3, a syntax error is reported but
// does not prevent best-effort extraction of the partial tree.
type ParseError struct {
	Range   position.Range
	Message string
}

func (e *ParseError) Error() string { return e.Message }
