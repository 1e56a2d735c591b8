package tomldoc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/spring-rs/spring-lsp/internal/position"
)

// extractEnvVars scans every string-value node in the tree for
// `${NAME[:default]}` substitutions and appends one EnvVarReference per
// occurrence, in document order. The range of each reference covers the
// `${...}` substring itself, not the enclosing string literal, so a
// completion or hover request positioned inside the braces resolves to
// exactly one reference.
func extractEnvVars(content []byte, doc *TomlDocument) {
	if doc.tree == nil {
		return
	}
	walkStrings(doc.tree.RootNode(), content, doc)
}

func walkStrings(n *sitter.Node, content []byte, doc *TomlDocument) {
	if n == nil {
		return
	}
	if n.Type() == "string" {
		start := int(n.StartByte())
		end := int(n.EndByte())
		scanEnvVars(content[start:end], start, doc)
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkStrings(n.NamedChild(i), content, doc)
	}
}

// scanEnvVars finds every `${NAME[:default]}` occurrence in raw (one
// string node's source text, including its quotes) and appends a
// reference for each, with byteOffset added to translate local indices
// back to document-wide byte positions.
func scanEnvVars(raw []byte, byteOffset int, doc *TomlDocument) {
	s := string(raw)
	for {
		open := strings.Index(s, "${")
		if open == -1 {
			return
		}
		shut := strings.Index(s[open:], "}")
		if shut == -1 {
			return
		}
		shut += open

		inner := s[open+2 : shut]
		name := inner
		var def *string
		if idx := strings.Index(inner, ":"); idx != -1 {
			name = inner[:idx]
			d := inner[idx+1:]
			def = &d
		}
		name = strings.TrimSpace(name)

		ref := EnvVarReference{
			Name:    name,
			Default: def,
			Range:   position.RangeFromByteSpan(doc.Text, byteOffset+open, byteOffset+shut+1),
		}
		doc.EnvVars = append(doc.EnvVars, ref)

		s = s[shut+1:]
		byteOffset += shut + 1
	}
}
