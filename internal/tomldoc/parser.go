package tomldoc

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/toml"

	"github.com/spring-rs/spring-lsp/internal/position"
)

// Parser wraps a tree-sitter TOML parser, mirroring the multi-language
// parser wrapper the macro analyzer and the original world scanner use
// (one *sitter.Parser per language, reused across calls).
type Parser struct {
	sitterParser *sitter.Parser
}

// NewParser constructs a reusable TOML parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(toml.GetLanguage())
	return &Parser{sitterParser: p}
}

// Parse produces a TomlDocument from text. The parse is lossless: the
// returned tree preserves every node's original byte span so that
// sections, properties, comments, and whitespace all keep their source
// position. A non-nil ParseError accompanies a best-effort partial
// TomlDocument whenever tree-sitter's error recovery still yields usable
// section/property nodes.
func (p *Parser) Parse(text string) (*TomlDocument, *ParseError) {
	content := []byte(text)
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{
			Range:   position.Range{},
			Message: "failed to parse TOML: " + err.Error(),
		}
	}

	root := tree.RootNode()
	doc := &TomlDocument{
		Text:     text,
		tree:     tree,
		Sections: make(map[string]ConfigSection),
	}

	var parseErr *ParseError
	if root.HasError() {
		parseErr = &ParseError{
			Range:   position.RangeFromByteSpan(text, int(root.StartByte()), int(root.EndByte())),
			Message: "TOML document contains syntax errors; partial results shown",
		}
	}

	walkDocument(root, content, doc)
	extractEnvVars(content, doc)

	return doc, parseErr
}
