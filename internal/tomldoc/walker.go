package tomldoc

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
)

// walkDocument walks the root node's top-level tables in declaration
// order, building doc.Sections/doc.SectionOrder, mirroring the
// tree-sitter walk idiom (a getText closure over byte spans, switching
// on node.Type()) the macro analyzer's tree-sitter wrapper also uses.
func walkDocument(root *sitter.Node, content []byte, doc *TomlDocument) {
	getText := func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		return string(content[n.StartByte():n.EndByte()])
	}

	var currentPrefix string
	var currentSection *ConfigSection

	flush := func() {
		if currentSection != nil {
			doc.Sections[currentSection.Prefix] = *currentSection
		}
	}
	addPair := func(n *sitter.Node) {
		prop := parsePair(n, content, doc.Text, getText)
		if prop == nil {
			return
		}
		if _, exists := currentSection.Properties[prop.Key]; !exists {
			currentSection.Order = append(currentSection.Order, prop.Key)
		}
		currentSection.Properties[prop.Key] = *prop
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "table", "table_array_element":
			flush()
			header := headerKeyText(child, getText)
			currentPrefix = header
			sec := ConfigSection{
				Prefix:     header,
				Range:      position.RangeFromByteSpan(doc.Text, int(headerKeyByteStart(child)), int(headerKeyByteEnd(child))),
				Properties: make(map[string]ConfigProperty),
			}
			currentSection = &sec
			doc.SectionOrder = append(doc.SectionOrder, header)
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if pc := child.NamedChild(j); pc.Type() == "pair" {
					addPair(pc)
				}
			}

		case "pair":
			if currentSection == nil {
				// Top-level key before any table header; the framework's
				// configuration files always scope properties under a
				// table, so a bare top-level pair has no section to join
				// and is skipped rather than guessed at.
				continue
			}
			addPair(child)
		}
	}
	flush()
	_ = currentPrefix
}

func headerKeyNode(table *sitter.Node) *sitter.Node {
	for i := 0; i < int(table.NamedChildCount()); i++ {
		c := table.NamedChild(i)
		switch c.Type() {
		case "bare_key", "quoted_key", "dotted_key":
			return c
		}
	}
	return nil
}

func headerKeyText(table *sitter.Node, getText func(*sitter.Node) string) string {
	n := headerKeyNode(table)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(getText(n))
}

func headerKeyByteStart(table *sitter.Node) uint32 {
	if n := headerKeyNode(table); n != nil {
		return n.StartByte()
	}
	return table.StartByte()
}

func headerKeyByteEnd(table *sitter.Node) uint32 {
	if n := headerKeyNode(table); n != nil {
		return n.EndByte()
	}
	return table.EndByte()
}

func parsePair(pair *sitter.Node, content []byte, text string, getText func(*sitter.Node) string) *ConfigProperty {
	if pair.NamedChildCount() < 2 {
		return nil
	}
	keyNode := pair.NamedChild(0)
	valueNode := pair.NamedChild(1)

	key := strings.TrimSpace(getText(keyNode))
	value := translateValue(valueNode, content, getText)

	return &ConfigProperty{
		Key:   key,
		Value: value,
		Range: position.RangeFromByteSpan(text, int(pair.StartByte()), int(pair.EndByte())),
	}
}

// translateValue converts a tree-sitter value node into a model.Value,
// recursing for arrays and inline tables, per §3's TOML Document model.
func translateValue(n *sitter.Node, content []byte, getText func(*sitter.Node) string) model.Value {
	if n == nil {
		return model.Value{}
	}
	switch n.Type() {
	case "string":
		return model.Value{Kind: model.ValueString, Str: unquote(getText(n))}
	case "integer":
		raw := strings.ReplaceAll(getText(n), "_", "")
		i, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return model.Value{Kind: model.ValueInteger, Int: 0}
		}
		return model.Value{Kind: model.ValueInteger, Int: i}
	case "float":
		raw := strings.ReplaceAll(getText(n), "_", "")
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Value{Kind: model.ValueFloat, Float: 0}
		}
		return model.Value{Kind: model.ValueFloat, Float: f}
	case "boolean":
		return model.Value{Kind: model.ValueBoolean, Bool: getText(n) == "true"}
	case "array":
		var items []model.Value
		for i := 0; i < int(n.NamedChildCount()); i++ {
			items = append(items, translateValue(n.NamedChild(i), content, getText))
		}
		return model.Value{Kind: model.ValueArray, Arr: items}
	case "inline_table":
		table := make(map[string]model.Value)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() != "pair" {
				continue
			}
			prop := parsePair(c, content, "", getText)
			if prop != nil {
				table[prop.Key] = prop.Value
			}
		}
		return model.Value{Kind: model.ValueTable, Table: table}
	default:
		// Dates and any grammar node not yet modeled surface as their
		// literal text; the analyzer does not need date arithmetic.
		return model.Value{Kind: model.ValueString, Str: getText(n)}
	}
}

func unquote(raw string) string {
	trimmed := raw
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) && len(trimmed) >= 2*len(q) {
			return trimmed[len(q) : len(trimmed)-len(q)]
		}
	}
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}
