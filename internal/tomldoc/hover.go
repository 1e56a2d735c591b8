package tomldoc

import (
	"fmt"
	"strings"

	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/schema"
)

// Hover renders a Markdown card for the property at pos, per §4.3's field
// ordering: name and type first, description, default, example, then a
// deprecation notice last if present. Returns "", false when pos does not
// land on a recognized property.
func Hover(doc *TomlDocument, provider *schema.Provider, pos position.Position) (string, bool) {
	section, ok := enclosingSection(doc, pos.Line)
	if !ok {
		return "", false
	}
	key, ok := propertyKeyAtLine(section, pos.Line)
	if !ok {
		return "", false
	}
	propSchema, ok := provider.GetProperty(section.Prefix, key)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s.%s**: `%s`\n", section.Prefix, key, propSchema.TypeInfo.String())
	if propSchema.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", propSchema.Description)
	}
	if propSchema.Default != nil {
		fmt.Fprintf(&b, "\nDefault: `%s`\n", propSchema.Default.String())
	}
	if propSchema.Example != nil {
		fmt.Fprintf(&b, "\nExample: `%s`\n", *propSchema.Example)
	}
	if propSchema.Deprecated != nil {
		fmt.Fprintf(&b, "\n**Deprecated**: %s\n", *propSchema.Deprecated)
	}
	return strings.TrimSpace(b.String()), true
}

func propertyKeyAtLine(section ConfigSection, line int) (string, bool) {
	for key, prop := range section.Properties {
		if prop.Range.Start.Line == line {
			return key, true
		}
	}
	return "", false
}
