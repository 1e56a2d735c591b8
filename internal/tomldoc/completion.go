package tomldoc

import (
	"sort"
	"strings"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/schema"
)

// Complete dispatches a completion request at pos to one of the four
// contexts named in §4.3: a section header, a property key, a property
// value with enumerated choices, or an `${ }` environment-variable
// reference. Any other position yields no completions rather than a
// guess.
func Complete(doc *TomlDocument, provider *schema.Provider, pos position.Position) []model.CompletionItem {
	offset := position.ToOffset(doc.Text, pos)
	line := currentLine(doc.Text, offset)
	col := offset - lineStartOffset(doc.Text, offset)
	if col > len(line) {
		col = len(line)
	}
	prefix := line[:col]

	if insideEnvVarBraces(prefix) {
		return model.DedupeByLabel(envVarCompletions(doc))
	}
	if insideHeaderBrackets(prefix) {
		return model.DedupeByLabel(sectionHeaderCompletions(provider))
	}

	section, ok := enclosingSection(doc, pos.Line)
	if !ok {
		return nil
	}
	plugin, ok := provider.GetPlugin(section.Prefix)
	if !ok {
		return nil
	}

	if eq := strings.Index(prefix, "="); eq != -1 {
		key := strings.TrimSpace(prefix[:eq])
		propSchema, ok := plugin.Properties[key]
		if !ok || len(propSchema.TypeInfo.EnumValues) == 0 {
			return nil
		}
		return model.DedupeByLabel(enumValueCompletions(propSchema.TypeInfo.EnumValues))
	}

	return model.DedupeByLabel(propertyKeyCompletions(plugin, section))
}

func currentLine(text string, offset int) string {
	start := lineStartOffset(text, offset)
	end := strings.IndexByte(text[offset:], '\n')
	if end == -1 {
		return text[start:]
	}
	return text[start : offset+end]
}

func lineStartOffset(text string, offset int) int {
	idx := strings.LastIndexByte(text[:offset], '\n')
	if idx == -1 {
		return 0
	}
	return idx + 1
}

func insideHeaderBrackets(prefix string) bool {
	trimmed := strings.TrimLeft(prefix, " \t")
	return strings.HasPrefix(trimmed, "[") && !strings.Contains(trimmed, "]")
}

func insideEnvVarBraces(prefix string) bool {
	open := strings.LastIndex(prefix, "${")
	if open == -1 {
		return false
	}
	return !strings.Contains(prefix[open:], "}")
}

func enclosingSection(doc *TomlDocument, line int) (ConfigSection, bool) {
	var best string
	var found bool
	for _, prefix := range doc.SectionOrder {
		sec := doc.Sections[prefix]
		if sec.Range.Start.Line <= line {
			best = prefix
			found = true
		}
	}
	if !found {
		return ConfigSection{}, false
	}
	return doc.Sections[best], true
}

func sectionHeaderCompletions(provider *schema.Provider) []model.CompletionItem {
	prefixes := provider.ListPrefixes()
	sort.Strings(prefixes)
	items := make([]model.CompletionItem, 0, len(prefixes))
	for _, p := range prefixes {
		items = append(items, model.CompletionItem{Label: p, Kind: model.CompletionKindClass})
	}
	return items
}

func propertyKeyCompletions(plugin model.PluginSchema, section ConfigSection) []model.CompletionItem {
	names := make([]string, 0, len(plugin.Properties))
	for name := range plugin.Properties {
		if _, present := section.Properties[name]; present {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]model.CompletionItem, 0, len(names))
	for _, name := range names {
		ps := plugin.Properties[name]
		items = append(items, model.CompletionItem{
			Label:         name,
			Detail:        ps.TypeInfo.String(),
			Documentation: ps.Description,
			Kind:          model.CompletionKindProperty,
		})
	}
	return items
}

func enumValueCompletions(values []string) []model.CompletionItem {
	items := make([]model.CompletionItem, 0, len(values))
	for _, v := range values {
		items = append(items, model.CompletionItem{
			Label:      v,
			InsertText: `"` + v + `"`,
			Kind:       model.CompletionKindEnumMember,
		})
	}
	return items
}

func envVarCompletions(doc *TomlDocument) []model.CompletionItem {
	items := make([]model.CompletionItem, 0, len(doc.EnvVars))
	for _, ref := range doc.EnvVars {
		items = append(items, model.CompletionItem{Label: ref.Name, Kind: model.CompletionKindVariable})
	}
	return items
}
