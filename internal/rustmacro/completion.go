package rustmacro

import "github.com/spring-rs/spring-lsp/internal/model"

var cronTemplates = []string{"0 0 * * * *", "0 */15 * * * *", "0 0 0 * * *"}
var jobSeconds = []string{"5", "10", "60"}

// CompleteMacro proposes the permitted parameters for kind, per §4.4.
// Cursor is accepted for interface symmetry with the server's dispatch
// point but every variant's candidate list does not currently depend on
// cursor position within the macro.
func CompleteMacro(kind MacroKind, cursor int) []model.CompletionItem {
	switch kind {
	case KindInject:
		return []model.CompletionItem{
			{Label: "component", Kind: model.CompletionKindKeyword},
			{Label: "config", Kind: model.CompletionKindKeyword},
		}
	case KindRoute:
		items := make([]model.CompletionItem, 0, len(httpMethods)+1)
		for _, m := range httpMethods {
			items = append(items, model.CompletionItem{Label: m, Kind: model.CompletionKindKeyword})
		}
		items = append(items, model.CompletionItem{
			Label: "{id}", InsertText: "{id}", Kind: model.CompletionKindSnippet,
		})
		return items
	case KindJob:
		items := make([]model.CompletionItem, 0, len(cronTemplates)+len(jobSeconds))
		for _, t := range cronTemplates {
			items = append(items, model.CompletionItem{Label: t, InsertText: t, Kind: model.CompletionKindSnippet})
		}
		for _, s := range jobSeconds {
			items = append(items, model.CompletionItem{Label: s, InsertText: s, Kind: model.CompletionKindConstant})
		}
		return items
	default:
		return nil
	}
}
