package rustmacro

import "strings"

// extractDerives mirrors the teacher's derive-list scanner: find every
// `#[derive(...)]` line in body and split its contents by comma.
func extractDerives(body string) []string {
	var derives []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#[derive(") {
			continue
		}
		start := strings.Index(trimmed, "(")
		end := strings.LastIndex(trimmed, ")")
		if start < 0 || end <= start {
			continue
		}
		for _, part := range strings.Split(trimmed[start+1:end], ",") {
			if d := strings.TrimSpace(part); d != "" {
				derives = append(derives, d)
			}
		}
	}
	return derives
}

// attributeArgs returns the substring between the first "(" and the
// matching last ")" on an attribute line, or "" if the line carries no
// parenthesized arguments (e.g. `#[component]`).
func attributeArgs(line string) string {
	start := strings.Index(line, "(")
	end := strings.LastIndex(line, ")")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(line[start+1 : end])
}

func unquoteArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseInjectArgs(args string) (InjectKind, string) {
	kindPart := args
	componentName := ""
	if idx := strings.Index(args, "="); idx != -1 {
		kindPart = args[:idx]
		componentName = unquoteArg(args[idx+1:])
	}
	kindPart = strings.TrimSpace(kindPart)
	kind := InjectComponent
	if strings.EqualFold(kindPart, "config") {
		kind = InjectConfig
	}
	return kind, componentName
}

// extractInjectFields finds every `#[inject(...)]` attribute inside a
// DeriveService struct body and pairs it with the field declared on the
// next non-attribute line, the same lookahead idiom the teacher's
// extractSerdeAttrs uses to pair a `#[serde(rename...)]` with its field.
func extractInjectFields(body string) []InjectField {
	lines := strings.Split(body, "\n")
	var fields []InjectField
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#[inject(") {
			continue
		}
		kind, componentName := parseInjectArgs(attributeArgs(trimmed))

		name, typeName, ok := fieldDeclarationAfter(lines, i)
		if !ok {
			continue
		}
		fields = append(fields, InjectField{
			Name:          name,
			TypeName:      typeName,
			InjectKind:    kind,
			ComponentName: componentName,
		})
	}
	return fields
}

// extractStandaloneInjects finds `#[inject(...)]` attributes in a
// struct that does not derive Service, producing one Inject macro per
// occurrence (its field's type is not modeled per §3's Inject variant).
func extractStandaloneInjects(body string) []FrameworkMacro {
	var out []FrameworkMacro
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#[inject(") {
			continue
		}
		kind, componentName := parseInjectArgs(attributeArgs(trimmed))
		out = append(out, FrameworkMacro{InjectKind: kind, ComponentName: componentName})
	}
	return out
}

// fieldDeclarationAfter looks at lines[i+1:] for the first non-blank,
// non-attribute line and parses it as `[pub] name: Type[,]`.
func fieldDeclarationAfter(lines []string, i int) (name, typeName string, ok bool) {
	for j := i + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" || strings.HasPrefix(trimmed, "#[") || strings.HasPrefix(trimmed, "///") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "pub ")
		trimmed = strings.TrimSuffix(trimmed, ",")
		colon := strings.Index(trimmed, ":")
		if colon < 0 {
			return "", "", false
		}
		name = strings.TrimSpace(trimmed[:colon])
		typeName = strings.TrimSpace(trimmed[colon+1:])
		return name, typeName, name != "" && typeName != ""
	}
	return "", "", false
}

func extractConfigPrefix(body string) *string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "#[config_prefix") {
			continue
		}
		if idx := strings.Index(trimmed, "="); idx != -1 {
			value := unquoteArg(strings.TrimRight(strings.TrimSpace(trimmed[idx+1:]), "]"))
			if value != "" {
				return &value
			}
		}
	}
	return nil
}

// extractConfigFields collects plain `name: Type` field declarations
// inside a Configurable struct body, recording an immediately preceding
// `///` doc comment as each field's description and treating an
// `Option<...>` type as optional.
func extractConfigFields(body string) []ConfigFieldInfo {
	lines := strings.Split(body, "\n")
	var fields []ConfigFieldInfo
	var pendingDoc *string

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(trimmed, "///"):
			doc := strings.TrimSpace(strings.TrimPrefix(trimmed, "///"))
			pendingDoc = &doc
			continue
		case strings.HasPrefix(trimmed, "#["), trimmed == "", strings.HasPrefix(trimmed, "pub struct"), trimmed == "{", trimmed == "}":
			pendingDoc = nil
			continue
		}

		decl := strings.TrimPrefix(trimmed, "pub ")
		decl = strings.TrimSuffix(decl, ",")
		colon := strings.Index(decl, ":")
		if colon < 0 {
			pendingDoc = nil
			continue
		}
		name := strings.TrimSpace(decl[:colon])
		typeName := strings.TrimSpace(decl[colon+1:])
		if name == "" || typeName == "" {
			pendingDoc = nil
			continue
		}
		fields = append(fields, ConfigFieldInfo{
			Name:        name,
			TypeName:    typeName,
			Optional:    strings.HasPrefix(typeName, "Option<"),
			Description: pendingDoc,
		})
		pendingDoc = nil
	}
	return fields
}

func extractRoute(attrLines []string, handlerName string) (FrameworkMacro, bool) {
	var methods []string
	var middlewares []string
	path := ""
	documented := false

	for _, trimmed := range attrLines {
		if !strings.HasPrefix(trimmed, "#[") {
			continue
		}
		for _, m := range httpMethods {
			if !strings.HasPrefix(trimmed, "#["+m+"(") && !strings.HasPrefix(trimmed, "#["+m+"_api(") {
				continue
			}
			if strings.HasPrefix(trimmed, "#["+m+"_api(") {
				documented = true
			}
			methods = append(methods, m)

			args := attributeArgs(trimmed)
			parts := splitTopLevelArgs(args)
			if len(parts) > 0 {
				if path == "" {
					path = unquoteArg(parts[0])
				}
				for _, extra := range parts[1:] {
					extra = strings.TrimSpace(extra)
					if strings.Contains(extra, "documented") || strings.Contains(extra, "openapi") {
						if strings.Contains(extra, "true") {
							documented = true
						}
						continue
					}
					middlewares = append(middlewares, unquoteArg(extra))
				}
			}
		}
	}

	if len(methods) == 0 {
		return FrameworkMacro{}, false
	}
	return FrameworkMacro{
		Kind:         KindRoute,
		Path:         path,
		Methods:      methods,
		Middlewares:  middlewares,
		HandlerName:  handlerName,
		IsDocumented: documented,
	}, true
}

func splitTopLevelArgs(args string) []string {
	if args == "" {
		return nil
	}
	var parts []string
	depth := 0
	inQuotes := false
	start := 0
	for i, r := range args {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '(', '[':
			if !inQuotes {
				depth++
			}
		case ')', ']':
			if !inQuotes {
				depth--
			}
		case ',':
			if !inQuotes && depth == 0 {
				parts = append(parts, args[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, args[start:])
	return parts
}

func extractJob(attrLines []string, handlerName string) (FrameworkMacro, bool) {
	for _, trimmed := range attrLines {
		switch {
		case strings.HasPrefix(trimmed, "#[cron("):
			expr := unquoteArg(attributeArgs(trimmed))
			return FrameworkMacro{Kind: KindJob, HandlerName: handlerName, Schedule: Schedule{Kind: ScheduleCron, CronExpr: expr}}, true
		case strings.HasPrefix(trimmed, "#[fix_delay("):
			secs := parseIntArg(attributeArgs(trimmed))
			return FrameworkMacro{Kind: KindJob, HandlerName: handlerName, Schedule: Schedule{Kind: ScheduleFixDelay, Seconds: secs}}, true
		case strings.HasPrefix(trimmed, "#[fix_rate("):
			secs := parseIntArg(attributeArgs(trimmed))
			return FrameworkMacro{Kind: KindJob, HandlerName: handlerName, Schedule: Schedule{Kind: ScheduleFixRate, Seconds: secs}}, true
		}
	}
	return FrameworkMacro{}, false
}

func extractAutoConfig(attrLines []string) (string, bool) {
	for _, trimmed := range attrLines {
		if strings.HasPrefix(trimmed, "#[auto_config(") {
			return strings.TrimSpace(attributeArgs(trimmed)), true
		}
	}
	return "", false
}

func parseIntArg(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
