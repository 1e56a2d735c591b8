package rustmacro

import (
	"fmt"
	"strings"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
)

// Validate runs the macro taxonomy's error/warning codes (E001-E015,
// W001) over every macro recognized in doc, independent of whether the
// surrounding Rust would actually compile.
func Validate(uri string, doc *RustDocument) []model.Diagnostic {
	var diags []model.Diagnostic
	for _, m := range doc.Macros {
		diags = append(diags, validateMacro(uri, m)...)
	}
	return diags
}

func validateMacro(uri string, m FrameworkMacro) []model.Diagnostic {
	switch m.Kind {
	case KindInject:
		return validateInject(uri, m.Range, m.InjectKind, m.ComponentName)
	case KindDeriveService:
		var diags []model.Diagnostic
		for _, f := range m.Fields {
			if f.InjectKind == InjectComponent && f.ComponentName == "" {
				continue
			}
			diags = append(diags, validateInject(uri, f.Range, f.InjectKind, f.ComponentName)...)
		}
		return diags
	case KindAutoConfig:
		if strings.TrimSpace(m.ConfiguratorName) == "" {
			return []model.Diagnostic{model.NewDiagnostic(uri, m.Range, model.SeverityError,
				"E003", "auto_config requires a configurator type name")}
		}
	case KindRoute:
		return validateRoute(uri, m)
	case KindJob:
		return validateJob(uri, m)
	}
	return nil
}

// validateInject implements E001/E002. A field-level inject has a
// TypeName to fall back on for component identity, so E001 (empty
// component name) only fires for a standalone Inject, whose range never
// carries one.
func validateInject(uri string, rng position.Range, kind InjectKind, componentName string) []model.Diagnostic {
	var diags []model.Diagnostic
	if kind == InjectComponent && componentName == "" {
		diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError,
			"E001", "inject(component) requires a component name"))
	}
	if kind == InjectConfig && componentName != "" {
		diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError,
			"E002", "inject(config) must not carry a component name"))
	}
	return diags
}

var pathParamChar = func(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

func validateRoute(uri string, m FrameworkMacro) []model.Diagnostic {
	var diags []model.Diagnostic

	if m.Path == "" {
		diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E004", "route path must not be empty"))
	} else if !strings.HasPrefix(m.Path, "/") {
		diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E005", "route path must start with '/'"))
	}
	if len(m.Methods) == 0 {
		diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E006", "route has no HTTP method"))
	}
	if m.HandlerName == "" {
		diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E007", "route handler name must not be empty"))
	}
	diags = append(diags, validatePathParams(uri, m.Range, m.Path)...)
	return diags
}

// validatePathParams lints `{param}` placeholders: nested braces,
// unmatched braces, an empty name, and a name using a disallowed
// character, in that code order (E008-E012).
func validatePathParams(uri string, rng position.Range, path string) []model.Diagnostic {
	var diags []model.Diagnostic
	var nameBuilder strings.Builder
	inParam := false

	for _, r := range path {
		switch {
		case r == '{':
			if inParam {
				diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError, "E008", "nested '{' in path parameter"))
				continue
			}
			inParam = true
			nameBuilder.Reset()
		case r == '}':
			if !inParam {
				diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError, "E009", "'}' without matching '{' in path"))
				continue
			}
			inParam = false
			name := nameBuilder.String()
			if name == "" {
				diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError, "E012", "path parameter name must not be empty"))
			} else if !allRuneMatch(name, pathParamChar) {
				diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError, "E011", "path parameter name contains a disallowed character"))
			}
		case inParam:
			nameBuilder.WriteRune(r)
		}
	}
	if inParam {
		diags = append(diags, model.NewDiagnostic(uri, rng, model.SeverityError, "E010", "path parameter missing closing '}'"))
	}
	return diags
}

func allRuneMatch(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func validateJob(uri string, m FrameworkMacro) []model.Diagnostic {
	var diags []model.Diagnostic
	switch m.Schedule.Kind {
	case ScheduleCron:
		expr := strings.TrimSpace(m.Schedule.CronExpr)
		if expr == "" {
			diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E013", "cron expression must not be empty"))
			break
		}
		if len(strings.Fields(expr)) != 6 {
			diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E015",
				fmt.Sprintf("cron expression must have 6 whitespace-separated fields, found %d", len(strings.Fields(expr)))))
		}
	case ScheduleFixRate:
		if m.Schedule.Seconds == 0 {
			diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityError, "E014", "fix_rate seconds must not be zero"))
		}
	case ScheduleFixDelay:
		if m.Schedule.Seconds == 0 {
			diags = append(diags, model.NewDiagnostic(uri, m.Range, model.SeverityWarning, "W001", "fix_delay seconds is zero"))
		}
	}
	return diags
}
