package tomldoc

import (
	"fmt"
	"regexp"

	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/schema"
)

var envVarNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Validate runs every schema-driven and env-var check over doc, in
// section/property declaration order, and returns the diagnostics found.
// A type mismatch on a property short-circuits that property's range
// checks (enum/length/min/max), per §4.3's ordering rule, since a value
// of the wrong kind has no meaningful range to report on.
func Validate(uri string, doc *TomlDocument, provider *schema.Provider) []model.Diagnostic {
	var diags []model.Diagnostic

	for _, prefix := range doc.SectionOrder {
		section := doc.Sections[prefix]
		plugin, ok := provider.GetPlugin(prefix)
		if !ok {
			diags = append(diags, model.NewDiagnostic(uri, section.Range, model.SeverityError,
				"undefined-section", fmt.Sprintf("unrecognized configuration section %q", prefix)))
			continue
		}

		for _, key := range section.Order {
			prop := section.Properties[key]
			propSchema, ok := plugin.Properties[key]
			if !ok {
				diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
					"undefined-property", fmt.Sprintf("unrecognized property %q in section %q", key, prefix)))
				continue
			}

			if propSchema.Deprecated != nil {
				diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityWarning,
					"deprecated-property", fmt.Sprintf("%q is deprecated: %s", key, *propSchema.Deprecated)))
			}

			if !propSchema.TypeInfo.Matches(prop.Value) {
				diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
					"type-mismatch", fmt.Sprintf("%q expects %s, found %s", key, propSchema.TypeInfo.String(), prop.Value.TypeName())))
				continue
			}

			diags = append(diags, rangeDiagnostics(uri, prop, propSchema)...)
		}

		for name, propSchema := range plugin.Properties {
			if !propSchema.Required {
				continue
			}
			if _, present := section.Properties[name]; !present {
				diags = append(diags, model.NewDiagnostic(uri, section.Range, model.SeverityWarning,
					"missing-required-property", fmt.Sprintf("section %q is missing required property %q", prefix, name)))
			}
		}
	}

	diags = append(diags, validateEnvVars(uri, doc)...)
	return diags
}

func rangeDiagnostics(uri string, prop ConfigProperty, propSchema model.PropertySchema) []model.Diagnostic {
	var diags []model.Diagnostic
	t := propSchema.TypeInfo

	switch t.Kind {
	case model.TypeString:
		if t.MinLength != nil && len(prop.Value.Str) < *t.MinLength {
			diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
				"string-too-short", fmt.Sprintf("%q must be at least %d characters", prop.Key, *t.MinLength)))
		}
		if t.MaxLength != nil && len(prop.Value.Str) > *t.MaxLength {
			diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
				"string-too-long", fmt.Sprintf("%q must be at most %d characters", prop.Key, *t.MaxLength)))
		}
		if len(t.EnumValues) > 0 && !containsString(t.EnumValues, prop.Value.Str) {
			diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
				"invalid-enum-value", fmt.Sprintf("%q must be one of %v", prop.Key, t.EnumValues)))
		}

	case model.TypeInteger:
		v := float64(prop.Value.Int)
		diags = append(diags, numericRangeDiagnostics(uri, prop, t, v)...)

	case model.TypeFloat:
		v := prop.Value.Float
		if prop.Value.Kind == model.ValueInteger {
			v = float64(prop.Value.Int)
		}
		diags = append(diags, numericRangeDiagnostics(uri, prop, t, v)...)
	}

	return diags
}

func numericRangeDiagnostics(uri string, prop ConfigProperty, t model.TypeInfo, v float64) []model.Diagnostic {
	var diags []model.Diagnostic
	if t.Min != nil && v < *t.Min {
		diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
			"value-too-small", fmt.Sprintf("%q must be >= %v", prop.Key, *t.Min)))
	}
	if t.Max != nil && v > *t.Max {
		diags = append(diags, model.NewDiagnostic(uri, prop.Range, model.SeverityError,
			"value-too-large", fmt.Sprintf("%q must be <= %v", prop.Key, *t.Max)))
	}
	return diags
}

func validateEnvVars(uri string, doc *TomlDocument) []model.Diagnostic {
	var diags []model.Diagnostic
	for _, ref := range doc.EnvVars {
		if ref.Name == "" {
			diags = append(diags, model.NewDiagnostic(uri, ref.Range, model.SeverityError,
				"empty-var-name", "environment variable reference is missing a name"))
			continue
		}
		if !envVarNamePattern.MatchString(ref.Name) {
			diags = append(diags, model.NewDiagnostic(uri, ref.Range, model.SeverityWarning,
				"invalid-var-name", fmt.Sprintf("%q is not a valid environment variable name", ref.Name)))
		}
	}
	return diags
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
