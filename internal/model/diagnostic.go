// Package model holds the data types shared across analyzers, indexes,
// and the server: diagnostics, schema values, and small location types
// that would otherwise force an import cycle between packages that need
// to refer to each other's results without depending on each other's
// internals.
package model

import "github.com/spring-rs/spring-lsp/internal/position"

// Severity mirrors the LSP DiagnosticSeverity enum.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is one analysis finding, tied to a URI and a code from the
// taxonomy in §4.3/§4.4 of the specification.
type Diagnostic struct {
	URI      string          `json:"-"`
	Range    position.Range  `json:"range"`
	Severity Severity        `json:"severity"`
	Code     string          `json:"code"`
	Source   string          `json:"source"`
	Message  string          `json:"message"`
}

// ServerName is the fixed diagnostic source string.
const ServerName = "spring-lsp"

// NewDiagnostic builds a Diagnostic stamped with the fixed server name.
func NewDiagnostic(uri string, r position.Range, sev Severity, code, message string) Diagnostic {
	return Diagnostic{
		URI:      uri,
		Range:    r,
		Severity: sev,
		Code:     code,
		Source:   ServerName,
		Message:  message,
	}
}

// Location identifies a range within a specific document, the shape
// every custom `spring/*` endpoint and go-to-definition response uses.
type Location struct {
	URI   string         `json:"uri"`
	Range position.Range `json:"range"`
}
