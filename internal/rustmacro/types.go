// Package rustmacro implements the Macro Analyzer (C4): recognizing,
// expanding, validating, and completing the framework's attribute
// macros over a parsed Rust source file.
package rustmacro

import "github.com/spring-rs/spring-lsp/internal/position"

// InjectKind tags what an inject(...) attribute pulls in.
type InjectKind int

const (
	InjectComponent InjectKind = iota
	InjectConfig
)

func (k InjectKind) String() string {
	if k == InjectConfig {
		return "config"
	}
	return "component"
}

// InjectField is one field of a DeriveService struct carrying an
// inject(...) attribute.
type InjectField struct {
	Name          string
	TypeName      string
	InjectKind    InjectKind
	ComponentName string
	Range         position.Range
}

// ScheduleKind tags a Job's schedule variant.
type ScheduleKind int

const (
	ScheduleCron ScheduleKind = iota
	ScheduleFixDelay
	ScheduleFixRate
)

// Schedule is a Job's tagged schedule: only the field matching Kind is
// meaningful.
type Schedule struct {
	Kind     ScheduleKind
	CronExpr string
	Seconds  int
}

// ConfigFieldInfo is one field of a ConfigurableStruct.
type ConfigFieldInfo struct {
	Name        string
	TypeName    string
	Optional    bool
	Description *string
}

// MacroKind tags a FrameworkMacro's variant.
type MacroKind int

const (
	KindDeriveService MacroKind = iota
	KindInject
	KindRoute
	KindJob
	KindAutoConfig
	KindComponentFn
	KindConfigurableStruct
)

func (k MacroKind) String() string {
	switch k {
	case KindDeriveService:
		return "DeriveService"
	case KindInject:
		return "Inject"
	case KindRoute:
		return "Route"
	case KindJob:
		return "Job"
	case KindAutoConfig:
		return "AutoConfig"
	case KindComponentFn:
		return "ComponentFn"
	case KindConfigurableStruct:
		return "ConfigurableStruct"
	default:
		return "Unknown"
	}
}

// FrameworkMacro is a tagged variant over every attribute macro this
// server recognizes. Only the fields relevant to Kind are populated;
// exhaustive switches on Kind drive expansion, hover, validation, and
// completion, mirroring the Value/TypeInfo tagged-variant style used
// elsewhere instead of an interface hierarchy.
type FrameworkMacro struct {
	Kind  MacroKind
	Range position.Range

	// DeriveService
	StructName string
	Fields     []InjectField

	// Inject (standalone, outside a DeriveService struct)
	InjectKind    InjectKind
	ComponentName string

	// Route
	Path         string
	Methods      []string
	Middlewares  []string
	HandlerName  string
	IsDocumented bool

	// Job
	Schedule Schedule

	// AutoConfig
	ConfiguratorName string

	// ComponentFn
	FnName string

	// ConfigurableStruct
	ConfigPrefix *string
	ConfigFields []ConfigFieldInfo
}

// RustDocument owns the parse tree and the macros recognized in it.
type RustDocument struct {
	Text   string
	Macros []FrameworkMacro
}

// ParseError carries a range and message for an unparsable Rust unit.
type ParseError struct {
	Range   position.Range
	Message string
}

func (e *ParseError) Error() string { return e.Message }
