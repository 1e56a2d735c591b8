package model

import "fmt"

// ValueKind tags a Value's underlying TOML type.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInteger
	ValueFloat
	ValueBoolean
	ValueArray
	ValueTable
)

// Value is a tagged TOML runtime value, mirroring the spec's "usual TOML
// value tagged variant." Only one of the typed fields is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind

	Str   string
	Int   int64
	Float float64
	Bool  bool
	Arr   []Value
	Table map[string]Value
}

// TypeName renders a short, human name for the value's kind, used in
// type-mismatch diagnostic messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case ValueString:
		return "string"
	case ValueInteger:
		return "integer"
	case ValueFloat:
		return "float"
	case ValueBoolean:
		return "boolean"
	case ValueArray:
		return "array"
	case ValueTable:
		return "table"
	default:
		return "unknown"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return fmt.Sprintf("%q", v.Str)
	case ValueInteger:
		return fmt.Sprintf("%d", v.Int)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValueBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case ValueArray:
		return fmt.Sprintf("%v", v.Arr)
	case ValueTable:
		return fmt.Sprintf("%v", v.Table)
	default:
		return "<invalid>"
	}
}

// TypeInfoKind tags a TypeInfo's variant.
type TypeInfoKind int

const (
	TypeString TypeInfoKind = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeArray
	TypeObject
)

// TypeInfo is a tagged description of a property's declared type and
// its constraints, as read from the configuration schema.
type TypeInfo struct {
	Kind TypeInfoKind

	// String
	EnumValues []string
	MinLength  *int
	MaxLength  *int

	// Integer / Float
	Min *float64
	Max *float64

	// Array
	ElementType *TypeInfo

	// Object
	Properties map[string]PropertySchema
}

func (t TypeInfo) String() string {
	switch t.Kind {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		if t.ElementType != nil {
			return "array<" + t.ElementType.String() + ">"
		}
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Matches reports whether v is an acceptable runtime value for t,
// ignoring range/enum constraints (those are checked separately so that
// a type mismatch and a range violation are never both reported for the
// same property, per the validation ordering rule in §4.3).
func (t TypeInfo) Matches(v Value) bool {
	switch t.Kind {
	case TypeString:
		return v.Kind == ValueString
	case TypeInteger:
		return v.Kind == ValueInteger
	case TypeFloat:
		return v.Kind == ValueFloat || v.Kind == ValueInteger
	case TypeBoolean:
		return v.Kind == ValueBoolean
	case TypeArray:
		return v.Kind == ValueArray
	case TypeObject:
		return v.Kind == ValueTable
	default:
		return false
	}
}

// PropertySchema describes one recognized configuration property.
type PropertySchema struct {
	Name        string
	TypeInfo    TypeInfo
	Description string
	Default     *Value
	Required    bool
	Deprecated  *string
	Example     *string
}

// PluginSchema describes every property recognized under one TOML
// table prefix.
type PluginSchema struct {
	Prefix     string
	Properties map[string]PropertySchema
}

// ConfigSchema maps a TOML table prefix to the plugin schema describing
// it.
type ConfigSchema struct {
	Plugins map[string]PluginSchema
}
