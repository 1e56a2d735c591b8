package rustmacro

import (
	"fmt"
	"strings"
)

// Hover renders a Markdown card for m: its title, its arguments as a
// bulleted list, and its expansion inside a fenced Rust code block.
func Hover(m FrameworkMacro) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", m.Kind.String())
	for _, arg := range hoverArgs(m) {
		fmt.Fprintf(&b, "- %s\n", arg)
	}
	fmt.Fprintf(&b, "\n```rust\n%s\n```", Expand(m))
	return b.String()
}

func hoverArgs(m FrameworkMacro) []string {
	switch m.Kind {
	case KindDeriveService:
		args := []string{fmt.Sprintf("struct: `%s`", m.StructName)}
		for _, f := range m.Fields {
			args = append(args, fmt.Sprintf("field `%s: %s` injects %s", f.Name, f.TypeName, f.InjectKind.String()))
		}
		return args
	case KindInject:
		args := []string{fmt.Sprintf("kind: `%s`", m.InjectKind.String())}
		if m.ComponentName != "" {
			args = append(args, fmt.Sprintf("component: `%s`", m.ComponentName))
		}
		return args
	case KindRoute:
		args := []string{
			fmt.Sprintf("path: `%s`", m.Path),
			fmt.Sprintf("methods: `%s`", strings.Join(m.Methods, ", ")),
			fmt.Sprintf("documented: `%t`", m.IsDocumented),
		}
		if len(m.Middlewares) > 0 {
			args = append(args, fmt.Sprintf("middlewares: `%s`", strings.Join(m.Middlewares, ", ")))
		}
		return args
	case KindJob:
		switch m.Schedule.Kind {
		case ScheduleCron:
			return []string{fmt.Sprintf("schedule: cron `%s`", m.Schedule.CronExpr)}
		case ScheduleFixDelay:
			return []string{fmt.Sprintf("schedule: fix_delay `%ds`", m.Schedule.Seconds)}
		default:
			return []string{fmt.Sprintf("schedule: fix_rate `%ds`", m.Schedule.Seconds)}
		}
	case KindAutoConfig:
		return []string{fmt.Sprintf("configurator: `%s`", m.ConfiguratorName)}
	case KindComponentFn:
		return []string{fmt.Sprintf("fn: `%s`", m.FnName)}
	case KindConfigurableStruct:
		prefix := "(none)"
		if m.ConfigPrefix != nil {
			prefix = *m.ConfigPrefix
		}
		return []string{fmt.Sprintf("struct: `%s`", m.StructName), fmt.Sprintf("config_prefix: `%s`", prefix)}
	default:
		return nil
	}
}
