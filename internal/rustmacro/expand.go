package rustmacro

import (
	"fmt"
	"strings"
)

// Expand renders the fully commented Rust snippet a macro variant
// rewrites to, for use in hover. Template-driven: one branch per Kind,
// each naming the keywords an implementer expects for that variant.
func Expand(m FrameworkMacro) string {
	switch m.Kind {
	case KindDeriveService:
		return expandDeriveService(m)
	case KindInject:
		return expandInject(m.InjectKind, m.ComponentName)
	case KindRoute:
		return expandRoute(m)
	case KindJob:
		return expandJob(m)
	case KindAutoConfig:
		return fmt.Sprintf("// auto_config expands to a configurator registration\nimpl AutoConfigure for %s {\n    fn configure(registry: &mut Registry) {\n        registry.auto_config::<%s>();\n    }\n}", m.ConfiguratorName, m.ConfiguratorName)
	case KindComponentFn:
		return fmt.Sprintf("// #[component] registers this function's return value as a component\nfn build() -> impl Component {\n    %s()\n}", m.FnName)
	case KindConfigurableStruct:
		return expandConfigurableStruct(m)
	default:
		return ""
	}
}

func expandDeriveService(m FrameworkMacro) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// derive(Service) expands to a build() constructor\nimpl %s {\n    fn build(container: &Container) -> Self {\n        Self {\n", m.StructName)
	for _, f := range m.Fields {
		identity := f.ComponentName
		if identity == "" {
			identity = f.TypeName
		}
		fmt.Fprintf(&b, "            %s: container.%s(%q),\n", f.Name, f.InjectKind.String(), identity)
	}
	b.WriteString("        }\n    }\n}")
	return b.String()
}

func expandInject(kind InjectKind, componentName string) string {
	return fmt.Sprintf("// inject(%s) resolves %q from the container at build time", kind.String(), componentName)
}

func expandRoute(m FrameworkMacro) string {
	return fmt.Sprintf("// route registration\napp.route(%q, [%s], %s)", m.Path, strings.Join(m.Methods, ", "), m.HandlerName)
}

func expandJob(m FrameworkMacro) string {
	switch m.Schedule.Kind {
	case ScheduleCron:
		return fmt.Sprintf("// scheduled job\nscheduler.cron(%q, %s)", m.Schedule.CronExpr, m.HandlerName)
	case ScheduleFixDelay:
		return fmt.Sprintf("// scheduled job\nscheduler.fix_delay(%d, %s)", m.Schedule.Seconds, m.HandlerName)
	default:
		return fmt.Sprintf("// scheduled job\nscheduler.fix_rate(%d, %s)", m.Schedule.Seconds, m.HandlerName)
	}
}

func expandConfigurableStruct(m FrameworkMacro) string {
	prefix := ""
	if m.ConfigPrefix != nil {
		prefix = *m.ConfigPrefix
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// derive(Configurable) binds this struct to config prefix %q\nimpl Configurable for %s {\n    const PREFIX: &'static str = %q;\n}", prefix, m.StructName, prefix)
	return b.String()
}
