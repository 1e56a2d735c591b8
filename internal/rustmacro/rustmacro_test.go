package rustmacro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecognizesDeriveServiceWithInjectFields(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[derive(Service)]
pub struct OrderService {
    #[inject(component)]
    pub repo: OrderRepo,
    #[inject(config)]
    pub cfg: OrderConfig,
}
`)
	require.Nil(t, perr)
	require.Len(t, doc.Macros, 1)
	m := doc.Macros[0]
	assert.Equal(t, KindDeriveService, m.Kind)
	assert.Equal(t, "OrderService", m.StructName)
	require.Len(t, m.Fields, 2)
	assert.Equal(t, "repo", m.Fields[0].Name)
	assert.Equal(t, InjectComponent, m.Fields[0].InjectKind)
	assert.Equal(t, InjectConfig, m.Fields[1].InjectKind)
}

func TestParseRecognizesConfigurableStruct(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[config_prefix = "redis"]
#[derive(Configurable)]
pub struct RedisConfig {
    /// connection url
    pub url: String,
    pub pool_size: Option<u32>,
}
`)
	require.Nil(t, perr)
	require.Len(t, doc.Macros, 1)
	m := doc.Macros[0]
	assert.Equal(t, KindConfigurableStruct, m.Kind)
	require.NotNil(t, m.ConfigPrefix)
	assert.Equal(t, "redis", *m.ConfigPrefix)
	require.Len(t, m.ConfigFields, 2)
	assert.False(t, m.ConfigFields[0].Optional)
	assert.True(t, m.ConfigFields[1].Optional)
}

func TestParseRecognizesRouteAndIsDocumented(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[get_api("/users/{id}")]
async fn get_user() {}
`)
	require.Nil(t, perr)
	require.Len(t, doc.Macros, 1)
	m := doc.Macros[0]
	assert.Equal(t, KindRoute, m.Kind)
	assert.Equal(t, "/users/{id}", m.Path)
	assert.True(t, m.IsDocumented)
}

func TestParseRouteUndocumentedVariant(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[get("/health")]
async fn health() {}
`)
	require.Nil(t, perr)
	require.Len(t, doc.Macros, 1)
	assert.False(t, doc.Macros[0].IsDocumented)
}

func TestScenarioS4PathParameterLint(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[get("/users/{id-x}")]
async fn h() {}
`)
	require.Nil(t, perr)
	diags := Validate("file:///a.rs", doc)
	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "E011")
}

func TestScenarioS5CronValidation(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[cron("0 0 *")]
async fn job() {}
`)
	require.Nil(t, perr)
	diags := Validate("file:///a.rs", doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "E015", diags[0].Code)
}

func TestValidateFixDelayZeroIsWarning(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[fix_delay(0)]
async fn job() {}
`)
	require.Nil(t, perr)
	diags := Validate("file:///a.rs", doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "W001", diags[0].Code)
	assert.Equal(t, "warning", diags[0].Severity.String())
}

func TestValidateInjectEmptyComponentName(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
pub struct Plain {
    #[inject(component)]
    pub dep: Dep,
}
`)
	require.Nil(t, perr)
	diags := Validate("file:///a.rs", doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "E001", diags[0].Code)
}

func TestExpandDeriveServiceMentionsBuild(t *testing.T) {
	p := NewParser()
	doc, perr := p.Parse(`
#[derive(Service)]
pub struct S {
    #[inject(component)]
    pub r: Repo,
}
`)
	require.Nil(t, perr)
	require.Len(t, doc.Macros, 1)
	out := Expand(doc.Macros[0])
	assert.Contains(t, out, "impl")
	assert.Contains(t, out, "build")
}

func TestCompleteMacroRoute(t *testing.T) {
	items := CompleteMacro(KindRoute, 0)
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "get")
	assert.Contains(t, labels, "{id}")
}
