// Package schema implements the Schema Provider (C1): it holds the
// framework's configuration schema, answers prefix/property lookups, and
// falls back to a built-in schema when no source schema is available.
package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/model"
)

// Provider answers schema lookups. Loading happens once, at
// construction; the cache it builds is immutable thereafter.
type Provider struct {
	plugins map[string]model.PluginSchema
	cache   *xsync.MapOf[string, model.PluginSchema]
}

// NewProvider attempts to load schema from sourceURL ("file://..." or
// "http(s)://..."); on any failure (including an empty URL, meaning "no
// source configured") it substitutes the built-in fallback schema. This
// matches §4.1: a one-shot load attempt, fallback idempotent thereafter.
func NewProvider(sourceURL string) *Provider {
	plugins, err := loadFrom(sourceURL)
	if err != nil {
		if sourceURL != "" {
			logging.Recovered(logging.CategorySchema, "load configuration schema, using built-in fallback", err)
		}
		plugins = fallbackSchema()
	}

	p := &Provider{
		plugins: plugins,
		cache:   xsync.NewMapOf[string, model.PluginSchema](),
	}
	return p
}

func loadFrom(sourceURL string) (map[string]model.PluginSchema, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("no schema url configured")
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse schema url: %w", err)
	}

	var data []byte
	switch u.Scheme {
	case "file":
		data, err = os.ReadFile(u.Path)
	default:
		// Network fetching is a collaborator contract per the
		// specification's scope reduction (§1): only file:// and the
		// built-in fallback are actually fetched in this process.
		return nil, fmt.Errorf("scheme %q is not fetched by this process", u.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	return decodeJSONSchema(data)
}

// jsonSchema mirrors the on-disk JSON shape this server expects from a
// configuration schema document: a flat list of plugins, each with a
// list of named, typed properties.
type jsonSchema struct {
	Plugins []jsonPlugin `json:"plugins"`
}

type jsonPlugin struct {
	Prefix     string         `json:"prefix"`
	Properties []jsonProperty `json:"properties"`
}

type jsonProperty struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Default     json.RawMessage `json:"default,omitempty"`
	Required    bool            `json:"required"`
	Deprecated  string          `json:"deprecated,omitempty"`
	Example     string          `json:"example,omitempty"`
	EnumValues  []string        `json:"enumValues,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Min         *float64        `json:"min,omitempty"`
	Max         *float64        `json:"max,omitempty"`
	ElementType *jsonProperty   `json:"elementType,omitempty"`
}

func decodeJSONSchema(data []byte) (map[string]model.PluginSchema, error) {
	var doc jsonSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema json: %w", err)
	}

	plugins := make(map[string]model.PluginSchema, len(doc.Plugins))
	for _, jp := range doc.Plugins {
		props := make(map[string]model.PropertySchema, len(jp.Properties))
		for _, p := range jp.Properties {
			props[p.Name] = propertyFromJSON(p)
		}
		plugins[jp.Prefix] = model.PluginSchema{Prefix: jp.Prefix, Properties: props}
	}
	return plugins, nil
}

func propertyFromJSON(p jsonProperty) model.PropertySchema {
	ps := model.PropertySchema{
		Name:        p.Name,
		TypeInfo:    typeInfoFromJSON(p),
		Description: p.Description,
		Required:    p.Required,
	}
	if p.Deprecated != "" {
		d := p.Deprecated
		ps.Deprecated = &d
	}
	if p.Example != "" {
		e := p.Example
		ps.Example = &e
	}
	return ps
}

func typeInfoFromJSON(p jsonProperty) model.TypeInfo {
	switch strings.ToLower(p.Type) {
	case "integer", "int":
		return model.TypeInfo{Kind: model.TypeInteger, Min: p.Min, Max: p.Max}
	case "float", "number":
		return model.TypeInfo{Kind: model.TypeFloat, Min: p.Min, Max: p.Max}
	case "boolean", "bool":
		return model.TypeInfo{Kind: model.TypeBoolean}
	case "array":
		var elem *model.TypeInfo
		if p.ElementType != nil {
			e := typeInfoFromJSON(*p.ElementType)
			elem = &e
		}
		return model.TypeInfo{Kind: model.TypeArray, ElementType: elem}
	case "object":
		return model.TypeInfo{Kind: model.TypeObject}
	default:
		return model.TypeInfo{
			Kind:       model.TypeString,
			EnumValues: p.EnumValues,
			MinLength:  p.MinLength,
			MaxLength:  p.MaxLength,
		}
	}
}

// GetPlugin returns a snapshot copy of prefix's schema, or false if no
// such plugin is recognized. The returned value never shares storage
// with the provider's internal state.
func (p *Provider) GetPlugin(prefix string) (model.PluginSchema, bool) {
	if cached, ok := p.cache.Load(prefix); ok {
		return clonePlugin(cached), true
	}
	plugin, ok := p.plugins[prefix]
	if !ok {
		return model.PluginSchema{}, false
	}
	snapshot := clonePlugin(plugin)
	p.cache.Store(prefix, snapshot)
	return clonePlugin(snapshot), true
}

// GetProperty returns get_plugin(prefix).properties[property], per the
// definition in §4.1.
func (p *Provider) GetProperty(prefix, property string) (model.PropertySchema, bool) {
	plugin, ok := p.GetPlugin(prefix)
	if !ok {
		return model.PropertySchema{}, false
	}
	prop, ok := plugin.Properties[property]
	return prop, ok
}

// ListPrefixes returns every recognized plugin prefix.
func (p *Provider) ListPrefixes() []string {
	out := make([]string, 0, len(p.plugins))
	for prefix := range p.plugins {
		out = append(out, prefix)
	}
	return out
}

func clonePlugin(p model.PluginSchema) model.PluginSchema {
	props := make(map[string]model.PropertySchema, len(p.Properties))
	for k, v := range p.Properties {
		props[k] = v
	}
	return model.PluginSchema{Prefix: p.Prefix, Properties: props}
}
