package schema

import "github.com/spring-rs/spring-lsp/internal/model"

// fallbackSchema is the built-in schema substituted whenever no source
// schema could be loaded. It covers the framework's commonly bundled
// plugins so the server stays useful offline, going beyond the spec's
// stated minimum (web, redis) to also cover actix/mysql/postgres, per
// this module's domain-stack expansion.
func fallbackSchema() map[string]model.PluginSchema {
	minPort := 1.0
	maxPort := 65535.0
	minWorkers := 1.0
	minConns := 1.0
	defaultConns := model.Value{Kind: model.ValueInteger, Int: 10}
	defaultHost := model.Value{Kind: model.ValueString, Str: "0.0.0.0"}
	defaultPort := model.Value{Kind: model.ValueInteger, Int: 8080}

	return map[string]model.PluginSchema{
		"web": {
			Prefix: "web",
			Properties: map[string]model.PropertySchema{
				"host": {
					Name:        "host",
					TypeInfo:    model.TypeInfo{Kind: model.TypeString},
					Description: "Address the HTTP listener binds to.",
					Default:     &defaultHost,
				},
				"port": {
					Name:        "port",
					TypeInfo:    model.TypeInfo{Kind: model.TypeInteger, Min: &minPort, Max: &maxPort},
					Description: "Port the HTTP listener binds to.",
					Default:     &defaultPort,
				},
			},
		},
		"redis": {
			Prefix: "redis",
			Properties: map[string]model.PropertySchema{
				"url": {
					Name:        "url",
					TypeInfo:    model.TypeInfo{Kind: model.TypeString},
					Description: "Redis connection URL.",
					Required:    true,
				},
			},
		},
		"actix": {
			Prefix: "actix",
			Properties: map[string]model.PropertySchema{
				"workers": {
					Name:        "workers",
					TypeInfo:    model.TypeInfo{Kind: model.TypeInteger, Min: &minWorkers},
					Description: "Number of Actix worker threads.",
				},
			},
		},
		"mysql": {
			Prefix: "mysql",
			Properties: map[string]model.PropertySchema{
				"url": {
					Name:     "url",
					TypeInfo: model.TypeInfo{Kind: model.TypeString},
					Required: true,
				},
				"max_connections": {
					Name:     "max_connections",
					TypeInfo: model.TypeInfo{Kind: model.TypeInteger, Min: &minConns},
					Default:  &defaultConns,
				},
			},
		},
		"postgres": {
			Prefix: "postgres",
			Properties: map[string]model.PropertySchema{
				"url": {
					Name:     "url",
					TypeInfo: model.TypeInfo{Kind: model.TypeString},
					Required: true,
				},
				"max_connections": {
					Name:     "max_connections",
					TypeInfo: model.TypeInfo{Kind: model.TypeInteger, Min: &minConns},
					Default:  &defaultConns,
				},
			},
		},
	}
}
