// Package serverconfig loads the server's own TOML configuration file
// (distinct from the workspace's framework configuration that the TOML
// analyzer inspects), applies SPRING_LSP_* environment overrides, and
// substitutes defaults for anything missing or invalid.
package serverconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spring-rs/spring-lsp/internal/logging"
)

// Logging holds the server's own logging options.
type Logging struct {
	Level   string `toml:"level"`
	Verbose bool   `toml:"verbose"`
	LogFile string `toml:"log_file"`
}

// Completion holds completion-related server options.
type Completion struct {
	TriggerCharacters []string `toml:"trigger_characters"`
}

// Diagnostics holds diagnostic-related server options.
type Diagnostics struct {
	Disabled []string `toml:"disabled"`
}

// Schema holds schema-provider options.
type Schema struct {
	URL string `toml:"url"`
}

// Config is the server's own configuration, fully validated: every
// field holds a value the rest of the server can use without further
// checking.
type Config struct {
	Logging     Logging     `toml:"logging"`
	Completion  Completion  `toml:"completion"`
	Diagnostics Diagnostics `toml:"diagnostics"`
	Schema      Schema      `toml:"schema"`

	// DisabledCodes is Diagnostics.Disabled as a set, computed after load.
	DisabledCodes map[string]struct{} `toml:"-"`
}

var validLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// Default returns the configuration used when no file is present and no
// environment overrides apply.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info"},
		Completion: Completion{
			TriggerCharacters: []string{"[", ".", "$", "{", "#", "("},
		},
		Diagnostics:   Diagnostics{},
		Schema:        Schema{},
		DisabledCodes: map[string]struct{}{},
	}
}

// Load reads path as a TOML server configuration. A missing file yields
// defaults; a present-but-malformed file logs the failure and also
// yields defaults — per the error-handling design, configuration never
// aborts startup. Every recognized field is then independently validated
// and, if invalid, replaced by its default with a logged warning.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var decoded Config
			if derr := toml.Unmarshal(data, &decoded); derr != nil {
				logging.Recovered(logging.CategoryBoot, "parse server config, using defaults", derr)
			} else {
				cfg = &decoded
			}
		case os.IsNotExist(err):
			// Defaults apply silently; this is the common case.
		default:
			logging.Recovered(logging.CategoryBoot, "read server config, using defaults", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPRING_LSP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPRING_LSP_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Verbose = b
		} else {
			logging.Recovered(logging.CategoryBoot, "parse SPRING_LSP_VERBOSE, keeping previous value", err)
		}
	}
	if v := os.Getenv("SPRING_LSP_LOG_FILE"); v != "" {
		c.Logging.LogFile = v
	}
	if v := os.Getenv("SPRING_LSP_SCHEMA_URL"); v != "" {
		c.Schema.URL = v
	}
}

// validate replaces any field that failed validation with its default,
// logging the substitution, and (re)computes DisabledCodes.
func (c *Config) validate() {
	def := Default()

	if _, ok := validLevels[c.Logging.Level]; !ok {
		logging.Recovered(logging.CategoryBoot, "invalid logging.level, using default",
			fmt.Errorf("unrecognized level %q", c.Logging.Level))
		c.Logging.Level = def.Logging.Level
	}

	if len(c.Completion.TriggerCharacters) == 0 {
		c.Completion.TriggerCharacters = def.Completion.TriggerCharacters
	} else {
		for _, tc := range c.Completion.TriggerCharacters {
			if len([]rune(tc)) != 1 {
				logging.Recovered(logging.CategoryBoot, "invalid completion.trigger_characters, using default",
					fmt.Errorf("trigger %q is not a single character", tc))
				c.Completion.TriggerCharacters = def.Completion.TriggerCharacters
				break
			}
		}
	}

	if c.Schema.URL != "" && !isSupportedSchemeOrPath(c.Schema.URL) {
		logging.Recovered(logging.CategoryBoot, "invalid schema.url, falling back to built-in schema",
			fmt.Errorf("unsupported scheme in %q", c.Schema.URL))
		c.Schema.URL = def.Schema.URL
	}

	c.DisabledCodes = make(map[string]struct{}, len(c.Diagnostics.Disabled))
	for _, code := range c.Diagnostics.Disabled {
		c.DisabledCodes[code] = struct{}{}
	}
}

func isSupportedSchemeOrPath(url string) bool {
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "file://")
}

// IsDiagnosticDisabled reports whether code has been suppressed by
// configuration.
func (c *Config) IsDiagnosticDisabled(code string) bool {
	_, ok := c.DisabledCodes[code]
	return ok
}
