// Package logging provides category-scoped structured logging for the
// server: a zap-backed console/file sink for operators, plus a
// category-keyed JSON-lines file sink for offline inspection, mirroring
// the split the source ambient stack keeps between human-facing output
// and a machine-queryable log.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem that can be logged independently.
type Category string

const (
	CategoryBoot        Category = "boot"
	CategoryServer      Category = "server"
	CategoryDocument    Category = "document"
	CategoryTOML        Category = "toml"
	CategoryMacro       Category = "macro"
	CategoryIndex       Category = "index"
	CategorySchema      Category = "schema"
	CategoryCompletion  Category = "completion"
	CategoryDiagnostics Category = "diagnostics"
	CategoryWatcher     Category = "watcher"
)

// Entry is one structured, category-tagged log record.
type Entry struct {
	Time     time.Time      `json:"ts"`
	Category Category       `json:"cat"`
	Level    string         `json:"lvl"`
	Message  string         `json:"msg"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// Logger is the process-wide sink. Until Configure runs, the global
// logger discards every entry; call Configure once at startup to wire
// in the configured level and an optional JSON-lines file.
type Logger struct {
	mu    sync.Mutex
	zap   *zap.Logger
	file  *os.File
	level zapcore.Level
}

var global = &Logger{zap: mustNop()}

func mustNop() *zap.Logger {
	return zap.NewNop()
}

// Configure installs the process-wide logger. level is one of
// trace/debug/info/warn/error (trace maps to zap's debug level since zap
// has no trace level of its own); logFile, if non-empty, additionally
// receives one JSON line per Entry.
func Configure(level string, verbose bool, logFile string) error {
	zl, lvl, badLevel := buildZap(level, verbose)
	if zl == nil {
		return fmt.Errorf("build zap logger")
	}
	if badLevel {
		zl.Warn("unrecognized log level, falling back to info", zap.String("level", level))
	}

	l := &Logger{zap: zl, level: lvl}
	if logFile != "" {
		f, ferr := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr != nil {
			zl.Warn("could not open structured log file, continuing without it",
				zap.String("path", logFile), zap.Error(ferr))
		} else {
			l.file = f
		}
	}
	global = l
	return nil
}

func buildZap(level string, verbose bool) (zl *zap.Logger, lvl zapcore.Level, badLevel bool) {
	lvl, perr := parseLevel(level)
	if perr != nil {
		lvl = zapcore.InfoLevel
		badLevel = true
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	built, zerr := cfg.Build()
	if zerr != nil {
		return nil, lvl, badLevel
	}
	return built, lvl, badLevel
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unrecognized log level %q", level)
	}
}

// Sync flushes the zap logger and closes the structured log file.
func Sync() {
	global.mu.Lock()
	defer global.mu.Unlock()
	_ = global.zap.Sync()
	if global.file != nil {
		_ = global.file.Close()
	}
}

func log(cat Category, level zapcore.Level, levelName, msg string, fields map[string]any) {
	global.mu.Lock()
	defer global.mu.Unlock()

	zf := make([]zap.Field, 0, len(fields)+1)
	zf = append(zf, zap.String("category", string(cat)))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}

	switch level {
	case zapcore.DebugLevel:
		global.zap.Debug(msg, zf...)
	case zapcore.WarnLevel:
		global.zap.Warn(msg, zf...)
	case zapcore.ErrorLevel:
		global.zap.Error(msg, zf...)
	default:
		global.zap.Info(msg, zf...)
	}

	if global.file == nil || level < global.level {
		return
	}
	entry := Entry{Time: time.Now(), Category: cat, Level: levelName, Message: msg, Fields: fields}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = global.file.Write(data)
}

// Debug logs a debug-level message under category.
func Debug(cat Category, msg string, fields map[string]any) {
	log(cat, zapcore.DebugLevel, "debug", msg, fields)
}

// Info logs an info-level message under category.
func Info(cat Category, msg string, fields map[string]any) {
	log(cat, zapcore.InfoLevel, "info", msg, fields)
}

// Warn logs a warning-level message under category.
func Warn(cat Category, msg string, fields map[string]any) {
	log(cat, zapcore.WarnLevel, "warn", msg, fields)
}

// Error logs an error-level message under category.
func Error(cat Category, msg string, fields map[string]any) {
	log(cat, zapcore.ErrorLevel, "error", msg, fields)
}

// Recovered logs a non-fatal recovery per the error-handling taxonomy:
// something failed, a fallback was substituted, and the server
// continues. Logged at warn level, so a configured level of error
// filters it out like any other warning.
func Recovered(cat Category, what string, err error) {
	log(cat, zapcore.WarnLevel, "warn", "recovered: "+what, map[string]any{"error": err.Error()})
}
