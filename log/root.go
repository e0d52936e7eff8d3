// Package log provides the leveled, module-tagged logger used across the
// simulator. It is a thin layer over log/slog.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Modules that emit log records.
const (
	ParserModule   = "parser"
	PipelineModule = "pipeline"
	DriverModule   = "driver"
	ReportModule   = "report"
)

// LevelTrace is below slog's debug level and is used for per-cycle records.
const LevelTrace slog.Level = -8

var root atomic.Value

func init() {
	root.Store(slog.New(DiscardHandler()))
	DisableModule(PipelineModule)
}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1 << 20)})
}

// ParseLevel converts a level name into an slog level.
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// InitLogger installs a text logger on stderr at the given level.
func InitLogger(logLevel string) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}

	SetDefault(NewLogger(os.Stderr, lvl))

	return nil
}

// NewLogger creates a text logger writing to w.
func NewLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// SetDefault replaces the root logger.
func SetDefault(l *slog.Logger) {
	root.Store(l)
}

// Root returns the root logger.
func Root() *slog.Logger {
	return root.Load().(*slog.Logger)
}

var (
	modulesMu     sync.RWMutex
	moduleEnabled = map[string]bool{
		ParserModule:   true,
		PipelineModule: true,
		DriverModule:   true,
		ReportModule:   true,
	}
)

// EnableModule turns on trace and debug records for a module.
func EnableModule(module string) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	moduleEnabled[module] = true
}

// EnableModules enables a comma separated list of modules.
func EnableModules(modules string) {
	for _, m := range strings.Split(modules, ",") {
		if m = strings.TrimSpace(m); m != "" {
			EnableModule(m)
		}
	}
}

// DisableModule turns off trace and debug records for a module.
func DisableModule(module string) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	moduleEnabled[module] = false
}

// IsModuleEnabled reports whether trace and debug records of a module are
// emitted.
func IsModuleEnabled(module string) bool {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	return moduleEnabled[module]
}

func write(lvl slog.Level, module, msg string, ctx ...any) {
	l := Root()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, msg, append([]any{"module", module}, ctx...)...)
}

// Trace logs at trace level if the module is enabled.
func Trace(module, msg string, ctx ...any) {
	if !IsModuleEnabled(module) {
		return
	}
	write(LevelTrace, module, msg, ctx...)
}

// Debug logs at debug level if the module is enabled.
func Debug(module, msg string, ctx ...any) {
	if !IsModuleEnabled(module) {
		return
	}
	write(slog.LevelDebug, module, msg, ctx...)
}

// Info logs at info level. Unlike Trace and Debug it does not filter on
// module.
func Info(module, msg string, ctx ...any) {
	write(slog.LevelInfo, module, msg, ctx...)
}

// Warn logs at warn level for any module.
func Warn(module, msg string, ctx ...any) {
	write(slog.LevelWarn, module, msg, ctx...)
}

// Error logs at error level for any module.
func Error(module, msg string, ctx ...any) {
	write(slog.LevelError, module, msg, ctx...)
}
