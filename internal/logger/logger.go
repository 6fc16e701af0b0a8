// Package logger provides the process-wide zap logger shared by the API server
// and catalogctl.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the global logger.
type Options struct {
	// Debug selects colored console output at DEBUG; otherwise JSON at INFO.
	Debug bool
	// Level overrides the default level of the mode ("debug", "warn", ...).
	Level string
	// Service is attached to every entry as the "service" field.
	Service string
}

var (
	mu     sync.RWMutex
	base   *zap.Logger
	helper *zap.Logger // base with caller skip for the package-level helpers
)

// Init replaces the global logger. An unparseable level falls back to the
// mode default rather than failing startup.
func Init(opts Options) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if opts.Level != "" {
		if lvl, err := zapcore.ParseLevel(opts.Level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	if opts.Service != "" {
		l = l.With(zap.String("service", opts.Service))
	}

	mu.Lock()
	base = l
	helper = l.WithOptions(zap.AddCallerSkip(2))
	mu.Unlock()
}

func current() (*zap.Logger, *zap.Logger) {
	mu.RLock()
	l, h := base, helper
	mu.RUnlock()
	if l != nil {
		return l, h
	}

	Init(Options{Debug: os.Getenv("GIN_MODE") != "release", Level: os.Getenv("LOG_LEVEL")})
	mu.RLock()
	defer mu.RUnlock()
	return base, helper
}

// Sync flushes any buffered log entries.
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

// Default returns the global logger, initializing it from GIN_MODE and
// LOG_LEVEL when Init was never called.
func Default() *zap.Logger {
	l, _ := current()
	return l
}

// Named returns a child logger scoped to a component, e.g. "enrich" or "http".
func Named(component string) *zap.Logger {
	return Default().Named(component)
}

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return Default().With(fields...)
}

func write(lvl zapcore.Level, msg string, fields []zap.Field) {
	_, h := current()
	if ce := h.Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func Debug(msg string, fields ...zap.Field) { write(zapcore.DebugLevel, msg, fields) }
func Info(msg string, fields ...zap.Field) { write(zapcore.InfoLevel, msg, fields) }
func Warn(msg string, fields ...zap.Field) { write(zapcore.WarnLevel, msg, fields) }
func Error(msg string, fields ...zap.Field) { write(zapcore.ErrorLevel, msg, fields) }

// Fatal logs at FATAL and exits the process.
func Fatal(msg string, fields ...zap.Field) { write(zapcore.FatalLevel, msg, fields) }
