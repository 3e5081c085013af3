// Package logctx holds the process-wide structured logger used across the
// capture and replay pipelines.
package logctx

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// L returns the shared logger, creating a sane default on first use so
// packages never have to nil-check.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if log == nil {
		log = newDefault()
	}

	return log
}

// SetLevel rebuilds the shared logger at the requested level. Used by the
// CLI's --verbose flag.
func SetLevel(level zapcore.Level) {
	mu.Lock()
	defer mu.Unlock()

	log = build(level)
}

func newDefault() *zap.Logger {
	return build(zapcore.InfoLevel)
}

func build(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "ts"

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(core)
}

// Named returns a child logger scoped to a component, e.g. logctx.Named("replay").
func Named(name string) *zap.Logger {
	return L().Named(name)
}
