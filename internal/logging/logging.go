// Package logging wires zap into logr for the rest of the module.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V(...).
const (
	DEBUG = 1
	TRACE = 2
)

var (
	mu     sync.RWMutex
	global = logr.Discard()
)

// ParseLevel maps error|warn|info|debug|trace onto a zap level. logr
// verbosity n is zap level -n, so debug and trace sit below zap's DebugLevel.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "debug":
		return zapcore.Level(-DEBUG), nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// New builds a console logger writing to stderr at the given level.
func New(level string) (logr.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))

	return zapr.NewLogger(zap.New(core)), nil
}

// Setup builds a logger from LOG_LEVEL (or level when non-empty) and installs
// it as the process logger.
func Setup(level string) (logr.Logger, error) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	l, err := New(level)
	if err != nil {
		return l, err
	}
	SetLogger(l)
	return l, nil
}

func SetLogger(l logr.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

func Log() logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// NewTestLogger installs a development logger at trace level for test suites.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	l := zapr.NewLogger(z)
	SetLogger(l)
	return l
}

func IntoContext(ctx context.Context, l logr.Logger) context.Context {
	return logr.NewContext(ctx, l)
}

// FromContext returns the context logger, falling back to the process logger.
func FromContext(ctx context.Context) logr.Logger {
	if l, err := logr.FromContext(ctx); err == nil {
		return l
	}
	return Log()
}
