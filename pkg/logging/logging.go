// Package logging builds the zap logger used across the tool.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of log output.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
	}
}

// Validate checks config for errors.
func (c Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Format)
	}
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// New creates a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := zapcore.ParseLevel(cfg.Level)
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(w), level)

	return zap.New(core), nil
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// Sync flushes any buffered log entries.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	// Ignore sync errors on stdout/stderr (common on Linux)
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// isStdoutSyncError checks if error is harmless stdout/stderr sync error.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
