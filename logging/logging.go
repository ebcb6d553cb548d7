// Package logging builds the zap logger injected into the payments engine.
//
// Diagnostics go to a file, never to stdout which carries the engine output. Without a
// file the logger discards everything.
package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvFile        = "PAY_LOG_FILE"
	EnvLevel       = "PAY_LOG"
	EnvEnvironment = "PAY_ENV"
)

// Environment selects the encoder profile.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
)

// Config contains the logger initialization inputs.
type Config struct {
	Path        string // log file, truncated on open. Empty discards logs.
	Level       string // zap level name, "info" when empty.
	Environment Environment
}

// ConfigFromEnv reads the PAY_LOG_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		Path:        os.Getenv(EnvFile),
		Level:       os.Getenv(EnvLevel),
		Environment: Environment(os.Getenv(EnvEnvironment)),
	}
}

// Logger owns the log file for the lifetime of the process.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	file  *os.File
}

// New opens the log file and builds the logger. Close must be called at shutdown.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return &Logger{zap: zap.NewNop(), level: level}, nil
	}

	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	core := zapcore.NewCore(encoder(cfg.Environment), zapcore.AddSync(f), level)
	return &Logger{
		zap:   zap.New(core, zap.AddCaller()),
		level: level,
		file:  f,
	}, nil
}

func parseLevel(s string) (zap.AtomicLevel, error) {
	if strings.TrimSpace(s) == "" {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
	}
	var l zapcore.Level
	if err := l.Set(s); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return zap.NewAtomicLevelAt(l), nil
}

func encoder(env Environment) zapcore.Encoder {
	if env == Development {
		cfg := zap.NewDevelopmentEncoderConfig()
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Zap returns the logger to inject into the engine. It is never nil.
func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.zap == nil {
		return zap.NewNop()
	}
	return l.zap
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level zapcore.Level) { l.level.SetLevel(level) }

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.zap.Sync()
	return errors.Join(err, l.file.Close())
}
