// Package logging adapts structured loggers to pocketbase.Logger.
package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// Backends selectable with Config.Format.
const (
	FormatZap   = "zap"
	FormatHCLog = "hclog"
)

// ErrUnknownFormat is returned for a Config.Format other than zap or hclog.
var ErrUnknownFormat = errors.New("unknown log format")

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string // zap only
	Format      string   // FormatZap (default) or FormatHCLog
}

// DefaultConfig returns a JSON logger at info level writing to stderr.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		OutputPaths: []string{"stderr"},
	}
}

// ZapLogger implements pocketbase.Logger on a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZap wraps an existing zap logger. A nil logger discards output.
func NewZap(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{logger: logger}
}

// NewLogger builds the backend selected by cfg.Format.
func NewLogger(cfg Config) (pocketbase.Logger, error) {
	switch cfg.Format {
	case "", FormatZap:
		logger, err := New(cfg)
		if err != nil {
			return nil, err
		}

		return logger, nil
	case FormatHCLog:
		logger, err := NewHCLogFromConfig(cfg)
		if err != nil {
			return nil, err
		}

		return logger, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
}

// New builds a zap logger from cfg.
func New(cfg Config) (*ZapLogger, error) {
	var level zapcore.Level

	err := level.UnmarshalText([]byte(cfg.Level))
	if err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoding := "json"

	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return NewZap(logger), nil
}

// Zap returns the underlying logger.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// Debug logs msg at debug level with fields sorted by key.
func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, zapFields(fields)...)
}

// Info logs msg at info level with fields sorted by key.
func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, zapFields(fields)...)
}

// Warn logs msg at warn level with fields sorted by key.
func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, zapFields(fields)...)
}

// Error logs msg at error level with fields sorted by key.
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields map[string]interface{}) []zap.Field {
	keys := sortedKeys(fields)

	out := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		out = append(out, zap.Any(key, fields[key]))
	}

	return out
}

// HCLogger implements pocketbase.Logger on an hclog.Logger.
type HCLogger struct {
	logger hclog.Logger
}

// NewHCLog wraps an hclog logger. A nil logger discards output.
func NewHCLog(logger hclog.Logger) *HCLogger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &HCLogger{logger: logger}
}

// NewHCLogFromConfig builds an hclog logger writing to stderr. Development
// selects the human-readable format, otherwise entries are JSON.
func NewHCLogFromConfig(cfg Config) (*HCLogger, error) {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("unrecognized level: %q", cfg.Level)
	}

	return NewHCLog(hclog.New(&hclog.LoggerOptions{
		Name:       "pocketbase",
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: !cfg.Development,
	})), nil
}

// Debug logs msg at debug level with fields sorted by key.
func (l *HCLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, hclogArgs(fields)...)
}

// Info logs msg at info level with fields sorted by key.
func (l *HCLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, hclogArgs(fields)...)
}

// Warn logs msg at warn level with fields sorted by key.
func (l *HCLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, hclogArgs(fields)...)
}

// Error logs msg at error level with fields sorted by key.
func (l *HCLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, hclogArgs(fields)...)
}

func hclogArgs(fields map[string]interface{}) []interface{} {
	keys := sortedKeys(fields)

	args := make([]interface{}, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return args
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

var (
	_ pocketbase.Logger = (*ZapLogger)(nil)
	_ pocketbase.Logger = (*HCLogger)(nil)
)
