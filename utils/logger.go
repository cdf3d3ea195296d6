package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls where and how verbosely the logger writes
type LogConfig struct {
	Level   string `mapstructure:"level" json:"level"`
	Path    string `mapstructure:"path" json:"path"`
	DevMode bool   `mapstructure:"dev_mode" json:"dev_mode"`
}

// Logger provides logging functionality
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger writing to stdout and to logPath
func NewLogger(cfg LogConfig) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var zapConfig zap.Config
	if cfg.DevMode {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "console"
		zapConfig.Sampling = nil
	}
	zapConfig.EncoderConfig.TimeKey = "time"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	if cfg.Path != "" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Path)
	}

	zapLogger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{sugar: zapLogger.Sugar()}, nil
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Close flushes buffered log entries
func (l *Logger) Close() error {
	// Sync on stdout returns EINVAL on some platforms; nothing to recover
	_ = l.sugar.Sync()
	return nil
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// GetLogPath returns the default log path
func GetLogPath() string {
	return filepath.Join(".", "logs", fmt.Sprintf("app-%s.log", time.Now().Format("2006-01-02")))
}
