package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const contextKeyLogger contextKey = "logger"

// Logger wraps slog.Logger with the module's context-propagation and
// field-chaining conventions.
type Logger struct {
	logger *slog.Logger
}

// Config controls a Logger's level, output, and formatting.
type Config struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	Level string
	// Output is where logs are written. Defaults to os.Stdout if nil.
	Output io.Writer
	// Pretty selects human-readable text output; the default is JSON.
	Pretty bool
	// IncludeCaller adds source file:line to each entry.
	IncludeCaller bool
}

// DefaultConfig returns the module's default logging configuration:
// info level, JSON output to stdout, no caller info.
func DefaultConfig() Config {
	return Config{Level: "info", Output: os.Stdout}
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: cfg.IncludeCaller}

	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext returns a context carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyLogger, l)
}

// FromContext retrieves the Logger stashed by WithContext, or a
// default-configured one if ctx carries none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKeyLogger).(*Logger); ok {
		return l
	}
	return New(DefaultConfig())
}

// WithExecutionID returns a Logger that attaches execution_id to every entry.
func (l *Logger) WithExecutionID(executionID string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("execution_id", executionID))}
}

// WithNodeID returns a Logger that attaches node_id to every entry.
func (l *Logger) WithNodeID(nodeID string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("node_id", nodeID))}
}

// WithField returns a Logger that attaches one extra field to every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With(slog.Any(key, value))}
}

// WithFields returns a Logger that attaches every entry in fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithError returns a Logger that attaches err to every entry.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With(slog.Any("error", err))}
}

func (l *Logger) Debug(msg string) { l.logger.Debug(msg) }
func (l *Logger) Info(msg string)  { l.logger.Info(msg) }
func (l *Logger) Warn(msg string)  { l.logger.Warn(msg) }
func (l *Logger) Error(msg string) { l.logger.Error(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.logger.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logger.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logger.Error(fmt.Sprintf(format, args...)) }

// GetSlogLogger returns the underlying slog.Logger for advanced use cases.
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}
