// Package logx is the process-wide leveled logger.
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu       sync.RWMutex
	levelVar = new(slog.LevelVar)
	format   = FormatText
	out      io.Writer = os.Stdout
	base               = newLogger()
)

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelVar}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func toSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	levelVar.Set(toSlog(l))
}

func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	base = newLogger()
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	base = newLogger()
}

func logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Logger carries structured fields across calls
type Logger struct {
	l *slog.Logger
}

// With returns a Logger that adds the given key/value pairs to every record
func With(args ...any) *Logger {
	return &Logger{l: logger().With(args...)}
}

func (lg *Logger) With(args ...any) *Logger {
	return &Logger{l: lg.l.With(args...)}
}

func (lg *Logger) Debug(msg string, args ...any) { lg.l.Debug(msg, args...) }
func (lg *Logger) Info(msg string, args ...any)  { lg.l.Info(msg, args...) }
func (lg *Logger) Warn(msg string, args ...any)  { lg.l.Warn(msg, args...) }
func (lg *Logger) Error(msg string, args ...any) { lg.l.Error(msg, args...) }

func Debug(msg string, args ...any) { logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { logger().Warn(msg, args...) }
func Error(msg string, args ...any) { logger().Error(msg, args...) }

func Debugf(format string, args ...any) { logger().Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { logger().Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { logger().Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { logger().Error(fmt.Sprintf(format, args...)) }

// Fatal logs at error level and exits the process
func Fatal(msg string, args ...any) {
	logger().Error(msg, args...)
	os.Exit(1)
}

func Fatalf(format string, args ...any) {
	logger().Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Enabled reports whether records at l would be emitted
func Enabled(l Level) bool {
	return logger().Enabled(context.Background(), toSlog(l))
}
