package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type Logger struct {
	level string
	slog  *slog.Logger
}

// New returns a logger writing colored text at debug level and JSON otherwise.
func New(level string) *Logger {
	if level == "debug" {
		return &Logger{
			level: level,
			slog: slog.New(tint.NewHandler(os.Stdout, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.TimeOnly,
			})),
		}
	}
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "error":
		slogLevel = slog.LevelError
	}
	return &Logger{
		level: level,
		slog:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel})),
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithWriter("error", io.Discard)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level == "debug" || l.level == "info" {
		l.slog.Info(format(msg, args))
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level == "debug" {
		l.slog.Debug(format(msg, args))
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(format(msg, args))
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.slog.Error("[FATAL] " + format(msg, args))
	os.Exit(1)
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
