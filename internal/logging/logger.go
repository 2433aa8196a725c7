// Package logging wraps go.uber.org/zap the way the teacher's own
// logger call sites read, e.g. logger.Info("pipeline.process.start", ...).
package logging

import (
	"go.uber.org/zap"
)

// Logger is a thin facade over *zap.SugaredLogger, kept narrow so
// call sites never reach for zap-specific types directly.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production Logger (JSON encoding, info level).
func New() *Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &Logger{s: l.Sugar()}
}

// NewDevelopment builds a human-readable Logger for local runs and
// tests.
func NewDevelopment() *Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &Logger{s: l.Sugar()}
}

// Nop returns a Logger that discards everything, for tests that don't
// care about log output.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.s.Debugw(msg, kv...)
}

func (l *Logger) Info(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.s.Infow(msg, kv...)
}

func (l *Logger) Warn(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.s.Warnw(msg, kv...)
}

func (l *Logger) Error(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.s.Errorw(msg, kv...)
}

// Sync flushes any buffered log entries. Call before process exit.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.s.Sync()
}
