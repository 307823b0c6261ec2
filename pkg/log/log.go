// Package log provides structured logging for watertable pipeline stages.
//
// It defines a minimal slog-style Logger interface backed by zerolog, so
// pipeline components can log operation context (samples, features, scores)
// without binding to a concrete logging library.
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is a structured logging interface. Fields are alternating
// key/value pairs, as in log/slog.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a Logger that includes the given fields in every
	// subsequent message.
	With(fields ...any) Logger
}

// Standard attribute keys used across the pipeline.
const (
	ComponentKey = "component"
	OperationKey = "operation"
	SamplesKey   = "samples"
	FeaturesKey  = "features"
	AccuracyKey  = "accuracy"
)

var (
	mu       sync.RWMutex
	root     = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	minLevel = zerolog.InfoLevel
)

// SetLevel sets the minimum level for loggers created by this package.
func SetLevel(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zeroLogger{zl: root.Level(minLevel)}
}

// GetLoggerWithName returns the default logger tagged with a component
// name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

type zeroLogger struct {
	zl zerolog.Logger
}

func (l *zeroLogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }
func (l *zeroLogger) Info(msg string, fields ...any)  { emit(l.zl.Info(), msg, fields) }
func (l *zeroLogger) Warn(msg string, fields ...any)  { emit(l.zl.Warn(), msg, fields) }
func (l *zeroLogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

func (l *zeroLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zeroLogger{zl: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}
