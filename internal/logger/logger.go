// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog for the chat profiles backend.
//
// *Logger embeds zerolog.Logger, so Debug, Info, Err and the rest are
// available directly. Request handlers obtain the request-scoped logger
// (carrying trace_id) with FromRequest or FromContext. Background jobs
// tag their lines with WithComponent.
package logger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger struct {
	zerolog.Logger
}

// Options configures [New].
type Options struct {
	// Level is a zerolog level name. Empty means debug.
	Level string
	// Console switches from JSON lines to zerolog's human readable writer.
	Console bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds a logger tagged with role. Every line carries "role", a "time"
// timestamp and a "func" field naming the calling function.
//
// The level is process wide: zerolog keeps it in a global.
func New(role string, opts Options) (*Logger, error) {
	level := zerolog.DebugLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("error parsing log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	zerolog.CallerFieldName = "func"
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}, nil
}

// NewLogger is New with default options: debug level, JSON to stdout.
func NewLogger(role string) *Logger {
	l, _ := New(role, Options{})
	return l
}

// Nop returns a *Logger that discards all output. Used in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a copy of l that can be enriched without touching l.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithComponent returns a child logger carrying the component field.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{l.With().Str("component", component).Logger()}
}

// WithTraceID returns a child logger carrying the trace_id field.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{l.With().Str("trace_id", traceID).Logger()}
}

// FromRequest returns the logger attached to the request context by the
// trace id middleware.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext returns the logger attached to ctx. Without one, zerolog
// falls back to its default context logger, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
