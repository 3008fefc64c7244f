// Package clog is the core's logging facade. It wraps a zerolog.Logger —
// the backend the teacher corpus's logiface-zerolog package targets — and
// adds a catrate.Limiter-backed throttle for warnings that would otherwise
// repeat once per reactor tick under sustained backpressure (e.g. a
// saturated packet pool, or a cluster that never completes registration).
package clog

import (
	"io"
	"os"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/rs/zerolog"
)

// Logger is the core's structured logger. The zero value is a working
// no-op logger (writes are discarded), so a Context never requires
// explicit logging configuration to run — matching the corpus's
// zero-value-safe option types.
type Logger struct {
	zl      zerolog.Logger
	limiter *catrate.Limiter
}

// New constructs a Logger writing to w at the given level. A nil w
// discards all output.
func New(w io.Writer, level zerolog.Level) *Logger {
	if w == nil {
		w = io.Discard
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{
		zl: zl,
		limiter: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 1,
			time.Minute: 5,
		}),
	}
}

// Default returns a Logger writing human-readable console output to
// os.Stderr at info level, suitable as a development default.
func Default() *Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, zerolog.InfoLevel)
}

func (l *Logger) logger() *zerolog.Logger {
	if l == nil {
		n := zerolog.Nop()
		return &n
	}
	return &l.zl
}

// Debug logs per-packet admission decisions: validation, batching, and
// singleton-root dispatch.
func (l *Logger) Debug(msg string, fields map[string]any) {
	l.event(l.logger().Debug(), msg, fields)
}

// Info logs lifecycle transitions: registration complete, shutdown phases.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.event(l.logger().Info(), msg, fields)
}

// Warn logs transient backpressure, throttled to at most once per second
// (and 5/minute) per distinct msg, so a persistently saturated pool or a
// cluster stuck mid-registration does not spam the log at reactor-tick
// frequency.
func (l *Logger) Warn(msg string, fields map[string]any) {
	if l == nil {
		return
	}
	if _, ok := l.limiter.Allow(msg); !ok {
		return
	}
	l.event(l.logger().Warn(), msg, fields)
}

// Error logs protocol-level or transport failures surfaced opaquely
// through a packet's Status.
func (l *Logger) Error(msg string, fields map[string]any) {
	l.event(l.logger().Error(), msg, fields)
}

func (l *Logger) event(e *zerolog.Event, msg string, fields map[string]any) {
	if e == nil {
		return
	}
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
