package toolcall

import (
	"fmt"
	"log/slog"
)

// Logger receives diagnostics about rejected or malformed candidates.
// Implementations must be safe for use from the goroutine that drives the
// parser; the parsers themselves never call loggers concurrently.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NewSlogLogger adapts a *slog.Logger to the Logger interface. Passing nil
// uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Warnf(format string, args ...any) {
	s.l.Warn(fmt.Sprintf(format, args...))
}

func (s slogLogger) Errorf(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}
