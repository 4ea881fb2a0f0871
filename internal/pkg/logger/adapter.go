package logger

import (
	"log/slog"

	"solana_liquidity/internal/app/port"
)

// slogAdapter implements port.Logger on top of a *slog.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps l as a port.Logger. A nil l falls back to slog.Default().
func NewSlogAdapter(l *slog.Logger) port.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogAdapter{logger: l}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger.Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger.Error(msg, args...)
}

func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// Nop returns a port.Logger that discards everything.
func Nop() port.Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)       {}
func (nopLogger) Debug(string, ...any)      {}
func (nopLogger) Warn(string, ...any)       {}
func (nopLogger) Error(string, ...any)      {}
func (n nopLogger) With(...any) port.Logger { return n }
