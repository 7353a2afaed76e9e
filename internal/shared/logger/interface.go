package logger

import "log/slog"

// Interface is the structured logger injected into repositories, services and use cases.
type Interface interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Interface
	Named(name string) Interface
}

type slogLogger struct {
	logger *slog.Logger
}

func NewLogger() Interface {
	return &slogLogger{
		logger: Get(),
	}
}

func NewLoggerWithSlog(slogLog *slog.Logger) Interface {
	return &slogLogger{
		logger: slogLog,
	}
}

func (l *slogLogger) Debugw(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *slogLogger) Infow(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *slogLogger) Warnw(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *slogLogger) Errorw(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *slogLogger) With(keysAndValues ...any) Interface {
	return &slogLogger{
		logger: l.logger.With(keysAndValues...),
	}
}

func (l *slogLogger) Named(name string) Interface {
	return &slogLogger{
		logger: l.logger.With("logger", name),
	}
}

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. Intended for tests.
func NewNopLogger() Interface { return nopLogger{} }

func (nopLogger) Debugw(string, ...any)       {}
func (nopLogger) Infow(string, ...any)        {}
func (nopLogger) Warnw(string, ...any)        {}
func (nopLogger) Errorw(string, ...any)       {}
func (n nopLogger) With(...any) Interface     { return n }
func (n nopLogger) Named(string) Interface    { return n }
