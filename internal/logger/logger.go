package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog that carries the package/function/file
// context of the call site. The Err/Error/ErrMsg variants log and return an
// error so call sites can log and propagate in one statement.
type Logger struct {
	logger *slog.Logger
}

func New(pkg string) Logger {
	return Logger{
		logger: slog.Default().With("package", pkg),
	}
}

func (l Logger) Function(function string) Logger {
	return Logger{logger: l.logger.With("function", function)}
}

func (l Logger) File(file string) Logger {
	return Logger{logger: l.logger.With("file", file)}
}

func (l Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Err logs the message with the underlying error and returns a wrapped error.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.logger.Error(msg, append(args, "error", err)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Er logs the message with the underlying error without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.logger.Error(msg, append(args, "error", err)...)
}

// Error logs the message and returns it as a new error.
func (l Logger) Error(msg string, args ...any) error {
	l.logger.Error(msg, args...)
	return fmt.Errorf("%s", msg)
}

// ErrMsg logs a bare message and returns it as an error.
func (l Logger) ErrMsg(msg string) error {
	l.logger.Error(msg)
	return fmt.Errorf("%s", msg)
}

// ErMsg logs a bare message without returning an error.
func (l Logger) ErMsg(msg string) {
	l.logger.Error(msg)
}

// InitDefault installs a JSON slog handler as the process default.
func InitDefault(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
