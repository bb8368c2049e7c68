// Package logging provides the engine-wide structured logger. All engine packages log through
// these helpers so level and formatting are configured in one place.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = newLogger(os.Stderr)
	})
	return singleton
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "oxy",
		Level:           log.InfoLevel,
	})
}

// SetLevel changes the minimum level of the engine logger.
//
// Parameters:
//   - level: one of "debug", "info", "warn", "error" or "fatal"
//
// Returns:
//   - error: an error if the level name is not recognised
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects the engine logger. Tests use this to capture or silence output.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a sub-logger whose prefix is extended with the given component name.
//
// Parameters:
//   - component: a short component name such as "assets" or "frame"
//
// Returns:
//   - *Logger: the component logger
func With(component string) *Logger {
	return &Logger{prefix: "oxy/" + component}
}

// Logger is a component-scoped logger handed out by With. It resolves the engine logger on every
// call so output and level changes made after construction still apply.
type Logger struct {
	prefix string
}

func (l *Logger) logger() *log.Logger {
	return get().WithPrefix(l.prefix)
}

func (l *Logger) Debug(msg string, args ...any) { l.logger().Debugf(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger().Infof(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger().Warnf(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger().Errorf(msg, args...) }

func Debug(msg string, args ...any) {
	get().Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	get().Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	get().Errorf(msg, args...)
}

func Fatal(msg string, args ...any) {
	get().Fatalf(msg, args...)
}
