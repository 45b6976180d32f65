package koala

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Logger receives the client's structured diagnostics. keysAndValues are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// DebugConfig selects which debug events are logged.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogResponses bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a disabled config that logs requests and
// responses once enabled.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogResponses: true,
		RequestIDGen: NewRequestID,
	}
}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// ApexLogger adapts an apex/log logger to Logger.
type ApexLogger struct {
	log log.Interface
}

// NewApexLogger wraps l. A nil l uses the apex/log package logger.
func NewApexLogger(l log.Interface) *ApexLogger {
	if l == nil {
		l = log.Log
	}
	return &ApexLogger{log: l}
}

// NewSimpleLogger returns a debug-level logger printing to stderr with
// the apex/log cli handler.
func NewSimpleLogger() *ApexLogger {
	return NewWriterLogger(os.Stderr)
}

// NewWriterLogger is NewSimpleLogger writing to w.
func NewWriterLogger(w io.Writer) *ApexLogger {
	return NewApexLogger(&log.Logger{
		Handler: cli.New(w),
		Level:   log.DebugLevel,
	})
}

func (l *ApexLogger) Debug(msg string, keysAndValues ...any) {
	l.entry(keysAndValues).Debug(msg)
}

func (l *ApexLogger) Info(msg string, keysAndValues ...any) {
	l.entry(keysAndValues).Info(msg)
}

func (l *ApexLogger) Warn(msg string, keysAndValues ...any) {
	l.entry(keysAndValues).Warn(msg)
}

func (l *ApexLogger) Error(msg string, keysAndValues ...any) {
	l.entry(keysAndValues).Error(msg)
}

func (l *ApexLogger) entry(keysAndValues []any) *log.Entry {
	return l.log.WithFields(fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []any) log.Fields {
	fields := make(log.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields[key] = "(missing)"
			break
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
