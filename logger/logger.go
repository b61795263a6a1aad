// Package logger provides the debug logging interface shared by the
// transport, session and connection layers.
package logger

import "log"

// Logger is the debug sink of the client layers.
type Logger interface {
	Debug(format string, v ...any)
}

// stdLogger implements Logger over the standard log package.
type stdLogger struct {
	category string
}

// NewLogger returns a standard-log backend with a [category] prefix.
func NewLogger(category string) Logger {
	return &stdLogger{category: category}
}

func (l *stdLogger) Debug(format string, v ...any) {
	if l.category == "" {
		log.Printf(format, v...)
	} else {
		log.Printf("["+l.category+"] "+format, v...)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
