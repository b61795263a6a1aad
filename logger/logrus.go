package logger

import "github.com/sirupsen/logrus"

// logrusLogger adapts a logrus entry to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger returns a Logger that writes debug messages to the
// given logrus entry, tagged with the category as a field.
func NewLogrusLogger(entry *logrus.Entry, category string) Logger {
	if category != "" {
		entry = entry.WithField("category", category)
	}
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) Debug(format string, v ...any) {
	l.entry.Debugf(format, v...)
}
