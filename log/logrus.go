package log

import "github.com/sirupsen/logrus"

// logrusLogger adapts a logrus entry to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrus wraps a logrus entry as a Logger. A nil entry falls back to the
// logrus standard logger.
func NewLogrus(entry *logrus.Entry) Logger {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields converts alternating key/value pairs to logrus fields. Non-string
// keys and a trailing dangling key are tolerated rather than dropped.
func fields(keysAndValues []any) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "?"
		}
		f[key] = keysAndValues[i+1]
	}
	if len(keysAndValues)%2 == 1 {
		f["?"] = keysAndValues[len(keysAndValues)-1]
	}
	return f
}
