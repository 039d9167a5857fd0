// Package obalog provides structured logging for the protocol engine on
// top of logrus: leveled methods plus WithRequestID/WithFields for
// per-connection context.
package obalog

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface every Endpoint and the
// cmd/ldapwired binary depend on.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	WithRequestID(requestID string) Logger
	WithFields(keysAndValues ...interface{}) Logger
}

type entryLogger struct {
	entry *logrus.Entry
}

// New wraps a *logrus.Logger configured by the caller (level, formatter,
// output) as a Logger.
func New(base *logrus.Logger) Logger {
	return &entryLogger{entry: logrus.NewEntry(base)}
}

// NewDefault returns a Logger backed by a fresh logrus logger at info
// level with logrus's default text formatter, for callers (and tests)
// that don't need custom sinks.
func NewDefault() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return New(l)
}

// GenerateRequestID returns a fresh per-connection identifier, used to
// seed WithRequestID calls.
func GenerateRequestID() string {
	return uuid.NewString()
}

func (l *entryLogger) fieldsFrom(keysAndValues ...interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}
	return f
}

func (l *entryLogger) Debug(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fieldsFrom(kv...)).Debug(msg)
}

func (l *entryLogger) Info(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fieldsFrom(kv...)).Info(msg)
}

func (l *entryLogger) Warn(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fieldsFrom(kv...)).Warn(msg)
}

func (l *entryLogger) Error(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fieldsFrom(kv...)).Error(msg)
}

func (l *entryLogger) WithRequestID(requestID string) Logger {
	return &entryLogger{entry: l.entry.WithField("request_id", requestID)}
}

func (l *entryLogger) WithFields(kv ...interface{}) Logger {
	return &entryLogger{entry: l.entry.WithFields(l.fieldsFrom(kv...))}
}
