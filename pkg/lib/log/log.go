// Package log is the logging surface of the taskline SDK.
//
// [lib.Config] takes any [Logger], the SDK is silent by default. Applications
// already on logrus wrap their entry with [NewLogrus]:
//
//	l := logrus.New()
//	l.SetLevel(logrus.DebugLevel)
//	client, err := lib.New(ctx, lib.Config{Logger: log.NewLogrus(logrus.NewEntry(l))})
//
// Every SDK component tags its lines with a "svc" value, e.g. "app.Gantt" or
// "backend.REST".
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/taskline/taskline/internal/log"
	loglogrus "github.com/taskline/taskline/internal/log/logrus"
)

// Logger receives the SDK log lines. Only the format methods need meaningful
// implementations, WithValues may return the same logger.
type Logger = log.Logger

// Kv are structured key-value pairs.
type Kv = log.Kv

// Noop discards every line.
var Noop = log.Noop

// NewLogrus adapts a logrus entry, the structured values become logrus fields.
func NewLogrus(l *logrus.Entry) Logger {
	return loglogrus.NewLogrus(l)
}
