package citrees

import (
	"fmt"
	"log/slog"
)

/*
Logger is the sink for training and prediction progress messages. The
component tells which part of the model produced the message ("tree",
"selector", "splitter", "forest"). Models hold a Logger only when
verbosity is requested; logging never affects model state, so a Logger
implementation that drops or fails to deliver messages is harmless.
*/
type Logger interface {
	Logf(component, format string, args ...interface{})
}

// NopLogger discards every message. It is the default Logger on all
// models.
type NopLogger struct{}

// Logf discards the message.
func (NopLogger) Logf(component, format string, args ...interface{}) {}

// SlogLogger forwards messages to a slog.Logger at info level, with the
// component attached as an attribute.
type SlogLogger struct {
	L *slog.Logger
}

// Logf formats the message and hands it to the wrapped slog.Logger. A
// SlogLogger with a nil logger discards everything.
func (sl SlogLogger) Logf(component, format string, args ...interface{}) {
	if sl.L == nil {
		return
	}
	sl.L.Info(fmt.Sprintf(format, args...), "component", component)
}
