package events

import (
	"log/slog"
	"slices"
)

// LoggingObserver logs every event at debug level.
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	o.logger.Debug("event", "type", event.Type, "data", event.Data)
	return nil
}

// Name returns the observer's name.
func (o *LoggingObserver) Name() string {
	return "LoggingObserver"
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}

// FuncObserver adapts a function to the Observer interface.
type FuncObserver struct {
	name  string
	types []string
	fn    func(Event) error
}

// NewFuncObserver calls fn for events of the given types, or for every event
// when no types are given.
func NewFuncObserver(name string, fn func(Event) error, types ...string) *FuncObserver {
	return &FuncObserver{name: name, types: types, fn: fn}
}

// OnEvent calls the wrapped function.
func (o *FuncObserver) OnEvent(event Event) error {
	return o.fn(event)
}

// Name returns the observer's name.
func (o *FuncObserver) Name() string {
	return o.name
}

// ShouldHandle filters by the observer's event types.
func (o *FuncObserver) ShouldHandle(eventType string) bool {
	return len(o.types) == 0 || slices.Contains(o.types, eventType)
}
