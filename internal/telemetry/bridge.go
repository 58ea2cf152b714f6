package telemetry

import (
	"go.uber.org/zap"

	"github.com/devcgo/devc/internal/events"
)

// EventLogger adapts a zap logger into an events.Sink so lifecycle and
// provider activity shows up in the structured log.
type EventLogger struct {
	logger *zap.Logger
}

// NewEventLogger wraps a logger as an event sink.
func NewEventLogger(logger *zap.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

var _ events.Sink = (*EventLogger)(nil)

// Emit logs one event. Failures and warnings surface at warn level,
// everything else at info.
func (l *EventLogger) Emit(event events.Event) {
	fields := make([]zap.Field, 0, 3)
	if event.Phase != "" {
		fields = append(fields, zap.String("phase", event.Phase))
	}
	if event.Name != "" {
		fields = append(fields, zap.String("name", event.Name))
	}
	if event.Detail != "" {
		fields = append(fields, zap.String("detail", event.Detail))
	}

	switch event.Type {
	case events.PhaseFailed, events.Warning:
		l.logger.Warn(string(event.Type), fields...)
	default:
		l.logger.Info(string(event.Type), fields...)
	}
}
