package events

import (
	"context"
	"log/slog"
)

// Publisher delivers composed events to downstream integrations.
// Implementations own transport-level retry; a returned error means delivery
// definitively failed and the caller must not acknowledge the triggering
// notification as processed.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// LogPublisher writes events to the structured log instead of delivering
// them anywhere. Used in development and as an explicit no-op sink.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher creates a publisher that records events via slog.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event *Event) error {
	p.log.InfoContext(ctx, "event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("event_version", string(event.Version)),
		slog.String("operation_id", event.OperationID),
	)
	return nil
}
