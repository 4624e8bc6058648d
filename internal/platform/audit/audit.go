package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event describes a completed mutating operation for the audit trail.
type Event struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	At         time.Time
}

// Publisher receives audit events after the underlying write has committed.
// Publishing must never fail the business operation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// logPublisher emits audit events as structured log records.
type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a Publisher that writes events to the given logger.
func NewLogPublisher(logger *slog.Logger) Publisher {
	return &logPublisher{logger: logger}
}

func (p *logPublisher) Publish(ctx context.Context, event Event) {
	p.logger.InfoContext(ctx, "audit",
		slog.String("action", event.Action),
		slog.String("entity_type", event.EntityType),
		slog.String("entity_id", event.EntityID),
		slog.String("actor_id", event.ActorID),
		slog.Time("at", event.At),
	)
}
