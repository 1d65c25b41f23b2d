package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sink receives every event after it is persisted. Optional; used to fan
// audit events out to Kafka.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is injected into each
// service rather than living as a process-wide singleton so the core stays
// testable in isolation. Emission is fire-and-forget from the caller's point
// of view: persistence failures are logged, never propagated into the
// business operation that triggered them.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(store Store, sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, sink: sink, logger: logger}
}

// Emit stamps and records the event. Errors are swallowed after logging;
// callers do not depend on the return of the audit collaborator.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Actor == "" {
		event.Actor = "system"
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"entity_kind", event.EntityKind,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}

// List returns the trail for one entity.
func (p *Publisher) List(ctx context.Context, entityKind, entityID string) ([]Event, error) {
	return p.store.ListByEntity(ctx, entityKind, entityID)
}
