package audit

import (
	"context"
	"log/slog"
)

// ChannelSink queues events for asynchronous delivery. When the inbox is
// full the event is dropped with a warning; the store append already
// happened, so the trail itself is never lost.
type ChannelSink struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewChannelSink(inbox chan<- Event, logger *slog.Logger) *ChannelSink {
	return &ChannelSink{inbox: inbox, logger: logger}
}

func (s *ChannelSink) Publish(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
	default:
		s.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
	return nil
}

// Worker drains the inbox into a downstream sink. It keeps broker latency
// off the request path: handlers drop events into the inbox and move on.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "audit sink publish failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
