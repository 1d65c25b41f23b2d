package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"brokerage/pkg/platform/circuit"
)

// probeInterval is how often an open breaker lets one record through to test
// whether the brokers recovered.
const probeInterval = 30 * time.Second

// KafkaSink publishes audit events to a Kafka topic keyed by entity ID, so
// one entity's trail stays ordered within a partition. A circuit breaker
// tracks delivery health; while open the sink drops events instead of
// queueing against a broker that is not accepting them.
type KafkaSink struct {
	client    *kgo.Client
	topic     string
	breaker   *circuit.Breaker
	logger    *slog.Logger
	lastProbe atomic.Int64
}

// NewKafkaSink connects a producer to the given brokers.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{
		client:  client,
		topic:   topic,
		breaker: circuit.New("audit-kafka", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}, nil
}

// kafkaEvent is the JSON payload on the wire.
type kafkaEvent struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	Detail     string `json:"detail,omitempty"`
}

// Publish produces the event asynchronously; delivery results feed the
// breaker rather than the caller. Events arriving while the breaker is open
// are dropped, the durable trail in the store remains the source of truth.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	if s.breaker.IsOpen() {
		last := s.lastProbe.Load()
		now := time.Now().UnixNano()
		if now-last < int64(probeInterval) || !s.lastProbe.CompareAndSwap(last, now) {
			return nil
		}
	}
	payload, err := json.Marshal(kafkaEvent{
		ID:         event.ID,
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		Actor:      event.Actor,
		Action:     event.Action,
		EntityKind: event.EntityKind,
		EntityID:   event.EntityID,
		Detail:     event.Detail,
	})
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.EntityID),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			if _, change := s.breaker.RecordFailure(); change.Opened {
				s.logger.Warn("audit kafka breaker opened", "topic", s.topic, "error", err)
			}
			return
		}
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.Info("audit kafka breaker closed", "topic", s.topic)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) error {
	if err := s.client.Flush(ctx); err != nil {
		return err
	}
	s.client.Close()
	return nil
}
