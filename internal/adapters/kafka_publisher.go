// Package adapters connects the engine's domain events to external systems.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadengine_backend/internal/events"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"

	"github.com/segmentio/kafka-go"
)

const kafkaWriteTimeout = 10 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventEnvelope is the JSON value written for every event.
type EventEnvelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// KafkaEventPublisher forwards bus events to a Kafka topic keyed by event name.
type KafkaEventPublisher struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

// NewKafkaEventPublisher builds a synchronous writer for the configured topic.
func NewKafkaEventPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaEventPublisher, error) {
	if !cfg.IsKafkaEnabled() {
		return nil, fmt.Errorf("kafka is not configured")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.GetKafkaBrokers()...),
		Topic:        cfg.GetKafkaEventsTopic(),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return newKafkaEventPublisher(w, cfg.GetKafkaEventsTopic(), log), nil
}

func newKafkaEventPublisher(w messageWriter, topic string, log *logger.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: w, topic: topic, log: log}
}

// Register subscribes the publisher to every event on bus.
func (p *KafkaEventPublisher) Register(bus events.Bus) {
	bus.Subscribe(events.WildcardEvent, p)
}

// Handle implements events.Handler.
func (p *KafkaEventPublisher) Handle(ctx context.Context, event events.Event) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.log.WithContext(ctx).Error("kafka publish failed",
			"topic", p.topic,
			"event", event.EventName(),
			"error", err,
		)
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaEventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encodeEvent(event events.Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}

	value, err := json.Marshal(EventEnvelope{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope %s: %w", event.EventName(), err)
	}

	return kafka.Message{
		Key:     []byte(event.EventName()),
		Value:   value,
		Headers: []kafka.Header{{Key: "event", Value: []byte(event.EventName())}},
		Time:    event.OccurredAt(),
	}, nil
}
