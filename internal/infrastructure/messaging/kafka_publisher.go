package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/pkg/events"
	"github.com/bibbank/loanengine/pkg/kafka"
)

// MessageProducer is the subset of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...kafka.Message) error
}

// KafkaEventPublisher implements port.EventPublisher by writing events to
// Kafka. Events are keyed by loan ID so every event of a loan lands on the
// same partition in order.
type KafkaEventPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting topic.
func NewKafkaEventPublisher(producer MessageProducer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises events and writes them in a single batch.
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(env.AggregateID),
			Value: env.Payload,
			Headers: map[string]string{
				"content-type":   "application/json",
				"event-id":       env.ID,
				"event-type":     env.EventType,
				"aggregate-type": env.AggregateType,
			},
		})

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", env.EventType,
			"aggregate_id", env.AggregateID,
			"topic", p.topic,
			"payload_size", len(env.Payload),
		)
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish %d events: %w", len(messages), err)
	}
	return nil
}

// LogEventPublisher only logs events. It backs deployments without a broker.
type LogEventPublisher struct {
	logger *slog.Logger
}

// NewLogEventPublisher creates a LogEventPublisher.
func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

// Publish logs every event at info level.
func (p *LogEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	for _, evt := range evts {
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"event_id", evt.EventID(),
		)
	}
	return nil
}
