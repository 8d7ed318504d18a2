package messaging

import (
	"fmt"
	"log/slog"

	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/infrastructure/config"
	"github.com/bibbank/loanengine/pkg/kafka"
)

// NewPublisher returns a Kafka publisher when cfg.Enabled and a logging
// publisher otherwise. The returned close function releases the producer.
func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (port.EventPublisher, func() error, error) {
	if !cfg.Enabled {
		logger.Info("kafka disabled, domain events will be logged only")
		return NewLogEventPublisher(logger), func() error { return nil }, nil
	}

	producer, err := kafka.NewProducer(cfg.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Info("publishing domain events to kafka", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return NewKafkaEventPublisher(producer, cfg.Topic, logger), producer.Close, nil
}
