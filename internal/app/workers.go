package app

import (
	"context"
	"log/slog"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/metinatakli/movie-booking-service/internal/kafka"
)

type eventPublisher interface {
	domain.EventPublisher
	Close() error
}

// newEventPublisher returns a Kafka publisher, or a no-op one when no
// brokers are configured.
func newEventPublisher(cfg Config, logger *slog.Logger) (eventPublisher, error) {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka brokers not set, booking events will not be published")
		return kafka.NoopPublisher{}, nil
	}

	producer, err := kafka.NewSyncProducer(kafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		ClientID:     cfg.Kafka.ClientID,
		RetryMax:     5,
		RequiredAcks: cfg.Kafka.RequiredAcks,
	})
	if err != nil {
		return nil, err
	}

	return kafka.NewPublisher(producer), nil
}

// newPaymentResultConsumer returns a worker that applies payment results
// from Kafka until its context is cancelled.
func newPaymentResultConsumer(
	cfg Config,
	applier kafka.PaymentResultApplier,
	logger *slog.Logger) (func(ctx context.Context), error) {

	group, err := kafka.NewConsumerGroup(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.PaymentResultsTopic,
	})
	if err != nil {
		return nil, err
	}

	consumer := kafka.NewPaymentResultConsumer(group, applier, cfg.Kafka.PaymentResultsTopic, logger)

	return func(ctx context.Context) {
		consumer.Start(ctx)
		<-ctx.Done()

		err := consumer.Close()
		if err != nil {
			logger.Error("failed to close kafka consumer", "error", err)
		}
	}, nil
}
