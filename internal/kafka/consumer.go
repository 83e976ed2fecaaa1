package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v5"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string
}

func NewConsumerGroup(cfg ConsumerConfig) (sarama.ConsumerGroup, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_8_0_0
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	return group, nil
}

type PaymentResultApplier interface {
	ApplyPaymentResult(ctx context.Context, result domain.PaymentResult) (*domain.Booking, error)
}

// PaymentResultConsumer feeds payment results from Kafka into the booking
// service.
type PaymentResultConsumer struct {
	group   sarama.ConsumerGroup
	applier PaymentResultApplier
	topic   string
	logger  *slog.Logger
	wg      sync.WaitGroup

	// claimFailed is set when a claim stopped on a result that could not be
	// applied, so the next session starts after a backoff.
	claimFailed atomic.Bool
	newBackOff  func() backoff.BackOff
}

func NewPaymentResultConsumer(
	group sarama.ConsumerGroup,
	applier PaymentResultApplier,
	topic string,
	logger *slog.Logger) *PaymentResultConsumer {

	if topic == "" {
		topic = TopicPaymentResults
	}

	return &PaymentResultConsumer{
		group:   group,
		applier: applier,
		topic:   topic,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			return b
		},
	}
}

func (c *PaymentResultConsumer) Start(ctx context.Context) {
	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		c.consume(ctx)
	}()

	go func() {
		defer c.wg.Done()

		for err := range c.group.Errors() {
			c.logger.Error("kafka consumer group error", "error", err)
		}
	}()

	c.logger.Info("consuming payment results", "topic", c.topic)
}

// consume rejoins the group after every session. Failed sessions are
// retried with exponential backoff until the group is closed or ctx ends.
func (c *PaymentResultConsumer) consume(ctx context.Context) {
	b := c.newBackOff()

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
			return
		}

		claimFailed := c.claimFailed.Swap(false)
		if err == nil && !claimFailed {
			b.Reset()
			continue
		}

		if err != nil {
			c.logger.Error("kafka consume failed", "topic", c.topic, "error", err)
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			wait = time.Minute
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (c *PaymentResultConsumer) Close() error {
	err := c.group.Close()
	c.wg.Wait()

	return err
}

func (c *PaymentResultConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (c *PaymentResultConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks each applied result. It returns on the first result that
// fails to apply, leaving its offset unmarked so the next session
// redelivers it before anything after it.
func (c *PaymentResultConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok || msg == nil {
				return nil
			}

			err := c.handleMessage(session.Context(), msg)
			if err != nil {
				c.claimFailed.Store(true)
				c.logger.ErrorContext(session.Context(), "failed to apply payment result, stopping claim",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err)

				return fmt.Errorf("apply payment result at offset %d: %w", msg.Offset, err)
			}

			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage applies one payment result. Results that can never apply,
// such as malformed payloads or stale transitions, are logged and
// acknowledged so they do not block the partition.
func (c *PaymentResultConsumer) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event PaymentResultEvent

	err := json.Unmarshal(msg.Value, &event)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping malformed payment result", "offset", msg.Offset, "error", err)
		return nil
	}

	result, err := event.toPaymentResult()
	if err != nil {
		c.logger.WarnContext(ctx, "dropping invalid payment result", "offset", msg.Offset, "error", err)
		return nil
	}

	booking, err := c.applier.ApplyPaymentResult(ctx, result)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrInvalidTransition):
			c.logger.WarnContext(ctx, "payment result not applicable",
				"event_id", event.EventID,
				"booking_id", event.BookingID,
				"error", err)
			return nil
		default:
			return err
		}
	}

	c.logger.InfoContext(ctx, "applied payment result",
		"event_id", event.EventID,
		"booking_id", booking.ID,
		"status", booking.Status)

	return nil
}
