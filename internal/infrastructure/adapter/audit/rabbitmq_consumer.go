package audit

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
)

// Acknowledger settles one delivery
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Outcome is what the consumer did with a delivery
type Outcome string

// Outcome constants
const (
	OutcomeAcked    Outcome = "acked"
	OutcomeRejected Outcome = "rejected"
	OutcomeRequeued Outcome = "requeued"
)

// Consumer drains the locker log queue into a sink, usually the database repository
type Consumer struct {
	sink   event.AuditWriter
	logger coreport.Logger
}

// NewConsumer creates a consumer
func NewConsumer(sink event.AuditWriter, logger coreport.Logger) *Consumer {
	return &Consumer{sink: sink, logger: logger}
}

// Handle writes one message. Bad payloads are rejected without requeue so they cannot loop;
// an entry already stored counts as delivered; other sink failures go back to the queue.
func (c *Consumer) Handle(ctx context.Context, body []byte, ack Acknowledger) Outcome {
	log, err := DecodeLog(body)
	if err != nil {
		c.logger.Warn("Rejecting malformed locker log message", map[string]any{"error": err.Error()})
		_ = ack.Nack(false, false)
		return OutcomeRejected
	}

	if err := c.sink.Append(ctx, log); err != nil && !errors.Is(err, errs.ErrDuplicate) {
		c.logger.Error("Failed to store locker log, requeueing", map[string]any{
			"log_id":    log.ID,
			"locker_id": log.LockerID,
			"error":     err.Error(),
		})
		_ = ack.Nack(false, true)
		return OutcomeRequeued
	}

	_ = ack.Ack(false)
	return OutcomeAcked
}

// Run consumes deliveries until ctx is done or the channel closes.
// started, when set, is called once the queue subscription is live.
func (c *Consumer) Run(ctx context.Context, ch *amqp.Channel, queue string, prefetch int, started func()) error {
	if queue == "" {
		queue = DefaultQueue
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			c.logger.Warn("Failed to set consumer prefetch", map[string]any{"error": err.Error()})
		}
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	if started != nil {
		started()
	}
	c.logger.Info("Audit consumer started", map[string]any{"queue": queue})
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Audit consumer stopped", nil)
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.Handle(ctx, d.Body, &d)
		}
	}
}
