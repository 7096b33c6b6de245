package audit

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
)

// DefaultQueue is the durable queue carrying locker log entries
const DefaultQueue = "locker.logs"

// Channel is the subset of *amqp.Channel the publisher uses
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends entries to the locker log queue as persistent JSON messages
type RabbitPublisher struct {
	conn         *amqp.Connection
	channel      Channel
	queue        string
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ event.AuditWriter = (*RabbitPublisher)(nil)

// DialRabbitPublisher connects to the broker and declares the durable queue
func DialRabbitPublisher(url, queue string, timeProvider coreport.TimeProvider, logger coreport.Logger) (*RabbitPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	logger.Info("Connected to audit broker", map[string]any{"queue": queue})

	p := NewRabbitPublisher(ch, queue, timeProvider, logger)
	p.conn = conn
	return p, nil
}

// NewRabbitPublisher wraps an already opened channel
func NewRabbitPublisher(ch Channel, queue string, timeProvider coreport.TimeProvider, logger coreport.Logger) *RabbitPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RabbitPublisher{
		channel:      ch,
		queue:        queue,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Append publishes one entry on the default exchange, routed by queue name
func (p *RabbitPublisher) Append(ctx context.Context, log *entity.LockerLog) error {
	body, err := EncodeLog(log)
	if err != nil {
		return fmt.Errorf("encode locker log: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    log.ID,
		Timestamp:    p.timeProvider.Now(),
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish locker log: %w", err)
	}
	return nil
}

// Close closes the channel and the connection it was dialed with
func (p *RabbitPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
