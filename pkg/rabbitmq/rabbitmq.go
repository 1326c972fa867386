package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher hands a JSON payload to the broker under a stable message id.
type Publisher interface {
	Publish(ctx context.Context, id string, payload interface{}) error
	Close() error
}

type Config struct {
	URL         string
	QueueName   string
	MessageType string
}

// MailPublisher publishes to a durable queue on a channel in confirm mode,
// so Publish returns only once the broker has taken the message.
type MailPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	msgType string
}

var ErrNotConfirmed = errors.New("rabbitmq: publish not confirmed by broker")

func NewMailPublisher(cfg Config) (*MailPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, amqp.Table{
		"x-queue-mode": "lazy",
	})
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", cfg.QueueName, err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &MailPublisher{conn: conn, channel: ch, queue: q.Name, msgType: cfg.MessageType}, nil
}

func (p *MailPublisher) Publish(ctx context.Context, id string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", id, err)
	}

	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		MessageId:    id,
		Type:         p.msgType,
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message %s: %w", id, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for confirm of %s: %w", id, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, id)
	}
	return nil
}

func (p *MailPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
