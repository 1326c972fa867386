package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/pkg/kafka"
	"github.com/ds124wfegd/voucher-reminder/pkg/queue"
	"github.com/ds124wfegd/voucher-reminder/pkg/rabbitmq"

	"github.com/google/uuid"
)

// NewMailMessage builds the pending mail document handed to the dispatch queue.
func NewMailMessage(to string, content *entity.MailContent, now time.Time) *entity.MailMessage {
	return &entity.MailMessage{
		ID:        uuid.NewString(),
		To:        to,
		Message:   *content,
		CreatedAt: now,
		Status:    entity.MailStatusPending,
	}
}

// StoreDispatcher writes mail into the store's mail collection.
type StoreDispatcher struct {
	repo database.MailRepository
}

func NewStoreDispatcher(repo database.MailRepository) *StoreDispatcher {
	return &StoreDispatcher{repo: repo}
}

func (d *StoreDispatcher) Dispatch(ctx context.Context, msg *entity.MailMessage) error {
	return d.repo.Enqueue(ctx, msg)
}

// QueueDispatcher publishes mail as send_mail tasks on a pkg/queue queue.
type QueueDispatcher struct {
	queue queue.Queue
}

func NewQueueDispatcher(q queue.Queue) *QueueDispatcher {
	return &QueueDispatcher{queue: q}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, msg *entity.MailMessage) error {
	task, err := queue.NewTask(queue.TaskTypeSendMail, msg)
	if err != nil {
		return fmt.Errorf("failed to build mail task: %w", err)
	}
	task.ID = msg.ID

	return d.queue.Publish(ctx, task)
}

// RabbitMQDispatcher publishes mail on a durable RabbitMQ queue.
type RabbitMQDispatcher struct {
	publisher rabbitmq.Publisher
}

func NewRabbitMQDispatcher(p rabbitmq.Publisher) *RabbitMQDispatcher {
	return &RabbitMQDispatcher{publisher: p}
}

func (d *RabbitMQDispatcher) Dispatch(ctx context.Context, msg *entity.MailMessage) error {
	return d.publisher.Publish(ctx, msg.ID, msg)
}

// KafkaDispatcher writes mail to a Kafka topic keyed by recipient.
type KafkaDispatcher struct {
	producer kafka.Producer
}

func NewKafkaDispatcher(p kafka.Producer) *KafkaDispatcher {
	return &KafkaDispatcher{producer: p}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, msg *entity.MailMessage) error {
	return d.producer.SendMessage(ctx, msg.To, msg)
}
