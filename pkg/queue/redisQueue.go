package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxRetries = 3
	metricsKeySuffix  = ":metrics"
)

// RedisQueue publishes tasks to a Redis list (LPUSH); consumers pop from the other end.
type RedisQueue struct {
	client     *redis.Client
	name       string
	maxRetries int
	now        func() time.Time
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{
		client:     client,
		name:       name,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
	}
}

// Publish sends a task to the queue
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	r.prepare(task)
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := r.client.LPush(ctx, r.name, taskData).Err(); err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}

	r.incrementMetric(ctx, "tasks_queued")
	logrus.WithFields(logrus.Fields{"task_id": task.ID, "queue": r.name}).Debug("Task published")
	return nil
}

func (r *RedisQueue) prepare(task *Task) {
	if task.MaxRetries == 0 {
		task.MaxRetries = r.maxRetries
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.now()
	}
}

// incrementMetric is best effort: a failed counter never fails the publish.
func (r *RedisQueue) incrementMetric(ctx context.Context, metric string) {
	if err := r.client.HIncrBy(ctx, r.name+metricsKeySuffix, metric, 1).Err(); err != nil {
		logrus.WithError(err).Debug("Failed to increment queue metric")
	}
}

// Close is a no-op: the client is shared and closed by its owner.
func (r *RedisQueue) Close() error {
	return nil
}
