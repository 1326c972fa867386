package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const TaskTypeSendMail TaskType = "send_mail"

// Task is the envelope pushed to the Redis list; consumers live outside this service.
type Task struct {
	ID         string          `json:"id"`
	Type       TaskType        `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	Attempts   int             `json:"attempts"`
	MaxRetries int             `json:"max_retries"`
}

// Queue интерфейс очереди
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Close() error
}

// NewTask wraps a JSON-encodable payload into a task with a fresh id.
func NewTask(taskType TaskType, payload interface{}) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return &Task{
		ID:      uuid.New().String(),
		Type:    taskType,
		Payload: data,
	}, nil
}

// Validate checks if the task is valid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return fmt.Errorf("task type is required")
	}
	if len(t.Payload) == 0 {
		return fmt.Errorf("task payload is required")
	}
	return nil
}
