package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"servswap/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendReminder = "reminder:send"
	TypeFanOut       = "notification:fanout"
)

// Enqueuer is the part of *asynq.Client the services use.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewReminderTask builds a reminder delivered at fireAt. taskID makes
// rescheduling the same reminder a no-op.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time, taskID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(5)}
	if taskID != "" {
		opts = append(opts, asynq.TaskID(taskID))
	}
	return task, opts, nil
}

// NewFanOutTask builds a task notifying every connection of the payload's author.
func NewFanOutTask(payload models.FanOutPayload) (*asynq.Task, []asynq.Option, error) {
	if payload.AuthorID == "" {
		return nil, nil, fmt.Errorf("fan-out task needs an author")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeFanOut, b), []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(2 * time.Minute)}, nil
}

// RenewalReminderID is the stable task id for one billing period's reminder.
func RenewalReminderID(userID string, periodEnd time.Time) string {
	return fmt.Sprintf("renewal:%s:%d", userID, periodEnd.Unix())
}
