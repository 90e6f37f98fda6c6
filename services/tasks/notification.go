package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"facilities/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendConfirmation = "notification:confirmation"
	TypeSendReminder     = "notification:reminder"
	TypeSendStatusUpdate = "notification:status"
)

const (
	KindConfirmation = "confirmation"
	KindReminder     = "reminder"
	KindStatus       = "status"
)

var taskTypes = map[string]string{
	KindConfirmation: TypeSendConfirmation,
	KindReminder:     TypeSendReminder,
	KindStatus:       TypeSendStatusUpdate,
}

// NewNotificationTask builds the task for payload.Kind. A zero fireAt sends
// as soon as a worker picks it up.
func NewNotificationTask(payload models.NotificationPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	taskType, ok := taskTypes[payload.Kind]
	if !ok {
		return nil, nil, fmt.Errorf("unknown notification kind %q", payload.Kind)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(taskType, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}
	if !fireAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}
	return task, opts, nil
}

// ParseNotificationTask reads the payload back out of a task.
func ParseNotificationTask(task *asynq.Task) (models.NotificationPayload, error) {
	var p models.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid notification payload: %w", err)
	}
	return p, nil
}
