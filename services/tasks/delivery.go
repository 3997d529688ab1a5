package tasks

import (
	"encoding/json"
	"time"

	"bookwell/models"

	"github.com/hibiken/asynq"
)

const TypeDeliverNotification = "notify:deliver"

// NewDeliveryTask wraps a payload for the delivery worker. The event ID is the
// task ID, so re-enqueueing the same event is rejected by asynq.
func NewDeliveryTask(payload models.DeliveryPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{
		asynq.TaskID(payload.EventID),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}

// ParseDeliveryTask decodes a task produced by NewDeliveryTask.
func ParseDeliveryTask(task *asynq.Task) (models.DeliveryPayload, error) {
	var p models.DeliveryPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
