package notification

import (
	"context"
	"errors"
	"fmt"

	"bookwell/models"
	"bookwell/services/tasks"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used by QueueDispatcher.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands events to the asynq delivery worker. Once a task is
// enqueued the worker owns retries, so enqueueing counts as delivered.
type QueueDispatcher struct {
	Client Enqueuer
}

func (d *QueueDispatcher) Deliver(ctx context.Context, event models.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	task, opts, err := tasks.NewDeliveryTask(event.ToDeliveryPayload())
	if err != nil {
		return fmt.Errorf("build delivery task: %w", err)
	}
	if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s for %s: %w", event.Kind, event.TargetID, err)
	}
	return nil
}
