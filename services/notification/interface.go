package notification

import (
	"context"
	"errors"

	"bookwell/models"
)

// ErrNoTarget is returned when an event has no addressable recipient.
var ErrNoTarget = errors.New("notification has no target")

// Dispatcher delivers one event. A nil error means the event was delivered
// or durably accepted for delivery; the caller may then treat it as sent.
type Dispatcher interface {
	Deliver(ctx context.Context, event models.Event) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, event models.Event) error

func (f DispatcherFunc) Deliver(ctx context.Context, event models.Event) error {
	return f(ctx, event)
}

func validate(event models.Event) error {
	if event.TargetID == "" {
		return ErrNoTarget
	}
	return nil
}
