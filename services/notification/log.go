package notification

import (
	"context"

	"bookwell/models"

	"go.uber.org/zap"
)

// LogDispatcher writes events to the log instead of delivering them.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Deliver(_ context.Context, event models.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("notification",
		zap.String("eventId", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("target", event.TargetRole+":"+event.TargetID),
		zap.String("bookingId", event.BookingID),
		zap.String("title", event.Title),
	)
	return nil
}
