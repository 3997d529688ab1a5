package booking

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NoShowRecord is handed to the no-show policy after the transition commits.
type NoShowRecord struct {
	BookingID    string
	ClientID     string
	ProviderID   string
	PriorNoShows int
	OccurredAt   time.Time
}

// NoShowPolicy decides what happens to clients who miss bookings.
type NoShowPolicy interface {
	Evaluate(ctx context.Context, rec NoShowRecord) error
}

// LoggingNoShowPolicy only records the event.
type LoggingNoShowPolicy struct {
	Logger *zap.Logger
}

func (p LoggingNoShowPolicy) Evaluate(_ context.Context, rec NoShowRecord) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("client no-show recorded",
		zap.String("bookingId", rec.BookingID),
		zap.String("clientId", rec.ClientID),
		zap.String("providerId", rec.ProviderID),
		zap.Int("priorNoShows", rec.PriorNoShows),
	)
	return nil
}
