package booking

import (
	"context"
	"time"

	"bookwell/models"
)

// BookingManager owns every state change of a booking.
type BookingManager interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// AvailabilityReader answers read-only slot queries for the HTTP layer.
type AvailabilityReader interface {
	FreeSlots(ctx context.Context, providerID string, day time.Time, durationMinutes int) ([]time.Time, error)
	CountFreeSlots(ctx context.Context, providerID string, day time.Time, durationMinutes int) (int, error)
	MonthAvailability(ctx context.Context, providerID string, year int, month time.Month, durationMinutes int) ([]DayAvailability, error)
}

// HoursResolver supplies a provider's operating hours.
type HoursResolver interface {
	HoursFor(ctx context.Context, providerID string) (OperatingHours, error)
}

// StaticHours gives every provider the same window.
type StaticHours struct {
	Hours OperatingHours
}

func (s StaticHours) HoursFor(_ context.Context, _ string) (OperatingHours, error) {
	return s.Hours, nil
}

// HistoryRecorder receives one record per finished booking.
type HistoryRecorder interface {
	Append(ctx context.Context, record models.HistoryRecord) (string, error)
}

// ProviderLocker serializes slot claims for a single provider. The returned
// release function must be called exactly once.
type ProviderLocker interface {
	Lock(ctx context.Context, providerID string) (release func(), err error)
}
