// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"bookwell/models"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrStateChanged means a compare-and-set lost to a concurrent writer.
	ErrStateChanged = errors.New("booking state changed concurrently")
	ErrAlreadyFired = errors.New("reminder already fired")
	ErrDuplicate    = errors.New("booking already exists")
	// ErrUnavailable wraps transport-level store failures; no mutation may be assumed.
	ErrUnavailable = errors.New("booking store unavailable")
)

// BookingRepository is the durable store the booking core depends on.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// UpdateIfState writes the lifecycle fields (state, payment, cancellation,
	// updatedAt) only while the stored state still equals expected. The reminder
	// flag is left untouched.
	UpdateIfState(ctx context.Context, booking *models.Booking, expected models.BookingState) error
	// ListActiveByProvider returns pending/confirmed bookings overlapping [from, to), ordered by start.
	ListActiveByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error)
	// ListReminderCandidates returns active bookings without a fired reminder starting in [from, to).
	ListReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	// MarkReminderFired flips reminderFired from false to true.
	MarkReminderFired(ctx context.Context, id string, at time.Time) error
	CountByClientAndState(ctx context.Context, clientID string, state models.BookingState) (int, error)
}
