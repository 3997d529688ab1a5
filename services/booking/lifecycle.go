package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	bookingRepo "bookwell/database/repository/booking"
	"bookwell/models"
	"bookwell/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest carries the caller's input for a new booking.
type CreateBookingRequest struct {
	ProviderID      string                 `json:"providerId"`
	ClientID        string                 `json:"clientId"`
	StartTime       time.Time              `json:"startTime"`
	DurationMinutes int                    `json:"durationMinutes"`
	ServiceLocation models.ServiceLocation `json:"serviceLocation"`
	Metadata        map[string]string      `json:"metadata,omitempty"`
	CreatedBy       string                 `json:"createdBy"`
}

// allowedTransitions lists every legal edge. Terminal states have none.
var allowedTransitions = map[models.BookingState][]models.BookingState{
	models.StatePending:   {models.StateConfirmed, models.StateCompleted, models.StateCancelled, models.StateNoShow},
	models.StateConfirmed: {models.StateCompleted, models.StateCancelled, models.StateNoShow},
}

func canTransition(from, to models.BookingState) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// DefaultBookingManager implements BookingManager.
type DefaultBookingManager struct {
	Repo       bookingRepo.BookingRepository
	Locker     ProviderLocker
	Dispatcher notification.Dispatcher
	History    HistoryRecorder
	Penalty    NoShowPolicy
	Hours      HoursResolver
	Pricing    PricingPolicy
	Location   *time.Location
	// CreateGrace tolerates clock skew between the caller and this process.
	CreateGrace     time.Duration
	DispatchTimeout time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

func (m *DefaultBookingManager) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	now := m.now()
	if err := m.validateCreate(req, now); err != nil {
		return nil, err
	}
	location := req.ServiceLocation
	if location == "" {
		location = models.LocationOnSite
	}

	hours, err := m.Hours.HoursFor(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("resolve hours for %s: %w", req.ProviderID, err)
	}
	start := req.StartTime.In(m.location())
	duration := time.Duration(req.DurationMinutes) * time.Minute
	end := start.Add(duration)

	release, err := m.Locker.Lock(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock so two racing creates cannot both pass the check.
	existing, err := m.Repo.ListActiveByProvider(ctx, req.ProviderID, start, end)
	if err != nil {
		return nil, storeError("list provider bookings", err)
	}
	verdict := CheckSlot(SlotQuery{
		ProviderID: req.ProviderID,
		Start:      start,
		Duration:   duration,
		Now:        now.Add(-m.CreateGrace),
		Hours:      hours,
		Location:   m.location(),
	}, existing)
	if !verdict.Free() {
		conflict := newSlotConflict(req.ProviderID, start, end, verdict)
		m.logger().Info("slot rejected",
			zap.String("providerId", req.ProviderID),
			zap.Time("start", start),
			zap.String("reason", string(verdict.Reason)),
			zap.String("conflictingId", conflict.ConflictingID),
		)
		return nil, conflict
	}

	b := &models.Booking{
		ID:              uuid.NewString(),
		ProviderID:      req.ProviderID,
		ClientID:        req.ClientID,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
		EndTime:         end,
		ServiceLocation: location,
		State:           models.StatePending,
		PaymentAmount:   m.Pricing.Quote(req.DurationMinutes, location),
		Currency:        m.Pricing.Currency(),
		PaymentState:    models.PaymentPending,
		Metadata:        req.Metadata,
		CreatedAt:       now,
		CreatedBy:       req.CreatedBy,
		UpdatedAt:       now,
	}
	if b.CreatedBy == "" {
		b.CreatedBy = req.ClientID
	}
	if err := m.Repo.Create(ctx, b); err != nil {
		return nil, storeError("create booking", err)
	}

	m.logger().Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("providerId", b.ProviderID),
		zap.String("clientId", b.ClientID),
		zap.Time("start", b.StartTime),
		zap.Int("durationMinutes", b.DurationMinutes),
	)
	return b, nil
}

func (m *DefaultBookingManager) ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := m.transition(ctx, bookingID, models.StateConfirmed, nil)
	if err != nil {
		return nil, err
	}
	m.notify(ctx, b, models.EventConfirmed, models.RoleClient,
		"Booking confirmed",
		fmt.Sprintf("Your booking on %s is confirmed.", b.StartTime.Format("Mon Jan 2 15:04")))
	return b, nil
}

func (m *DefaultBookingManager) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := m.transition(ctx, bookingID, models.StateCompleted, func(b *models.Booking, now time.Time) {
		due := now
		b.PaymentDueAt = &due
	})
	if err != nil {
		return nil, err
	}

	paid := 0.0
	if b.PaymentState == models.PaymentPaid {
		paid = b.PaymentAmount
	}
	m.record(ctx, b, models.OutcomeCompleted, "", b.PaymentAmount, paid)
	m.notify(ctx, b, models.EventCompleted, models.RoleClient,
		"Booking completed",
		fmt.Sprintf("Thanks for your visit. Amount due: %.2f %s.", b.PaymentAmount, b.Currency))
	return b, nil
}

func (m *DefaultBookingManager) CancelBooking(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("reason", "cancellation reason is required")
	}

	b, err := m.transition(ctx, bookingID, models.StateCancelled, func(b *models.Booking, now time.Time) {
		at := now
		b.CancellationReason = reason
		b.CancelledBy = actor
		b.CancelledAt = &at
		if b.PaymentState == models.PaymentPaid {
			b.PaymentState = models.PaymentRefunded
		}
	})
	if err != nil {
		return nil, err
	}

	m.record(ctx, b, models.OutcomeCancelled, reason, 0, 0)
	m.notify(ctx, b, models.EventCancelled, models.RoleClient,
		"Booking cancelled",
		fmt.Sprintf("Your booking on %s was cancelled: %s", b.StartTime.Format("Mon Jan 2 15:04"), reason))
	return b, nil
}

// MarkNoShow records the no-show like a cancellation and then consults the
// no-show policy.
func (m *DefaultBookingManager) MarkNoShow(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("reason", "no-show reason is required")
	}

	b, err := m.transition(ctx, bookingID, models.StateNoShow, func(b *models.Booking, now time.Time) {
		at := now
		b.CancellationReason = reason
		b.CancelledBy = actor
		b.CancelledAt = &at
	})
	if err != nil {
		return nil, err
	}

	m.record(ctx, b, models.OutcomeNoShow, reason, 0, 0)
	m.applyNoShowPolicy(ctx, b)
	m.notify(ctx, b, models.EventNoShow, models.RoleClient,
		"Missed booking",
		fmt.Sprintf("You missed your booking on %s.", b.StartTime.Format("Mon Jan 2 15:04")))
	return b, nil
}

func (m *DefaultBookingManager) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, NewValidationError("bookingId", "is required")
	}
	b, err := m.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError("get booking", err)
	}
	return b, nil
}

// transition moves a booking to `to` with a compare-and-set on its current
// state. mutate may adjust extra fields before the write.
func (m *DefaultBookingManager) transition(ctx context.Context, bookingID string, to models.BookingState, mutate func(*models.Booking, time.Time)) (*models.Booking, error) {
	if bookingID == "" {
		return nil, NewValidationError("bookingId", "is required")
	}
	b, err := m.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError("get booking", err)
	}

	from := b.State
	if !canTransition(from, to) {
		m.logger().Info("transition rejected",
			zap.String("bookingId", bookingID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, &TransitionError{BookingID: bookingID, From: from, To: to}
	}

	now := m.now()
	b.State = to
	b.UpdatedAt = now
	if mutate != nil {
		mutate(b, now)
	}

	if err := m.Repo.UpdateIfState(ctx, b, from); err != nil {
		if errors.Is(err, bookingRepo.ErrStateChanged) {
			m.logger().Info("transition lost race",
				zap.String("bookingId", bookingID),
				zap.String("to", string(to)),
			)
			return nil, &TransitionError{BookingID: bookingID, From: from, To: to, Concurrent: true}
		}
		return nil, storeError("update booking", err)
	}

	m.logger().Info("booking transitioned",
		zap.String("bookingId", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return b, nil
}

func (m *DefaultBookingManager) validateCreate(req CreateBookingRequest, now time.Time) error {
	switch {
	case strings.TrimSpace(req.ProviderID) == "":
		return NewValidationError("providerId", "is required")
	case strings.TrimSpace(req.ClientID) == "":
		return NewValidationError("clientId", "is required")
	case req.StartTime.IsZero():
		return NewValidationError("startTime", "is required")
	case req.DurationMinutes <= 0:
		return NewValidationError("durationMinutes", "must be positive")
	case req.DurationMinutes > 24*60:
		return NewValidationError("durationMinutes", "must not exceed one day")
	case req.StartTime.Before(now.Add(-m.CreateGrace)):
		return NewValidationError("startTime", "must not be in the past")
	}
	switch req.ServiceLocation {
	case "", models.LocationOnSite, models.LocationOffSite:
	default:
		return NewValidationError("serviceLocation", fmt.Sprintf("unknown location %q", req.ServiceLocation))
	}
	return nil
}

func (m *DefaultBookingManager) location() *time.Location {
	if m.Location != nil {
		return m.Location
	}
	return time.UTC
}

func (m *DefaultBookingManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *DefaultBookingManager) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.L()
}
