package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "bookwell/database/repository/booking"
	"bookwell/models"
	"bookwell/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDispatchFailure marks a reminder that could not be delivered. The booking
// stays eligible and is retried on the next scan while still in the window.
var ErrDispatchFailure = errors.New("reminder dispatch failed")

// ScanResult summarizes one pass.
type ScanResult struct {
	Candidates int       `json:"candidates"`
	Fired      int       `json:"fired"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	RanAt      time.Time `json:"ranAt"`
	Errors     []error   `json:"-"`
}

// Scanner finds due bookings and fires their reminder at most once.
type Scanner struct {
	Repo            bookingRepo.BookingRepository
	Dispatcher      notification.Dispatcher
	Window          Window
	DispatchTimeout time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

// ScanAndFire dispatches first and only then marks the reminder fired, so a
// failed dispatch never suppresses the booking's only reminder.
func (s *Scanner) ScanAndFire(ctx context.Context) (ScanResult, error) {
	now := s.now()
	result := ScanResult{RanAt: now}
	w := s.window()

	candidates, err := s.Repo.ListReminderCandidates(ctx, now.Add(w.Lower), now.Add(w.Upper))
	if err != nil {
		return result, fmt.Errorf("list reminder candidates: %w", err)
	}
	result.Candidates = len(candidates)

	for _, b := range Due(candidates, now, w) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.fire(ctx, b, now); err != nil {
			if errors.Is(err, bookingRepo.ErrAlreadyFired) || errors.Is(err, errNoLongerDue) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, err)
			s.logger().Warn("reminder not fired",
				zap.String("bookingId", b.ID),
				zap.Error(err))
			continue
		}
		result.Fired++
	}

	s.logger().Info("reminder scan finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("fired", result.Fired),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// errNoLongerDue marks a candidate that changed after the listing.
var errNoLongerDue = errors.New("booking no longer due")

func (s *Scanner) fire(ctx context.Context, b models.Booking, now time.Time) error {
	// Re-read so a booking cancelled or reminded since the listing is not sent.
	current, err := s.Repo.GetByID(ctx, b.ID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return fmt.Errorf("booking %s: %w", b.ID, errNoLongerDue)
		}
		return fmt.Errorf("booking %s: reload: %w", b.ID, err)
	}
	if !current.IsActive() || current.ReminderFired || !s.window().Contains(current.StartTime, now) {
		return fmt.Errorf("booking %s: %w", b.ID, errNoLongerDue)
	}
	b = *current

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout())
	err = s.Dispatcher.Deliver(dctx, reminderEvent(b, now))
	cancel()
	if err != nil {
		return fmt.Errorf("booking %s: %w: %w", b.ID, ErrDispatchFailure, err)
	}

	if err := s.Repo.MarkReminderFired(ctx, b.ID, now); err != nil {
		return fmt.Errorf("booking %s: mark fired: %w", b.ID, err)
	}
	return nil
}

// reminderEvent addresses the provider, who has to be there for the booking.
func reminderEvent(b models.Booking, now time.Time) models.Event {
	return models.Event{
		ID:         uuid.NewString(),
		TargetID:   b.ProviderID,
		TargetRole: models.RoleProvider,
		Kind:       models.EventReminder,
		BookingID:  b.ID,
		Title:      "Upcoming booking",
		Body:       fmt.Sprintf("Reminder: you have a booking at %s.", b.StartTime.Format("Mon Jan 2 15:04")),
		Payload: map[string]string{
			"clientId":  b.ClientID,
			"startTime": b.StartTime.Format(time.RFC3339),
			"location":  string(b.ServiceLocation),
		},
		CreatedAt: now,
	}
}

func (s *Scanner) window() Window {
	if s.Window.Upper > s.Window.Lower {
		return s.Window
	}
	return DefaultWindow()
}

func (s *Scanner) dispatchTimeout() time.Duration {
	if s.DispatchTimeout > 0 {
		return s.DispatchTimeout
	}
	return 10 * time.Second
}

func (s *Scanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
