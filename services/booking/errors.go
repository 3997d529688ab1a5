package booking

import (
	"errors"
	"fmt"
	"time"

	bookingRepo "bookwell/database/repository/booking"
	"bookwell/models"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrSlotConflict      = errors.New("slot conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrStoreUnavailable  = errors.New("booking store unavailable")
)

// ValidationError reports malformed input. It is never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// SlotConflictError rejects a candidate window for a provider. When the window
// overlaps an active booking, ConflictingID and the conflicting window are set;
// otherwise Reason explains which boundary rule failed.
type SlotConflictError struct {
	ProviderID    string
	Start         time.Time
	End           time.Time
	Reason        SlotRejection
	ConflictingID string
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *SlotConflictError) Error() string {
	if e.ConflictingID != "" {
		return fmt.Sprintf("slot conflict for provider %s: [%s, %s) overlaps booking %s [%s, %s)",
			e.ProviderID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339),
			e.ConflictingID, e.ConflictStart.Format(time.RFC3339), e.ConflictEnd.Format(time.RFC3339))
	}
	return fmt.Sprintf("slot unavailable for provider %s: [%s, %s) %s",
		e.ProviderID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Reason)
}

func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}

func newSlotConflict(providerID string, start, end time.Time, v SlotVerdict) *SlotConflictError {
	conflict := &SlotConflictError{
		ProviderID: providerID,
		Start:      start,
		End:        end,
		Reason:     v.Reason,
	}
	if v.Conflict != nil {
		conflict.ConflictingID = v.Conflict.ID
		conflict.ConflictStart = v.Conflict.StartTime
		conflict.ConflictEnd = v.Conflict.End()
	}
	return conflict
}

// TransitionError is returned when an operation is not legal from the booking's
// current state. Callers treat it as a benign no-op signal.
type TransitionError struct {
	BookingID string
	From      models.BookingState
	To        models.BookingState
	// Concurrent is set when another writer changed the state first.
	Concurrent bool
}

func (e *TransitionError) Error() string {
	if e.Concurrent {
		return fmt.Sprintf("booking %s: state changed concurrently, cannot move %s -> %s", e.BookingID, e.From, e.To)
	}
	return fmt.Sprintf("booking %s: cannot move %s -> %s", e.BookingID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// storeError maps repository failures onto the core taxonomy.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	case errors.Is(err, bookingRepo.ErrUnavailable):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
