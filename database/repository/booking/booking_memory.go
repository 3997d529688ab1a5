package bookingRepo

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"bookwell/models"
)

// MemoryBookingRepo is an in-process BookingRepository for development and tests.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (repo *MemoryBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.bookings[booking.ID]; exists {
		return ErrDuplicate
	}
	repo.bookings[booking.ID] = clone(*booking)
	return nil
}

func (repo *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	b, ok := repo.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(b)
	return &out, nil
}

func (repo *MemoryBookingRepo) UpdateIfState(ctx context.Context, booking *models.Booking, expected models.BookingState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()

	current, ok := repo.bookings[booking.ID]
	if !ok {
		return ErrNotFound
	}
	if current.State != expected {
		return ErrStateChanged
	}
	applyLifecycleFields(&current, booking)
	repo.bookings[booking.ID] = current
	return nil
}

// applyLifecycleFields copies what a transition may change. The reminder
// flag stays as stored.
func applyLifecycleFields(dst *models.Booking, src *models.Booking) {
	dst.State = src.State
	dst.UpdatedAt = src.UpdatedAt
	dst.PaymentState = src.PaymentState
	dst.PaymentDueAt = copyTime(src.PaymentDueAt)
	dst.CancellationReason = src.CancellationReason
	dst.CancelledBy = src.CancelledBy
	dst.CancelledAt = copyTime(src.CancelledAt)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (repo *MemoryBookingRepo) ListActiveByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	return repo.filter(ctx, func(b *models.Booking) bool {
		return b.ProviderID == providerID && b.IsActive() && b.Overlaps(from, to)
	})
}

func (repo *MemoryBookingRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return repo.filter(ctx, func(b *models.Booking) bool {
		return b.IsActive() && !b.ReminderFired &&
			!b.StartTime.Before(from) && b.StartTime.Before(to)
	})
}

func (repo *MemoryBookingRepo) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.ReminderFired {
		return ErrAlreadyFired
	}
	b.ReminderFired = true
	b.ReminderFiredAt = &at
	b.UpdatedAt = at
	repo.bookings[id] = b
	return nil
}

func (repo *MemoryBookingRepo) CountByClientAndState(ctx context.Context, clientID string, state models.BookingState) (int, error) {
	matches, err := repo.filter(ctx, func(b *models.Booking) bool {
		return b.ClientID == clientID && b.State == state
	})
	return len(matches), err
}

func (repo *MemoryBookingRepo) filter(ctx context.Context, keep func(*models.Booking) bool) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var out []models.Booking
	for _, b := range repo.bookings {
		if keep(&b) {
			out = append(out, clone(b))
		}
	}
	slices.SortFunc(out, func(a, b models.Booking) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func clone(b models.Booking) models.Booking {
	b.Metadata = maps.Clone(b.Metadata)
	return b
}
