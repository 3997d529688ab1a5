package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "bookwell/database/repository/booking"
	"bookwell/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.Event
	fail   error
}

func (d *recordingDispatcher) Deliver(_ context.Context, event models.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) sent() []models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Event(nil), d.events...)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Deliver(ctx context.Context, event models.Event) error {
	return m.Called(ctx, event).Error(0)
}

var base = time.Date(2025, 1, 9, 14, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *bookingRepo.MemoryBookingRepo, id string, start time.Time, state models.BookingState) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Booking{
		ID:              id,
		ProviderID:      "P",
		ClientID:        "client-" + id,
		StartTime:       start,
		DurationMinutes: 60,
		EndTime:         start.Add(time.Hour),
		State:           state,
	}))
}

func newScanner(repo bookingRepo.BookingRepository, d *recordingDispatcher, now *time.Time) *Scanner {
	return &Scanner{
		Repo:       repo,
		Dispatcher: d,
		Window:     DefaultWindow(),
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return *now },
	}
}

func TestWindow(t *testing.T) {
	w := DefaultWindow()
	now := base

	assert.True(t, w.Contains(now.Add(24*time.Hour), now))
	assert.True(t, w.Contains(now.Add(20*time.Hour), now), "lower bound is inclusive")
	assert.False(t, w.Contains(now.Add(28*time.Hour), now), "upper bound is exclusive")
	assert.False(t, w.Contains(now.Add(19*time.Hour+59*time.Minute), now))
	assert.True(t, w.Missed(now.Add(19*time.Hour), now))
	assert.False(t, w.Missed(now.Add(21*time.Hour), now))
}

func TestDue(t *testing.T) {
	now := base
	bookings := []models.Booking{
		{ID: "in", StartTime: now.Add(24 * time.Hour), State: models.StateConfirmed},
		{ID: "pending", StartTime: now.Add(21 * time.Hour), State: models.StatePending},
		{ID: "fired", StartTime: now.Add(24 * time.Hour), State: models.StateConfirmed, ReminderFired: true},
		{ID: "cancelled", StartTime: now.Add(24 * time.Hour), State: models.StateCancelled},
		{ID: "too-far", StartTime: now.Add(30 * time.Hour), State: models.StateConfirmed},
		{ID: "missed", StartTime: now.Add(2 * time.Hour), State: models.StateConfirmed},
	}

	var ids []string
	for _, b := range Due(bookings, now, DefaultWindow()) {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"in", "pending"}, ids)
}

func TestScanAndFire_FiresOnce(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	d := &recordingDispatcher{}
	now := base
	s := newScanner(repo, d, &now)
	ctx := context.Background()

	res, err := s.ScanAndFire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)

	sent := d.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EventReminder, sent[0].Kind)
	assert.Equal(t, "P", sent[0].TargetID)
	assert.Equal(t, models.RoleProvider, sent[0].TargetRole)
	assert.Equal(t, "client-b1", sent[0].Payload["clientId"])
	assert.Equal(t, "b1", sent[0].BookingID)

	stored, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, stored.ReminderFired)
	require.NotNil(t, stored.ReminderFiredAt)
	assert.Equal(t, now, *stored.ReminderFiredAt)

	// Same now, then an hour later while still inside the window.
	for _, advance := range []time.Duration{0, time.Hour} {
		now = base.Add(advance)
		res, err = s.ScanAndFire(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Fired)
	}
	assert.Len(t, d.sent(), 1)
}

func TestScanAndFire_HourlyScansFireEachBookingExactlyOnce(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	for i := 0; i < 48; i++ {
		seed(t, repo, fmt.Sprintf("b%02d", i), base.Add(time.Duration(i)*37*time.Minute), models.StatePending)
	}
	d := &recordingDispatcher{}
	now := base.Add(-36 * time.Hour)
	s := newScanner(repo, d, &now)

	for ; !now.After(base.Add(48 * time.Hour)); now = now.Add(time.Hour) {
		_, err := s.ScanAndFire(context.Background())
		require.NoError(t, err)
	}

	counts := make(map[string]int)
	for _, e := range d.sent() {
		counts[e.BookingID]++
	}
	assert.Len(t, counts, 48)
	for id, n := range counts {
		assert.Equal(t, 1, n, id)
	}
}

func TestScanAndFire_MissedWindowIsSuppressed(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	d := &recordingDispatcher{}
	// Scheduler was down until the booking fell below the window.
	now := base.Add(5 * time.Hour)
	s := newScanner(repo, d, &now)

	res, err := s.ScanAndFire(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.Fired)
	assert.Empty(t, d.sent())
	stored, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.False(t, stored.ReminderFired)
}

func TestScanAndFire_SkipsInactiveBookings(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "cancelled", base.Add(24*time.Hour), models.StateCancelled)
	seed(t, repo, "completed", base.Add(24*time.Hour), models.StateCompleted)
	seed(t, repo, "noshow", base.Add(24*time.Hour), models.StateNoShow)
	d := &recordingDispatcher{}
	now := base
	s := newScanner(repo, d, &now)

	res, err := s.ScanAndFire(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Candidates)
	assert.Empty(t, d.sent())
}

func TestScanAndFire_DispatchFailureIsRetried(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	d := &recordingDispatcher{fail: errors.New("fcm unavailable")}
	now := base
	s := newScanner(repo, d, &now)
	ctx := context.Background()

	res, err := s.ScanAndFire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrDispatchFailure)

	stored, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, stored.ReminderFired, "failed dispatch must not consume the reminder")

	d.mu.Lock()
	d.fail = nil
	d.mu.Unlock()
	now = base.Add(time.Hour)

	res, err = s.ScanAndFire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	assert.Len(t, d.sent(), 1)
}

func TestScanAndFire_UsesDispatchTimeout(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	d := &mockDispatcher{}
	d.On("Deliver", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 50*time.Millisecond
	}), mock.Anything).Return(context.DeadlineExceeded).Once()

	now := base
	s := &Scanner{
		Repo:            repo,
		Dispatcher:      d,
		DispatchTimeout: 50 * time.Millisecond,
		Logger:          zap.NewNop(),
		Now:             func() time.Time { return now },
	}

	res, err := s.ScanAndFire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	d.AssertExpectations(t)
}

type failingRepo struct {
	*bookingRepo.MemoryBookingRepo
}

func (failingRepo) ListReminderCandidates(context.Context, time.Time, time.Time) ([]models.Booking, error) {
	return nil, bookingRepo.ErrUnavailable
}

func TestScanAndFire_StoreFailureIsReported(t *testing.T) {
	now := base
	s := newScanner(failingRepo{bookingRepo.NewMemoryBookingRepo()}, &recordingDispatcher{}, &now)

	_, err := s.ScanAndFire(context.Background())
	assert.ErrorIs(t, err, bookingRepo.ErrUnavailable)
}

// racingRepo reports the reminder as already fired by another instance.
type racingRepo struct {
	*bookingRepo.MemoryBookingRepo
}

func (racingRepo) MarkReminderFired(context.Context, string, time.Time) error {
	return bookingRepo.ErrAlreadyFired
}

func TestScanAndFire_AlreadyFiredCountsAsSkipped(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	now := base
	s := newScanner(racingRepo{repo}, &recordingDispatcher{}, &now)

	res, err := s.ScanAndFire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Failed)
}

// cancelAfterListRepo cancels the booking once the candidate list was read.
type cancelAfterListRepo struct {
	*bookingRepo.MemoryBookingRepo
}

func (r cancelAfterListRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	out, err := r.MemoryBookingRepo.ListReminderCandidates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, b := range out {
		stale, err := r.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		stale.State = models.StateCancelled
		if err := r.UpdateIfState(ctx, stale, b.State); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func TestScanAndFire_SkipsBookingCancelledDuringScan(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	seed(t, repo, "b1", base.Add(24*time.Hour), models.StateConfirmed)
	d := &recordingDispatcher{}
	now := base
	s := newScanner(cancelAfterListRepo{repo}, d, &now)

	res, err := s.ScanAndFire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Fired)
	assert.Empty(t, d.sent(), "cancelled booking must not be reminded")

	stored, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StateCancelled, stored.State)
	assert.False(t, stored.ReminderFired)
}
