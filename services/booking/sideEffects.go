package booking

import (
	"context"
	"time"

	"bookwell/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Side effects run after a transition commits. Their failures are logged and
// never undo the transition.

func (m *DefaultBookingManager) notify(ctx context.Context, b *models.Booking, kind models.EventKind, role, title, body string) {
	if m.Dispatcher == nil {
		return
	}
	target := b.ClientID
	if role == models.RoleProvider {
		target = b.ProviderID
	}
	event := models.Event{
		ID:         uuid.NewString(),
		TargetID:   target,
		TargetRole: role,
		Kind:       kind,
		BookingID:  b.ID,
		Title:      title,
		Body:       body,
		Payload: map[string]string{
			"providerId": b.ProviderID,
			"startTime":  b.StartTime.Format(time.RFC3339),
			"state":      string(b.State),
		},
		CreatedAt: m.now(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.dispatchTimeout())
	defer cancel()
	if err := m.Dispatcher.Deliver(ctx, event); err != nil {
		m.logger().Warn("notification failed",
			zap.String("bookingId", b.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// record appends a client history entry. Only completed bookings carry money.
func (m *DefaultBookingManager) record(ctx context.Context, b *models.Booking, outcome models.HistoryOutcome, reason string, amount, paid float64) {
	if m.History == nil {
		return
	}
	rec := models.HistoryRecord{
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		ClientID:   b.ClientID,
		Outcome:    outcome,
		Reason:     reason,
		Amount:     amount,
		Paid:       paid,
		Currency:   b.Currency,
		CreatedAt:  m.now(),
	}
	if _, err := m.History.Append(context.WithoutCancel(ctx), rec); err != nil {
		m.logger().Warn("history append failed",
			zap.String("bookingId", b.ID),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
	}
}

func (m *DefaultBookingManager) applyNoShowPolicy(ctx context.Context, b *models.Booking) {
	if m.Penalty == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	total, err := m.Repo.CountByClientAndState(ctx, b.ClientID, models.StateNoShow)
	if err != nil {
		m.logger().Warn("count no-shows failed", zap.String("clientId", b.ClientID), zap.Error(err))
		return
	}
	rec := NoShowRecord{
		BookingID:    b.ID,
		ClientID:     b.ClientID,
		ProviderID:   b.ProviderID,
		PriorNoShows: max(total-1, 0),
		OccurredAt:   b.UpdatedAt,
	}
	if err := m.Penalty.Evaluate(ctx, rec); err != nil {
		m.logger().Warn("no-show policy failed", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (m *DefaultBookingManager) dispatchTimeout() time.Duration {
	if m.DispatchTimeout > 0 {
		return m.DispatchTimeout
	}
	return 10 * time.Second
}
