package models

import "time"

// BookingState is the lifecycle state of a booking.
type BookingState string

const (
	StatePending   BookingState = "pending"
	StateConfirmed BookingState = "confirmed"
	StateCompleted BookingState = "completed"
	StateCancelled BookingState = "cancelled"
	StateNoShow    BookingState = "no_show"
)

// ActiveStates block new slots for the same provider.
var ActiveStates = []BookingState{StatePending, StateConfirmed}

// ServiceLocation affects price only, never scheduling.
type ServiceLocation string

const (
	LocationOnSite  ServiceLocation = "on_site"
	LocationOffSite ServiceLocation = "off_site"
)

// PaymentState is informational and never gates scheduling.
type PaymentState string

const (
	PaymentPending  PaymentState = "pending"
	PaymentPaid     PaymentState = "paid"
	PaymentRefunded PaymentState = "refunded"
)

// Booking is a single appointment between a provider and a client.
type Booking struct {
	ID                 string            `bson:"id" json:"id"`
	ProviderID         string            `bson:"providerId" json:"providerId"`
	ClientID           string            `bson:"clientId" json:"clientId"`
	StartTime          time.Time         `bson:"startTime" json:"startTime"`
	DurationMinutes    int               `bson:"durationMinutes" json:"durationMinutes"`
	EndTime            time.Time         `bson:"endTime" json:"endTime"`
	ServiceLocation    ServiceLocation   `bson:"serviceLocation" json:"serviceLocation"`
	State              BookingState      `bson:"state" json:"state"`
	PaymentAmount      float64           `bson:"paymentAmount" json:"paymentAmount"`
	Currency           string            `bson:"currency" json:"currency"`
	PaymentState       PaymentState      `bson:"paymentState" json:"paymentState"`
	PaymentDueAt       *time.Time        `bson:"paymentDueAt,omitempty" json:"paymentDueAt,omitempty"`
	// Reason, actor and time of a cancellation or no-show.
	CancellationReason string            `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        string            `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	ReminderFired      bool              `bson:"reminderFired" json:"reminderFired"`
	ReminderFiredAt    *time.Time        `bson:"reminderFiredAt,omitempty" json:"reminderFiredAt,omitempty"`
	Metadata           map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	CreatedBy          string            `bson:"createdBy" json:"createdBy"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// End returns the exclusive end of the booking window.
func (b *Booking) End() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsActive reports whether the booking still blocks its provider's calendar.
func (b *Booking) IsActive() bool {
	return b.State == StatePending || b.State == StateConfirmed
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	switch b.State {
	case StateCompleted, StateCancelled, StateNoShow:
		return true
	}
	return false
}

// Overlaps reports whether [start, end) shares any instant with the booking.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.End()) && end.After(b.StartTime)
}
