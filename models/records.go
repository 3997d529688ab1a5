// File: models/records.go
package models

import "time"

// HistoryOutcome names how a booking ended for the client's record.
type HistoryOutcome string

const (
	OutcomeCompleted HistoryOutcome = "completed"
	OutcomeCancelled HistoryOutcome = "cancelled"
	OutcomeNoShow    HistoryOutcome = "no_show"
)

// HistoryRecord is the normalized entry appended to a client's history
// whenever a booking completes, is cancelled or ends as a no-show.
type HistoryRecord struct {
	ID         string         `bson:"id" json:"id"`                             // Unique ID for the record
	BookingID  string         `bson:"bookingId" json:"bookingId"`               // Booking the record describes
	ProviderID string         `bson:"providerId" json:"providerId"`             // Provider of the booking
	ClientID   string         `bson:"clientId" json:"clientId"`                 // Owner of the history
	Outcome    HistoryOutcome `bson:"outcome" json:"outcome"`                   // completed, cancelled or no_show
	Reason     string         `bson:"reason,omitempty" json:"reason,omitempty"` // Cancellation / no-show reason
	Amount     float64        `bson:"amount" json:"amount"`                     // Zero unless completed
	Paid       float64        `bson:"paid" json:"paid"`                         // Zero unless already paid and completed
	Currency   string         `bson:"currency" json:"currency"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}
