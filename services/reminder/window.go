package reminder

import (
	"time"

	"bookwell/models"
)

// Window is the lead time before start, [Lower, Upper), in which a booking's
// single reminder may fire. It is wider than the scan interval so every
// booking is seen by at least one scan while inside it.
type Window struct {
	Lower time.Duration
	Upper time.Duration
}

func DefaultWindow() Window {
	return Window{Lower: 20 * time.Hour, Upper: 28 * time.Hour}
}

// Contains reports whether a booking starting at start is inside the window at now.
func (w Window) Contains(start, now time.Time) bool {
	until := start.Sub(now)
	return until >= w.Lower && until < w.Upper
}

// Missed reports whether the booking has already passed below the window.
func (w Window) Missed(start, now time.Time) bool {
	return start.Sub(now) < w.Lower
}

// Due selects the bookings whose reminder should fire at now. Bookings below
// the lower bound are missed and never selected.
func Due(bookings []models.Booking, now time.Time, w Window) []models.Booking {
	var due []models.Booking
	for _, b := range bookings {
		if !b.IsActive() || b.ReminderFired {
			continue
		}
		if w.Contains(b.StartTime, now) {
			due = append(due, b)
		}
	}
	return due
}
