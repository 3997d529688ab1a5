package booking

import (
	"fmt"
	"iter"
	"time"

	"bookwell/models"
)

// OperatingHours is a provider's daily window in minutes past local midnight.
// Slots may end exactly at CloseMinute.
type OperatingHours struct {
	OpenMinute  int `json:"openMinute"`
	CloseMinute int `json:"closeMinute"`
}

func (h OperatingHours) Validate() error {
	if h.OpenMinute < 0 || h.CloseMinute > 24*60 || h.OpenMinute >= h.CloseMinute {
		return NewValidationError("operatingHours", fmt.Sprintf("invalid window %d-%d", h.OpenMinute, h.CloseMinute))
	}
	return nil
}

// Bounds returns the opening and closing instants on the calendar day of day in loc.
func (h OperatingHours) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	d := day.In(loc)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(h.OpenMinute) * time.Minute),
		midnight.Add(time.Duration(h.CloseMinute) * time.Minute)
}

// SlotRejection names the rule a candidate window failed.
type SlotRejection string

const (
	SlotAccepted        SlotRejection = ""
	SlotInvalidDuration SlotRejection = "has a non-positive duration"
	SlotInPast          SlotRejection = "starts in the past"
	SlotOutsideHours    SlotRejection = "is outside operating hours"
	SlotOverlap         SlotRejection = "overlaps an active booking"
)

// SlotVerdict is the outcome of checking one candidate window.
type SlotVerdict struct {
	Reason SlotRejection
	// Conflict is the earliest active booking overlapping the window, if any.
	Conflict *models.Booking
}

func (v SlotVerdict) Free() bool { return v.Reason == SlotAccepted }

// SlotQuery describes a candidate window [Start, Start+Duration) for a provider.
// Now is supplied by the caller so the check stays deterministic.
type SlotQuery struct {
	ProviderID string
	Start      time.Time
	Duration   time.Duration
	Now        time.Time
	Hours      OperatingHours
	// Location defines calendar days; nil means Start's own location.
	Location *time.Location
}

func (q SlotQuery) End() time.Time { return q.Start.Add(q.Duration) }

func (q SlotQuery) location() *time.Location {
	if q.Location != nil {
		return q.Location
	}
	return q.Start.Location()
}

// CheckSlot evaluates a window against the clock, the provider's operating hours
// and the provider's existing bookings. Only active bookings of the same
// provider can block; cancelled, completed and no-show rows never do.
func CheckSlot(q SlotQuery, existing []models.Booking) SlotVerdict {
	if q.Duration <= 0 {
		return SlotVerdict{Reason: SlotInvalidDuration}
	}
	if q.Start.Before(q.Now) {
		return SlotVerdict{Reason: SlotInPast}
	}
	open, closing := q.Hours.Bounds(q.Start, q.location())
	end := q.End()
	if q.Start.Before(open) || end.After(closing) {
		return SlotVerdict{Reason: SlotOutsideHours}
	}

	if conflict := FirstConflict(q, existing); conflict != nil {
		return SlotVerdict{Reason: SlotOverlap, Conflict: conflict}
	}
	return SlotVerdict{}
}

// IsSlotFree reports whether the window can be booked.
func IsSlotFree(q SlotQuery, existing []models.Booking) bool {
	return CheckSlot(q, existing).Free()
}

// FirstConflict returns the earliest active booking of the same provider
// overlapping the window, or nil. It ignores the clock and operating hours.
func FirstConflict(q SlotQuery, existing []models.Booking) *models.Booking {
	end := q.End()
	var conflict *models.Booking
	for i := range existing {
		b := &existing[i]
		if b.ProviderID != q.ProviderID || !b.IsActive() || !b.Overlaps(q.Start, end) {
			continue
		}
		if conflict == nil || b.StartTime.Before(conflict.StartTime) {
			conflict = b
		}
	}
	return conflict
}

// DayQuery asks for all free starts of a fixed duration on one calendar day.
type DayQuery struct {
	ProviderID string
	Day        time.Time
	Duration   time.Duration
	Now        time.Time
	Hours      OperatingHours
	Location   *time.Location
}

func (q DayQuery) location() *time.Location {
	if q.Location != nil {
		return q.Location
	}
	return q.Day.Location()
}

// EnumerateFreeSlots yields, in ascending order, every start on the grid
// open, open+granularity, ... whose window is free. The sequence is lazy and
// may be ranged over more than once.
func EnumerateFreeSlots(q DayQuery, existing []models.Booking, granularity time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if granularity <= 0 || q.Duration <= 0 {
			return
		}
		loc := q.location()
		open, closing := q.Hours.Bounds(q.Day, loc)
		for start := open; !start.Add(q.Duration).After(closing); start = start.Add(granularity) {
			slot := SlotQuery{
				ProviderID: q.ProviderID,
				Start:      start,
				Duration:   q.Duration,
				Now:        q.Now,
				Hours:      q.Hours,
				Location:   loc,
			}
			if !IsSlotFree(slot, existing) {
				continue
			}
			if !yield(start) {
				return
			}
		}
	}
}

// CountFreeSlots is the length of EnumerateFreeSlots for the same inputs.
func CountFreeSlots(q DayQuery, existing []models.Booking, granularity time.Duration) int {
	n := 0
	for range EnumerateFreeSlots(q, existing, granularity) {
		n++
	}
	return n
}
