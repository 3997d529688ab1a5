package booking

import (
	"context"
	"fmt"
	"slices"
	"time"

	bookingRepo "bookwell/database/repository/booking"
	"bookwell/models"
	"bookwell/utils"
)

// DayAvailability summarizes one calendar day of a provider's month.
type DayAvailability struct {
	Date      string     `json:"date"`
	FreeSlots int        `json:"freeSlots"`
	FirstFree *time.Time `json:"firstFree,omitempty"`
}

// DefaultAvailabilityService reads bookings and applies the pure slot rules.
type DefaultAvailabilityService struct {
	Repo        bookingRepo.BookingRepository
	Hours       HoursResolver
	Location    *time.Location
	Granularity time.Duration
	Now         func() time.Time
}

func (s *DefaultAvailabilityService) FreeSlots(ctx context.Context, providerID string, day time.Time, durationMinutes int) ([]time.Time, error) {
	q, existing, err := s.dayInputs(ctx, providerID, day, durationMinutes)
	if err != nil {
		return nil, err
	}
	return slices.Collect(EnumerateFreeSlots(q, existing, s.granularity())), nil
}

func (s *DefaultAvailabilityService) CountFreeSlots(ctx context.Context, providerID string, day time.Time, durationMinutes int) (int, error) {
	q, existing, err := s.dayInputs(ctx, providerID, day, durationMinutes)
	if err != nil {
		return 0, err
	}
	return CountFreeSlots(q, existing, s.granularity()), nil
}

// MonthAvailability loads the month's bookings once and counts each day.
func (s *DefaultAvailabilityService) MonthAvailability(ctx context.Context, providerID string, year int, month time.Month, durationMinutes int) ([]DayAvailability, error) {
	if month < time.January || month > time.December {
		return nil, NewValidationError("month", fmt.Sprintf("must be 1-12, got %d", month))
	}
	if err := validateLookup(providerID, durationMinutes); err != nil {
		return nil, err
	}
	hours, err := s.Hours.HoursFor(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("resolve hours for %s: %w", providerID, err)
	}

	loc := s.location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)
	existing, err := s.Repo.ListActiveByProvider(ctx, providerID, first, next)
	if err != nil {
		return nil, storeError("list provider bookings", err)
	}

	now := s.now()
	var days []DayAvailability
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		q := DayQuery{
			ProviderID: providerID,
			Day:        day,
			Duration:   time.Duration(durationMinutes) * time.Minute,
			Now:        now,
			Hours:      hours,
			Location:   loc,
		}
		summary := DayAvailability{Date: day.Format(utils.DateLayout)}
		for start := range EnumerateFreeSlots(q, existing, s.granularity()) {
			if summary.FirstFree == nil {
				firstFree := start
				summary.FirstFree = &firstFree
			}
			summary.FreeSlots++
		}
		days = append(days, summary)
	}
	return days, nil
}

func (s *DefaultAvailabilityService) dayInputs(ctx context.Context, providerID string, day time.Time, durationMinutes int) (DayQuery, []models.Booking, error) {
	if err := validateLookup(providerID, durationMinutes); err != nil {
		return DayQuery{}, nil, err
	}
	hours, err := s.Hours.HoursFor(ctx, providerID)
	if err != nil {
		return DayQuery{}, nil, fmt.Errorf("resolve hours for %s: %w", providerID, err)
	}

	loc := s.location()
	q := DayQuery{
		ProviderID: providerID,
		Day:        day,
		Duration:   time.Duration(durationMinutes) * time.Minute,
		Now:        s.now(),
		Hours:      hours,
		Location:   loc,
	}
	open, closing := hours.Bounds(day, loc)
	existing, err := s.Repo.ListActiveByProvider(ctx, providerID, open, closing)
	if err != nil {
		return DayQuery{}, nil, storeError("list provider bookings", err)
	}
	return q, existing, nil
}

func (s *DefaultAvailabilityService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *DefaultAvailabilityService) granularity() time.Duration {
	if s.Granularity > 0 {
		return s.Granularity
	}
	return time.Hour
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validateLookup(providerID string, durationMinutes int) error {
	if providerID == "" {
		return NewValidationError("providerId", "is required")
	}
	if durationMinutes <= 0 {
		return NewValidationError("duration", "must be a positive number of minutes")
	}
	return nil
}
