// File: bookwell/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	ConfirmBookingHandler  gin.HandlerFunc
	CompleteBookingHandler gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	MarkNoShowHandler      gin.HandlerFunc

	// Availability endpoints
	DayAvailabilityHandler   gin.HandlerFunc
	CountAvailabilityHandler gin.HandlerFunc
	MonthAvailabilityHandler gin.HandlerFunc

	// Client history
	ClientHistoryHandler gin.HandlerFunc

	// Admin endpoints; nil when no admin token is configured.
	AdminHandler *AdminHandler

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires handler methods into the bundle.
func NewHandlerBundle(bh *BookingHandler, ah *AvailabilityHandler, hh *HistoryHandler, admin *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBookingHandler:     bh.CreateBookingHandler,
		GetBookingHandler:        bh.GetBookingHandler,
		ConfirmBookingHandler:    bh.ConfirmBookingHandler,
		CompleteBookingHandler:   bh.CompleteBookingHandler,
		CancelBookingHandler:     bh.CancelBookingHandler,
		MarkNoShowHandler:        bh.MarkNoShowHandler,
		DayAvailabilityHandler:   ah.GetDayAvailabilityHandler,
		CountAvailabilityHandler: ah.CountDayAvailabilityHandler,
		MonthAvailabilityHandler: ah.GetMonthAvailabilityHandler,
		ClientHistoryHandler:     hh.ListClientHistoryHandler,
		AdminHandler:             admin,
		HealthHandler:            HealthHandler,
	}
}
