package routes

import (
	"bookwell/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/bookings")
	{
		booking.POST("", hb.CreateBookingHandler)
		booking.GET("/:id", hb.GetBookingHandler)
		booking.POST("/:id/confirm", hb.ConfirmBookingHandler)
		booking.POST("/:id/complete", hb.CompleteBookingHandler)
		booking.POST("/:id/cancel", hb.CancelBookingHandler)
		booking.POST("/:id/no-show", hb.MarkNoShowHandler)
	}
}

// RegisterAvailabilityRoutes registers the calendar read endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	providers := r.Group("/api/providers/:id/availability")
	{
		providers.GET("", hb.DayAvailabilityHandler)
		providers.GET("/count", hb.CountAvailabilityHandler)
		providers.GET("/month", hb.MonthAvailabilityHandler)
	}
}

// RegisterClientRoutes registers client-facing read endpoints.
func RegisterClientRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	clients := r.Group("/api/clients")
	{
		clients.GET("/:id/history", hb.ClientHistoryHandler)
	}
}
