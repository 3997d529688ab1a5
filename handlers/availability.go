package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bookwell/services/booking"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler serves the calendar's read-only slot queries.
type AvailabilityHandler struct {
	Service  booking.AvailabilityReader
	Location *time.Location
}

func NewAvailabilityHandler(svc booking.AvailabilityReader, loc *time.Location) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{Service: svc, Location: loc}
}

// GetDayAvailabilityHandler lists free starts for ?date=YYYY-MM-DD&duration=<minutes>.
func (h *AvailabilityHandler) GetDayAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	day, err := time.ParseInLocation(utils.DateLayout, c.Query("date"), h.Location)
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid date", "date must be YYYY-MM-DD")
		return
	}
	duration, ok := durationParam(c)
	if !ok {
		return
	}

	slots, err := h.Service.FreeSlots(c.Request.Context(), providerID, day, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	if slots == nil {
		slots = []time.Time{}
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId":      providerID,
		"date":            day.Format(utils.DateLayout),
		"durationMinutes": duration,
		"count":           len(slots),
		"slots":           slots,
	})
}

// CountDayAvailabilityHandler returns only the number of free starts.
func (h *AvailabilityHandler) CountDayAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	day, err := time.ParseInLocation(utils.DateLayout, c.Query("date"), h.Location)
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid date", "date must be YYYY-MM-DD")
		return
	}
	duration, ok := durationParam(c)
	if !ok {
		return
	}

	n, err := h.Service.CountFreeSlots(c.Request.Context(), providerID, day, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId":      providerID,
		"date":            day.Format(utils.DateLayout),
		"durationMinutes": duration,
		"count":           n,
	})
}

// GetMonthAvailabilityHandler summarizes ?year=&month=&duration= per day.
func (h *AvailabilityHandler) GetMonthAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid year", err.Error())
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid month", err.Error())
		return
	}
	duration, ok := durationParam(c)
	if !ok {
		return
	}

	days, err := h.Service.MonthAvailability(c.Request.Context(), providerID, year, time.Month(month), duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId":      providerID,
		"year":            year,
		"month":           month,
		"durationMinutes": duration,
		"days":            days,
	})
}

func durationParam(c *gin.Context) (int, bool) {
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil || duration <= 0 {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid duration", "duration must be a positive number of minutes")
		return 0, false
	}
	return duration, true
}
