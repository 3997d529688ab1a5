package handlers

import (
	"net/http"
	"time"

	"bookwell/models"
	"bookwell/services/booking"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingManager
}

func NewBookingHandler(svc booking.BookingManager) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type createBookingInput struct {
	ProviderID      string            `json:"providerId" binding:"required"`
	ClientID        string            `json:"clientId" binding:"required"`
	StartTime       time.Time         `json:"startTime" binding:"required"`
	DurationMinutes int               `json:"durationMinutes" binding:"required"`
	ServiceLocation string            `json:"serviceLocation"`
	Metadata        map[string]string `json:"metadata"`
	CreatedBy       string            `json:"createdBy"`
}

// cancelBookingInput is shared by cancel and no-show.
type cancelBookingInput struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// CreateBookingHandler places a new pending booking.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid request payload", err.Error())
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), booking.CreateBookingRequest{
		ProviderID:      input.ProviderID,
		ClientID:        input.ClientID,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		ServiceLocation: models.ServiceLocation(input.ServiceLocation),
		Metadata:        input.Metadata,
		CreatedBy:       input.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	getLogger(c).Info("booking created via api", zap.String("bookingId", b.ID))
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	b, err := h.Service.ConfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	b, err := h.Service.CompleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler requires a non-blank reason in the body.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var input cancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid request payload", err.Error())
		return
	}

	b, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"), input.Reason, input.Actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// MarkNoShowHandler requires a non-blank reason in the body, like cancel.
func (h *BookingHandler) MarkNoShowHandler(c *gin.Context) {
	var input cancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid request payload", err.Error())
		return
	}

	b, err := h.Service.MarkNoShow(c.Request.Context(), c.Param("id"), input.Reason, input.Actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
