package handlers

import (
	"errors"
	"net/http"
	"time"

	"bookwell/services/booking"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// conflictBody is the 409 payload for a rejected slot.
type conflictBody struct {
	Code          string     `json:"code"`
	Message       string     `json:"message"`
	ProviderID    string     `json:"providerId"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	Reason        string     `json:"reason,omitempty"`
	ConflictingID string     `json:"conflictingId,omitempty"`
	ConflictStart *time.Time `json:"conflictStart,omitempty"`
	ConflictEnd   *time.Time `json:"conflictEnd,omitempty"`
}

// respondError maps booking errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		conflict   *booking.SlotConflictError
		transition *booking.TransitionError
	)
	switch {
	case errors.As(err, &validation):
		utils.JSONCodedError(c, http.StatusBadRequest, "validation_error", "Invalid request", validation.Error())
	case errors.As(err, &conflict):
		body := conflictBody{
			Code:          "slot_conflict",
			Message:       conflict.Error(),
			ProviderID:    conflict.ProviderID,
			Start:         conflict.Start,
			End:           conflict.End,
			Reason:        string(conflict.Reason),
			ConflictingID: conflict.ConflictingID,
		}
		if conflict.ConflictingID != "" {
			body.ConflictStart = &conflict.ConflictStart
			body.ConflictEnd = &conflict.ConflictEnd
		}
		getLogger(c).Info("slot conflict", zap.String("providerId", conflict.ProviderID), zap.String("conflictingId", conflict.ConflictingID))
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &transition):
		utils.JSONCodedError(c, http.StatusConflict, "invalid_transition", "Booking cannot change state", transition.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		utils.JSONCodedError(c, http.StatusNotFound, "not_found", "Booking not found", err.Error())
	case errors.Is(err, booking.ErrStoreUnavailable):
		getLogger(c).Error("booking store unavailable", zap.Error(err))
		utils.JSONCodedError(c, http.StatusServiceUnavailable, "store_unavailable", "Service temporarily unavailable", "retry the request")
	default:
		getLogger(c).Error("unhandled booking error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
