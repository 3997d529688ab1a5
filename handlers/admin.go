package handlers

import (
	"context"
	"errors"
	"net/http"

	"bookwell/services/reminder"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderRunner triggers one reminder pass on demand.
type ReminderRunner interface {
	RunOnce(ctx context.Context) (reminder.ScanResult, error)
}

// AdminHandler encapsulates operator-only operations.
type AdminHandler struct {
	Reminders ReminderRunner
}

func NewAdminHandler(r ReminderRunner) *AdminHandler {
	return &AdminHandler{Reminders: r}
}

// TriggerReminderScanHandler runs a scan now, unless one is already running.
func (ah *AdminHandler) TriggerReminderScanHandler(c *gin.Context) {
	result, err := ah.Reminders.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrScanInProgress) {
			utils.JSONCodedError(c, http.StatusConflict, "scan_in_progress", "Reminder scan already running", "")
			return
		}
		zap.L().Error("Manual reminder scan failed", zap.Error(err))
		utils.JSONCodedError(c, http.StatusServiceUnavailable, "scan_failed", "Reminder scan failed", err.Error())
		return
	}

	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, e.Error())
	}
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"errors": errs,
	})
}
