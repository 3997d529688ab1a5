package handlers

import (
	"net/http"

	recordsRepo "bookwell/database/repository/records"
	"bookwell/models"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler serves a client's finished bookings.
type HistoryHandler struct {
	Repo recordsRepo.HistoryRepository
}

func NewHistoryHandler(repo recordsRepo.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

// ListClientHistoryHandler returns the client's records, newest first.
func (h *HistoryHandler) ListClientHistoryHandler(c *gin.Context) {
	clientID := c.Param("id")
	records, err := h.Repo.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		getLogger(c).Error("Failed to list client history", zap.String("clientId", clientID), zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "Failed to load history", err.Error())
		return
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"clientId": clientID, "records": records})
}
