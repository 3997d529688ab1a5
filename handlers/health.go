package handlers

import (
	"net/http"

	"bookwell/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency check from the health monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	if !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": status})
}
