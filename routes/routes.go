package routes

import (
	"time"

	"bookwell/handlers"
	"bookwell/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes sets up endpoints for operator actions.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, adminToken string) {
	if hb.AdminHandler == nil || adminToken == "" {
		return
	}
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminTokenMiddleware(adminToken))
		adminGroup.POST("/reminders/scan", hb.AdminHandler.TriggerReminderScanHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, adminToken string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterClientRoutes(r, hb)
	RegisterAdminRoutes(r, hb, adminToken)
}
