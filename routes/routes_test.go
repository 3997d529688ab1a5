package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookwell/handlers"
	"bookwell/services/reminder"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type noopRunner struct{}

func (noopRunner) RunOnce(context.Context) (reminder.ScanResult, error) {
	return reminder.ScanResult{}, nil
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func bundle(admin *handlers.AdminHandler) *handlers.HandlerBundle {
	return &handlers.HandlerBundle{
		CreateBookingHandler:     ok,
		GetBookingHandler:        ok,
		ConfirmBookingHandler:    ok,
		CompleteBookingHandler:   ok,
		CancelBookingHandler:     ok,
		MarkNoShowHandler:        ok,
		DayAvailabilityHandler:   ok,
		CountAvailabilityHandler: ok,
		MonthAvailabilityHandler: ok,
		ClientHistoryHandler:     ok,
		AdminHandler:             admin,
		HealthHandler:            ok,
	}
}

func serve(r *gin.Engine, method, path, auth string) int {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, bundle(handlers.NewAdminHandler(noopRunner{})), "tok")

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings/b1"},
		{http.MethodPost, "/api/bookings/b1/confirm"},
		{http.MethodPost, "/api/bookings/b1/complete"},
		{http.MethodPost, "/api/bookings/b1/cancel"},
		{http.MethodPost, "/api/bookings/b1/no-show"},
		{http.MethodGet, "/api/providers/P/availability"},
		{http.MethodGet, "/api/providers/P/availability/count"},
		{http.MethodGet, "/api/providers/P/availability/month"},
		{http.MethodGet, "/api/clients/C1/history"},
	} {
		assert.Equal(t, http.StatusOK, serve(r, route.method, route.path, ""), route.path)
	}

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/admin/reminders/scan", ""))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/admin/reminders/scan", "Bearer tok"))
}

func TestRegisterAdminRoutes_DisabledWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, bundle(handlers.NewAdminHandler(noopRunner{})), "")

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/api/admin/reminders/scan", "Bearer "))
}
