package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthStatus_Healthy(t *testing.T) {
	up, down := true, false

	assert.True(t, HealthStatus{}.Healthy(), "nothing configured")
	assert.True(t, HealthStatus{Mongo: &up, Redis: []bool{true, true}}.Healthy())
	assert.False(t, HealthStatus{Mongo: &down}.Healthy())
	assert.False(t, HealthStatus{Mongo: &up, Redis: []bool{true, false}}.Healthy())
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}
