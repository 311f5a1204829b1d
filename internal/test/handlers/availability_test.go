package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"live-ai-photo-backend/internal/handlers"
	"live-ai-photo-backend/internal/middleware"
)

func availabilityTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAvailabilityHandler(nil, zap.NewNop())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "3b8f6f4e-7b0a-4d46-9a88-0c5a8e4d1f22")
		c.Set(middleware.RoleKey, "DESIGNER")
	})
	router.GET("/availability", handler.GetAvailability)
	router.PUT("/availability", handler.ReplaceAvailability)
	return router
}

func TestGetAvailability_InvalidDate(t *testing.T) {
	router := availabilityTestRouter()

	req, _ := http.NewRequest("GET", "/availability?date=30-08-2026", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestReplaceAvailability_InvalidDate(t *testing.T) {
	router := availabilityTestRouter()

	body := []byte(`{"date":"next tuesday","windows":[]}`)
	req, _ := http.NewRequest("PUT", "/availability", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceAvailability_InvalidWindowTime(t *testing.T) {
	router := availabilityTestRouter()

	body := []byte(`{"date":"2026-08-30","windows":[{"start_time":"9am","end_time":"17:00","is_available":true}]}`)
	req, _ := http.NewRequest("PUT", "/availability", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start_time")
}

func TestReplaceAvailability_StartNotBeforeEnd(t *testing.T) {
	router := availabilityTestRouter()

	body := []byte(`{"date":"2026-08-30","windows":[{"start_time":"17:00","end_time":"09:00","is_available":true}]}`)
	req, _ := http.NewRequest("PUT", "/availability", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "before end_time")
}
