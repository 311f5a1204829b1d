package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/models"
)

type AvailabilityHandler struct {
	db  *database.Client
	log *zap.Logger
}

func NewAvailabilityHandler(db *database.Client, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, log: log}
}

// GetAvailability godoc
// @Summary     Get the designer's availability windows for a date
// @Tags        availability
// @Produce     json
// @Security    Bearer
// @Param       date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success     200 {object} models.AvailabilityResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /designer/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	designerID, ok := designerIdentity(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	windows, err := h.db.ListAvailability(c.Request.Context(), designerID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list availability",
			Message: err.Error(),
		})
		return
	}

	response := models.AvailabilityResponse{Date: date}
	for _, w := range windows {
		response.Windows = append(response.Windows, models.AvailabilityWindowOut{
			ID:          w.ID.String(),
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
			IsAvailable: w.IsAvailable,
		})
	}
	c.JSON(http.StatusOK, response)
}

// ReplaceAvailability godoc
// @Summary     Replace the designer's availability windows for a date
// @Description Replaces all windows for the date in one transaction; this is a full overwrite, not a merge.
// @Tags        availability
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AvailabilityResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /designer/availability [put]
func (h *AvailabilityHandler) ReplaceAvailability(c *gin.Context) {
	designerID, ok := designerIdentity(c)
	if !ok {
		return
	}

	var req models.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}
	if problems := validateWindows(req.Windows); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid windows",
			Details: problems,
		})
		return
	}

	if err := h.db.ReplaceAvailability(c.Request.Context(), designerID, req.Date, req.Windows); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to replace availability",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("availability replaced",
		zap.String("designer_id", designerID.String()),
		zap.String("date", req.Date),
		zap.Int("windows", len(req.Windows)))

	stored, err := h.db.ListAvailability(c.Request.Context(), designerID, req.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list availability",
			Message: err.Error(),
		})
		return
	}
	response := models.AvailabilityResponse{Date: req.Date}
	for _, w := range stored {
		response.Windows = append(response.Windows, models.AvailabilityWindowOut{
			ID:          w.ID.String(),
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
			IsAvailable: w.IsAvailable,
		})
	}
	c.JSON(http.StatusOK, response)
}

func validateWindows(windows []models.AvailabilityWindowIn) []string {
	var problems []string
	for i, w := range windows {
		if _, err := time.Parse("15:04", w.StartTime); err != nil {
			problems = append(problems, fmt.Sprintf("window %d: invalid start_time %q, expected HH:MM", i, w.StartTime))
			continue
		}
		if _, err := time.Parse("15:04", w.EndTime); err != nil {
			problems = append(problems, fmt.Sprintf("window %d: invalid end_time %q, expected HH:MM", i, w.EndTime))
			continue
		}
		// Zero-padded HH:MM compares lexicographically in time order.
		if w.StartTime >= w.EndTime {
			problems = append(problems, fmt.Sprintf("window %d: start_time must be before end_time", i))
		}
	}
	return problems
}
