package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/assignment"
	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/middleware"
	"live-ai-photo-backend/internal/models"
)

type AssignmentsHandler struct {
	db     *database.Client
	engine *assignment.Engine
	log    *zap.Logger
}

func NewAssignmentsHandler(db *database.Client, engine *assignment.Engine, log *zap.Logger) *AssignmentsHandler {
	return &AssignmentsHandler{db: db, engine: engine, log: log}
}

// GetPending godoc
// @Summary     Get the designer's current pending assignment
// @Description Returns the open proposal with its confirmation deadline. An already-lapsed proposal is expired on read and reported as not found.
// @Tags        assignments
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PendingAssignmentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /designer/assignments/pending [get]
func (h *AssignmentsHandler) GetPending(c *gin.Context) {
	designerID, ok := designerIdentity(c)
	if !ok {
		return
	}

	pending, _, order, err := h.db.GetPendingAssignmentForDesigner(c.Request.Context(), designerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no pending assignment"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load assignment",
			Message: err.Error(),
		})
		return
	}

	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load settings",
			Message: err.Error(),
		})
		return
	}

	// Lazy expiry: a proposal that lapsed while nobody was looking is driven
	// to EXPIRED the moment it is read.
	if assignment.IsExpired(pending.AssignedAt, settings.ConfirmationTimeoutMinutes, time.Now()) {
		h.engine.Expire(c.Request.Context(), pending, settings)
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no pending assignment"})
		return
	}

	c.JSON(http.StatusOK, models.PendingAssignmentResponse{
		AssignmentID:   pending.ID.String(),
		TaskID:         pending.TaskID.String(),
		OrderID:        order.ID.String(),
		Quantity:       order.Quantity,
		Priority:       order.Priority,
		AssignedAt:     pending.AssignedAt,
		TimeoutMinutes: settings.ConfirmationTimeoutMinutes,
		ExpiresAt:      assignment.Deadline(pending.AssignedAt, settings.ConfirmationTimeoutMinutes),
	})
}

// Confirm godoc
// @Summary     Confirm a pending assignment
// @Tags        assignments
// @Produce     json
// @Security    Bearer
// @Param       assignment_id path string true "Assignment ID (UUID)"
// @Success     200 {object} models.HealthResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /designer/assignments/{assignment_id}/confirm [post]
func (h *AssignmentsHandler) Confirm(c *gin.Context) {
	h.resolve(c, h.engine.Confirm, "assignment confirmed")
}

// Reject godoc
// @Summary     Reject a pending assignment
// @Tags        assignments
// @Produce     json
// @Security    Bearer
// @Param       assignment_id path string true "Assignment ID (UUID)"
// @Success     200 {object} models.HealthResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /designer/assignments/{assignment_id}/reject [post]
func (h *AssignmentsHandler) Reject(c *gin.Context) {
	h.resolve(c, h.engine.Reject, "assignment rejected")
}

type resolveFunc func(ctx context.Context, assignmentID, designerID uuid.UUID, settings models.Settings) error

func (h *AssignmentsHandler) resolve(c *gin.Context, action resolveFunc, okMessage string) {
	designerID, ok := designerIdentity(c)
	if !ok {
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid assignment id"})
		return
	}

	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load settings",
			Message: err.Error(),
		})
		return
	}

	if err := action(c.Request.Context(), assignmentID, designerID, settings); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "assignment not found"})
		case errors.Is(err, assignment.ErrNotOwner):
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "assignment belongs to another designer"})
		case errors.Is(err, assignment.ErrExpired):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "confirmation window expired"})
		case errors.Is(err, assignment.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "assignment already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to resolve assignment",
				Message: err.Error(),
			})
		}
		return
	}

	h.log.Info(okMessage,
		zap.String("assignment_id", assignmentID.String()),
		zap.String("designer_id", designerID.String()))
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

func designerIdentity(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}
