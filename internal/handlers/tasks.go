package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/models"
)

type TasksHandler struct {
	db  *database.Client
	log *zap.Logger
}

func NewTasksHandler(db *database.Client, log *zap.Logger) *TasksHandler {
	return &TasksHandler{db: db, log: log}
}

// CompleteTask godoc
// @Summary     Submit finished work for QA review
// @Description Moves the designer's IN_PROGRESS task to QA_PENDING and the order to REVIEW.
// @Tags        tasks
// @Produce     json
// @Security    Bearer
// @Param       task_id path string true "Task ID (UUID)"
// @Success     200 {object} models.TaskResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /designer/tasks/{task_id}/complete [post]
func (h *TasksHandler) CompleteTask(c *gin.Context) {
	h.transition(c, models.TaskStatusInProgress, models.TaskStatusQAPending, func(ctx *gin.Context, task *models.Task) {
		// Order status tracks the task into review; a failure here is
		// recoverable via the admin override.
		if err := h.db.SetOrderStatus(ctx.Request.Context(), task.OrderID, models.OrderStatusReview); err != nil {
			h.log.Error("failed to move order to review",
				zap.String("order_id", task.OrderID.String()), zap.Error(err))
		}
	})
}

// ResumeTask godoc
// @Summary     Resume work after a failed QA verdict
// @Tags        tasks
// @Produce     json
// @Security    Bearer
// @Param       task_id path string true "Task ID (UUID)"
// @Success     200 {object} models.TaskResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /designer/tasks/{task_id}/resume [post]
func (h *TasksHandler) ResumeTask(c *gin.Context) {
	h.transition(c, models.TaskStatusQAFailed, models.TaskStatusInProgress, nil)
}

func (h *TasksHandler) transition(c *gin.Context, from, to models.TaskStatus, after func(*gin.Context, *models.Task)) {
	designerID, ok := designerIdentity(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid task id"})
		return
	}

	task, err := h.db.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load task",
			Message: err.Error(),
		})
		return
	}

	if !task.AssignedTo.Valid || task.AssignedTo.UUID != designerID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "task belongs to another designer"})
		return
	}

	if err := h.db.TransitionTask(c.Request.Context(), taskID, from, to); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "invalid task state",
				Message: "task is not in " + string(from),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to transition task",
			Message: err.Error(),
		})
		return
	}

	if after != nil {
		after(c, task)
	}

	h.log.Info("task transitioned",
		zap.String("task_id", taskID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	c.JSON(http.StatusOK, models.TaskResponse{ID: taskID.String(), Status: to})
}
