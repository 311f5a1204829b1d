package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/models"
	"live-ai-photo-backend/internal/notify"
	"live-ai-photo-backend/internal/storage"
)

type AdminHandler struct {
	db       *database.Client
	images   *storage.Client
	notifier *notify.Publisher
	log      *zap.Logger
}

func NewAdminHandler(db *database.Client, images *storage.Client, notifier *notify.Publisher, log *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, images: images, notifier: notifier, log: log}
}

var validQueueModes = map[models.QueueMode]bool{
	models.QueueModeRoundRobin:  true,
	models.QueueModeLeastLoaded: true,
	models.QueueModePriority:    true,
}

var validOrderStatuses = map[models.OrderStatus]bool{
	models.OrderStatusPendingInput:    true,
	models.OrderStatusAwaitingPayment: true,
	models.OrderStatusInProgress:      true,
	models.OrderStatusReview:          true,
	models.OrderStatusCompleted:       true,
	models.OrderStatusCancelled:       true,
}

// GetSettings godoc
// @Summary     Get the workflow settings
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SettingsResponse
// @Router      /admin/settings [get]
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load settings",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// UpdateSettings godoc
// @Summary     Update the workflow settings
// @Description Partial update: only the provided fields change. Takes effect for subsequent requests without a restart.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SettingsResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
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

	if req.PricePerGraphicCents != nil {
		if *req.PricePerGraphicCents < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "price_per_graphic_cents must not be negative"})
			return
		}
		settings.PricePerGraphicCents = *req.PricePerGraphicCents
	}
	if req.ExpressMultiplier != nil {
		if *req.ExpressMultiplier <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "express_multiplier must be positive"})
			return
		}
		settings.ExpressMultiplier = *req.ExpressMultiplier
	}
	if req.UrgentMultiplier != nil {
		if *req.UrgentMultiplier <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "urgent_multiplier must be positive"})
			return
		}
		settings.UrgentMultiplier = *req.UrgentMultiplier
	}
	if req.MinutesPerGraphic != nil {
		if *req.MinutesPerGraphic <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "minutes_per_graphic must be positive"})
			return
		}
		settings.MinutesPerGraphic = *req.MinutesPerGraphic
	}
	if req.ConfirmationTimeoutMinutes != nil {
		if *req.ConfirmationTimeoutMinutes <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "confirmation_timeout_minutes must be positive"})
			return
		}
		settings.ConfirmationTimeoutMinutes = *req.ConfirmationTimeoutMinutes
	}
	if req.QueueMode != nil {
		mode := models.QueueMode(*req.QueueMode)
		if !validQueueModes[mode] {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid queue_mode",
				Message: "must be one of round_robin, least_loaded, priority",
			})
			return
		}
		settings.QueueMode = mode
	}

	if err := h.db.UpdateSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update settings",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("settings updated", zap.String("queue_mode", string(settings.QueueMode)))
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// ListAllOrders godoc
// @Summary     List every order across all companies
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Router      /admin/orders [get]
func (h *AdminHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.db.ListAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.OrderListResponse{Orders: orderSummaries(orders)})
}

// OverrideOrderStatus godoc
// @Summary     Force an order into a specific status
// @Description Back-office escape hatch for stuck orders. Bypasses the task state machine on purpose.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.HealthResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/status [patch]
func (h *AdminHandler) OverrideOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	var req models.OverrideOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	status := models.OrderStatus(req.Status)
	if !validOrderStatuses[status] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order status"})
		return
	}

	order, err := h.db.GetOrderAny(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	if err := h.db.SetOrderStatus(c.Request.Context(), orderID, status); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to override order status",
			Message: err.Error(),
		})
		return
	}

	// Cancelling an order drops its blobs from the bucket; the metadata rows
	// stay for the audit trail.
	if status == models.OrderStatusCancelled && h.images != nil {
		if err := h.images.DeleteOrderImages(order.CompanyID, orderID); err != nil {
			h.log.Error("failed to delete cancelled order images",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}

	h.log.Warn("order status overridden",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)))
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// QAVerdict godoc
// @Summary     Record a QA verdict for a task awaiting review
// @Description pass completes the task and delivers the order; fail sends the task back to the designer.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       task_id path string true "Task ID (UUID)"
// @Success     200 {object} models.TaskResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/tasks/{task_id}/qa [post]
func (h *AdminHandler) QAVerdict(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid task id"})
		return
	}

	var req models.QAVerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Verdict != "pass" && req.Verdict != "fail" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "verdict must be pass or fail"})
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

	to := models.TaskStatusQAFailed
	if req.Verdict == "pass" {
		to = models.TaskStatusCompleted
	}

	if err := h.db.TransitionTask(c.Request.Context(), taskID, models.TaskStatusQAPending, to); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "invalid task state",
				Message: "task is not awaiting QA",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to record verdict",
			Message: err.Error(),
		})
		return
	}

	if req.Verdict == "pass" {
		if err := h.db.CompleteOrder(c.Request.Context(), task.OrderID); err != nil {
			h.log.Error("failed to complete order",
				zap.String("order_id", task.OrderID.String()), zap.Error(err))
		} else if order, err := h.db.GetOrderAny(c.Request.Context(), task.OrderID); err == nil {
			user, err := h.db.GetUser(c.Request.Context(), order.UserID)
			if err != nil {
				h.log.Warn("failed to load ordering user for notification",
					zap.String("order_id", order.ID.String()), zap.Error(err))
			}
			h.notifier.OrderCompleted(c.Request.Context(), order, user)
		}
	}

	h.log.Info("qa verdict recorded",
		zap.String("task_id", taskID.String()),
		zap.String("verdict", req.Verdict),
		zap.String("notes", req.Notes))
	c.JSON(http.StatusOK, models.TaskResponse{ID: taskID.String(), Status: to})
}

// ListDesigners godoc
// @Summary     List designers with their current workload
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.DesignerOverview
// @Router      /admin/designers [get]
func (h *AdminHandler) ListDesigners(c *gin.Context) {
	designers, err := h.db.ListDesignerOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list designers",
			Message: err.Error(),
		})
		return
	}
	if designers == nil {
		designers = []models.DesignerOverview{}
	}
	c.JSON(http.StatusOK, designers)
}

// ListCompanies godoc
// @Summary     List companies with their credit balances
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.CompanyOverview
// @Router      /admin/companies [get]
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	companies, err := h.db.ListCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list companies",
			Message: err.Error(),
		})
		return
	}

	now := time.Now()
	overviews := make([]models.CompanyOverview, 0, len(companies))
	for _, company := range companies {
		purchases, err := h.db.ListPackagePurchases(c.Request.Context(), company.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to list package purchases",
				Message: err.Error(),
			})
			return
		}
		overviews = append(overviews, models.NewCompanyOverview(company, purchases, now))
	}
	c.JSON(http.StatusOK, overviews)
}

func settingsResponse(s models.Settings) models.SettingsResponse {
	return models.SettingsResponse{
		PricePerGraphicCents:       s.PricePerGraphicCents,
		ExpressMultiplier:          s.ExpressMultiplier,
		UrgentMultiplier:           s.UrgentMultiplier,
		MinutesPerGraphic:          s.MinutesPerGraphic,
		ConfirmationTimeoutMinutes: s.ConfirmationTimeoutMinutes,
		QueueMode:                  s.QueueMode,
	}
}
