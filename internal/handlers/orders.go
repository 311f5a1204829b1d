package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/assignment"
	"live-ai-photo-backend/internal/credits"
	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/middleware"
	"live-ai-photo-backend/internal/models"
	"live-ai-photo-backend/internal/payment"
	"live-ai-photo-backend/internal/storage"
)

const (
	defaultQuantity = 5
	minQuantity     = 1
	maxQuantity     = 100
	maxImageSize    = 25 << 20 // 25MB
)

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

type OrdersHandler struct {
	db       *database.Client
	ledger   *credits.Ledger
	engine   *assignment.Engine
	storage  *storage.Client
	payments *payment.Client
	log      *zap.Logger
}

func NewOrdersHandler(db *database.Client, ledger *credits.Ledger, engine *assignment.Engine, storageClient *storage.Client, payments *payment.Client, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		db:       db,
		ledger:   ledger,
		engine:   engine,
		storage:  storageClient,
		payments: payments,
		log:      log,
	}
}

// ClampQuantity parses the requested graphic count: non-numeric input falls
// back to the default, numeric input is clamped to [1,100].
func ClampQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultQuantity
	}
	if n < minQuantity {
		return minQuantity
	}
	if n > maxQuantity {
		return maxQuantity
	}
	return n
}

// ValidateImageFiles checks every uploaded file against the type allow-list
// and size limit, returning one problem per invalid file. Any problem rejects
// the whole request; there is no partial accept.
func ValidateImageFiles(files []*multipart.FileHeader) []string {
	var problems []string
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if _, ok := allowedImageTypes[ext]; !ok {
			problems = append(problems, fmt.Sprintf("%s: unsupported file type %q", file.Filename, ext))
			continue
		}
		if file.Size > maxImageSize {
			problems = append(problems, fmt.Sprintf("%s: exceeds the %dMB size limit", file.Filename, maxImageSize>>20))
		}
	}
	return problems
}

// CreateOrder godoc
// @Summary     Create a new editing order
// @Description Validates the submission, persists the order with its images and initial task, resolves funding (free credit, package credits or checkout), and attempts to auto-assign a designer.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	userID, companyID, ok := callerIdentity(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	quantity := ClampQuantity(c.PostForm("quantity"))
	priority := models.ParsePriority(c.PostForm("priority"))

	constraints := strings.TrimSpace(c.PostForm("constraints"))
	if constraints == "" {
		constraints = "[]"
	}
	var constraintList []json.RawMessage
	if err := json.Unmarshal([]byte(constraints), &constraintList); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid constraints",
			Message: "constraints must be a JSON array",
		})
		return
	}

	var files []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		for _, fieldName := range []string{"images", "files"} {
			if f := form.File[fieldName]; len(f) > 0 {
				files = f
				break
			}
		}
	}

	sourceURL := strings.TrimSpace(c.PostForm("source_url"))
	if len(files) == 0 && sourceURL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "at least one image required"})
		return
	}

	// Fail closed: any invalid file rejects the whole request with an
	// itemized list, nothing is persisted.
	if problems := ValidateImageFiles(files); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid files",
			Details: problems,
		})
		return
	}

	order := &models.Order{
		CompanyID:    companyID,
		UserID:       userID,
		Quantity:     quantity,
		Priority:     priority,
		Instructions: c.PostForm("instructions"),
		Style:        c.PostForm("style"),
		Platform:     c.PostForm("platform"),
		Background:   c.PostForm("background"),
		Format:       c.PostForm("format"),
		Constraints:  json.RawMessage(constraints),
	}
	if sourceURL != "" {
		order.SourceURL.String = sourceURL
		order.SourceURL.Valid = true
	}

	images := make([]models.OrderImage, len(files))
	contents := make([][]byte, len(files))
	for i, file := range files {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid files",
				Details: []string{fmt.Sprintf("%s: failed to open: %v", file.Filename, err)},
			})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid files",
				Details: []string{fmt.Sprintf("%s: failed to read: %v", file.Filename, err)},
			})
			return
		}
		contents[i] = data
		images[i] = models.OrderImage{
			Filename: file.Filename,
			FileSize: file.Size,
			MimeType: allowedImageTypes[strings.ToLower(filepath.Ext(file.Filename))],
		}
	}

	created, task, err := h.db.CreateOrderWithTask(c.Request.Context(), order, images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create order",
			Message: err.Error(),
		})
		return
	}

	// Image blobs are uploaded best effort after the order exists; a failed
	// upload keeps the metadata row and is logged.
	if h.storage != nil {
		for i := range images {
			path, url, err := h.storage.UploadOrderImage(companyID, created.ID, images[i].Filename, contents[i], images[i].MimeType)
			if err != nil {
				h.log.Error("image upload failed",
					zap.String("order_id", created.ID.String()),
					zap.String("filename", images[i].Filename), zap.Error(err))
				continue
			}
			if err := h.db.UpdateOrderImageStorage(c.Request.Context(), images[i].ID, path, url); err != nil {
				h.log.Error("failed to record image storage location",
					zap.String("order_id", created.ID.String()), zap.Error(err))
			}
		}
	}

	settings, err := h.db.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load settings",
			Message: err.Error(),
		})
		return
	}

	resolution, err := h.ledger.Resolve(c.Request.Context(), created, settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to resolve order funding",
			Message: err.Error(),
		})
		return
	}

	var checkoutURL string
	if resolution.Method == credits.MethodPayment && h.payments != nil {
		session, err := h.payments.CreateCheckoutSession(c.Request.Context(), created.ID, resolution.PriceInCents)
		if err != nil {
			// The price is already on the order; checkout can be retried.
			h.log.Error("checkout session creation failed",
				zap.String("order_id", created.ID.String()), zap.Error(err))
		} else {
			checkoutURL = session.RedirectURL
		}
	}

	// Best-effort auto-assignment: no available designer leaves the task
	// PENDING for a later round.
	if _, err := h.engine.Assign(c.Request.Context(), task.ID, settings); err != nil {
		if errors.Is(err, assignment.ErrNoDesignerAvailable) {
			h.log.Info("no designer available at intake",
				zap.String("task_id", task.ID.String()))
		} else {
			h.log.Error("auto-assignment failed",
				zap.String("task_id", task.ID.String()), zap.Error(err))
		}
	}

	final, err := h.db.GetOrder(c.Request.Context(), created.ID, companyID)
	if err != nil {
		final = created
	}
	finalTask, err := h.db.GetTaskByOrder(c.Request.Context(), created.ID)
	if err != nil {
		finalTask = task
	}

	response := orderResponse(final, finalTask, nil)
	response.CheckoutURL = checkoutURL
	c.JSON(http.StatusCreated, response)
}

// ListOrders godoc
// @Summary     List the company's orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	_, companyID, ok := callerIdentity(c)
	if !ok {
		return
	}

	orders, err := h.db.ListOrders(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: orderSummaries(orders)})
}

// GetOrder godoc
// @Summary     Get one order with its images and task state
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	_, companyID, ok := callerIdentity(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.db.GetOrder(c.Request.Context(), orderID, companyID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: "order not found"})
		return
	}

	task, err := h.db.GetTaskByOrder(c.Request.Context(), orderID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load task",
			Message: err.Error(),
		})
		return
	}

	images, err := h.db.GetOrderImages(c.Request.Context(), orderID)
	if err != nil {
		h.log.Error("failed to load order images",
			zap.String("order_id", orderID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, orderResponse(order, task, images))
}

// FileComplaint godoc
// @Summary     File a complaint against a delivered order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.TaskResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/complaint [post]
func (h *OrdersHandler) FileComplaint(c *gin.Context) {
	_, companyID, ok := callerIdentity(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	var req models.ComplaintRequest
	_ = c.ShouldBindJSON(&req)

	if _, err := h.db.GetOrder(c.Request.Context(), orderID, companyID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	task, err := h.db.GetTaskByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "task not found"})
		return
	}

	if !task.Status.CanTransitionTo(models.TaskStatusComplaint) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "invalid task state",
			Message: fmt.Sprintf("cannot file a complaint for a task in status %s", task.Status),
		})
		return
	}

	if err := h.db.TransitionTask(c.Request.Context(), task.ID, task.Status, models.TaskStatusComplaint); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "task state changed, try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to file complaint",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("complaint filed",
		zap.String("order_id", orderID.String()),
		zap.String("reason", req.Reason))
	c.JSON(http.StatusOK, models.TaskResponse{ID: task.ID.String(), Status: models.TaskStatusComplaint})
}

func callerIdentity(c *gin.Context) (userID, companyID uuid.UUID, ok bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, uuid.Nil, false
	}

	companyIDStr, exists := c.Get(middleware.CompanyIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "company id not found"})
		return uuid.Nil, uuid.Nil, false
	}
	companyID, err = uuid.Parse(companyIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid company id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, companyID, true
}

func orderResponse(order *models.Order, task *models.Task, images []models.OrderImage) models.OrderResponse {
	response := models.OrderResponse{
		ID:             order.ID.String(),
		Quantity:       order.Quantity,
		Priority:       order.Priority,
		Status:         order.Status,
		PriceInCents:   order.PriceInCents,
		CreditsUsed:    order.CreditsUsed,
		UsedFreeCredit: order.UsedFreeCredit,
		IsPaid:         order.IsPaid,
		Instructions:   order.Instructions,
		Style:          order.Style,
		Platform:       order.Platform,
		Background:     order.Background,
		Format:         order.Format,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.SourceURL.Valid {
		response.SourceURL = order.SourceURL.String
	}
	if order.DeliveredAt.Valid {
		response.DeliveredAt = &order.DeliveredAt.Time
	}
	if task != nil {
		response.Task = taskResponse(task)
	}
	for _, img := range images {
		response.Images = append(response.Images, models.ImageResponse{
			ID:         img.ID.String(),
			Filename:   img.Filename,
			StorageURL: img.StorageURL,
			FileSize:   img.FileSize,
			MimeType:   img.MimeType,
			CreatedAt:  img.CreatedAt,
		})
	}
	return response
}

func taskResponse(task *models.Task) *models.TaskResponse {
	response := &models.TaskResponse{
		ID:     task.ID.String(),
		Status: task.Status,
	}
	if task.AssignedTo.Valid {
		response.AssignedTo = task.AssignedTo.UUID.String()
	}
	if task.AssignedAt.Valid {
		response.AssignedAt = &task.AssignedAt.Time
	}
	if task.CompletedAt.Valid {
		response.CompletedAt = &task.CompletedAt.Time
	}
	return response
}

func orderSummaries(orders []models.Order) []models.OrderSummary {
	summaries := make([]models.OrderSummary, len(orders))
	for i, o := range orders {
		summaries[i] = models.OrderSummary{
			ID:           o.ID.String(),
			Quantity:     o.Quantity,
			Priority:     o.Priority,
			Status:       o.Status,
			PriceInCents: o.PriceInCents,
			CreatedAt:    o.CreatedAt,
			UpdatedAt:    o.UpdatedAt,
		}
	}
	return summaries
}
