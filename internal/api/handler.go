package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/catalog"
	"dining-service/internal/directory"
	"dining-service/internal/service"
	"dining-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const studentIDKey = "studentID"

// Handler contains HTTP handlers
type Handler struct {
	carts        *service.CartService
	reservations *service.ReservationService
	catalog      *catalog.Catalog
	directory    *directory.Directory
}

// NewHandler creates a new HTTP handler
func NewHandler(
	carts *service.CartService,
	reservations *service.ReservationService,
	cat *catalog.Catalog,
	dir *directory.Directory,
) *Handler {
	return &Handler{
		carts:        carts,
		reservations: reservations,
		catalog:      cat,
		directory:    dir,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.studentAuth())
	{
		v1.GET("/menu", h.listMenu)
		v1.GET("/halls", h.listHalls)

		v1.GET("/cart", h.viewCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.DELETE("/cart/items/:ref", h.removeCartItem)
		v1.POST("/cart/confirm", h.confirmCart)

		v1.GET("/reservations", h.listReservations)
		v1.POST("/reservations/:id/cancel", h.cancelReservation)

		v1.GET("/transactions", h.listTransactions)

		v1.GET("/balance", h.getBalance)
		v1.POST("/balance/topup", h.topUpBalance)
	}
}

// studentAuth resolves the session-supplied student id and rejects unknown
// or inactive students before any core operation runs
func (h *Handler) studentAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Student-ID")
		studentID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid X-Student-ID header",
			})
			return
		}

		if !h.directory.IsActive(studentID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Student is not active",
			})
			return
		}

		c.Set(studentIDKey, studentID)
		c.Next()
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"meal_slots": h.catalog.ListMealSlots()})
}

func (h *Handler) listHalls(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dining_halls": h.catalog.ListDiningHalls()})
}

// AddCartItemRequest represents a request to add an item to the cart
type AddCartItemRequest struct {
	MealSlotID int64 `json:"meal_slot_id" binding:"required"`
	HallID     int64 `json:"hall_id" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), studentID(c), req.MealSlotID, req.HallID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	ref, err := strconv.ParseInt(c.Param("ref"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ref"})
		return
	}

	if err := h.carts.RemoveItem(studentID(c), ref); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) viewCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.carts.ViewCart(studentID(c))})
}

func (h *Handler) confirmCart(c *gin.Context) {
	result, err := h.carts.Confirm(c.Request.Context(), studentID(c), c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listReservations(c *gin.Context) {
	reservations, err := h.reservations.ListReservations(studentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *Handler) cancelReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	if err := h.reservations.Cancel(c.Request.Context(), studentID(c), reservationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *Handler) listTransactions(c *gin.Context) {
	transactions, err := h.reservations.ListTransactions(studentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *Handler) getBalance(c *gin.Context) {
	balance, err := h.reservations.Balance(studentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// TopUpRequest represents a balance top-up request
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) topUpBalance(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.reservations.Credit(c.Request.Context(), studentID(c), req.Amount); err != nil {
		respondError(c, err)
		return
	}

	balance, _ := h.reservations.Balance(studentID(c))
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func studentID(c *gin.Context) int64 {
	return c.GetInt64(studentIDKey)
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidMealSlot),
		errors.Is(err, apperrors.ErrInvalidDiningHall),
		errors.Is(err, apperrors.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrUnknownStudent),
		errors.Is(err, apperrors.ErrReservationNotFound),
		errors.Is(err, apperrors.ErrCartItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateReservation),
		errors.Is(err, apperrors.ErrCapacityExhausted),
		errors.Is(err, apperrors.ErrAlreadyCancelled),
		errors.Is(err, apperrors.ErrInvalidTransition):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
