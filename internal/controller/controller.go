package controller

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/repository"
	"github.com/Alixefin/kryptic-sub000/internal/service"
)

type OrderController struct {
	Service *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{Service: s}
}

// Errores de negocio → 400; orden inexistente → 404; el resto → 500
func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFinalState),
		errors.Is(err, service.ErrInvalidPaymentStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// POST /orders — el checkout ya cobró; acá solo registramos
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID, err := ctl.Service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{OrderID: orderID})
}

// GET /orders/reference/:reference — seguimiento de invitados, sin token
func (ctl *OrderController) GetByReference(c *gin.Context) {
	reference := c.Param("reference")

	order, err := ctl.Service.GetByReference(c.Request.Context(), reference)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /orders/mine — requiere token (middleware debe poner userID)
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetString("userID")
	orders, err := ctl.Service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId — dueño o admin
func (ctl *OrderController) GetByID(c *gin.Context) {
	orderID := c.Param("orderId")
	actorID := c.GetString("userID")
	perms := c.GetStringSlice("userPermissions")
	isAdmin := slices.Contains(perms, "admin")

	order, err := ctl.Service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if !isAdmin && order.UserID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /admin/orders — admin only (middleware AdminOnly)
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders/recent?limit=N — admin only
func (ctl *OrderController) GetRecentOrders(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	orders, err := ctl.Service.GetRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PATCH /admin/orders/:orderId/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, req.Status); err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// PATCH /admin/orders/:orderId/payment-status
func (ctl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Service.UpdatePaymentStatus(c.Request.Context(), orderID, req.PaymentStatus); err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}

// DELETE /admin/orders/:orderId — borra orden + ítems
func (ctl *OrderController) DeleteOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	if err := ctl.Service.DeleteOrder(c.Request.Context(), orderID); err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
