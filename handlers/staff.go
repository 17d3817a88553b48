package handlers

import (
	"net/http"

	"campus-canteen-api/middleware"
	"campus-canteen-api/models"

	"github.com/gin-gonic/gin"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// ListAllOrders returns every order with its patron resolved
func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAllOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

// UpdateOrderStatus overwrites an order's status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Orders.AdvanceStatus(c.Request.Context(), c.Param("id"),
		models.OrderStatus(req.Status), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderHistory returns the status trail of an order, oldest first
func (h *Handler) GetOrderHistory(c *gin.Context) {
	history, err := h.Orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(history))
}
