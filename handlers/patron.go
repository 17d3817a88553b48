package handlers

import (
	"net/http"

	"campus-canteen-api/middleware"
	"campus-canteen-api/models"
	"campus-canteen-api/services"

	"github.com/gin-gonic/gin"
)

type LineItemRequest struct {
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unitPrice" binding:"min=0"`
}

type PlaceOrderRequest struct {
	LineItems     []LineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod" binding:"required,oneof=upi cash"`
	Paid          bool              `json:"paid"`
	Totals        models.Totals     `json:"totals"`
}

// PlaceOrder records a patron's order; totals are stored as sent
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := make([]models.OrderItem, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		items = append(items, models.OrderItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), middleware.GetUserID(c), services.PlaceOrderInput{
		LineItems:     items,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Paid:          req.Paid,
		Totals:        req.Totals,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListOwnOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

// GetMyOrderDetail returns one of the caller's orders
func (h *Handler) GetMyOrderDetail(c *gin.Context) {
	order, err := h.Orders.GetOwnOrder(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
