package handlers

import (
	"net/http"

	"campus-canteen-api/services"
	"campus-canteen-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetMenu returns the catalog, optionally filtered by category or veg
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.Catalog.List(c.Request.Context(), services.MenuFilter{
		Category: c.Query("category"),
		VegOnly:  c.Query("veg") == "true",
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// GetStateMachineInfo documents the order statuses and how the counter usually moves them
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":       statemachine.Statuses(),
		"conventional":   statemachine.GetAllTransitions(),
		"terminalStatus": statemachine.TerminalStatus(),
		"enforced":       false,
		"description":    "Staff may set any status over any other; the flow listed is the usual one",
	})
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Campus Canteen API",
	})
}
