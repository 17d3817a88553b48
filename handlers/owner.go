package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSummary reports revenue and the number of paid orders
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.Revenue.Summarize(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
