package handler

import (
	"net/http"

	"github.com/ordermill/storefront/pkg/version"

	"github.com/gin-gonic/gin"
)

// Health reports liveness plus database reachability
func (h *Handler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"version": version.Get(),
	})
}
