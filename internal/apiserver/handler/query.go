package handler

import (
	"net/http"
	"strings"

	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/dto"

	"github.com/gin-gonic/gin"
)

// Query is the generic table endpoint. Every outcome except a missing
// table name is a 200 with a data/error envelope.
func (h *Handler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeMissingTable)
		return
	}
	if strings.TrimSpace(req.Table) == "" {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeMissingTable)
		return
	}

	if h.metrics != nil {
		action := req.Action
		if action == "" {
			action = "select"
		}
		h.metrics.QueryRequests.WithLabelValues(req.Table, action).Inc()
	}

	c.JSON(http.StatusOK, h.query.Execute(c.Request.Context(), &req))
}
