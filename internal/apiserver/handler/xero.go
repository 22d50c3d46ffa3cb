package handler

import (
	"errors"
	"net/http"

	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/i18n"
	"github.com/ordermill/storefront/internal/xero"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// XeroConnect starts the OAuth authorization flow with a redirect to Xero
func (h *Handler) XeroConnect(c *gin.Context) {
	url, err := h.xero.AuthURL()
	if err != nil {
		if errors.Is(err, xero.ErrNotConfigured) {
			i18n.RespondWithError(c, i18n.ErrorXeroNotConfigured)
			return
		}
		i18n.RespondWithError(c, i18n.ErrorXeroRequestFailed)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// XeroCallback completes the OAuth flow and bounces back to the admin UI
func (h *Handler) XeroCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	redirect := h.cfg.Server.FrontendURL + "/admin/settings?xero="
	if err := h.xero.HandleCallback(c.Request.Context(), code, state); err != nil {
		h.logger.Error("xero callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, redirect+"error")
		return
	}
	c.Redirect(http.StatusFound, redirect+"connected")
}

// XeroStatus reports whether a tenant connection exists
func (h *Handler) XeroStatus(c *gin.Context) {
	connected := false
	if h.xero.Configured() {
		if _, err := h.db.GetActiveXeroToken(c.Request.Context()); err == nil {
			connected = true
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": h.xero.Configured(),
		"connected":  connected,
	})
}

// CreateXeroInvoice raises an accounts receivable invoice for the order
// and records the result against it.
func (h *Handler) CreateXeroInvoice(c *gin.Context) {
	id := c.Param("id")

	ctx := c.Request.Context()
	order, err := h.db.GetOrder(ctx, id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	result, err := h.xero.CreateInvoice(ctx, order)
	if err != nil {
		switch {
		case errors.Is(err, xero.ErrNotConfigured):
			i18n.RespondWithError(c, i18n.ErrorXeroNotConfigured)
		case errors.Is(err, xero.ErrNotConnected):
			i18n.RespondWithError(c, i18n.ErrorXeroNotConnected)
		default:
			h.logger.Error("xero invoice failed", zap.String("order_id", id), zap.Error(err))
			i18n.RespondWithError(c, i18n.ErrorXeroRequestFailed)
		}
		return
	}

	status := "submitted"
	fields := map[string]any{"invoice_status": status}
	if result.OnlineURL != "" {
		fields["invoice_url"] = result.OnlineURL
	}
	order, err = h.db.UpdateOrderFields(ctx, id, fields)
	if err != nil {
		h.dbError(c, "record invoice", err)
		return
	}
	if h.metrics != nil {
		h.metrics.InvoicesRaised.Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"order":          order,
		"invoice_id":     result.InvoiceID,
		"invoice_number": result.InvoiceNumber,
		"invoice_url":    result.OnlineURL,
	})
}
