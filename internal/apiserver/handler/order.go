package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/fieldmap"
	"github.com/ordermill/storefront/internal/apiserver/middleware"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/dto"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateOrder handles the customer checkout path. Items must be a
// non-empty array after tolerant parsing; the total is computed from line
// prices when the client does not supply one.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeItemsRequired)
		return
	}

	items := fieldmap.ParseItems(req.Items)
	if len(items) == 0 {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeItemsRequired)
		return
	}

	total := orderTotal(items, 0)
	if req.Total != nil {
		total = fieldmap.CoerceTotal(*req.Total)
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = fmt.Sprintf("ORDER-%d", time.Now().UnixMilli())
	}
	status := req.Status
	if status == "" {
		status = "pending"
	}

	userID := req.UserID
	if claims := middleware.GetClaims(c); claims != nil && userID == nil {
		userID = &claims.UserID
	}

	order := &database.Order{
		ID:              id,
		UserID:          userID,
		UserName:        req.UserName,
		Email:           req.Email,
		Items:           mustJSON(items),
		Total:           total,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: jsonColumn(req.ShippingAddress),
		ShippingOption:  jsonColumn(req.ShippingOption),
		Notes:           req.Notes,
		IsSample:        req.IsSample,
	}

	if err := h.db.CreateOrder(c.Request.Context(), order); err != nil {
		h.logger.Error("order insert failed", zap.String("order_id", id), zap.Error(err))
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeInsertFailed)
		return
	}
	h.afterOrderWrite(c, "created", order)

	outcome := h.notify.OrderCreated(c.Request.Context(), order)
	h.countEmail(outcome)

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order, EmailSent: outcome.EmailSent()})
}

// AdminCreateOrder is the back-office creation path. The id is always
// server generated and shipping is priced as its own component.
func (h *Handler) AdminCreateOrder(c *gin.Context) {
	var req dto.AdminCreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeItemsRequired)
		return
	}

	items := fieldmap.ParseItems(req.Items)
	if len(items) == 0 {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeItemsRequired)
		return
	}

	status := req.Status
	if status == "" {
		status = "processing"
	}

	order := &database.Order{
		ID:              fmt.Sprintf("ADMIN-%d", time.Now().UnixMilli()),
		UserID:          req.UserID,
		UserName:        req.UserName,
		Email:           req.Email,
		Items:           mustJSON(items),
		Total:           orderTotal(items, req.ShippingPrice),
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: jsonColumn(req.ShippingAddress),
		ShippingOption:  jsonColumn(req.ShippingOption),
		Notes:           req.Notes,
		IsSample:        req.IsSample,
	}

	if err := h.db.CreateOrder(c.Request.Context(), order); err != nil {
		h.logger.Error("admin order insert failed", zap.String("order_id", order.ID), zap.Error(err))
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeInsertFailed)
		return
	}
	h.afterOrderWrite(c, "created", order)

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order, EmailSent: false})
}

// AdminUpdateOrder applies a partial update to a fixed field set, then
// fans out notification email best effort.
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeUpdateFailed)
		return
	}

	fields := map[string]any{}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if req.InvoiceStatus != nil {
		fields["invoice_status"] = *req.InvoiceStatus
	}
	if req.InvoiceURL != nil {
		fields["invoice_url"] = *req.InvoiceURL
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Total != nil {
		fields["total"] = fieldmap.CoerceTotal(*req.Total)
	}
	if req.IsSample != nil {
		fields["is_sample"] = *req.IsSample
	}

	order, err := h.db.UpdateOrderFields(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
			return
		}
		h.logger.Error("order update failed", zap.String("order_id", id), zap.Error(err))
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeUpdateFailed)
		return
	}
	h.afterOrderWrite(c, "updated", order)

	outcome := h.notify.OrderUpdated(c.Request.Context(), order)
	h.countEmail(outcome)

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order, EmailSent: outcome.EmailSent()})
}

// ListOrders returns all orders for admins, or the caller's own orders
func (h *Handler) ListOrders(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	isAdmin, err := h.db.HasRole(ctx, claims.UserID, database.RoleAdmin)
	if err != nil {
		h.dbError(c, "role lookup", err)
		return
	}

	var orders []*database.Order
	if isAdmin {
		orders, err = h.db.ListOrders(ctx)
	} else {
		orders, err = h.db.ListOrdersByUser(ctx, claims.UserID)
	}
	if err != nil {
		h.dbError(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order; customers can only read their own
func (h *Handler) GetOrder(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	order, err := h.db.GetOrder(ctx, c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	if order.UserID == nil || *order.UserID != claims.UserID {
		isAdmin, err := h.db.HasRole(ctx, claims.UserID, database.RoleAdmin)
		if err != nil {
			h.dbError(c, "role lookup", err)
			return
		}
		if !isAdmin {
			errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
			return
		}
	}
	c.JSON(http.StatusOK, order)
}

// UpsertTracking writes the tracking row for an order, deriving a tracking
// URL from the carrier name when none is supplied, then best-effort emails
// the customer.
func (h *Handler) UpsertTracking(c *gin.Context) {
	id := c.Param("id")

	var req dto.TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeUpdateFailed)
		return
	}

	ctx := c.Request.Context()
	order, err := h.db.GetOrder(ctx, id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	trackingURL := req.TrackingURL
	if trackingURL == nil {
		trackingURL = deriveTrackingURL(req.Carrier, req.TrackingNumber)
	}

	tracking := &database.TrackingInfo{
		OrderID:               order.ID,
		TrackingNumber:        req.TrackingNumber,
		Carrier:               req.Carrier,
		TrackingURL:           trackingURL,
		ShippedDate:           parseDate(req.ShippedDate),
		EstimatedDeliveryDate: parseDate(req.EstimatedDeliveryDate),
	}
	if err := h.db.UpsertTracking(ctx, tracking); err != nil {
		h.logger.Error("tracking upsert failed", zap.String("order_id", id), zap.Error(err))
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeUpdateFailed)
		return
	}
	h.afterOrderWrite(c, "tracking_updated", order)

	outcome := h.notify.TrackingUpdated(ctx, order, tracking)
	h.countEmail(outcome)

	c.JSON(http.StatusOK, gin.H{
		"tracking":   tracking,
		"email_sent": outcome.EmailSent(),
	})
}

// GetTracking returns the tracking row for an order
func (h *Handler) GetTracking(c *gin.Context) {
	tracking, err := h.db.GetTracking(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

// afterOrderWrite publishes the order event and bumps metrics
func (h *Handler) afterOrderWrite(c *gin.Context, eventType string, order *database.Order) {
	if h.events != nil {
		h.events.PublishOrderEvent(c.Request.Context(), eventType, order)
	}
	if h.metrics != nil && eventType == "created" {
		h.metrics.OrdersCreated.Inc()
	}
}

// orderTotal sums line totals, preferring unit_price, then price, then the
// nested product's price.
func orderTotal(items []any, shipping float64) float64 {
	var total float64
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		qty, ok := fieldmap.ToNumber(item["quantity"])
		if !ok || qty <= 0 {
			qty = 1
		}
		var price float64
		if n, ok := fieldmap.ToNumber(item["unit_price"]); ok {
			price = n
		} else if n, ok := fieldmap.ToNumber(item["price"]); ok {
			price = n
		} else if nested, ok := item["product"].(map[string]any); ok {
			if n, ok := fieldmap.ToNumber(nested["price"]); ok {
				price = n
			}
		}
		total += price * qty
	}
	return fieldmap.CoerceTotal(total + shipping)
}

// deriveTrackingURL maps well-known carrier names to tracking templates.
// Unknown carriers derive nothing.
func deriveTrackingURL(carrier, number *string) *string {
	if carrier == nil || number == nil || strings.TrimSpace(*number) == "" {
		return nil
	}
	name := strings.ToLower(*carrier)
	var url string
	switch {
	case strings.Contains(name, "aus"):
		url = "https://auspost.com.au/mypost/track/#/details/" + *number
	case strings.Contains(name, "star"):
		url = "https://track.startrack.com.au/" + *number
	default:
		return nil
	}
	return &url
}

// parseDate tolerates RFC3339 and plain dates; anything else is dropped
func parseDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			return &t
		}
	}
	return nil
}

// jsonColumn serializes a structured value for a nullable JSON text
// column; invalid JSON strings become null on the orders path.
func jsonColumn(v any) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
			return nil
		}
		return &trimmed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// mustJSON serializes the already-validated items array
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
