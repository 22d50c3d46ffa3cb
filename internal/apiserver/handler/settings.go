package handler

import (
	"errors"
	"net/http"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/common/dto"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
)

// GetEmailSettings returns the latest saved configuration, or defaults
// when nothing has been saved yet.
func (h *Handler) GetEmailSettings(c *gin.Context) {
	settings, err := h.db.GetLatestEmailSettings(c.Request.Context())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusOK, &database.EmailSettings{
				NotifyAccounts: true,
				NotifyAdmin:    true,
				NotifyDispatch: true,
				NotifyCustomer: true,
			})
			return
		}
		h.dbError(c, "load email settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveEmailSettings appends a new configuration row. Omitted toggles
// default to enabled.
func (h *Handler) SaveEmailSettings(c *gin.Context) {
	var req dto.EmailSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest.WithParam("Reason", err.Error()))
		return
	}

	settings := &database.EmailSettings{
		AccountsEmail:  req.AccountsEmail,
		AdminEmail:     req.AdminEmail,
		DispatchEmail:  req.DispatchEmail,
		NotifyAccounts: boolOr(req.NotifyAccounts, true),
		NotifyAdmin:    boolOr(req.NotifyAdmin, true),
		NotifyDispatch: boolOr(req.NotifyDispatch, true),
		NotifyCustomer: boolOr(req.NotifyCustomer, true),
	}
	if err := h.db.SaveEmailSettings(c.Request.Context(), settings); err != nil {
		h.dbError(c, "save email settings", err)
		return
	}
	i18n.RespondOK(c, "SuccessEmailSettingsSaved", nil, settings)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
