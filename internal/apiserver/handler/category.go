package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/dto"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
)

// ListCategories returns every product category
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.db.ListCategories(c.Request.Context())
	if err != nil {
		h.dbError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category. Names are unique case-insensitively.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		i18n.RespondWithError(c, i18n.ErrorCategoryRequired)
		return
	}

	name := strings.TrimSpace(req.Name)
	ctx := c.Request.Context()

	existing, err := h.db.ListCategories(ctx)
	if err != nil {
		h.dbError(c, "category lookup", err)
		return
	}
	for _, cat := range existing {
		if strings.EqualFold(cat.Name, name) {
			i18n.RespondWithError(c, i18n.ErrorCategoryExists)
			return
		}
	}

	category := &database.ProductCategory{Name: name}
	if err := h.db.CreateCategory(ctx, category); err != nil {
		h.dbError(c, "create category", err)
		return
	}
	h.invalidateCatalog(c)

	c.JSON(http.StatusOK, category)
}

// UpdateCategory renames a category
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		i18n.RespondWithError(c, i18n.ErrorCategoryRequired)
		return
	}

	category := &database.ProductCategory{ID: uint(id), Name: strings.TrimSpace(req.Name)}
	if err := h.db.UpdateCategory(c.Request.Context(), category); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrorCategoryNotFound)
			return
		}
		h.dbError(c, "update category", err)
		return
	}
	h.invalidateCatalog(c)

	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category, detaching its products
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	if err := h.db.DeleteCategory(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrorCategoryNotFound)
			return
		}
		h.dbError(c, "delete category", err)
		return
	}
	h.invalidateCatalog(c)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
