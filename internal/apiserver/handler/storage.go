package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/storage"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadProductImage stores a product image under a server-generated name
func (h *Handler) UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorFileRequired)
		return
	}

	path, err := h.storage.Save(storage.FolderProductImages, file)
	if err != nil {
		h.logger.Error("image upload failed", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrorUploadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// UploadAsset stores a site asset under a fixed slot name so repeat
// uploads replace the previous file.
func (h *Handler) UploadAsset(c *gin.Context) {
	key := strings.TrimSpace(c.PostForm("key"))
	if key == "" {
		key = strings.TrimSpace(c.Param("key"))
	}
	if key == "" {
		i18n.RespondWithError(c, i18n.ErrBadRequest.WithParam("Reason", "key required"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorFileRequired)
		return
	}

	path, err := h.storage.SaveAsset(key, file)
	if err != nil {
		h.logger.Error("asset upload failed", zap.String("key", key), zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrorUploadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// UploadMarketing stores a marketing file and records it so the
// material list can be rendered without walking the disk.
func (h *Handler) UploadMarketing(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorFileRequired)
		return
	}

	path, err := h.storage.Save(storage.FolderMarketing, file)
	if err != nil {
		h.logger.Error("marketing upload failed", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrorUploadFailed)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = file.Filename
	}
	row := &database.Marketing{
		Title:       title,
		Description: c.PostForm("description"),
		FilePath:    path,
	}
	if err := h.db.CreateMarketing(c.Request.Context(), row); err != nil {
		// Roll the file back so disk and table stay in step
		_ = h.storage.Delete(path)
		h.dbError(c, "record marketing", err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ListMarketing returns the recorded marketing material
func (h *Handler) ListMarketing(c *gin.Context) {
	rows, err := h.db.ListMarketing(c.Request.Context())
	if err != nil {
		h.dbError(c, "list marketing", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DeleteMarketing removes the row and best-effort unlinks the file
func (h *Handler) DeleteMarketing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	ctx := c.Request.Context()
	row, err := h.db.GetMarketing(ctx, uint(id))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}
	if err := h.db.DeleteMarketing(ctx, uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
			return
		}
		h.dbError(c, "delete marketing", err)
		return
	}
	if err := h.storage.Delete(row.FilePath); err != nil {
		h.logger.Warn("marketing file unlink failed",
			zap.String("path", row.FilePath), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ServeFile streams a stored file. The storage layer rejects folder
// names and path segments outside its fixed layout.
func (h *Handler) ServeFile(c *gin.Context) {
	path, err := h.storage.FilePath(c.Param("folder"), c.Param("name"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}
	c.File(path)
}
