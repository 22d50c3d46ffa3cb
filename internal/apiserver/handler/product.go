package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/cache"
	"github.com/ordermill/storefront/internal/apiserver/fieldmap"
	"github.com/ordermill/storefront/internal/apiserver/schema"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const productImagePrefix = "/api/storage/product_images/"

// ListProducts returns the catalog with the category join, served from the
// catalog cache when warm.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if data, ok := h.cache.Get(ctx, cache.KeyProducts); ok {
			c.Data(http.StatusOK, "application/json", data)
			return
		}
	}

	resp := h.query.Execute(ctx, &dto.QueryRequest{Table: cnst.TableProducts})
	if resp.Error != nil {
		errorJSON(c, http.StatusInternalServerError, cnst.ErrCodeDBError)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(resp.Data); err == nil {
			h.cache.Set(ctx, cache.KeyProducts, data)
		}
	}
	c.JSON(http.StatusOK, resp.Data)
}

// GetProduct returns a single product with its category join
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	resp := h.query.Execute(c.Request.Context(), &dto.QueryRequest{
		Table:       cnst.TableProducts,
		Filters:     []dto.QueryFilter{{Type: "eq", Field: "id", Value: id}},
		MaybeSingle: true,
	})
	if resp.Error != nil {
		errorJSON(c, http.StatusInternalServerError, cnst.ErrCodeDBError)
		return
	}
	if resp.Data == nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}

// CreateProduct inserts a product from a loosely shaped body. Only columns
// the schema registry declares are written; NOT NULL columns without a
// value get a synthesized default.
func (h *Handler) CreateProduct(c *gin.Context) {
	body, ok := bindLooseBody(c)
	if !ok {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeNoValidColumns)
		return
	}

	ctx := c.Request.Context()
	row, ok := h.prepareProductRow(c, body, true)
	if !ok {
		return
	}

	inserted, err := h.db.QueryInsert(ctx, cnst.TableProducts, row)
	if err != nil {
		h.logger.Error("product insert failed", zap.Error(err))
		h.respondWriteFailure(c, cnst.ErrCodeInsertFailed, body)
		return
	}
	h.invalidateCatalog(c)

	c.JSON(http.StatusOK, h.reloadProduct(c, inserted, row))
}

// UpdateProduct applies a partial update. Only supplied, registry-declared
// columns are set; updated_at is always bumped.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	body, ok := bindLooseBody(c)
	if !ok {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeNoValidColumns)
		return
	}

	row, ok := h.prepareProductRow(c, body, false)
	if !ok {
		return
	}
	row["updated_at"] = time.Now()

	rows, err := h.db.QueryUpdate(c.Request.Context(), cnst.TableProducts, row,
		dbEq("id", id))
	if err != nil {
		h.logger.Error("product update failed", zap.Int("id", id), zap.Error(err))
		h.respondWriteFailure(c, cnst.ErrCodeUpdateFailed, body)
		return
	}
	if len(rows) == 0 {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}
	h.invalidateCatalog(c)

	c.JSON(http.StatusOK, h.reloadProduct(c, rows[0], row))
}

// DeleteProduct removes a product and best-effort unlinks its local image
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	ctx := c.Request.Context()
	product, err := h.db.GetProduct(ctx, uint(id))
	if err != nil {
		errorJSON(c, http.StatusNotFound, cnst.ErrCodeNotFound)
		return
	}

	if err := h.db.DeleteProduct(ctx, uint(id)); err != nil {
		h.logger.Error("product delete failed", zap.Int("id", id), zap.Error(err))
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeDeleteFailed)
		return
	}
	h.invalidateCatalog(c)

	if product.Image != nil && strings.HasPrefix(*product.Image, productImagePrefix) && h.storage != nil {
		if err := h.storage.Delete(*product.Image); err != nil {
			h.logger.Warn("unlinking product image failed",
				zap.String("image", *product.Image),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// prepareProductRow runs the normalization pipeline and restricts the body
// to registry columns. withDefaults additionally synthesizes NOT NULL
// defaults for the insert path.
func (h *Handler) prepareProductRow(c *gin.Context, body map[string]any, withDefaults bool) (map[string]any, bool) {
	row := fieldmap.NormalizeProduct(body)

	// Numeric coercion with the create-path defaults
	coerceNumber(row, "price", withDefaults, 0)
	coerceNumber(row, "weight", false, 0)
	coerceInt(row, "stock", withDefaults, 0)
	coerceInt(row, "min_quantity", withDefaults, 1)
	coerceInt(row, "number_of_servings", false, 0)

	if raw, present := row["category"]; present {
		if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
			row["category"] = nil
		} else {
			id, err := h.db.ResolveCategoryID(c.Request.Context(), raw)
			if err != nil {
				h.dbError(c, "resolve category", err)
				return nil, false
			}
			if id == nil {
				row["category"] = nil
			} else {
				row["category"] = *id
			}
		}
	}

	tbl, _ := schema.Lookup(cnst.TableProducts)
	cols := tbl.Intersect(row)
	if len(cols) == 0 {
		errorJSON(c, http.StatusBadRequest, cnst.ErrCodeNoValidColumns)
		return nil, false
	}
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		out[col] = row[col]
	}

	// JSON columns are stored serialized; anything unserializable falls
	// back to the per-field default
	for _, col := range tbl.JSONColumns() {
		v, present := out[col]
		if !present {
			continue
		}
		out[col] = serializeJSONValue(v, fieldmap.ProductJSONDefault(col))
	}

	if withDefaults {
		for col, v := range tbl.RequiredDefaults(out, fieldmap.ProductJSONDefault) {
			out[col] = serializeDefault(v)
		}
	}
	return out, true
}

// reloadProduct fetches the joined row for a freshly written product,
// falling back to the raw row when the id cannot be determined.
func (h *Handler) reloadProduct(c *gin.Context, written map[string]any, fallback map[string]any) any {
	id, ok := fieldmap.ToInt(written["id"])
	if !ok {
		return fallback
	}
	resp := h.query.Execute(c.Request.Context(), &dto.QueryRequest{
		Table:       cnst.TableProducts,
		Filters:     []dto.QueryFilter{{Type: "eq", Field: "id", Value: id}},
		MaybeSingle: true,
	})
	if resp.Error != nil || resp.Data == nil {
		return written
	}
	return resp.Data
}

// respondWriteFailure returns the generic failure code, attaching the body
// key names and value types as diagnostics when DEBUG_ERRORS is on. Raw
// values are never echoed back.
func (h *Handler) respondWriteFailure(c *gin.Context, code string, body map[string]any) {
	payload := gin.H{"error": code}
	if h.cfg.Server.DebugErrors {
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		shapes := make(map[string]string, len(keys))
		for _, k := range keys {
			shapes[k] = fmt.Sprintf("%T", body[k])
		}
		payload["debug"] = gin.H{"keys": keys, "types": shapes}
	}
	c.JSON(http.StatusBadRequest, payload)
}

func (h *Handler) invalidateCatalog(c *gin.Context) {
	if h.cache != nil {
		h.cache.InvalidateCatalog(c.Request.Context())
	}
}

// bindLooseBody decodes an arbitrary JSON object body
func bindLooseBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		return nil, false
	}
	return body, true
}

func coerceNumber(row map[string]any, key string, defaulted bool, fallback float64) {
	v, present := row[key]
	if !present || v == nil {
		if defaulted {
			row[key] = fallback
		}
		return
	}
	if n, ok := fieldmap.ToNumber(v); ok {
		row[key] = n
	} else if defaulted {
		row[key] = fallback
	} else {
		row[key] = nil
	}
}

func coerceInt(row map[string]any, key string, defaulted bool, fallback int) {
	v, present := row[key]
	if !present || v == nil {
		if defaulted {
			row[key] = fallback
		}
		return
	}
	if n, ok := fieldmap.ToInt(v); ok {
		row[key] = n
	} else if defaulted {
		row[key] = fallback
	} else {
		row[key] = nil
	}
}

// serializeJSONValue stores structured values as text, replacing anything
// that cannot serialize with the provided default.
func serializeJSONValue(v any, fallback any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		v = fallback
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fallback)
	}
	return string(b)
}

func serializeDefault(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return v
	}
}
