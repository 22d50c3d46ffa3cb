package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func (e *testEnv) upload(t *testing.T, path, token, filename string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		assert.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write([]byte("file-bytes"))
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUploadProductImage_ServedBack(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.upload(t, "/api/storage/product-images", admin, "photo.png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	path := decodeBody(t, w)["path"].(string)
	assert.True(t, strings.HasPrefix(path, "/api/storage/product_images/"))
	// name is server generated
	assert.NotContains(t, path, "photo")

	get := env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "file-bytes", get.Body.String())
}

func TestUploadAsset_SlotOverwrite(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.upload(t, "/api/storage/assets", admin, "bg.png", map[string]string{"key": "login-background"})
	assert.Equal(t, http.StatusOK, w.Code)
	first := decodeBody(t, w)["path"].(string)
	assert.Contains(t, first, "login-background")

	w = env.upload(t, "/api/storage/assets", admin, "bg.jpg", map[string]string{"key": "login-background"})
	assert.Equal(t, http.StatusOK, w.Code)
	second := decodeBody(t, w)["path"].(string)
	assert.Contains(t, second, "login-background")

	// the old extension variant is gone
	if first != second {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, first, "", nil).Code)
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, second, "", nil).Code)
}

func TestUploadAsset_KeyRequired(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.upload(t, "/api/storage/assets", admin, "bg.png", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMarketing_RecordsRow(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.upload(t, "/api/storage/marketing", admin, "brochure.pdf", map[string]string{
		"title":       "Wholesale Brochure",
		"description": "2026 range",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	row := decodeBody(t, w)
	assert.Equal(t, "Wholesale Brochure", row["title"])
	filePath := row["file_path"].(string)

	// listed for any signed-in user
	_, retailer := env.signupUser(t, "buyer@example.com")
	list := env.do(t, http.MethodGet, "/api/marketing", retailer, nil)
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Wholesale Brochure")

	// delete removes row and file
	id := jsonID(row["id"])
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/marketing/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, filePath, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/marketing/"+id, admin, nil).Code)
}

func TestServeFile_UnknownFolder(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/storage/secrets/passwd", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, retailer := env.signupUser(t, "buyer@example.com")

	w := env.upload(t, "/api/storage/product-images", retailer, "photo.png", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
