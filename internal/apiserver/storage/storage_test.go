package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newStorage(t *testing.T) *DiskStorage {
	t.Helper()
	s, err := NewDiskStorage(zap.NewNop(), t.TempDir())
	assert.NoError(t, err)
	return s
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, header, err := req.FormFile("file")
	assert.NoError(t, err)
	return header
}

func TestSave_GeneratesServerName(t *testing.T) {
	s := newStorage(t)

	path, err := s.Save(FolderProductImages, uploadHeader(t, "../../evil.png", "img"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/api/storage/product_images/"))
	// The client filename never survives
	assert.NotContains(t, path, "evil")
	assert.True(t, strings.HasSuffix(path, ".png"))

	onDisk, err := s.FilePath(FolderProductImages, filepath.Base(path))
	assert.NoError(t, err)
	content, err := os.ReadFile(onDisk)
	assert.NoError(t, err)
	assert.Equal(t, "img", string(content))
}

func TestSave_UnknownFolder(t *testing.T) {
	s := newStorage(t)

	_, err := s.Save("secrets", uploadHeader(t, "a.txt", "x"))
	assert.ErrorIs(t, err, ErrUnknownFolder)
}

func TestSaveAsset_SlotOverwritesAcrossExtensions(t *testing.T) {
	s := newStorage(t)

	first, err := s.SaveAsset("login-background", uploadHeader(t, "a.jpg", "one"))
	assert.NoError(t, err)
	assert.Equal(t, "/api/storage/assets/login-background.jpg", first)

	second, err := s.SaveAsset("login-background", uploadHeader(t, "b.png", "two"))
	assert.NoError(t, err)
	assert.Equal(t, "/api/storage/assets/login-background.png", second)

	// The old extension's file is gone
	entries, err := os.ReadDir(filepath.Join(s.Root(), FolderAssets))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "login-background.png", entries[0].Name())
}

func TestDelete_IgnoresForeignPaths(t *testing.T) {
	s := newStorage(t)

	assert.NoError(t, s.Delete("https://cdn.example.com/image.png"))
	assert.NoError(t, s.Delete("/etc/passwd"))

	path, err := s.Save(FolderProductImages, uploadHeader(t, "a.png", "x"))
	assert.NoError(t, err)
	assert.NoError(t, s.Delete(path))

	onDisk, _ := s.FilePath(FolderProductImages, filepath.Base(path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestFilePath_RejectsTraversal(t *testing.T) {
	s := newStorage(t)

	p, err := s.FilePath(FolderAssets, "../../../etc/passwd")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, s.Root()))
	assert.NotContains(t, p, "..")

	_, err = s.FilePath("outside", "a.txt")
	assert.ErrorIs(t, err, ErrUnknownFolder)
}
