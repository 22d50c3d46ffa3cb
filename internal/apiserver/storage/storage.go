package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Folder names under the storage root. Every upload lands in one of these.
const (
	FolderProductImages = "product_images"
	FolderAssets        = "assets"
	FolderMarketing     = "marketing"
)

// servePrefix is the URL prefix files are served from
const servePrefix = "/api/storage/"

var folders = map[string]struct{}{
	FolderProductImages: {},
	FolderAssets:        {},
	FolderMarketing:     {},
}

// ErrUnknownFolder is returned for folders outside the fixed set
var ErrUnknownFolder = errors.New("unknown storage folder")

// DiskStorage stores uploaded files on the local filesystem. Stored names
// are always server generated, never the client-supplied filename.
type DiskStorage struct {
	logger *zap.Logger
	root   string
}

// NewDiskStorage creates the storage root and its folders
func NewDiskStorage(logger *zap.Logger, root string) (*DiskStorage, error) {
	for folder := range folders {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("create storage folder %s: %w", folder, err)
		}
	}
	return &DiskStorage{
		logger: logger.Named("apiserver.storage"),
		root:   root,
	}, nil
}

// Root returns the storage root directory
func (s *DiskStorage) Root() string { return s.root }

// Save stores an uploaded file under the folder with a UUID name and
// returns its serving path.
func (s *DiskStorage) Save(folder string, file *multipart.FileHeader) (string, error) {
	if _, ok := folders[folder]; !ok {
		return "", ErrUnknownFolder
	}

	name := uuid.New().String() + safeExt(file.Filename)
	if err := s.write(filepath.Join(s.root, folder, name), file); err != nil {
		return "", err
	}
	return servePrefix + folder + "/" + name, nil
}

// SaveAsset stores a file under a stable slot key in the assets folder,
// removing any prior file sharing that key regardless of extension.
func (s *DiskStorage) SaveAsset(key string, file *multipart.FileHeader) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", errors.New("empty asset key")
	}

	dir := filepath.Join(s.root, FolderAssets)
	matches, err := filepath.Glob(filepath.Join(dir, key+".*"))
	if err == nil {
		for _, old := range matches {
			if err := os.Remove(old); err != nil {
				s.logger.Warn("removing replaced asset failed",
					zap.String("path", old),
					zap.Error(err))
			}
		}
	}

	name := key + safeExt(file.Filename)
	if err := s.write(filepath.Join(dir, name), file); err != nil {
		return "", err
	}
	return servePrefix + FolderAssets + "/" + name, nil
}

// Delete removes a previously stored file given its serving path. Paths
// outside the serving prefix are ignored.
func (s *DiskStorage) Delete(servingPath string) error {
	rel, ok := strings.CutPrefix(servingPath, servePrefix)
	if !ok {
		return nil
	}
	parts := strings.SplitN(rel, "/", 2)
	if len(parts) != 2 {
		return nil
	}
	folder, name := parts[0], filepath.Base(parts[1])
	if _, known := folders[folder]; !known {
		return nil
	}
	return os.Remove(filepath.Join(s.root, folder, name))
}

// FilePath resolves a folder and file name to an on-disk path, rejecting
// traversal attempts.
func (s *DiskStorage) FilePath(folder, name string) (string, error) {
	if _, ok := folders[folder]; !ok {
		return "", ErrUnknownFolder
	}
	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == "" {
		return "", errors.New("invalid file name")
	}
	return filepath.Join(s.root, folder, clean), nil
}

func (s *DiskStorage) write(path string, file *multipart.FileHeader) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// safeExt keeps only a plausible extension from the client filename
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// sanitizeKey restricts asset slot keys to a safe character set
func sanitizeKey(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
