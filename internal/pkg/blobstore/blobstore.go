package blobstore

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/env"
)

// Storage is the opaque blob-store boundary. The rest of the system only ever
// handles keys and URLs, never raw bytes.
type Storage interface {
	Store(file *multipart.FileHeader) (key string, err error)
	URLFor(key string) string
}

// Setup selects the configured blob store: S3 when BLOB_STORE=s3, local disk
// otherwise.
func Setup() (Storage, error) {
	if env.GetEnv("BLOB_STORE", "local") == "s3" {
		cfg, err := LoadS3Config()
		if err != nil {
			return nil, err
		}
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(
		env.GetEnv("UPLOAD_DIR", "./uploads"),
		env.GetEnv("PUBLIC_BASE_URL", "http://localhost:4000"),
	)
}

type localStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates a disk-backed blob store rooted at dir.
func NewLocalStorage(dir, baseURL string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &localStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *localStorage) Store(file *multipart.FileHeader) (string, error) {
	key := NewObjectKey(file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", key, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}

	log.Debugf("[BlobStore] Stored %s (%d bytes)", key, file.Size)
	return key, nil
}

func (s *localStorage) URLFor(key string) string {
	return s.baseURL + "/uploads/" + key
}

// NewObjectKey generates a unique storage key preserving the original file
// extension.
func NewObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String()[:8], ext)
}
