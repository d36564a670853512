// Package storage keeps uploaded files on local disk under names the server
// chooses.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/apperr"
)

// PublicPrefix is the static route uploaded files are served from.
const PublicPrefix = "/uploads"

var (
	ErrFileTooLarge        = apperr.Validation("File too large")
	ErrUnsupportedFileType = apperr.Validation("Unsupported file type. Allowed: png, jpg, jpeg, gif, webp, pdf")
)

// allowedExts are the only extensions written under PublicPrefix, which is
// served from the API origin.
var allowedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".pdf": true,
}

// Uploads stores a multipart file and returns its public URL.
type Uploads interface {
	Save(file *multipart.FileHeader, prefix string) (string, error)
}

type Local struct {
	dir      string
	maxBytes int64
}

func NewLocal(dir string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxBytes: maxBytes}, nil
}

func (l *Local) Dir() string { return l.dir }

// Save writes file as <prefix>_<uuid><ext>. Only the client's extension is
// kept from the original name, and it must be in allowedExts.
func (l *Local) Save(file *multipart.FileHeader, prefix string) (string, error) {
	if l.maxBytes > 0 && file.Size > l.maxBytes {
		return "", ErrFileTooLarge
	}
	ext, ok := allowedExt(file.Filename)
	if !ok {
		return "", ErrUnsupportedFileType
	}

	name := uuid.NewString() + ext
	if prefix != "" {
		name = prefix + "_" + name
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return PublicPrefix + "/" + name, nil
}

func allowedExt(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, allowedExts[ext]
}
