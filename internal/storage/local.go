package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
	ErrOutsideRoot     = errors.New("url does not belong to this store")
)

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Local writes uploads under Root and serves them under BaseURL.
type Local struct {
	Root     string
	BaseURL  string
	MaxBytes int64
}

func NewLocal(root, baseURL string, maxBytes int64) *Local {
	return &Local{
		Root:     root,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		MaxBytes: maxBytes,
	}
}

// Save stores an image in folder and returns its public URL. The type is
// sniffed from content, never taken from the client.
func (l *Local) Save(ctx context.Context, folder, nameHint string, body io.Reader) (string, error) {
	log := logger.ForLayer(ctx, "storage", "Save")

	data, err := io.ReadAll(io.LimitReader(body, l.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > l.MaxBytes {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImages[contentType]
	if !ok {
		log.Warn("rejected upload", zap.String("content_type", contentType))
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	name := uuid.NewString() + ext
	if slug := utils.Slugify(nameHint); slug != "" {
		name = slug + "-" + name
	}

	dir := filepath.Join(l.Root, filepath.Clean("/"+folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	url := path.Join(l.BaseURL, folder, name)
	log.Info("file stored", zap.String("url", url), zap.Int("bytes", len(data)))
	return url, nil
}

// Delete removes the file behind url. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, url string) error {
	p, err := l.pathFor(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	logger.ForLayer(ctx, "storage", "Delete").Debug("file removed", zap.String("url", url))
	return nil
}

func (l *Local) pathFor(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, l.BaseURL+"/")
	if !ok {
		return "", ErrOutsideRoot
	}
	clean := filepath.Clean("/" + rel)
	if clean == "/" {
		return "", ErrOutsideRoot
	}
	return filepath.Join(l.Root, clean), nil
}

// Handler serves stored files read-only, without directory listings.
func (l *Local) Handler() http.Handler {
	fs := http.FileServer(http.Dir(l.Root))
	return http.StripPrefix(l.BaseURL, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}
