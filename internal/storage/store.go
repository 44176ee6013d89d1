package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/altibbe/hedamo/internal/config"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedType = errors.New("unsupported_file_type")
	ErrTooLarge        = errors.New("file_too_large")
	ErrNotFound        = errors.New("file_not_found")
)

// allowed image extensions and their MIME prefixes
var allowedImageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Store keeps uploaded images and generated report artifacts on local disk,
// addressable by a public /uploads path.
type Store struct {
	dir     string
	maxSize int64
	log     *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	maxSize := cfg.MaxUploadSize
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}

	return &Store{
		dir:     dir,
		maxSize: maxSize,
		log:     log.Named("storage"),
	}, nil
}

// Dir returns the on-disk root served at /uploads.
func (s *Store) Dir() string { return s.dir }

// MaxSize returns the upload size cap in bytes.
func (s *Store) MaxSize() int64 { return s.maxSize }

// SaveImage validates and persists an uploaded image, returning its public
// path. Both the extension and the declared content type must be on the
// allow-list.
func (s *Store) SaveImage(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	wantMIME, ok := allowedImageTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), wantMIME) {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	name := fmt.Sprintf("image-%s%s", newFileID(), ext)
	if err := s.write(name, data); err != nil {
		return "", err
	}

	s.log.Debug("image stored",
		zap.String("file", name),
		zap.Int("bytes", len(data)),
	)
	return publicPath(name), nil
}

// SaveArtifact persists a generated document under the given base name and
// returns its public path.
func (s *Store) SaveArtifact(ctx context.Context, baseName string, data []byte) (string, error) {
	_ = ctx
	name := fmt.Sprintf("%s-%s.pdf", sanitizeBase(baseName), newFileID())
	if err := s.write(name, data); err != nil {
		return "", err
	}
	return publicPath(name), nil
}

// Resolve maps a public /uploads path back to an on-disk file, refusing
// anything that escapes the store root.
func (s *Store) Resolve(publicURL string) (string, error) {
	name := strings.TrimPrefix(publicURL, "/uploads/")
	if name == publicURL || name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", ErrNotFound
	}

	full := filepath.Join(s.dir, name)
	if _, err := os.Stat(full); err != nil {
		return "", ErrNotFound
	}
	return full, nil
}

func (s *Store) write(name string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func publicPath(name string) string {
	return "/uploads/" + name
}

func sanitizeBase(base string) string {
	if s := slug.Make(base); s != "" {
		return s
	}
	return "artifact"
}

func newFileID() string {
	return strings.ToLower(ulid.Make().String())
}
