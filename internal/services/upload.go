package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/storage"

	"github.com/google/uuid"
)

// allowedExtensions maps each accepted extension to the content type used
// when the client did not send a usable one.
var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
}

// MediaFile is an uploaded file as received from a client.
type MediaFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type StoredFile struct {
	Name        string
	URL         string
	ContentType string
}

type UploadService struct {
	storage storage.Storage
	maxSize int64
	logger  logging.Logger
	newName func(ext string) string
}

func NewUploadService(st storage.Storage, maxSize int64, logger logging.Logger) *UploadService {
	return &UploadService{
		storage: st,
		maxSize: maxSize,
		logger:  logger,
		newName: func(ext string) string {
			return strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
		},
	}
}

// extension returns the lower-cased extension of name if it is allowed.
func extension(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", common.ErrUnsupportedType
	}
	return ext, nil
}

// Store validates f and writes it under a fresh random name.
func (s *UploadService) Store(ctx context.Context, f *MediaFile) (*StoredFile, error) {
	if f == nil || f.Reader == nil {
		return nil, common.ErrMissingFile
	}
	ext, err := extension(f.Filename)
	if err != nil {
		return nil, err
	}
	if f.Size > s.maxSize {
		return nil, common.ErrFileTooLarge
	}

	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = allowedExtensions[ext]
	}

	name := s.newName(ext)
	url, err := s.storage.Save(ctx, name, &sizeGuard{r: f.Reader, remaining: s.maxSize}, contentType)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "file stored", "name", name, "content_type", contentType)
	return &StoredFile{Name: name, URL: url, ContentType: contentType}, nil
}

// Remove deletes a stored file; failures are logged, not returned, since the
// caller is already unwinding another error.
func (s *UploadService) Remove(ctx context.Context, name string) {
	if err := s.storage.Delete(ctx, name); err != nil {
		s.logger.Warn(ctx, "failed to remove orphaned upload", "name", name, "error", err)
	}
}

// mediaType is "video" for video/* content and "image" otherwise.
func mediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video") {
		return models.MediaVideo
	}
	return models.MediaImage
}

// sizeGuard fails the read once more than remaining bytes have passed through.
type sizeGuard struct {
	r         io.Reader
	remaining int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.remaining -= int64(n)
	if g.remaining < 0 {
		return n, common.ErrFileTooLarge
	}
	return n, err
}
