// Package storage uploads user media to the configured object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gentlecoder1/social-app/internal/config"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/observability"

	"github.com/google/uuid"
)

// UploadFailedMessage is the only upload error text clients ever see.
const UploadFailedMessage = "Upload failed, please try again"

// DefaultUploadTimeout bounds a single upload when none is configured.
const DefaultUploadTimeout = 30 * time.Second

// Category decides the folder an object lands in.
type Category string

const (
	CategoryProfile Category = "profile"
	CategoryCover   Category = "cover"
	CategoryPost    Category = "post"
)

// Prefix returns the object key prefix for the category.
func (c Category) Prefix() string {
	switch c {
	case CategoryProfile:
		return "profile_pics/"
	case CategoryCover:
		return "cover_photos/"
	case CategoryPost:
		return "post_media/"
	default:
		return "misc/"
	}
}

// ObjectKey builds a collision-free key that keeps the lowercased extension
// of filename.
func ObjectKey(category Category, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return category.Prefix() + strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// Uploader stores a media stream and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename string, category Category) (string, error)
}

// Backend writes a staged file to its final location.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, f *os.File, contentType string) (publicURL string, err error)
}

// StagingUploader copies the incoming stream to a temporary file and hands
// that file to a Backend. The temporary file never outlives Upload.
type StagingUploader struct {
	backend Backend
	tempDir string
	timeout time.Duration
}

// StagingOptions tunes a StagingUploader. Zero values fall back to the OS temp
// dir and DefaultUploadTimeout.
type StagingOptions struct {
	TempDir string
	Timeout time.Duration
}

// NewStagingUploader wraps backend.
func NewStagingUploader(backend Backend, opts StagingOptions) *StagingUploader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultUploadTimeout
	}
	return &StagingUploader{backend: backend, tempDir: opts.TempDir, timeout: opts.Timeout}
}

// Upload stages r and uploads it under a key derived from category and
// filename. Any failure is returned as an UPSTREAM_ERROR AppError.
func (u *StagingUploader) Upload(ctx context.Context, r io.Reader, filename string, category Category) (string, error) {
	start := time.Now()
	key := ObjectKey(category, filename)

	url, err := u.upload(ctx, r, key)
	observability.MediaUploadLatency.WithLabelValues(u.backend.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MediaUploads.WithLabelValues(u.backend.Name(), "error").Inc()
		middleware.Logger.ErrorContext(ctx, "media upload failed",
			"backend", u.backend.Name(),
			"key", key,
			"error", err,
		)
		return "", models.NewUpstreamError(UploadFailedMessage, err)
	}
	observability.MediaUploads.WithLabelValues(u.backend.Name(), "ok").Inc()
	return url, nil
}

func (u *StagingUploader) upload(ctx context.Context, r io.Reader, key string) (string, error) {
	tmp, err := os.CreateTemp(u.tempDir, "upload-*"+filepath.Ext(key))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			middleware.Logger.Warn("failed to remove staging file", "path", tmp.Name(), "error", rmErr)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind staging file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	url, err := u.backend.Put(ctx, key, tmp, contentTypeFor(key))
	if err != nil {
		return "", fmt.Errorf("%s put %s: %w", u.backend.Name(), key, err)
	}
	return url, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// NewFromConfig builds the Uploader selected by STORAGE_BACKEND.
func NewFromConfig(cfg *config.Config) (Uploader, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.StorageBackend {
	case "", config.StorageLocal:
		backend, err = NewLocalBackend(cfg.LocalUploadDir, cfg.LocalPublicBaseURL)
	case config.StorageS3:
		backend, err = NewS3Backend(cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
	case config.StorageSupabase:
		backend = NewSupabaseBackend(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}
	return NewStagingUploader(backend, StagingOptions{
		Timeout: time.Duration(cfg.UploadTimeoutSeconds) * time.Second,
	}), nil
}
