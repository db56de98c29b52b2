package service

import (
	"fmt"
	"io"

	"github.com/Gentlecoder1/social-app/internal/models"
)

// DefaultMaxUploadBytes is the upload ceiling when none is configured.
const DefaultMaxUploadBytes int64 = 12 << 20

// MediaFile is an uploaded file as received from the client.
type MediaFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// checkMedia validates the file before anything is uploaded.
func checkMedia(m *MediaFile, maxBytes int64) (models.MediaType, error) {
	kind, ok := models.DetectMediaType(m.Filename)
	if !ok {
		return models.MediaNone, models.NewValidationError("Unsupported file type")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if m.Size > maxBytes {
		return models.MediaNone, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxBytes>>20))
	}
	return kind, nil
}
