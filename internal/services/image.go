package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"eventboard-backend/internal/metrics"
	"eventboard-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const fallbackUploadName = "upload"

// Upload is an image file received with a request
type Upload struct {
	Filename    string
	ContentType string
	File        io.Reader
}

// ImageService turns uploads into stored inline images
type ImageService struct {
	stager        Stager
	cleanupStaged bool
	now           func() time.Time
}

// NewImageService creates a new image service. With cleanupStaged set the
// staged artifact is removed once it has been encoded.
func NewImageService(stager Stager, cleanupStaged bool) *ImageService {
	return &ImageService{
		stager:        stager,
		cleanupStaged: cleanupStaged,
		now:           time.Now,
	}
}

// Ingest stages the upload, reads it back and returns it as an inline JPEG
// data URI. The declared content type is not inspected.
func (s *ImageService) Ingest(ctx context.Context, upload *Upload) (models.Image, error) {
	logger := log.Ctx(ctx)

	if upload == nil || upload.File == nil {
		metrics.ImageIngestTotal.WithLabelValues("missing").Inc()
		return models.Image{}, ErrMissingImage
	}

	if ct := upload.ContentType; ct != "" && !strings.EqualFold(ct, "image/jpeg") {
		logger.Debug().
			Str("filename", upload.Filename).
			Str("content_type", ct).
			Msg("Upload labelled as image/jpeg regardless of declared type")
	}

	name := s.stagingName(upload.Filename)
	key, err := s.stager.Stage(ctx, name, upload.File)
	if err != nil {
		metrics.ImageIngestTotal.WithLabelValues("io_error").Inc()
		return models.Image{}, fmt.Errorf("%w: failed to stage %s: %w", ErrImageIO, name, err)
	}

	data, err := s.stager.Read(ctx, key)
	if err != nil {
		metrics.ImageIngestTotal.WithLabelValues("io_error").Inc()
		return models.Image{}, fmt.Errorf("%w: failed to read staged %s: %w", ErrImageIO, key, err)
	}

	if s.cleanupStaged {
		if err := s.stager.Remove(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to remove staged upload")
		}
	}

	metrics.ImageIngestTotal.WithLabelValues("ok").Inc()
	metrics.ImageIngestBytes.Observe(float64(len(data)))

	logger.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Image ingested")

	return models.EncodeInline(data), nil
}

// stagingName is "<unix millis>_<original base name>".
func (s *ImageService) stagingName(original string) string {
	base := filepath.Base(filepath.ToSlash(original))
	if base == "." || base == "/" || base == "" {
		base = fallbackUploadName
	}
	return fmt.Sprintf("%d_%s", s.now().UnixMilli(), base)
}

// ingestOptional returns nil when no upload was supplied.
func (s *ImageService) ingestOptional(ctx context.Context, upload *Upload) (*models.Image, error) {
	if upload == nil {
		return nil, nil
	}
	img, err := s.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	return &img, nil
}
