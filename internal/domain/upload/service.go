package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"daylog/internal/metrics"
	"daylog/internal/pkg/logger"
)

const (
	DefaultUploadTimeout = 30 * time.Second
	DefaultMaxImageBytes = 10 * 1024 * 1024
)

// ObjectStore is the subset of object storage the pipeline needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	MakePublic(ctx context.Context, key string) error
	PublicBaseURL() string
}

type Options struct {
	TempDir       string
	UploadTimeout time.Duration
	MaxImageBytes int64
}

// Service turns base64 image payloads into public objects plus Asset rows.
type Service struct {
	repo  Repository
	store ObjectStore
	log   *logger.Logger
	opts  Options

	now     func() time.Time
	newSalt func() (string, error)
}

func NewService(repo Repository, store ObjectStore, log *logger.Logger, opts Options) *Service {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	return &Service{
		repo:    repo,
		store:   store,
		log:     log.With("service", "UploadService"),
		opts:    opts,
		now:     time.Now,
		newSalt: newSalt,
	}
}

// Upload ingests imageData and records the resulting Asset.
// Nothing is written to the database unless the object is stored and public.
func (s *Service) Upload(ctx context.Context, imageData string) (*Asset, error) {
	asset, err := s.Ingest(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		s.log.Error("failed to save asset record", "key", asset.Key(), "error", err)
		return nil, fmt.Errorf("failed to save asset record: %w", err)
	}
	return asset, nil
}

// Ingest validates and decodes imageData, uploads it under {salt}.{ext}
// with public-read access and returns the unsaved Asset.
func (s *Service) Ingest(ctx context.Context, imageData string) (*Asset, error) {
	asset, err := s.ingest(ctx, imageData)
	result := ingestResult(err)
	metrics.RecordIngest(result)
	if err != nil {
		s.log.Warn("image ingestion failed", "result", result, "error", err)
		return nil, err
	}
	s.log.Info("image ingested", "key", asset.Key(), "width", asset.Width, "height", asset.Height)
	return asset, nil
}

func (s *Service) ingest(ctx context.Context, imageData string) (*Asset, error) {
	img, err := decodeImageData(imageData, s.opts.MaxImageBytes)
	if err != nil {
		return nil, err
	}

	salt, err := s.newSalt()
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		ID:        uuid.New().String(),
		BaseURL:   s.store.PublicBaseURL(),
		Salt:      salt,
		Extension: img.Extension,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: s.now(),
	}

	if err := s.upload(ctx, asset.Key(), img.MimeType, img.Data); err != nil {
		return nil, err
	}
	return asset, nil
}

// upload stages data in a temp file named after key, streams it to the
// store and makes it public. The temp file is removed on every path.
func (s *Service) upload(ctx context.Context, key, contentType string, data []byte) error {
	tmpPath := filepath.Join(s.opts.TempDir, key)
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("%w: write temp file: %w", ErrStorage, err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to remove temp file", "path", tmpPath, "error", err)
		}
	}()

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: open temp file: %w", ErrStorage, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, s.opts.UploadTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.ObserveUpload(time.Since(start)) }()

	if err := s.store.Put(ctx, key, f, contentType); err != nil {
		return fmt.Errorf("%w: upload %s: %w", ErrStorage, key, err)
	}
	if err := s.store.MakePublic(ctx, key); err != nil {
		return fmt.Errorf("%w: set public-read on %s: %w", ErrStorage, key, err)
	}
	return nil
}

func ingestResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrImageDataMissing):
		return "missing"
	case errors.Is(err, ErrUnsupportedMediaType):
		return "unsupported_media_type"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrCorruptImage):
		return "corrupt_image"
	case errors.Is(err, ErrImageTooLarge):
		return "too_large"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}
