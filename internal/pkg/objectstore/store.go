package objectstore

import (
	"context"
	"fmt"
	"io"

	"daylog/internal/config"
	"daylog/internal/pkg/logger"
)

// Store is a flat key/value object store that can hand out public URLs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	MakePublic(ctx context.Context, key string) error
	PublicBaseURL() string
	Close() error
}

// New builds the backend selected by cfg.Mode.
func New(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (Store, error) {
	switch cfg.Mode {
	case config.StorageModeGCS, config.StorageModeGCSEmulator:
		return NewGCS(ctx, cfg, log)
	case config.StorageModeLocal:
		return NewLocal(cfg.LocalDir, cfg.LocalURLPrefix)
	default:
		return nil, fmt.Errorf("unknown object storage mode %q", cfg.Mode)
	}
}
