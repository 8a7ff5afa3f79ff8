package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"daylog/internal/config"
	"daylog/internal/pkg/logger"
)

// GCSStore writes objects into a single Google Cloud Storage bucket.
// Credentials come from the environment (ADC); nothing is passed explicitly.
type GCSStore struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCS(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing bucket name")
	}

	opts, publicBase := clientOptions(cfg)
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := newGCSStore(client, cfg.Bucket, publicBase, log)
	s.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"public_base_url", s.publicBaseURL,
	)
	return s, nil
}

// clientOptions returns the client options for cfg and the public base URL
// objects will be served from.
func clientOptions(cfg config.StorageConfig) ([]option.ClientOption, string) {
	publicBase := cfg.PublicBaseURL
	if cfg.Mode == config.StorageModeGCSEmulator {
		host := emulatorBaseURL(cfg.EmulatorHost)
		if publicBase == "" {
			publicBase = host + "/" + cfg.Bucket
		}
		return []option.ClientOption{
			option.WithEndpoint(host + "/storage/v1/"),
			option.WithoutAuthentication(),
		}, publicBase
	}

	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return []option.ClientOption{option.WithScopes(storage.ScopeFullControl)}, publicBase
}

// emulatorBaseURL accepts "host:port" as well as a full URL.
func emulatorBaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

func newGCSStore(client *storage.Client, bucket, publicBase string, log *logger.Logger) *GCSStore {
	return &GCSStore{
		log:           log.With("service", "GCSStore"),
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
	}
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %q to bucket %q: %w", key, s.bucket, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %q: %w", key, err)
	}
	return nil
}

// MakePublic grants allUsers read access on the object.
func (s *GCSStore) MakePublic(ctx context.Context, key string) error {
	acl := s.client.Bucket(s.bucket).Object(key).ACL()
	if err := acl.Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return fmt.Errorf("failed to set public-read on %q: %w", key, err)
	}
	return nil
}

func (s *GCSStore) PublicBaseURL() string { return s.publicBaseURL }

func (s *GCSStore) Close() error { return s.client.Close() }
