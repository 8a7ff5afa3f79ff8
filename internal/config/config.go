package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr       = ":8000"
	defaultDatabaseURL    = "cms.db"
	defaultLogSQL         = "false"
	defaultStorageMode    = "local"
	defaultLocalDir       = "./uploads"
	defaultLocalURLPrefix = "/static/uploads"
	defaultUploadTimeout  = "30s"
	defaultMaxImageBytes  = "10485760" // 10 MiB
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs-emulator"
	StorageModeLocal       StorageMode = "local"
)

type StorageConfig struct {
	Mode           StorageMode
	Bucket         string
	PublicBaseURL  string
	EmulatorHost   string
	LocalDir       string
	LocalURLPrefix string
}

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	LogSQL             bool
	CORSAllowedOrigins []string

	Storage       StorageConfig
	UploadTimeout time.Duration
	UploadTempDir string
	MaxImageBytes int64
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.LogSQL = parseBoolEnv("DB_LOG_SQL", defaultLogSQL)
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	cfg.Storage = StorageConfig{
		Mode:           StorageMode(strings.ToLower(strings.TrimSpace(getEnv("OBJECT_STORAGE_MODE", defaultStorageMode)))),
		Bucket:         strings.TrimSpace(getEnv("STORAGE_BUCKET_NAME", os.Getenv("S3_BUCKET_NAME"))),
		PublicBaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_PUBLIC_BASE_URL")), "/"),
		EmulatorHost:   strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/"),
		LocalDir:       strings.TrimSpace(getEnv("LOCAL_STORAGE_DIR", defaultLocalDir)),
		LocalURLPrefix: strings.TrimRight(strings.TrimSpace(getEnv("LOCAL_STORAGE_URL_PREFIX", defaultLocalURLPrefix)), "/"),
	}
	if cfg.Storage.PublicBaseURL == "" && cfg.Storage.Bucket != "" && cfg.Storage.Mode == StorageModeGCS {
		cfg.Storage.PublicBaseURL = "https://storage.googleapis.com/" + cfg.Storage.Bucket
	}

	var err error
	cfg.UploadTimeout, err = parseDurationEnv("UPLOAD_TIMEOUT", defaultUploadTimeout)
	if err != nil {
		return nil, err
	}
	cfg.UploadTempDir = strings.TrimSpace(getEnv("UPLOAD_TEMP_DIR", os.TempDir()))

	cfg.MaxImageBytes, err = parseInt64Env("MAX_IMAGE_BYTES", defaultMaxImageBytes)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProd reports whether the config targets a production-like environment.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.UploadTimeout <= 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT must be > 0")
	}
	if cfg.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0")
	}

	switch cfg.Storage.Mode {
	case StorageModeGCS:
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET_NAME is required when OBJECT_STORAGE_MODE=%s", cfg.Storage.Mode)
		}
	case StorageModeGCSEmulator:
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET_NAME is required when OBJECT_STORAGE_MODE=%s", cfg.Storage.Mode)
		}
		if cfg.Storage.EmulatorHost == "" {
			return fmt.Errorf("STORAGE_EMULATOR_HOST is required when OBJECT_STORAGE_MODE=%s", cfg.Storage.Mode)
		}
	case StorageModeLocal:
		if cfg.Storage.LocalDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR must not be empty")
		}
		if !strings.HasPrefix(cfg.Storage.LocalURLPrefix, "/") {
			return fmt.Errorf("LOCAL_STORAGE_URL_PREFIX must start with /")
		}
	default:
		return fmt.Errorf("OBJECT_STORAGE_MODE must be one of: gcs, gcs-emulator, local (got %q)", cfg.Storage.Mode)
	}

	if isProdLike(cfg.AppEnv) && cfg.Storage.Mode != StorageModeGCS {
		return fmt.Errorf("in prod/release OBJECT_STORAGE_MODE must be gcs")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
