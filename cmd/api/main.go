package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"daylog/internal/config"
	"daylog/internal/database"
	"daylog/internal/domain/journal"
	"daylog/internal/domain/upload"
	"daylog/internal/metrics"
	"daylog/internal/middleware"
	"daylog/internal/pkg/logger"
	"daylog/internal/pkg/objectstore"
	"daylog/internal/pkg/response"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) error {
	db, err := database.Connect(cfg.DatabaseURL, appLogger, cfg.LogSQL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, &upload.Asset{}, &journal.Day{}, &journal.Post{}); err != nil {
		return err
	}

	store, err := objectstore.New(ctx, cfg.Storage, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	uploadService := upload.NewService(upload.NewRepository(db), store, appLogger, upload.Options{
		TempDir:       cfg.UploadTempDir,
		UploadTimeout: cfg.UploadTimeout,
		MaxImageBytes: cfg.MaxImageBytes,
	})
	journalService := journal.NewService(journal.NewRepository(db), appLogger)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", healthz(db))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.Storage.Mode == config.StorageModeLocal {
		r.Static(cfg.Storage.LocalURLPrefix, cfg.Storage.LocalDir)
	}

	upload.RegisterRoutes(r, upload.NewHandler(uploadService))
	journal.RegisterRoutes(r, journal.NewHandler(journalService))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("listening", "addr", cfg.HTTPAddr, "storage", string(cfg.Storage.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	// in-flight uploads are bounded by UploadTimeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.UploadTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
