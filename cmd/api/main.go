package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	"github.com/BruksfildServices01/detailing-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/detailing-scheduler/internal/db"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/detailing-scheduler/internal/logger"
	"github.com/BruksfildServices01/detailing-scheduler/internal/media"
	"github.com/BruksfildServices01/detailing-scheduler/internal/metrics"
	"github.com/BruksfildServices01/detailing-scheduler/internal/routes"
	ucOrder "github.com/BruksfildServices01/detailing-scheduler/internal/usecase/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/validators"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	sugar, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		sugar.Fatalw("database unavailable", "error", err)
	}

	validators.SetDefaultPhoneRegion(cfg.PhoneRegion)

	ctx := context.Background()
	if err := dbpkg.EnsureAdmin(ctx, db, strings.ToLower(cfg.AdminUsername), cfg.AdminPassword, sugar); err != nil {
		sugar.Fatalw("bootstrap admin failed", "error", err)
	}

	// --------------------------------------------------
	// Idempotency keys: Redis when configured
	// --------------------------------------------------
	var idem ucOrder.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			sugar.Fatalw("redis unavailable", "error", err)
		}
		defer client.Close()
		idem = cache.NewRedisIdempotencyStore(client)
		sugar.Infow("idempotency keys stored in redis")
	}

	// --------------------------------------------------
	// Media storage (optional)
	// --------------------------------------------------
	var uploader *media.Uploader
	s3cfg := storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}
	if s3cfg.Enabled() {
		uploader = media.NewUploader(media.NewProcessor(), storage.NewS3Storage(s3cfg))
	} else {
		sugar.Warnw("S3 storage not configured, media uploads disabled")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	dispatcher := audit.NewDispatcher(audit.New(db), sugar, 256)

	r := routes.NewEngine(cfg.AppEnv)
	routes.RegisterRoutes(r, routes.Deps{
		DB:          db,
		Config:      cfg,
		Log:         sugar,
		Metrics:     m,
		Audit:       dispatcher,
		Idempotency: idem,
		Uploader:    uploader,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sugar.Infow("server running", "addr", cfg.Addr(), "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), routes.ShutdownTimeout(cfg))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server forced to shutdown", "error", err)
	}

	dispatcher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	sugar.Infow("server stopped")
}
