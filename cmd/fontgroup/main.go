package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/fontgroup/internal/database"
	"github.com/dukerupert/fontgroup/internal/logging"
	"github.com/dukerupert/fontgroup/internal/middleware"
	"github.com/dukerupert/fontgroup/internal/server"
	"github.com/dukerupert/fontgroup/internal/storage"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logging.Setup(os.Getenv("FONTGROUP_LOG_LEVEL"), os.Getenv("FONTGROUP_LOG_FORMAT"))

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(logger *slog.Logger) error {
	port := envOr("FONTGROUP_PORT", "8080")
	baseURL := envOr("FONTGROUP_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(envOr("FONTGROUP_DB_PATH", "fontgroup.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := openStorage(logger)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Admin: middleware.Credentials{
			Username:     os.Getenv("FONTGROUP_ADMIN_USER"),
			PasswordHash: os.Getenv("FONTGROUP_ADMIN_PASSWORD_HASH"),
		},
	}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		cfg.OriginPatterns = []string{u.Host}
	}
	if cfg.Admin.Enabled() {
		logger.Info("admin authentication enabled", "user", cfg.Admin.Username)
	} else {
		logger.Warn("admin authentication disabled; set FONTGROUP_ADMIN_USER and FONTGROUP_ADMIN_PASSWORD_HASH to enable")
	}

	srv, err := server.New(db, files, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("fontgroup running", "url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Rate limiter cleanup
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStorage picks the S3 bucket when one is configured, else local disk.
func openStorage(logger *slog.Logger) (storage.Storage, error) {
	s3cfg := storage.S3Config{
		Endpoint:  os.Getenv("FONTGROUP_S3_ENDPOINT"),
		Bucket:    os.Getenv("FONTGROUP_S3_BUCKET"),
		Region:    os.Getenv("FONTGROUP_S3_REGION"),
		AccessKey: os.Getenv("FONTGROUP_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("FONTGROUP_S3_SECRET_KEY"),
		Prefix:    os.Getenv("FONTGROUP_S3_PREFIX"),
	}
	if s3cfg.Enabled() {
		logger.Info("storing fonts in S3", "bucket", s3cfg.Bucket, "endpoint", s3cfg.Endpoint)
		return storage.NewS3(s3cfg), nil
	}

	dir := envOr("FONTGROUP_UPLOAD_DIR", "uploads")
	logger.Info("storing fonts on disk", "dir", dir)
	return storage.NewDisk(dir)
}
