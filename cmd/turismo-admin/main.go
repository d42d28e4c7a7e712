// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/turismo-admin/internal/config"
	"github.com/olegiv/turismo-admin/internal/geoip"
	"github.com/olegiv/turismo-admin/internal/handler"
	"github.com/olegiv/turismo-admin/internal/logging"
	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/render"
	"github.com/olegiv/turismo-admin/internal/scheduler"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/session"
	"github.com/olegiv/turismo-admin/internal/storage"
	"github.com/olegiv/turismo-admin/internal/store"
	"github.com/olegiv/turismo-admin/internal/version"
	"github.com/olegiv/turismo-admin/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Turismo Curitiba Admin - administration panel for the Turismo Curitiba app\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_SESSION_SECRET      Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_DB_PATH             SQLite database path (default: ./data/turismo.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_SERVER_PORT         Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_STORAGE_BACKEND     Image storage: local|gcs (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_STORAGE_BUCKET      Bucket name (default: turismo-curitiba)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_STORAGE_DIR         Local bucket root (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_PUBLIC_URL          Public origin of local images (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_BOOTSTRAP_EMAIL     Bootstrap administrator email\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_BOOTSTRAP_PASSWORD  Bootstrap administrator password (empty disables it)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_GEOIP_DB_PATH       GeoLite2-Country database for audit entries (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TURISMO_REDIS_URL           Redis URL for the session store (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Warnings and errors are also kept in the audit log
	logger = slog.New(logging.NewAuditLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("sample content seeded")
	}

	sessionManager, closeSessions, err := newSessionManager(cfg, db)
	if err != nil {
		return err
	}
	defer closeSessions()

	bucket, imageOrigin, closeBucket, err := newBucket(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBucket()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, audit entries will have no country", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = resolver.Close() }()

	mediaService := service.NewMediaService(db, bucket, logger)
	contentService := service.NewContentService(db, mediaService, logger)
	statisticsService := service.NewStatisticsService(db)
	auditService := service.NewAuditService(db, logger)
	auditService.SetCountryResolver(resolver.Country)
	authService := service.NewAuthService(db, service.Bootstrap{
		Email:    cfg.BootstrapEmail,
		Password: cfg.BootstrapPassword,
		Name:     cfg.BootstrapName,
	}, logger)
	if !cfg.BootstrapEnabled() {
		slog.Info("bootstrap administrator disabled")
	}

	jobs := scheduler.New(logger)
	schedule := []scheduler.Job{
		scheduler.MediaReconcileJob(mediaService, logger),
		scheduler.AuditRetentionJob(auditService, logger),
	}
	if resolver.Enabled() {
		schedule = append(schedule, scheduler.GeoIPReloadJob(resolver))
	}
	for _, job := range schedule {
		if err := jobs.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	jobs.Start()
	defer jobs.Stop()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	pages := handler.NewPages(renderer, cfg.IsProduction())
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	r, err := newRouter(routerDeps{
		cfg:             cfg,
		db:              db,
		sessions:        sessionManager,
		pages:           pages,
		loginProtection: loginProtection,
		imageOrigin:     imageOrigin,
		bucket:          bucket,
		health:          handler.NewHealthHandler(db, buildInfo()),
		auth:            handler.NewAuthHandler(authService, auditService, pages, sessionManager, loginProtection),
		dashboard:       handler.NewDashboardHandler(db, contentService, statisticsService, auditService, pages),
		settings:        handler.NewSettingsHandler(authService, auditService, jobs, pages),
		api:             handler.NewAPIHandler(contentService, statisticsService, auditService, pages.ShowDetail()),
		audit:           auditService,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // multipart uploads of up to 5 images
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newSessionManager keeps sessions in Redis when configured, otherwise in SQLite.
func newSessionManager(cfg *config.Config, db *sql.DB) (*scs.SessionManager, func(), error) {
	if !cfg.UseRedisSessions() {
		slog.Info("session manager initialized", "store", "sqlite")
		return session.New(db, cfg.IsDevelopment()), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.Info("session manager initialized", "store", "redis", "addr", opts.Addr)
	return session.NewRedis(client, cfg.IsDevelopment()), func() { _ = client.Close() }, nil
}

// newBucket opens the configured image bucket and returns the origin its
// public URLs point at.
func newBucket(ctx context.Context, cfg *config.Config) (storage.Bucket, string, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageGCS:
		b, err := storage.NewGCSBucket(ctx, cfg.StorageBucket)
		if err != nil {
			return nil, "", nil, fmt.Errorf("opening gcs bucket: %w", err)
		}
		slog.Info("image storage initialized", "backend", "gcs", "bucket", cfg.StorageBucket)
		return b, storage.GCSBaseURL, func() {
			if err := b.Close(); err != nil {
				slog.Error("error closing storage client", "error", err)
			}
		}, nil
	default:
		b, err := storage.NewLocalBucket(cfg.StorageDir, cfg.StorageBucket, cfg.PublicURL)
		if err != nil {
			return nil, "", nil, fmt.Errorf("opening local bucket: %w", err)
		}
		slog.Info("image storage initialized", "backend", "local", "dir", b.Dir())
		return b, cfg.PublicURL, func() {}, nil
	}
}
