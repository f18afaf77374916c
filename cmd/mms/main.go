// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/cache"
	"github.com/olegiv/mms-go/internal/config"
	"github.com/olegiv/mms-go/internal/geoip"
	"github.com/olegiv/mms-go/internal/handler/api"
	"github.com/olegiv/mms-go/internal/mail"
	"github.com/olegiv/mms-go/internal/middleware"
	"github.com/olegiv/mms-go/internal/realtime"
	"github.com/olegiv/mms-go/internal/scheduler"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
	"github.com/olegiv/mms-go/internal/upload"
	"github.com/olegiv/mms-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "MMS - Membership Management System\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_JWT_SECRET         Token signing secret (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_DB_PATH            SQLite database path (default: ./data/mms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_REDIS_URL          Redis URL for the read cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_SMTP_HOST          SMTP relay; mail is logged when unset\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_S3_BUCKET          S3 bucket for cover images; local disk when unset\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MMS_GEOIP_DB_PATH      GeoLite2-Country.mmdb for the reset audit trail\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/mms-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("mms %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Create version info from build-time injected values
	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
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

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	ctx := context.Background()

	// Seed the initial superadmin on a fresh database
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	queries := store.New(db)

	// Initialize the read cache. Redis when configured, in-process memory
	// otherwise; MMS_CACHE_DISABLED turns the read path into straight
	// database hits.
	var appCache cache.Cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	switch {
	case cfg.CacheOff:
		slog.Info("cache disabled")
	case cfg.UseRedisCache():
		redisCache, err := cache.NewRedisCacheFromURL(cfg.RedisURL, cfg.CachePrefix, cacheTTL)
		if err != nil {
			slog.Warn("Redis unavailable, falling back to memory cache", "error", err)
			appCache = cache.NewMemoryCache(cacheTTL)
		} else {
			slog.Info("cache initialized", "backend", "redis", "prefix", cfg.CachePrefix)
			appCache = redisCache
		}
	default:
		slog.Info("cache initialized", "backend", "memory")
		appCache = cache.NewMemoryCache(cacheTTL)
	}
	if appCache != nil {
		defer func() {
			if err := appCache.Close(); err != nil {
				slog.Error("error closing cache", "error", err)
			}
		}()
	}

	// Token issuer for admin bearer tokens
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Second)

	// Mail transport
	var mailer mail.Mailer
	if cfg.MailEnabled() {
		smtpMailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return fmt.Errorf("initializing SMTP mailer: %w", err)
		}
		mailer = smtpMailer
		slog.Info("mail transport initialized", "host", cfg.SMTPHost, "from", cfg.MailFrom)
	} else {
		mailer = mail.LogMailer{}
		slog.Info("mail transport disabled, messages will be logged")
	}

	// GeoIP lookup for the password reset audit trail. A missing database
	// is logged and the lookup stays disabled.
	geo, err := geoip.NewLookup(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP lookup disabled", "error", err)
	} else if geo.IsEnabled() {
		slog.Info("GeoIP lookup initialized", "db", cfg.GeoIPDBPath)
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing GeoIP database", "error", err)
		}
	}()

	// Image storage: S3 when configured, local disk otherwise
	var blobStore upload.BlobStore
	serveUploadsDir := false
	if cfg.S3Enabled() {
		s3Store, err := upload.NewS3Store(ctx, upload.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			BaseURL:  cfg.S3BaseURL,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return fmt.Errorf("initializing S3 store: %w", err)
		}
		blobStore = s3Store
		slog.Info("image storage initialized", "backend", "s3", "bucket", cfg.S3Bucket)
	} else {
		diskStore, err := upload.NewDiskStore(cfg.UploadsDir, cfg.FrontendURL)
		if err != nil {
			return fmt.Errorf("initializing disk store: %w", err)
		}
		blobStore = diskStore
		serveUploadsDir = true
		slog.Info("image storage initialized", "backend", "disk", "dir", cfg.UploadsDir)
	}
	uploader := upload.NewUploader(blobStore)

	// Services
	blogService := service.NewBlogService(queries)
	eventService := service.NewEventService(queries)
	subscriberService := service.NewSubscriberService(queries)
	inquiryService := service.NewInquiryService(queries, mailer)
	enrollmentService := service.NewEnrollmentService(queries)
	userService := service.NewUserService(queries)
	adminService := service.NewAdminService(queries)
	newsletterService := service.NewNewsletterService(queries, mailer, logger)
	authService := service.NewAuthService(queries, issuer, mailer, geo, cfg.FrontendURL)
	authService.SetResetTTL(time.Duration(cfg.ResetTokenTTL) * time.Second)

	// Live dashboard updates over WebSocket
	hub := realtime.NewHub(ctx)
	go hub.Run()
	defer hub.Stop()
	wsHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)
	slog.Info("dashboard hub initialized", "allowed_origins", cfg.AllowedOrigins)

	// Initialize and start scheduler
	sched := scheduler.New(db, newsletterService, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Deps{
		Blog:        blogService,
		Events:      eventService,
		Subscribers: subscriberService,
		Inquiries:   inquiryService,
		Enrollments: enrollmentService,
		Users:       userService,
		Admins:      adminService,
		Auth:        authService,
		Newsletters: newsletterService,
		Cache:       appCache,
		Hub:         hub,
		Uploader:    uploader,
		Logger:      logger,
		Version:     versionInfo,
	})

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Rate limiters: a general one for public traffic, a strict one for
	// credential endpoints
	publicRateLimiter := middleware.NewRateLimiter(10.0, 20)
	authRateLimiter := middleware.NewRateLimiter(1.0, 5)

	// Health check route
	r.Get("/health", apiHandler.Health)

	// Credential endpoints (public, strictly rate limited)
	r.Group(func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Post("/api/auth/login", apiHandler.Login)
		r.Post("/api/auth/forgot-password", apiHandler.ForgotPassword)
		r.Post("/api/auth/reset-password", apiHandler.ResetPassword)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())

		r.Get("/api/blog", apiHandler.ListPublishedPosts)
		r.Get("/api/blog/{slug}", apiHandler.GetPublishedPost)

		r.Get("/api/events", apiHandler.ListEvents)
		r.Get("/api/events/{eventID}", apiHandler.GetEvent)
		r.Post("/api/events/{eventID}/register", apiHandler.RegisterForEvent)

		r.Post("/api/contact", apiHandler.SubmitInquiry)
		r.Post("/api/contact/subscribe", apiHandler.Subscribe)

		r.Post("/api/enrollments", apiHandler.CreateEnrollment)
		r.Post("/api/users", apiHandler.CreateUser)
	})

	// Admin routes (protected by bearer token + live session)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, db))

		r.Post("/api/auth/logout", apiHandler.Logout)
		r.Get("/api/auth/me", apiHandler.Me)
		r.Post("/api/auth/change-password", apiHandler.ChangePassword)

		r.Route("/api/admin", func(r chi.Router) {
			// Blog management
			r.Get("/blog", apiHandler.AdminListPosts)
			r.Post("/blog", apiHandler.CreatePost)
			r.Get("/blog/{id}", apiHandler.AdminGetPost)
			r.Put("/blog/{id}", apiHandler.UpdatePost)
			r.Delete("/blog/{id}", apiHandler.DeletePost)

			// Event management
			r.Post("/events", apiHandler.CreateEvent)
			r.Put("/events/{eventID}", apiHandler.UpdateEvent)
			r.Delete("/events/{eventID}", apiHandler.DeleteEvent)
			r.Get("/events/{eventID}/registrations", apiHandler.ListRegistrations)
			r.Get("/events/{eventID}/registrations/export", apiHandler.ExportRegistrations)

			// Subscribers
			r.Get("/subscribers", apiHandler.AdminListSubscribers)
			r.Get("/subscribers/export", apiHandler.ExportSubscribers)
			r.Get("/subscribers/stats", apiHandler.SubscriberStats)
			r.Delete("/subscribers/{id}", apiHandler.AdminDeleteSubscriber)

			// Contact inquiries
			r.Get("/inquiries", apiHandler.AdminListInquiries)
			r.Post("/inquiries/{id}/respond", apiHandler.RespondToInquiry)
			r.Post("/inquiries/{id}/close", apiHandler.CloseInquiry)
			r.Delete("/inquiries/{id}", apiHandler.DeleteInquiry)

			// Enrollments
			r.Get("/enrollments", apiHandler.AdminListEnrollments)
			r.Get("/enrollments/stats", apiHandler.EnrollmentStats)
			r.Get("/enrollments/{enrollmentID}", apiHandler.AdminGetEnrollment)
			r.Delete("/enrollments/{enrollmentID}", apiHandler.AdminDeleteEnrollment)

			// Site users
			r.Get("/users", apiHandler.AdminListUsers)
			r.Get("/users/stats", apiHandler.UserStats)
			r.Get("/users/{id}", apiHandler.AdminGetUser)
			r.Put("/users/{id}", apiHandler.AdminUpdateUser)
			r.Delete("/users/{id}", apiHandler.AdminDeactivateUser)
			r.Post("/users/{id}/activate", apiHandler.AdminReactivateUser)

			// Newsletters
			r.Get("/newsletters", apiHandler.ListNewsletters)
			r.Post("/newsletters", apiHandler.CreateNewsletter)
			r.Get("/newsletters/{id}", apiHandler.GetNewsletter)
			r.Put("/newsletters/{id}", apiHandler.UpdateNewsletter)
			r.Delete("/newsletters/{id}", apiHandler.DeleteNewsletter)
			r.Post("/newsletters/{id}/queue", apiHandler.QueueNewsletter)

			// Cover image uploads
			r.Post("/uploads", apiHandler.UploadImage)

			// Password reset audit trail
			r.Get("/audit/password-resets", apiHandler.ResetAuditLog)

			// Admin account management (superadmin only)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperadmin)
				r.Get("/admins", apiHandler.ListAdmins)
				r.Post("/admins", apiHandler.CreateAdmin)
				r.Put("/admins/{id}/role", apiHandler.SetAdminRole)
				r.Delete("/admins/{id}", apiHandler.DeleteAdmin)
			})
		})

	})

	// Live dashboard updates. Browsers can't set the Authorization header
	// on WebSocket upgrades, so the endpoint is guarded by the origin
	// allow-list instead of the auth middleware.
	r.Get("/ws/dashboard", wsHandler.ServeWS)

	// Serve uploaded cover images when using local disk storage
	if serveUploadsDir {
		uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Handle("/uploads/*", uploadsHandler)
	}

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
