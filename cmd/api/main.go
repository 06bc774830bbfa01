package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mosswell/inkwell/internal/auth"
	"github.com/mosswell/inkwell/internal/background"
	"github.com/mosswell/inkwell/internal/config"
	"github.com/mosswell/inkwell/internal/database"
	"github.com/mosswell/inkwell/internal/handlers"
	middlewareCustom "github.com/mosswell/inkwell/internal/middleware"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/ratelimit"
	"github.com/mosswell/inkwell/internal/repositories"
	"github.com/mosswell/inkwell/internal/routes"
	"github.com/mosswell/inkwell/internal/services"
	pkgauth "github.com/mosswell/inkwell/pkg/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply embedded schema migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	postRepo := repositories.NewPostRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Login throttle guard and session manager
	guard := auth.NewLockoutGuard(auth.LockoutConfig{
		MaxAttempts:     cfg.Lockout.MaxAttempts,
		LockoutDuration: cfg.Lockout.LockoutDuration,
		BackoffBase:     cfg.Lockout.BackoffBase,
		BackoffCap:      cfg.Lockout.BackoffCap,
	}, logger)

	sessions := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.Expiry, cfg.Session.RefreshAge)

	cookieConfig := auth.CookieConfig{
		Secure: cfg.Server.Env == "production",
		MaxAge: cfg.Session.Expiry,
	}

	// Independent sliding-window limiters, both keyed by client IP: one for
	// comment submissions, one for login attempts.
	commentLimiter := ratelimit.NewLimiter(cfg.RateLimit.CommentWindow, cfg.RateLimit.CommentMaxRequests)
	loginLimiter := ratelimit.NewLimiter(cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginMaxRequests)

	// Initialize services
	authService := services.NewAuthService(userRepo, guard, sessions, logger)
	commentService := services.NewCommentService(commentRepo, commentLimiter, logger)
	postService := services.NewPostService(postRepo, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cookieConfig)
	commentHandler := handlers.NewCommentHandler(commentService)
	postHandler := handlers.NewPostHandler(postService)
	settingHandler := handlers.NewSettingHandler(settingRepo)

	// Bootstrap first admin user if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootstrapCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootstrapCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins}))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Config{
		CookieConfig:     cookieConfig,
		LoginLimiter:     loginLimiter,
		LoginBurstWindow: cfg.RateLimit.LoginBurstWindow,
		LoginBurstMax:    cfg.RateLimit.LoginBurstMax,
	}, sessions, authHandler, commentHandler, postHandler, settingHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background maintenance
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	cleanupManager := background.NewCleanupManager(guard, logger, cfg.Lockout.CleanupInterval)
	go cleanupManager.Start(backgroundCtx)
	go commentLimiter.Start(backgroundCtx)
	go loginLimiter.Start(backgroundCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	backgroundCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if err := pkgauth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD rejected: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		Role:         models.RoleAdmin,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
