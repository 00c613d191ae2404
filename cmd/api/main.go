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

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/config"
	"github.com/BradenHooton/elecpower/internal/database"
	"github.com/BradenHooton/elecpower/internal/handlers"
	middlewareCustom "github.com/BradenHooton/elecpower/internal/middleware"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/repositories"
	"github.com/BradenHooton/elecpower/internal/routes"
	"github.com/BradenHooton/elecpower/internal/services"
	pkgauth "github.com/BradenHooton/elecpower/pkg/auth"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	pkglogger "github.com/BradenHooton/elecpower/pkg/logger"
	"github.com/BradenHooton/elecpower/pkg/qr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, cfg.Database.DSN(), logger)
		cancel()
		if err != nil {
			logger.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	cabinetRepo := repositories.NewCabinetRepository(db)
	qrCodeRepo := repositories.NewQRCodeRepository(db)
	materialRepo := repositories.NewMaterialRepository(db)
	materialRequestRepo := repositories.NewMaterialRequestRepository(db)
	incidentRepo := repositories.NewIncidentRepository(db)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Initialize security services
	auditLogger := pkglogger.NewAuditLogger(logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	// Temporary passwords go out through SES when enabled
	var emailService services.EmailService = services.NewLogEmailService(logger)
	if cfg.Email.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sesService, err := services.NewAWSSESEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.LoginURL, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = sesService
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenManager, emailService, timingDelay, logger, auditLogger, services.LockoutPolicy{
		Threshold: cfg.Auth.LockoutThreshold,
		Duration:  cfg.Auth.LockoutDuration,
	})
	userService := services.NewUserService(userRepo, projectRepo, logger, auditLogger)
	projectService := services.NewProjectService(projectRepo, userRepo, logger)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, logger)
	cabinetService := services.NewCabinetService(cabinetRepo, qrCodeRepo, projectRepo, materialRepo,
		qr.NewEncoder(cfg.QR.ImageSize), cfg.QR.PublicBaseURL, logger)
	materialService := services.NewMaterialService(materialRepo, projectRepo, cabinetRepo, logger)
	materialRequestService := services.NewMaterialRequestService(materialRequestRepo, materialRepo, projectRepo, cabinetRepo, logger)
	incidentService := services.NewIncidentService(incidentRepo, projectRepo, userRepo, logger)

	// Initialize handlers
	cookies := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	h := routes.Handlers{
		Auth:             handlers.NewAuthHandler(authService, &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}, cookies, cfg.Auth.AccessTokenExpiry),
		Users:            handlers.NewUserHandler(userService),
		Projects:         handlers.NewProjectHandler(projectService),
		Tasks:            handlers.NewTaskHandler(taskService),
		Cabinets:         handlers.NewCabinetHandler(cabinetService),
		Materials:        handlers.NewMaterialHandler(materialService),
		MaterialRequests: handlers.NewMaterialRequestHandler(materialRequestService),
		Incidents:        handlers.NewIncidentHandler(incidentService),
		Health:           handlers.NewHealthHandler(db, logger),
	}

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	limits := routes.DefaultLimits()
	if cfg.Server.AuthRateLimit > 0 {
		limits.Auth.RequestsPerMinute = cfg.Server.AuthRateLimit
	}

	// Register routes
	routes.RegisterRoutes(router, h, tokenManager, userRepo, limits, logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureAdminUser creates the first admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists.
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, email, password string, logger *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		FirstName:         "Admin",
		LastName:          "User",
		Email:             email,
		PasswordHash:      hashedPassword,
		Role:              models.RoleAdmin,
		IsAdmin:           true,
		PasswordChangedAt: &now,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
