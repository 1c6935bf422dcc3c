package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pharmatch/chatbot/internal/attendance"
	"github.com/pharmatch/chatbot/internal/config"
	"github.com/pharmatch/chatbot/internal/dispatcher"
	"github.com/pharmatch/chatbot/internal/handlers"
	"github.com/pharmatch/chatbot/internal/logging"
	"github.com/pharmatch/chatbot/internal/messenger"
	"github.com/pharmatch/chatbot/internal/ratelimit"
	"github.com/pharmatch/chatbot/internal/repository"
	"github.com/pharmatch/chatbot/internal/server"
	"github.com/pharmatch/chatbot/internal/service"
	"github.com/pharmatch/chatbot/internal/signature"
	"github.com/pharmatch/chatbot/pkg/tokens"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("chatbot"))
	logging.SetDefault(logger)

	slog.Info("Starting chatbot service",
		slog.Int("port", cfg.Server.Port),
		slog.String("environment", cfg.Environment),
		slog.String("log_level", cfg.Logging.Level),
	)
	slog.Info("Service URLs configured",
		slog.String("attendance_url", cfg.Attendance.URL),
		slog.String("messaging_api_url", cfg.Messaging.APIURL),
	)

	// Signature verifier with its development-only bypass gate
	verifier := signature.New(cfg.Messaging.ChannelSecret, cfg.Environment, cfg.Messaging.SkipVerify)
	if verifier.BypassEnabled() {
		slog.Warn("Webhook signature verification is BYPASSED (development only)")
	}

	// Linked-user repository
	var repo repository.Repository
	if cfg.Database.Enabled {
		connString := cfg.Database.ConnString()

		log.Println("Running database migrations...")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo = pgRepo
	} else {
		slog.Warn("Database disabled - using in-memory linked-user repository")
		repo = repository.NewInMemoryRepository()
	}
	defer repo.Close()

	// Webhook rate limiter
	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled {
		limiter, err = ratelimit.NewSlidingWindowLimiter(
			cfg.Redis.URL,
			cfg.Redis.RateLimitRequests,
			cfg.Redis.RateLimitWindow,
		)
		if err != nil {
			slog.Warn("Failed to initialize Redis rate limiter, continuing without",
				logging.Error(err))
			limiter = ratelimit.NoOpLimiter{}
		}
	} else {
		limiter = ratelimit.NoOpLimiter{}
	}
	defer limiter.Close()

	// Outbound clients and action handlers
	generator := tokens.NewTokenGenerator(cfg.Credentials.SigningSecret, cfg.Credentials.TTL)
	attendanceClient := attendance.New(cfg.Attendance.URL, cfg.Attendance.Timeout, generator)
	sender := messenger.New(cfg.Messaging.APIURL, cfg.Messaging.ChannelToken, cfg.Messaging.Timeout)
	botService := service.NewBotService(attendanceClient, cfg.Portal.URL)

	// Event dispatcher
	disp := dispatcher.New(repo, sender, botService, logger)

	// HTTP surface
	webhookHandler := handlers.NewWebhookHandler(verifier, disp, limiter, logger)
	adminHandler := handlers.NewAdminHandler(sender, cfg.Admin.Token, logger)
	router := server.NewRouter(webhookHandler, adminHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Chatbot service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped gracefully")
}
