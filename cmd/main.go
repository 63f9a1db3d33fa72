package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/esports-arena/tournament-hub/config"
	"github.com/esports-arena/tournament-hub/db"
	"github.com/esports-arena/tournament-hub/handlers"
	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/routes"
	"github.com/esports-arena/tournament-hub/services"
	"github.com/esports-arena/tournament-hub/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// The R2 uploader is optional; without it banner/avatar uploads are
	// rejected but everything else works.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, file uploads disabled")
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	walletRepo := repositories.NewPostgresWalletRepository(dbConn)
	transactionRepo := repositories.NewPostgresTransactionRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	messageRepo := repositories.NewPostgresMessageRepository(dbConn)
	resetRepo := repositories.NewPostgresPasswordResetRepository(dbConn)
	logger.Info("repositories initialized")

	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, resetRepo)
	userService := services.NewUserService(userRepo, uploader, logger)
	walletService := services.NewWalletService(txManager, walletRepo, transactionRepo, userRepo)
	transactionService := services.NewTransactionService(transactionRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, userRepo, uploader, wsHub, logger)
	registrationService := services.NewRegistrationService(txManager, registrationRepo, tournamentRepo, userRepo, walletService, wsHub)
	statsService := services.NewStatsService(txManager, tournamentRepo, registrationRepo, userRepo, logger)
	messageService := services.NewMessageService(messageRepo)
	logger.Info("services initialized")

	scheduler, err := services.NewScheduler(tournamentService, statsService, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	authMiddleware := middleware.NewAuth(cfg.JWTSecretKey)
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, userService, emailService, cfg.JWTSecretKey, logger),
		User:         handlers.NewUserHandler(userService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Transaction:  handlers.NewTransactionHandler(transactionService),
		Message:      handlers.NewMessageHandler(messageService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, tournamentService),
		Health:       handlers.NewHealthHandler(dbConn),
	}
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(router, authMiddleware, cfg.FrontendOrigin, h)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
