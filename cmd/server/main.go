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

	"daptic-backend/internal/config"
	"daptic-backend/internal/database"
	"daptic-backend/internal/handlers"
	"daptic-backend/internal/logging"
	"daptic-backend/internal/middleware"
	"daptic-backend/internal/repository"
	"daptic-backend/internal/router"
	"daptic-backend/internal/services"
	"daptic-backend/internal/views"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting DAPTIC backend", "env", cfg.Env)

	ctx := context.Background()

	// ──── Step 2: Open Database ────
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()
	logger.Info("database connected", "driver", db.Driver)

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logger.Info("database migrations applied")

	// ──── Step 4: Connect Redis (optional) ────
	var revoker middleware.Revoker
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisClient.Close()
		revoker = middleware.NewRedisRevoker(redisClient)
		logger.Info("redis connected, session revocation enabled")
	} else {
		logger.Info("REDIS_URL not set, logout only clears the cookie")
	}

	// ──── Step 5: Initialize Gemini Client ────
	gemini := services.NewGeminiService(services.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})
	if cfg.GeminiVerifyModel {
		verifyCtx, cancel := context.WithTimeout(ctx, cfg.GeminiTimeout)
		if err := gemini.VerifyModel(verifyCtx); err != nil {
			logger.Warn("Gemini model probe failed", "model", cfg.GeminiModel, "error", err)
		}
		cancel()
	}
	logger.Info("Gemini client ready", "model", cfg.GeminiModel)

	// ──── Initialize Repositories & Services ────
	repos := repository.New(db)
	authService := services.NewAuthService(repos.Accounts)
	conversationLog := services.NewConversationLog(repos.Conversations)
	instructions := services.NewInstructionLoader(cfg.InstructionFile)
	relay := services.NewChatRelay(gemini, conversationLog, instructions, cfg.MaxPromptLength)
	sessions := middleware.NewSessionManager(cfg.SecretKey, cfg.SessionTTL, revoker)

	renderer, err := views.NewRenderer()
	if err != nil {
		return err
	}

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, sessions, renderer)
	chatHandler := handlers.NewChatHandler(relay, conversationLog, renderer, cfg.MaxPromptLength)

	// ──── Step 6: Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(sessions, authHandler, chatHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("DAPTIC backend ready", "addr", fmt.Sprintf("http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-shutdownDone
	return nil
}
