// Character chat service: persona CRUD, conversation logs and a relay
// to the Anthropic completion API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/joonhan/charchat/internal/api"
	"github.com/joonhan/charchat/internal/chat"
	"github.com/joonhan/charchat/internal/config"
	"github.com/joonhan/charchat/internal/kv"
	"github.com/joonhan/charchat/internal/middleware"
	"github.com/joonhan/charchat/internal/relay"
	"github.com/joonhan/charchat/internal/repository"
	"github.com/joonhan/charchat/internal/session"
	"github.com/joonhan/charchat/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize the key-value store backing all persistence.
	var store kv.Store
	if cfg.DBPath == "" {
		slog.Warn("DB_PATH is empty, using in-memory store; nothing survives a restart")
		store = kv.NewMemory()
	} else {
		store, err = kv.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := store.Ping(context.Background()); err != nil {
		slog.Error("Store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Store connected", "db_path", cfg.DBPath)

	if cfg.Anthropic.APIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY is not set, completion requests will fail")
	}

	// Initialize services.
	repo := repository.New(store)
	guard := session.NewGuard(repo)
	completer := relay.NewClient(relay.Config{
		BaseURL:   cfg.Anthropic.BaseURL,
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	}, logger)
	chatSvc := chat.NewService(repo, completer, logger)

	// Initialize handlers.
	handler := api.NewHandler(repo, chatSvc, completer)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r, guard)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Create server. Completion calls have no client-side timeout, so
	// the write timeout stays off.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
