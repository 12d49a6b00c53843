/*
Package main is the entry point for the messenger server.

It is responsible for loading configuration, initializing the global logging system,
seeding the in-memory user registry and lobby directory, setting up the HTTP server
with its WebSocket endpoint, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger/internal/app/chat"
	"messenger/internal/app/user"
	"messenger/internal/configs"
	"messenger/internal/handler"
	"messenger/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed the in-memory state: admin account and default lobbies are
	// recreated identically on every startup.
	registry, err := user.NewRegistry(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logx.Fatal(err, "Failed to seed admin account")
	}

	lobbies := chat.NewLobbyDirectory()
	hub := chat.NewHub(registry, lobbies)

	logx.Info("Admin user seeded", "username", cfg.AdminUsername)
	logx.Info("Available lobbies", "lobbies", lobbies.Names())

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Hub:    hub,
		Config: cfg,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Messenger Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server shutdown did not complete cleanly")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
