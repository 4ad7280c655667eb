package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/evidenceledger/noticegen/internal/config"
	"github.com/evidenceledger/noticegen/internal/mainserver"
)

var (
	development bool

	adminPassword string
	port          string
	baseURL       string
	dbPath        string
	configFile    string
	envFile       string
)

func main() {
	// If we are in development environment or not
	flag.BoolVar(&development, "dev", false, "Development mode")

	// The password for admin screens
	flag.StringVar(&adminPassword, "admin-password", "", "Admin password for the server")

	// The port to listen on and the public URL used in payment redirects
	flag.StringVar(&port, "port", "", "Port for the notice server")
	flag.StringVar(&baseURL, "base-url", "", "Public URL of the notice server")

	// Where the ledger of delivered notices is kept
	flag.StringVar(&dbPath, "db", "", "Path of the SQLite database")

	// Optional configuration sources
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&envFile, "env-file", ".env", "File with environment variables")

	flag.Parse()

	cfg, err := config.Load(configFile, envFile, os.Getenv)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Flags take precedence over every other source
	if development {
		cfg.Development = true
	}
	if adminPassword != "" {
		cfg.AdminPassword = adminPassword
	}
	if port != "" {
		cfg.Port = port
	}
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	// Initialize logging
	level := slog.LevelInfo
	if cfg.Development {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Say if we are in development or not
	if cfg.Development {
		slog.Info("Running in development mode")
	} else {
		slog.Info("Running in production mode")
	}

	if cfg.AdminPassword == "" && cfg.Development {
		cfg.AdminPassword = "pepe"
	}

	// Create the main server. This will initialize the web server, the payment gateway and the database.
	srv, err := mainserver.New(cfg)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	// Start server
	if err := srv.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
