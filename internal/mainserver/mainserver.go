package mainserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evidenceledger/noticegen/internal/cache"
	"github.com/evidenceledger/noticegen/internal/config"
	"github.com/evidenceledger/noticegen/internal/database"
	"github.com/evidenceledger/noticegen/internal/document"
	"github.com/evidenceledger/noticegen/internal/noticeweb"
	"github.com/evidenceledger/noticegen/internal/payment"
)

// Server owns the process-wide resources (ledger database, session cache) and
// the web server that uses them.
type Server struct {
	cfg       config.Config
	webServer *noticeweb.Server
	db        *database.Database
	cache     *cache.Cache
}

// New creates a new server instance.
// It creates the database, the cache, the payment gateway and the web server.
func New(cfg config.Config) (*Server, error) {

	// Create a global in-memory cache with expiration time of 30 minutes
	cache := cache.New(30 * time.Minute)

	// The ledger of delivered notices
	db := database.New(cfg.DBPath)

	gateway, err := NewGateway(cfg, cache)
	if err != nil {
		cache.Close()
		return nil, err
	}

	renderer := document.New()

	webServer, err := noticeweb.New(db, gateway, renderer, cfg)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to create web server: %w", err)
	}

	return &Server{
		cfg:       cfg,
		webServer: webServer,
		db:        db,
		cache:     cache,
	}, nil

}

// NewGateway selects the payment gateway for the configuration.
// With a secret key payments go to Stripe. Without one, development uses the
// in-memory sandbox and production reports that payments are not configured.
func NewGateway(cfg config.Config, c *cache.Cache) (payment.Gateway, error) {

	if cfg.PaymentsConfigured() {
		gw, err := payment.NewStripe(cfg.StripeSecretKey, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create payment gateway: %w", err)
		}
		slog.Info("Payments handled by Stripe")
		return gw, nil
	}

	if cfg.Development {
		slog.Warn("No payment credential, using the sandbox gateway: every session counts as paid")
		return payment.NewSandbox(c), nil
	}

	slog.Warn("No payment credential, payments are disabled", "env", config.EnvStripeKey)
	return payment.Unconfigured{}, nil
}

// Start initializes the database and runs the web server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {

	if s.db == nil {
		return errors.New("server not initialized")
	}

	// Initialize database
	if err := s.db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	defer s.cache.Close()
	defer s.db.Close()

	errChan := make(chan error, 1)

	go func() {
		if err := s.webServer.Start(ctx); err != nil {
			errChan <- fmt.Errorf("notice server failed: %w", err)
			return
		}
		errChan <- nil
	}()

	slog.Info("Server started",
		"port", s.cfg.Port,
		"base_url", s.cfg.BaseURL,
		"development", s.cfg.Development,
		"db", s.cfg.DBPath)

	// Wait for the server to fail or for the context to be cancelled
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutting down server")
		// Let the web server finish its shutdown before closing the database
		return <-errChan
	}
}
