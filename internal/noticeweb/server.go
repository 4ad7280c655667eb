package noticeweb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/evidenceledger/noticegen/internal/config"
	"github.com/evidenceledger/noticegen/internal/database"
	"github.com/evidenceledger/noticegen/internal/document"
	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/evidenceledger/noticegen/internal/html"
	"github.com/evidenceledger/noticegen/internal/payment"
)

// Server is the web front of the notice generator.
// It shows the catalog and the notice forms, sends the landlord to the payment
// provider and, once the payment is confirmed, returns the filled-in notice as a PDF.
type Server struct {
	cfg        config.Config
	httpServer *fiber.App
	db         *database.Database
	gateway    payment.Gateway
	renderer   *document.Renderer
	htmlRender *html.RendererFiber
	now        func() time.Time
}

//go:embed views
var viewsfs embed.FS

// Views returns the embedded templates and assets, rooted at the views directory
func Views() (fs.FS, error) {
	return fs.Sub(viewsfs, "views")
}

// New creates the web server. db may be nil, in which case deliveries are not
// recorded and the admin endpoints are not registered.
func New(db *database.Database, gateway payment.Gateway, renderer *document.Renderer, cfg config.Config) (*Server, error) {

	views, err := Views()
	if err != nil {
		return nil, errl.Error(err)
	}

	// The engine to display the HTML screens to the users.
	// Templates are reloaded on every request in development.
	htmlrender, err := html.NewRendererFiber(cfg.Development, views, "internal/noticeweb/views", ".html")
	if err != nil {
		return nil, errl.Errorf("initializing template engine: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		db:         db,
		gateway:    gateway,
		renderer:   renderer,
		htmlRender: htmlrender,
		now:        time.Now,
	}

	httpServer := fiber.New(fiber.Config{
		AppName:                 "Notice Generator",
		ServerHeader:            "noticegen",
		EnableTrustedProxyCheck: false,
		ReadTimeout:             30 * time.Second,
		WriteTimeout:            30 * time.Second,
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
		ErrorHandler:            s.errorHandler,
	})

	// Recovers from panics anywhere in the stack chain and handles the control to the centralized ErrorHandler
	httpServer.Use(recover.New())

	// Helmet middleware helps secure your apps by setting various HTTP headers.
	httpServer.Use(helmet.New())

	// Ignores favicon requests
	httpServer.Use(favicon.New())

	// Logs HTTP request/response details
	httpServer.Use(logger.New())

	// Enable CORS for all origins
	httpServer.Use(cors.New())

	// Stylesheets and images, served from the embedded views
	httpServer.Use("/static", filesystem.New(filesystem.Config{
		Root:       http.FS(views),
		PathPrefix: "assets",
	}))

	s.httpServer = httpServer

	// Register the health check endpoint
	s.httpServer.Get("/health", func(c *fiber.Ctx) error {
		slog.Debug("Health check", "from", c.Hostname())
		_, unconfigured := s.gateway.(payment.Unconfigured)
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"hostname": c.Hostname(),
			"payments": !unconfigured,
		})
	})

	// Landing, catalog and form screens
	s.registerPageHandlers()

	// Payment session creation and delivery of the notice
	s.registerSessionHandlers()

	// Register the admin endpoints (protected)
	if s.db != nil {
		if err := s.registerAdminHandlers(cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {

	if s.httpServer == nil {
		return errors.New("server not initialized")
	}

	addr := net.JoinHostPort("0.0.0.0", s.cfg.Port)
	slog.Info("Starting notice server", "addr", addr, "base_url", s.cfg.BaseURL)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Listen(addr); err != nil {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.httpServer.Shutdown()
	}

}

// errorHandler presents errors escaping the handlers (unknown routes, panics) as the error page
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	message := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		message = "The page you were looking for does not exist."
	}

	slog.Error("Request failed", "path", c.Path(), "status", code, "error", err)
	return s.renderError(c, code, message)
}

// renderError shows the error page with a message for the end user
func (s *Server) renderError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return s.htmlRender.Render(c, "error", errorData(message))
}
