package noticeweb

import (
	"crypto/subtle"
	"log/slog"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminUser         = "admin"
	defaultListLimit  = 100
	issuancesEndpoint = "/issuances"
	issuanceEndpoint  = "/issuances/:id"
)

func (s *Server) registerAdminHandlers(adminPassword string) error {

	if adminPassword == "" {
		slog.Warn("No admin password configured, admin endpoints are disabled")
		return nil
	}

	// Only the hash is kept in memory
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errl.Errorf("hashing admin password: %w", err)
	}

	admin := s.httpServer.Group("/admin")

	// Protect the admin area with basic auth
	adminAuth := basicauth.New(basicauth.Config{
		Realm: "Admin Area",
		Authorizer: func(user, pass string) bool {
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(adminUser)) == 1
			passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
			return userOK && passOK
		},
	})

	admin.Use(adminAuth)

	admin.Get(issuancesEndpoint, s.ListIssuances)
	admin.Get(issuanceEndpoint, s.GetIssuance)

	return nil
}

// ListIssuances lists the most recent deliveries, newest first
func (s *Server) ListIssuances(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	issuances, err := s.db.ListIssuances(c.UserContext(), limit)
	if err != nil {
		return errl.Errorf("failed to list issuances: %w", err)
	}

	return c.JSON(issuances)
}

// GetIssuance returns the delivery record of one payment session
func (s *Server) GetIssuance(c *fiber.Ctx) error {
	iss, err := s.db.GetIssuance(c.UserContext(), c.Params("id"))
	if err != nil {
		return errl.Errorf("failed to get issuance: %w", err)
	}
	if iss == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "issuance not found"})
	}

	return c.JSON(iss)
}
