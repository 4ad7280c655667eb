package noticeweb

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/evidenceledger/noticegen/internal/models"
	"github.com/evidenceledger/noticegen/internal/notice"
	"github.com/evidenceledger/noticegen/internal/payment"
)

const unprintableMessage = "Some of the details you entered use characters that cannot be printed on the notice. " +
	"Please write them using Latin, Greek or Cyrillic letters."

const (
	createSessionEndpoint = "/create-session"
	successEndpoint       = "/success"
)

func (s *Server) registerSessionHandlers() {

	// Receives the notice form, keeps the fields in a new payment session and
	// sends the user to the payment page of the provider.
	s.httpServer.Post(createSessionEndpoint, s.createSession)

	// The provider redirects here after a successful payment.
	// The fields are recovered from the session and the notice is returned as a PDF.
	s.httpServer.Get(successEndpoint, s.deliverNotice)

}

func (s *Server) createSession(c *fiber.Ctx) error {

	form := &models.NoticeForm{}
	if err := c.BodyParser(form); err != nil {
		slog.Warn("Invalid notice form", "error", err)
		return s.renderError(c, fiber.StatusBadRequest, "The form could not be read. Please fill it in again.")
	}

	fields, err := notice.Validate(form.Type, form.Fields())
	if errors.Is(err, notice.ErrUnprintableText) {
		slog.Warn("Notice form with unprintable text", "type", form.Type, "error", err)
		return s.renderError(c, fiber.StatusBadRequest, unprintableMessage)
	}
	if err != nil {
		slog.Warn("Session requested for unknown notice type", "type", form.Type)
		return s.renderError(c, fiber.StatusBadRequest, "We do not offer that notice. Please choose one from the list.")
	}

	// The catalog entry gives the name and price charged for the notice
	meta, err := notice.Lookup(fields.Type)
	if err != nil {
		return errl.Error(err)
	}

	successURL := s.cfg.BaseURL + successEndpoint + "?session_id=" + payment.SessionIDPlaceholder
	cancelURL := s.cfg.BaseURL + "/form/" + string(meta.Type)

	session, err := s.gateway.CreateSession(c.UserContext(), meta, fields, successURL, cancelURL)
	if err != nil {
		err = errl.Errorf("creating payment session for %s: %w", meta.Type, err)
		slog.Error(err.Error())
		status, message := gatewayFailure(err)
		return s.renderError(c, status, message)
	}

	slog.Info("Payment session created", "session_id", session.ID, "notice_type", meta.Type, "price", meta.Price)

	return c.Redirect(session.URL, fiber.StatusSeeOther)
}

func (s *Server) deliverNotice(c *fiber.Ctx) error {

	sessionID := c.Query("session_id")
	if sessionID == "" {
		return s.renderError(c, fiber.StatusBadRequest, "The link you followed is incomplete. It does not identify a payment.")
	}

	session, err := s.gateway.RetrieveSession(c.UserContext(), sessionID)
	if err == nil && !session.Paid {
		err = payment.ErrNotPaid
	}
	if err != nil {
		err = errl.Errorf("retrieving payment session %s: %w", sessionID, err)
		slog.Error(err.Error())
		status, message := gatewayFailure(err)
		return s.renderError(c, status, message)
	}

	meta, err := notice.Lookup(session.Fields.Type)
	if err != nil {
		slog.Error("Paid session for unknown notice type", "session_id", sessionID, "type", session.Fields.Type)
		return s.renderError(c, fiber.StatusBadRequest, "We do not offer that notice. Please choose one from the list.")
	}

	doc, err := s.renderer.Render(session.Fields)
	if err != nil {
		err = errl.Errorf("rendering notice for session %s: %w", sessionID, err)
		slog.Error(err.Error())
		return s.renderError(c, fiber.StatusInternalServerError, "We could not produce your notice. Please try again from the link in your payment receipt.")
	}

	// A failure to record the delivery must not keep a paid notice from the user
	if s.db != nil {
		if err := s.db.RecordIssuance(c.UserContext(), sessionID, string(meta.Type), meta.Price); err != nil {
			slog.Error("Failed to record issuance", "session_id", sessionID, "error", err)
		}
	}

	filename := fmt.Sprintf("%s-%d.pdf", meta.Type, s.now().UnixMilli())

	slog.Info("Notice delivered", "session_id", sessionID, "notice_type", meta.Type, "pages", doc.Pages, "bytes", len(doc.Bytes))

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(doc.Bytes)
}

// gatewayFailure maps a gateway error to the status and message shown to the user
func gatewayFailure(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrGatewayUnconfigured):
		return fiber.StatusServiceUnavailable, "Payments are not configured on this server, so notices cannot be purchased at the moment."
	case errors.Is(err, payment.ErrMetadataTooLarge):
		return fiber.StatusBadRequest, "Some of the details you entered are too long. Please shorten them and try again."
	case errors.Is(err, payment.ErrSessionNotFound):
		return fiber.StatusNotFound, "We could not find your payment. Please check the link you followed."
	case errors.Is(err, payment.ErrNotPaid):
		return fiber.StatusPaymentRequired, "Your payment has not been completed yet."
	case errors.Is(err, notice.ErrUnprintableText):
		return fiber.StatusBadRequest, unprintableMessage
	default:
		return fiber.StatusBadGateway, "We could not reach the payment provider. Please try again later."
	}
}
