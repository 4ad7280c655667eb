package noticeweb

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/noticegen/internal/document"
	"github.com/evidenceledger/noticegen/internal/notice"
	"github.com/evidenceledger/noticegen/internal/payment"
)

const (
	landingEndpoint = "/"
	selectEndpoint  = "/select"
	formEndpoint    = "/form/:type"
	errorEndpoint   = "/error"
)

func (s *Server) registerPageHandlers() {

	// Presents the service and a link to the catalog
	s.httpServer.Get(landingEndpoint, s.pageLanding)

	// Lists the notices with their prices
	s.httpServer.Get(selectEndpoint, s.pageSelect)

	// Presents the form to fill in the details of the selected notice
	s.httpServer.Get(formEndpoint, s.pageForm)

	// Generic error screen, where the payment provider may send the user
	s.httpServer.Get(errorEndpoint, s.pageError)

}

// catalogEntry is what the screens show for a notice
type catalogEntry struct {
	Type        string
	Name        string
	Price       string
	Description string
}

func newCatalogEntry(meta notice.Metadata) catalogEntry {
	return catalogEntry{
		Type:        string(meta.Type),
		Name:        meta.Name,
		Price:       meta.PriceDisplay(),
		Description: meta.Description,
	}
}

func catalogEntries() []catalogEntry {
	all := notice.All()
	entries := make([]catalogEntry, 0, len(all))
	for _, meta := range all {
		entries = append(entries, newCatalogEntry(meta))
	}
	return entries
}

func landingData() fiber.Map {
	return fiber.Map{
		"title":   "Landlord notices",
		"notices": catalogEntries(),
	}
}

func selectData() fiber.Map {
	return fiber.Map{
		"title":   "Choose a notice",
		"notices": catalogEntries(),
	}
}

func formData(meta notice.Metadata, payments bool) fiber.Map {
	return fiber.Map{
		"title":    meta.Name,
		"notice":   newCatalogEntry(meta),
		"fields":   formFields(),
		"payments": payments,
	}
}

func errorData(message string) fiber.Map {
	return fiber.Map{
		"title":   "Something went wrong",
		"message": message,
	}
}

// PreviewData returns sample data for the named template, or nil if there is no such page.
// It is used to work on the templates without going through the whole flow.
func PreviewData(name string) fiber.Map {
	switch name {
	case "index":
		return landingData()
	case "select":
		return selectData()
	case "form":
		meta, _ := notice.Lookup(notice.Section21)
		return formData(meta, true)
	case "error":
		return errorData("This is how errors are shown to the user.")
	}
	return nil
}

func (s *Server) pageLanding(c *fiber.Ctx) error {
	return s.htmlRender.Render(c, "index", landingData())
}

func (s *Server) pageSelect(c *fiber.Ctx) error {
	return s.htmlRender.Render(c, "select", selectData())
}

func (s *Server) pageForm(c *fiber.Ctx) error {
	typeID := c.Params("type")

	meta, err := notice.Lookup(notice.Type(typeID))
	if errors.Is(err, notice.ErrInvalidNoticeType) {
		slog.Warn("Form requested for unknown notice type", "type", typeID)
		return s.renderError(c, fiber.StatusNotFound, "We do not offer that notice. Please choose one from the list.")
	}
	if err != nil {
		return err
	}

	_, unconfigured := s.gateway.(payment.Unconfigured)

	return s.htmlRender.Render(c, "form", formData(meta, !unconfigured))
}

func (s *Server) pageError(c *fiber.Ctx) error {
	return s.renderError(c, fiber.StatusOK, "Your request could not be completed. No payment has been taken for an unfinished notice.")
}

// formField describes one input of the notice form
type formField struct {
	Key      string
	Label    string
	Kind     string
	Required bool
}

func formFields() []formField {
	return []formField{
		{Key: notice.KeyLandlordName, Label: "Landlord name", Kind: "text", Required: true},
		{Key: notice.KeyLandlordAddress, Label: "Landlord address", Kind: "textarea", Required: true},
		{Key: notice.KeyTenantName, Label: "Tenant name", Kind: "text", Required: true},
		{Key: notice.KeyTenantAddress, Label: "Tenant address", Kind: "textarea", Required: true},
		{Key: notice.KeyPropertyAddress, Label: "Property address", Kind: "textarea", Required: true},
		{Key: notice.KeyTenancyStart, Label: "Tenancy start date", Kind: "date", Required: true},
		{Key: notice.KeyNoticeEnd, Label: "Notice end date", Kind: "date", Required: true},
		{Key: notice.KeyReason, Label: document.ReasonLabel, Kind: "textarea"},
	}
}
