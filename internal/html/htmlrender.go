// Package html renders the HTML screens of the service with the fiber template engine.
package html

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// DefaultLayout wraps every page unless another layout is given
const DefaultLayout = "layouts/main"

type RendererFiber struct {
	engine *html.Engine
}

// NewRendererFiber creates a new HTML renderer.
// Templates are read from extDir when that directory exists, so they can be
// edited in place, and from viewsfs otherwise. With reload set they are parsed
// again on every render.
func NewRendererFiber(reload bool, viewsfs fs.FS, extDir string, extension string) (*RendererFiber, error) {

	root, source := templateRoot(viewsfs, extDir)

	engine := html.NewFileSystem(root, extension)
	engine.Reload(reload)

	if err := engine.Load(); err != nil {
		return nil, errl.Errorf("loading %s HTML templates: %w", source, err)
	}

	if engine.Templates != nil {
		for _, tpl := range engine.Templates.Templates() {
			slog.Debug("Loaded template", "name", tpl.Name(), "source", source)
		}
	}

	return &RendererFiber{engine: engine}, nil
}

// templateRoot picks the directory on disk if present, or the embedded files
func templateRoot(viewsfs fs.FS, extDir string) (http.FileSystem, string) {
	if extDir != "" {
		if fi, err := os.Stat(extDir); err == nil && fi.IsDir() {
			slog.Info("Using external HTML templates", "dir", extDir)
			return http.Dir(extDir), "external"
		}
	}
	return http.FS(viewsfs), "embedded"
}

// SecurityHeaders sets the headers sent with every HTML page.
// Pages may show what the landlord typed, so they are not cached.
func SecurityHeaders(c *fiber.Ctx) {
	c.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; form-action 'self' https://checkout.stripe.com")
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("Cross-Origin-Opener-Policy", "same-origin")
	c.Set("Cache-Control", "no-store")
}

// Render executes templateName inside the default layout, or inside the given layout.
// The response status must be set by the caller before rendering.
func (h *RendererFiber) Render(c *fiber.Ctx, templateName string, data map[string]any, layout ...string) error {

	if len(layout) == 0 {
		layout = []string{DefaultLayout}
	}

	var out bytes.Buffer
	if err := h.engine.Render(&out, templateName, data, layout...); err != nil {
		slog.Error("Failed to render page", "template", templateName, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "rendering "+templateName)
	}

	SecurityHeaders(c)
	c.Type("html", "utf-8")

	return c.Send(out.Bytes())
}
