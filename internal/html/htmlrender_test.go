package html

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gofiber/fiber/v2"
)

var testViews = fstest.MapFS{
	"layouts/main.html": {Data: []byte(`<html><title>{{.title}}</title>{{embed}}</html>`)},
	"hello.html":        {Data: []byte(`<p>Hello {{.name}}</p>`)},
}

func render(t *testing.T, r *RendererFiber, name string, data map[string]any) (*http.Response, string) {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return r.Render(c, name, data)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestRenderEmbeddedWithLayout(t *testing.T) {
	r, err := NewRendererFiber(false, testViews, "", ".html")
	if err != nil {
		t.Fatal(err)
	}

	resp, body := render(t, r, "hello", map[string]any{"title": "Greeting", "name": "<Jane>"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	want := `<html><title>Greeting</title><p>Hello &lt;Jane&gt;</p></html>`
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestRenderPrefersExternalDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "layouts"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"layouts/main.html": `{{embed}}`,
		"hello.html":        `external {{.name}}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewRendererFiber(false, testViews, dir, ".html")
	if err != nil {
		t.Fatal(err)
	}

	_, body := render(t, r, "hello", map[string]any{"name": "Jane"})
	if body != "external Jane" {
		t.Errorf("body = %q, want the external template", body)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	r, err := NewRendererFiber(false, testViews, "", ".html")
	if err != nil {
		t.Fatal(err)
	}

	resp, _ := render(t, r, "missing", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
