package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/evidenceledger/noticegen/internal/html"
	"github.com/evidenceledger/noticegen/internal/noticeweb"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Serves the notice templates with sample data, reloading them on every request,
// so they can be edited without going through the payment flow.
func main() {

	addr := flag.String("addr", ":8080", "Address to listen on")
	flag.Parse()

	// External templates are looked up relative to the working directory
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	slog.Info("Template preview", "addr", *addr, "workdir", wd, "try", "/page/form")

	views, err := noticeweb.Views()
	if err != nil {
		panic(err)
	}

	// The engine to display the screens (HTML) to the users
	htmlrender, err := html.NewRendererFiber(true, views, "internal/noticeweb/views", ".html")
	if err != nil {
		slog.Error("Failed to initialize template engine", "error", err)
		panic(err)
	}

	app := fiber.New(fiber.Config{
		AppName:                 "Go template development",
		ServerHeader:            "noticegen",
		EnableTrustedProxyCheck: false,
		ReadTimeout:             30 * time.Second,
		WriteTimeout:            30 * time.Second,
	})

	// Recovers from panics anywhere in the stack chain and handles the control to the centralized ErrorHandler
	app.Use(recover.New())

	app.Get("/page/:name", func(c *fiber.Ctx) error {
		name := c.Params("name")

		data := noticeweb.PreviewData(name)
		if data == nil {
			return fiber.NewError(fiber.StatusNotFound, "no sample data for "+name)
		}

		return htmlrender.Render(c, name, data)
	})

	app.Static("/static", "./internal/noticeweb/views/assets")

	if err := app.Listen(*addr); err != nil {
		slog.Error("Preview server stopped", "error", err)
		os.Exit(1)
	}

}
