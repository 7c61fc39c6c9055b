// Package server exposes presets, devices and live control over HTTP and a
// websocket.
package server

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"go-juno/bridge"
	"go-juno/debug"
	"go-juno/midi"
	"go-juno/params"
	"go-juno/preset"
)

// Engine reports bridge state.
type Engine interface {
	State() string
	Stats() bridge.Stats
}

// Devices lists input ports.
type Devices interface {
	Ports() []midi.Port
}

// Router selects the input and accepts note events from remote clients.
type Router interface {
	Select(id string) error
	Selected() (string, bool)
	Dispatch(source string, msg midi.Message) bool
}

// Voices reports sounding notes.
type Voices interface {
	Sounding() []uint8
}

type Deps struct {
	Engine   Engine
	Devices  Devices
	Router   Router
	Voices   Voices
	Store    *preset.Store
	Controls *params.Controls
}

type Server struct {
	deps      Deps
	validator *validator.Validate
	app       *fiber.App
}

func New(deps Deps) *Server {
	s := &Server{
		deps:      deps,
		validator: validator.New(),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Output: debug.Writer("http"),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/status", s.Status)

	presets := app.Group("/presets")
	presets.Get("/", s.ListPresets)
	presets.Get("/:name", s.GetPreset)
	presets.Put("/:name", s.SavePreset)
	presets.Delete("/:name", s.DeletePreset)
	presets.Post("/:name/apply", s.ApplyPreset)

	devices := app.Group("/devices")
	devices.Get("/", s.ListDevices)
	devices.Post("/select", s.SelectDevice)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleSocket))

	s.app = app
	return s
}

// App returns the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving addr until Shutdown.
func (s *Server) Listen(addr string) error {
	debug.Log("http", "listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
