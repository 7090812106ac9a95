package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/nextride/internal/config"
	"github.com/yourorg/nextride/internal/debug"
	"github.com/yourorg/nextride/internal/handlers"
)

// Scraper agrupa lo que exponen los endpoints públicos
type Scraper interface {
	handlers.ScheduleService
	handlers.StatsSource
}

func Register(app *fiber.App, cfg config.Config, scraper Scraper) {
	scheduleHandler := handlers.NewScheduleHandler(scraper)
	healthHandler := handlers.NewHealthHandler(cfg)
	statusHandler := handlers.NewStatusHandler(scraper, cfg.AppVersion)

	// Health check mínimo
	app.Get("/", handlers.Root)

	// ============================================================================
	// API PÚBLICA
	// ============================================================================
	api := app.Group("/api")

	api.Get("/health", healthHandler.Health)
	api.Get("/status", statusHandler.GetStatus)

	// GET /api/schedule/1123
	api.Get("/schedule/:stopNumber", scheduleHandler.GetSchedule)

	// ============================================================================
	// DEBUG DASHBOARD (solo con DEBUG_DASHBOARD=true)
	// ============================================================================
	if !debug.IsEnabled() {
		return
	}

	app.Use("/ws/debug", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/debug", websocket.New(func(c *websocket.Conn) {
		debug.HandleWebSocketFiber(c)
	}))
}
