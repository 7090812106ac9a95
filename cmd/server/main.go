package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/yourorg/nextride/internal/config"
	"github.com/yourorg/nextride/internal/debug"
	"github.com/yourorg/nextride/internal/grt"
	"github.com/yourorg/nextride/internal/handlers"
	"github.com/yourorg/nextride/internal/middleware"
	"github.com/yourorg/nextride/internal/routes"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuración inválida: %v", err)
	}
	debug.SetEnabled(cfg.DebugDashboard)

	// ============================================================================
	// SCRAPER NEXTRIDE
	// ============================================================================
	svc, err := grt.NewServiceFromConfig(cfg)
	if err != nil {
		log.Fatalf("❌ No se pudo crear el scraper: %v", err)
	}
	log.Printf("✅ Scraper NextRide listo (estrategia %s, proveedor %s)", svc.Strategy(), cfg.ProviderBaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "NextRide Schedule API " + cfg.AppVersion,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS",
		AllowHeaders: "*",
	}))
	if debug.IsEnabled() {
		app.Use(middleware.DashboardLogger())
		log.Println("🐛 Debug dashboard habilitado en /ws/debug")
	}

	routes.Register(app, cfg, svc)

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
	}()

	log.Printf("🚀 Servidor escuchando en %s", cfg.Addr())
	log.Println("📍 Endpoints disponibles:")
	log.Println("   GET  /                          - Health check")
	log.Println("   GET  /api/health                - Estado de dependencias")
	log.Println("   GET  /api/status                - Contadores del scraper")
	log.Println("   GET  /api/schedule/{stop}       - Viajes en tiempo real del paradero")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
