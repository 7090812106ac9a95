package handlers

import (
	"os"
	"os/exec"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/nextride/internal/config"
	"github.com/yourorg/nextride/internal/debug"
)

// chromeCandidates son los binarios que chromedp busca cuando no hay CHROME_PATH
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// HealthResponse representa el estado de salud del sistema
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// Root responde GET / con un health check mínimo
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// HealthHandler revisa las dependencias locales del scraper
type HealthHandler struct {
	cfg        config.Config
	lookupPath func(string) (string, error)
}

// NewHealthHandler crea el handler de health check
func NewHealthHandler(cfg config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg, lookupPath: exec.LookPath}
}

// Health proporciona un health check completo del sistema
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	services["fetcher"] = h.cfg.FetchStrategy
	services["provider"] = h.cfg.ProviderBaseURL

	// ============================================================================
	// CHECK: Chrome (solo con estrategia browser)
	// ============================================================================
	if h.cfg.FetchStrategy == config.StrategyBrowser {
		if path, ok := h.findChrome(); ok {
			services["chrome"] = "healthy: " + path
		} else {
			services["chrome"] = "not_found"
			overall = "degraded"
		}
	}

	if debug.IsEnabled() {
		services["debug_dashboard"] = "enabled"
	} else {
		services["debug_dashboard"] = "disabled"
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   h.cfg.AppVersion,
	})
}

func (h *HealthHandler) findChrome() (string, bool) {
	if p := h.cfg.Browser.BinaryPath; p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
		return "", false
	}
	for _, name := range chromeCandidates {
		if p, err := h.lookupPath(name); err == nil {
			return p, true
		}
	}
	return "", false
}
