package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/nextride/internal/models"
)

// StatsSource entrega el resumen de scraping
type StatsSource interface {
	Strategy() string
	Stats() models.ScraperSummary
}

// StatusHandler maneja el estado completo del sistema
type StatusHandler struct {
	source    StatsSource
	version   string
	startTime time.Time
}

// NewStatusHandler crea un nuevo handler de status
func NewStatusHandler(source StatsSource, version string) *StatusHandler {
	return &StatusHandler{
		source:    source,
		version:   version,
		startTime: time.Now(),
	}
}

// SystemStatus representa el estado completo del sistema
type SystemStatus struct {
	Backend BackendStatus         `json:"backend"`
	Scraper models.ScraperSummary `json:"scraper"`
}

// BackendStatus representa el estado del backend
type BackendStatus struct {
	Status   string `json:"status"`
	Uptime   int64  `json:"uptime"`
	Version  string `json:"version"`
	Strategy string `json:"strategy"`
}

// GetStatus obtiene el estado del backend y los contadores del scraper
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(SystemStatus{
		Backend: BackendStatus{
			Status:   "online",
			Uptime:   int64(time.Since(h.startTime).Seconds()),
			Version:  h.version,
			Strategy: h.source.Strategy(),
		},
		Scraper: h.source.Stats(),
	})
}
