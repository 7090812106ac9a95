package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/nextride/internal/grt"
	"github.com/yourorg/nextride/internal/models"
)

// ScheduleService es lo que el handler necesita del scraper de NextRide
type ScheduleService interface {
	Schedule(ctx context.Context, stopNumber int) (*models.ScheduleResponse, error)
}

// ScheduleHandler maneja solicitudes de horarios por paradero
type ScheduleHandler struct {
	service ScheduleService
}

// NewScheduleHandler crea una nueva instancia del handler
func NewScheduleHandler(service ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// GetSchedule maneja GET /api/schedule/:stopNumber
// Retorna los viajes en tiempo real del paradero
func (h *ScheduleHandler) GetSchedule(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Params("stopNumber"))

	stopNumber, err := strconv.Atoi(raw)
	if err != nil || stopNumber <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Detail: "stop_number must be a positive integer",
		})
	}

	log.Printf("📥 Obteniendo horario para paradero: %d", stopNumber)

	schedule, err := h.service.Schedule(c.UserContext(), stopNumber)
	if err != nil {
		status := grt.HTTPStatus(err)
		log.Printf("❌ Error obteniendo horario (%d): %v", status, err)
		return c.Status(status).JSON(models.ErrorResponse{Detail: err.Error()})
	}

	log.Printf("🚌 Paradero %d: %d viajes en tiempo real", stopNumber, len(schedule.Trips))

	return c.JSON(schedule)
}
