package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/models"
)

// ErrorHandler responde cualquier error no manejado con el formato {"detail": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(models.ErrorResponse{Detail: err.Error()})
}
