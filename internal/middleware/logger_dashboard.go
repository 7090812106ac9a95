package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/debug"
)

// DashboardLogger middleware para enviar logs al dashboard en tiempo real
func DashboardLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Procesar request
		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			// El ErrorHandler todavía no escribió la respuesta
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		path := c.Path()
		debug.SendLog(sourceFor(path), levelFor(status), fmt.Sprintf("%s %s", c.Method(), path), map[string]interface{}{
			"method":      c.Method(),
			"path":        path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"ip":          c.IP(),
		})

		return err
	}
}

// levelFor determina el nivel de log según el status code
func levelFor(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}

// sourceFor determina la fuente según la ruta
func sourceFor(path string) string {
	if strings.HasPrefix(path, "/api/schedule") {
		return "grt"
	}
	return "backend"
}
