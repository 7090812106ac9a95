package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "info", levelFor(200))
	assert.Equal(t, "info", levelFor(304))
	assert.Equal(t, "warn", levelFor(400))
	assert.Equal(t, "error", levelFor(503))
}

func TestSourceFor(t *testing.T) {
	assert.Equal(t, "grt", sourceFor("/api/schedule/1123"))
	assert.Equal(t, "backend", sourceFor("/api/health"))
	assert.Equal(t, "backend", sourceFor("/"))
}

func TestDashboardLogger_passesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(DashboardLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
