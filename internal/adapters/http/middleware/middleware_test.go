package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microloan/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestSetup_MetricsAndRequestID(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	Setup(app, &config.Config{AppMode: "dev"}, nil, metrics)
	app.Get("/metrics", metrics.Endpoint())
	app.Get("/loans/:id", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/loans/L1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `microloan_http_requests_total{method="GET",route="/loans/:id",status="200"} 1`))
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `"success":false`)
	require.Contains(t, string(body), "short and stout")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNoCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/x", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("x") })
	app.Get("/y", CacheControl(time.Minute), func(c *fiber.Ctx) error { return c.SendString("y") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	require.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), "no-store")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/y", nil))
	require.NoError(t, err)
	require.Equal(t, "public, max-age=60", resp.Header.Get(fiber.HeaderCacheControl))
}
