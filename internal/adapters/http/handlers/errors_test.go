package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type createBody struct {
	Name string `json:"name" validate:"required"`
}

func newErrorsApp() *fiber.App {
	app := fiber.New()
	app.Post("/items", func(c *fiber.Ctx) error {
		var req createBody
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, err)
		}
		return response.Success(c, "ok", nil)
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if _, err := paramID(c, "id"); err != nil {
			return badRequest(c, err)
		}
		return response.Success(c, "ok", nil)
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env response.Response
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, env
}

func TestBadRequest_Messages(t *testing.T) {
	app := newErrorsApp()

	status, env := send(t, app, fiber.MethodPost, "/items", "{not json")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "Invalid request body", env.Message)

	status, env = send(t, app, fiber.MethodPost, "/items", `{}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "name is required", env.Message)

	status, env = send(t, app, fiber.MethodGet, "/items/abc", "")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "Invalid id", env.Message)

	status, _ = send(t, app, fiber.MethodGet, "/items/7", "")
	require.Equal(t, fiber.StatusOK, status)
}

func TestErrorValues_AreLowercase(t *testing.T) {
	require.Equal(t, "invalid request body", errInvalidBody.Error())
	require.Equal(t, "invalid id", (&paramError{name: "id"}).Error())
}
