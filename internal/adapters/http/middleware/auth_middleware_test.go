package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/jwt"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingLookup struct {
	mu    sync.Mutex
	users map[string]*models.User
	calls int
	err   error
}

func (l *countingLookup) GetByEmail(_ context.Context, email string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	u, ok := l.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (l *countingLookup) setRole(email string, role domain.Role) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[email].Role = role.String()
}

func newGateApp(tokens *jwt.Service, users UserLookup) *fiber.App {
	app := fiber.New()
	app.Get("/me", Authenticate(tokens), func(c *fiber.Ctx) error {
		return c.SendString(CurrentEmail(c))
	})
	app.Get("/admin", Authenticate(tokens), AdminOnly(users), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Role)
	})
	app.Patch("/loans", Authenticate(tokens), AdminOrManager(users), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func message(t *testing.T, body string) string {
	t.Helper()
	var r response.Response
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r.Message
}

func TestAuthenticate_MissingHeaderSkipsStore(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	users := &countingLookup{users: map[string]*models.User{}}
	app := newGateApp(tokens, users)

	status, body := do(t, app, http.MethodGet, "/admin", "")
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, response.MsgUnauthorized, message(t, body))
	require.Zero(t, users.calls)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, users.calls)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	forged, err := jwt.NewService("other", 15).GenerateAccessToken("a@x.io", "admin")
	require.NoError(t, err)
	users := &countingLookup{users: map[string]*models.User{}}
	app := newGateApp(tokens, users)

	for _, tok := range []string{"garbage", forged} {
		status, body := do(t, app, http.MethodGet, "/admin", tok)
		require.Equal(t, fiber.StatusUnauthorized, status)
		require.Equal(t, response.MsgUnauthorized, message(t, body))
	}
	require.Zero(t, users.calls)
}

func TestAuthenticate_SetsEmail(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	tok, err := tokens.GenerateAccessToken("b@x.io", "user")
	require.NoError(t, err)
	app := newGateApp(tokens, &countingLookup{users: map[string]*models.User{}})

	status, body := do(t, app, http.MethodGet, "/me", tok)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "b@x.io", body)
}

func TestRequireRole_Forbidden(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	users := &countingLookup{users: map[string]*models.User{
		"b@x.io": {Email: "b@x.io", Role: "user"},
		"s@x.io": {Email: "s@x.io", Role: "suspended"},
		"m@x.io": {Email: "m@x.io", Role: "manager"},
	}}
	app := newGateApp(tokens, users)

	cases := []struct {
		email  string
		path   string
		method string
		want   int
	}{
		{"b@x.io", "/admin", http.MethodGet, fiber.StatusForbidden},
		{"s@x.io", "/loans", http.MethodPatch, fiber.StatusForbidden},
		{"ghost@x.io", "/admin", http.MethodGet, fiber.StatusForbidden},
		{"m@x.io", "/admin", http.MethodGet, fiber.StatusForbidden},
		{"m@x.io", "/loans", http.MethodPatch, fiber.StatusNoContent},
	}
	for _, tc := range cases {
		tok, err := tokens.GenerateAccessToken(tc.email, "admin")
		require.NoError(t, err)

		status, body := do(t, app, tc.method, tc.path, tok)
		require.Equal(t, tc.want, status, "%s %s as %s", tc.method, tc.path, tc.email)
		if tc.want == fiber.StatusForbidden {
			require.Equal(t, response.MsgForbidden, message(t, body))
		}
	}
}

func TestRequireRole_RereadsEveryRequest(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	users := &countingLookup{users: map[string]*models.User{
		"a@x.io": {Email: "a@x.io", Role: "admin"},
	}}
	app := newGateApp(tokens, users)
	tok, err := tokens.GenerateAccessToken("a@x.io", "admin")
	require.NoError(t, err)

	status, body := do(t, app, http.MethodGet, "/admin", tok)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "admin", body)

	users.setRole("a@x.io", domain.RoleUser)

	status, _ = do(t, app, http.MethodGet, "/admin", tok)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, 2, users.calls)
}

func TestRequireRole_StoreFailure(t *testing.T) {
	tokens := jwt.NewService("s3cret", 15)
	users := &countingLookup{users: map[string]*models.User{}, err: errors.New("db down")}
	app := newGateApp(tokens, users)
	tok, err := tokens.GenerateAccessToken("a@x.io", "admin")
	require.NoError(t, err)

	status, _ := do(t, app, http.MethodGet, "/admin", tok)
	require.Equal(t, fiber.StatusInternalServerError, status)
}
