package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]*session.Session

func (f fakeResolver) Resolve(_ context.Context, token string) (*session.Session, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, common.ErrTokenInvalid
}

func newApp(mw fiber.Handler) *fiber.App {
	app := fiber.New()
	g := app.Group("/p")
	g.Use(mw)
	g.Get("/x", func(c fiber.Ctx) error {
		sess, _ := c.Locals(session.LocalsKey).(*session.Session)
		uid := ""
		if sess != nil {
			uid = sess.UserID
		}
		return c.JSON(fiber.Map{"uid": uid})
	})
	return app
}

func decode(t *testing.T, app *fiber.App, path, auth string) (int, map[string]interface{}) {
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	resolver := fakeResolver{
		"viewer": {UserID: "u1", Role: session.RoleViewer},
		"admin":  {UserID: "u2", Role: session.RoleAdmin},
	}

	app := newApp(AuthMiddleware(resolver))
	status, body := decode(t, app, "/p/x", "")
	assert.Equal(t, 401, status)
	assert.Equal(t, "AUTH_001", body["code"])

	status, _ = decode(t, app, "/p/x", "Bearer nope")
	assert.Equal(t, 401, status)

	status, body = decode(t, app, "/p/x", "Bearer viewer")
	assert.Equal(t, 200, status)
	assert.Equal(t, "u1", body["uid"])

	status, body = decode(t, app, "/p/x?token=viewer", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "u1", body["uid"])

	staff := newApp(AuthMiddleware(resolver, session.RoleAdmin, session.RoleEditor))
	status, body = decode(t, staff, "/p/x", "Bearer viewer")
	assert.Equal(t, 403, status)
	assert.Equal(t, "AUTH_003", body["code"])

	status, _ = decode(t, staff, "/p/x", "Bearer admin")
	assert.Equal(t, 200, status)
}

func TestOptionalAuth(t *testing.T) {
	app := newApp(OptionalAuth(fakeResolver{"t": {UserID: "u1"}}))

	status, body := decode(t, app, "/p/x", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "", body["uid"])

	_, body = decode(t, app, "/p/x", "Bearer t")
	assert.Equal(t, "u1", body["uid"])
}
