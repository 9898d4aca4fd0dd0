package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type stubUsers map[domain.UserID]*domain.User

func (s stubUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type stubRevocations map[string]bool

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s[tokenID], nil
}

func newTestApp(m *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(string(p.Identity.Role))
	})
	app.Get("/", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	users := stubUsers{
		1: {ID: 1, Username: "alice123", Role: domain.RoleEmployee},
		2: {ID: 2, Username: "admin1", Role: domain.RoleAdmin},
	}
	revoked := stubRevocations{}
	m := NewAuthMiddleware(tm, users, revoked)

	employee, err := tm.GenerateToken(users[1].Identity())
	require.NoError(t, err)
	admin, err := tm.GenerateToken(users[2].Identity())
	require.NoError(t, err)
	ghost, err := tm.GenerateToken(domain.Identity{UserID: 99, Role: domain.RoleAdmin})
	require.NoError(t, err)
	loggedOut, err := tm.GenerateToken(users[1].Identity())
	require.NoError(t, err)
	revoked[loggedOut.ID] = true

	app := newTestApp(m)
	assert.Equal(t, http.StatusOK, doRequest(t, app, employee.Token).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, "garbage").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, ghost.Token).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, loggedOut.Token).StatusCode)

	adminOnly := newTestApp(m, RequireAdmin())
	assert.Equal(t, http.StatusForbidden, doRequest(t, adminOnly, employee.Token).StatusCode)
	assert.Equal(t, http.StatusOK, doRequest(t, adminOnly, admin.Token).StatusCode)
}
