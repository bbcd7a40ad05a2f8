package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/services"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	users map[string]*models.User
	err   error
}

func (f *fakeSessions) Session(ctx context.Context, token string) (*models.User, *models.AccessScope, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	u, ok := f.users[token]
	if !ok {
		return nil, nil, services.ErrTokenInvalid
	}
	return u, &models.AccessScope{Role: u.Role, UserID: u.ID, FullName: u.FullName}, nil
}

func protectedApp(sessions SessionResolver, roles ...string) *fiber.App {
	app := fiber.New()
	auth := NewAuthMiddleware(sessions)
	final := func(c fiber.Ctx) error {
		id, _ := GetUserIDFromContext(c)
		return c.SendString(fmt.Sprintf("%d:%s", id, GetAccessTokenFromContext(c)))
	}
	if len(roles) > 0 {
		app.Get("/private", auth.Authenticate(), RequireRoles(roles...), final)
	} else {
		app.Get("/private", auth.Authenticate(), final)
	}
	return app
}

func call(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	if resp.StatusCode == fiber.StatusOK {
		return resp.StatusCode, ""
	}
	var body struct {
		Error dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body.Error.Code
}

func TestAuthenticate(t *testing.T) {
	sessions := &fakeSessions{users: map[string]*models.User{
		"agent-token": {ID: 4, Role: models.RoleAgent, FullName: "Agent"},
		"admin-token": {ID: 1, Role: models.RoleAdmin, FullName: "Admin"},
	}}

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", fiber.StatusUnauthorized, "MISSING_AUTHORIZATION_HEADER"},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "INVALID_AUTHORIZATION_FORMAT"},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized, "TOKEN_INVALID"},
		{"valid", "Bearer agent-token", fiber.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := call(t, protectedApp(sessions), tc.header)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestAuthenticate_SetsLocals(t *testing.T) {
	sessions := &fakeSessions{users: map[string]*models.User{"t1": {ID: 9, Role: models.RoleClient}}}
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer t1")

	resp, err := protectedApp(sessions).Test(req)
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "9:t1", string(buf[:n]))
}

func TestAuthenticate_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{services.ErrTokenExpired, "TOKEN_EXPIRED"},
		{services.ErrTokenRevoked, "TOKEN_REVOKED"},
		{fmt.Errorf("lookup: %w", businessflow.ErrAccountInactive), "ACCOUNT_INACTIVE"},
		{businessflow.ErrSessionUserNotFound, "UNAUTHORIZED"},
		{errors.New("db down"), "TOKEN_VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, code := call(t, protectedApp(&fakeSessions{err: tc.err}), "Bearer x")
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	sessions := &fakeSessions{users: map[string]*models.User{
		"agent-token": {ID: 4, Role: models.RoleAgent},
		"admin-token": {ID: 1, Role: models.RoleAdmin},
	}}
	app := protectedApp(sessions, models.RoleAdmin)

	status, _ := call(t, app, "Bearer admin-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, code := call(t, app, "Bearer agent-token")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)
}
