package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-service/internal/api/http"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/observability"
)

type failingWhitelist struct{}

func (failingWhitelist) Insert(context.Context, string, time.Duration) error {
	return errors.New("store down")
}

func (failingWhitelist) Exists(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func (failingWhitelist) Remove(context.Context, string) error {
	return errors.New("store down")
}

func newGateApp(tokens *auth.TokenManager, store auth.WhitelistStore) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	middleware := auth.NewAuthMiddleware(tokens, store)
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return errors.New("principal missing")
		}
		return c.JSON(fiber.Map{
			"user_id": principal.UserID,
			"email":   principal.Email,
			"role":    principal.Role,
		})
	})
	return app
}

func doProtected(t *testing.T, app *fiber.App, authHeader string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	code, _ := envelope["code"].(string)
	return code
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"bearer ", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, auth.ExtractToken(tt.header), "header %q", tt.header)
	}
}

func TestAuthGate_NoToken(t *testing.T) {
	app := newGateApp(auth.NewTokenManager("secret", time.Hour), auth.NewMemoryWhitelist())

	// an empty credential is "no token" whether the scheme is present or not
	for _, header := range []string{"", "Bearer", "Bearer "} {
		resp, body := doProtected(t, app, header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, body), "header %q", header)
	}
}

func TestAuthGate_NotWhitelistedBeforeSignatureCheck(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	app := newGateApp(tokens, auth.NewMemoryWhitelist())

	// a validly-signed but never-issued token is rejected as not whitelisted
	token, _, err := tokens.Generate(&domain.User{ID: "U1", Email: "a@x.com", Role: domain.RoleUser})
	require.NoError(t, err)

	resp, body := doProtected(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "TOKEN_NOT_WHITELISTED", errorCode(t, body))

	// garbage gets the same verdict: the whitelist lookup happens first,
	// so no signature work runs for unknown token values
	resp, body = doProtected(t, app, "garbage")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "TOKEN_NOT_WHITELISTED", errorCode(t, body))
}

func TestAuthGate_InvalidTokenAfterWhitelist(t *testing.T) {
	store := auth.NewMemoryWhitelist()
	app := newGateApp(auth.NewTokenManager("secret", time.Hour), store)

	require.NoError(t, store.Insert(context.Background(), "garbage", time.Hour))

	resp, body := doProtected(t, app, "garbage")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, body))
}

func TestAuthGate_TamperedSignature(t *testing.T) {
	store := auth.NewMemoryWhitelist()
	app := newGateApp(auth.NewTokenManager("secret", time.Hour), store)

	forged := auth.NewTokenManager("other-secret", time.Hour)
	token, _, err := forged.Generate(&domain.User{ID: "U1", Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), token, time.Hour))

	resp, body := doProtected(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, body))
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Millisecond)
	store := auth.NewMemoryWhitelist()
	app := newGateApp(tokens, store)

	token, _, err := tokens.Generate(&domain.User{ID: "U1", Email: "a@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), token, time.Hour))

	time.Sleep(10 * time.Millisecond)

	resp, body := doProtected(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, body))
}

func TestAuthGate_StoreFailure(t *testing.T) {
	app := newGateApp(auth.NewTokenManager("secret", time.Hour), failingWhitelist{})

	resp, body := doProtected(t, app, "Bearer anything")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "STORE_UNAVAILABLE", errorCode(t, body))
}

func TestAuthGate_Success(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	store := auth.NewMemoryWhitelist()
	app := newGateApp(tokens, store)

	token, _, err := tokens.Generate(&domain.User{ID: "U1", Email: "a@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), token, time.Hour))

	for _, header := range []string{"Bearer " + token, token} {
		resp, body := doProtected(t, app, header)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "U1", body["user_id"])
		assert.Equal(t, "a@x.com", body["email"])
		assert.Equal(t, string(domain.RoleUser), body["role"])
	}
}

func TestAuthGate_RequireAdmin(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	store := auth.NewMemoryWhitelist()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	middleware := auth.NewAuthMiddleware(tokens, store)
	app.Get("/admin", middleware.Handle, auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	userToken, _, err := tokens.Generate(&domain.User{ID: "U1", Email: "a@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, _, err := tokens.Generate(&domain.User{ID: "A1", Email: "root@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), userToken, time.Hour))
	require.NoError(t, store.Insert(context.Background(), adminToken, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
