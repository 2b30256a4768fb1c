package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-service/internal/api/http"
	"github.com/spec-kit/commerce-service/internal/observability"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

func newMiddlewareApp(metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("thing", nil)
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestErrorMiddleware_RendersDomainError(t *testing.T) {
	app := newMiddlewareApp(observability.NewMetrics())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	assert.Equal(t, "NOT_FOUND", envelope["code"])
}

func TestRequestCountersRecordRenderedStatus(t *testing.T) {
	metrics := observability.NewMetrics()
	app := newMiddlewareApp(metrics)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	requests, errorCounts := metrics.Snapshot()
	// failed requests count under the status the client actually saw
	assert.Equal(t, int64(1), requests["/boom|GET|404"])
	assert.Zero(t, requests["/boom|GET|200"])
	assert.Equal(t, int64(1), requests["/ok|GET|200"])
	assert.Equal(t, int64(1), errorCounts["/boom|GET|NOT_FOUND"])
}
