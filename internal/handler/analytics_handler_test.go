package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/handler"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
)

type stubAnalyticsService struct {
	response dto.AnalyticsResponse
	err      error
}

func (s stubAnalyticsService) ForPeriod(context.Context, string, progress.Period) (dto.AnalyticsResponse, error) {
	return s.response, s.err
}

func (s stubAnalyticsService) Invalidate(context.Context, string) {}

func newAnalyticsApp(svc stubAnalyticsService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/analytics", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		c.Locals("user_role", "member")
		return c.Next()
	})
	handler.NewAnalyticsHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestAnalyticsHandlerForPeriod(t *testing.T) {
	app := newAnalyticsApp(stubAnalyticsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/?start=2026-08-01&end=2026-08-28", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyticsHandlerRejectsBadDates(t *testing.T) {
	app := newAnalyticsApp(stubAnalyticsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/?start=notadate&end=2026-08-28", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsHandlerRejectsInvertedRange(t *testing.T) {
	app := newAnalyticsApp(stubAnalyticsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/?start=2026-08-28&end=2026-08-01", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
