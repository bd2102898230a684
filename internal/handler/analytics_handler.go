package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

// AnalyticsHandler exposes learning analytics endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/", h.forPeriod)
}

func (h *AnalyticsHandler) forPeriod(c *fiber.Ctx) error {
	var query dto.AnalyticsQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	start, err := time.Parse("2006-01-02", query.Start)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", query.End)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return utils.SendError(c, fiber.StatusBadRequest, "end date precedes start date")
	}

	userID := userIDFromContext(c)
	analytics, err := h.service.ForPeriod(c.Context(), userID, progress.Period{Start: start, End: end})
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to compute analytics")
	}
	return utils.SendSuccess(c, "analytics computed", analytics)
}
