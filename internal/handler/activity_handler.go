package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

// ActivityHandler exposes the workbook activity feed.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/", h.record)
	router.Get("/", h.list)
}

func (h *ActivityHandler) record(c *fiber.Ctx) error {
	var req dto.RecordActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.service.Record(c.Context(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to record activity")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", activity)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	query := dto.ActivityListQuery{
		Since: c.Query("since"),
		Until: c.Query("until"),
		Type:  c.Query("type"),
	}

	activities, err := h.service.List(c.Context(), userIDFromContext(c), query)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list activity")
	}
	return utils.SendSuccess(c, "activity retrieved", activities)
}
