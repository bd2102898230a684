package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/middleware"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps domain errors onto HTTP responses so every handler
// reports rejections the same way.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, fallback string) error {
	if isValidationError(err) {
		return utils.SendValidationError(c, err)
	}

	var transitionErr *progress.TransitionError
	if errors.As(err, &transitionErr) {
		return utils.SendErrorWithDetails(c, fiber.StatusConflict, transitionErr.Error(), transitionErr.Reasons)
	}

	var joinErr *service.JoinRejectedError
	if errors.As(err, &joinErr) {
		return utils.SendError(c, fiber.StatusForbidden, joinErr.Reason)
	}

	var timingErr *service.TimingValidationError
	if errors.As(err, &timingErr) {
		return utils.SendErrorWithDetails(c, fiber.StatusUnprocessableEntity, "invalid session timing", timingErr.Violations)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return utils.SendError(c, fiber.StatusConflict, "record was modified concurrently, retry")
	case errors.Is(err, repository.ErrSessionFull):
		return utils.SendError(c, fiber.StatusForbidden, "Session is at capacity")
	case errors.Is(err, progress.ErrAttemptsExhausted):
		return utils.SendError(c, fiber.StatusConflict, "assessment attempt limit reached")
	case errors.Is(err, service.ErrNotHost):
		return utils.SendError(c, fiber.StatusForbidden, "only the session host may perform this action")
	case errors.Is(err, service.ErrSessionEnded):
		return utils.SendError(c, fiber.StatusConflict, "session has already ended")
	case errors.Is(err, service.ErrNotNoteOwner):
		return utils.SendError(c, fiber.StatusForbidden, "note belongs to another user")
	case errors.Is(err, service.ErrAudioTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "audio file exceeds maximum allowed size")
	case errors.Is(err, service.ErrAudioTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "audio file type not allowed")
	}

	logger.Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}
