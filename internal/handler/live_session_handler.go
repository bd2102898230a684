package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

// LiveSessionHandler exposes live session endpoints.
type LiveSessionHandler struct {
	service service.LiveSessionService
	logger  zerolog.Logger
}

// NewLiveSessionHandler constructs a live session handler.
func NewLiveSessionHandler(service service.LiveSessionService, logger zerolog.Logger) *LiveSessionHandler {
	return &LiveSessionHandler{
		service: service,
		logger:  logger.With().Str("component", "live_session_handler").Logger(),
	}
}

// Register wires session routes.
func (h *LiveSessionHandler) Register(router fiber.Router) {
	router.Post("/", h.schedule)
	router.Get("/:sessionID", h.get)
	router.Get("/:sessionID/participants", h.listParticipants)
	router.Post("/:sessionID/join", h.join)
	router.Post("/:sessionID/leave", h.leave)
	router.Post("/:sessionID/invite", h.invite)
	router.Patch("/:sessionID/participants/role", h.changeRole)
	router.Post("/:sessionID/engagement", h.recordEngagement)
	router.Post("/:sessionID/lock", h.lock)
	router.Post("/:sessionID/end", h.end)
}

func (h *LiveSessionHandler) schedule(c *fiber.Ctx) error {
	var req dto.ScheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Schedule(c.Context(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to schedule session")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session scheduled", session)
}

func (h *LiveSessionHandler) get(c *fiber.Ctx) error {
	session, err := h.service.Get(c.Context(), c.Params("sessionID"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch session")
	}
	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *LiveSessionHandler) listParticipants(c *fiber.Ctx) error {
	participants, err := h.service.ListParticipants(c.Context(), c.Params("sessionID"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list participants")
	}
	return utils.SendSuccess(c, "participants retrieved", participants)
}

func (h *LiveSessionHandler) join(c *fiber.Ctx) error {
	var req dto.JoinSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	participant, err := h.service.Join(c.Context(), c.Params("sessionID"), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to join session")
	}
	return utils.SendSuccess(c, "joined session", participant)
}

func (h *LiveSessionHandler) leave(c *fiber.Ctx) error {
	if err := h.service.Leave(c.Context(), c.Params("sessionID"), userIDFromContext(c)); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to leave session")
	}
	return utils.SendSuccess(c, "left session", nil)
}

func (h *LiveSessionHandler) invite(c *fiber.Ctx) error {
	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Invite(c.Context(), c.Params("sessionID"), userIDFromContext(c), req); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create invitation")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "invitation created", nil)
}

func (h *LiveSessionHandler) changeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	participant, err := h.service.ChangeRole(c.Context(), c.Params("sessionID"), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to change role")
	}
	return utils.SendSuccess(c, "role updated", participant)
}

func (h *LiveSessionHandler) recordEngagement(c *fiber.Ctx) error {
	var req dto.RecordEngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	participant, err := h.service.RecordEngagement(c.Context(), c.Params("sessionID"), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to record engagement")
	}
	return utils.SendSuccess(c, "engagement recorded", participant)
}

func (h *LiveSessionHandler) lock(c *fiber.Ctx) error {
	var req dto.LockSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Lock(c.Context(), c.Params("sessionID"), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to lock session")
	}
	return utils.SendSuccess(c, "session locked", session)
}

func (h *LiveSessionHandler) end(c *fiber.Ctx) error {
	session, err := h.service.End(c.Context(), c.Params("sessionID"), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to end session")
	}
	return utils.SendSuccess(c, "session ended", session)
}
