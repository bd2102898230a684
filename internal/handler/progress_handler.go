package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

// ProgressHandler exposes lesson and module progress endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/modules", h.listModules)
	router.Get("/modules/:moduleID", h.getModule)
	router.Get("/lessons/:lessonID", h.getLesson)
	router.Post("/lessons/:lessonID/progress", h.reportProgress)
	router.Post("/lessons/:lessonID/transition", h.transition)
	router.Post("/lessons/:lessonID/assessment", h.submitAssessment)
}

func (h *ProgressHandler) listModules(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	modules, err := h.service.ListModuleProgress(c.Context(), userID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list module progress")
	}
	return utils.SendSuccess(c, "module progress retrieved", modules)
}

func (h *ProgressHandler) getModule(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	module, err := h.service.GetModuleProgress(c.Context(), userID, c.Params("moduleID"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch module progress")
	}
	return utils.SendSuccess(c, "module progress retrieved", module)
}

func (h *ProgressHandler) getLesson(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	lesson, err := h.service.GetLessonProgress(c.Context(), userID, c.Params("lessonID"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch lesson progress")
	}
	return utils.SendSuccess(c, "lesson progress retrieved", lesson)
}

func (h *ProgressHandler) reportProgress(c *fiber.Ctx) error {
	var req dto.ReportLessonProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	lesson, err := h.service.ReportLessonProgress(c.Context(), userID, c.Params("lessonID"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to report lesson progress")
	}
	return utils.SendSuccess(c, "lesson progress updated", lesson)
}

func (h *ProgressHandler) transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	lesson, err := h.service.RequestTransition(c.Context(), userID, c.Params("lessonID"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to apply transition")
	}
	return utils.SendSuccess(c, "lesson status updated", lesson)
}

func (h *ProgressHandler) submitAssessment(c *fiber.Ctx) error {
	var req dto.SubmitAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	outcome, err := h.service.SubmitAssessment(c.Context(), userID, c.Params("lessonID"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to submit assessment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment attempt recorded", outcome)
}
