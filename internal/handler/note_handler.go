package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	"github.com/c50bossio/6fb-workbook-api/internal/utils"
)

// NoteHandler exposes workbook note endpoints.
type NoteHandler struct {
	service service.NoteService
	logger  zerolog.Logger
}

// NewNoteHandler constructs a note handler.
func NewNoteHandler(service service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger.With().Str("component", "note_handler").Logger(),
	}
}

// Register wires note routes.
func (h *NoteHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Get("/:noteID", h.get)
	router.Patch("/:noteID", h.update)
	router.Delete("/:noteID", h.delete)
	router.Post("/:noteID/audio", h.attachAudio)
}

func (h *NoteHandler) create(c *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.service.Create(c.Context(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create note")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "note created", note)
}

func (h *NoteHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	query := dto.NoteListQuery{
		ModuleID: c.Query("module_id"),
		LessonID: c.Query("lesson_id"),
		Tag:      c.Query("tag"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.List(c.Context(), userIDFromContext(c), query)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list notes")
	}
	return utils.SendSuccessWithMeta(c, "notes retrieved", result.Notes, fiber.Map{"pagination": result.Pagination})
}

func (h *NoteHandler) get(c *fiber.Ctx) error {
	note, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("noteID"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch note")
	}
	return utils.SendSuccess(c, "note retrieved", note)
}

func (h *NoteHandler) update(c *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.service.Update(c.Context(), userIDFromContext(c), c.Params("noteID"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update note")
	}
	return utils.SendSuccess(c, "note updated", note)
}

func (h *NoteHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), userIDFromContext(c), c.Params("noteID")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to delete note")
	}
	return utils.SendSuccess(c, "note deleted", nil)
}

func (h *NoteHandler) attachAudio(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "audio file is required")
	}

	note, err := h.service.AttachAudio(c.Context(), userIDFromContext(c), c.Params("noteID"), file)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to attach audio")
	}
	return utils.SendSuccess(c, "audio attached", note)
}
