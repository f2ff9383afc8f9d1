package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/service"
	"github.com/noah-isme/gema-result-api/internal/utils"
)

// ResultSheetHandler wires the remarks, ratings and publication endpoints.
type ResultSheetHandler struct {
	service service.ResultSheetService
	logger  zerolog.Logger
}

// NewResultSheetHandler constructs the handler.
func NewResultSheetHandler(service service.ResultSheetService, logger zerolog.Logger) *ResultSheetHandler {
	return &ResultSheetHandler{
		service: service,
		logger:  logger.With().Str("component", "result_sheet_handler").Logger(),
	}
}

// Register attaches sheet endpoints to the router group.
func (h *ResultSheetHandler) Register(router fiber.Router) {
	router.Put("/sheets", h.upsert)
	router.Delete("/sheets/:student_id", h.delete)
}

func (h *ResultSheetHandler) upsert(c *fiber.Ctx) error {
	var payload dto.ResultSheetUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	sheet, err := h.service.Upsert(requestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrInvalidAcademicYear), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("student_id", payload.StudentID).Msg("failed to save result sheet")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to save result sheet")
		}
	}

	return utils.SendSuccess(c, "result sheet saved", sheet)
}

func (h *ResultSheetHandler) delete(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	term, year, err := termQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), studentID, term, year, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrResultSheetNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "result sheet not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("student_id", studentID).Msg("failed to delete result sheet")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete result sheet")
	}

	return utils.SendSuccess(c, "result sheet deleted", nil)
}
