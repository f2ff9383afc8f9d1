package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/service"
	"github.com/noah-isme/gema-result-api/internal/utils"
)

// AssessmentHandler wires score entry endpoints for teachers.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches assessment endpoints to the router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Put("/assessments", h.upsert)
}

func (h *AssessmentHandler) upsert(c *fiber.Ctx) error {
	var payload dto.AssessmentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Upsert(requestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrScoreExceedsMax),
			errors.Is(err, service.ErrInvalidAcademicYear),
			isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("student_id", payload.StudentID).Msg("failed to record assessment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record assessment")
		}
	}

	return utils.SendSuccess(c, "assessment recorded", assessment)
}
