package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/middleware"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/service"
	"github.com/noah-isme/gema-result-api/internal/utils"
)

// ResultHandler exposes result cards, attendance summaries and printing.
type ResultHandler struct {
	service   service.ResultService
	uploader  printing.Uploader
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewResultHandler constructs the handler. uploader may be nil, in which case
// archive requests report the surface as unavailable.
func NewResultHandler(service service.ResultService, uploader printing.Uploader, validator *validator.Validate, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service:   service,
		uploader:  uploader,
		validator: validator,
		logger:    logger.With().Str("component", "result_handler").Logger(),
	}
}

// RegisterStaff attaches the full-visibility endpoints.
func (h *ResultHandler) RegisterStaff(router fiber.Router, printLimiter fiber.Handler) {
	router.Get("/students/:id/card", h.card)
	router.Get("/students/:id/attendance", h.attendance)
	router.Get("/students/:id/print", printLimiter, h.printCard)
	router.Post("/classes/:id/print", printLimiter, h.printClass)
}

// RegisterPublished attaches the endpoints visible to parents and students.
func (h *ResultHandler) RegisterPublished(router fiber.Router) {
	router.Get("/students/:id/card", middleware.WithAuth(h.publishedCard, middleware.AuthOptions{Role: middleware.AuthRoleFamily}))
}

func (h *ResultHandler) card(c *fiber.Ctx) error {
	return h.sendCard(c, service.AccessForRole(userRoleFromContext(c)))
}

func (h *ResultHandler) publishedCard(c *fiber.Ctx) error {
	return h.sendCard(c, service.AccessPublished)
}

func (h *ResultHandler) sendCard(c *fiber.Ctx, access service.Access) error {
	query, err := cardQuery(c, access)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	card, err := h.service.GetCard(requestContext(c), query)
	if err != nil {
		return h.handleError(c, err, "failed to load result card")
	}

	return utils.SendSuccess(c, "result card retrieved", card)
}

func (h *ResultHandler) attendance(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	term, year, err := termQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.service.GetAttendance(requestContext(c), id, term, year)
	if err != nil {
		return h.handleError(c, err, "failed to load attendance")
	}

	return utils.SendSuccess(c, "attendance retrieved", summary)
}

func (h *ResultHandler) printCard(c *fiber.Ctx) error {
	query, err := cardQuery(c, service.AccessFull)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	archive := c.QueryBool("archive", false)
	name := archiveName(fmt.Sprintf("student-%d", query.StudentID), query.Term, query.AcademicYear)
	surface, memory := h.surface(archive, name)

	receipt, err := h.service.PrintCard(requestContext(c), query, surface)
	if err != nil {
		return h.handleError(c, err, "failed to print result card")
	}

	return h.sendPrint(c, receipt, memory)
}

func (h *ResultHandler) printClass(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.BatchPrintRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.Term = strings.TrimSpace(payload.Term)
	payload.AcademicYear = strings.TrimSpace(payload.AcademicYear)
	if err := h.validator.Struct(payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	name := archiveName(fmt.Sprintf("class-%d", classID), payload.Term, payload.AcademicYear)
	surface, memory := h.surface(payload.Archive, name)

	receipt, err := h.service.PrintClass(requestContext(c), service.ClassPrintQuery{
		ClassID:      classID,
		Term:         payload.Term,
		AcademicYear: payload.AcademicYear,
		StudentIDs:   payload.StudentIDs,
	}, surface)
	if err != nil {
		return h.handleError(c, err, "failed to print class results")
	}

	return h.sendPrint(c, receipt, memory)
}

// surface picks the archive uploader or an in-memory surface whose document
// becomes the response body.
func (h *ResultHandler) surface(archive bool, name string) (printing.Surface, *printing.MemorySurface) {
	if archive {
		return printing.ArchiveSurface{Uploader: h.uploader, Name: name}, nil
	}
	memory := &printing.MemorySurface{}
	return memory, memory
}

func (h *ResultHandler) sendPrint(c *fiber.Ctx, receipt printing.Receipt, memory *printing.MemorySurface) error {
	if memory == nil {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "print document archived", dto.PrintReceiptResponse{
			Location: receipt.Location,
			Cards:    receipt.Cards,
			Bytes:    receipt.Bytes,
		})
	}

	c.Type("html", "utf-8")
	return c.Status(fiber.StatusOK).Send(memory.Document().HTML)
}

func (h *ResultHandler) handleError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrResultNotPublished):
		return utils.SendError(c, fiber.StatusNotFound, "result not published")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrInvalidAcademicYear),
		errors.Is(err, service.ErrStudentNotInClass),
		errors.Is(err, printing.ErrEmptySelection):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, printing.ErrBatchInProgress):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, printing.ErrSurfaceUnavailable):
		requestLogger(h.logger, c).Warn().Err(err).Msg("print surface unavailable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "print surface unavailable")
	case errors.Is(err, printing.ErrRenderTimeout):
		requestLogger(h.logger, c).Warn().Err(err).Msg("print render timed out")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "print rendering timed out")
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}

func cardQuery(c *fiber.Ctx, access service.Access) (service.CardQuery, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return service.CardQuery{}, err
	}
	term, year, err := termQuery(c)
	if err != nil {
		return service.CardQuery{}, err
	}
	return service.CardQuery{StudentID: id, Term: term, AcademicYear: year, Access: access}, nil
}

func archiveName(prefix, term, year string) string {
	replacer := strings.NewReplacer(" ", "-", "/", "-")
	return strings.ToLower(replacer.Replace(fmt.Sprintf("%s-%s-%s", prefix, strings.TrimSpace(term), strings.TrimSpace(year))))
}
