package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/middleware"
	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
)

// ErrResultSheetNotFound indicates no sheet exists for the student and term.
var ErrResultSheetNotFound = errors.New("result sheet not found")

// ResultSheetService manages the teacher-authored part of a result.
type ResultSheetService interface {
	Upsert(ctx context.Context, payload dto.ResultSheetUpsertRequest, actor ActivityActor) (dto.ResultSheetResponse, error)
	Delete(ctx context.Context, studentID uint, term, academicYear string, actor ActivityActor) error
}

type resultSheetService struct {
	students  repository.StudentRepository
	sheets    repository.ResultSheetRepository
	validator *validator.Validate
	events    ResultEventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewResultSheetService constructs the sheet service. events may be nil.
func NewResultSheetService(
	students repository.StudentRepository,
	sheets repository.ResultSheetRepository,
	validator *validator.Validate,
	events ResultEventPublisher,
	logger zerolog.Logger,
) ResultSheetService {
	return &resultSheetService{
		students:  students,
		sheets:    sheets,
		validator: validator,
		events:    events,
		logger:    logger.With().Str("component", "result_sheet_service").Logger(),
		now:       time.Now,
	}
}

func (s *resultSheetService) Upsert(ctx context.Context, payload dto.ResultSheetUpsertRequest, actor ActivityActor) (dto.ResultSheetResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-result-api/internal/service/result_sheet")
	ctx, span := tracer.Start(ctx, "result_sheet.upsert")
	span.SetAttributes(
		attribute.Int64("result_sheet.student_id", int64(payload.StudentID)),
		attribute.Int64("result_sheet.actor_id", int64(actor.ID)),
	)
	defer span.End()

	payload.Term = strings.TrimSpace(payload.Term)
	payload.AcademicYear = strings.TrimSpace(payload.AcademicYear)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResultSheetResponse{}, err
	}
	if !result.ValidAcademicYear(payload.AcademicYear) {
		span.SetStatus(codes.Error, "invalid_academic_year")
		return dto.ResultSheetResponse{}, ErrInvalidAcademicYear
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return dto.ResultSheetResponse{}, studentLookupError(err)
	}

	sheet := models.ResultSheet{
		StudentID:       payload.StudentID,
		Term:            payload.Term,
		AcademicYear:    payload.AcademicYear,
		TeacherRemark:   strings.TrimSpace(payload.TeacherRemark),
		PrincipalRemark: strings.TrimSpace(payload.PrincipalRemark),
		Punctuality:     payload.Punctuality,
		Neatness:        payload.Neatness,
		Honesty:         payload.Honesty,
		Cooperation:     payload.Cooperation,
		Attentiveness:   payload.Attentiveness,
		Politeness:      payload.Politeness,
		DaysPresent:     payload.DaysPresent,
		DaysAbsent:      payload.DaysAbsent,
		TotalSchoolDays: payload.TotalSchoolDays,
		NextTermFees:    strings.TrimSpace(payload.NextTermFees),
		IsPublished:     payload.IsPublished,
		UpdatedBy:       actor.ID,
	}
	if payload.NextTermBegins != "" {
		parsed, err := time.Parse("2006-01-02", payload.NextTermBegins)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation_failed")
			return dto.ResultSheetResponse{}, err
		}
		date := datatypes.Date(parsed)
		sheet.NextTermBegins = &date
	}

	if err := s.sheets.Upsert(ctx, &sheet); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "result_sheet_upsert_failed")
		return dto.ResultSheetResponse{}, err
	}

	stored, err := s.sheets.Get(ctx, sheet.StudentID, sheet.Term, sheet.AcademicYear)
	if err != nil {
		span.RecordError(err)
		return dto.ResultSheetResponse{}, err
	}

	if stored.IsPublished {
		s.publish(ctx, ResultEventPublished, stored.StudentID, stored.Term, stored.AcademicYear, actor)
	}

	s.logger.Info().
		Uint("student_id", stored.StudentID).
		Str("term", stored.Term).
		Str("academic_year", stored.AcademicYear).
		Bool("published", stored.IsPublished).
		Uint("actor_id", actor.ID).
		Msg("result sheet saved")

	return dto.NewResultSheetResponse(stored), nil
}

func (s *resultSheetService) Delete(ctx context.Context, studentID uint, term, academicYear string, actor ActivityActor) error {
	tracer := otel.Tracer("github.com/noah-isme/gema-result-api/internal/service/result_sheet")
	ctx, span := tracer.Start(ctx, "result_sheet.delete")
	span.SetAttributes(attribute.Int64("result_sheet.student_id", int64(studentID)))
	defer span.End()

	affected, err := s.sheets.Delete(ctx, studentID, strings.TrimSpace(term), strings.TrimSpace(academicYear))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "result_sheet_delete_failed")
		return err
	}
	if affected == 0 {
		return ErrResultSheetNotFound
	}

	s.publish(ctx, ResultEventDeleted, studentID, term, academicYear, actor)
	s.logger.Info().Uint("student_id", studentID).Str("term", term).Uint("actor_id", actor.ID).Msg("result sheet deleted")
	return nil
}

// publish is best effort; a broker outage never fails the write.
func (s *resultSheetService) publish(ctx context.Context, eventType string, studentID uint, term, academicYear string, actor ActivityActor) {
	if s.events == nil {
		return
	}

	event := ResultEvent{
		Type:          eventType,
		StudentID:     studentID,
		Term:          term,
		AcademicYear:  academicYear,
		ActorID:       actor.ID,
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Uint("student_id", studentID).Msg("failed to publish result event")
	}
}

func studentLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}
