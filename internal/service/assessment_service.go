package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
)

// ErrScoreExceedsMax indicates a score surpasses the assessment maximum.
var ErrScoreExceedsMax = errors.New("score exceeds assessment max")

// AssessmentService records graded entries.
type AssessmentService interface {
	Upsert(ctx context.Context, payload dto.AssessmentUpsertRequest, actor ActivityActor) (dto.AssessmentResponse, error)
}

type assessmentService struct {
	students    repository.StudentRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(students repository.StudentRepository, assessments repository.AssessmentRepository, validator *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		students:    students,
		assessments: assessments,
		validator:   validator,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) Upsert(ctx context.Context, payload dto.AssessmentUpsertRequest, actor ActivityActor) (dto.AssessmentResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-result-api/internal/service/assessment")
	ctx, span := tracer.Start(ctx, "assessment.upsert")
	span.SetAttributes(
		attribute.Int64("assessment.student_id", int64(payload.StudentID)),
		attribute.Int64("assessment.actor_id", int64(actor.ID)),
	)
	defer span.End()

	payload.Subject = strings.TrimSpace(payload.Subject)
	payload.AssessmentType = strings.TrimSpace(payload.AssessmentType)
	payload.Term = strings.TrimSpace(payload.Term)
	payload.AcademicYear = strings.TrimSpace(payload.AcademicYear)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}
	if !result.ValidAcademicYear(payload.AcademicYear) {
		span.SetStatus(codes.Error, "invalid_academic_year")
		return dto.AssessmentResponse{}, ErrInvalidAcademicYear
	}
	if payload.Score > payload.MaxScore+1e-9 {
		err := ErrScoreExceedsMax
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.AssessmentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return dto.AssessmentResponse{}, studentLookupError(err)
	}

	record := models.AssessmentRecord{
		StudentID:      payload.StudentID,
		Subject:        payload.Subject,
		AssessmentType: payload.AssessmentType,
		Term:           payload.Term,
		AcademicYear:   payload.AcademicYear,
		Score:          payload.Score,
		MaxScore:       payload.MaxScore,
		RecordedBy:     actor.ID,
	}
	if err := s.assessments.Upsert(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_upsert_failed")
		return dto.AssessmentResponse{}, err
	}

	slot := result.ParseAssessmentType(record.AssessmentType).Slot
	span.SetAttributes(attribute.String("assessment.slot", slot.String()))
	if slot == result.SlotUnclassified {
		s.logger.Debug().Str("assessment_type", record.AssessmentType).Msg("assessment type not recognised, will fill first free CA slot")
	}

	return dto.NewAssessmentResponse(record), nil
}
