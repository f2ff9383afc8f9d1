package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-result-api/internal/models"
)

// AssessmentRepository provides persistence for graded assessment entries.
type AssessmentRepository interface {
	ListForStudents(ctx context.Context, studentIDs []uint, term, academicYear string) ([]models.AssessmentRecord, error)
	Upsert(ctx context.Context, record *models.AssessmentRecord) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs an assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// ListForStudents returns entries in insertion order, which the classifier
// relies on for labels it does not recognise.
func (r *assessmentRepository) ListForStudents(ctx context.Context, studentIDs []uint, term, academicYear string) ([]models.AssessmentRecord, error) {
	if len(studentIDs) == 0 {
		return []models.AssessmentRecord{}, nil
	}

	var records []models.AssessmentRecord
	if err := r.db.WithContext(ctx).
		Where("student_id IN ? AND term = ? AND academic_year = ?", studentIDs, term, academicYear).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *assessmentRepository) Upsert(ctx context.Context, record *models.AssessmentRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "subject"},
			{Name: "assessment_type"},
			{Name: "term"},
			{Name: "academic_year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"score", "max_score", "recorded_by", "updated_at"}),
	}).Create(record).Error
}
