package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-result-api/internal/models"
)

// ResultSheetRepository persists teacher-authored result sheets.
type ResultSheetRepository interface {
	Get(ctx context.Context, studentID uint, term, academicYear string) (models.ResultSheet, error)
	ListForStudents(ctx context.Context, studentIDs []uint, term, academicYear string) ([]models.ResultSheet, error)
	Upsert(ctx context.Context, sheet *models.ResultSheet) error
	Delete(ctx context.Context, studentID uint, term, academicYear string) (int64, error)
}

type resultSheetRepository struct {
	db *gorm.DB
}

// NewResultSheetRepository constructs a result sheet repository.
func NewResultSheetRepository(db *gorm.DB) ResultSheetRepository {
	return &resultSheetRepository{db: db}
}

func (r *resultSheetRepository) Get(ctx context.Context, studentID uint, term, academicYear string) (models.ResultSheet, error) {
	var sheet models.ResultSheet
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND term = ? AND academic_year = ?", studentID, term, academicYear).
		First(&sheet).Error; err != nil {
		return models.ResultSheet{}, err
	}

	return sheet, nil
}

func (r *resultSheetRepository) ListForStudents(ctx context.Context, studentIDs []uint, term, academicYear string) ([]models.ResultSheet, error) {
	if len(studentIDs) == 0 {
		return []models.ResultSheet{}, nil
	}

	var sheets []models.ResultSheet
	if err := r.db.WithContext(ctx).
		Where("student_id IN ? AND term = ? AND academic_year = ?", studentIDs, term, academicYear).
		Find(&sheets).Error; err != nil {
		return nil, err
	}

	return sheets, nil
}

func (r *resultSheetRepository) Upsert(ctx context.Context, sheet *models.ResultSheet) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "term"}, {Name: "academic_year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"teacher_remark", "principal_remark",
			"punctuality", "neatness", "honesty", "cooperation", "attentiveness", "politeness",
			"days_present", "days_absent", "total_school_days",
			"next_term_begins", "next_term_fees", "is_published", "updated_by", "updated_at",
		}),
	}).Create(sheet).Error
}

func (r *resultSheetRepository) Delete(ctx context.Context, studentID uint, term, academicYear string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND term = ? AND academic_year = ?", studentID, term, academicYear).
		Delete(&models.ResultSheet{})
	return result.RowsAffected, result.Error
}
