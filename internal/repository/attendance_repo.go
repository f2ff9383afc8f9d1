package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/result"
)

// AttendanceRepository reads attendance aggregates.
type AttendanceRepository interface {
	CountByStatus(ctx context.Context, studentID uint, window result.DateRange) (map[string]int, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) CountByStatus(ctx context.Context, studentID uint, window result.DateRange) (map[string]int, error) {
	var rows []struct {
		Status string
		Total  int
	}

	if err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Select("status, COUNT(*) AS total").
		Where("student_id = ? AND date >= ? AND date < ?", studentID, window.Start, window.End.AddDate(0, 0, 1)).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] += row.Total
	}
	return counts, nil
}
