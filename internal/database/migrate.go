package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-result-api/internal/models"
)

// AutoMigrate creates or updates the tables owned by the results service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Class{},
		&models.Student{},
		&models.AssessmentRecord{},
		&models.AttendanceRecord{},
		&models.ResultSheet{},
	)
}
