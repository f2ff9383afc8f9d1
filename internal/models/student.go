package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// StudentStatusActive marks students that are ranked with their class.
	StudentStatusActive = "active"
	// StudentStatusInactive marks students withdrawn from ranking.
	StudentStatusInactive = "inactive"
	// StudentStatusGraduated marks students who have left the school.
	StudentStatusGraduated = "graduated"
)

// Student represents an enrolled learner.
type Student struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ClassID     uint            `gorm:"index" json:"class_id"`
	Class       Class           `json:"class"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	AdmissionNo string          `gorm:"size:64;index" json:"admission_no"`
	Gender      string          `gorm:"size:16" json:"gender"`
	DateOfBirth *datatypes.Date `json:"date_of_birth"`
	Status      string          `gorm:"size:32;not null;default:'active';index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
