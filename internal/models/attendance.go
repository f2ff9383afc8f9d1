package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceRecord is a single day's attendance mark.
type AttendanceRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StudentID uint           `gorm:"not null;index:idx_attendance_student_date,priority:1" json:"student_id"`
	Date      datatypes.Date `gorm:"not null;index:idx_attendance_student_date,priority:2" json:"date"`
	Status    string         `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
