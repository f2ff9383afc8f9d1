package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResultSheet holds the teacher-authored part of a student's term result.
type ResultSheet struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StudentID       uint            `gorm:"not null;uniqueIndex:idx_result_sheet,priority:1" json:"student_id"`
	Term            string          `gorm:"size:32;not null;uniqueIndex:idx_result_sheet,priority:2" json:"term"`
	AcademicYear    string          `gorm:"size:16;not null;uniqueIndex:idx_result_sheet,priority:3" json:"academic_year"`
	TeacherRemark   string          `gorm:"type:text" json:"teacher_remark"`
	PrincipalRemark string          `gorm:"type:text" json:"principal_remark"`
	Punctuality     int             `json:"punctuality"`
	Neatness        int             `json:"neatness"`
	Honesty         int             `json:"honesty"`
	Cooperation     int             `json:"cooperation"`
	Attentiveness   int             `json:"attentiveness"`
	Politeness      int             `json:"politeness"`
	DaysPresent     int             `json:"days_present"`
	DaysAbsent      int             `json:"days_absent"`
	TotalSchoolDays int             `json:"total_school_days"`
	NextTermBegins  *datatypes.Date `json:"next_term_begins"`
	NextTermFees    string          `gorm:"size:120" json:"next_term_fees"`
	IsPublished     bool            `gorm:"not null;default:false" json:"is_published"`
	UpdatedBy       uint            `json:"updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
