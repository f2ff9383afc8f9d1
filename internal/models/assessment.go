package models

import "time"

// AssessmentRecord is one graded entry of a student in a subject.
type AssessmentRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;uniqueIndex:idx_assessment_entry,priority:1" json:"student_id"`
	Subject        string    `gorm:"size:120;not null;uniqueIndex:idx_assessment_entry,priority:2" json:"subject"`
	AssessmentType string    `gorm:"size:120;not null;uniqueIndex:idx_assessment_entry,priority:3" json:"assessment_type"`
	Term           string    `gorm:"size:32;not null;uniqueIndex:idx_assessment_entry,priority:4;index:idx_assessment_term" json:"term"`
	AcademicYear   string    `gorm:"size:16;not null;uniqueIndex:idx_assessment_entry,priority:5;index:idx_assessment_term" json:"academic_year"`
	Score          float64   `gorm:"not null" json:"score"`
	MaxScore       float64   `gorm:"not null" json:"max_score"`
	RecordedBy     uint      `json:"recorded_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
