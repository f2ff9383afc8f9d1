package dto

import (
	"time"

	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/result"
)

// ResultSheetUpsertRequest captures the teacher-authored part of a result.
type ResultSheetUpsertRequest struct {
	StudentID       uint   `json:"student_id" validate:"required"`
	Term            string `json:"term" validate:"required,max=32"`
	AcademicYear    string `json:"academic_year" validate:"required,len=9"`
	TeacherRemark   string `json:"teacher_remark" validate:"omitempty,max=2000"`
	PrincipalRemark string `json:"principal_remark" validate:"omitempty,max=2000"`
	Punctuality     int    `json:"punctuality" validate:"gte=0,lte=5"`
	Neatness        int    `json:"neatness" validate:"gte=0,lte=5"`
	Honesty         int    `json:"honesty" validate:"gte=0,lte=5"`
	Cooperation     int    `json:"cooperation" validate:"gte=0,lte=5"`
	Attentiveness   int    `json:"attentiveness" validate:"gte=0,lte=5"`
	Politeness      int    `json:"politeness" validate:"gte=0,lte=5"`
	DaysPresent     int    `json:"days_present" validate:"gte=0"`
	DaysAbsent      int    `json:"days_absent" validate:"gte=0"`
	TotalSchoolDays int    `json:"total_school_days" validate:"gte=0"`
	NextTermBegins  string `json:"next_term_begins" validate:"omitempty,datetime=2006-01-02"`
	NextTermFees    string `json:"next_term_fees" validate:"omitempty,max=120"`
	IsPublished     bool   `json:"is_published"`
}

// ResultSheetResponse serialises a stored result sheet.
type ResultSheetResponse struct {
	ID              uint           `json:"id"`
	StudentID       uint           `json:"student_id"`
	Term            string         `json:"term"`
	AcademicYear    string         `json:"academic_year"`
	TeacherRemark   string         `json:"teacher_remark"`
	PrincipalRemark string         `json:"principal_remark"`
	Ratings         result.Ratings `json:"ratings"`
	DaysPresent     int            `json:"days_present"`
	DaysAbsent      int            `json:"days_absent"`
	TotalSchoolDays int            `json:"total_school_days"`
	NextTermBegins  *time.Time     `json:"next_term_begins,omitempty"`
	NextTermFees    string         `json:"next_term_fees"`
	IsPublished     bool           `json:"is_published"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewResultSheetResponse converts a model into a DTO.
func NewResultSheetResponse(sheet models.ResultSheet) ResultSheetResponse {
	var next *time.Time
	if sheet.NextTermBegins != nil {
		t := time.Time(*sheet.NextTermBegins)
		next = &t
	}

	return ResultSheetResponse{
		ID:              sheet.ID,
		StudentID:       sheet.StudentID,
		Term:            sheet.Term,
		AcademicYear:    sheet.AcademicYear,
		TeacherRemark:   sheet.TeacherRemark,
		PrincipalRemark: sheet.PrincipalRemark,
		Ratings: result.Ratings{
			Punctuality:   sheet.Punctuality,
			Neatness:      sheet.Neatness,
			Honesty:       sheet.Honesty,
			Cooperation:   sheet.Cooperation,
			Attentiveness: sheet.Attentiveness,
			Politeness:    sheet.Politeness,
		},
		DaysPresent:     sheet.DaysPresent,
		DaysAbsent:      sheet.DaysAbsent,
		TotalSchoolDays: sheet.TotalSchoolDays,
		NextTermBegins:  next,
		NextTermFees:    sheet.NextTermFees,
		IsPublished:     sheet.IsPublished,
		UpdatedAt:       sheet.UpdatedAt,
	}
}

// AssessmentUpsertRequest captures one graded entry.
type AssessmentUpsertRequest struct {
	StudentID      uint    `json:"student_id" validate:"required"`
	Subject        string  `json:"subject" validate:"required,max=120"`
	AssessmentType string  `json:"assessment_type" validate:"required,max=120"`
	Score          float64 `json:"score" validate:"gte=0"`
	MaxScore       float64 `json:"max_score" validate:"required,gt=0"`
	Term           string  `json:"term" validate:"required,max=32"`
	AcademicYear   string  `json:"academic_year" validate:"required,len=9"`
}

// AssessmentResponse serialises a stored assessment entry.
type AssessmentResponse struct {
	ID             uint      `json:"id"`
	StudentID      uint      `json:"student_id"`
	Subject        string    `json:"subject"`
	AssessmentType string    `json:"assessment_type"`
	Slot           string    `json:"slot"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"max_score"`
	Term           string    `json:"term"`
	AcademicYear   string    `json:"academic_year"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAssessmentResponse converts a model into a DTO.
func NewAssessmentResponse(record models.AssessmentRecord) AssessmentResponse {
	return AssessmentResponse{
		ID:             record.ID,
		StudentID:      record.StudentID,
		Subject:        record.Subject,
		AssessmentType: record.AssessmentType,
		Slot:           result.ParseAssessmentType(record.AssessmentType).Slot.String(),
		Score:          record.Score,
		MaxScore:       record.MaxScore,
		Term:           record.Term,
		AcademicYear:   record.AcademicYear,
		UpdatedAt:      record.UpdatedAt,
	}
}

// BatchPrintRequest selects students of a class for one print run.
type BatchPrintRequest struct {
	Term         string `json:"term" validate:"required,max=32"`
	AcademicYear string `json:"academic_year" validate:"required,len=9"`
	StudentIDs   []uint `json:"student_ids" validate:"required,min=1,dive,required"`
	Archive      bool   `json:"archive"`
}

// AttendanceSummaryResponse reports the attendance window and counters
// used to pre-fill a result sheet.
type AttendanceSummaryResponse struct {
	StudentID  uint              `json:"student_id"`
	Term       string            `json:"term"`
	Window     result.DateRange  `json:"window"`
	Computed   result.Attendance `json:"computed"`
	Effective  result.Attendance `json:"effective"`
	Overridden bool              `json:"overridden"`
}

// PrintReceiptResponse reports where an archived print run was stored.
type PrintReceiptResponse struct {
	Location string `json:"location"`
	Cards    int    `json:"cards"`
	Bytes    int    `json:"bytes"`
}
