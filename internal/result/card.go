package result

import (
	"strings"
	"time"
)

// Format selects the printed layout of a report card.
type Format string

const (
	// FormatPrimary is the full marks-table layout for primary/basic classes.
	FormatPrimary Format = "primary"
	// FormatNursery is the skills and personality layout for early years.
	FormatNursery Format = "nursery"
)

var earlyYearsLevels = []string{
	"creche",
	"pre-nursery",
	"pre nursery",
	"nursery",
	"kindergarten",
	"kg",
	"reception",
	"early years",
}

// FormatFor picks the layout from the class level, falling back to the class
// name (e.g. "Nursery 2") when the level is blank or unrecognised.
func FormatFor(level, className string) Format {
	for _, candidate := range []string{level, className} {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized == "" {
			continue
		}
		for _, prefix := range earlyYearsLevels {
			if normalized == prefix || strings.HasPrefix(normalized, prefix+" ") {
				return FormatNursery
			}
		}
	}
	return FormatPrimary
}

// Student carries the identity shown on a card.
type Student struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	AdmissionNo string     `json:"admission_no"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	ClassName   string     `json:"class_name"`
	ClassLevel  string     `json:"class_level"`
}

// School is the issuing school's identity for the card header.
type School struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Motto   string `json:"motto"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	LogoURL string `json:"logo_url"`
}

// Ratings are behavioural ratings on a 1–5 scale; 0 means not rated.
type Ratings struct {
	Punctuality   int `json:"punctuality"`
	Neatness      int `json:"neatness"`
	Honesty       int `json:"honesty"`
	Cooperation   int `json:"cooperation"`
	Attentiveness int `json:"attentiveness"`
	Politeness    int `json:"politeness"`
}

// Trait is one named behavioural rating.
type Trait struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Traits lists the ratings in print order.
func (r Ratings) Traits() []Trait {
	return []Trait{
		{Name: "Punctuality", Rating: r.Punctuality},
		{Name: "Neatness", Rating: r.Neatness},
		{Name: "Honesty", Rating: r.Honesty},
		{Name: "Cooperation", Rating: r.Cooperation},
		{Name: "Attentiveness", Rating: r.Attentiveness},
		{Name: "Politeness", Rating: r.Politeness},
	}
}

// Sheet is the teacher-authored part of a result card.
type Sheet struct {
	TeacherRemark   string
	PrincipalRemark string
	Ratings         Ratings
	Attendance      Attendance
	NextTermBegins  *time.Time
	NextTermFees    string
	Published       bool
}

// CardInput gathers everything needed to assemble one card.
type CardInput struct {
	Student            Student
	School             School
	Term               string
	AcademicYear       string
	Subjects           []SubjectResult
	Statistics         ClassStatistics
	Sheet              *Sheet
	ComputedAttendance Attendance
}

// CardData is the assembled report card view model.
type CardData struct {
	Student         Student         `json:"student"`
	School          School          `json:"school"`
	Term            string          `json:"term"`
	AcademicYear    string          `json:"academic_year"`
	Format          Format          `json:"format"`
	Subjects        []SubjectResult `json:"subjects"`
	GrandTotal      int             `json:"grand_total"`
	Statistics      ClassStatistics `json:"statistics"`
	Ratings         Ratings         `json:"ratings"`
	Attendance      Attendance      `json:"attendance"`
	TeacherRemark   string          `json:"teacher_remark"`
	PrincipalRemark string          `json:"principal_remark"`
	NextTermBegins  *time.Time      `json:"next_term_begins,omitempty"`
	NextTermFees    string          `json:"next_term_fees"`
	Published       bool            `json:"published"`
}

// Assemble merges the inputs into a card. Missing sheet data yields zero
// values.
func Assemble(in CardInput) CardData {
	subjects := make([]SubjectResult, len(in.Subjects))
	copy(subjects, in.Subjects)

	card := CardData{
		Student:      in.Student,
		School:       in.School,
		Term:         in.Term,
		AcademicYear: in.AcademicYear,
		Format:       FormatFor(in.Student.ClassLevel, in.Student.ClassName),
		Subjects:     subjects,
		GrandTotal:   GrandTotal(subjects),
		Statistics:   in.Statistics,
		Attendance:   in.ComputedAttendance,
	}

	if in.Sheet != nil {
		card.Ratings = in.Sheet.Ratings
		card.Attendance = ResolveAttendance(in.Sheet.Attendance, in.ComputedAttendance)
		card.TeacherRemark = in.Sheet.TeacherRemark
		card.PrincipalRemark = in.Sheet.PrincipalRemark
		card.NextTermBegins = in.Sheet.NextTermBegins
		card.NextTermFees = in.Sheet.NextTermFees
		card.Published = in.Sheet.Published
	}

	return card
}

// AssemblePublished builds the card shown to parents and students. It
// reports false when the sheet is missing or unpublished. Class-wide figures
// are withheld; only the student's own grand total is kept.
func AssemblePublished(in CardInput) (CardData, bool) {
	if in.Sheet == nil || !in.Sheet.Published {
		return CardData{}, false
	}
	in.Statistics = WithheldStatistics(in.Statistics)
	return Assemble(in), true
}

// WithheldStatistics strips cross-student figures from stats.
func WithheldStatistics(stats ClassStatistics) ClassStatistics {
	return ClassStatistics{GrandTotal: stats.GrandTotal}
}
