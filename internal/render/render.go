package render

import (
	"bytes"
	"embed"
	"fmt"
	stdhtml "html"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/template/html/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/gema-result-api/internal/result"
)

// MinPrimaryRows is the minimum number of subject rows printed on a primary card.
const MinPrimaryRows = 10

const dateLayout = "02 Jan 2006"

//go:embed templates
var templateFS embed.FS

// Renderer turns assembled cards into HTML fragments. It is safe for
// concurrent use.
type Renderer struct {
	engine    *html.Engine
	sanitizer *bluemonday.Policy
}

// New parses the embedded card templates.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("load card templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("parse card templates: %w", err)
	}

	return &Renderer{
		engine:    engine,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// Render writes the card using the layout selected by its format.
func (r *Renderer) Render(w io.Writer, card result.CardData) error {
	name := "primary"
	if card.Format == result.FormatNursery {
		name = "nursery"
	}

	if err := r.engine.Render(w, name, r.view(card)); err != nil {
		return fmt.Errorf("render %s card for student %d: %w", name, card.Student.ID, err)
	}
	return nil
}

// RenderString is a convenience wrapper around Render.
func (r *Renderer) RenderString(card result.CardData) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, card); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type cardView struct {
	School          result.School
	Student         result.Student
	DateOfBirth     string
	Term            string
	AcademicYear    string
	Rows            []subjectRow
	Skills          []skillRow
	GrandTotal      int
	Statistics      statisticsView
	Scale           []result.Grade
	Attendance      result.Attendance
	Traits          []traitView
	TeacherRemark   string
	PrincipalRemark string
	NextTermBegins  string
	NextTermFees    string
}

type subjectRow struct {
	Number   int
	Subject  string
	Homework string
	CA1      string
	CA2      string
	Exam     string
	Total    string
	Grade    string
	Remark   string
}

type skillRow struct {
	Subject string
	Rating  string
}

type traitView struct {
	Name   string
	Rating int
	Word   string
}

type statisticsView struct {
	Position       string
	TotalStudents  string
	HighestInClass string
	LowestInClass  string
	ClassAverage   string
}

func (r *Renderer) view(card result.CardData) cardView {
	v := cardView{
		School:          card.School,
		Student:         card.Student,
		Term:            card.Term,
		AcademicYear:    card.AcademicYear,
		GrandTotal:      card.GrandTotal,
		Scale:           result.Scale(),
		Attendance:      card.Attendance,
		TeacherRemark:   r.clean(card.TeacherRemark),
		PrincipalRemark: r.clean(card.PrincipalRemark),
		NextTermFees:    r.clean(card.NextTermFees),
		Statistics: statisticsView{
			Position:       ordinal(card.Statistics.Position),
			TotalStudents:  number(card.Statistics.TotalStudents),
			HighestInClass: number(card.Statistics.HighestInClass),
			LowestInClass:  number(card.Statistics.LowestInClass),
			ClassAverage:   number(card.Statistics.ClassAverage),
		},
	}
	if card.Student.DateOfBirth != nil {
		v.DateOfBirth = card.Student.DateOfBirth.Format(dateLayout)
	}
	if card.NextTermBegins != nil {
		v.NextTermBegins = card.NextTermBegins.Format(dateLayout)
	}

	for _, trait := range card.Ratings.Traits() {
		v.Traits = append(v.Traits, traitView{Name: trait.Name, Rating: trait.Rating, Word: RatingWord(trait.Rating)})
	}

	if card.Format == result.FormatNursery {
		for _, subject := range card.Subjects {
			v.Skills = append(v.Skills, skillRow{Subject: subject.Subject, Rating: subject.Remark})
		}
		return v
	}

	v.Rows = subjectRows(card.Subjects)
	return v
}

func subjectRows(subjects []result.SubjectResult) []subjectRow {
	count := len(subjects)
	if count < MinPrimaryRows {
		count = MinPrimaryRows
	}

	rows := make([]subjectRow, count)
	for idx := range rows {
		rows[idx].Number = idx + 1
		if idx >= len(subjects) {
			continue
		}
		s := subjects[idx]
		homework := "-"
		if s.Homework != nil {
			homework = strconv.Itoa(*s.Homework)
		}
		rows[idx] = subjectRow{
			Number:   idx + 1,
			Subject:  s.Subject,
			Homework: homework,
			CA1:      strconv.Itoa(s.CA1),
			CA2:      strconv.Itoa(s.CA2),
			Exam:     strconv.Itoa(s.Exam),
			Total:    strconv.Itoa(s.Total),
			Grade:    s.Grade,
			Remark:   s.Remark,
		}
	}
	return rows
}

// RatingWord maps a 1–5 behavioural rating to the word printed on cards.
func RatingWord(rating int) string {
	switch rating {
	case 5:
		return "Excellent"
	case 4:
		return "Very Good"
	case 3:
		return "Good"
	case 2:
		return "Fair"
	case 1:
		return "Poor"
	default:
		return "-"
	}
}

// clean strips markup from free text; the templates escape the result.
func (r *Renderer) clean(text string) string {
	return strings.TrimSpace(stdhtml.UnescapeString(r.sanitizer.Sanitize(text)))
}

func number(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func ordinal(n int) string {
	if n <= 0 {
		return "-"
	}
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
