package result

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	homeworkScale = 20
	caScale       = 20
	examScale     = 60
)

// SubjectResult is the finalised score of one subject for a term.
type SubjectResult struct {
	Subject  string `json:"subject"`
	Homework *int   `json:"homework"`
	CA1      int    `json:"ca1"`
	CA2      int    `json:"ca2"`
	Exam     int    `json:"exam"`
	Total    int    `json:"total"`
	Grade    string `json:"grade"`
	Remark   string `json:"remark"`
}

// AggregateSubjects turns one student's assessments for a term into one
// result per subject, sorted by subject name.
//
// Homework is scaled and reported but does not count towards Total.
func AggregateSubjects(assessments []Assessment) []SubjectResult {
	order := make([]string, 0)
	groups := make(map[string]*slots)

	for _, assessment := range assessments {
		subject := strings.TrimSpace(assessment.Subject)
		if subject == "" {
			continue
		}
		group, ok := groups[subject]
		if !ok {
			group = &slots{}
			groups[subject] = group
			order = append(order, subject)
		}
		group.classify(assessment)
	}

	results := make([]SubjectResult, 0, len(order))
	for _, subject := range order {
		results = append(results, buildSubjectResult(subject, groups[subject]))
	}

	SortSubjects(results)
	return results
}

// SortSubjects orders results by subject name with an English collation.
// The sort is stable so equal-collating names keep their first-seen order.
func SortSubjects(results []SubjectResult) {
	collator := collate.New(language.English)
	sort.SliceStable(results, func(i, j int) bool {
		return collator.CompareString(results[i].Subject, results[j].Subject) < 0
	})
}

// GrandTotal sums the subject totals.
func GrandTotal(results []SubjectResult) int {
	sum := 0
	for _, r := range results {
		sum += r.Total
	}
	return sum
}

func buildSubjectResult(subject string, s *slots) SubjectResult {
	out := SubjectResult{
		Subject: subject,
		CA1:     scaled(s.ca1, caScale),
		CA2:     scaled(s.ca2, caScale),
		Exam:    scaled(s.exam, examScale),
	}
	if s.homework != nil {
		hw := scaled(s.homework, homeworkScale)
		out.Homework = &hw
	}

	out.Total = out.CA1 + out.CA2 + out.Exam
	grade := GradeFor(out.Total)
	out.Grade = grade.Label
	out.Remark = grade.Remark
	return out
}

func scaled(a *Assessment, scale int) int {
	if a == nil || a.MaxScore <= 0 {
		return 0
	}
	return roundHalfUp(a.Score / a.MaxScore * float64(scale))
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
