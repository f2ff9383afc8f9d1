package result

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateSubjectsScalesAndExcludesHomework(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: "Mathematics", Type: "Homework", Score: 10, MaxScore: 10},
		{Subject: "Mathematics", Type: "1st CA", Score: 15, MaxScore: 20},
		{Subject: "Mathematics", Type: "2nd CA", Score: 8, MaxScore: 10},
		{Subject: "Mathematics", Type: "Exam", Score: 45, MaxScore: 60},
	})

	require.Len(t, results, 1)
	maths := results[0]
	require.NotNil(t, maths.Homework)
	require.Equal(t, 20, *maths.Homework)
	require.Equal(t, 15, maths.CA1)
	require.Equal(t, 16, maths.CA2)
	require.Equal(t, 45, maths.Exam)
	require.Equal(t, maths.CA1+maths.CA2+maths.Exam, maths.Total)
	require.Equal(t, 76, maths.Total)
	require.Equal(t, "A1", maths.Grade)
	require.Equal(t, "Excellent", maths.Remark)
}

func TestAggregateSubjectsDefaultsMissingSlots(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: "English", Type: "Exam", Score: 30, MaxScore: 100},
	})

	require.Len(t, results, 1)
	require.Nil(t, results[0].Homework)
	require.Equal(t, 0, results[0].CA1)
	require.Equal(t, 0, results[0].CA2)
	require.Equal(t, 18, results[0].Exam)
	require.Equal(t, 18, results[0].Total)
	require.Equal(t, "F9", results[0].Grade)
}

func TestAggregateSubjectsRoundsHalfUp(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: "Basic Science", Type: "1st CA", Score: 5, MaxScore: 8},  // 12.5
		{Subject: "Basic Science", Type: "2nd CA", Score: 1, MaxScore: 3},  // 6.67
		{Subject: "Basic Science", Type: "Exam", Score: 0, MaxScore: 0},    // invalid max
	})

	require.Equal(t, 13, results[0].CA1)
	require.Equal(t, 7, results[0].CA2)
	require.Equal(t, 0, results[0].Exam)
}

func TestAggregateSubjectsGroupsByTrimmedCaseSensitiveName(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: " English ", Type: "1st CA", Score: 10, MaxScore: 20},
		{Subject: "English", Type: "2nd CA", Score: 10, MaxScore: 20},
		{Subject: "english", Type: "Exam", Score: 30, MaxScore: 60},
		{Subject: "   ", Type: "Exam", Score: 30, MaxScore: 60},
	})

	require.Len(t, results, 2)
	totals := map[string]int{}
	for _, r := range results {
		totals[r.Subject] = r.Total
	}
	require.Equal(t, map[string]int{"English": 20, "english": 30}, totals)
}

func TestAggregateSubjectsSortsByName(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: "Verbal Reasoning", Type: "Exam", Score: 1, MaxScore: 1},
		{Subject: "agricultural Science", Type: "Exam", Score: 1, MaxScore: 1},
		{Subject: "Mathematics", Type: "Exam", Score: 1, MaxScore: 1},
		{Subject: "Basic Science", Type: "Exam", Score: 1, MaxScore: 1},
	})

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Subject)
	}
	require.Equal(t, []string{"agricultural Science", "Basic Science", "Mathematics", "Verbal Reasoning"}, names)
}

func TestAggregateSubjectsDropsThirdUnrecognisedEntry(t *testing.T) {
	results := AggregateSubjects([]Assessment{
		{Subject: "French", Type: "Test", Score: 20, MaxScore: 20},
		{Subject: "French", Type: "Quiz", Score: 10, MaxScore: 20},
		{Subject: "French", Type: "Project", Score: 20, MaxScore: 20},
	})

	require.Equal(t, 20, results[0].CA1)
	require.Equal(t, 10, results[0].CA2)
	require.Equal(t, 30, results[0].Total)
}

func TestGrandTotal(t *testing.T) {
	require.Equal(t, 0, GrandTotal(nil))
	require.Equal(t, 150, GrandTotal([]SubjectResult{{Total: 70}, {Total: 80}}))
}
