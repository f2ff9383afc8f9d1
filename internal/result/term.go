package result

import (
	"strconv"
	"strings"
	"time"
)

// Term names recognised by the attendance window resolver.
const (
	FirstTerm  = "First Term"
	SecondTerm = "Second Term"
	ThirdTerm  = "Third Term"
)

// DateRange is an inclusive calendar window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether day falls within the window, ignoring time of day.
func (r DateRange) Contains(day time.Time) bool {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

// TermDateRange resolves the attendance window of a term within an academic
// year written as "2024/2025". An unknown term spans September of the start
// year through July of the end year.
func TermDateRange(term, academicYear string) DateRange {
	start := startYear(academicYear)
	end := start + 1

	switch strings.ToLower(strings.TrimSpace(term)) {
	case strings.ToLower(FirstTerm):
		return DateRange{Start: day(start, time.September, 1), End: day(start, time.December, 31)}
	case strings.ToLower(SecondTerm):
		return DateRange{Start: day(end, time.January, 1), End: day(end, time.April, 30)}
	case strings.ToLower(ThirdTerm):
		return DateRange{Start: day(end, time.May, 1), End: day(end, time.July, 31)}
	default:
		return DateRange{Start: day(start, time.September, 1), End: day(end, time.July, 31)}
	}
}

// ValidAcademicYear reports whether s has the form "2024/2025" with
// consecutive years.
func ValidAcademicYear(s string) bool {
	head, tail, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || len(head) != 4 || len(tail) != 4 {
		return false
	}
	start, err := strconv.Atoi(head)
	if err != nil {
		return false
	}
	end, err := strconv.Atoi(tail)
	if err != nil {
		return false
	}
	return end == start+1
}

func startYear(academicYear string) int {
	head, _, _ := strings.Cut(strings.TrimSpace(academicYear), "/")
	year, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || year <= 0 {
		return time.Now().UTC().Year()
	}
	return year
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Attendance status values stored by the attendance screens.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Attendance summarises a student's attendance for a term.
type Attendance struct {
	DaysPresent     int `json:"days_present"`
	DaysAbsent      int `json:"days_absent"`
	TotalSchoolDays int `json:"total_school_days"`
}

// AttendanceFromCounts derives the card counters from status counts within a
// term window. Only "present" counts as present here; every other status
// counts as absent.
func AttendanceFromCounts(counts map[string]int) Attendance {
	total := 0
	for _, n := range counts {
		total += n
	}
	present := counts[AttendancePresent]
	return Attendance{
		DaysPresent:     present,
		DaysAbsent:      total - present,
		TotalSchoolDays: total,
	}
}

// ResolveAttendance prefers the counters stored on the result sheet when a
// total number of school days has been entered, falling back to computed.
func ResolveAttendance(stored, computed Attendance) Attendance {
	if stored.TotalSchoolDays != 0 {
		return stored
	}
	return computed
}
