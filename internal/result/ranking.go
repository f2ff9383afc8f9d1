package result

import "sort"

// ClassStatistics describes where one student stands in the class.
type ClassStatistics struct {
	Position       int `json:"position"`
	TotalStudents  int `json:"total_students"`
	GrandTotal     int `json:"grand_total"`
	HighestInClass int `json:"highest_in_class"`
	LowestInClass  int `json:"lowest_in_class"`
	ClassAverage   int `json:"class_average"`
}

// ClassTotals holds the grand totals of every active student of a class.
type ClassTotals map[uint]int

// ClassTotalsFrom aggregates each student's assessments into a grand total.
func ClassTotalsFrom(byStudent map[uint][]Assessment) ClassTotals {
	totals := make(ClassTotals, len(byStudent))
	for studentID, assessments := range byStudent {
		totals[studentID] = GrandTotal(AggregateSubjects(assessments))
	}
	return totals
}

// Rank computes the statistics of a student whose grand total is
// studentTotal among the given class totals.
//
// Zero totals are treated as missing data. Tied totals share the best
// position and the next distinct total skips the shared places, so totals
// of 280, 250, 250, 240 rank 1, 2, 2, 4. A student without data is placed
// after every ranked student.
func Rank(studentTotal int, totals []int) ClassStatistics {
	ranked := make([]int, 0, len(totals))
	sum := 0
	for _, total := range totals {
		if total == 0 {
			continue
		}
		ranked = append(ranked, total)
		sum += total
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranked)))

	stats := ClassStatistics{
		TotalStudents: len(ranked),
		GrandTotal:    studentTotal,
		Position:      len(ranked) + 1,
	}
	if len(ranked) == 0 {
		return stats
	}

	if studentTotal != 0 {
		for idx, total := range ranked {
			if total == studentTotal {
				stats.Position = idx + 1
				break
			}
		}
	}

	stats.HighestInClass = ranked[0]
	stats.LowestInClass = ranked[len(ranked)-1]
	stats.ClassAverage = roundHalfUp(float64(sum) / float64(len(ranked)))
	return stats
}

// RankStudent ranks one student against the class totals. The student's own
// total is taken from totals when present.
func (t ClassTotals) RankStudent(studentID uint) ClassStatistics {
	return Rank(t[studentID], t.values())
}

// RankOutsider places a total that is not part of the class, such as a
// student who has left, without changing the class statistics. The
// position is one more than the number of class totals above it.
func (t ClassTotals) RankOutsider(total int) ClassStatistics {
	values := t.values()
	stats := Rank(total, values)
	if total != 0 {
		stats.Position = 1
		for _, value := range values {
			if value > total {
				stats.Position++
			}
		}
	}
	return stats
}

func (t ClassTotals) values() []int {
	values := make([]int, 0, len(t))
	for _, total := range t {
		values = append(values, total)
	}
	return values
}
