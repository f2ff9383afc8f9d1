package result

// Grade is a band of the national grading scale.
type Grade struct {
	Label  string `json:"label"`
	Remark string `json:"remark"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

var gradingScale = []Grade{
	{Label: "A1", Remark: "Excellent", Min: 75, Max: 100},
	{Label: "B2", Remark: "Very Good", Min: 70, Max: 74},
	{Label: "B3", Remark: "Good", Min: 65, Max: 69},
	{Label: "C4", Remark: "Credit", Min: 60, Max: 64},
	{Label: "C5", Remark: "Credit", Min: 55, Max: 59},
	{Label: "C6", Remark: "Credit", Min: 50, Max: 54},
	{Label: "D7", Remark: "Pass", Min: 45, Max: 49},
	{Label: "E8", Remark: "Pass", Min: 40, Max: 44},
	{Label: "F9", Remark: "Failure", Min: 0, Max: 39},
}

// GradeFor classifies a subject total. Lower bounds are inclusive.
func GradeFor(total int) Grade {
	for _, band := range gradingScale {
		if total >= band.Min {
			return band
		}
	}
	return gradingScale[len(gradingScale)-1]
}

// Scale returns the grading bands from best to worst.
func Scale() []Grade {
	out := make([]Grade, len(gradingScale))
	copy(out, gradingScale)
	return out
}
