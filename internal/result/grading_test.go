package result

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGradeForBoundaries(t *testing.T) {
	cases := []struct {
		total  int
		label  string
		remark string
	}{
		{100, "A1", "Excellent"},
		{75, "A1", "Excellent"},
		{74, "B2", "Very Good"},
		{70, "B2", "Very Good"},
		{69, "B3", "Good"},
		{65, "B3", "Good"},
		{64, "C4", "Credit"},
		{60, "C4", "Credit"},
		{59, "C5", "Credit"},
		{55, "C5", "Credit"},
		{54, "C6", "Credit"},
		{50, "C6", "Credit"},
		{49, "D7", "Pass"},
		{45, "D7", "Pass"},
		{44, "E8", "Pass"},
		{40, "E8", "Pass"},
		{39, "F9", "Failure"},
		{0, "F9", "Failure"},
	}

	for _, tc := range cases {
		grade := GradeFor(tc.total)
		require.Equal(t, tc.label, grade.Label, "total %d", tc.total)
		require.Equal(t, tc.remark, grade.Remark, "total %d", tc.total)
	}
}

func TestScaleIsACopy(t *testing.T) {
	scale := Scale()
	require.Len(t, scale, 9)
	scale[0].Label = "Z"
	require.Equal(t, "A1", GradeFor(90).Label)
}
