package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/result"
	"github.com/noah-isme/gema-result-api/internal/service"
)

type stubResults struct {
	card  service.CardQuery
	class service.ClassPrintQuery
}

func (s *stubResults) GetCard(context.Context, service.CardQuery) (result.CardData, error) {
	return result.CardData{}, nil
}

func (s *stubResults) GetAttendance(context.Context, uint, string, string) (dto.AttendanceSummaryResponse, error) {
	return dto.AttendanceSummaryResponse{}, nil
}

func (s *stubResults) PrintCard(ctx context.Context, query service.CardQuery, surface printing.Surface) (printing.Receipt, error) {
	s.card = query
	return emit(ctx, surface, 1)
}

func (s *stubResults) PrintClass(ctx context.Context, query service.ClassPrintQuery, surface printing.Surface) (printing.Receipt, error) {
	s.class = query
	if len(query.StudentIDs) == 0 {
		return printing.Receipt{}, printing.ErrEmptySelection
	}
	return emit(ctx, surface, len(query.StudentIDs))
}

func emit(ctx context.Context, surface printing.Surface, cards int) (printing.Receipt, error) {
	sink, err := surface.Open(ctx)
	if err != nil {
		return printing.Receipt{}, err
	}
	defer sink.Close()
	return sink.Emit(ctx, printing.Document{HTML: []byte("<html></html>"), Cards: cards})
}

type stubStudents struct{}

func (stubStudents) GetByID(context.Context, uint) (models.Student, error) {
	return models.Student{}, nil
}

func (stubStudents) ListActiveByClass(context.Context, uint) ([]models.Student, error) {
	return []models.Student{{ID: 8}, {ID: 9}}, nil
}

func run(t *testing.T, results *stubResults, args ...string) (string, error) {
	t.Helper()
	load := func(context.Context) (Dependencies, error) {
		return Dependencies{Results: results, Students: stubStudents{}}, nil
	}
	cmd := NewRootCommand(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPrintStudentWritesFile(t *testing.T) {
	results := &stubResults{}
	path := filepath.Join(t.TempDir(), "card.html")

	out, err := run(t, results, "print", "student", "--id", "12", "--year", "2024/2025", "--term", "Second Term", "-o", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote 1 card(s)")
	require.Equal(t, service.CardQuery{StudentID: 12, Term: "Second Term", AcademicYear: "2024/2025", Access: service.AccessFull}, results.card)
	require.FileExists(t, path)
}

func TestPrintClassKeepsSelectionOrder(t *testing.T) {
	results := &stubResults{}
	path := filepath.Join(t.TempDir(), "class.html")

	_, err := run(t, results, "print", "class", "--id", "3", "--students", "5, 2,7", "--year", "2024/2025", "-o", path)
	require.NoError(t, err)
	require.Equal(t, []uint{5, 2, 7}, results.class.StudentIDs)
	require.Equal(t, result.FirstTerm, results.class.Term)
}

func TestPrintClassAllUsesActiveStudents(t *testing.T) {
	results := &stubResults{}
	path := filepath.Join(t.TempDir(), "class.html")

	_, err := run(t, results, "print", "class", "--id", "3", "--all", "--year", "2024/2025", "-o", path)
	require.NoError(t, err)
	require.Equal(t, []uint{8, 9}, results.class.StudentIDs)
}

func TestPrintClassRejectsEmptySelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class.html")

	_, err := run(t, &stubResults{}, "print", "class", "--id", "3", "--year", "2024/2025", "-o", path)
	require.True(t, errors.Is(err, printing.ErrEmptySelection))

	_, err = run(t, &stubResults{}, "print", "class", "--id", "3", "--students", "1,x", "--year", "2024/2025", "-o", path)
	require.Error(t, err)
}

func TestGradesListsScale(t *testing.T) {
	out, err := run(t, &stubResults{})
	require.NoError(t, err)
	require.Contains(t, out, "reportctl")

	out, err = run(t, &stubResults{}, "grades")
	require.NoError(t, err)
	require.Contains(t, out, "A1")
	require.Contains(t, out, "75-100")
	require.Contains(t, out, "F9")
}
