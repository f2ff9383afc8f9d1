package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/result"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeStudentRepo struct {
	students map[uint]models.Student
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[uint]models.Student)}
	for _, student := range students {
		repo.students[student.ID] = student
	}
	return repo
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) ListActiveByClass(_ context.Context, classID uint) ([]models.Student, error) {
	var out []models.Student
	for _, student := range f.students {
		if student.ClassID == classID && student.Status == models.StudentStatusActive {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAssessmentRepo struct {
	records []models.AssessmentRecord
	upserts int
}

func (f *fakeAssessmentRepo) ListForStudents(_ context.Context, studentIDs []uint, term, academicYear string) ([]models.AssessmentRecord, error) {
	wanted := make(map[uint]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	var out []models.AssessmentRecord
	for _, record := range f.records {
		if wanted[record.StudentID] && record.Term == term && record.AcademicYear == academicYear {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) Upsert(_ context.Context, record *models.AssessmentRecord) error {
	f.upserts++
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *record)
	return nil
}

type fakeSheetRepo struct {
	sheets map[uint]models.ResultSheet
}

func newFakeSheetRepo(sheets ...models.ResultSheet) *fakeSheetRepo {
	repo := &fakeSheetRepo{sheets: make(map[uint]models.ResultSheet)}
	for _, sheet := range sheets {
		repo.sheets[sheet.StudentID] = sheet
	}
	return repo
}

func (f *fakeSheetRepo) Get(_ context.Context, studentID uint, term, academicYear string) (models.ResultSheet, error) {
	sheet, ok := f.sheets[studentID]
	if !ok || sheet.Term != term || sheet.AcademicYear != academicYear {
		return models.ResultSheet{}, gorm.ErrRecordNotFound
	}
	return sheet, nil
}

func (f *fakeSheetRepo) ListForStudents(ctx context.Context, studentIDs []uint, term, academicYear string) ([]models.ResultSheet, error) {
	var out []models.ResultSheet
	for _, id := range studentIDs {
		if sheet, err := f.Get(ctx, id, term, academicYear); err == nil {
			out = append(out, sheet)
		}
	}
	return out, nil
}

func (f *fakeSheetRepo) Upsert(_ context.Context, sheet *models.ResultSheet) error {
	f.sheets[sheet.StudentID] = *sheet
	return nil
}

func (f *fakeSheetRepo) Delete(_ context.Context, studentID uint, term, academicYear string) (int64, error) {
	sheet, ok := f.sheets[studentID]
	if !ok || sheet.Term != term || sheet.AcademicYear != academicYear {
		return 0, nil
	}
	delete(f.sheets, studentID)
	return 1, nil
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	counts  map[uint]map[string]int
	windows []result.DateRange
}

func (f *fakeAttendanceRepo) CountByStatus(_ context.Context, studentID uint, window result.DateRange) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, window)
	return f.counts[studentID], nil
}

type recordingPublisher struct {
	events []ResultEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event ResultEvent) error {
	p.events = append(p.events, event)
	return p.err
}
