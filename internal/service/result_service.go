package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/models"
	"github.com/noah-isme/gema-result-api/internal/observability"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
)

var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrResultNotPublished indicates the result is not visible to the caller yet.
	ErrResultNotPublished = errors.New("result not published")
	// ErrAccessDenied indicates the caller's role may not view result cards.
	ErrAccessDenied = errors.New("insufficient permissions")
	// ErrInvalidAcademicYear indicates a malformed academic year.
	ErrInvalidAcademicYear = errors.New("academic year must look like 2024/2025")
	// ErrStudentNotInClass indicates a selected student is not an active member of the class.
	ErrStudentNotInClass = errors.New("student is not an active member of the class")
)

const attendanceFanOut = 8

// CardQuery identifies one student's result for a term.
type CardQuery struct {
	StudentID    uint
	Term         string
	AcademicYear string
	Access       Access
}

// ClassPrintQuery selects students of a class for a batch print.
type ClassPrintQuery struct {
	ClassID      uint
	Term         string
	AcademicYear string
	StudentIDs   []uint
}

// ResultService assembles, ranks and prints result cards.
type ResultService interface {
	GetCard(ctx context.Context, query CardQuery) (result.CardData, error)
	GetAttendance(ctx context.Context, studentID uint, term, academicYear string) (dto.AttendanceSummaryResponse, error)
	PrintCard(ctx context.Context, query CardQuery, surface printing.Surface) (printing.Receipt, error)
	PrintClass(ctx context.Context, query ClassPrintQuery, surface printing.Surface) (printing.Receipt, error)
}

type resultService struct {
	students    repository.StudentRepository
	assessments repository.AssessmentRepository
	sheets      repository.ResultSheetRepository
	attendance  repository.AttendanceRepository
	printer     *printing.Orchestrator
	school      result.School
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewResultService constructs the result card service.
func NewResultService(
	students repository.StudentRepository,
	assessments repository.AssessmentRepository,
	sheets repository.ResultSheetRepository,
	attendance repository.AttendanceRepository,
	printer *printing.Orchestrator,
	school result.School,
	logger zerolog.Logger,
) ResultService {
	return &resultService{
		students:    students,
		assessments: assessments,
		sheets:      sheets,
		attendance:  attendance,
		printer:     printer,
		school:      school,
		logger:      logger.With().Str("component", "result_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-result-api/internal/service/result"),
	}
}

func (s *resultService) GetCard(ctx context.Context, query CardQuery) (result.CardData, error) {
	ctx, span := s.tracer.Start(ctx, "results.card", trace.WithAttributes(
		attribute.Int64("results.student_id", int64(query.StudentID)),
		attribute.String("results.term", query.Term),
		attribute.String("results.access", query.Access.String()),
	))
	defer span.End()

	if query.Access == AccessNone {
		return result.CardData{}, ErrAccessDenied
	}
	if !result.ValidAcademicYear(query.AcademicYear) {
		return result.CardData{}, ErrInvalidAcademicYear
	}

	student, err := s.loadStudent(ctx, query.StudentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return result.CardData{}, err
	}

	var (
		own         []models.AssessmentRecord
		classmates  []models.AssessmentRecord
		sheet       *models.ResultSheet
		attendance  result.Attendance
		withRanking = query.Access == AccessFull
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.assessments.ListForStudents(gctx, []uint{student.ID}, query.Term, query.AcademicYear)
		if err != nil {
			return fmt.Errorf("list student assessments: %w", err)
		}
		own = records
		return nil
	})
	if withRanking {
		g.Go(func() error {
			records, err := s.classAssessments(gctx, student.ClassID, query.Term, query.AcademicYear)
			if err != nil {
				return err
			}
			classmates = records
			return nil
		})
	}
	g.Go(func() error {
		found, err := s.loadSheet(gctx, student.ID, query.Term, query.AcademicYear)
		if err != nil {
			return err
		}
		sheet = found
		return nil
	})
	g.Go(func() error {
		computed, err := s.computedAttendance(gctx, student.ID, query.Term, query.AcademicYear)
		if err != nil {
			return err
		}
		attendance = computed
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "result_fetch_failed")
		return result.CardData{}, err
	}

	subjects := result.AggregateSubjects(toAssessments(own))
	input := result.CardInput{
		Student:            toCardStudent(student),
		School:             s.school,
		Term:               query.Term,
		AcademicYear:       query.AcademicYear,
		Subjects:           subjects,
		Sheet:              toCardSheet(sheet),
		ComputedAttendance: attendance,
	}

	if !withRanking {
		input.Statistics = result.ClassStatistics{GrandTotal: result.GrandTotal(subjects)}
		card, ok := result.AssemblePublished(input)
		if !ok {
			span.SetStatus(codes.Error, "result_not_published")
			return result.CardData{}, ErrResultNotPublished
		}
		observability.ResultCards().WithLabelValues(query.Access.String()).Inc()
		return card, nil
	}

	// classmates only covers active students; anyone else is placed against
	// them without joining the class statistics.
	totals := result.ClassTotalsFrom(groupByStudent(classmates))
	if student.Status == models.StudentStatusActive {
		totals[student.ID] = result.GrandTotal(subjects)
		input.Statistics = totals.RankStudent(student.ID)
	} else {
		input.Statistics = totals.RankOutsider(result.GrandTotal(subjects))
	}

	span.SetAttributes(
		attribute.Int("results.position", input.Statistics.Position),
		attribute.Int("results.grand_total", input.Statistics.GrandTotal),
	)
	observability.ResultCards().WithLabelValues(query.Access.String()).Inc()
	return result.Assemble(input), nil
}

func (s *resultService) GetAttendance(ctx context.Context, studentID uint, term, academicYear string) (dto.AttendanceSummaryResponse, error) {
	if !result.ValidAcademicYear(academicYear) {
		return dto.AttendanceSummaryResponse{}, ErrInvalidAcademicYear
	}
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	var (
		sheet    *models.ResultSheet
		computed result.Attendance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.loadSheet(gctx, studentID, term, academicYear)
		sheet = found
		return err
	})
	g.Go(func() error {
		counts, err := s.computedAttendance(gctx, studentID, term, academicYear)
		computed = counts
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	stored := result.Attendance{}
	if sheet != nil {
		stored = result.Attendance{
			DaysPresent:     sheet.DaysPresent,
			DaysAbsent:      sheet.DaysAbsent,
			TotalSchoolDays: sheet.TotalSchoolDays,
		}
	}

	return dto.AttendanceSummaryResponse{
		StudentID:  studentID,
		Term:       term,
		Window:     result.TermDateRange(term, academicYear),
		Computed:   computed,
		Effective:  result.ResolveAttendance(stored, computed),
		Overridden: stored.TotalSchoolDays != 0,
	}, nil
}

func (s *resultService) PrintCard(ctx context.Context, query CardQuery, surface printing.Surface) (printing.Receipt, error) {
	card, err := s.GetCard(ctx, query)
	if err != nil {
		return printing.Receipt{}, err
	}
	return s.printer.Print(ctx, surface, card)
}

func (s *resultService) PrintClass(ctx context.Context, query ClassPrintQuery, surface printing.Surface) (printing.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "results.print_class", trace.WithAttributes(
		attribute.Int64("results.class_id", int64(query.ClassID)),
		attribute.Int("results.selected", len(query.StudentIDs)),
	))
	defer span.End()

	if len(query.StudentIDs) == 0 {
		return printing.Receipt{}, printing.ErrEmptySelection
	}
	if !result.ValidAcademicYear(query.AcademicYear) {
		return printing.Receipt{}, ErrInvalidAcademicYear
	}

	var (
		members []models.Student
		records []models.AssessmentRecord
		sheets  []models.ResultSheet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.students.ListActiveByClass(gctx, query.ClassID)
		if err != nil {
			return fmt.Errorf("list class students: %w", err)
		}
		members = found
		return nil
	})
	g.Go(func() error {
		found, err := s.classAssessments(gctx, query.ClassID, query.Term, query.AcademicYear)
		records = found
		return err
	})
	g.Go(func() error {
		found, err := s.sheets.ListForStudents(gctx, query.StudentIDs, query.Term, query.AcademicYear)
		if err != nil {
			return fmt.Errorf("list result sheets: %w", err)
		}
		sheets = found
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "class_fetch_failed")
		return printing.Receipt{}, err
	}

	studentsByID := make(map[uint]models.Student, len(members))
	for _, member := range members {
		studentsByID[member.ID] = member
	}
	for _, id := range query.StudentIDs {
		if _, ok := studentsByID[id]; !ok {
			return printing.Receipt{}, fmt.Errorf("%w: %d", ErrStudentNotInClass, id)
		}
	}

	attendance, err := s.classAttendance(ctx, query.StudentIDs, query.Term, query.AcademicYear)
	if err != nil {
		span.RecordError(err)
		return printing.Receipt{}, err
	}

	sheetsByStudent := make(map[uint]*models.ResultSheet, len(sheets))
	for i := range sheets {
		sheetsByStudent[sheets[i].StudentID] = &sheets[i]
	}

	byStudent := groupByStudent(records)
	totals := result.ClassTotalsFrom(byStudent)

	cards := make([]result.CardData, 0, len(query.StudentIDs))
	for _, id := range query.StudentIDs {
		cards = append(cards, result.Assemble(result.CardInput{
			Student:            toCardStudent(studentsByID[id]),
			School:             s.school,
			Term:               query.Term,
			AcademicYear:       query.AcademicYear,
			Subjects:           result.AggregateSubjects(byStudent[id]),
			Statistics:         totals.RankStudent(id),
			Sheet:              toCardSheet(sheetsByStudent[id]),
			ComputedAttendance: attendance[id],
		}))
	}
	observability.ResultCards().WithLabelValues(AccessFull.String()).Add(float64(len(cards)))

	className := cards[0].Student.ClassName
	key := fmt.Sprintf("%d:%s:%s", query.ClassID, query.Term, query.AcademicYear)
	title := strings.TrimSpace(fmt.Sprintf("%s %s %s", className, query.Term, query.AcademicYear))

	receipt, err := s.printer.PrintBatch(ctx, key, title, surface, cards)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "print_failed")
		return printing.Receipt{}, err
	}
	return receipt, nil
}

func (s *resultService) loadStudent(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

// loadSheet returns nil when no sheet has been written yet.
func (s *resultService) loadSheet(ctx context.Context, studentID uint, term, academicYear string) (*models.ResultSheet, error) {
	sheet, err := s.sheets.Get(ctx, studentID, term, academicYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load result sheet: %w", err)
	}
	return &sheet, nil
}

func (s *resultService) classAssessments(ctx context.Context, classID uint, term, academicYear string) ([]models.AssessmentRecord, error) {
	members, err := s.students.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	ids := make([]uint, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	records, err := s.assessments.ListForStudents(ctx, ids, term, academicYear)
	if err != nil {
		return nil, fmt.Errorf("list class assessments: %w", err)
	}
	return records, nil
}

func (s *resultService) computedAttendance(ctx context.Context, studentID uint, term, academicYear string) (result.Attendance, error) {
	counts, err := s.attendance.CountByStatus(ctx, studentID, result.TermDateRange(term, academicYear))
	if err != nil {
		return result.Attendance{}, fmt.Errorf("count attendance: %w", err)
	}
	return result.AttendanceFromCounts(counts), nil
}

func (s *resultService) classAttendance(ctx context.Context, studentIDs []uint, term, academicYear string) (map[uint]result.Attendance, error) {
	values := make([]result.Attendance, len(studentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(attendanceFanOut)
	for idx, id := range studentIDs {
		idx, id := idx, id
		g.Go(func() error {
			computed, err := s.computedAttendance(gctx, id, term, academicYear)
			if err != nil {
				return err
			}
			values[idx] = computed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uint]result.Attendance, len(studentIDs))
	for idx, id := range studentIDs {
		out[id] = values[idx]
	}
	return out, nil
}

func groupByStudent(records []models.AssessmentRecord) map[uint][]result.Assessment {
	grouped := make(map[uint][]result.Assessment)
	for _, record := range records {
		grouped[record.StudentID] = append(grouped[record.StudentID], toAssessment(record))
	}
	return grouped
}

func toAssessments(records []models.AssessmentRecord) []result.Assessment {
	out := make([]result.Assessment, 0, len(records))
	for _, record := range records {
		out = append(out, toAssessment(record))
	}
	return out
}

func toAssessment(record models.AssessmentRecord) result.Assessment {
	return result.Assessment{
		Subject:  record.Subject,
		Type:     record.AssessmentType,
		Score:    record.Score,
		MaxScore: record.MaxScore,
	}
}

func toCardStudent(student models.Student) result.Student {
	out := result.Student{
		ID:          student.ID,
		Name:        student.Name,
		AdmissionNo: student.AdmissionNo,
		Gender:      student.Gender,
		ClassName:   student.Class.Name,
		ClassLevel:  student.Class.Level,
	}
	if student.DateOfBirth != nil {
		dob := time.Time(*student.DateOfBirth)
		out.DateOfBirth = &dob
	}
	return out
}

func toCardSheet(sheet *models.ResultSheet) *result.Sheet {
	if sheet == nil {
		return nil
	}
	out := &result.Sheet{
		TeacherRemark:   sheet.TeacherRemark,
		PrincipalRemark: sheet.PrincipalRemark,
		Ratings: result.Ratings{
			Punctuality:   sheet.Punctuality,
			Neatness:      sheet.Neatness,
			Honesty:       sheet.Honesty,
			Cooperation:   sheet.Cooperation,
			Attentiveness: sheet.Attentiveness,
			Politeness:    sheet.Politeness,
		},
		Attendance: result.Attendance{
			DaysPresent:     sheet.DaysPresent,
			DaysAbsent:      sheet.DaysAbsent,
			TotalSchoolDays: sheet.TotalSchoolDays,
		},
		NextTermFees: sheet.NextTermFees,
		Published:    sheet.IsPublished,
	}
	if sheet.NextTermBegins != nil {
		next := time.Time(*sheet.NextTermBegins)
		out.NextTermBegins = &next
	}
	return out
}
