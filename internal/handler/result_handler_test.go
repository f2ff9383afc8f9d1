package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/handler"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/result"
	"github.com/noah-isme/gema-result-api/internal/service"
)

type stubResultService struct {
	card       result.CardData
	err        error
	lastQuery  service.CardQuery
	lastClass  service.ClassPrintQuery
	printCalls int
}

func (s *stubResultService) GetCard(_ context.Context, query service.CardQuery) (result.CardData, error) {
	s.lastQuery = query
	if s.err != nil {
		return result.CardData{}, s.err
	}
	return s.card, nil
}

func (s *stubResultService) GetAttendance(_ context.Context, studentID uint, term, academicYear string) (dto.AttendanceSummaryResponse, error) {
	if s.err != nil {
		return dto.AttendanceSummaryResponse{}, s.err
	}
	return dto.AttendanceSummaryResponse{
		StudentID: studentID,
		Term:      term,
		Computed:  result.Attendance{DaysPresent: 40, TotalSchoolDays: 42},
		Effective: result.Attendance{DaysPresent: 40, TotalSchoolDays: 42},
	}, nil
}

func (s *stubResultService) PrintCard(ctx context.Context, query service.CardQuery, surface printing.Surface) (printing.Receipt, error) {
	s.lastQuery = query
	return s.emit(ctx, surface, 1)
}

func (s *stubResultService) PrintClass(ctx context.Context, query service.ClassPrintQuery, surface printing.Surface) (printing.Receipt, error) {
	s.lastClass = query
	return s.emit(ctx, surface, len(query.StudentIDs))
}

func (s *stubResultService) emit(ctx context.Context, surface printing.Surface, cards int) (printing.Receipt, error) {
	s.printCalls++
	if s.err != nil {
		return printing.Receipt{}, s.err
	}
	sink, err := surface.Open(ctx)
	if err != nil {
		return printing.Receipt{}, errors.Join(printing.ErrSurfaceUnavailable, err)
	}
	defer sink.Close()
	return sink.Emit(ctx, printing.Document{Title: "cards", HTML: []byte("<html><body>cards</body></html>"), Cards: cards})
}

type stubUploader struct {
	names []string
}

func (u *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	u.names = append(u.names, name)
	_, _ = io.Copy(io.Discard, reader)
	return "https://files.example.com/" + name, nil
}

func newResultApp(svc service.ResultService, uploader printing.Uploader, role string) *fiber.App {
	app := fiber.New()
	auth := func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(5))
		c.Locals("user_role", role)
		return c.Next()
	}
	h := handler.NewResultHandler(svc, uploader, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	h.RegisterStaff(app.Group("/api/v1/results", auth), func(c *fiber.Ctx) error { return c.Next() })
	h.RegisterPublished(app.Group("/api/v1/results/published", auth))
	return app
}

func TestResultHandlerCardUsesRoleAccess(t *testing.T) {
	svc := &stubResultService{card: result.CardData{Term: result.FirstTerm, AcademicYear: "2024/2025", GrandTotal: 412}}
	app := newResultApp(svc, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/12/card?term=First%20Term&year=2024/2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    result.CardData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.True(t, payload.Success)
	require.Equal(t, 412, payload.Data.GrandTotal)
	require.Equal(t, service.CardQuery{StudentID: 12, Term: "First Term", AcademicYear: "2024/2025", Access: service.AccessFull}, svc.lastQuery)
}

func TestResultHandlerPublishedCard(t *testing.T) {
	svc := &stubResultService{err: service.ErrResultNotPublished}
	app := newResultApp(svc, nil, "parent")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/published/students/12/card?term=First%20Term&year=2024/2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, service.AccessPublished, svc.lastQuery.Access)
}

func TestResultHandlerCardRequiresTerm(t *testing.T) {
	app := newResultApp(&stubResultService{}, nil, "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/12/card?year=2024/2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResultHandlerCardMapsErrors(t *testing.T) {
	cases := map[error]int{
		service.ErrStudentNotFound:     fiber.StatusNotFound,
		service.ErrInvalidAcademicYear: fiber.StatusBadRequest,
		errors.New("db down"):          fiber.StatusInternalServerError,
	}
	for cause, status := range cases {
		app := newResultApp(&stubResultService{err: cause}, nil, "admin")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/3/card?term=First%20Term&year=2024/2025", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, status, resp.StatusCode, cause.Error())
	}
}

func TestResultHandlerPrintReturnsHTML(t *testing.T) {
	svc := &stubResultService{}
	app := newResultApp(svc, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/12/print?term=First%20Term&year=2024/2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "cards")
}

func TestResultHandlerPrintArchiveWithoutUploaderIsUnavailable(t *testing.T) {
	app := newResultApp(&stubResultService{}, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/12/print?term=First%20Term&year=2024/2025&archive=true", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestResultHandlerPrintClassArchives(t *testing.T) {
	svc := &stubResultService{}
	uploader := &stubUploader{}
	app := newResultApp(svc, uploader, "teacher")

	body, err := json.Marshal(dto.BatchPrintRequest{Term: "First Term", AcademicYear: "2024/2025", StudentIDs: []uint{4, 2}, Archive: true})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/results/classes/7/print", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Data dto.PrintReceiptResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.Equal(t, 2, payload.Data.Cards)
	require.Equal(t, []string{"class-7-first-term-2024-2025"}, uploader.names)
	require.Equal(t, "https://files.example.com/class-7-first-term-2024-2025", payload.Data.Location)
	require.Equal(t, []uint{4, 2}, svc.lastClass.StudentIDs)
}

func TestResultHandlerPrintClassRejectsEmptySelection(t *testing.T) {
	svc := &stubResultService{}
	app := newResultApp(svc, nil, "teacher")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/results/classes/7/print", bytes.NewReader([]byte(`{"term":"First Term","academic_year":"2024/2025","student_ids":[]}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.printCalls)
}

func TestResultHandlerPrintClassValidatesPayload(t *testing.T) {
	svc := &stubResultService{}
	app := newResultApp(svc, nil, "teacher")

	for _, body := range []string{
		`{"term":"  ","academic_year":"2024/2025","student_ids":[1]}`,
		`{"term":"First Term","academic_year":"2024","student_ids":[1]}`,
		`{"term":"First Term","academic_year":"2024/2025","student_ids":[1,0]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/results/classes/7/print", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
	}
	require.Zero(t, svc.printCalls)
}

func TestResultHandlerPrintClassBusy(t *testing.T) {
	app := newResultApp(&stubResultService{err: printing.ErrBatchInProgress}, nil, "teacher")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/results/classes/7/print", bytes.NewReader([]byte(`{"term":"First Term","academic_year":"2024/2025","student_ids":[1]}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestResultHandlerAttendance(t *testing.T) {
	app := newResultApp(&stubResultService{}, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/students/12/attendance?term=Second%20Term&year=2024/2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.AttendanceSummaryResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Equal(t, uint(12), payload.Data.StudentID)
	require.Equal(t, 42, payload.Data.Effective.TotalSchoolDays)
}
