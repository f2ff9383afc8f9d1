package service

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-result-api/internal/dto"
	"github.com/noah-isme/gema-result-api/internal/middleware"
	"github.com/noah-isme/gema-result-api/internal/models"
)

func newSheetService(events ResultEventPublisher) (ResultSheetService, *fakeSheetRepo) {
	students := newFakeStudentRepo(models.Student{ID: 7, ClassID: 1, Name: "Ngozi", Status: models.StudentStatusActive})
	sheets := newFakeSheetRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewResultSheetService(students, sheets, validate, events, testLogger()), sheets
}

func TestResultSheetServiceUpsertPublishesEvent(t *testing.T) {
	events := &recordingPublisher{}
	svc, sheets := newSheetService(events)

	ctx := middleware.ContextWithCorrelation(context.Background(), "corr-42")
	resp, err := svc.Upsert(ctx, dto.ResultSheetUpsertRequest{
		StudentID:      7,
		Term:           " First Term ",
		AcademicYear:   "2024/2025",
		TeacherRemark:  "  Excellent  ",
		Punctuality:    5,
		NextTermBegins: "2025-01-06",
		IsPublished:    true,
	}, ActivityActor{ID: 3, Role: RoleTeacher})
	require.NoError(t, err)

	require.Equal(t, "First Term", resp.Term)
	require.Equal(t, "Excellent", resp.TeacherRemark)
	require.Equal(t, 5, resp.Ratings.Punctuality)
	require.NotNil(t, resp.NextTermBegins)
	require.Equal(t, "2025-01-06", resp.NextTermBegins.Format("2006-01-02"))
	require.Equal(t, uint(3), sheets.sheets[7].UpdatedBy)

	require.Len(t, events.events, 1)
	require.Equal(t, ResultEventPublished, events.events[0].Type)
	require.Equal(t, uint(7), events.events[0].StudentID)
	require.Equal(t, "corr-42", events.events[0].CorrelationID)
}

func TestResultSheetServiceDraftDoesNotPublish(t *testing.T) {
	events := &recordingPublisher{}
	svc, _ := newSheetService(events)

	_, err := svc.Upsert(context.Background(), dto.ResultSheetUpsertRequest{StudentID: 7, Term: "First Term", AcademicYear: "2024/2025"}, ActivityActor{ID: 3})
	require.NoError(t, err)
	require.Empty(t, events.events)
}

func TestResultSheetServiceUpsertValidation(t *testing.T) {
	svc, _ := newSheetService(nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, dto.ResultSheetUpsertRequest{StudentID: 7, Term: "First Term", AcademicYear: "2024/2025", Honesty: 9}, ActivityActor{})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Upsert(ctx, dto.ResultSheetUpsertRequest{StudentID: 7, Term: "First Term", AcademicYear: "2024-2025"}, ActivityActor{})
	require.ErrorIs(t, err, ErrInvalidAcademicYear)

	_, err = svc.Upsert(ctx, dto.ResultSheetUpsertRequest{StudentID: 70, Term: "First Term", AcademicYear: "2024/2025"}, ActivityActor{})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestResultSheetServiceBrokerFailureDoesNotFailWrite(t *testing.T) {
	svc, sheets := newSheetService(&recordingPublisher{err: errors.New("broker down")})

	_, err := svc.Upsert(context.Background(), dto.ResultSheetUpsertRequest{StudentID: 7, Term: "First Term", AcademicYear: "2024/2025", IsPublished: true}, ActivityActor{ID: 1})
	require.NoError(t, err)
	require.True(t, sheets.sheets[7].IsPublished)
}

func TestResultSheetServiceDelete(t *testing.T) {
	events := &recordingPublisher{}
	svc, sheets := newSheetService(events)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, dto.ResultSheetUpsertRequest{StudentID: 7, Term: "First Term", AcademicYear: "2024/2025"}, ActivityActor{ID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 7, "First Term", "2024/2025", ActivityActor{ID: 1}))
	require.Empty(t, sheets.sheets)
	require.Len(t, events.events, 1)
	require.Equal(t, ResultEventDeleted, events.events[0].Type)

	require.ErrorIs(t, svc.Delete(ctx, 7, "First Term", "2024/2025", ActivityActor{ID: 1}), ErrResultSheetNotFound)
}

func TestResultEventPublisherUsesRedisChannel(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "gema:results")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewResultEventPublisher(client, "gema", nil, testLogger())
	require.NoError(t, publisher.Publish(ctx, ResultEvent{Type: ResultEventPublished, StudentID: 7, Term: "First Term", AcademicYear: "2024/2025"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Contains(t, msg.Payload, `"type":"result_sheet.published"`)
	require.Contains(t, msg.Payload, `"student_id":7`)
}
