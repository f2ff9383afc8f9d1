package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/observability"
)

// Result event types.
const (
	ResultEventPublished = "result_sheet.published"
	ResultEventDeleted   = "result_sheet.deleted"
)

// ResultEvent announces a change in the visibility of a student's result.
type ResultEvent struct {
	Type          string    `json:"type"`
	StudentID     uint      `json:"student_id"`
	Term          string    `json:"term"`
	AcademicYear  string    `json:"academic_year"`
	ActorID       uint      `json:"actor_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ResultEventPublisher broadcasts result events.
type ResultEventPublisher interface {
	Publish(ctx context.Context, event ResultEvent) error
}

type brokerResultPublisher struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
}

// NewResultEventPublisher fans events out to Redis pub/sub and NATS. Either
// client may be nil.
func NewResultEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ResultEventPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":results"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".results"
	}

	return &brokerResultPublisher{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "result_events").Logger(),
	}
}

func (p *brokerResultPublisher) Publish(ctx context.Context, event ResultEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisStream != "" {
		if err := p.redis.Publish(ctx, p.redisStream, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	observability.ResultEventsPublished().WithLabelValues(event.Type).Inc()
	p.logger.Debug().Str("type", event.Type).Uint("student_id", event.StudentID).Msg("result event published")
	return nil
}
