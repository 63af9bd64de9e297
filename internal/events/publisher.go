package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/telemetry"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

var tracer = telemetry.GetTracer("placement-tracker/events")

const (
	ApplicantAttachedSubject      = "placement.applicant.attached"
	ApplicantStatusChangedSubject = "placement.applicant.status_changed"
)

// ApplicantEvent is the message published after an applicant record commits.
type ApplicantEvent struct {
	ID           string                 `json:"id"`
	JobPostID    uint                   `json:"job_post_id"`
	StudentID    uint                   `json:"student_id"`
	From         models.ApplicantStatus `json:"from,omitempty"`
	Status       models.ApplicantStatus `json:"status"`
	CurrentRound int                    `json:"current_round"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

func NewApplicantEvent(a models.Applicant, from models.ApplicantStatus) ApplicantEvent {
	return ApplicantEvent{
		ID:           uuid.NewString(),
		JobPostID:    a.JobPostID,
		StudentID:    a.StudentID,
		From:         from,
		Status:       a.Status,
		CurrentRound: a.CurrentRound,
		OccurredAt:   time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, subject string, event ApplicantEvent) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher connects to NATS. An empty url yields a publisher that drops
// every event.
func NewPublisher(url string, timeout time.Duration, logger zerolog.Logger) (Publisher, error) {
	if url == "" {
		logger.Info().Msg("NATS_URL not set, applicant events are not published")
		return NoopPublisher{}, nil
	}
	opts := []nats.Option{
		nats.Name("placement-tracker"),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, apperrors.Internal("connecting to NATS", err)
	}
	return &natsPublisher{conn: conn, logger: logger}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, event ApplicantEvent) error {
	_, span := tracer.Start(ctx, "PublishApplicantEvent")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return apperrors.Internal("marshaling applicant event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("subject", subject).
			Msg("failed to publish applicant event")
		return apperrors.Internal("publishing to NATS", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", subject).
		Msg("published applicant event")
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, ApplicantEvent) error { return nil }
func (NoopPublisher) Close()                                             {}
