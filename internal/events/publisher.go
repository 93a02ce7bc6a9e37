package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/justsurfingit/job-trends-api/internal/telemetry"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("job-trends-api/events")

const (
	SubjectJobCreated = "jobs.created"
	SubjectJobUpdated = "jobs.updated"
	SubjectJobDeleted = "jobs.deleted"
)

type JobEvent struct {
	Type       string    `json:"type"`
	JobID      uint      `json:"job_id"`
	Title      string    `json:"job_title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishJobEvent(ctx context.Context, subject string, event JobEvent) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(url string, timeout time.Duration, logger *zap.Logger) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("job-trends-api"),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &natsPublisher{conn: conn, logger: logger}, nil
}

func (p *natsPublisher) PublishJobEvent(ctx context.Context, subject string, event JobEvent) error {
	_, span := tracer.Start(ctx, "PublishJobEvent")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling job event: %w", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job event",
			zap.Uint("job_id", event.JobID),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("publishing to NATS: %w", err)
	}

	p.logger.Debug("published job event",
		zap.Uint("job_id", event.JobID),
		zap.String("subject", subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when NATS_URL is not configured.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) PublishJobEvent(context.Context, string, JobEvent) error { return nil }
func (noopPublisher) Close()                                                  {}
