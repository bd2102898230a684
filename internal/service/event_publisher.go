package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event subjects fanned out to other backend services. These are
// server-to-server facts, not a client transport.
const (
	SubjectSessionScheduled = "workbook.session.scheduled"
	SubjectSessionJoined    = "workbook.session.joined"
	SubjectSessionLeft      = "workbook.session.left"
	SubjectSessionLocked    = "workbook.session.locked"
	SubjectSessionEnded     = "workbook.session.ended"
	SubjectRoleChanged      = "workbook.session.role_changed"
	SubjectLessonCompleted  = "workbook.progress.lesson_completed"
	SubjectModuleCompleted  = "workbook.progress.module_completed"
	SubjectStatusChanged    = "workbook.progress.status_changed"
)

// Event is the envelope published on every subject.
type Event struct {
	Subject    string         `json:"subject"`
	UserID     string         `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher fans domain events out to interested backend services.
// Publication is best-effort: a failed publish is logged, never surfaced
// to the request that triggered it.
type Publisher interface {
	Publish(event Event)
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNATSPublisher constructs a publisher backed by a NATS connection.
func NewNATSPublisher(conn *nats.Conn, logger zerolog.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", event.Subject).Msg("marshal event")
		return
	}
	if err := p.conn.Publish(event.Subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", event.Subject).Msg("publish event")
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when
// NATS is not configured and in tests.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(Event) {}
