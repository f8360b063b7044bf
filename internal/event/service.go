// Package event provides the ingestion front door: validation, enqueueing,
// and read access to the raw event log.
package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/queue"
	"github.com/osheron/meritum/internal/repository"
)

// Query listing bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// Log messages
const (
	LogMsgEventAccepted = "Event accepted"
	LogMsgEventRejected = "Event rejected"
)

// Rejection reasons for the events_rejected metric.
const (
	ReasonValidation = "validation"
	ReasonQueueFull  = "queue_full"
	ReasonShutdown   = "shutdown"
)

// Service defines the interface for event ingestion and queries.
type Service interface {
	// Ingest validates and enqueues an event. It returns the accepted event
	// with server-side defaults filled in, and fails fast with
	// domain.ErrQueueFull when the queue is at capacity.
	Ingest(ctx context.Context, evt domain.Event) (*domain.Event, error)

	GetEventByID(ctx context.Context, eventID string) (*domain.Event, error)
	GetEventsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error)
	GetEventsByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error)
	CountEventsByUser(ctx context.Context, userID string) (int64, error)
}

type service struct {
	queue  *queue.Queue
	events repository.Event
}

// NewService creates an event ingestion service.
func NewService(q *queue.Queue, events repository.Event) Service {
	return &service{queue: q, events: events}
}

func (s *service) Ingest(ctx context.Context, evt domain.Event) (*domain.Event, error) {
	log := logger.FromContext(ctx)

	evt = domain.NewEvent(evt.ID, evt.EventType, evt.UserID, evt.OccurredAt, evt.Attributes)
	if err := evt.Validate(); err != nil {
		metrics.EventsRejected.WithLabelValues(ReasonValidation).Inc()
		log.Warn(LogMsgEventRejected, "reason", ReasonValidation, "error", err)
		return nil, err
	}

	if err := s.queue.Enqueue(evt); err != nil {
		reason := ReasonQueueFull
		if errors.Is(err, domain.ErrQueueClosed) {
			reason = ReasonShutdown
		}
		metrics.EventsRejected.WithLabelValues(reason).Inc()
		log.Warn(LogMsgEventRejected, "reason", reason, "event_id", evt.ID)
		return nil, err
	}

	metrics.EventsIngested.Inc()
	log.Debug(LogMsgEventAccepted, "event_id", evt.ID, "event_type", evt.EventType, "user_id", evt.UserID)
	return &evt, nil
}

func (s *service) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.events.GetEventByID(ctx, eventID)
}

func (s *service) GetEventsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	limit, offset, err := clampListArgs(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.events.GetEventsByUser(ctx, userID, limit, offset)
}

func (s *service) GetEventsByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error) {
	limit, offset, err := clampListArgs(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.events.GetEventsByType(ctx, eventType, limit, offset)
}

func (s *service) CountEventsByUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.events.CountEventsByUser(ctx, userID)
	return int64(count), err
}

func clampListArgs(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return 0, 0, fmt.Errorf("%w: limit must be in [1,%d]", domain.ErrValidation, MaxListLimit)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must be non-negative", domain.ErrValidation)
	}
	return limit, offset, nil
}
