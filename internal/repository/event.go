package repository

import (
	"context"
	"time"

	"github.com/osheron/meritum/internal/domain"
)

// Event defines the interface for event persistence. Storage must preserve
// ordering by occurredAt when queried.
type Event interface {
	StoreEvent(ctx context.Context, event domain.Event) error
	GetEventByID(ctx context.Context, eventID string) (*domain.Event, error)

	// GetEventsByUser returns the user's events ordered by occurredAt
	// ascending, newest window first selected by limit/offset over the
	// descending sequence.
	GetEventsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error)
	GetEventsByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error)

	// GetRecentEventsByUser returns up to limit most recent events for the
	// user in chronological (oldest-first) order, for rule evaluation.
	GetRecentEventsByUser(ctx context.Context, userID string, limit int) ([]domain.Event, error)

	CountEventsByUser(ctx context.Context, userID string) (int, error)

	// DeleteEventsBefore purges events older than the cutoff, returning the
	// number removed. Used by the retention job.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
