// Package postgres provides pgx-backed repository implementations. Schema
// changes live in the migrations directory and are applied with goose.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type eventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL event repository
func NewEventRepository(db *pgxpool.Pool) repository.Event {
	return &eventRepository{db: db}
}

func (r *eventRepository) StoreEvent(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	attributesJSON, err := marshalJSON(event.Attributes, "event attributes")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (event_id, event_type, user_id, occurred_at, attributes)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, event.ID, event.EventType, event.UserID, event.OccurredAt, attributesJSON); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s already stored", domain.ErrValidation, event.ID)
		}
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "store event", err)
	}
	return nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM events
		WHERE event_id = $1
	`

	event, err := scanEvent(r.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "get event", err)
	}
	return event, nil
}

// GetEventsByUser selects the page newest-first and returns it oldest-first,
// matching the in-memory repository.
func (r *eventRepository) GetEventsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM (
			SELECT event_id, event_type, user_id, occurred_at, attributes
			FROM events
			WHERE user_id = $1
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT $2 OFFSET $3
		) page
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "events by user", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *eventRepository) GetEventsByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM (
			SELECT event_id, event_type, user_id, occurred_at, attributes
			FROM events
			WHERE event_type = $1
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT $2 OFFSET $3
		) page
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := r.db.Query(ctx, query, eventType, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "events by type", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *eventRepository) GetRecentEventsByUser(ctx context.Context, userID string, limit int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM (
			SELECT event_id, event_type, user_id, occurred_at, attributes
			FROM events
			WHERE user_id = $1
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT $2
		) page
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "recent events", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *eventRepository) CountEventsByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "count events", err)
	}
	return count, nil
}

func (r *eventRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "delete events", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		event          domain.Event
		attributesJSON []byte
	)
	if err := row.Scan(&event.ID, &event.EventType, &event.UserID, &event.OccurredAt, &attributesJSON); err != nil {
		return nil, err
	}
	if len(attributesJSON) > 0 {
		if err := json.Unmarshal(attributesJSON, &event.Attributes); err != nil {
			return nil, err
		}
	}
	event.OccurredAt = event.OccurredAt.UTC()
	return &event, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "events", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "events", err)
	}
	return events, nil
}

// limitArg converts a non-positive limit into SQL NULL, which postgres
// treats as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func marshalJSON(v any, what string) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgMarshalJSON, domain.ErrRepository, what, err)
	}
	return data, nil
}
