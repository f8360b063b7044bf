// Package memory provides mutex-guarded in-memory repository implementations.
// It is the default backing store; the postgres package provides the
// persistent alternative behind the same interfaces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type eventRepository struct {
	mu     sync.RWMutex
	byID   map[string]domain.Event
	byUser map[string][]string // userID -> event ids in insertion order
}

// NewEventRepository creates an in-memory event repository.
func NewEventRepository() repository.Event {
	return &eventRepository{
		byID:   make(map[string]domain.Event),
		byUser: make(map[string][]string),
	}
}

func (r *eventRepository) StoreEvent(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[event.ID]; exists {
		return fmt.Errorf("%w: event %s already stored", domain.ErrValidation, event.ID)
	}
	r.byID[event.ID] = event
	r.byUser[event.UserID] = append(r.byUser[event.UserID], event.ID)
	return nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.byID[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, eventID)
	}
	return &event, nil
}

// eventsByUserLocked returns the user's events sorted by occurredAt ascending.
// Callers must hold at least a read lock.
func (r *eventRepository) eventsByUserLocked(userID string) []domain.Event {
	ids := r.byUser[userID]
	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, r.byID[id])
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events
}

func (r *eventRepository) GetEventsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := r.eventsByUserLocked(userID)
	return paginateEvents(events, limit, offset), nil
}

func (r *eventRepository) GetEventsByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]domain.Event, 0)
	for _, event := range r.byID {
		if event.EventType == eventType {
			events = append(events, event)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return paginateEvents(events, limit, offset), nil
}

func (r *eventRepository) GetRecentEventsByUser(ctx context.Context, userID string, limit int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := r.eventsByUserLocked(userID)
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (r *eventRepository) CountEventsByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]), nil
}

func (r *eventRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, event := range r.byID {
		if event.OccurredAt.Before(cutoff) {
			delete(r.byID, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	for userID, ids := range r.byUser {
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := r.byID[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(r.byUser, userID)
			continue
		}
		r.byUser[userID] = kept
	}
	return removed, nil
}

// paginateEvents applies limit/offset against the newest-first view while
// returning the page itself oldest-first.
func paginateEvents(ascending []domain.Event, limit, offset int) []domain.Event {
	n := len(ascending)
	if offset >= n {
		return []domain.Event{}
	}
	// Offset counts back from the newest event.
	end := n - offset
	start := end - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	page := make([]domain.Event, end-start)
	copy(page, ascending[start:end])
	return page
}
