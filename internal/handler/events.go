package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osheron/meritum/internal/catalog"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/event"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/rules"
)

// IngestEventRequest represents the body for event ingestion
type IngestEventRequest struct {
	EventID    string         `json:"eventId"`
	EventType  string         `json:"eventType" validate:"required,max=200"`
	UserID     string         `json:"userId" validate:"required,max=200"`
	OccurredAt *time.Time     `json:"occurredAt,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (req IngestEventRequest) toEvent() domain.Event {
	occurredAt := time.Time{}
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	return domain.Event{
		ID:         req.EventID,
		EventType:  req.EventType,
		UserID:     req.UserID,
		OccurredAt: occurredAt,
		Attributes: req.Attributes,
	}
}

// HandleIngestEvent handles event submission. The response body is the
// accepted event in canonical form, with the generated id and defaulted
// timestamp filled in.
// @Summary Ingest an event
// @Description Validates and enqueues an event for asynchronous rule evaluation
// @Tags events
// @Accept json
// @Produce json
// @Param event body IngestEventRequest true "Event to ingest"
// @Success 201 {object} domain.Event
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/events [post]
func HandleIngestEvent(svc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Ingest event"); err != nil {
			return
		}

		accepted, err := svc.Ingest(r.Context(), req.toEvent())
		if err != nil {
			respondServiceError(w, r, "Ingest event", err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/api/events/%s", accepted.ID))
		respondJSON(w, http.StatusCreated, accepted)
	}
}

// HandleDryRunEvent evaluates an event without side effects
// @Summary Dry-run an event
// @Description Evaluates an event against all active rules without storing it or applying rewards
// @Tags events
// @Accept json
// @Produce json
// @Param event body IngestEventRequest true "Candidate event"
// @Success 200 {object} domain.DryRunTrace
// @Failure 400 {object} ErrorResponse
// @Router /api/events/sandbox/dry-run [post]
func HandleDryRunEvent(sandbox *rules.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Dry-run event"); err != nil {
			return
		}

		evt := domain.NewEvent(req.EventID, req.EventType, req.UserID, timeOrZero(req.OccurredAt), req.Attributes)
		trace, err := sandbox.DryRun(r.Context(), evt)
		if err != nil {
			respondServiceError(w, r, "Dry-run event", err)
			return
		}
		respondJSON(w, http.StatusOK, trace)
	}
}

// HandleGetEvent returns a single stored event
// @Summary Get event by id
// @Tags events
// @Produce json
// @Param eventId path string true "Event id"
// @Success 200 {object} domain.Event
// @Failure 404 {object} ErrorResponse
// @Router /api/events/{eventId} [get]
func HandleGetEvent(svc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventId")
		evt, err := svc.GetEventByID(r.Context(), eventID)
		if err != nil {
			respondServiceError(w, r, "Get event", err)
			return
		}
		respondJSON(w, http.StatusOK, evt)
	}
}

// EventListResponse wraps a page of events
type EventListResponse struct {
	Events []domain.Event `json:"events"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// HandleGetEventsByUser lists a user's events, newest first
// @Summary List events by user
// @Tags events
// @Produce json
// @Param userId path string true "User id"
// @Param limit query int false "Page size (1-1000)"
// @Param offset query int false "Offset from newest"
// @Success 200 {object} EventListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/events/user/{userId} [get]
func HandleGetEventsByUser(svc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		limit, ok := intQueryParam(r, w, "limit", event.DefaultListLimit, 1, event.MaxListLimit, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		offset, ok := intQueryParam(r, w, "offset", 0, 0, int(^uint(0)>>1), ErrMsgInvalidOffset)
		if !ok {
			return
		}

		events, err := svc.GetEventsByUser(r.Context(), userID, limit, offset)
		if err != nil {
			respondServiceError(w, r, "List events by user", err)
			return
		}
		respondJSON(w, http.StatusOK, EventListResponse{Events: events, Limit: limit, Offset: offset})
	}
}

// HandleGetEventsByType lists events of one type, newest first
// @Summary List events by type
// @Tags events
// @Produce json
// @Param eventType path string true "Event type"
// @Param limit query int false "Page size (1-1000)"
// @Param offset query int false "Offset from newest"
// @Success 200 {object} EventListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/events/type/{eventType} [get]
func HandleGetEventsByType(svc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventType := chi.URLParam(r, "eventType")
		limit, ok := intQueryParam(r, w, "limit", event.DefaultListLimit, 1, event.MaxListLimit, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		offset, ok := intQueryParam(r, w, "offset", 0, 0, int(^uint(0)>>1), ErrMsgInvalidOffset)
		if !ok {
			return
		}

		events, err := svc.GetEventsByType(r.Context(), eventType, limit, offset)
		if err != nil {
			respondServiceError(w, r, "List events by type", err)
			return
		}
		respondJSON(w, http.StatusOK, EventListResponse{Events: events, Limit: limit, Offset: offset})
	}
}

// HandleGetEventTypes returns the known event type descriptors
// @Summary List known event types
// @Tags events
// @Produce json
// @Success 200 {array} domain.EventTypeDescriptor
// @Router /api/events/catalog [get]
func HandleGetEventTypes(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debug("Listing event types")
		respondJSON(w, http.StatusOK, cat.EventTypes())
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
