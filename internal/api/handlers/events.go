package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventuraa/server/internal/api/middleware"
	"github.com/eventuraa/server/internal/api/pagination"
	"github.com/eventuraa/server/internal/api/problem"
	"github.com/eventuraa/server/internal/domain/events"
	"github.com/eventuraa/server/internal/domain/ids"
	"github.com/eventuraa/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventResponse struct {
	ID             string              `json:"_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Date           string              `json:"date"`
	Time           string              `json:"time"`
	Location       string              `json:"location"`
	Category       string              `json:"category"`
	Images         []string            `json:"images"`
	Published      bool                `json:"published"`
	ApprovalStatus string              `json:"approvalStatus,omitempty"`
	AdminFeedback  string              `json:"adminFeedback,omitempty"`
	Tickets        []events.TicketTier `json:"tickets"`
	Organizer      string              `json:"organizer"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type eventListResponse struct {
	Events     []eventResponse `json:"events"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

func eventPayload(ev *events.Event) eventResponse {
	return eventResponse{
		ID:             ev.ULID,
		Title:          ev.Title,
		Description:    ev.Description,
		Date:           ev.Date.Format("2006-01-02"),
		Time:           ev.Time,
		Location:       ev.Location,
		Category:       ev.Category,
		Images:         ev.Images,
		Published:      ev.Published,
		ApprovalStatus: ev.ApprovalStatus,
		AdminFeedback:  ev.AdminFeedback,
		Tickets:        ev.Tickets,
		Organizer:      ev.OrganizerID.String(),
		CreatedAt:      ev.CreatedAt,
	}
}

func eventListPayload(result *events.ListResult) eventListResponse {
	out := eventListResponse{
		Events:     make([]eventResponse, 0, len(result.Events)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Events {
		out.Events = append(out.Events, eventPayload(&result.Events[i]))
	}
	return out
}

func eventULIDParam(w http.ResponseWriter, r *http.Request, env string) (string, bool) {
	value := pathParam(r, "id")
	if err := ids.ValidateULID(value); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "Invalid event id", err, env)
		return "", false
	}
	return ids.Normalize(value), true
}

// List handles GET /api/events: the public catalogue of approved events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := events.Pagination{
		Limit: pagination.ParseLimit(r.URL.Query()),
		After: r.URL.Query().Get("cursor"),
	}

	result, err := h.Service.ListApproved(r.Context(), page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListPayload(result))
}

// Get handles GET /api/events/{id}. Only approved events are visible here.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	ev, err := h.Service.GetApproved(r.Context(), eventULID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(ev))
}

// Reserve handles POST /api/events/{id}/reserve.
func (h *EventsHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	var body struct {
		Ticket   string `json:"ticket"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &body, h.Env) {
		return
	}

	res, err := h.Service.Reserve(r.Context(), eventULID, body.Ticket, body.Quantity)
	if err != nil {
		metrics.ReservationFailuresTotal.WithLabelValues(reservationFailureReason(err)).Inc()
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.TicketsReservedTotal.Add(float64(res.Quantity))
	writeJSON(w, http.StatusOK, res)
}

func reservationFailureReason(err error) string {
	switch {
	case errors.Is(err, events.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, events.ErrTierNotFound), errors.Is(err, events.ErrNotFound):
		return "not_found"
	default:
		return "invalid_request"
	}
}

// ListOwn handles GET /api/organizer/events.
func (h *EventsHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	own, err := h.Service.ListByOrganizer(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	out := make([]eventResponse, 0, len(own))
	for i := range own {
		out = append(out, eventPayload(&own[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// GetOwn handles GET /api/organizer/events/{id}.
func (h *EventsHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	ev, err := h.Service.GetOwned(r.Context(), identity.ID, eventULID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(ev))
}

// Create handles POST /api/organizer/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	var draft events.Draft
	if !decodeBody(w, r, &draft, h.Env) {
		return
	}

	ev, err := h.Service.Create(r.Context(), identity.ID, draft)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, eventPayload(ev))
}

// Update handles PUT /api/organizer/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	var draft events.Draft
	if !decodeBody(w, r, &draft, h.Env) {
		return
	}

	ev, err := h.Service.Update(r.Context(), identity.ID, eventULID, draft)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(ev))
}

// Delete handles DELETE /api/organizer/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), identity.ID, eventULID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
