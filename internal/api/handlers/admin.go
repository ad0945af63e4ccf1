package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eventuraa/server/internal/api/middleware"
	"github.com/eventuraa/server/internal/api/pagination"
	"github.com/eventuraa/server/internal/api/problem"
	"github.com/eventuraa/server/internal/domain/events"
	"github.com/eventuraa/server/internal/domain/users"
	"github.com/eventuraa/server/internal/metrics"
)

type AdminHandler struct {
	Users  *users.Service
	Events *events.AdminService
	Env    string
}

func NewAdminHandler(userService *users.Service, adminEvents *events.AdminService, env string) *AdminHandler {
	return &AdminHandler{Users: userService, Events: adminEvents, Env: env}
}

// Dashboard handles GET /api/admin/dashboard: account and event counts.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	roleCounts, err := h.Users.CountsByRole(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	eventCounts, err := h.Events.Counts(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":  roleCounts,
		"events": eventCounts,
	})
}

// ListEvents handles GET /api/admin/events: every event, any status.
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	all, err := h.Events.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	out := make([]eventResponse, 0, len(all))
	for i := range all {
		out = append(out, eventPayload(&all[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// ListPendingEvents handles GET /api/admin/events/pending: the review queue.
func (h *AdminHandler) ListPendingEvents(w http.ResponseWriter, r *http.Request) {
	page := events.Pagination{
		Limit: pagination.ParseLimit(r.URL.Query()),
		After: r.URL.Query().Get("cursor"),
	}

	result, err := h.Events.ListPending(r.Context(), page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListPayload(result))
}

// GetEvent handles GET /api/admin/events/{id}: any status.
func (h *AdminHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	ev, err := h.Events.Get(r.Context(), eventULID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(ev))
}

// ReviewEvent handles PUT /api/admin/events/{id}/review.
func (h *AdminHandler) ReviewEvent(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	eventULID, ok := eventULIDParam(w, r, h.Env)
	if !ok {
		return
	}

	var body struct {
		Status      string `json:"status"`
		ReviewNotes string `json:"reviewNotes"`
	}
	if !decodeBody(w, r, &body, h.Env) {
		return
	}

	ev, err := h.Events.Review(r.Context(), identity.ID, eventULID, body.Status, body.ReviewNotes)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.EventsReviewedTotal.WithLabelValues(ev.ApprovalStatus).Inc()
	writeJSON(w, http.StatusOK, eventPayload(ev))
}

// ListOrganizers handles GET /api/admin/organizers.
func (h *AdminHandler) ListOrganizers(w http.ResponseWriter, r *http.Request) {
	organizers, err := h.Users.ListOrganizers(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	out := make([]users.Projection, 0, len(organizers))
	for i := range organizers {
		out = append(out, users.Project(&organizers[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"organizers": out})
}

// VerifyOrganizer handles PUT /api/admin/organizers/{id}/verify.
func (h *AdminHandler) VerifyOrganizer(w http.ResponseWriter, r *http.Request) {
	organizerID, err := uuid.Parse(pathParam(r, "id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "Invalid organizer id", err, h.Env)
		return
	}

	var body struct {
		Verified bool `json:"verified"`
	}
	if !decodeBody(w, r, &body, h.Env) {
		return
	}

	identity, err := h.Users.SetOrganizerVerified(r.Context(), organizerID, body.Verified)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]users.Projection{"user": users.Project(identity)})
}
