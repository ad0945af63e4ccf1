package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eventuraa/server/internal/api/pagination"
	"github.com/eventuraa/server/internal/api/problem"
	"github.com/eventuraa/server/internal/domain/events"
	"github.com/eventuraa/server/internal/domain/users"
	"github.com/eventuraa/server/internal/domain/validate"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.PathValue(key))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any, env string) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "Invalid request body", err, env)
		return false
	}
	return true
}

// writeDomainError maps service errors onto problem responses. Anything it
// does not recognize becomes a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr *validate.Errors
	if errors.As(err, &verr) {
		problem.Write(w, r, http.StatusUnprocessableEntity, "https://eventuraa.lk/problems/validation-error", "Validation failed", nil, env,
			problem.WithFieldErrors(verr.Fields))
		return
	}

	switch {
	case errors.Is(err, pagination.ErrInvalidCursor):
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "Invalid cursor", err, env)
	case errors.Is(err, users.ErrInvalidCredentials):
		// One message for unknown email and wrong password alike.
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Invalid email or password", nil, env,
			problem.WithDetail("Invalid email or password"))
	case errors.Is(err, users.ErrInvalidAdminKey):
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Invalid admin secret key", nil, env,
			problem.WithDetail("Invalid admin secret key"))
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/conflict", "Email already in use", err, env)
	case errors.Is(err, users.ErrRegNumberTaken):
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/conflict", "Registration number already exists", err, env)
	case errors.Is(err, users.ErrNotOrganizer):
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "User is not an organizer", err, env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "https://eventuraa.lk/problems/not-found", "User not found", err, env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "https://eventuraa.lk/problems/not-found", "Event not found", err, env)
	case errors.Is(err, events.ErrTierNotFound):
		problem.Write(w, r, http.StatusNotFound, "https://eventuraa.lk/problems/not-found", "Ticket type not found", err, env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, "https://eventuraa.lk/problems/forbidden", "Not authorized to manage this event", err, env)
	case errors.Is(err, events.ErrOutOfStock):
		problem.Write(w, r, http.StatusConflict, "https://eventuraa.lk/problems/conflict", "Not enough tickets available", err, env)
	case errors.Is(err, events.ErrAlreadyReviewed):
		problem.Write(w, r, http.StatusConflict, "https://eventuraa.lk/problems/conflict", "Event has already been reviewed", err, env)
	case errors.Is(err, events.ErrInvalidDecision):
		problem.Write(w, r, http.StatusBadRequest, "https://eventuraa.lk/problems/validation-error", "Invalid review decision", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, "https://eventuraa.lk/problems/server-error", "Server error", err, env)
	}
}
