package events

import (
	"errors"

	"github.com/eventuraa/server/internal/domain/validate"
)

// ValidationError is the shared field-validation error type.
type ValidationError = validate.Errors

var (
	// ErrNotFound covers events the caller is not allowed to know exist as
	// well as genuinely missing ones: a non-approved event looked up through
	// a public operation reports ErrNotFound, never ErrForbidden.
	ErrNotFound = errors.New("event not found")

	// ErrTierNotFound means the event exists but names no such ticket tier.
	ErrTierNotFound = errors.New("ticket tier not found")

	// ErrForbidden means the event exists but belongs to another organizer.
	ErrForbidden = errors.New("event belongs to another organizer")

	// ErrOutOfStock means the reservation would push sold past quantity.
	// Stock was not changed.
	ErrOutOfStock = errors.New("not enough tickets available")

	// ErrAlreadyReviewed rejects a second review of the same event.
	ErrAlreadyReviewed = errors.New("event has already been reviewed")

	// ErrInvalidDecision rejects review decisions outside approved/rejected.
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)
