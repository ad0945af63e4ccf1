package users

import (
	"errors"

	"github.com/eventuraa/server/internal/domain/validate"
)

var (
	// ErrNotFound is returned when an identity lookup fails.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when the email is already registered,
	// regardless of role.
	ErrEmailTaken = errors.New("email already registered")

	// ErrRegNumberTaken is returned when a doctor registration number is
	// already in use by another doctor profile.
	ErrRegNumberTaken = errors.New("registration number already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// sign-in failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidAdminKey is returned when admin self-registration is
	// attempted without the shared secret.
	ErrInvalidAdminKey = errors.New("invalid admin secret key")

	// ErrNotOrganizer is returned when a verification toggle targets an
	// identity whose role is not organizer.
	ErrNotOrganizer = errors.New("user is not an organizer")
)

// FieldError and ValidationError are the shared field-validation types;
// aliased here so callers of this package stay within its vocabulary.
type (
	FieldError      = validate.FieldError
	ValidationError = validate.Errors
)
