package users

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the credential store consumed by the service. All reads and
// writes are atomic per identity; no cross-identity transactions are needed.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	FindByRegNumber(ctx context.Context, regNumber string) (*Identity, error)

	// Create persists a new identity. Returns ErrEmailTaken or
	// ErrRegNumberTaken on uniqueness violations.
	Create(ctx context.Context, identity *Identity) error

	// Save replaces the stored identity with the given one.
	Save(ctx context.Context, identity *Identity) error

	ListOrganizers(ctx context.Context) ([]Identity, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	CountVerifiedOrganizers(ctx context.Context) (int64, error)
}
