package events

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for events. Implementations must
// make Reserve atomic: concurrent reservations against the same tier may
// never oversell it.
type Repository interface {
	Create(ctx context.Context, ev *Event) error
	GetByULID(ctx context.Context, eventULID string) (*Event, error)
	Update(ctx context.Context, ev *Event) error
	Delete(ctx context.Context, eventULID string) error

	ListByStatus(ctx context.Context, status string, p Pagination) (*ListResult, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	CountByStatus(ctx context.Context, status string) (int64, error)

	// Reserve increments sold on the named tier by count if and only if
	// sold+count <= quantity, returning the tier as it stands after the
	// increment. On ErrOutOfStock the stored counters are unchanged.
	Reserve(ctx context.Context, eventULID, tier string, count int) (*TicketTier, error)
}
