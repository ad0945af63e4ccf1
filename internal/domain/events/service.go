package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventuraa/server/internal/domain/ids"
	"github.com/eventuraa/server/internal/sanitize"
)

// Service carries the organizer- and public-facing event operations.
// Admin review lives in AdminService.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Create stores a new event for the organizer. Regardless of the draft, the
// event starts in pending approval with every tier's sold counter at zero.
func (s *Service) Create(ctx context.Context, organizerID uuid.UUID, draft Draft) (*Event, error) {
	date, verr := checkDraft(draft)
	if verr != nil {
		return nil, verr
	}

	eventULID, err := ids.NewULID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := &Event{
		ULID:           eventULID,
		ApprovalStatus: StatusPending,
		OrganizerID:    organizerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyDraft(ev, draft, date)

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", ev.ULID).
		Str("organizer_id", organizerID.String()).
		Str("category", ev.Category).
		Msg("event submitted for review")
	return ev, nil
}

// Update replaces the caller-editable fields of an owned event. Ownership,
// approval status, and sold counters cannot be touched: tiers keep their
// sold count when a tier of the same name survives the update, and new
// tiers start at zero.
func (s *Service) Update(ctx context.Context, organizerID uuid.UUID, eventULID string, draft Draft) (*Event, error) {
	ev, err := s.owned(ctx, organizerID, eventULID)
	if err != nil {
		return nil, err
	}

	date, verr := checkDraft(draft)
	if verr != nil {
		return nil, verr
	}

	soldByTier := make(map[string]int, len(ev.Tickets))
	for _, t := range ev.Tickets {
		soldByTier[t.Name] = t.Sold
	}

	// A surviving tier cannot shrink below what has already been sold.
	if verr := checkTierShrink(draft, soldByTier); verr != nil {
		return nil, verr
	}

	applyDraft(ev, draft, date)
	for i := range ev.Tickets {
		ev.Tickets[i].Sold = soldByTier[ev.Tickets[i].Name]
	}
	ev.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Delete removes an owned event.
func (s *Service) Delete(ctx context.Context, organizerID uuid.UUID, eventULID string) error {
	if _, err := s.owned(ctx, organizerID, eventULID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, eventULID)
}

// ListApproved pages through approved events for the public catalogue.
func (s *Service) ListApproved(ctx context.Context, p Pagination) (*ListResult, error) {
	return s.repo.ListByStatus(ctx, StatusApproved, p)
}

// GetApproved fetches one event for public display. Events that are not
// approved report ErrNotFound so their existence is not disclosed.
func (s *Service) GetApproved(ctx context.Context, eventULID string) (*Event, error) {
	ev, err := s.repo.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}
	if ev.ApprovalStatus != StatusApproved {
		return nil, ErrNotFound
	}
	return ev, nil
}

// ListByOrganizer returns all of an organizer's own events in any status.
func (s *Service) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]Event, error) {
	return s.repo.ListByOrganizer(ctx, organizerID)
}

// GetOwned fetches one event for its organizer, any status.
func (s *Service) GetOwned(ctx context.Context, organizerID uuid.UUID, eventULID string) (*Event, error) {
	return s.owned(ctx, organizerID, eventULID)
}

// Reserve takes count tickets of the named tier on an approved event.
// The stock check and increment are a single atomic step in the store;
// on ErrOutOfStock nothing was reserved.
func (s *Service) Reserve(ctx context.Context, eventULID, tier string, count int) (*Reservation, error) {
	if count < 1 {
		verr := &ValidationError{}
		verr.Add("quantity", msgTicketQuantityMin)
		return nil, verr
	}

	ev, err := s.repo.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}
	if ev.ApprovalStatus != StatusApproved {
		return nil, ErrNotFound
	}

	taken, err := s.repo.Reserve(ctx, eventULID, tier, count)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", eventULID).
		Str("tier", tier).
		Int("count", count).
		Int("sold", taken.Sold).
		Msg("tickets reserved")
	return &Reservation{
		EventULID: eventULID,
		Tier:      taken.Name,
		Quantity:  count,
		UnitPrice: taken.Price,
		Total:     taken.Price * float64(count),
	}, nil
}

func (s *Service) owned(ctx context.Context, organizerID uuid.UUID, eventULID string) (*Event, error) {
	ev, err := s.repo.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, ErrForbidden
	}
	return ev, nil
}

// applyDraft copies the editable fields onto ev. Sold counters are reset to
// zero; callers that must preserve them restore them afterwards.
func applyDraft(ev *Event, draft Draft, date time.Time) {
	ev.Title = sanitize.Text(draft.Title)
	ev.Description = sanitize.Text(draft.Description)
	ev.Date = date
	ev.Time = sanitize.Text(draft.Time)
	ev.Location = sanitize.Text(draft.Location)
	ev.Category = draft.Category
	ev.Images = sanitize.TextSlice(draft.Images)
	if draft.Published != nil {
		ev.Published = *draft.Published
	}

	ev.Tickets = make([]TicketTier, len(draft.Tickets))
	for i, t := range draft.Tickets {
		ev.Tickets[i] = TicketTier{
			Name:     sanitize.Text(t.Name),
			Price:    *t.Price,
			Quantity: *t.Quantity,
		}
	}
}
