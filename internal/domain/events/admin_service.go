package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventuraa/server/internal/sanitize"
)

// AdminService carries the moderation operations. It sees events in every
// approval status.
type AdminService struct {
	repo   Repository
	logger zerolog.Logger
}

func NewAdminService(repo Repository, logger zerolog.Logger) *AdminService {
	return &AdminService{
		repo:   repo,
		logger: logger.With().Str("component", "events-admin").Logger(),
	}
}

// Review settles a pending event. decision must be approved or rejected;
// an event that already left pending cannot be reviewed again.
func (s *AdminService) Review(ctx context.Context, reviewerID uuid.UUID, eventULID, decision, notes string) (*Event, error) {
	if !validDecision(decision) {
		return nil, ErrInvalidDecision
	}

	ev, err := s.repo.GetByULID(ctx, eventULID)
	if err != nil {
		return nil, err
	}
	if ev.ApprovalStatus != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	ev.ApprovalStatus = decision
	ev.AdminFeedback = sanitize.Text(notes)
	ev.ReviewedBy = &reviewerID
	ev.ReviewedAt = &now
	ev.UpdatedAt = now

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", ev.ULID).
		Str("decision", decision).
		Str("reviewer_id", reviewerID.String()).
		Msg("event reviewed")
	return ev, nil
}

// Get fetches one event regardless of approval status.
func (s *AdminService) Get(ctx context.Context, eventULID string) (*Event, error) {
	return s.repo.GetByULID(ctx, eventULID)
}

// ListAll returns every event in the system.
func (s *AdminService) ListAll(ctx context.Context) ([]Event, error) {
	return s.repo.ListAll(ctx)
}

// ListPending pages through the review queue, oldest first.
func (s *AdminService) ListPending(ctx context.Context, p Pagination) (*ListResult, error) {
	return s.repo.ListByStatus(ctx, StatusPending, p)
}

// Counts summarizes events by approval status.
func (s *AdminService) Counts(ctx context.Context) (*StatusCounts, error) {
	var counts StatusCounts
	for _, pair := range []struct {
		status string
		dest   *int64
	}{
		{StatusPending, &counts.Pending},
		{StatusApproved, &counts.Approved},
		{StatusRejected, &counts.Rejected},
	} {
		n, err := s.repo.CountByStatus(ctx, pair.status)
		if err != nil {
			return nil, err
		}
		*pair.dest = n
	}
	counts.Total = counts.Pending + counts.Approved + counts.Rejected
	return &counts, nil
}
