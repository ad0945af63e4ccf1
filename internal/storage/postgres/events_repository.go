package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventuraa/server/internal/api/pagination"
	"github.com/eventuraa/server/internal/domain/events"
	"github.com/eventuraa/server/internal/metrics"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `
e.ulid, e.title, e.description, e.event_date, e.event_time, e.location,
e.category, e.images, e.published, e.approval_status, e.admin_feedback,
e.reviewed_by, e.reviewed_at, e.organizer_id, e.created_at, e.updated_at`

func (r *EventRepository) Create(ctx context.Context, ev *events.Event) error {
	start := time.Now()

	err := inTx(ctx, r.pool, r.tx, func(q queryer) error {
		_, err := q.Exec(ctx, `
INSERT INTO events (ulid, title, description, event_date, event_time, location,
                    category, images, published, approval_status, admin_feedback,
                    organizer_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			ev.ULID, ev.Title, ev.Description, ev.Date, ev.Time, ev.Location,
			ev.Category, imagesArray(ev.Images), ev.Published, ev.ApprovalStatus,
			nullableString(ev.AdminFeedback), ev.OrganizerID, ev.CreatedAt, ev.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return r.replaceTiers(ctx, q, ev.ULID, ev.Tickets)
	})
	metrics.RecordQuery("create_event", start, err)
	return err
}

func (r *EventRepository) GetByULID(ctx context.Context, eventULID string) (*events.Event, error) {
	start := time.Now()
	q := r.queryer()

	row := q.QueryRow(ctx, "SELECT"+eventColumns+" FROM events e WHERE e.ulid = $1", eventULID)
	ev, err := scanEvent(row)
	if err != nil {
		metrics.RecordQuery("get_event", start, err)
		return nil, err
	}

	ev.Tickets, err = r.loadTiers(ctx, q, eventULID)
	metrics.RecordQuery("get_event", start, err)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *EventRepository) Update(ctx context.Context, ev *events.Event) error {
	start := time.Now()

	err := inTx(ctx, r.pool, r.tx, func(q queryer) error {
		// Lock the tier rows so a reservation in flight either commits
		// before the rewrite or waits for it.
		soldByName, err := lockTierCounters(ctx, q, ev.ULID)
		if err != nil {
			return err
		}

		tag, err := q.Exec(ctx, `
UPDATE events SET title = $2, description = $3, event_date = $4, event_time = $5,
       location = $6, category = $7, images = $8, published = $9,
       approval_status = $10, admin_feedback = $11, reviewed_by = $12,
       reviewed_at = $13, updated_at = $14
 WHERE ulid = $1`,
			ev.ULID, ev.Title, ev.Description, ev.Date, ev.Time, ev.Location,
			ev.Category, imagesArray(ev.Images), ev.Published, ev.ApprovalStatus,
			nullableString(ev.AdminFeedback), ev.ReviewedBy, ev.ReviewedAt, ev.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return events.ErrNotFound
		}

		// Carry sold counters forward from the locked rows, not from
		// whatever snapshot the caller read earlier.
		for i := range ev.Tickets {
			ev.Tickets[i].Sold = soldByName[ev.Tickets[i].Name]
		}
		return r.replaceTiers(ctx, q, ev.ULID, ev.Tickets)
	})
	metrics.RecordQuery("update_event", start, err)
	return err
}

// lockTierCounters reads the current sold counts for an event and takes
// row locks, serializing tier rewrites against concurrent reservations.
func lockTierCounters(ctx context.Context, q queryer, eventULID string) (map[string]int, error) {
	rows, err := q.Query(ctx,
		"SELECT name, sold FROM ticket_tiers WHERE event_ulid = $1 FOR UPDATE",
		eventULID,
	)
	if err != nil {
		return nil, fmt.Errorf("lock ticket tiers: %w", err)
	}
	defer rows.Close()

	soldByName := make(map[string]int)
	for rows.Next() {
		var name string
		var sold int
		if err := rows.Scan(&name, &sold); err != nil {
			return nil, fmt.Errorf("scan ticket tier: %w", err)
		}
		soldByName[name] = sold
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket tiers: %w", err)
	}
	return soldByName, nil
}

func (r *EventRepository) Delete(ctx context.Context, eventULID string) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, "DELETE FROM events WHERE ulid = $1", eventULID)
	metrics.RecordQuery("delete_event", start, err)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListByStatus(ctx context.Context, status string, p events.Pagination) (*events.ListResult, error) {
	start := time.Now()
	q := r.queryer()

	var cursorTimestamp *time.Time
	var cursorULID *string
	if strings.TrimSpace(p.After) != "" {
		cursor, err := pagination.DecodeEventCursor(p.After)
		if err != nil {
			return nil, err
		}
		value := cursor.Timestamp.UTC()
		cursorTimestamp = &value
		cursorULID = &cursor.ULID
	}

	limit := p.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	limitPlusOne := limit + 1

	rows, err := q.Query(ctx, `
SELECT`+eventColumns+`
  FROM events e
 WHERE e.approval_status = $1
   AND (
     $2::timestamptz IS NULL OR
     e.created_at > $2::timestamptz OR
     (e.created_at = $2::timestamptz AND e.ulid > $3)
   )
 ORDER BY e.created_at ASC, e.ulid ASC
 LIMIT $4`,
		status, cursorTimestamp, cursorULID, limitPlusOne,
	)
	if err != nil {
		metrics.RecordQuery("list_events_by_status", start, err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows, limitPlusOne)
	if err != nil {
		metrics.RecordQuery("list_events_by_status", start, err)
		return nil, err
	}

	result := &events.ListResult{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeEventCursor(last.CreatedAt, last.ULID)
	}
	result.Events = items

	err = r.attachTiers(ctx, q, result.Events)
	metrics.RecordQuery("list_events_by_status", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]events.Event, error) {
	start := time.Now()
	q := r.queryer()

	rows, err := q.Query(ctx,
		"SELECT"+eventColumns+" FROM events e WHERE e.organizer_id = $1 ORDER BY e.created_at DESC",
		organizerID,
	)
	if err != nil {
		metrics.RecordQuery("list_events_by_organizer", start, err)
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows, 0)
	if err != nil {
		metrics.RecordQuery("list_events_by_organizer", start, err)
		return nil, err
	}

	err = r.attachTiers(ctx, q, items)
	metrics.RecordQuery("list_events_by_organizer", start, err)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EventRepository) ListAll(ctx context.Context) ([]events.Event, error) {
	start := time.Now()
	q := r.queryer()

	rows, err := q.Query(ctx, "SELECT"+eventColumns+" FROM events e ORDER BY e.created_at DESC")
	if err != nil {
		metrics.RecordQuery("list_all_events", start, err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows, 0)
	if err != nil {
		metrics.RecordQuery("list_all_events", start, err)
		return nil, err
	}

	err = r.attachTiers(ctx, q, items)
	metrics.RecordQuery("list_all_events", start, err)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EventRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	start := time.Now()
	var n int64
	err := r.queryer().QueryRow(ctx,
		"SELECT count(*) FROM events WHERE approval_status = $1", status).Scan(&n)
	metrics.RecordQuery("count_events_by_status", start, err)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Reserve performs the stock check and increment in one statement, so
// concurrent reservations serialize on the tier row and can never push
// sold past quantity.
func (r *EventRepository) Reserve(ctx context.Context, eventULID, tier string, count int) (*events.TicketTier, error) {
	start := time.Now()
	q := r.queryer()

	var taken events.TicketTier
	err := q.QueryRow(ctx, `
UPDATE ticket_tiers SET sold = sold + $3
 WHERE event_ulid = $1 AND name = $2 AND sold + $3 <= quantity
RETURNING name, price, quantity, sold`,
		eventULID, tier, count,
	).Scan(&taken.Name, &taken.Price, &taken.Quantity, &taken.Sold)
	if err == nil {
		metrics.RecordQuery("reserve_tickets", start, nil)
		return &taken, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordQuery("reserve_tickets", start, err)
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}

	// Nothing updated: either no such tier, or not enough stock.
	var exists bool
	err = q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM ticket_tiers WHERE event_ulid = $1 AND name = $2)",
		eventULID, tier,
	).Scan(&exists)
	metrics.RecordQuery("reserve_tickets", start, err)
	if err != nil {
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}
	if !exists {
		return nil, events.ErrTierNotFound
	}
	return nil, events.ErrOutOfStock
}

func (r *EventRepository) replaceTiers(ctx context.Context, q queryer, eventULID string, tiers []events.TicketTier) error {
	if _, err := q.Exec(ctx, "DELETE FROM ticket_tiers WHERE event_ulid = $1", eventULID); err != nil {
		return fmt.Errorf("clear ticket tiers: %w", err)
	}
	for i, t := range tiers {
		_, err := q.Exec(ctx, `
INSERT INTO ticket_tiers (event_ulid, position, name, price, quantity, sold)
VALUES ($1, $2, $3, $4, $5, $6)`,
			eventULID, i, t.Name, t.Price, t.Quantity, t.Sold,
		)
		if err != nil {
			// Reservations committed since the caller validated can push
			// sold above the rewritten quantity.
			if isCheckViolation(err) {
				return events.ErrOutOfStock
			}
			return fmt.Errorf("insert ticket tier: %w", err)
		}
	}
	return nil
}

func (r *EventRepository) loadTiers(ctx context.Context, q queryer, eventULID string) ([]events.TicketTier, error) {
	rows, err := q.Query(ctx,
		"SELECT name, price, quantity, sold FROM ticket_tiers WHERE event_ulid = $1 ORDER BY position",
		eventULID,
	)
	if err != nil {
		return nil, fmt.Errorf("load ticket tiers: %w", err)
	}
	defer rows.Close()

	var tiers []events.TicketTier
	for rows.Next() {
		var t events.TicketTier
		if err := rows.Scan(&t.Name, &t.Price, &t.Quantity, &t.Sold); err != nil {
			return nil, fmt.Errorf("scan ticket tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket tiers: %w", err)
	}
	return tiers, nil
}

func (r *EventRepository) attachTiers(ctx context.Context, q queryer, items []events.Event) error {
	if len(items) == 0 {
		return nil
	}

	ulids := make([]string, 0, len(items))
	index := make(map[string]*events.Event, len(items))
	for i := range items {
		ulids = append(ulids, items[i].ULID)
		index[items[i].ULID] = &items[i]
	}

	rows, err := q.Query(ctx, `
SELECT event_ulid, name, price, quantity, sold
  FROM ticket_tiers
 WHERE event_ulid = ANY($1)
 ORDER BY event_ulid, position`,
		ulids,
	)
	if err != nil {
		return fmt.Errorf("load ticket tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventULID string
		var t events.TicketTier
		if err := rows.Scan(&eventULID, &t.Name, &t.Price, &t.Quantity, &t.Sold); err != nil {
			return fmt.Errorf("scan ticket tier: %w", err)
		}
		if ev, ok := index[eventULID]; ok {
			ev.Tickets = append(ev.Tickets, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ticket tiers: %w", err)
	}
	return nil
}

// imagesArray keeps the NOT NULL images column satisfied when the slice is nil.
func imagesArray(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		ev            events.Event
		adminFeedback *string
	)

	err := row.Scan(
		&ev.ULID, &ev.Title, &ev.Description, &ev.Date, &ev.Time, &ev.Location,
		&ev.Category, &ev.Images, &ev.Published, &ev.ApprovalStatus, &adminFeedback,
		&ev.ReviewedBy, &ev.ReviewedAt, &ev.OrganizerID, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	ev.AdminFeedback = derefString(adminFeedback)
	return &ev, nil
}

func collectEvents(rows pgx.Rows, capacity int) ([]events.Event, error) {
	items := make([]events.Event, 0, capacity)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}
