package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fakeRepo is a mutex-guarded in-memory Repository. Reserve performs its
// check-and-increment under the lock, matching the atomicity the real
// store provides.
type fakeRepo struct {
	mu     sync.Mutex
	events map[string]*Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[string]*Event)}
}

func (r *fakeRepo) Create(_ context.Context, ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *ev
	r.events[ev.ULID] = &clone
	return nil
}

func (r *fakeRepo) GetByULID(_ context.Context, eventULID string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventULID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *ev
	clone.Tickets = append([]TicketTier(nil), ev.Tickets...)
	return &clone, nil
}

func (r *fakeRepo) Update(_ context.Context, ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[ev.ULID]; !ok {
		return ErrNotFound
	}
	clone := *ev
	r.events[ev.ULID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, eventULID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventULID]; !ok {
		return ErrNotFound
	}
	delete(r.events, eventULID)
	return nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, status string, p Pagination) (*ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := &ListResult{}
	for _, ev := range r.events {
		if ev.ApprovalStatus == status {
			result.Events = append(result.Events, *ev)
		}
		if p.Limit > 0 && len(result.Events) == p.Limit {
			break
		}
	}
	return result, nil
}

func (r *fakeRepo) ListByOrganizer(_ context.Context, organizerID uuid.UUID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.OrganizerID == organizerID {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		out = append(out, *ev)
	}
	return out, nil
}

func (r *fakeRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ev := range r.events {
		if ev.ApprovalStatus == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Reserve(_ context.Context, eventULID, tier string, count int) (*TicketTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventULID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range ev.Tickets {
		if ev.Tickets[i].Name != tier {
			continue
		}
		if ev.Tickets[i].Sold+count > ev.Tickets[i].Quantity {
			return nil, ErrOutOfStock
		}
		ev.Tickets[i].Sold += count
		taken := ev.Tickets[i]
		return &taken, nil
	}
	return nil, ErrTierNotFound
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func validDraft() Draft {
	return Draft{
		Title:       "Kandy Esala Perahera",
		Description: "Ten nights of processions through the old city.",
		Date:        "2026-08-05",
		Time:        "19:00",
		Location:    "Kandy",
		Category:    "cultural",
		Published:   boolPtr(true),
		Tickets: []TicketDraft{
			{Name: "General", Price: floatPtr(1500), Quantity: intPtr(200)},
			{Name: "VIP", Price: floatPtr(5000), Quantity: intPtr(40)},
		},
	}
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func mustCreate(t *testing.T, svc *Service, organizerID uuid.UUID, draft Draft) *Event {
	t.Helper()
	ev, err := svc.Create(context.Background(), organizerID, draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ev
}

func approve(t *testing.T, repo *fakeRepo, eventULID string) {
	t.Helper()
	ev, err := repo.GetByULID(context.Background(), eventULID)
	if err != nil {
		t.Fatalf("GetByULID: %v", err)
	}
	ev.ApprovalStatus = StatusApproved
	if err := repo.Update(context.Background(), ev); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestCreateStartsPendingWithZeroSold(t *testing.T) {
	svc, _ := newTestService(t)

	ev := mustCreate(t, svc, uuid.New(), validDraft())

	if ev.ULID == "" {
		t.Fatal("expected an identifier to be assigned")
	}
	if ev.ApprovalStatus != StatusPending {
		t.Fatalf("status = %q, want %q", ev.ApprovalStatus, StatusPending)
	}
	for _, tier := range ev.Tickets {
		if tier.Sold != 0 {
			t.Fatalf("tier %q sold = %d, want 0", tier.Name, tier.Sold)
		}
	}
	if !ev.Published {
		t.Fatal("published flag from the draft should be kept")
	}
}

func TestCreateCollectsAllFieldErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), Draft{})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]string{
		"title":       "Please provide an event title",
		"description": "Please provide a description",
		"date":        "Please provide an event date",
		"time":        "Please provide an event time",
		"location":    "Please provide a location",
		"category":    "Please provide a category",
		"tickets":     "Please provide at least one ticket type",
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("got %d field errors, want %d: %v", len(verr.Fields), len(want), verr.Fields)
	}
	for _, f := range verr.Fields {
		if want[f.Param] != f.Msg {
			t.Errorf("field %q: msg = %q, want %q", f.Param, f.Msg, want[f.Param])
		}
	}
}

func TestCreateTicketFieldErrors(t *testing.T) {
	svc, _ := newTestService(t)

	draft := validDraft()
	draft.Tickets = []TicketDraft{
		{Name: "", Price: floatPtr(-5), Quantity: intPtr(0)},
		{Name: "Balcony", Quantity: intPtr(10)},
	}

	_, err := svc.Create(context.Background(), uuid.New(), draft)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]string{
		"tickets[0].name":     "Please provide a ticket name",
		"tickets[0].price":    "Ticket price must be a non-negative number",
		"tickets[0].quantity": "Ticket quantity must be at least 1",
		"tickets[1].price":    "Please provide a ticket price",
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("got %d field errors, want %d: %v", len(verr.Fields), len(want), verr.Fields)
	}
	for _, f := range verr.Fields {
		if want[f.Param] != f.Msg {
			t.Errorf("field %q: msg = %q, want %q", f.Param, f.Msg, want[f.Param])
		}
	}
}

func TestCreateRejectsInvalidCategory(t *testing.T) {
	svc, _ := newTestService(t)

	draft := validDraft()
	draft.Category = "festival"

	_, err := svc.Create(context.Background(), uuid.New(), draft)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Param != "category" {
		t.Fatalf("unexpected field errors: %v", verr.Fields)
	}
}

func TestUpdatePreservesSoldCounters(t *testing.T) {
	svc, repo := newTestService(t)
	organizer := uuid.New()

	ev := mustCreate(t, svc, organizer, validDraft())

	// Simulate prior sales on the General tier.
	stored, _ := repo.GetByULID(context.Background(), ev.ULID)
	stored.Tickets[0].Sold = 42
	if err := repo.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	draft := validDraft()
	draft.Title = "Kandy Esala Perahera (final night)"
	draft.Tickets = []TicketDraft{
		{Name: "General", Price: floatPtr(1800), Quantity: intPtr(250)},
		{Name: "Balcony", Price: floatPtr(3000), Quantity: intPtr(30)},
	}

	updated, err := svc.Update(context.Background(), organizer, ev.ULID, draft)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Tickets[0].Sold != 42 {
		t.Errorf("surviving tier sold = %d, want 42", updated.Tickets[0].Sold)
	}
	if updated.Tickets[1].Sold != 0 {
		t.Errorf("new tier sold = %d, want 0", updated.Tickets[1].Sold)
	}
	if updated.ApprovalStatus != StatusPending {
		t.Errorf("update changed approval status to %q", updated.ApprovalStatus)
	}
	if updated.Title != "Kandy Esala Perahera (final night)" {
		t.Errorf("title not updated: %q", updated.Title)
	}
}

func TestUpdateRejectsQuantityBelowSold(t *testing.T) {
	svc, repo := newTestService(t)
	organizer := uuid.New()

	ev := mustCreate(t, svc, organizer, validDraft())
	approve(t, repo, ev.ULID)

	if _, err := svc.Reserve(context.Background(), ev.ULID, "General", 150); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	draft := validDraft()
	draft.Tickets = []TicketDraft{
		{Name: "General", Price: floatPtr(1500), Quantity: intPtr(100)},
	}

	_, err := svc.Update(context.Background(), organizer, ev.ULID, draft)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Param != "tickets[0].quantity" {
		t.Fatalf("unexpected field errors: %v", verr.Fields)
	}
	if verr.Fields[0].Msg != "Ticket quantity cannot be less than tickets already sold" {
		t.Fatalf("unexpected message: %q", verr.Fields[0].Msg)
	}

	// The stored event is untouched and shrinking down to the sold count
	// is still allowed.
	stored, err := repo.GetByULID(context.Background(), ev.ULID)
	if err != nil {
		t.Fatalf("GetByULID: %v", err)
	}
	if stored.Tickets[0].Quantity != 200 || stored.Tickets[0].Sold != 150 {
		t.Fatalf("stored tier changed: quantity=%d sold=%d", stored.Tickets[0].Quantity, stored.Tickets[0].Sold)
	}

	draft.Tickets[0].Quantity = intPtr(150)
	updated, err := svc.Update(context.Background(), organizer, ev.ULID, draft)
	if err != nil {
		t.Fatalf("Update to quantity=sold: %v", err)
	}
	if updated.Tickets[0].Quantity != 150 || updated.Tickets[0].Sold != 150 {
		t.Fatalf("tier after shrink-to-sold: quantity=%d sold=%d", updated.Tickets[0].Quantity, updated.Tickets[0].Sold)
	}
}

func TestUpdateByOtherOrganizerIsForbidden(t *testing.T) {
	svc, _ := newTestService(t)

	ev := mustCreate(t, svc, uuid.New(), validDraft())

	_, err := svc.Update(context.Background(), uuid.New(), ev.ULID, validDraft())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteByOtherOrganizerIsForbidden(t *testing.T) {
	svc, repo := newTestService(t)
	organizer := uuid.New()

	ev := mustCreate(t, svc, organizer, validDraft())

	if err := svc.Delete(context.Background(), uuid.New(), ev.ULID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), organizer, ev.ULID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := repo.GetByULID(context.Background(), ev.ULID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("event still present after delete: %v", err)
	}
}

func TestGetApprovedHidesNonApprovedEvents(t *testing.T) {
	svc, repo := newTestService(t)

	ev := mustCreate(t, svc, uuid.New(), validDraft())

	if _, err := svc.GetApproved(context.Background(), ev.ULID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending event: err = %v, want ErrNotFound", err)
	}

	approve(t, repo, ev.ULID)

	got, err := svc.GetApproved(context.Background(), ev.ULID)
	if err != nil {
		t.Fatalf("approved event: %v", err)
	}
	if got.ULID != ev.ULID {
		t.Fatalf("got event %q, want %q", got.ULID, ev.ULID)
	}
}

func TestReserveComputesTotal(t *testing.T) {
	svc, repo := newTestService(t)

	ev := mustCreate(t, svc, uuid.New(), validDraft())
	approve(t, repo, ev.ULID)

	res, err := svc.Reserve(context.Background(), ev.ULID, "VIP", 3)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.Quantity != 3 || res.UnitPrice != 5000 || res.Total != 15000 {
		t.Fatalf("unexpected reservation: %+v", res)
	}

	stored, _ := repo.GetByULID(context.Background(), ev.ULID)
	if stored.Tickets[1].Sold != 3 {
		t.Fatalf("sold = %d, want 3", stored.Tickets[1].Sold)
	}
}

func TestReserveFailures(t *testing.T) {
	svc, repo := newTestService(t)

	ev := mustCreate(t, svc, uuid.New(), validDraft())

	// Pending events are invisible to reservation.
	if _, err := svc.Reserve(context.Background(), ev.ULID, "VIP", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending: err = %v, want ErrNotFound", err)
	}

	approve(t, repo, ev.ULID)

	if _, err := svc.Reserve(context.Background(), ev.ULID, "Backstage", 1); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("unknown tier: err = %v, want ErrTierNotFound", err)
	}
	if _, err := svc.Reserve(context.Background(), ev.ULID, "VIP", 41); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("oversized: err = %v, want ErrOutOfStock", err)
	}
	if _, err := svc.Reserve(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", "VIP", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown event: err = %v, want ErrNotFound", err)
	}

	var verr *ValidationError
	if _, err := svc.Reserve(context.Background(), ev.ULID, "VIP", 0); !errors.As(err, &verr) {
		t.Fatalf("zero count: err = %v, want ValidationError", err)
	}

	// None of the failures may have touched stock.
	stored, _ := repo.GetByULID(context.Background(), ev.ULID)
	for _, tier := range stored.Tickets {
		if tier.Sold != 0 {
			t.Fatalf("tier %q sold = %d after failed reservations", tier.Name, tier.Sold)
		}
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	svc, repo := newTestService(t)

	draft := validDraft()
	draft.Tickets = []TicketDraft{{Name: "General", Price: floatPtr(1000), Quantity: intPtr(10)}}
	ev := mustCreate(t, svc, uuid.New(), draft)
	approve(t, repo, ev.ULID)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), ev.ULID, "General", 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, soldOut int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 10 {
		t.Fatalf("successful reservations = %d, want 10", ok)
	}
	if soldOut != attempts-10 {
		t.Fatalf("out-of-stock failures = %d, want %d", soldOut, attempts-10)
	}
	stored, _ := repo.GetByULID(context.Background(), ev.ULID)
	if stored.Tickets[0].Sold != 10 {
		t.Fatalf("sold = %d, want exactly 10", stored.Tickets[0].Sold)
	}
}

func TestListByOrganizerReturnsAllStatuses(t *testing.T) {
	svc, repo := newTestService(t)
	organizer := uuid.New()

	first := mustCreate(t, svc, organizer, validDraft())
	mustCreate(t, svc, organizer, validDraft())
	mustCreate(t, svc, uuid.New(), validDraft())
	approve(t, repo, first.ULID)

	own, err := svc.ListByOrganizer(context.Background(), organizer)
	if err != nil {
		t.Fatalf("ListByOrganizer: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("got %d events, want 2", len(own))
	}
}
