package events

import (
	"time"

	"github.com/google/uuid"
)

// Approval states form a one-way machine: pending -> approved or
// pending -> rejected, driven only by an admin review. There is no
// transition out of approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Categories is the closed set an event must belong to.
var Categories = []string{"cultural", "music", "sports", "culinary", "adventure", "business", "other"}

type Event struct {
	ULID           string
	Title          string
	Description    string
	Date           time.Time
	Time           string
	Location       string
	Category       string
	Images         []string
	Published      bool
	ApprovalStatus string
	AdminFeedback  string
	ReviewedBy     *uuid.UUID
	ReviewedAt     *time.Time
	OrganizerID    uuid.UUID
	Tickets        []TicketTier
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketTier is a child of an event, addressed by name within it.
// Sold never exceeds Quantity; the store enforces the bound atomically.
type TicketTier struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Sold     int     `json:"sold"`
}

// Draft is caller-supplied event input. Approval status and per-tier sold
// counters are deliberately absent: they cannot be set from outside.
type Draft struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Location    string        `json:"location"`
	Category    string        `json:"category"`
	Images      []string      `json:"images"`
	Published   *bool         `json:"published"`
	Tickets     []TicketDraft `json:"tickets"`
}

type TicketDraft struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

// Reservation is the outcome of a successful ticket reservation.
type Reservation struct {
	EventULID string  `json:"eventId"`
	Tier      string  `json:"ticket"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Pagination selects a page of a cursor-ordered listing.
type Pagination struct {
	Limit int
	After string
}

type ListResult struct {
	Events     []Event
	NextCursor string
}

// StatusCounts summarizes events by approval status for the admin dashboard.
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

func validCategory(value string) bool {
	for _, c := range Categories {
		if c == value {
			return true
		}
	}
	return false
}

func validDecision(value string) bool {
	return value == StatusApproved || value == StatusRejected
}
