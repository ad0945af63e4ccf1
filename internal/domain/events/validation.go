package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventuraa/server/internal/domain/validate"
	"github.com/eventuraa/server/internal/sanitize"
)

const (
	msgTitleRequired       = "Please provide an event title"
	msgDescriptionRequired = "Please provide a description"
	msgDateRequired        = "Please provide an event date"
	msgDateInvalid         = "Please provide a valid event date"
	msgTimeRequired        = "Please provide an event time"
	msgLocationRequired    = "Please provide a location"
	msgCategoryRequired    = "Please provide a category"
	msgTicketsRequired     = "Please provide at least one ticket type"
	msgTicketName          = "Please provide a ticket name"
	msgTicketPrice         = "Please provide a ticket price"
	msgTicketPriceInvalid  = "Ticket price must be a non-negative number"
	msgTicketQuantity      = "Please provide ticket quantity"
	msgTicketQuantityMin   = "Ticket quantity must be at least 1"
	msgTicketQuantitySold  = "Ticket quantity cannot be less than tickets already sold"
)

// dateLayouts are the accepted forms of the date field, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// checkDraft validates a full event draft, collecting every problem.
// The parsed date is returned alongside so callers do not parse twice.
func checkDraft(d Draft) (time.Time, *validate.Errors) {
	errs := &validate.Errors{}
	var date time.Time

	if strings.TrimSpace(d.Title) == "" {
		errs.Add("title", msgTitleRequired)
	}
	if strings.TrimSpace(d.Description) == "" {
		errs.Add("description", msgDescriptionRequired)
	}
	if strings.TrimSpace(d.Date) == "" {
		errs.Add("date", msgDateRequired)
	} else {
		parsed, err := parseDate(d.Date)
		if err != nil {
			errs.Add("date", msgDateInvalid)
		} else {
			date = parsed
		}
	}
	if strings.TrimSpace(d.Time) == "" {
		errs.Add("time", msgTimeRequired)
	}
	if strings.TrimSpace(d.Location) == "" {
		errs.Add("location", msgLocationRequired)
	}
	if strings.TrimSpace(d.Category) == "" {
		errs.Add("category", msgCategoryRequired)
	} else if !validCategory(d.Category) {
		errs.Add("category", "Category must be one of: "+strings.Join(Categories, ", "))
	}

	if len(d.Tickets) == 0 {
		errs.Add("tickets", msgTicketsRequired)
	}
	for i, t := range d.Tickets {
		prefix := fmt.Sprintf("tickets[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			errs.Add(prefix+".name", msgTicketName)
		}
		switch {
		case t.Price == nil:
			errs.Add(prefix+".price", msgTicketPrice)
		case *t.Price < 0:
			errs.Add(prefix+".price", msgTicketPriceInvalid)
		}
		switch {
		case t.Quantity == nil:
			errs.Add(prefix+".quantity", msgTicketQuantity)
		case *t.Quantity < 1:
			errs.Add(prefix+".quantity", msgTicketQuantityMin)
		}
	}

	if errs.Empty() {
		return date, nil
	}
	return date, errs
}

// checkTierShrink rejects draft tiers whose quantity drops below the sold
// counter of the stored tier with the same name. New tiers have nothing
// sold and always pass.
func checkTierShrink(d Draft, soldByTier map[string]int) *validate.Errors {
	errs := &validate.Errors{}
	for i, t := range d.Tickets {
		if t.Quantity == nil {
			continue
		}
		if sold := soldByTier[sanitize.Text(t.Name)]; *t.Quantity < sold {
			errs.Add(fmt.Sprintf("tickets[%d].quantity", i), msgTicketQuantitySold)
		}
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
