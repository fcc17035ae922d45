package service

import (
	"time"

	"eventhub-backend/internal/apperr"
)

// Lead times the event date must keep ahead of now. Initiators get the
// longer buffer; admins may move a date closer in.
const (
	initiatorEventLead = 2 * time.Hour
	adminEventLead     = 1 * time.Hour
)

// checkEventDateAhead is the single date policy for every call site that
// accepts an event date; only the required lead differs between them.
func checkEventDateAhead(eventDate time.Time, lead time.Duration) error {
	if eventDate.Before(time.Now().Add(lead)) {
		return apperr.BadRequestf("event date %s must be at least %s ahead of now",
			eventDate.Format(time.RFC3339), lead)
	}
	return nil
}

// checkRange rejects inverted time ranges in search parameters.
func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return apperr.BadRequestf("range start must be before range end")
	}
	return nil
}
