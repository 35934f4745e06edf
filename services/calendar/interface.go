package calendar

import (
	"context"
	"time"

	"smiledesk/models"
)

// Client is the contract the booking flow expects from the calendar provider.
type Client interface {
	// IsSlotFree reports whether [start, end) has no overlapping events.
	IsSlotFree(ctx context.Context, start, end time.Time) (bool, error)
	// CreateEvent creates a calendar event for the appointment and returns
	// the provider's event identifier.
	CreateEvent(ctx context.Context, appt *models.Appointment) (string, error)
}
