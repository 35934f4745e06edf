package booking

import (
	"context"

	"smiledesk/models"
)

// Orchestrator finalizes a draft appointment against the calendar provider
// and the vector store.
type Orchestrator interface {
	// Book runs the confirmation sequence: availability check, calendar
	// event creation, persistence, booking id assignment. The appointment is
	// marked confirmed only after every call succeeds; no partial state is
	// ever persisted.
	Book(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	// CheckSlot probes availability for the appointment's date/time.
	CheckSlot(ctx context.Context, appt *models.Appointment) (bool, error)
	// History lists persisted appointments for a user, ordered by start time.
	History(ctx context.Context, userID string, limit int) ([]models.Appointment, error)
}

// ReminderScheduler queues an appointment reminder to be delivered ahead of
// the slot.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appt *models.Appointment) error
}
