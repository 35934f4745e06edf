package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smiledesk/models"

	"github.com/hibiken/asynq"
)

// ReminderScheduler enqueues reminder tasks ahead of confirmed appointments.
type ReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

// NewReminderScheduler creates a scheduler delivering reminders lead ahead of
// the appointment start.
func NewReminderScheduler(lead time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		client: asynq.NewClient(redisOpts()),
		lead:   lead,
	}
}

// Schedule queues a reminder task. Appointments starting sooner than the lead
// window get the reminder immediately.
func (s *ReminderScheduler) Schedule(ctx context.Context, appt *models.Appointment) error {
	payload, err := json.Marshal(ReminderPayload{
		BookingID:   appt.BookingID,
		PatientName: appt.PatientName,
		Email:       appt.ContactEmail,
		Service:     appt.Service,
		StartTime:   appt.StartTime,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder payload: %w", err)
	}

	at := appt.StartTime.Add(-s.lead)
	if at.Before(time.Now()) {
		at = time.Now()
	}

	task := asynq.NewTask(TypeReminderSend, payload)
	if _, err := s.client.EnqueueContext(ctx, task, asynq.ProcessAt(at)); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}
