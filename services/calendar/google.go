// File: services/calendar/google.go
package calendar

import (
	"context"
	"fmt"
	"time"

	"smiledesk/models"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleClient talks to the Google Calendar API for the configured calendar.
type GoogleClient struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

// NewGoogleClient builds an authenticated Google Calendar client.
func NewGoogleClient(ctx context.Context, calendarID, credsFile, timezone string) (*GoogleClient, error) {
	svc, err := gcal.NewService(ctx, option.WithCredentialsFile(credsFile))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleClient{svc: svc, calendarID: calendarID, timezone: timezone}, nil
}

// IsSlotFree lists events overlapping [start, end) and reports whether the
// interval is clear.
func (g *GoogleClient) IsSlotFree(ctx context.Context, start, end time.Time) (bool, error) {
	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("calendar availability check: %w", err)
	}
	return len(events.Items) == 0, nil
}

// CreateEvent inserts the appointment into the clinic calendar.
func (g *GoogleClient) CreateEvent(ctx context.Context, appt *models.Appointment) (string, error) {
	event := &gcal.Event{
		Summary:     fmt.Sprintf("Dental appointment - %s", appt.Service),
		Description: fmt.Sprintf("Patient: %s (user_id: %s)", appt.PatientName, appt.UserID),
		Start: &gcal.EventDateTime{
			DateTime: appt.StartTime.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: appt.EndTime.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar event creation: %w", err)
	}
	return created.Id, nil
}
