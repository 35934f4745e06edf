package booking

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "smiledesk/database/repository/appointment"
	profileRepo "smiledesk/database/repository/profile"
	"smiledesk/models"
	"smiledesk/services/calendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	Calendar  calendar.Client
	Repo      appointmentRepo.Repository
	Profiles  profileRepo.Repository // optional
	Reminders ReminderScheduler      // optional
	Clinic    *time.Location
	Logger    *zap.Logger
}

// Book finalizes the appointment. Order matters: the record is persisted as
// confirmed only after the availability check and the calendar event creation
// both succeed, so a failure at any step leaves nothing behind in the store.
func (o *DefaultOrchestrator) Book(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if err := appt.Validate(time.Now()); err != nil {
		return nil, err
	}

	start, end, err := appt.Slot(o.Clinic)
	if err != nil {
		return nil, &models.ValidationError{Field: "preferred_time", Reason: err.Error()}
	}
	appt.StartTime = start
	appt.EndTime = end
	if appt.UserID == "" {
		appt.UserID = appt.ContactEmail
	}

	free, err := o.Calendar.IsSlotFree(ctx, start, end)
	if err != nil {
		o.Logger.Error("Booking: availability check failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !free {
		o.Logger.Info("Booking: slot occupied",
			zap.String("date", appt.PreferredDate),
			zap.String("time", appt.PreferredTime))
		return nil, ErrSlotConflict
	}

	eventID, err := o.Calendar.CreateEvent(ctx, appt)
	if err != nil {
		o.Logger.Error("Booking: calendar event creation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	appt.ID = uuid.New().String()
	appt.BookingID = uuid.New().String()
	appt.GoogleEventID = eventID
	appt.Status = models.StatusConfirmed

	if err := o.Repo.Save(ctx, appt); err != nil {
		o.Logger.Error("Booking: persistence failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// Profile capture and reminder scheduling are best-effort: the booking
	// already stands.
	if o.Profiles != nil {
		p := &models.UserProfile{
			UserID: appt.UserID,
			Name:   appt.PatientName,
			Email:  appt.ContactEmail,
			Phone:  appt.ContactPhone,
		}
		if err := o.Profiles.Upsert(ctx, p); err != nil {
			o.Logger.Warn("Booking: profile upsert failed", zap.Error(err))
		}
	}
	if o.Reminders != nil {
		if err := o.Reminders.Schedule(ctx, appt); err != nil {
			o.Logger.Warn("Booking: reminder scheduling failed", zap.Error(err))
		}
	}

	o.Logger.Info("Booking confirmed",
		zap.String("bookingID", appt.BookingID),
		zap.String("eventID", appt.GoogleEventID),
		zap.String("user", appt.UserID))
	return appt, nil
}

// CheckSlot probes the calendar without booking anything.
func (o *DefaultOrchestrator) CheckSlot(ctx context.Context, appt *models.Appointment) (bool, error) {
	if err := models.ValidateDate(appt.PreferredDate, time.Now()); err != nil {
		return false, err
	}
	if err := models.ValidateTimeOfDay(appt.PreferredTime); err != nil {
		return false, err
	}

	start, end, err := appt.Slot(o.Clinic)
	if err != nil {
		return false, &models.ValidationError{Field: "preferred_time", Reason: err.Error()}
	}

	free, err := o.Calendar.IsSlotFree(ctx, start, end)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return free, nil
}

// History returns the user's persisted appointments ordered by start time.
func (o *DefaultOrchestrator) History(ctx context.Context, userID string, limit int) ([]models.Appointment, error) {
	appts, err := o.Repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return appts, nil
}
