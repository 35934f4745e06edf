package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Appointment status values.
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// SlotDuration is the length of a bookable calendar slot.
const SlotDuration = 30 * time.Minute

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)
)

// Appointment is the structured booking record collected over chat and
// persisted once confirmed. BookingID and GoogleEventID stay empty until
// the record reaches StatusConfirmed.
type Appointment struct {
	ID            string    `json:"id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	PatientName   string    `json:"patient_name"`
	Service       string    `json:"service"`
	PreferredDate string    `json:"preferred_date"` // YYYY-MM-DD
	PreferredTime string    `json:"preferred_time"` // HH:MM, 24h
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	BookingID     string    `json:"booking_id,omitempty"`
	GoogleEventID string    `json:"google_event_id,omitempty"`
	StartTime     time.Time `json:"start_time,omitempty"`
	EndTime       time.Time `json:"end_time,omitempty"`
}

// ValidationError reports a malformed appointment field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateEmail checks the contact email shape.
func ValidateEmail(v string) error {
	if !emailRegex.MatchString(strings.TrimSpace(v)) {
		return &ValidationError{Field: "contact_email", Reason: "must be a valid email address"}
	}
	return nil
}

// ValidatePhone checks for a 10-digit phone number.
func ValidatePhone(v string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(v)) {
		return &ValidationError{Field: "contact_phone", Reason: "must be a 10-digit phone number"}
	}
	return nil
}

// ValidateDate checks the preferred date format and that it is not in the past.
func ValidateDate(v string, now time.Time) error {
	d, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return &ValidationError{Field: "preferred_date", Reason: "must be in YYYY-MM-DD format"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return &ValidationError{Field: "preferred_date", Reason: "must be today or later"}
	}
	return nil
}

// ValidateTimeOfDay checks the preferred time format.
func ValidateTimeOfDay(v string) error {
	if _, err := time.Parse(TimeLayout, strings.TrimSpace(v)); err != nil {
		return &ValidationError{Field: "preferred_time", Reason: "must be in HH:MM format"}
	}
	return nil
}

// RequiredFields lists the fields collected over chat, in the order the
// assistant asks for them.
var RequiredFields = []string{
	"patient_name", "service", "preferred_date", "preferred_time",
	"contact_email", "contact_phone",
}

// FieldValue returns the current value of a required field.
func (a *Appointment) FieldValue(field string) string {
	switch field {
	case "patient_name":
		return a.PatientName
	case "service":
		return a.Service
	case "preferred_date":
		return a.PreferredDate
	case "preferred_time":
		return a.PreferredTime
	case "contact_email":
		return a.ContactEmail
	case "contact_phone":
		return a.ContactPhone
	}
	return ""
}

// SetField assigns a required field after validating the value.
func (a *Appointment) SetField(field, value string, now time.Time) error {
	value = strings.TrimSpace(value)
	switch field {
	case "patient_name":
		if value == "" {
			return &ValidationError{Field: field, Reason: "must not be empty"}
		}
		a.PatientName = value
	case "service":
		if value == "" {
			return &ValidationError{Field: field, Reason: "must not be empty"}
		}
		a.Service = value
	case "preferred_date":
		if err := ValidateDate(value, now); err != nil {
			return err
		}
		a.PreferredDate = value
	case "preferred_time":
		if err := ValidateTimeOfDay(value); err != nil {
			return err
		}
		a.PreferredTime = value
	case "contact_email":
		if err := ValidateEmail(value); err != nil {
			return err
		}
		a.ContactEmail = value
	case "contact_phone":
		if err := ValidatePhone(value); err != nil {
			return err
		}
		a.ContactPhone = value
	default:
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
	return nil
}

// ClearField resets a collected field for re-entry.
func (a *Appointment) ClearField(field string) {
	switch field {
	case "patient_name":
		a.PatientName = ""
	case "service":
		a.Service = ""
	case "preferred_date":
		a.PreferredDate = ""
	case "preferred_time":
		a.PreferredTime = ""
	case "contact_email":
		a.ContactEmail = ""
	case "contact_phone":
		a.ContactPhone = ""
	}
}

// MissingFields returns the required fields not collected yet, in asking order.
func (a *Appointment) MissingFields() []string {
	var missing []string
	for _, f := range RequiredFields {
		if a.FieldValue(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field has been collected.
func (a *Appointment) Complete() bool {
	return len(a.MissingFields()) == 0
}

// Validate re-checks every required field on an assembled appointment.
func (a *Appointment) Validate(now time.Time) error {
	for _, f := range RequiredFields {
		if err := a.SetField(f, a.FieldValue(f), now); err != nil {
			return err
		}
	}
	return nil
}

// Slot derives the concrete [start, end) interval in the clinic timezone.
func (a *Appointment) Slot(loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.PreferredDate+" "+a.PreferredTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("derive slot: %w", err)
	}
	return start, start.Add(SlotDuration), nil
}

// Summary renders the draft for the confirmation turn.
func (a *Appointment) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name: %s\n", a.PatientName))
	sb.WriteString(fmt.Sprintf("Service: %s\n", a.Service))
	sb.WriteString(fmt.Sprintf("Date: %s\n", a.PreferredDate))
	sb.WriteString(fmt.Sprintf("Time: %s\n", a.PreferredTime))
	sb.WriteString(fmt.Sprintf("Email: %s\n", a.ContactEmail))
	sb.WriteString(fmt.Sprintf("Phone: %s", a.ContactPhone))
	if a.Notes != "" {
		sb.WriteString(fmt.Sprintf("\nNotes: %s", a.Notes))
	}
	return sb.String()
}
