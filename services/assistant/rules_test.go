// File: services/assistant/rules_test.go
package assistant

import (
	"context"
	"testing"
	"time"

	"smiledesk/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRuleEngineIntents(t *testing.T) {
	e := NewRuleEngine()
	sess := models.NewConversationSession("s", Greeting)

	cases := []struct {
		message string
		intent  Intent
	}{
		{"I want to book an appointment", IntentBook},
		{"can you schedule me in", IntentBook},
		{"yes", IntentAffirm},
		{"yes, please", IntentAffirm},
		{"Yes.", IntentAffirm},
		{"yes go ahead", IntentAffirm},
		{"Yep", IntentAffirm},
		{"yesterday I told you the wrong time, make it 3pm", IntentDeny},
		{"yesterday works for me", IntentChat},
		{"no", IntentDeny},
		{"no, the time is wrong", IntentDeny},
		{"what are your opening hours?", IntentQuestion},
		{"do you offer teeth whitening", IntentQuestion},
		{"hello there", IntentChat},
	}
	for _, c := range cases {
		interp, err := e.Interpret(context.Background(), sess, c.message)
		if err != nil {
			t.Fatalf("Interpret(%q) = %v", c.message, err)
		}
		if interp.Intent != c.intent {
			t.Errorf("Interpret(%q).Intent = %q, want %q", c.message, interp.Intent, c.intent)
		}
	}
}

func TestRuleEngineFieldExtraction(t *testing.T) {
	e := NewRuleEngine()
	e.now = fixedClock(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	sess := models.NewConversationSession("s", Greeting)

	interp, err := e.Interpret(context.Background(),
		sess, "Book a cleaning on 2026-09-15 at 10:30 AM, email priya@example.com, phone 9876543210")
	if err != nil {
		t.Fatalf("Interpret() = %v", err)
	}

	want := map[string]string{
		"service":        "cleaning",
		"preferred_date": "2026-09-15",
		"preferred_time": "10:30",
		"contact_email":  "priya@example.com",
		"contact_phone":  "9876543210",
	}
	for field, value := range want {
		if interp.Fields[field] != value {
			t.Errorf("Fields[%q] = %q, want %q", field, interp.Fields[field], value)
		}
	}
}

func TestRuleEngineRelativeDates(t *testing.T) {
	e := NewRuleEngine()
	e.now = fixedClock(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	sess := models.NewConversationSession("s", Greeting)

	interp, _ := e.Interpret(context.Background(), sess, "tomorrow works")
	if got := interp.Fields["preferred_date"]; got != "2026-09-02" {
		t.Errorf("tomorrow resolved to %q, want 2026-09-02", got)
	}

	interp, _ = e.Interpret(context.Background(), sess, "today please")
	if got := interp.Fields["preferred_date"]; got != "2026-09-01" {
		t.Errorf("today resolved to %q, want 2026-09-01", got)
	}
}

func TestRuleEngineBareNameAnswer(t *testing.T) {
	e := NewRuleEngine()
	sess := models.NewConversationSession("s", Greeting)

	interp, _ := e.Interpret(context.Background(), sess, "My name is Priya Sharma")
	if got := interp.Fields["patient_name"]; got != "Priya Sharma" {
		t.Errorf("patient_name = %q, want Priya Sharma", got)
	}

	// Once the name is collected, a bare answer goes to the next free-form
	// field instead.
	sess.Draft.PatientName = "Priya Sharma"
	interp, _ = e.Interpret(context.Background(), sess, "implant fitting")
	if got := interp.Fields["service"]; got != "implant fitting" {
		t.Errorf("service = %q, want implant fitting", got)
	}
}

func TestRuleEngineDisputedField(t *testing.T) {
	e := NewRuleEngine()
	sess := models.NewConversationSession("s", Greeting)

	interp, _ := e.Interpret(context.Background(), sess, "no, the time is wrong")
	if interp.DisputedField != "preferred_time" {
		t.Errorf("DisputedField = %q, want preferred_time", interp.DisputedField)
	}

	interp, _ = e.Interpret(context.Background(), sess, "the email is wrong")
	if interp.DisputedField != "contact_email" {
		t.Errorf("DisputedField = %q, want contact_email", interp.DisputedField)
	}
}

func TestExtractClock(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"10 AM", "10:00", true},
		{"10:30 am", "10:30", true},
		{"3 pm", "15:00", true},
		{"12 pm", "12:00", true},
		{"12 am", "00:00", true},
		{"14:30", "14:30", true},
		{"no time here", "", false},
	}
	for _, c := range cases {
		got, ok := extractClock(c.in)
		if ok != c.ok || got != c.out {
			t.Errorf("extractClock(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.out, c.ok)
		}
	}
}
