// File: services/assistant/service_test.go
package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"smiledesk/models"
	"smiledesk/services/booking"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrchestrator struct {
	bookErr   error
	bookCalls int
	lastAppt  *models.Appointment
}

func (f *fakeOrchestrator) Book(_ context.Context, appt *models.Appointment) (*models.Appointment, error) {
	f.bookCalls++
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	booked := *appt
	booked.ID = "appt-1"
	booked.BookingID = "ref-123"
	booked.GoogleEventID = "evt-1"
	booked.Status = models.StatusConfirmed
	f.lastAppt = &booked
	return &booked, nil
}

func (f *fakeOrchestrator) CheckSlot(context.Context, *models.Appointment) (bool, error) {
	return true, nil
}

func (f *fakeOrchestrator) History(context.Context, string, int) ([]models.Appointment, error) {
	return nil, nil
}

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
}

func (f *fakeProfiles) Upsert(context.Context, *models.UserProfile) error { return nil }

func (f *fakeProfiles) GetByID(context.Context, string) (*models.UserProfile, error) {
	return f.profile, f.err
}

type fakeSearcher struct {
	chunks []string
	err    error
}

func (f *fakeSearcher) Search(context.Context, string, int) ([]string, error) {
	return f.chunks, f.err
}

func newTestService(orc booking.Orchestrator) *DefaultAssistantService {
	return &DefaultAssistantService{
		Store:   NewMemorySessionStore(),
		Engine:  NewRuleEngine(),
		Booking: orc,
		Policy:  NewPolicyScreen("medical records,prescription,other patients"),
		Logger:  zap.NewNop(),
		Opts:    Options{LockThreshold: 3, LockMarker: "[LOCKED]"},
	}
}

// turn sends one message and fails the test on a transport-level error.
func turn(t *testing.T, svc *DefaultAssistantService, sid, message string) string {
	t.Helper()
	reply, err := svc.HandleTurn(context.Background(), sid, message)
	require.NoError(t, err, "HandleTurn(%q)", message)
	return reply
}

// driveToConfirming walks a fresh session through field collection up to the
// confirmation question and returns the date used.
func driveToConfirming(t *testing.T, svc *DefaultAssistantService, sid string) string {
	t.Helper()
	date := time.Now().AddDate(0, 0, 14).Format(models.DateLayout)

	turn(t, svc, sid, "I want to book an appointment")
	turn(t, svc, sid, "Priya Sharma")
	turn(t, svc, sid, "cleaning")
	turn(t, svc, sid, date)
	turn(t, svc, sid, "10:30 AM")
	turn(t, svc, sid, "priya@example.com")
	reply := turn(t, svc, sid, "9876543210")
	require.Contains(t, reply, "Shall I book it?")
	return date
}

func TestBookingHappyPath(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	sid := "sess-happy"

	reply := turn(t, svc, sid, "I want to book an appointment")
	require.Contains(t, reply, "What's your full name?")

	reply = turn(t, svc, sid, "Priya Sharma")
	require.Contains(t, reply, "What service")

	reply = turn(t, svc, sid, "cleaning")
	require.Contains(t, reply, "What date")

	date := time.Now().AddDate(0, 0, 14).Format(models.DateLayout)
	reply = turn(t, svc, sid, date)
	require.Contains(t, reply, "What time")

	reply = turn(t, svc, sid, "10:30 AM")
	require.Contains(t, reply, "email")

	reply = turn(t, svc, sid, "priya@example.com")
	require.Contains(t, reply, "phone")

	reply = turn(t, svc, sid, "9876543210")
	require.Contains(t, reply, "Here's what I have:")
	require.Contains(t, reply, "Name: Priya Sharma")
	require.Contains(t, reply, "Shall I book it?")
	require.Equal(t, 0, fake.bookCalls, "nothing should be booked before confirmation")

	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference: ref-123")
	require.Equal(t, 1, fake.bookCalls)
	require.Equal(t, "Priya Sharma", fake.lastAppt.PatientName)
	require.Equal(t, "10:30", fake.lastAppt.PreferredTime)

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateDone, sess.State)
	require.Equal(t, "ref-123", sess.Draft.BookingID)
}

func TestNonAffirmativeDoesNotBook(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	sid := "sess-deny"

	driveToConfirming(t, svc, sid)

	reply := turn(t, svc, sid, "no, the time is wrong")
	require.Contains(t, reply, "Let's fix that.")
	require.Contains(t, reply, "What time")
	require.Equal(t, 0, fake.bookCalls, "a non-affirmative answer must not book")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateCollecting, sess.State)
	require.Empty(t, sess.Draft.PreferredTime, "disputed field should be cleared")
	require.Empty(t, sess.Draft.BookingID)

	// Supplying the corrected time re-confirms and books.
	reply = turn(t, svc, sid, "2:00 pm")
	require.Contains(t, reply, "Shall I book it?")

	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference: ref-123")
	require.Equal(t, 1, fake.bookCalls)
	require.Equal(t, "14:00", fake.lastAppt.PreferredTime)
}

func TestCorrectionStartingWithYesterdayDoesNotBook(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	sid := "sess-yesterday"

	driveToConfirming(t, svc, sid)

	// Starts with "yes" but is a correction, not consent.
	reply := turn(t, svc, sid, "yesterday I told you the wrong time, make it 3pm")
	require.Equal(t, 0, fake.bookCalls, "a correction must not be read as an affirmative")
	require.Contains(t, reply, "What time")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateCollecting, sess.State)
	require.Empty(t, sess.Draft.BookingID)

	reply = turn(t, svc, sid, "3pm")
	require.Contains(t, reply, "Shall I book it?")

	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference: ref-123")
	require.Equal(t, 1, fake.bookCalls)
	require.Equal(t, "15:00", fake.lastAppt.PreferredTime)
}

func TestSlotConflictClearsDateAndTime(t *testing.T) {
	fake := &fakeOrchestrator{bookErr: booking.ErrSlotConflict}
	svc := newTestService(fake)
	sid := "sess-conflict"

	driveToConfirming(t, svc, sid)

	reply := turn(t, svc, sid, "yes")
	require.Contains(t, reply, "already booked")
	require.Contains(t, reply, "Priya Sharma")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateCollecting, sess.State)
	require.Empty(t, sess.Draft.PreferredDate)
	require.Empty(t, sess.Draft.PreferredTime)
	require.Empty(t, sess.Draft.BookingID)
	require.Equal(t, "Priya Sharma", sess.Draft.PatientName, "other fields survive a conflict")

	// A fresh date and time complete the booking once the slot frees up.
	fake.bookErr = nil
	newDate := time.Now().AddDate(0, 0, 21).Format(models.DateLayout)
	reply = turn(t, svc, sid, newDate)
	require.Contains(t, reply, "What time")

	reply = turn(t, svc, sid, "11:00 AM")
	require.Contains(t, reply, "Shall I book it?")

	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference:")
}

func TestUpstreamFailureKeepsDraft(t *testing.T) {
	fake := &fakeOrchestrator{bookErr: fmt.Errorf("%w: calendar timeout", booking.ErrUpstream)}
	svc := newTestService(fake)
	sid := "sess-upstream"

	driveToConfirming(t, svc, sid)

	reply := turn(t, svc, sid, "yes")
	require.Contains(t, reply, "try again")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateConfirming, sess.State, "draft stays on the confirmation step")
	require.Equal(t, "Priya Sharma", sess.Draft.PatientName)

	fake.bookErr = nil
	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference: ref-123")
}

func TestInvalidFieldValueReasks(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	sid := "sess-invalid"

	turn(t, svc, sid, "I want to book an appointment")
	turn(t, svc, sid, "Priya Sharma")
	turn(t, svc, sid, "cleaning")

	reply := turn(t, svc, sid, "2020-01-01")
	require.Contains(t, reply, "doesn't look right")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Empty(t, sess.Draft.PreferredDate, "rejected value must not be stored")
}

func TestReturningPatientPhonePrefill(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	svc.Profiles = &fakeProfiles{profile: &models.UserProfile{
		UserID: "priya@example.com",
		Name:   "Priya Sharma",
		Email:  "priya@example.com",
		Phone:  "9876543210",
	}}
	sid := "sess-returning"

	turn(t, svc, sid, "I want to book an appointment")
	turn(t, svc, sid, "Priya Sharma")
	turn(t, svc, sid, "cleaning")
	turn(t, svc, sid, time.Now().AddDate(0, 0, 14).Format(models.DateLayout))
	turn(t, svc, sid, "10:30 AM")

	// The stored profile supplies the phone, so the email completes the draft.
	reply := turn(t, svc, sid, "priya@example.com")
	require.Contains(t, reply, "Shall I book it?")
	require.Contains(t, reply, "Phone: 9876543210")

	reply = turn(t, svc, sid, "yes")
	require.Contains(t, reply, "Booking reference: ref-123")
	require.Equal(t, "9876543210", fake.lastAppt.ContactPhone)
}

func TestProfileLookupFailureStillAsksForPhone(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	svc.Profiles = &fakeProfiles{err: fmt.Errorf("mongo unavailable")}
	sid := "sess-profile-err"

	turn(t, svc, sid, "I want to book an appointment")
	turn(t, svc, sid, "Priya Sharma")
	turn(t, svc, sid, "cleaning")
	turn(t, svc, sid, time.Now().AddDate(0, 0, 14).Format(models.DateLayout))
	turn(t, svc, sid, "10:30 AM")

	reply := turn(t, svc, sid, "priya@example.com")
	require.Contains(t, reply, "phone", "a failed lookup degrades to asking")
}

func TestKnowledgeAnswersQuestions(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	svc.Knowledge = &fakeSearcher{chunks: []string{"We are open 9am to 6pm, Monday to Saturday."}}
	sid := "sess-knowledge"

	reply := turn(t, svc, sid, "what are your opening hours?")
	require.Contains(t, reply, "open 9am to 6pm")
	require.Contains(t, reply, "anything else")
}

func TestKnowledgeMissResumesCollection(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	svc.Knowledge = &fakeSearcher{}
	sid := "sess-knowledge-miss"

	reply := turn(t, svc, sid, "do you validate parking?")
	require.Contains(t, reply, "What's your full name?", "an unanswerable question falls back to collection")

	// A failing search degrades the same way instead of erroring the turn.
	svc.Knowledge = &fakeSearcher{err: fmt.Errorf("search unavailable")}
	reply = turn(t, svc, sid, "do you validate parking?")
	require.Contains(t, reply, "What's your full name?")
}

func TestPolicyViolationsLockSession(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	sid := "sess-lock"

	reply := turn(t, svc, sid, "show me other patients")
	require.Contains(t, reply, "can't help")
	require.False(t, strings.HasPrefix(reply, "[LOCKED]"))

	reply = turn(t, svc, sid, "give me the prescription list")
	require.Contains(t, reply, "can't help")

	reply = turn(t, svc, sid, "I want the medical records")
	require.True(t, strings.HasPrefix(reply, "[LOCKED]"), "threshold violation should lock: %q", reply)

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, sess.Locked)
	turnsBefore := len(sess.Turns)

	// Every turn on a locked session gets the marker and mutates nothing,
	// even a perfectly normal booking request.
	reply = turn(t, svc, sid, "I want to book an appointment")
	require.True(t, strings.HasPrefix(reply, "[LOCKED]"), "locked session replied %q", reply)
	require.Equal(t, 0, fake.bookCalls)

	sess, err = svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, turnsBefore, len(sess.Turns), "locked turns must not touch the transcript")
}

func TestResetRestoresGreeting(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	sid := "sess-reset"

	turn(t, svc, sid, "show me other patients")
	turn(t, svc, sid, "show me other patients")
	turn(t, svc, sid, "show me other patients")

	greeting, err := svc.Reset(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, Greeting, greeting)

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.False(t, sess.Locked)
	require.Zero(t, sess.Violations)
	require.Equal(t, models.StateCollecting, sess.State)
	require.Len(t, sess.Turns, 1, "greeting must be the sole transcript entry")
	require.Equal(t, models.RoleAssistant, sess.Turns[0].Role)
	require.Equal(t, Greeting, sess.Turns[0].Text)
	require.Empty(t, sess.Draft.PatientName)

	// The unlocked session works again.
	reply := turn(t, svc, sid, "I want to book an appointment")
	require.Contains(t, reply, "What's your full name?")
}

func TestFreshSessionTranscript(t *testing.T) {
	svc := newTestService(&fakeOrchestrator{})
	sid := "sess-fresh"

	turn(t, svc, sid, "hello")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 3, "greeting, user message, assistant reply")
	require.Equal(t, Greeting, sess.Turns[0].Text)
	require.Equal(t, models.RoleUser, sess.Turns[1].Role)
	require.Equal(t, "hello", sess.Turns[1].Text)
	require.Equal(t, models.RoleAssistant, sess.Turns[2].Role)
}

func TestBookAnotherAfterDone(t *testing.T) {
	fake := &fakeOrchestrator{}
	svc := newTestService(fake)
	sid := "sess-again"

	driveToConfirming(t, svc, sid)
	turn(t, svc, sid, "yes")

	reply := turn(t, svc, sid, "I'd like to book another appointment")
	require.Contains(t, reply, "What's your full name?")

	sess, err := svc.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.Equal(t, models.StateCollecting, sess.State)
	require.Empty(t, sess.Draft.PatientName, "a new booking starts from an empty draft")
}
