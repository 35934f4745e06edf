// File: services/assistant/service.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	profileRepo "smiledesk/database/repository/profile"
	"smiledesk/models"
	"smiledesk/services/booking"
	"smiledesk/services/knowledge"

	"go.uber.org/zap"
)

// Options carries the tunables read from configuration.
type Options struct {
	LockThreshold int
	LockMarker    string
}

// DefaultAssistantService implements Service. One in-flight turn per session:
// a keyed mutex queues a second turn for the same session behind the first.
type DefaultAssistantService struct {
	Store     SessionStore
	Engine    Engine
	Booking   booking.Orchestrator
	Policy    *PolicyScreen
	Knowledge knowledge.Searcher     // optional
	Profiles  profileRepo.Repository // optional
	Logger    *zap.Logger
	Opts      Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *DefaultAssistantService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// HandleTurn processes one user message for the session.
func (s *DefaultAssistantService) HandleTurn(ctx context.Context, sessionID, message string) (string, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = models.NewConversationSession(sessionID, Greeting)
	}

	// A locked session rejects every turn until reset; nothing is mutated.
	if sess.Locked {
		return s.Opts.LockMarker + " " + replyLocked, nil
	}

	sess.AddTurn(models.RoleUser, message)

	reply := s.replyFor(ctx, sess, message)

	sess.AddTurn(models.RoleAssistant, reply)
	if err := s.Store.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return reply, nil
}

func (s *DefaultAssistantService) replyFor(ctx context.Context, sess *models.ConversationSession, message string) string {
	if category := s.Policy.Screen(message); category != "" {
		sess.Violations++
		s.Logger.Warn("Policy violation",
			zap.String("session", sess.ID),
			zap.String("category", category),
			zap.Int("violations", sess.Violations))
		if sess.Violations >= s.Opts.LockThreshold {
			sess.Locked = true
			return s.Opts.LockMarker + " This conversation has been locked after repeated policy violations. Please reset the chat to continue."
		}
		return fmt.Sprintf("I can't help with %s. I can only assist with booking dental appointments and clinic questions.", category)
	}

	interp, err := s.Engine.Interpret(ctx, sess, message)
	if err != nil {
		s.Logger.Error("Interpretation failed", zap.Error(err))
		return replyTryAgain
	}

	switch sess.State {
	case models.StateConfirming:
		return s.handleConfirming(ctx, sess, interp)
	case models.StateDone:
		if interp.Intent == IntentBook {
			sess.Draft = models.Appointment{Status: models.StatusDraft}
			sess.State = models.StateCollecting
			return "Happy to book another appointment. " + fieldQuestions["patient_name"]
		}
		return s.handleCollecting(ctx, sess, interp, message)
	default:
		return s.handleCollecting(ctx, sess, interp, message)
	}
}

func (s *DefaultAssistantService) handleCollecting(ctx context.Context, sess *models.ConversationSession, interp *Interpretation, message string) string {
	if interp.Intent == IntentQuestion && len(interp.Fields) == 0 {
		if answer := s.lookupKnowledge(ctx, message); answer != "" {
			return answer
		}
	}

	applied := 0
	for _, field := range models.RequiredFields {
		value, ok := interp.Fields[field]
		if !ok {
			continue
		}
		if err := sess.Draft.SetField(field, value, time.Now()); err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				return fmt.Sprintf("That %s doesn't look right: %s. Could you give it again?", fieldLabels[field], verr.Reason)
			}
			return replyTryAgain
		}
		applied++
	}

	// A returning patient's stored profile fills in the phone number they
	// did not repeat this time.
	if _, ok := interp.Fields["contact_email"]; ok && s.Profiles != nil && sess.Draft.ContactPhone == "" {
		p, err := s.Profiles.GetByID(ctx, sess.Draft.ContactEmail)
		switch {
		case err != nil:
			s.Logger.Warn("Profile lookup failed", zap.Error(err))
		case p != nil && p.Phone != "":
			if err := sess.Draft.SetField("contact_phone", p.Phone, time.Now()); err != nil {
				s.Logger.Warn("Stored phone rejected", zap.Error(err))
			}
		}
	}

	if sess.Draft.Complete() {
		sess.State = models.StateConfirming
		return "Here's what I have:\n" + sess.Draft.Summary() + "\nShall I book it? (yes/no)"
	}

	missing := sess.Draft.MissingFields()
	next := fieldQuestions[missing[0]]
	switch {
	case interp.Intent == IntentBook:
		return "I can help with that! " + next
	case applied > 0:
		return "Got it. " + next
	case interp.Intent == IntentQuestion || interp.Intent == IntentChat:
		return replyOffTopic + " " + next
	default:
		return next
	}
}

func (s *DefaultAssistantService) handleConfirming(ctx context.Context, sess *models.ConversationSession, interp *Interpretation) string {
	if interp.Intent != IntentAffirm {
		// Anything short of an explicit yes returns to collecting with the
		// disputed field cleared for re-entry.
		sess.State = models.StateCollecting
		if q, ok := fieldQuestions[interp.DisputedField]; ok {
			sess.Draft.ClearField(interp.DisputedField)
			return "Let's fix that. " + q
		}
		if len(interp.Fields) > 0 {
			return s.handleCollecting(ctx, sess, interp, "")
		}
		return replyWhatToChange
	}

	sess.State = models.StateBooking
	draft := sess.Draft
	booked, err := s.Booking.Book(ctx, &draft)

	switch {
	case errors.Is(err, booking.ErrSlotConflict):
		sess.State = models.StateCollecting
		sess.Draft.ClearField("preferred_date")
		sess.Draft.ClearField("preferred_time")
		return fmt.Sprintf("Sorry %s, that time slot is already booked. Would you like to try a different date or time?", sess.Draft.PatientName)
	case err != nil:
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			sess.State = models.StateCollecting
			sess.Draft.ClearField(verr.Field)
			return fmt.Sprintf("That %s doesn't look right: %s. %s", fieldLabels[verr.Field], verr.Reason, fieldQuestions[verr.Field])
		}
		s.Logger.Error("Booking failed", zap.Error(err))
		sess.State = models.StateConfirming
		return replyTryAgain
	default:
		sess.Draft = *booked
		sess.State = models.StateDone
		return fmt.Sprintf(
			"Your appointment is booked!\n%s\nBooking reference: %s\nIt has been added to the clinic's calendar.",
			booked.Summary(), booked.BookingID)
	}
}

func (s *DefaultAssistantService) lookupKnowledge(ctx context.Context, query string) string {
	if s.Knowledge == nil {
		return ""
	}
	chunks, err := s.Knowledge.Search(ctx, query, 3)
	if err != nil {
		s.Logger.Warn("Knowledge lookup failed", zap.Error(err))
		return ""
	}
	if len(chunks) == 0 {
		return ""
	}
	return strings.TrimSpace(chunks[0]) + "\nIs there anything else I can help with?"
}

// Reset clears the session and returns the greeting.
func (s *DefaultAssistantService) Reset(ctx context.Context, sessionID string) (string, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = models.NewConversationSession(sessionID, Greeting)
	} else {
		sess.Reset(Greeting)
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}
	return Greeting, nil
}
