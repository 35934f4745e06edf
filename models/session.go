package models

import "time"

// SessionState tracks where a conversation sits in the booking flow.
type SessionState string

const (
	StateCollecting SessionState = "collecting"
	StateConfirming SessionState = "confirming"
	StateBooking    SessionState = "booking"
	StateDone       SessionState = "done"
)

// ConversationSession holds one client's transcript, the in-progress
// appointment draft and the abuse-handling state. Locked is orthogonal to the
// booking state: once set, every turn is rejected until an explicit reset.
type ConversationSession struct {
	ID         string       `json:"id"`
	Turns      []Turn       `json:"turns"`
	Draft      Appointment  `json:"draft"`
	State      SessionState `json:"state"`
	Locked     bool         `json:"locked"`
	Violations int          `json:"violations"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewConversationSession creates a fresh session whose transcript holds the
// greeting as its sole entry.
func NewConversationSession(id, greeting string) *ConversationSession {
	now := time.Now()
	return &ConversationSession{
		ID:        id,
		Turns:     []Turn{{Role: RoleAssistant, Text: greeting, At: now}},
		Draft:     Appointment{Status: StatusDraft},
		State:     StateCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddTurn appends a transcript entry.
func (s *ConversationSession) AddTurn(role, text string) {
	now := time.Now()
	s.Turns = append(s.Turns, Turn{Role: role, Text: text, At: now})
	s.UpdatedAt = now
}

// Reset clears the transcript and draft, unlocks the session and restores the
// greeting as the sole transcript entry.
func (s *ConversationSession) Reset(greeting string) {
	now := time.Now()
	s.Turns = []Turn{{Role: RoleAssistant, Text: greeting, At: now}}
	s.Draft = Appointment{Status: StatusDraft}
	s.State = StateCollecting
	s.Locked = false
	s.Violations = 0
	s.UpdatedAt = now
}
