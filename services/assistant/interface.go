package assistant

import (
	"context"

	"smiledesk/models"
)

// Service drives one conversation turn at a time: it interprets the message,
// advances the booking state machine and produces the natural-language reply.
type Service interface {
	// HandleTurn processes a user message for the given session and returns
	// the assistant reply. The reply carries the configured lock marker
	// prefix while the session is locked.
	HandleTurn(ctx context.Context, sessionID, message string) (string, error)
	// Reset clears the session and returns the greeting.
	Reset(ctx context.Context, sessionID string) (string, error)
}

// Intent classifies what the user is trying to do this turn.
type Intent string

const (
	IntentBook     Intent = "book"
	IntentAffirm   Intent = "affirm"
	IntentDeny     Intent = "deny"
	IntentQuestion Intent = "question"
	IntentChat     Intent = "chat"
)

// Interpretation is the structured reading of one user message.
type Interpretation struct {
	Intent Intent
	// Fields maps appointment field names to values extracted from the
	// message. Values are raw; validation happens when they are applied.
	Fields map[string]string
	// DisputedField names the collected field the user rejected, when the
	// message makes that explicit.
	DisputedField string
}

// Engine extracts an Interpretation from a user message given the session so
// far. Implemented by the Gemini engine and the deterministic rule engine.
type Engine interface {
	Interpret(ctx context.Context, session *models.ConversationSession, message string) (*Interpretation, error)
}
