package models

import "time"

// ChatRequest is the payload coming from the frontend into /api/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is what the chat endpoint returns to the frontend. The reply
// carries the configured lock marker prefix while the session is locked.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single transcript entry.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
