package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"smiledesk/models"

	"go.uber.org/zap"
)

const extractionInstructions = `You are a friendly dental clinic booking assistant.
Read the conversation and the user's latest message, then answer with ONLY a JSON object:
{"intent": "...", "fields": {...}, "disputed_field": "..."}
intent is one of: book, affirm, deny, question, chat.
fields maps any of patient_name, service, preferred_date, preferred_time, contact_email, contact_phone
to values found in the latest message. Dates must be YYYY-MM-DD, times HH:MM in 24-hour form.
disputed_field names the field the user says is wrong, or "".
Do not invent values the user did not state.`

// GeminiEngine interprets messages with the LLM and falls back to the rule
// engine when the model output cannot be used.
type GeminiEngine struct {
	Client   *GeminiClient
	Fallback Engine
	Logger   *zap.Logger
}

func (e *GeminiEngine) Interpret(ctx context.Context, session *models.ConversationSession, message string) (*Interpretation, error) {
	out, err := e.Client.GenerateContent(ctx, e.buildPrompt(session, message))
	if err != nil {
		e.Logger.Warn("Gemini interpretation failed, using rule engine", zap.Error(err))
		return e.Fallback.Interpret(ctx, session, message)
	}

	interp, err := parseInterpretation(out)
	if err != nil {
		e.Logger.Warn("Gemini returned unparseable interpretation, using rule engine",
			zap.Error(err), zap.String("output", out))
		return e.Fallback.Interpret(ctx, session, message)
	}
	return interp, nil
}

func (e *GeminiEngine) buildPrompt(session *models.ConversationSession, message string) string {
	var sb strings.Builder
	sb.WriteString(extractionInstructions)
	sb.WriteString("\n\nDraft so far:\n")
	draft, _ := json.Marshal(session.Draft)
	sb.Write(draft)
	sb.WriteString("\n\nConversation:\n")

	turns := session.Turns
	if len(turns) > 8 {
		turns = turns[len(turns)-8:]
	}
	for _, t := range turns {
		sb.WriteString(fmt.Sprintf("%s: %s\n", t.Role, t.Text))
	}
	sb.WriteString(fmt.Sprintf("\nLatest user message: %s\n", message))
	return sb.String()
}

func parseInterpretation(out string) (*Interpretation, error) {
	// The model wraps JSON in code fences more often than not.
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")

	var raw struct {
		Intent        string            `json:"intent"`
		Fields        map[string]string `json:"fields"`
		DisputedField string            `json:"disputed_field"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &raw); err != nil {
		return nil, fmt.Errorf("parse interpretation: %w", err)
	}

	intent := Intent(raw.Intent)
	switch intent {
	case IntentBook, IntentAffirm, IntentDeny, IntentQuestion, IntentChat:
	default:
		intent = IntentChat
	}

	fields := map[string]string{}
	for k, v := range raw.Fields {
		for _, known := range models.RequiredFields {
			if k == known && strings.TrimSpace(v) != "" {
				fields[k] = strings.TrimSpace(v)
			}
		}
	}

	return &Interpretation{Intent: intent, Fields: fields, DisputedField: raw.DisputedField}, nil
}
