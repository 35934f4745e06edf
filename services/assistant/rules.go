// File: services/assistant/rules.go
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"smiledesk/models"
)

// RuleEngine is a deterministic Engine built on keyword matching and
// pattern extraction. It runs when no Gemini key is configured and serves
// as the fallback when the model misbehaves.
type RuleEngine struct {
	now func() time.Time
}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{now: time.Now}
}

var (
	extractEmailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	extractPhoneRe  = regexp.MustCompile(`\b(\d{10})\b`)
	extractISODate  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	extractClockRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	extract24hRe    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	nameShapeRe     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z .'\-]{1,59}$`)
	nameLeadInRe    = regexp.MustCompile(`(?i)^(my name is|i am|i'm|this is|it's|its)\s+`)
	affirmatives    = map[string]bool{"yes": true, "y": true, "yep": true, "yeah": true, "sure": true, "ok": true, "okay": true, "confirm": true, "confirmed": true, "correct": true, "book it": true, "yes please": true, "go ahead": true}
	serviceKeywords = []string{"cleaning", "checkup", "check-up", "check up", "whitening", "filling", "root canal", "extraction", "braces", "crown", "consultation"}
)

// Interpret reads one user message against the session's current draft.
func (e *RuleEngine) Interpret(_ context.Context, session *models.ConversationSession, message string) (*Interpretation, error) {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	interp := &Interpretation{
		Intent: IntentChat,
		Fields: map[string]string{},
	}

	switch {
	case isAffirmative(lower):
		interp.Intent = IntentAffirm
	case lower == "no" || lower == "nope" || strings.HasPrefix(lower, "no,") ||
		strings.Contains(lower, "wrong") || strings.Contains(lower, "change") || strings.Contains(lower, "edit"):
		interp.Intent = IntentDeny
	case strings.Contains(lower, "book") || strings.Contains(lower, "appointment") || strings.Contains(lower, "schedule"):
		interp.Intent = IntentBook
	case strings.HasSuffix(trimmed, "?") || hasQuestionLead(lower):
		interp.Intent = IntentQuestion
	}

	if interp.Intent == IntentDeny {
		interp.DisputedField = disputedField(lower)
	}

	e.extractFields(session, trimmed, lower, interp)
	return interp, nil
}

// isAffirmative matches whole phrases from the affirmative set, or a leading
// yes-word followed by punctuation or more words. A bare prefix match would
// read "yesterday..." as consent.
func isAffirmative(lower string) bool {
	if affirmatives[lower] {
		return true
	}
	word := lower
	if i := strings.IndexAny(word, " ,.!"); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "yes", "yep", "yeah":
		return true
	}
	return false
}

func hasQuestionLead(lower string) bool {
	for _, w := range []string{"what", "when", "where", "how", "do you", "can i", "is there"} {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

func disputedField(lower string) string {
	for field, label := range fieldLabels {
		if strings.Contains(lower, label) {
			return field
		}
	}
	return ""
}

func (e *RuleEngine) extractFields(session *models.ConversationSession, trimmed, lower string, interp *Interpretation) {
	if m := extractEmailRe.FindString(trimmed); m != "" {
		interp.Fields["contact_email"] = m
	}
	if m := extractPhoneRe.FindString(trimmed); m != "" {
		interp.Fields["contact_phone"] = m
	}
	if m := extractISODate.FindString(trimmed); m != "" {
		interp.Fields["preferred_date"] = m
	} else if strings.Contains(lower, "tomorrow") {
		interp.Fields["preferred_date"] = e.now().AddDate(0, 0, 1).Format(models.DateLayout)
	} else if strings.Contains(lower, "today") {
		interp.Fields["preferred_date"] = e.now().Format(models.DateLayout)
	}
	if t, ok := extractClock(trimmed); ok {
		interp.Fields["preferred_time"] = t
	}
	for _, kw := range serviceKeywords {
		if strings.Contains(lower, kw) {
			interp.Fields["service"] = kw
			break
		}
	}

	// A bare answer with nothing recognized goes to the field currently
	// being asked for, when that field is free-form.
	if len(interp.Fields) > 0 || interp.Intent == IntentAffirm || interp.Intent == IntentDeny || interp.Intent == IntentBook {
		return
	}
	missing := session.Draft.MissingFields()
	if len(missing) == 0 {
		return
	}
	switch missing[0] {
	case "patient_name":
		name := nameLeadInRe.ReplaceAllString(trimmed, "")
		if nameShapeRe.MatchString(name) {
			interp.Fields["patient_name"] = name
		}
	case "service":
		if interp.Intent == IntentChat && trimmed != "" {
			interp.Fields["service"] = trimmed
		}
	}
}

// extractClock normalizes "10 AM", "10:30 am" and "14:30" to HH:MM (24h).
func extractClock(s string) (string, bool) {
	if m := extractClockRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return "", false
		}
		if strings.EqualFold(m[3], "pm") && hour != 12 {
			hour += 12
		}
		if strings.EqualFold(m[3], "am") && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	if m := extract24hRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", false
}
