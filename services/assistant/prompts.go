package assistant

// Greeting is the sole transcript entry of a fresh or reset session.
const Greeting = "Hi! I'm the clinic's booking assistant. I can help you book a dental appointment or answer questions about the clinic. How can I help?"

// fieldQuestions holds the one-at-a-time questions, keyed by field name and
// phrased the way the assistant collects details over chat.
var fieldQuestions = map[string]string{
	"patient_name":   "What's your full name?",
	"service":        "What service do you need? For example cleaning, checkup, whitening or a filling.",
	"preferred_date": "What date works for you? Please use YYYY-MM-DD.",
	"preferred_time": "What time would you prefer? For example 10:00 AM.",
	"contact_email":  "What email address should we use for the booking?",
	"contact_phone":  "And a 10-digit phone number we can reach you on?",
}

// fieldLabels are the human names used in clarifying replies.
var fieldLabels = map[string]string{
	"patient_name":   "name",
	"service":        "service",
	"preferred_date": "date",
	"preferred_time": "time",
	"contact_email":  "email",
	"contact_phone":  "phone number",
}

const (
	replyTryAgain     = "Sorry, something went wrong on our side. Please try again in a moment."
	replyOffTopic     = "I can help you book a dental appointment or answer questions about the clinic."
	replyLocked       = "This conversation is locked. Please reset the chat to continue."
	replyWhatToChange = "No problem - what would you like to change?"
)
