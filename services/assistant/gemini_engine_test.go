package assistant

import "testing"

func TestParseInterpretation(t *testing.T) {
	interp, err := parseInterpretation(`{"intent":"book","fields":{"service":"cleaning","preferred_time":"10:30"},"disputed_field":""}`)
	if err != nil {
		t.Fatalf("parseInterpretation() = %v", err)
	}
	if interp.Intent != IntentBook {
		t.Errorf("Intent = %q, want book", interp.Intent)
	}
	if interp.Fields["service"] != "cleaning" || interp.Fields["preferred_time"] != "10:30" {
		t.Errorf("unexpected fields: %v", interp.Fields)
	}
}

func TestParseInterpretationCodeFences(t *testing.T) {
	interp, err := parseInterpretation("```json\n{\"intent\":\"affirm\",\"fields\":{}}\n```")
	if err != nil {
		t.Fatalf("parseInterpretation() = %v", err)
	}
	if interp.Intent != IntentAffirm {
		t.Errorf("Intent = %q, want affirm", interp.Intent)
	}
}

func TestParseInterpretationSanitizes(t *testing.T) {
	interp, err := parseInterpretation(`{"intent":"buy","fields":{"service":"  cleaning ","made_up":"x","contact_email":""}}`)
	if err != nil {
		t.Fatalf("parseInterpretation() = %v", err)
	}
	if interp.Intent != IntentChat {
		t.Errorf("unknown intent should fall back to chat, got %q", interp.Intent)
	}
	if interp.Fields["service"] != "cleaning" {
		t.Errorf("service = %q, want trimmed cleaning", interp.Fields["service"])
	}
	if _, ok := interp.Fields["made_up"]; ok {
		t.Error("unknown field survived sanitization")
	}
	if _, ok := interp.Fields["contact_email"]; ok {
		t.Error("empty value survived sanitization")
	}
}

func TestParseInterpretationRejectsProse(t *testing.T) {
	if _, err := parseInterpretation("Sure! The user wants to book a cleaning."); err == nil {
		t.Fatal("prose output should not parse")
	}
}

func TestPolicyScreen(t *testing.T) {
	p := NewPolicyScreen("medical records, Prescription ,other patients,")

	if got := p.Screen("show me the MEDICAL RECORDS"); got != "medical records" {
		t.Errorf("Screen() = %q, want medical records", got)
	}
	if got := p.Screen("can I get a prescription refill?"); got != "prescription" {
		t.Errorf("Screen() = %q, want prescription", got)
	}
	if got := p.Screen("I want to book a cleaning"); got != "" {
		t.Errorf("Screen() = %q, want empty", got)
	}
}
