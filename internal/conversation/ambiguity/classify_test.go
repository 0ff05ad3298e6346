package ambiguity

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		utterance    string
		lastQuestion string
		want         Reason
	}{
		{"hedging word", "maybe", "", ReasonUncertainty},
		{"hedging phrase", "It could be next quarter", "", ReasonUncertainty},
		{"not sure", "I'm not sure about the budget", "", ReasonLackOfKnowledge},
		{"dunno", "dunno", "", ReasonLackOfKnowledge},
		{"typographic apostrophe", "I don’t know yet", "", ReasonLackOfKnowledge},
		{"guessing", "I guess around fifty people", "", ReasonGuessing},
		{"filler noun", "We need stuff done", "", ReasonNonSpecific},
		{"bare yes", "Yes!", "", ReasonMinimalResponse},
		{"bare nope", "nope", "", ReasonMinimalResponse},
		{"hesitation", "umm...", "", ReasonHesitation},
		{"hesitation sequence", "uh, hmm", "", ReasonHesitation},
		{"too short", "abc", "", ReasonTooShort},
		{"digits do not count", "50", "", ReasonTooShort},
		{"symbols only", "?!", "", ReasonTooShort},
		{"email missing", "just call me", "What's the best email to reach you?", ReasonMissingEmailFormat},
		{"email present", "sure, it's ana@example.com", "What's the best email to reach you?", ""},
		{"email not asked", "just call me", "What's your name?", ""},
		{"clear", "My name is John Doe", "", ""},
		{"clear business answer", "We run a chain of clinics with slow reporting", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.utterance, tc.lastQuestion)
			if got.Reason != tc.want {
				t.Fatalf("Classify(%q) reason = %q, want %q", tc.utterance, got.Reason, tc.want)
			}
			if got.Ambiguous != (tc.want != "") {
				t.Fatalf("Classify(%q) ambiguous = %v, want %v", tc.utterance, got.Ambiguous, tc.want != "")
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		utterance string
		want      Reason
	}{
		{"I guess maybe", ReasonUncertainty},
		{"no idea, whatever works", ReasonLackOfKnowledge},
		{"I think something like that", ReasonGuessing},
		{"no", ReasonMinimalResponse},
		{"hmm", ReasonHesitation},
	}
	for _, tc := range tests {
		if got := Classify(tc.utterance, "Could you share your email?"); got.Reason != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.utterance, got.Reason, tc.want)
		}
	}
}

func TestChecksFollowReasonOrder(t *testing.T) {
	if len(checks) != len(Reasons) {
		t.Fatalf("expected %d checks, got %d", len(Reasons), len(checks))
	}
	for i, c := range checks {
		if c.reason != Reasons[i] {
			t.Fatalf("check %d is %q, want %q", i, c.reason, Reasons[i])
		}
	}
}

func TestClarifyMentionsReasonKeywords(t *testing.T) {
	for i := range templates[ReasonMissingEmailFormat] {
		text := Clarify(FixedSelector{Index: i}, ReasonMissingEmailFormat)
		if !strings.Contains(strings.ToLower(text), "email") {
			t.Fatalf("email clarification %q does not mention email", text)
		}
	}
	for i := range templates[ReasonNonSpecific] {
		text := Clarify(FixedSelector{Index: i}, ReasonNonSpecific)
		if !strings.Contains(strings.ToLower(text), "specific") {
			t.Fatalf("non-specific clarification %q does not ask for specifics", text)
		}
	}
}

func TestClarifyNeverEchoesInput(t *testing.T) {
	utterance := "maybe"
	v := Classify(utterance, "")
	for i := 0; i < 10; i++ {
		text := Clarify(nil, v.Reason)
		if strings.Contains(text, `"`+utterance+`"`) {
			t.Fatalf("clarification %q quotes the input", text)
		}
		if text == "" {
			t.Fatal("expected clarification text")
		}
	}
}

func TestFixedSelectorWraps(t *testing.T) {
	pool := templatesFor(ReasonTooShort)
	if got := (FixedSelector{Index: len(pool)}).Pick(ReasonTooShort); got != pool[0] {
		t.Fatalf("expected wrap to first template, got %q", got)
	}
	if got := (FixedSelector{Index: -1}).Pick(ReasonTooShort); got != pool[len(pool)-1] {
		t.Fatalf("expected negative index to wrap to last template, got %q", got)
	}
	if got := (FixedSelector{}).Pick(Reason("unknown")); got != fallbackTemplates[0] {
		t.Fatalf("expected fallback template, got %q", got)
	}
}
