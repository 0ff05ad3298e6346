// Package ambiguity decides whether an utterance is too vague to process and
// supplies clarification text when it is.
package ambiguity

import (
	"regexp"
	"strings"
	"unicode"
)

// Reason names why an utterance was judged ambiguous.
type Reason string

const (
	ReasonUncertainty        Reason = "uncertainty"
	ReasonLackOfKnowledge    Reason = "lack_of_knowledge"
	ReasonGuessing           Reason = "guessing"
	ReasonNonSpecific        Reason = "non_specific"
	ReasonMinimalResponse    Reason = "minimal_response"
	ReasonHesitation         Reason = "hesitation"
	ReasonTooShort           Reason = "too_short"
	ReasonMissingEmailFormat Reason = "missing_email_format"
)

// Reasons lists every reason in check priority order.
var Reasons = []Reason{
	ReasonUncertainty,
	ReasonLackOfKnowledge,
	ReasonGuessing,
	ReasonNonSpecific,
	ReasonMinimalResponse,
	ReasonHesitation,
	ReasonTooShort,
	ReasonMissingEmailFormat,
}

// Verdict is the classifier result. A clear verdict has Ambiguous false and
// an empty Reason.
type Verdict struct {
	Ambiguous bool   `json:"isAmbiguous"`
	Reason    Reason `json:"reason,omitempty"`
}

// Clear is the verdict for an utterance that can be processed normally.
var Clear = Verdict{}

// minMeaningfulLetters is the fewest letters an utterance needs to not be
// treated as too short.
const minMeaningfulLetters = 4

var (
	uncertaintyRe     = regexp.MustCompile(`\b(?:maybe|perhaps|possibly|probably|might be|could be)\b`)
	lackOfKnowledgeRe = regexp.MustCompile(`\b(?:not sure|not certain|unsure|don'?t know|do not know|dunno|no idea|no clue)\b`)
	guessingRe        = regexp.MustCompile(`\b(?:i guess|i suppose|i think|i believe)\b`)
	nonSpecificRe     = regexp.MustCompile(`\b(?:whatever|something|stuff|things|anything)\b`)
	minimalRe         = regexp.MustCompile(`^(?:yes|no|yeah|yep|yup|yes please|nope|nah|ok|okay|k|sure|y|n|fine|correct|right)$`)
	hesitationRe      = regexp.MustCompile(`^(?:(?:u+m+|u+h+|h+m+|e+r+m*|a+h+|e+h+|m{2,}|well)[\s,.!?]*)+$`)
	emailTokenRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	emailQuestionRe   = regexp.MustCompile(`\be-?mail\b`)
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// check is one predicate in the priority chain.
type check struct {
	reason Reason
	match  func(lower, bare, lastQuestion string) bool
}

var checks = []check{
	{ReasonUncertainty, func(lower, _, _ string) bool { return uncertaintyRe.MatchString(lower) }},
	{ReasonLackOfKnowledge, func(lower, _, _ string) bool { return lackOfKnowledgeRe.MatchString(lower) }},
	{ReasonGuessing, func(lower, _, _ string) bool { return guessingRe.MatchString(lower) }},
	{ReasonNonSpecific, func(lower, _, _ string) bool { return nonSpecificRe.MatchString(lower) }},
	{ReasonMinimalResponse, func(_, bare, _ string) bool { return minimalRe.MatchString(bare) }},
	{ReasonHesitation, func(lower, _, _ string) bool { return hesitationRe.MatchString(lower) }},
	{ReasonTooShort, func(lower, _, _ string) bool { return countLetters(lower) < minMeaningfulLetters }},
	{ReasonMissingEmailFormat, func(lower, _, lastQuestion string) bool {
		return emailQuestionRe.MatchString(lastQuestion) && !emailTokenRe.MatchString(lower)
	}},
}

// Classify runs the checks in priority order and returns the first hit.
// lastBotQuestion is the prompt the utterance answers; it only matters for
// the email format check.
func Classify(utterance, lastBotQuestion string) Verdict {
	lower := strings.ToLower(apostrophes.Replace(strings.TrimSpace(utterance)))
	bare := strings.TrimFunc(lower, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	lastQuestion := strings.ToLower(lastBotQuestion)

	for _, c := range checks {
		if c.match(lower, bare, lastQuestion) {
			return Verdict{Ambiguous: true, Reason: c.reason}
		}
	}
	return Clear
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
