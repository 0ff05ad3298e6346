// Package extraction pulls at most one new fact out of a single utterance.
//
// Rules run in a fixed priority order: name, email, company, challenges,
// industry, tech stack, budget, timeline, company size, decision maker.
// A rule whose field is already populated is skipped, and the first rule
// that matches ends the pass.
package extraction

import (
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

// rule pairs a target field with its matcher. Matchers receive the trimmed
// original text and a normalized lower-case copy.
type rule struct {
	field domain.Field
	match func(text, lower string) (domain.Fact, bool)
}

var rules = []rule{
	{domain.FieldName, matchName},
	{domain.FieldEmail, matchEmail},
	{domain.FieldCompany, matchCompany},
	{domain.FieldChallenges, matchChallenges},
	{domain.FieldIndustry, matchIndustry},
	{domain.FieldTechStack, matchTechStack},
	{domain.FieldBudgetRange, matchBudget},
	{domain.FieldTimeline, matchTimeline},
	{domain.FieldCompanySize, matchCompanySize},
	{domain.FieldDecisionMaker, matchDecisionMaker},
}

// Extract returns the first fact text yields for a field s has not populated.
// The session is only read.
func Extract(text string, s domain.Session) (domain.Fact, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Fact{}, false
	}
	lower := Normalize(text)

	for _, r := range rules {
		if s.Has(r.field) {
			continue
		}
		if f, ok := r.match(text, lower); ok {
			f.Field = r.field
			return f, true
		}
	}
	return domain.Fact{}, false
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Normalize lower-cases text and folds typographic apostrophes so that
// patterns written with ASCII quotes match phone keyboards too.
func Normalize(text string) string {
	return strings.ToLower(apostrophes.Replace(strings.TrimSpace(text)))
}
