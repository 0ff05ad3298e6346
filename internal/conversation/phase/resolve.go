// Package phase derives the conversation step from the facts collected so far.
package phase

import "leadchat_backend/internal/conversation/domain"

type requirement struct {
	step      domain.Step
	satisfied func(domain.Session) bool
}

var requirements = []requirement{
	{domain.StepGreeting, func(s domain.Session) bool { return s.Client.Name != "" }},
	{domain.StepDiscoveryEmail, func(s domain.Session) bool { return s.Client.Email != "" }},
	{domain.StepDiscoveryChallenges, func(s domain.Session) bool { return s.Business.Challenges != "" }},
	{domain.StepContext, func(s domain.Session) bool {
		return s.Business.CompanySize != "" || s.Business.Industry != ""
	}},
	{domain.StepQualificationBudget, func(s domain.Session) bool { return s.Qualification.BudgetRange != "" }},
	{domain.StepQualificationTimeline, func(s domain.Session) bool { return s.Qualification.Timeline != "" }},
}

// Resolve returns the step of the earliest unmet requirement, or
// service_recommendation once all are met.
func Resolve(s domain.Session) domain.Step {
	for _, r := range requirements {
		if !r.satisfied(s) {
			return r.step
		}
	}
	return domain.StepServiceRecommendation
}
