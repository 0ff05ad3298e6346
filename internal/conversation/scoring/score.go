// Package scoring computes the lead score from a session's collected facts.
package scoring

import "leadchat_backend/internal/conversation/domain"

const (
	minScore = 0
	maxScore = 100
)

// Contribution of each populated fact.
const (
	weightName          = 10
	weightEmail         = 15
	weightCompany       = 10
	weightChallenges    = 20
	weightIndustry      = 10
	weightCompanySize   = 10
	weightDecisionMaker = 15
)

var budgetWeights = map[string]int{
	domain.BudgetSmall:  15,
	domain.BudgetMedium: 20,
	domain.BudgetLarge:  25,
}

var timelineWeights = map[string]int{
	domain.TimelineLongTerm: 10,
	domain.TimelineNearTerm: 15,
	domain.TimelineUrgent:   20,
}

// Score returns the clamped lead score. The second result is false when no
// fact contributes, in which case the stored score stays unset.
func Score(s domain.Session) (int, bool) {
	sum := 0
	add := func(ok bool, weight int) {
		if ok {
			sum += weight
		}
	}

	add(s.Client.Name != "", weightName)
	add(s.Client.Email != "", weightEmail)
	add(s.Client.Company != "", weightCompany)
	add(s.Business.Challenges != "", weightChallenges)
	add(s.Business.Industry != "", weightIndustry)
	add(s.Business.CompanySize != "", weightCompanySize)
	sum += budgetWeights[s.Qualification.BudgetRange]
	sum += timelineWeights[s.Qualification.Timeline]
	if v, ok := s.Qualification.DecisionMaker.Bool(); ok && v {
		sum += weightDecisionMaker
	}

	if sum <= 0 {
		return 0, false
	}
	return clamp(sum), true
}

func clamp(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
