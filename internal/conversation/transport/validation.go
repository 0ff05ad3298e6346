package transport

import (
	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/platform/validator"
)

// RegisterValidators teaches val the conversation vocabularies used by the
// request DTOs.
func RegisterValidators(val *validator.Validator) error {
	statuses := []string{
		string(domain.StatusActive),
		string(domain.StatusCompleted),
		string(domain.StatusAbandoned),
	}

	vocabularies := map[string][]string{
		"industry":            domain.Industries,
		"service_name":        domain.Services,
		"budget_bucket":       domain.BudgetBuckets,
		"timeline_bucket":     domain.TimelineBuckets,
		"company_size_bucket": domain.CompanySizeBuckets,
		"session_status":      statuses,
	}
	for tag, allowed := range vocabularies {
		if err := val.RegisterOneOf(tag, allowed); err != nil {
			return err
		}
	}
	return nil
}
