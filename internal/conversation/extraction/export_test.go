package extraction

import "leadchat_backend/internal/conversation/domain"

// order returns the fields in the priority they are evaluated.
func order() []domain.Field {
	out := make([]domain.Field, len(rules))
	for i, r := range rules {
		out[i] = r.field
	}
	return out
}
