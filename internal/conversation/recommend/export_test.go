package recommend

import (
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

// hits returns the keyword hit count per service for s.
func hits(s domain.Session) map[string]int {
	blob := strings.ToLower(s.Business.Challenges + " " + s.Business.Industry + " " + s.Business.TechStack)
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.service] = countHits(blob, c.keywords)
	}
	return out
}
