// Package ranking scores experts against a recommended service and the
// lead's business context, then derates them by current booking load.
package ranking

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
)

const (
	exactServicePoints   = 40.0
	partialServicePoints = 20.0
	specialtyPoints      = 30.0
	contextPoints        = 30.0
	maxScore             = 100.0

	minContextKeywordLen = 3
)

// Candidate is an expert eligible for matching.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Specialties []string  `json:"specialties"`
	Services    []string  `json:"services"`
	Active      bool      `json:"active"`
}

// Target describes what the lead needs.
type Target struct {
	Service     string
	Specialties []string
	// Context is free text (challenges, industry, tech stack) mined for keywords.
	Context string
}

// Snapshot maps expert ID to upcoming confirmed bookings. Missing IDs count
// as zero.
type Snapshot map[uuid.UUID]int

// Match is a ranked candidate.
type Match struct {
	Candidate Candidate `json:"expert"`
	BaseScore float64   `json:"baseScore"`
	Score     float64   `json:"score"`
	Workload  int       `json:"workload"`
}

// TargetFor builds the ranking target for a session's recommendation.
func TargetFor(s domain.Session) Target {
	return Target{
		Service:     s.RecommendedService,
		Specialties: SpecialtiesFor(s.RecommendedService),
		Context: strings.Join([]string{
			s.Business.Challenges,
			s.Business.Industry,
			s.Business.TechStack,
		}, " "),
	}
}

// Rank scores every active candidate, drops those with a zero base score,
// applies the workload penalty and sorts by score descending. Ties keep
// input order.
func Rank(candidates []Candidate, target Target, workload Snapshot) []Match {
	keywords := ContextKeywords(target.Context)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if !c.Active {
			continue
		}
		base := baseScore(c, target, keywords)
		if base <= 0 {
			continue
		}
		bookings := workload[c.ID]
		matches = append(matches, Match{
			Candidate: c,
			BaseScore: round2(base),
			Score:     round2(base * Penalty(bookings)),
			Workload:  bookings,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Penalty returns the multiplier for an expert's booking count.
func Penalty(bookings int) float64 {
	switch {
	case bookings <= 0:
		return 1.0
	case bookings <= 2:
		return 0.95
	case bookings <= 4:
		return 0.90
	case bookings <= 6:
		return 0.80
	default:
		return 0.70
	}
}

func baseScore(c Candidate, t Target, keywords []string) float64 {
	score := serviceScore(c.Services, t.Service)

	if len(t.Specialties) > 0 {
		matched := 0
		for _, want := range t.Specialties {
			if containsFold(c.Specialties, want) {
				matched++
			}
		}
		score += specialtyPoints * float64(matched) / float64(len(t.Specialties))
	}

	if len(keywords) > 0 {
		vocab := tokenSet(append(append([]string(nil), c.Specialties...), c.Services...))
		matched := 0
		for _, kw := range keywords {
			if vocab[kw] {
				matched++
			}
		}
		score += contextPoints * float64(matched) / float64(len(keywords))
	}

	return math.Min(score, maxScore)
}

func serviceScore(services []string, target string) float64 {
	if target == "" {
		return 0
	}
	if containsFold(services, target) {
		return exactServicePoints
	}
	for _, token := range strings.Fields(strings.ToLower(target)) {
		if !hasAlnum(token) {
			continue
		}
		for _, s := range services {
			if strings.Contains(strings.ToLower(s), token) {
				return partialServicePoints
			}
		}
	}
	return 0
}

// ContextKeywords returns the distinct lower-case tokens of text longer than
// two characters, in first-seen order.
func ContextKeywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenize(text) {
		if len(tok) < minContextKeywordLen || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func tokenSet(values []string) map[string]bool {
	set := make(map[string]bool)
	for _, v := range values {
		for _, tok := range tokenize(v) {
			set[tok] = true
		}
	}
	return set
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
