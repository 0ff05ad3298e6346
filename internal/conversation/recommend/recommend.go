// Package recommend maps a lead's business context onto one of the canonical
// service lines by keyword hits.
package recommend

import (
	"regexp"
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

type category struct {
	service  string
	keywords []*regexp.Regexp
}

func keywords(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(w) + `s?(?:$|[^a-z0-9])`)
	}
	return out
}

// categories is ordered by tie-break priority.
var categories = []category{
	{domain.ServiceAIStrategy, keywords(
		"ai", "artificial intelligence", "machine learning", "ml", "deep learning", "llm",
		"chatbot", "gpt", "generative", "nlp", "computer vision", "predictive", "neural network",
		"automation", "automate", "recommendation engine", "tensorflow", "pytorch",
	)},
	{domain.ServiceCustomSoftware, keywords(
		"custom software", "software", "app", "application", "web app", "mobile app", "portal",
		"platform", "api", "integration", "website", "crm", "erp", "booking system", "build",
		"react", "angular", "vue", "node.js", "django", "rails", "laravel",
	)},
	{domain.ServiceCloudDevOps, keywords(
		"cloud", "aws", "azure", "gcp", "devops", "kubernetes", "docker", "terraform",
		"infrastructure", "migration", "ci/cd", "deployment", "scalability", "scaling", "server",
		"hosting", "downtime", "outage", "uptime", "microservice",
	)},
	{domain.ServiceDigitalTransformation, keywords(
		"digital transformation", "transformation", "digitize", "digitalize", "paper", "paperwork",
		"manual", "manually", "legacy", "modernize", "modernise", "process", "workflow",
		"efficiency", "change management", "outdated", "excel", "spreadsheet",
	)},
	{domain.ServiceDataAnalytics, keywords(
		"data", "analytics", "dashboard", "reporting", "report", "insight", "business intelligence",
		"bi", "visualization", "visualisation", "data warehouse", "metric", "kpi", "power bi",
		"tableau", "etl", "snowflake", "forecast",
	)},
}

// Recommend picks a service for s. It returns the existing recommendation
// and false when one is already set, and ("", false) while no keyword hits.
func Recommend(s domain.Session) (string, bool) {
	if s.RecommendedService != "" {
		return s.RecommendedService, false
	}

	blob := strings.ToLower(strings.Join([]string{
		s.Business.Challenges,
		s.Business.Industry,
		s.Business.TechStack,
	}, " "))
	if strings.TrimSpace(blob) == "" {
		return "", false
	}

	best, bestHits := "", 0
	for _, c := range categories {
		if hits := countHits(blob, c.keywords); hits > bestHits {
			best, bestHits = c.service, hits
		}
	}
	if bestHits == 0 {
		return "", false
	}
	return best, true
}

func countHits(blob string, kws []*regexp.Regexp) int {
	n := 0
	for _, re := range kws {
		if re.MatchString(blob) {
			n++
		}
	}
	return n
}
