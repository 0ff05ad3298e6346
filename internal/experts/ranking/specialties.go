package ranking

import "leadchat_backend/internal/conversation/domain"

var serviceSpecialties = map[string][]string{
	domain.ServiceAIStrategy:            {"Machine Learning", "AI Strategy", "Natural Language Processing", "Computer Vision"},
	domain.ServiceCustomSoftware:        {"Web Development", "Mobile Development", "API Design", "Systems Integration"},
	domain.ServiceCloudDevOps:           {"Cloud Architecture", "Kubernetes", "CI/CD", "Site Reliability"},
	domain.ServiceDigitalTransformation: {"Process Automation", "Change Management", "Legacy Modernization", "Workflow Design"},
	domain.ServiceDataAnalytics:         {"Data Engineering", "Business Intelligence", "Data Visualization", "Data Warehousing"},
}

// SpecialtiesFor returns the specialties that best serve a canonical service.
// Unknown services yield nil.
func SpecialtiesFor(service string) []string {
	sp, ok := serviceSpecialties[service]
	if !ok {
		return nil
	}
	return append([]string(nil), sp...)
}
