package extraction

import (
	"regexp"
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

var challengeRe = regexp.MustCompile(`\b(?:problems?|challenges?|issues?|struggl(?:e|es|ing)|needs?|looking for|want to|difficult(?:y|ies)?|pain(?: points?)?|bottlenecks?|help with|improve|trouble|can't|cannot|too slow|manual(?:ly)?)\b`)

// vocabTerm maps a set of patterns onto one canonical value.
type vocabTerm struct {
	value string
	re    *regexp.Regexp
}

func term(value string, alternatives ...string) vocabTerm {
	quoted := make([]string, len(alternatives))
	for i, a := range alternatives {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return vocabTerm{
		value: value,
		re:    regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + strings.Join(quoted, "|") + `)(?:$|[^a-z0-9+#])`),
	}
}

var industryVocab = []vocabTerm{
	term(domain.IndustryHealthcare, "healthcare", "health care", "hospital", "hospitals", "clinic", "clinics", "medical", "pharma", "pharmaceutical", "biotech", "patients"),
	term(domain.IndustryFinance, "finance", "financial", "fintech", "bank", "banking", "insurance", "investment", "accounting", "lending"),
	term(domain.IndustryRetail, "retail", "e-commerce", "ecommerce", "online store", "shop", "shops", "store", "stores", "consumer goods"),
	term(domain.IndustryManufacturing, "manufacturing", "manufacturer", "factory", "factories", "industrial", "production line", "automotive"),
	term(domain.IndustryTechnology, "technology", "tech company", "software company", "saas", "it services", "tech startup"),
	term(domain.IndustryEducation, "education", "school", "schools", "university", "edtech", "e-learning", "training provider"),
	term(domain.IndustryRealEstate, "real estate", "property management", "realtor", "realtors"),
	term(domain.IndustryLogistics, "logistics", "shipping", "supply chain", "transportation", "freight", "warehousing"),
	term(domain.IndustryHospitality, "hospitality", "hotel", "hotels", "restaurant", "restaurants", "tourism"),
}

var techVocab = []vocabTerm{
	term("Python", "python"),
	term("Java", "java"),
	term("JavaScript", "javascript"),
	term("TypeScript", "typescript"),
	term("React", "react", "reactjs", "react.js"),
	term("Angular", "angular"),
	term("Vue", "vue", "vuejs", "vue.js"),
	term("Node.js", "node", "nodejs", "node.js"),
	term("Django", "django"),
	term("Flask", "flask"),
	term("Ruby on Rails", "rails", "ruby on rails"),
	term("PHP", "php"),
	term("Laravel", "laravel"),
	term(".NET", ".net", "dotnet"),
	term("C#", "c#", "csharp"),
	term("Go", "golang"),
	term("Rust", "rust"),
	term("Kotlin", "kotlin"),
	term("Swift", "swift"),
	term("AWS", "aws", "amazon web services"),
	term("Azure", "azure"),
	term("GCP", "gcp", "google cloud"),
	term("Docker", "docker"),
	term("Kubernetes", "kubernetes", "k8s"),
	term("Terraform", "terraform"),
	term("PostgreSQL", "postgres", "postgresql"),
	term("MySQL", "mysql"),
	term("MongoDB", "mongo", "mongodb"),
	term("Redis", "redis"),
	term("Snowflake", "snowflake"),
	term("Salesforce", "salesforce"),
	term("SAP", "sap"),
	term("Shopify", "shopify"),
	term("WordPress", "wordpress"),
	term("Excel", "excel", "spreadsheets"),
	term("Power BI", "power bi", "powerbi"),
	term("Tableau", "tableau"),
	term("TensorFlow", "tensorflow"),
	term("PyTorch", "pytorch"),
}

func matchChallenges(text, lower string) (domain.Fact, bool) {
	if !challengeRe.MatchString(lower) {
		return domain.Fact{}, false
	}
	return domain.Fact{Value: text}, true
}

func matchIndustry(_, lower string) (domain.Fact, bool) {
	for _, t := range industryVocab {
		if t.re.MatchString(lower) {
			return domain.Fact{Value: t.value}, true
		}
	}
	return domain.Fact{}, false
}

func matchTechStack(_, lower string) (domain.Fact, bool) {
	var found []string
	for _, t := range techVocab {
		if t.re.MatchString(lower) {
			found = append(found, t.value)
		}
	}
	if len(found) == 0 {
		return domain.Fact{}, false
	}
	return domain.Fact{Value: strings.Join(found, ", ")}, true
}
