package domain

// Canonical service lines, in recommendation tie-break order.
const (
	ServiceAIStrategy            = "AI Strategy & Planning"
	ServiceCustomSoftware        = "Custom Software Development"
	ServiceCloudDevOps           = "Cloud Infrastructure & DevOps"
	ServiceDigitalTransformation = "Digital Transformation Consulting"
	ServiceDataAnalytics         = "Data Intelligence & Analytics"
)

// Services lists the canonical service names in declaration order.
var Services = []string{
	ServiceAIStrategy,
	ServiceCustomSoftware,
	ServiceCloudDevOps,
	ServiceDigitalTransformation,
	ServiceDataAnalytics,
}

// Canonical industry names.
const (
	IndustryHealthcare    = "Healthcare"
	IndustryFinance       = "Finance"
	IndustryRetail        = "Retail"
	IndustryManufacturing = "Manufacturing"
	IndustryTechnology    = "Technology"
	IndustryEducation     = "Education"
	IndustryRealEstate    = "Real Estate"
	IndustryLogistics     = "Logistics"
	IndustryHospitality   = "Hospitality"
)

// Industries lists the canonical industry names.
var Industries = []string{
	IndustryHealthcare,
	IndustryFinance,
	IndustryRetail,
	IndustryManufacturing,
	IndustryTechnology,
	IndustryEducation,
	IndustryRealEstate,
	IndustryLogistics,
	IndustryHospitality,
}

// Budget buckets.
const (
	BudgetSmall  = "small (<$25k)"
	BudgetMedium = "medium ($25k-$100k)"
	BudgetLarge  = "large (>$100k)"
)

// BudgetBuckets lists the budget buckets from smallest to largest.
var BudgetBuckets = []string{BudgetSmall, BudgetMedium, BudgetLarge}

// Timeline buckets.
const (
	TimelineUrgent   = "urgent (<1 month)"
	TimelineNearTerm = "near-term (1-3 months)"
	TimelineLongTerm = "long-term (3+ months)"
)

// TimelineBuckets lists the timeline buckets from most to least urgent.
var TimelineBuckets = []string{TimelineUrgent, TimelineNearTerm, TimelineLongTerm}

// Company size buckets.
const (
	CompanySizeMicro      = "1-10"
	CompanySizeSmall      = "10-50"
	CompanySizeMedium     = "50-200"
	CompanySizeEnterprise = "200+"
)

// CompanySizeBuckets lists the company size buckets from smallest to largest.
var CompanySizeBuckets = []string{
	CompanySizeMicro,
	CompanySizeSmall,
	CompanySizeMedium,
	CompanySizeEnterprise,
}

// IsService reports whether name is a canonical service.
func IsService(name string) bool {
	return contains(Services, name)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
