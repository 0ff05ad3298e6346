package domain

import "fmt"

// Field names a single fact key.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldCompany         Field = "company"
	FieldPhone           Field = "phone"
	FieldIndustry        Field = "industry"
	FieldChallenges      Field = "challenges"
	FieldCompanySize     Field = "company_size"
	FieldTechStack       Field = "tech_stack"
	FieldBudgetRange     Field = "budget_range"
	FieldTimeline        Field = "timeline"
	FieldDecisionMaker   Field = "is_decision_maker"
	FieldSuccessCriteria Field = "success_criteria"
)

// Fields lists every fact key.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldCompany,
	FieldPhone,
	FieldIndustry,
	FieldChallenges,
	FieldCompanySize,
	FieldTechStack,
	FieldBudgetRange,
	FieldTimeline,
	FieldDecisionMaker,
	FieldSuccessCriteria,
}

// Fact is one extracted (field, value) pair. Decision-maker facts carry
// their answer in Flag; every other field uses Value.
type Fact struct {
	Field Field    `json:"field"`
	Value string   `json:"value,omitempty"`
	Flag  Tristate `json:"-"`
}

// String renders the fact for logs.
func (f Fact) String() string {
	if f.Field == FieldDecisionMaker {
		v, _ := f.Flag.Bool()
		return fmt.Sprintf("%s=%t", f.Field, v)
	}
	return fmt.Sprintf("%s=%q", f.Field, f.Value)
}

// Has reports whether field is populated.
func (s Session) Has(field Field) bool {
	if field == FieldDecisionMaker {
		return s.Qualification.DecisionMaker.Known()
	}
	return s.Get(field) != ""
}

// Get returns the string value of field; decision-maker renders as
// "true"/"false"/"".
func (s Session) Get(field Field) string {
	switch field {
	case FieldName:
		return s.Client.Name
	case FieldEmail:
		return s.Client.Email
	case FieldCompany:
		return s.Client.Company
	case FieldPhone:
		return s.Client.Phone
	case FieldIndustry:
		return s.Business.Industry
	case FieldChallenges:
		return s.Business.Challenges
	case FieldCompanySize:
		return s.Business.CompanySize
	case FieldTechStack:
		return s.Business.TechStack
	case FieldBudgetRange:
		return s.Qualification.BudgetRange
	case FieldTimeline:
		return s.Qualification.Timeline
	case FieldSuccessCriteria:
		return s.Qualification.SuccessCriteria
	case FieldDecisionMaker:
		if v, ok := s.Qualification.DecisionMaker.Bool(); ok {
			return fmt.Sprintf("%t", v)
		}
		return ""
	default:
		return ""
	}
}

// Apply writes f only when its field is unset and reports whether it wrote.
func (s *Session) Apply(f Fact) bool {
	if s.Has(f.Field) {
		return false
	}
	return s.set(f)
}

// Override writes f unconditionally. Reserved for administrative updates.
func (s *Session) Override(f Fact) bool {
	return s.set(f)
}

func (s *Session) set(f Fact) bool {
	switch f.Field {
	case FieldName:
		s.Client.Name = f.Value
	case FieldEmail:
		s.Client.Email = f.Value
	case FieldCompany:
		s.Client.Company = f.Value
	case FieldPhone:
		s.Client.Phone = f.Value
	case FieldIndustry:
		s.Business.Industry = f.Value
	case FieldChallenges:
		s.Business.Challenges = f.Value
	case FieldCompanySize:
		s.Business.CompanySize = f.Value
	case FieldTechStack:
		s.Business.TechStack = f.Value
	case FieldBudgetRange:
		s.Qualification.BudgetRange = f.Value
	case FieldTimeline:
		s.Qualification.Timeline = f.Value
	case FieldSuccessCriteria:
		s.Qualification.SuccessCriteria = f.Value
	case FieldDecisionMaker:
		s.Qualification.DecisionMaker = f.Flag
	default:
		return false
	}
	return true
}
