package handler

import (
	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/service"
	"leadchat_backend/internal/conversation/transport"
	"leadchat_backend/internal/experts/ranking"
)

func toSendMessageResponse(r service.MessageResult) transport.SendMessageResponse {
	resp := transport.SendMessageResponse{
		SessionID:          r.Session.ID,
		Reply:              r.Reply,
		Phase:              string(r.Session.Phase),
		Step:               string(r.Session.Step),
		LeadScore:          r.Session.LeadScore,
		RecommendedService: r.Session.RecommendedService,
		Experts:            ToExpertMatches(r.Experts),
	}
	if r.Clarification != nil {
		resp.Clarification = &transport.ClarificationResponse{Reason: string(r.Clarification.Reason)}
	}
	return resp
}

// ToExpertMatches maps ranked experts to their response shape.
func ToExpertMatches(matches []ranking.Match) []transport.ExpertMatchResponse {
	if len(matches) == 0 {
		return nil
	}
	out := make([]transport.ExpertMatchResponse, len(matches))
	for i, m := range matches {
		out[i] = transport.ExpertMatchResponse{
			ID:          m.Candidate.ID,
			Name:        m.Candidate.Name,
			Email:       m.Candidate.Email,
			Specialties: m.Candidate.Specialties,
			Services:    m.Candidate.Services,
			BaseScore:   m.BaseScore,
			Score:       m.Score,
			Workload:    m.Workload,
		}
	}
	return out
}

func toTranscriptResponse(id uuid.UUID, messages []domain.Utterance) transport.TranscriptResponse {
	out := make([]transport.MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = transport.MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return transport.TranscriptResponse{SessionID: id, Messages: out}
}

func toSessionResponse(s domain.Session) transport.SessionResponse {
	return transport.SessionResponse{
		ID:     s.ID,
		Status: string(s.Status),
		Phase:  string(s.Phase),
		Step:   string(s.Step),
		Facts: transport.FactsResponse{
			Name:            s.Client.Name,
			Email:           s.Client.Email,
			Company:         s.Client.Company,
			Phone:           s.Client.Phone,
			Industry:        s.Business.Industry,
			Challenges:      s.Business.Challenges,
			CompanySize:     s.Business.CompanySize,
			TechStack:       s.Business.TechStack,
			BudgetRange:     s.Qualification.BudgetRange,
			Timeline:        s.Qualification.Timeline,
			IsDecisionMaker: s.Qualification.DecisionMaker.Ptr(),
			SuccessCriteria: s.Qualification.SuccessCriteria,
		},
		LeadScore:          s.LeadScore,
		RecommendedService: s.RecommendedService,
		LastBotQuestion:    s.LastBotQuestion,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		LastMessageAt:      s.LastMessageAt,
	}
}

func toOverride(req transport.OverrideFactsRequest) service.Override {
	var facts []domain.Fact
	add := func(field domain.Field, v *string) {
		if v != nil {
			facts = append(facts, domain.Fact{Field: field, Value: *v})
		}
	}
	add(domain.FieldName, req.Name)
	add(domain.FieldEmail, req.Email)
	add(domain.FieldCompany, req.Company)
	add(domain.FieldPhone, req.Phone)
	add(domain.FieldIndustry, req.Industry)
	add(domain.FieldChallenges, req.Challenges)
	add(domain.FieldCompanySize, req.CompanySize)
	add(domain.FieldTechStack, req.TechStack)
	add(domain.FieldBudgetRange, req.BudgetRange)
	add(domain.FieldTimeline, req.Timeline)
	add(domain.FieldSuccessCriteria, req.SuccessCriteria)
	if req.IsDecisionMaker != nil {
		facts = append(facts, domain.Fact{
			Field: domain.FieldDecisionMaker,
			Flag:  domain.TristateFrom(req.IsDecisionMaker),
		})
	}

	return service.Override{Facts: facts, RecommendedService: req.RecommendedService}
}
