package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type SendMessageRequest struct {
	SessionID *uuid.UUID `json:"sessionId,omitempty"`
	Content   string     `json:"content" validate:"required,max=2000"`
}

type ListSessionsQuery struct {
	Status string `form:"status" validate:"omitempty,session_status"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

type TranscriptQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

// OverrideFactsRequest overwrites any subset of session facts. Absent fields
// are left untouched.
type OverrideFactsRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email              *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Company            *string `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Phone              *string `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	Industry           *string `json:"industry,omitempty" validate:"omitempty,industry"`
	Challenges         *string `json:"challenges,omitempty" validate:"omitempty,min=1,max=2000"`
	CompanySize        *string `json:"companySize,omitempty" validate:"omitempty,company_size_bucket"`
	TechStack          *string `json:"techStack,omitempty" validate:"omitempty,max=500"`
	BudgetRange        *string `json:"budgetRange,omitempty" validate:"omitempty,budget_bucket"`
	Timeline           *string `json:"timeline,omitempty" validate:"omitempty,timeline_bucket"`
	IsDecisionMaker    *bool   `json:"isDecisionMaker,omitempty"`
	SuccessCriteria    *string `json:"successCriteria,omitempty" validate:"omitempty,max=2000"`
	RecommendedService *string `json:"recommendedService,omitempty" validate:"omitempty,service_name"`
}

// Response DTOs
type ClarificationResponse struct {
	Reason string `json:"reason"`
}

type ExpertMatchResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Specialties []string  `json:"specialties"`
	Services    []string  `json:"services"`
	BaseScore   float64   `json:"baseScore"`
	Score       float64   `json:"score"`
	Workload    int       `json:"workload"`
}

type SendMessageResponse struct {
	SessionID          uuid.UUID              `json:"sessionId"`
	Reply              string                 `json:"reply"`
	Clarification      *ClarificationResponse `json:"clarification,omitempty"`
	Phase              string                 `json:"phase"`
	Step               string                 `json:"step"`
	LeadScore          *int                   `json:"leadScore,omitempty"`
	RecommendedService string                 `json:"recommendedService,omitempty"`
	Experts            []ExpertMatchResponse  `json:"experts,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type TranscriptResponse struct {
	SessionID uuid.UUID         `json:"sessionId"`
	Messages  []MessageResponse `json:"messages"`
}

type FactsResponse struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Company         string `json:"company,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Industry        string `json:"industry,omitempty"`
	Challenges      string `json:"challenges,omitempty"`
	CompanySize     string `json:"companySize,omitempty"`
	TechStack       string `json:"techStack,omitempty"`
	BudgetRange     string `json:"budgetRange,omitempty"`
	Timeline        string `json:"timeline,omitempty"`
	IsDecisionMaker *bool  `json:"isDecisionMaker,omitempty"`
	SuccessCriteria string `json:"successCriteria,omitempty"`
}

type SessionResponse struct {
	ID                 uuid.UUID     `json:"id"`
	Status             string        `json:"status"`
	Phase              string        `json:"phase"`
	Step               string        `json:"step"`
	Facts              FactsResponse `json:"facts"`
	LeadScore          *int          `json:"leadScore,omitempty"`
	RecommendedService string        `json:"recommendedService,omitempty"`
	LastBotQuestion    string        `json:"lastBotQuestion,omitempty"`
	Version            int           `json:"version"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	LastMessageAt      time.Time     `json:"lastMessageAt"`
}

type SessionListResponse struct {
	Items  []SessionResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
