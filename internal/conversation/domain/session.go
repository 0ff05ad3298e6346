// Package domain holds the chat session model and the canonical vocabularies
// shared by the conversation engine and its callers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tristate is a yes/no answer that may not have been given yet.
type Tristate int8

const (
	Unknown Tristate = iota
	Yes
	No
)

// Known reports whether an answer has been recorded.
func (t Tristate) Known() bool {
	return t != Unknown
}

// Bool converts a known answer; the second value is false when unknown.
func (t Tristate) Bool() (bool, bool) {
	switch t {
	case Yes:
		return true, true
	case No:
		return false, true
	default:
		return false, false
	}
}

// TristateFrom converts a nullable boolean.
func TristateFrom(b *bool) Tristate {
	if b == nil {
		return Unknown
	}
	if *b {
		return Yes
	}
	return No
}

// Ptr converts back to a nullable boolean.
func (t Tristate) Ptr() *bool {
	v, ok := t.Bool()
	if !ok {
		return nil
	}
	return &v
}

// ClientFacts identify the visitor. Empty strings are unset.
type ClientFacts struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// BusinessFacts describe the visitor's organization.
type BusinessFacts struct {
	Industry    string `json:"industry,omitempty"`
	Challenges  string `json:"challenges,omitempty"`
	CompanySize string `json:"companySize,omitempty"`
	TechStack   string `json:"techStack,omitempty"`
}

// QualificationFacts describe buying readiness.
type QualificationFacts struct {
	BudgetRange     string   `json:"budgetRange,omitempty"`
	Timeline        string   `json:"timeline,omitempty"`
	DecisionMaker   Tristate `json:"-"`
	SuccessCriteria string   `json:"successCriteria,omitempty"`
}

// Session is the unit of conversation state.
type Session struct {
	ID                 uuid.UUID
	Status             Status
	Phase              Phase
	Step               Step
	Client             ClientFacts
	Business           BusinessFacts
	Qualification      QualificationFacts
	LeadScore          *int
	RecommendedService string
	LastBotQuestion    string
	// Version is the optimistic concurrency token maintained by the repository.
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt time.Time
}

// NewSession creates an active session at the greeting step.
func NewSession(id uuid.UUID, now time.Time) Session {
	return Session{
		ID:            id,
		Status:        StatusActive,
		Phase:         PhaseGreeting,
		Step:          StepGreeting,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	c := s
	if s.LeadScore != nil {
		v := *s.LeadScore
		c.LeadScore = &v
	}
	return c
}

// Score returns the lead score and whether it is set.
func (s Session) Score() (int, bool) {
	if s.LeadScore == nil {
		return 0, false
	}
	return *s.LeadScore, true
}

// Role identifies the sender of an utterance.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Utterance is a single recorded message.
type Utterance struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Role      Role
	Content   string
	CreatedAt time.Time
}
