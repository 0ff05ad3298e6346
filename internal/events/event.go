// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadchat_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Conversation Domain Events
// =============================================================================

// SessionStarted is published when the first utterance creates a session.
type SessionStarted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
}

func (e SessionStarted) EventName() string { return "conversation.session.started" }

// FactExtracted is published when an utterance populated a fact.
type FactExtracted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
}

func (e FactExtracted) EventName() string { return "conversation.fact.extracted" }

// ClarificationRequested is published when an utterance was judged ambiguous.
type ClarificationRequested struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Reason    string    `json:"reason"`
}

func (e ClarificationRequested) EventName() string { return "conversation.clarification.requested" }

// LeadScored is published when the lead score changes.
type LeadScored struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Score     int       `json:"score"`
}

func (e LeadScored) EventName() string { return "conversation.lead.scored" }

// ServiceRecommended is published once per session when a service is chosen.
type ServiceRecommended struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Service   string    `json:"service"`
}

func (e ServiceRecommended) EventName() string { return "conversation.service.recommended" }

// PhaseChanged is published when a session moves to another phase.
type PhaseChanged struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

func (e PhaseChanged) EventName() string { return "conversation.phase.changed" }

// SessionCompleted is published when an admin closes a session.
type SessionCompleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
}

func (e SessionCompleted) EventName() string { return "conversation.session.completed" }

// =============================================================================
// Experts Domain Events
// =============================================================================

// MatchedExpert is one ranked expert carried by ExpertsMatched.
type MatchedExpert struct {
	ExpertID uuid.UUID `json:"expertId"`
	Rank     int       `json:"rank"`
	Score    float64   `json:"score"`
}

// ExpertsMatched is published when ranking produced at least one expert.
type ExpertsMatched struct {
	BaseEvent
	SessionID uuid.UUID       `json:"sessionId"`
	Service   string          `json:"service"`
	Experts   []MatchedExpert `json:"experts"`
}

func (e ExpertsMatched) EventName() string { return "experts.matched" }
