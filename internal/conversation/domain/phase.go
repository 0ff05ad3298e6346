package domain

// Status is the lifecycle state of a chat session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Phase is a named stage in the scripted conversation.
type Phase string

const (
	PhaseGreeting       Phase = "greeting"
	PhaseDiscovery      Phase = "discovery"
	PhaseQualification  Phase = "qualification"
	PhasePRDGeneration  Phase = "prd_generation"
	PhaseExpertMatching Phase = "expert_matching"
	PhaseBooking        Phase = "booking"
	PhaseConfirmation   Phase = "confirmation"
)

// Phases lists every phase in conversation order.
var Phases = []Phase{
	PhaseGreeting,
	PhaseDiscovery,
	PhaseQualification,
	PhasePRDGeneration,
	PhaseExpertMatching,
	PhaseBooking,
	PhaseConfirmation,
}

// Ordinal returns the position of p in Phases, or -1 for an unknown phase.
func (p Phase) Ordinal() int {
	for i, x := range Phases {
		if x == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.Ordinal() >= 0
}

// Step is the fine-grained position the phase resolver derives from facts.
type Step string

const (
	StepGreeting              Step = "greeting"
	StepDiscoveryEmail        Step = "discovery_email"
	StepDiscoveryChallenges   Step = "discovery_challenges"
	StepContext               Step = "context"
	StepQualificationBudget   Step = "qualification_budget"
	StepQualificationTimeline Step = "qualification_timeline"
	StepServiceRecommendation Step = "service_recommendation"
)

// Steps lists every step in resolver order.
var Steps = []Step{
	StepGreeting,
	StepDiscoveryEmail,
	StepDiscoveryChallenges,
	StepContext,
	StepQualificationBudget,
	StepQualificationTimeline,
	StepServiceRecommendation,
}

// Ordinal returns the position of s in Steps, or -1 for an unknown step.
func (s Step) Ordinal() int {
	for i, x := range Steps {
		if x == s {
			return i
		}
	}
	return -1
}

// Phase maps a step onto its coarse conversation phase.
func (s Step) Phase() Phase {
	switch s {
	case StepGreeting:
		return PhaseGreeting
	case StepDiscoveryEmail, StepDiscoveryChallenges, StepContext:
		return PhaseDiscovery
	case StepQualificationBudget, StepQualificationTimeline:
		return PhaseQualification
	case StepServiceRecommendation:
		return PhasePRDGeneration
	default:
		return PhaseGreeting
	}
}

// ResolverOwnsPhase reports whether p is still driven by fact collection.
// Later phases are advanced by expert matching and booking flows.
func ResolverOwnsPhase(p Phase) bool {
	return p.Ordinal() <= PhasePRDGeneration.Ordinal()
}
