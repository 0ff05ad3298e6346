// Package prompts holds the deterministic next question for each step.
package prompts

import (
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

var questions = map[domain.Step]string{
	domain.StepGreeting:              "Hi! I'm here to help you find the right expert for your project. What's your name?",
	domain.StepDiscoveryEmail:        "Nice to meet you{name}! What's the best email address to reach you?",
	domain.StepDiscoveryChallenges:   "Thanks! What business challenge or problem are you hoping to solve?",
	domain.StepContext:               "Got it. Which industry are you in, and roughly how many employees does your company have?",
	domain.StepQualificationBudget:   "What budget range are you working with for this project?",
	domain.StepQualificationTimeline: "And what timeline do you have in mind? When would you like to get started?",
	domain.StepServiceRecommendation: "Based on what you've shared, I recommend our {service} service. I'll match you with the right experts.",
}

const fallbackQuestion = "Could you tell me a bit more about your project?"

// QuestionFor returns the question to ask at s.Step, personalized with the
// facts gathered so far.
func QuestionFor(s domain.Session) string {
	q, ok := questions[s.Step]
	if !ok {
		return fallbackQuestion
	}

	name := ""
	if s.Client.Name != "" {
		name = ", " + firstName(s.Client.Name)
	}
	service := s.RecommendedService
	if service == "" {
		service = "consulting"
	}
	return strings.NewReplacer("{name}", name, "{service}", service).Replace(q)
}

func firstName(full string) string {
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return full
}
